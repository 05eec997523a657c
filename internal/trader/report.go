package trader

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/betbot/cbtrade/coinbase"
)

const blockWidth = 80

// Reporter emits the human-readable content blocks that accompany every
// decision and every order outcome. There is no silent path: holds, fills and
// rejections all produce a block.
type Reporter struct {
	log *logrus.Entry
}

func NewReporter(log *logrus.Entry) *Reporter {
	return &Reporter{log: log}
}

// Block logs a banner-framed report at info level.
func (r *Reporter) Block(title string, lines ...string) {
	r.log.Info(formatBlock(title, lines))
}

// ErrorBlock logs a banner-framed report at error level, used for order
// rejections and other recoverable failures.
func (r *Reporter) ErrorBlock(title string, lines ...string) {
	r.log.Error(formatBlock(title, lines))
}

func formatBlock(title string, lines []string) string {
	var b strings.Builder
	header := "== [ " + title + " ] "
	b.WriteString("\n  " + header + strings.Repeat("=", max(blockWidth-len(header), 0)))
	for _, line := range lines {
		b.WriteString("\n  " + line)
	}
	b.WriteString("\n  " + strings.Repeat("=", blockWidth))
	return b.String()
}

// balanceLines renders an account snapshot the way every report shows it.
func balanceLines(snap coinbase.AccountSnapshot) []string {
	return []string{
		fmt.Sprintf("USD: %s", snap.USD.StringFixed(2)),
		fmt.Sprintf("BTC: %s", snap.BTC.StringFixed(8)),
	}
}
