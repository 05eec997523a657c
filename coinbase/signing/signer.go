// Package signing builds the CB-ACCESS authentication headers required by
// the Coinbase Exchange REST API. The signer is a pure function of
// (timestamp, method, path, body), so it can be tested without any network
// dependency.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/pkg/errors"
)

// Signer holds one API key set. The secret stays base64 encoded until a
// request is signed.
type Signer struct {
	key        string
	secret     string
	passphrase string
}

func NewSigner(key, secret, passphrase string) *Signer {
	return &Signer{key: key, secret: secret, passphrase: passphrase}
}

// Headers signs one request and returns the full CB-ACCESS header set.
//
// The signature is base64(HMAC-SHA256(timestamp + METHOD + requestPath + body))
// keyed with the base64-decoded API secret. requestPath must include the query
// string exactly as sent, and body must be the exact serialized payload (empty
// for GET).
func (s *Signer) Headers(timestamp, method, requestPath, body string) (map[string]string, error) {
	key, err := base64.StdEncoding.DecodeString(s.secret)
	if err != nil {
		return nil, errors.Wrap(err, "decode api secret")
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(timestamp + method + requestPath + body))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return map[string]string{
		"CB-ACCESS-KEY":        s.key,
		"CB-ACCESS-SIGN":       signature,
		"CB-ACCESS-TIMESTAMP":  timestamp,
		"CB-ACCESS-PASSPHRASE": s.passphrase,
		"Content-Type":         "application/json",
	}, nil
}
