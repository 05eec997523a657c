package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey        = "k-123"
	testPassphrase = "hunter2"
)

func testSecret(t *testing.T) (string, []byte) {
	t.Helper()
	raw := []byte("0123456789abcdef0123456789abcdef")
	return base64.StdEncoding.EncodeToString(raw), raw
}

func TestHeaders(t *testing.T) {
	secret, raw := testSecret(t)
	signer := NewSigner(testKey, secret, testPassphrase)

	headers, err := signer.Headers("1700000000.123", "GET", "/accounts", "")
	require.NoError(t, err)

	assert.Equal(t, testKey, headers["CB-ACCESS-KEY"])
	assert.Equal(t, testPassphrase, headers["CB-ACCESS-PASSPHRASE"])
	assert.Equal(t, "1700000000.123", headers["CB-ACCESS-TIMESTAMP"])
	assert.Equal(t, "application/json", headers["Content-Type"])

	mac := hmac.New(sha256.New, raw)
	mac.Write([]byte("1700000000.123" + "GET" + "/accounts" + ""))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	assert.Equal(t, want, headers["CB-ACCESS-SIGN"])
}

func TestHeadersBodyChangesSignature(t *testing.T) {
	secret, _ := testSecret(t)
	signer := NewSigner(testKey, secret, testPassphrase)

	a, err := signer.Headers("1700000000.000", "POST", "/orders", `{"side":"buy"}`)
	require.NoError(t, err)
	b, err := signer.Headers("1700000000.000", "POST", "/orders", `{"side":"sell"}`)
	require.NoError(t, err)

	assert.NotEqual(t, a["CB-ACCESS-SIGN"], b["CB-ACCESS-SIGN"])
}

func TestHeadersQueryIsPartOfThePath(t *testing.T) {
	secret, _ := testSecret(t)
	signer := NewSigner(testKey, secret, testPassphrase)

	a, err := signer.Headers("1.000", "GET", "/products/BTC-USD/candles?granularity=360", "")
	require.NoError(t, err)
	b, err := signer.Headers("1.000", "GET", "/products/BTC-USD/candles?granularity=900", "")
	require.NoError(t, err)

	assert.NotEqual(t, a["CB-ACCESS-SIGN"], b["CB-ACCESS-SIGN"])
}

func TestHeadersBadSecret(t *testing.T) {
	signer := NewSigner(testKey, "not!!base64", testPassphrase)

	_, err := signer.Headers("1.000", "GET", "/accounts", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode api secret")
}
