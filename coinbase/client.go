// Package coinbase implements the authenticated Coinbase Exchange REST
// gateway the trading loop runs against: balances, candle history, market
// order submission and fill lookup.
package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/betbot/cbtrade/coinbase/signing"
)

const DefaultBaseURL = "https://api.pro.coinbase.com"

// Credentials is the API key set supplied out of band (environment or .env).
type Credentials struct {
	Key        string
	Secret     string
	Passphrase string
}

// Client is the authenticated REST client. Every request is signed with the
// CB-ACCESS header set; network timeouts are handled by the underlying resty
// client, retry and backoff policy belongs to the trading loop.
type Client struct {
	http   *resty.Client
	signer *signing.Signer
	now    func() time.Time
}

func NewClient(baseURL string, creds Credentials) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "cbtrade")

	return &Client{
		http:   rc,
		signer: signing.NewSigner(creds.Key, creds.Secret, creds.Passphrase),
		now:    time.Now,
	}
}

// GetBalances fetches all accounts and extracts the USD and BTC balances.
func (c *Client) GetBalances(ctx context.Context) (AccountSnapshot, error) {
	var accounts []Account
	if err := c.get(ctx, "/accounts", nil, &accounts); err != nil {
		return AccountSnapshot{}, err
	}

	var snap AccountSnapshot
	for _, account := range accounts {
		switch account.Currency {
		case "USD":
			snap.USD = account.Balance
		case "BTC":
			snap.BTC = account.Balance
		}
	}
	return snap, nil
}

// GetCandles fetches recent candles for the product at the given granularity
// in seconds. The exchange returns them newest first; the caller reverses.
func (c *Client) GetCandles(ctx context.Context, product string, granularity int) ([]Candle, error) {
	query := url.Values{}
	query.Set("granularity", strconv.Itoa(granularity))

	var candles []Candle
	path := fmt.Sprintf("/products/%s/candles", product)
	if err := c.get(ctx, path, query, &candles); err != nil {
		return nil, err
	}
	return candles, nil
}

type marketOrderBody struct {
	Type      string `json:"type"`
	Side      string `json:"side"`
	ProductID string `json:"product_id"`
	Size      string `json:"size,omitempty"`
	Funds     string `json:"funds,omitempty"`
	ClientOID string `json:"client_oid"`
}

type placedOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SubmitMarketOrder submits a market order. A 4xx response is a business
// rejection and comes back as OrderResult{Accepted: false} with the
// exchange's reason; only transport failures return an error.
func (c *Client) SubmitMarketOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	body := marketOrderBody{
		Type:      "market",
		Side:      string(req.Side),
		ProductID: req.Product,
		ClientOID: uuid.NewString(),
	}
	switch req.Side {
	case SideSell:
		body.Size = req.Size.String()
	case SideBuy:
		body.Funds = req.Funds.String()
	default:
		return OrderResult{}, errors.Errorf("unknown order side %q", req.Side)
	}

	var placed placedOrder
	resp, err := c.do(ctx, http.MethodPost, "/orders", nil, body, &placed)
	if err != nil {
		return OrderResult{}, err
	}
	if resp.IsError() {
		return OrderResult{
			Accepted:      false,
			StatusCode:    resp.StatusCode(),
			FailureReason: apiMessage(resp),
		}, nil
	}
	return OrderResult{
		Accepted:   true,
		OrderID:    placed.ID,
		Status:     placed.Status,
		StatusCode: resp.StatusCode(),
	}, nil
}

// GetFills fetches execution records for an order. An empty slice is a valid
// answer while settlement is still in progress.
func (c *Client) GetFills(ctx context.Context, orderID string) ([]Fill, error) {
	query := url.Values{}
	query.Set("order_id", orderID)

	var fills []Fill
	if err := c.get(ctx, "/fills", query, &fills); err != nil {
		return nil, err
	}
	return fills, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil, out)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return errors.Errorf("coinbase: GET %s: %d %s", path, resp.StatusCode(), apiMessage(resp))
	}
	return nil
}

// do signs and executes one request. The signed request path includes the
// encoded query string, and the signed body is the exact payload sent.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (*resty.Response, error) {
	requestPath := path
	if len(query) > 0 {
		requestPath += "?" + query.Encode()
	}

	var payload string
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request body")
		}
		payload = string(b)
	}

	timestamp := strconv.FormatFloat(float64(c.now().UnixMilli())/1000, 'f', 3, 64)
	headers, err := c.signer.Headers(timestamp, method, requestPath, payload)
	if err != nil {
		return nil, errors.Wrap(err, "sign request")
	}

	r := c.http.R().SetContext(ctx).SetHeaders(headers)
	if payload != "" {
		r.SetBody(payload)
	}
	if out != nil {
		r.SetResult(out)
	}

	resp, err := r.Execute(method, requestPath)
	if err != nil {
		return nil, errors.Wrapf(err, "coinbase: %s %s", method, path)
	}
	return resp, nil
}

// apiMessage extracts the exchange's human-readable error message from a
// non-2xx response body, falling back to the raw body.
func apiMessage(resp *resty.Response) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(resp.Body()))
}
