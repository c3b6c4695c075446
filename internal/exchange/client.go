package exchange

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"
	"main/pkg/limiter"
)

const (
	_baseURL   = "https://api.upbit.com/v1"
	_baseWsURL = "wss://api.upbit.com/websocket/v1"

	_remainingReqHeader = "Remaining-Req"
	_connectTimeout     = time.Second
)

// Client talks to the exchange REST and websocket APIs. Every call
// passes through the rate limiter for its endpoint class before it is
// issued.
type Client struct {
	client    *http.Client
	baseURL   string
	wsURL     string
	accessKey string
	secretKey string
	limiter   *limiter.Limiter

	mu     sync.RWMutex
	remain map[string]model.RemainingReq
}

func New(accessKey, secretKey string, lim *limiter.Limiter) *Client {
	return &Client{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: _connectTimeout}).DialContext,
			},
		},
		baseURL:   _baseURL,
		wsURL:     _baseWsURL,
		accessKey: accessKey,
		secretKey: secretKey,
		limiter:   lim,
		remain:    make(map[string]model.RemainingReq),
	}
}

func (c *Client) ListMarkets(ctx context.Context) ([]model.MarketInfo, error) {
	c.limiter.Acquire(ctx, limiter.GroupQuotation)
	return getJSON[[]model.MarketInfo](ctx, c, c.baseURL+"/market/all?isDetails=true", "")
}

func (c *Client) ListTickers(ctx context.Context, marketIDs []string) ([]model.Ticker, error) {
	c.limiter.Acquire(ctx, limiter.GroupQuotation)
	url := c.baseURL + "/ticker?markets=" + strings.Join(marketIDs, ",")
	return getJSON[[]model.Ticker](ctx, c, url, "")
}

func (c *Client) ListCandles(ctx context.Context, unit enum.MinuteUnit, marketID string, count int) ([]model.Candle, error) {
	if !unit.IsAvailable() {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "unsupported candle unit "+unit.String())
	}

	c.limiter.Acquire(ctx, limiter.GroupQuotation)
	url := fmt.Sprintf("%s/candles/minutes/%s?market=%s&count=%d", c.baseURL, unit, marketID, count)
	return getJSON[[]model.Candle](ctx, c, url, "")
}

func (c *Client) GetAccounts(ctx context.Context) ([]model.Account, error) {
	c.limiter.Acquire(ctx, limiter.GroupAccount)

	token, err := c.authToken("")
	if err != nil {
		return nil, err
	}
	return getJSON[[]model.Account](ctx, c, c.baseURL+"/accounts", token)
}

func (c *Client) GetOrderChance(ctx context.Context, marketID string) (model.OrderChance, error) {
	c.limiter.Acquire(ctx, limiter.GroupAccount)

	query := "market=" + marketID
	token, err := c.authToken(query)
	if err != nil {
		return model.OrderChance{}, err
	}
	return getJSON[model.OrderChance](ctx, c, c.baseURL+"/orders/chance?"+query, token)
}

func (c *Client) PlaceOrder(ctx context.Context, req model.OrderRequest) (model.OrderResponse, error) {
	var response model.OrderResponse
	if !req.Side.IsAvailable() || !req.OrderType.IsAvailable() || req.Market == "" {
		return response, errors.Wrap(exception.ErrOrderInvalidRequest, "market/side/type required")
	}

	c.limiter.Acquire(ctx, limiter.GroupOrder)

	params := map[string]string{
		"market":   req.Market,
		"side":     string(req.Side),
		"ord_type": string(req.OrderType),
	}
	if !req.Price.IsZero() {
		params["price"] = req.Price.String()
	}
	if !req.Volume.IsZero() {
		params["volume"] = req.Volume.String()
	}
	if req.Identifier != "" {
		params["identifier"] = req.Identifier
	}

	token, err := c.authToken(canonicalQuery(params))
	if err != nil {
		return response, err
	}

	payload, err := sonic.ConfigFastest.Marshal(params)
	if err != nil {
		return response, errors.Wrap(err, "marshal order params")
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return response, errors.Wrap(err, "build order request")
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Authorization", token)

	return doJSON[model.OrderResponse](c, r)
}

func (c *Client) RemainingRequests() map[string]model.RemainingReq {
	c.mu.RLock()
	defer c.mu.RUnlock()

	remain := make(map[string]model.RemainingReq, len(c.remain))
	for group, req := range c.remain {
		remain[group] = req
	}
	return remain
}

func (c *Client) ClearRemainingRequests() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remain = make(map[string]model.RemainingReq)
}

func (c *Client) recordRemaining(header string) {
	if header == "" {
		return
	}

	parsed, err := model.ParseRemainingReq(header)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.remain[parsed.Group] = parsed
}

// canonicalQuery joins params as a sorted query string, the exact bytes
// hashed into the auth token's query_hash claim.
func canonicalQuery(params map[string]string) string {
	pairs := make([]string, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, k+"="+v)
	}
	slices.Sort(pairs)
	return strings.Join(pairs, "&")
}

func getJSON[A any](ctx context.Context, c *Client, url, token string) (A, error) {
	var zero A
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zero, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	return doJSON[A](c, req)
}

func doJSON[A any](c *Client, req *http.Request) (A, error) {
	var zero A
	resp, err := c.client.Do(req)
	if err != nil {
		return zero, errors.Wrap(exception.ErrExchangeTransport, err.Error())
	}
	defer resp.Body.Close()

	c.recordRemaining(resp.Header.Get(_remainingReqHeader))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, errors.Wrap(exception.ErrExchangeTransport, err.Error())
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return zero, parseRejection(resp.StatusCode, body)
	}

	var out A
	if err := sonic.ConfigFastest.Unmarshal(body, &out); err != nil {
		return zero, errors.Wrap(exception.ErrExchangeProtocol, err.Error()).
			With("url", req.URL.String()).
			With("body", string(body))
	}
	return out, nil
}

type errorResponse struct {
	Error struct {
		Name    any    `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseRejection(status int, body []byte) error {
	var parsed errorResponse
	if err := sonic.ConfigFastest.Unmarshal(body, &parsed); err != nil || parsed.Error.Message == "" {
		return errors.Wrap(exception.ErrExchangeProtocol, "status "+strconv.Itoa(status)).
			With("body", string(body))
	}

	return errors.Wrap(exception.ErrExchangeRejected,
		fmt.Sprintf("%v: %s", parsed.Error.Name, parsed.Error.Message)).
		With("status", status)
}
