package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/greencart/internal/cart"
	pkgerrors "github.com/angelmondragon/greencart/pkg/errors"
)

const (
	// DefaultTimeout bounds every request; exceeding it counts as a
	// connectivity failure.
	DefaultTimeout = 5 * time.Second

	responseBodyReadLimit int64 = 1 << 20
	errorBodyReadLimit    int64 = 1024
)

// Client talks to the remote cart service.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	userID       string
	timeout      time.Duration
	connectivity Connectivity

	mu         sync.Mutex
	lastStatus string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithConnectivity installs the offline signal consulted before each request.
func WithConnectivity(conn Connectivity) Option {
	return func(c *Client) {
		if conn != nil {
			c.connectivity = conn
		}
	}
}

// NewClient builds a client for the service at baseURL acting for userID.
func NewClient(baseURL, userID string, opts ...Option) (*Client, error) {
	trimmedURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmedURL == "" {
		return nil, fmt.Errorf("cart service base url required")
	}
	if _, err := url.Parse(trimmedURL); err != nil {
		return nil, fmt.Errorf("parse cart service base url: %w", err)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id required")
	}

	client := &Client{
		httpClient:   &http.Client{},
		baseURL:      trimmedURL,
		userID:       userID,
		timeout:      DefaultTimeout,
		connectivity: AlwaysOnline{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

func (c *Client) UserID() string {
	return c.userID
}

// Online reports the connectivity signal.
func (c *Client) Online(ctx context.Context) bool {
	return c.connectivity.Online(ctx)
}

// LastStatus returns the HTTP status of the most recent failed call, or
// StatusNetworkError when it never got a response. Empty until a call fails.
func (c *Client) LastStatus() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastStatus
}

// FetchCart returns the user's cart.
func (c *Client) FetchCart(ctx context.Context) (*CartSnapshot, error) {
	query := url.Values{"userId": {c.userID}}
	var data cartData
	if err := c.do(ctx, "fetch cart", http.MethodGet, "/api/cart?"+query.Encode(), nil, nil, &data); err != nil {
		return nil, err
	}
	return data.snapshot(), nil
}

// AddItem adds quantity units of productID to the remote cart.
func (c *Client) AddItem(ctx context.Context, productID string, quantity int) (*CartSnapshot, error) {
	body := addRequest{ProductID: productID, Quantity: quantity, UserID: c.userID}
	var data cartData
	if err := c.do(ctx, "add item", http.MethodPost, "/api/cart/add", body, nil, &data); err != nil {
		return nil, err
	}
	return data.snapshot(), nil
}

// RemoveItem drops productID from the remote cart.
func (c *Client) RemoveItem(ctx context.Context, productID string) (*CartSnapshot, error) {
	query := url.Values{"userId": {c.userID}}
	path := fmt.Sprintf("/api/cart/remove/%s?%s", url.PathEscape(productID), query.Encode())
	var data cartData
	if err := c.do(ctx, "remove item", http.MethodDelete, path, nil, nil, &data); err != nil {
		return nil, err
	}
	return data.snapshot(), nil
}

// UpdateGreenOptions sets the delivery and offset flags.
func (c *Client) UpdateGreenOptions(ctx context.Context, opts GreenOptions) (*GreenOptionsResult, error) {
	if opts.GreenDelivery == nil && opts.CarbonOffset == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one green option must be provided")
	}
	body := greenOptionsRequest{UserID: c.userID, GreenDelivery: opts.GreenDelivery, CarbonOffset: opts.CarbonOffset}
	var data greenOptionsData
	if err := c.do(ctx, "update green options", http.MethodPatch, "/api/cart/green-options", body, nil, &data); err != nil {
		return nil, err
	}
	return &GreenOptionsResult{
		GreenDelivery:   data.GreenDelivery,
		CarbonOffset:    data.CarbonOffset,
		CarbonFootprint: data.CarbonFootprint,
	}, nil
}

// Checkout places the order for the remote cart.
func (c *Client) Checkout(ctx context.Context, req CheckoutRequest) (*OrderConfirmation, error) {
	body := checkoutRequest{UserID: c.userID, GreenDelivery: req.GreenDelivery, CarbonOffset: req.CarbonOffset}
	header := http.Header{}
	if req.IdempotencyKey != "" {
		header.Set("Idempotency-Key", req.IdempotencyKey)
	}
	var data checkoutData
	if err := c.do(ctx, "checkout", http.MethodPost, "/api/cart/checkout", body, header, &data); err != nil {
		return nil, err
	}

	items := toLines(data.Items)
	sustainable := 0
	for _, line := range items {
		if line.Product.Sustainable() {
			sustainable++
		}
	}
	if data.GreenMetrics.SustainableItemsCount > 0 {
		sustainable = data.GreenMetrics.SustainableItemsCount
	}
	return &OrderConfirmation{
		OrderID:    data.OrderID,
		TotalPrice: data.TotalPrice,
		Items:      items,
		GreenMetrics: cart.GreenMetrics{
			CarbonFootprint:       data.GreenMetrics.CarbonFootprint,
			CarbonSaved:           data.GreenMetrics.CarbonSaved,
			SustainableItemsCount: sustainable,
			GreenDelivery:         firstBool(req.GreenDelivery, data.GreenMetrics.GreenDelivery),
			CarbonOffset:          firstBool(req.CarbonOffset, data.GreenMetrics.CarbonOffset),
		},
	}, nil
}

func (d cartData) snapshot() *CartSnapshot {
	return &CartSnapshot{
		Items:                 toLines(d.Cart.Items),
		GreenDelivery:         firstBool(true, d.GreenMetrics.GreenDelivery, d.Cart.GreenDelivery),
		CarbonOffset:          firstBool(false, d.GreenMetrics.CarbonOffset, d.Cart.CarbonOffset),
		TotalItems:            d.TotalItems,
		TotalPrice:            d.TotalPrice,
		CarbonFootprint:       d.GreenMetrics.CarbonFootprint,
		SustainableItemsCount: d.GreenMetrics.SustainableItemsCount,
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, body any, header http.Header, out any) error {
	if !c.connectivity.Online(ctx) {
		c.setLastStatus(StatusNetworkError)
		return transportError(op, ErrOffline)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("marshal %s request", op))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("build %s request", op))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Id", c.userID)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.setLastStatus(StatusNetworkError)
		return transportError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.setLastStatus(strconv.Itoa(resp.StatusCode))
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		var env envelope
		_ = json.Unmarshal(raw, &env)
		return statusError(op, resp.StatusCode, env.Message)
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(&env); err != nil {
		if ctx.Err() != nil {
			c.setLastStatus(StatusNetworkError)
			return transportError(op, err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", op))
	}
	if !env.Success {
		return pkgerrors.New(pkgerrors.CodeDependency, firstNonEmpty(env.Message, op+" was not successful"))
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s payload", op))
	}
	return nil
}

func (c *Client) setLastStatus(status string) {
	c.mu.Lock()
	c.lastStatus = status
	c.mu.Unlock()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
