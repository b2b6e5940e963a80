// Package apiclient talks to the BelekBox HTTP API on behalf of the
// storefront and the admin panel.
//
// Transport failures and non-2xx responses are reported as NETWORK_ERROR
// domain errors, a 401 as AUTH_ERROR, and a 2xx response whose body carries
// success=false as SERVER_ERROR with the server's message.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"belekbox/internal/model"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxErrorBody = 4 << 10

// Client is an HTTP client for the shop API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*clientOptions)

// WithHTTPClient makes the client send requests the way hc does. hc itself
// is never modified; the client works on a copy whose transport is wrapped
// for tracing.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = hc
	}
}

// WithTimeout sets an overall per-request timeout. Requests have no timeout
// by default.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// New creates a client for the API rooted at baseURL. Requests are traced
// through an OpenTelemetry transport.
func New(baseURL string, logger zerolog.Logger, opts ...Option) *Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	hc := &http.Client{}
	if o.httpClient != nil {
		copied := *o.httpClient
		hc = &copied
	}
	transport := hc.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	hc.Transport = otelhttp.NewTransport(transport)
	if o.timeout > 0 {
		hc.Timeout = o.timeout
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		logger:     logger.With().Str("component", "apiclient").Logger(),
	}
}

// ProductForm holds the fields submitted when creating or updating a product.
type ProductForm struct {
	Name        string
	Description string
	Price       int64
	SortOrder   int
	IsAvailable bool
	Image       *model.Image
}

// Products fetches the public catalogue.
func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/products", "", nil, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")

	var products []model.Product
	if err := c.do(req, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SubmitOrder posts an order as a URL-encoded form.
func (c *Client) SubmitOrder(ctx context.Context, order model.OrderRequest) (*model.OrderResponse, error) {
	form := url.Values{}
	form.Set("items", order.Items)
	form.Set("total_amount", strconv.FormatInt(order.TotalAmount, 10))
	form.Set("client_phone", order.ClientPhone)
	form.Set("client_comment", order.ClientComment)

	req, err := c.newRequest(ctx, http.MethodPost, "/api/orders", "",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}

	var resp model.OrderResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, serverError(resp.Error)
	}
	return &resp, nil
}

// Login exchanges the admin password for a bearer token.
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	body, err := json.Marshal(model.LoginRequest{Password: password})
	if err != nil {
		return "", fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/admin/login", "", bytes.NewReader(body), "application/json")
	if err != nil {
		return "", err
	}

	var resp model.LoginResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.Token == "" {
		msg := resp.Error
		if msg == "" {
			msg = "invalid password"
		}
		return "", model.NewDomainError(model.ErrCodeAuth, msg)
	}
	return resp.Token, nil
}

// AdminProducts lists every product, hidden ones included.
func (c *Client) AdminProducts(ctx context.Context, token string) ([]model.Product, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/admin/products", token, nil, "")
	if err != nil {
		return nil, err
	}

	var products []model.Product
	if err := c.do(req, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct creates a product and returns its id.
func (c *Client) CreateProduct(ctx context.Context, token string, form ProductForm) (int64, error) {
	body, contentType, err := encodeProductForm(form)
	if err != nil {
		return 0, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/admin/products", token, body, contentType)
	if err != nil {
		return 0, err
	}

	var resp model.StatusResponse
	if err := c.do(req, &resp); err != nil {
		return 0, err
	}
	if !resp.Success {
		return 0, serverError(resp.Error)
	}
	return resp.ProductID, nil
}

// UpdateProduct replaces the editable fields of product id.
func (c *Client) UpdateProduct(ctx context.Context, token string, id int64, form ProductForm) error {
	body, contentType, err := encodeProductForm(form)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPut, productPath(id), token, body, contentType)
	if err != nil {
		return err
	}
	return c.doStatus(req)
}

// DeleteProduct removes product id.
func (c *Client) DeleteProduct(ctx context.Context, token string, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, productPath(id), token, nil, "")
	if err != nil {
		return err
	}
	return c.doStatus(req)
}

// HideAll marks every product unavailable.
func (c *Client) HideAll(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/admin/hide-all", token, nil, "")
	if err != nil {
		return err
	}
	return c.doStatus(req)
}

// ShowAll marks every product available.
func (c *Client) ShowAll(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/admin/show-all", token, nil, "")
	if err != nil {
		return err
	}
	return c.doStatus(req)
}

// Orders lists all orders, newest first.
func (c *Client) Orders(ctx context.Context, token string) ([]model.Order, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/admin/orders", token, nil, "")
	if err != nil {
		return nil, err
	}

	var orders []model.Order
	if err := c.do(req, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// send performs req and returns the response when its status is 2xx. The
// caller closes the body.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("request failed")
		return nil, model.WrapDomainError(model.ErrCodeNetwork, "request failed", err)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api call")

	if err := statusError(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// do sends req and decodes the JSON body into out.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return model.WrapDomainError(model.ErrCodeNetwork, "invalid response", err)
	}
	return nil
}

// doStatus sends req and checks the {success, error} envelope. An empty
// body on a 2xx response counts as success.
func (c *Client) doStatus(req *http.Request) error {
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.WrapDomainError(model.ErrCodeNetwork, "failed to read response", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var status model.StatusResponse
	if err := json.Unmarshal(data, &status); err != nil {
		return model.WrapDomainError(model.ErrCodeNetwork, "invalid response", err)
	}
	if !status.Success {
		return serverError(status.Error)
	}
	return nil
}

func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := readErrorMessage(resp.Body)
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if msg == "" {
			msg = "not authorised"
		}
		return model.NewDomainError(model.ErrCodeAuth, msg)
	case http.StatusNotFound:
		if msg == "" {
			msg = "not found"
		}
		return model.NewDomainError(model.ErrCodeNotFound, msg)
	default:
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return model.NewDomainError(model.ErrCodeNetwork, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, msg))
	}
}

func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var envelope model.ErrorResponse
	if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
		return envelope.Error
	}
	return ""
}

func serverError(msg string) error {
	if msg == "" {
		msg = "unknown error"
	}
	return model.NewDomainError(model.ErrCodeServer, msg)
}

func productPath(id int64) string {
	return "/api/admin/products/" + strconv.FormatInt(id, 10)
}

func encodeProductForm(form ProductForm) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"name", form.Name},
		{"description", form.Description},
		{"price", strconv.FormatInt(form.Price, 10)},
		{"sort_order", strconv.Itoa(form.SortOrder)},
		{"is_available", strconv.FormatBool(form.IsAvailable)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("failed to encode product form: %w", err)
		}
	}

	if form.Image != nil && form.Image.Filename != "" {
		part, err := w.CreateFormFile("image", form.Image.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode product image: %w", err)
		}
		if _, err := part.Write(form.Image.Data); err != nil {
			return nil, "", fmt.Errorf("failed to encode product image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to encode product form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
