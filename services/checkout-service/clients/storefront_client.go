// Package clients talks to the storefront service over REST.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/models"
	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/logger"
)

// IdempotencyHeader carries the order idempotency key.
const IdempotencyHeader = "Idempotency-Key"

// StorefrontClient reads the catalog and hands out per-shopper clients.
// There are no retries: a timeout is reported like any other failure.
type StorefrontClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewStorefrontClient(baseURL string, timeout time.Duration, l *zap.Logger) *StorefrontClient {
	if l == nil {
		l = zap.NewNop()
	}
	return &StorefrontClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  l,
	}
}

// Do sends a request to the storefront.
func (s *StorefrontClient) Do(ctx context.Context, method, path string, query url.Values, headers http.Header, body io.Reader) (*http.Response, error) {
	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		for _, vv := range v {
			req.Header.Add(k, vv)
		}
	}
	if id, ok := ctx.Value(logger.RequestIDKey).(string); ok && id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	return s.client.Do(req)
}

// GetProduct reads one product from the catalog.
func (s *StorefrontClient) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	var p models.Product
	if err := s.call(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), nil, nil, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = productID
	}
	return &p, nil
}

// ForUser returns a client that acts for the shopper holding token.
func (s *StorefrontClient) ForUser(token string) *UserClient {
	return &UserClient{storefront: s, token: token}
}

func (s *StorefrontClient) call(ctx context.Context, method, path string, headers http.Header, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		if headers == nil {
			headers = http.Header{}
		}
		headers.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.Do(ctx, method, path, nil, headers, body)
	if err != nil {
		logger.For(ctx, s.logger).Warn("storefront request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return apperrors.Wrap(apperrors.ErrNetwork, "", err)
	}
	defer resp.Body.Close()

	logger.For(ctx, s.logger).Debug("storefront request",
		zap.String("method", method), zap.String("path", path),
		zap.Int("status", resp.StatusCode), zap.Duration("latency", time.Since(start)))

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.Wrap(apperrors.ErrNetwork, "Unreadable storefront response", err)
	}
	return nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	msg := eb.Error
	if msg == "" {
		msg = eb.Message
	}
	cause := fmt.Errorf("upstream error: status=%d body=%s", resp.StatusCode, string(raw))

	var base *apperrors.Error
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		base = apperrors.ErrAuthRequired
	case resp.StatusCode == http.StatusNotFound:
		base = apperrors.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		base = apperrors.ErrOutOfStock
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		if eb.Field != "" {
			return apperrors.OnField(apperrors.ErrValidation, eb.Field, msg)
		}
		base = apperrors.ErrValidation
	default:
		base = apperrors.ErrNetwork
	}
	return apperrors.Wrap(base, msg, cause)
}

// UserClient is the storefront API of one authenticated shopper.
type UserClient struct {
	storefront *StorefrontClient
	token      string
}

func (u *UserClient) headers() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+u.token)
	return h
}

func (u *UserClient) GetCart(ctx context.Context) (*models.RemoteCart, error) {
	var c models.RemoteCart
	if err := u.storefront.call(ctx, http.MethodGet, "/cart", u.headers(), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (u *UserClient) AddToCart(ctx context.Context, req models.AddItemRequest) (*models.RemoteCart, error) {
	var c models.RemoteCart
	if err := u.storefront.call(ctx, http.MethodPost, "/cart/add", u.headers(), req, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (u *UserClient) UpdateCartItem(ctx context.Context, req models.UpdateItemRequest) (*models.RemoteCart, error) {
	var c models.RemoteCart
	if err := u.storefront.call(ctx, http.MethodPut, "/cart/update", u.headers(), req, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (u *UserClient) RemoveCartItem(ctx context.Context, itemID string) (*models.RemoteCart, error) {
	var c models.RemoteCart
	if err := u.storefront.call(ctx, http.MethodDelete, "/cart/remove/"+url.PathEscape(itemID), u.headers(), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (u *UserClient) ClearCart(ctx context.Context) (*models.RemoteCart, error) {
	var c models.RemoteCart
	if err := u.storefront.call(ctx, http.MethodDelete, "/cart/clear", u.headers(), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (u *UserClient) ListAddresses(ctx context.Context) ([]models.Address, error) {
	var list []models.Address
	if err := u.storefront.call(ctx, http.MethodGet, "/addresses", u.headers(), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (u *UserClient) CreateAddress(ctx context.Context, a models.Address) (*models.Address, error) {
	var out models.Address
	if err := u.storefront.call(ctx, http.MethodPost, "/addresses", u.headers(), a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UserClient) SetDefaultAddress(ctx context.Context, addressID string) error {
	return u.storefront.call(ctx, http.MethodPut, "/addresses/"+url.PathEscape(addressID)+"/default", u.headers(), nil, nil)
}

// CreateOrder submits req, sending its idempotency key as a header.
func (u *UserClient) CreateOrder(ctx context.Context, req *models.OrderRequest) (*models.Order, error) {
	h := u.headers()
	if req.IdempotencyKey != "" {
		h.Set(IdempotencyHeader, req.IdempotencyKey)
	}
	var out models.Order
	if err := u.storefront.call(ctx, http.MethodPost, "/orders", h, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
