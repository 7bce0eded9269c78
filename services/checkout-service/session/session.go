// Package session ties one shopper's cart, pending intent and login state
// together and runs the checkout flow.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	awspkg "github.com/rayhanbeg/Sajbela-sub000/pkg/aws"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/address"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/cart"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/events"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/intent"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/order"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/shipping"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/variant"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/auth"
	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/logger"
)

// UserAPI is the storefront API available once a shopper has logged in.
type UserAPI interface {
	cart.Backend
	ListAddresses(ctx context.Context) ([]models.Address, error)
	CreateAddress(ctx context.Context, a models.Address) (*models.Address, error)
	SetDefaultAddress(ctx context.Context, addressID string) error
	CreateOrder(ctx context.Context, req *models.OrderRequest) (*models.Order, error)
}

// UserFactory builds the storefront API for a bearer token.
type UserFactory func(token string) UserAPI

// Deps are the collaborators shared by every session.
type Deps struct {
	Catalog cart.Catalog
	Users   UserFactory
	Tokens  *auth.TokenParser
	Events  events.Publisher
	Metrics awspkg.MetricsRecorder
	Logger  *zap.Logger
}

// Session is one shopper.
type Session struct {
	ID   string
	Cart *cart.Store

	deps     Deps
	logger   *zap.Logger
	slot     *intent.Slot
	recorder *intent.Recorder
	replayer *intent.Replayer

	mu       sync.Mutex
	userID   string
	user     UserAPI
	lastSeen time.Time

	background sync.WaitGroup
}

func newSession(id string, deps Deps, storage intent.Storage, now time.Time) *Session {
	l := deps.Logger.With(zap.String(logger.SessionIDKey, id))
	slot := intent.NewSlot(storage, l)
	return &Session{
		ID:       id,
		Cart:     cart.NewStore(deps.Catalog, l),
		deps:     deps,
		logger:   l,
		slot:     slot,
		recorder: intent.NewRecorder(slot, l),
		replayer: intent.NewReplayer(slot, l),
		lastSeen: now,
	}
}

// UserID returns the logged in user, or "".
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Authenticated reports whether a user is logged in.
func (s *Session) Authenticated() bool {
	return s.UserID() != ""
}

func (s *Session) currentUser() UserAPI {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Login binds the session to the user holding token and switches the cart
// to that user's server cart. A failed cart load does not fail the login;
// the returned cart reports the error status instead.
func (s *Session) Login(ctx context.Context, token string) (models.Cart, error) {
	userID, err := s.deps.Tokens.UserID(token)
	if err != nil {
		return s.Cart.Snapshot(), apperrors.Wrap(apperrors.ErrAuthRequired, "Invalid or expired token", err)
	}
	user := s.deps.Users(token)

	s.mu.Lock()
	s.userID = userID
	s.user = user
	s.mu.Unlock()

	c, err := s.Cart.OnAuthenticate(ctx, user)
	if err != nil {
		s.count(ctx, awspkg.MetricCartLoadDegraded)
		logger.For(ctx, s.logger).Warn("cart load after login failed", zap.String("user_id", userID), zap.Error(err))
	}
	logger.For(ctx, s.logger).Info("shopper logged in", zap.String("user_id", userID))
	return c, nil
}

// Logout drops the user binding and returns to an empty guest cart. A
// pending intent survives logout.
func (s *Session) Logout(ctx context.Context) models.Cart {
	s.mu.Lock()
	s.userID = ""
	s.user = nil
	s.mu.Unlock()
	logger.For(ctx, s.logger).Info("shopper logged out")
	return s.Cart.OnLogout()
}

// LoadCart refreshes the cart. A failed load leaves the last known items in
// place and is reported through the cart status, not as an error.
func (s *Session) LoadCart(ctx context.Context) models.Cart {
	c, err := s.Cart.Load(ctx)
	if err != nil {
		s.count(ctx, awspkg.MetricCartLoadDegraded)
	}
	return c
}

// Availability resolves sel against the product's stock for display.
func (s *Session) Availability(ctx context.Context, productID string, sel variant.Selection) (variant.Availability, error) {
	p, err := s.deps.Catalog.GetProduct(ctx, productID)
	if err != nil {
		return variant.Availability{}, err
	}
	return variant.Resolve(p, sel), nil
}

// ActionResult is what a product page buy button leads to.
type ActionResult struct {
	Cart     models.Cart `json:"cart"`
	Redirect string      `json:"redirect,omitempty"`
}

// ProductAction runs add-to-cart or buy-now from a product page. The
// selection is checked first. An unauthenticated shopper gets the intent
// recorded and an auth_required error carrying the register redirect.
func (s *Session) ProductAction(ctx context.Context, action intent.Action, in cart.AddInput, currentPath string) (ActionResult, error) {
	if in.Quantity < 1 {
		return ActionResult{Cart: s.Cart.Snapshot()},
			apperrors.OnField(apperrors.ErrValidation, "quantity", "Quantity must be at least 1")
	}
	p, err := s.deps.Catalog.GetProduct(ctx, in.ProductID)
	if err != nil {
		return ActionResult{Cart: s.Cart.Snapshot()}, err
	}
	in.Selection = variant.AxisOf(p).Normalize(in.Selection)
	if err := variant.Resolve(p, in.Selection).Admit(in.Quantity); err != nil {
		return ActionResult{Cart: s.Cart.Snapshot()}, err
	}

	if !s.Authenticated() {
		pending := intent.Intent{
			ProductID:    in.ProductID,
			SelectedSize: in.Size,
			Quantity:     in.Quantity,
			Action:       action,
		}
		if in.Color != "" {
			pending.SelectedColor = colorChoice(p, in.Color)
		}
		redirect, err := s.recorder.Record(ctx, pending, currentPath)
		if err != nil {
			return ActionResult{Cart: s.Cart.Snapshot()}, err
		}
		s.count(ctx, awspkg.MetricIntentRecorded)
		events.Emit(ctx, &s.background, s.deps.Events, s.logger, events.Event{
			Type:      events.TypeIntentRecorded,
			SessionID: s.ID,
			Data:      map[string]any{"product_id": in.ProductID, "action": string(action)},
		})
		return ActionResult{Cart: s.Cart.Snapshot(), Redirect: redirect},
			apperrors.RedirectTo(apperrors.ErrAuthRequired, redirect)
	}

	c, err := s.Cart.AddItem(ctx, in)
	if err != nil {
		if apperrors.As(err).Kind == apperrors.KindOutOfStock {
			s.count(ctx, awspkg.MetricCartOutOfStock)
		}
		return ActionResult{Cart: c}, err
	}
	res := ActionResult{Cart: c}
	if action == intent.ActionBuyNow {
		res.Redirect = intent.CheckoutPath
	}
	return res, nil
}

func colorChoice(p *models.Product, name string) *models.ColorChoice {
	for _, c := range p.Colors {
		if strings.EqualFold(c.Name, name) {
			return &models.ColorChoice{Name: c.Name, HexCode: c.HexCode}
		}
	}
	return &models.ColorChoice{Name: name}
}

// MountProduct is called when a product page is shown. It replays a pending
// intent for that product once the shopper is authenticated.
func (s *Session) MountProduct(ctx context.Context, productID string) (intent.Outcome, error) {
	out, err := s.replayer.OnProductMount(ctx, productID, s.Authenticated(), s.Cart)
	if out.Replayed {
		s.count(ctx, awspkg.MetricIntentReplayed)
		events.Emit(ctx, &s.background, s.deps.Events, s.logger, events.Event{
			Type:      events.TypeIntentReplayed,
			SessionID: s.ID,
			UserID:    s.UserID(),
			Data:      map[string]any{"product_id": productID, "action": string(out.Action), "ok": err == nil},
		})
	}
	return out, err
}

// PendingIntent returns the intent waiting for replay, or nil.
func (s *Session) PendingIntent(ctx context.Context) (*intent.Intent, error) {
	return s.slot.Pending(ctx)
}

// ClearIntent drops the pending intent.
func (s *Session) ClearIntent(ctx context.Context) error {
	return s.slot.Clear(ctx)
}

// Addresses lists the shopper's saved addresses. Guests have none.
func (s *Session) Addresses(ctx context.Context) ([]models.Address, error) {
	user := s.currentUser()
	if user == nil {
		return nil, nil
	}
	return user.ListAddresses(ctx)
}

// ShippingQuote prices delivery of the current cart to the effective
// address. An address list that cannot be read counts as no address.
func (s *Session) ShippingQuote(ctx context.Context) (shipping.Quote, *models.Address) {
	c := s.Cart.Snapshot()
	list, err := s.Addresses(ctx)
	if err != nil {
		logger.For(ctx, s.logger).Warn("address list unavailable for shipping quote", zap.Error(err))
	}
	addr := address.Effective(list)
	return shipping.QuoteFor(c.TotalAmount, addr), addr
}

// CheckoutInput is a place-order request.
type CheckoutInput struct {
	// AddressID picks a saved address; Address supplies a new one. With
	// neither, the effective address is used.
	AddressID     string          `json:"addressId,omitempty"`
	Address       *models.Address `json:"address,omitempty"`
	PaymentMethod string          `json:"paymentMethod"`
}

// CheckoutResult is a placed order.
type CheckoutResult struct {
	Order   *models.Order        `json:"order"`
	Request *models.OrderRequest `json:"request"`
	Cart    models.Cart          `json:"cart"`
}

// Checkout assembles and submits an order from the current cart. The cart
// is cleared only after the storefront has accepted the order. The address
// used becomes the shopper's default in the background, unless it already
// is; that step cannot fail checkout.
func (s *Session) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	user := s.currentUser()
	if user == nil {
		return nil, apperrors.RedirectTo(apperrors.ErrAuthRequired, intent.RedirectTo(intent.CheckoutPath))
	}
	log := logger.For(ctx, s.logger)

	addr, err := s.checkoutAddress(ctx, user, in)
	if err != nil {
		return nil, err
	}

	c := s.Cart.Snapshot()
	req, err := order.Assemble(c, addr, in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	s.count(ctx, awspkg.MetricCartCheckouts)

	start := time.Now()
	placed, err := user.CreateOrder(ctx, req)
	if err != nil {
		s.count(ctx, awspkg.MetricOrdersFailed)
		log.Warn("order submission failed", zap.String("idempotency_key", req.IdempotencyKey), zap.Error(err))
		return nil, err
	}
	s.count(ctx, awspkg.MetricOrdersCreated)
	if s.deps.Metrics != nil {
		_ = s.deps.Metrics.RecordLatency(ctx, awspkg.MetricOrderSubmitLatency, time.Since(start), map[string]string{"Service": "checkout-service"})
	}
	log.Info("order submitted", zap.String("order_id", placed.ID), zap.Float64("total", req.TotalPrice))

	if addr := req.ShippingAddress; addr.ID == "" || !addr.IsDefault {
		s.saveDefaultAddress(ctx, user, addr)
	}

	cleared, err := s.Cart.Clear(ctx)
	if err != nil {
		log.Warn("cart clear after order failed", zap.String("order_id", placed.ID), zap.Error(err))
		cleared = s.Cart.Snapshot()
	}

	events.Emit(ctx, &s.background, s.deps.Events, s.logger, events.Event{
		Type:      events.TypeOrderSubmitted,
		SessionID: s.ID,
		UserID:    s.UserID(),
		Data: map[string]any{
			"order_id":       placed.ID,
			"total_price":    req.TotalPrice,
			"payment_method": string(req.PaymentMethod),
			"items":          len(req.OrderItems),
		},
	})
	return &CheckoutResult{Order: placed, Request: req, Cart: cleared}, nil
}

func (s *Session) checkoutAddress(ctx context.Context, user UserAPI, in CheckoutInput) (*models.Address, error) {
	if in.Address != nil {
		a := *in.Address
		return &a, nil
	}
	list, err := user.ListAddresses(ctx)
	if err != nil {
		return nil, err
	}
	if in.AddressID != "" {
		a := address.Find(list, in.AddressID)
		if a == nil {
			return nil, apperrors.OnField(apperrors.ErrValidation, "addressId", "Address not found")
		}
		return a, nil
	}
	return address.Effective(list), nil
}

// saveDefaultAddress makes addr the shopper's default without blocking the
// caller. Failures are only logged.
func (s *Session) saveDefaultAddress(ctx context.Context, user UserAPI, addr models.Address) {
	log := logger.For(ctx, s.logger)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var err error
		if addr.ID != "" {
			err = user.SetDefaultAddress(bgCtx, addr.ID)
		} else {
			addr.IsDefault = true
			_, err = user.CreateAddress(bgCtx, addr)
		}
		if err != nil {
			log.Warn("saving default address failed", zap.Error(err))
		}
	}()
}

// Wait blocks until background work started by the session has finished.
func (s *Session) Wait() {
	s.background.Wait()
}

func (s *Session) count(ctx context.Context, metric string) {
	if s.deps.Metrics == nil || !s.deps.Metrics.IsEnabled() {
		return
	}
	if err := s.deps.Metrics.RecordCount(ctx, metric, map[string]string{"Service": "checkout-service"}); err != nil {
		logger.For(ctx, s.logger).Debug("metric not recorded", zap.String("metric", metric), zap.Error(err))
	}
}
