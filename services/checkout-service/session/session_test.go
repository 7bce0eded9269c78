package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/cart"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/events"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/intent"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/session"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/session/sessiontest"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/variant"
	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
)

func setup(t *testing.T) (*sessiontest.Storefront, *session.Manager) {
	t.Helper()
	sf := sessiontest.NewStorefront(sessiontest.Catalog()...)
	return sf, session.NewManager(sf.Deps(), nil, time.Hour)
}

func dhakaAddress(id string, isDefault bool) models.Address {
	return models.Address{
		ID: id, FullName: "Nusrat Jahan", Phone: "01712345678", Address: "House 12",
		District: "Dhaka", Thana: "Dhanmondi", IsDefault: isDefault,
	}
}

func TestProductAction_GuestRecordsIntent(t *testing.T) {
	ctx := context.Background()
	_, m := setup(t)
	s := m.Create()

	res, err := s.ProductAction(ctx, intent.ActionAddToCart,
		cart.AddInput{ProductID: "p2", Quantity: 2, Selection: variant.Selection{Color: "Red"}}, "/product/p2")
	require.True(t, errors.Is(err, apperrors.ErrAuthRequired))
	assert.Equal(t, "/register?redirect=/product/p2", apperrors.As(err).Redirect)
	assert.Equal(t, "/register?redirect=/product/p2", res.Redirect)
	assert.Empty(t, res.Cart.Items)

	pending, err := s.PendingIntent(ctx)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, intent.Intent{
		ProductID:     "p2",
		SelectedColor: &models.ColorChoice{Name: "Red", HexCode: "#ff0000"},
		Quantity:      2,
		Action:        intent.ActionAddToCart,
	}, *pending)
}

func TestProductAction_SelectionCheckedBeforeAuth(t *testing.T) {
	ctx := context.Background()
	_, m := setup(t)
	s := m.Create()

	_, err := s.ProductAction(ctx, intent.ActionBuyNow, cart.AddInput{ProductID: "p1", Quantity: 1}, "/product/p1")
	assert.True(t, errors.Is(err, apperrors.ErrSelectionRequired))

	_, err = s.ProductAction(ctx, intent.ActionBuyNow,
		cart.AddInput{ProductID: "p1", Quantity: 4, Selection: variant.Selection{Size: "M"}}, "/product/p1")
	assert.True(t, errors.Is(err, apperrors.ErrOutOfStock))

	pending, err := s.PendingIntent(ctx)
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestDeferredIntentRoundTrip(t *testing.T) {
	ctx := context.Background()
	sf, m := setup(t)
	s := m.Create()

	_, err := s.ProductAction(ctx, intent.ActionAddToCart,
		cart.AddInput{ProductID: "p2", Quantity: 2, Selection: variant.Selection{Color: "Red"}}, "/product/p2")
	require.Error(t, err)

	_, err = s.Login(ctx, sf.Token("u1"))
	require.NoError(t, err)

	// a different product first leaves the intent alone
	out, err := s.MountProduct(ctx, "p3")
	require.NoError(t, err)
	assert.False(t, out.Replayed)
	pending, _ := s.PendingIntent(ctx)
	require.NotNil(t, pending)

	out, err = s.MountProduct(ctx, "p2")
	require.NoError(t, err)
	assert.True(t, out.Replayed)
	assert.Empty(t, out.Redirect)

	pending, _ = s.PendingIntent(ctx)
	assert.Nil(t, pending)

	c := s.Cart.Snapshot()
	require.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].ProductID)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, "Red", c.Items[0].SelectedColor)
	assert.Len(t, sf.ServerCart("u1"), 1)

	out, err = s.MountProduct(ctx, "p2")
	require.NoError(t, err)
	assert.False(t, out.Replayed)
	assert.Equal(t, 2, s.Cart.Snapshot().TotalItems)
}

func TestBuyNowReplayRedirectsToCheckout(t *testing.T) {
	ctx := context.Background()
	sf, m := setup(t)
	s := m.Create()

	_, _ = s.ProductAction(ctx, intent.ActionBuyNow,
		cart.AddInput{ProductID: "p1", Quantity: 1, Selection: variant.Selection{Size: "M"}}, "/product/p1")
	_, err := s.Login(ctx, sf.Token("u1"))
	require.NoError(t, err)

	out, err := s.MountProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, intent.CheckoutPath, out.Redirect)
}

func TestProductAction_Authenticated(t *testing.T) {
	ctx := context.Background()
	sf, m := setup(t)
	s := m.Create()
	_, err := s.Login(ctx, sf.Token("u1"))
	require.NoError(t, err)

	res, err := s.ProductAction(ctx, intent.ActionBuyNow, cart.AddInput{ProductID: "p3", Quantity: 2}, "/product/p3")
	require.NoError(t, err)
	assert.Equal(t, intent.CheckoutPath, res.Redirect)
	assert.Equal(t, 600.0, res.Cart.TotalAmount)
}

func TestLogin_DiscardsGuestCart(t *testing.T) {
	ctx := context.Background()
	sf, m := setup(t)
	sf.SetServerCart("u1", models.CartItem{ItemID: "srv", ProductID: "p3", Quantity: 1, UnitPrice: 300})
	s := m.Create()

	_, err := s.Cart.AddItem(ctx, cart.AddInput{ProductID: "p3", Quantity: 4})
	require.NoError(t, err)

	c, err := s.Login(ctx, sf.Token("u1"))
	require.NoError(t, err)
	assert.True(t, s.Authenticated())
	assert.Equal(t, "u1", s.UserID())
	require.Len(t, c.Items, 1)
	assert.Equal(t, "srv", c.Items[0].ItemID)
	assert.Equal(t, 1, c.TotalItems)

	c = s.Logout(ctx)
	assert.False(t, s.Authenticated())
	assert.Equal(t, models.CartModeGuest, c.Mode)
	assert.Empty(t, c.Items)
}

func TestLogin_InvalidToken(t *testing.T) {
	_, m := setup(t)
	s := m.Create()
	_, err := s.Login(context.Background(), "garbage")
	assert.True(t, errors.Is(err, apperrors.ErrAuthRequired))
	assert.False(t, s.Authenticated())
}

func TestLogin_CartLoadFailureDegrades(t *testing.T) {
	sf, m := setup(t)
	sf.FailCart = true
	s := m.Create()

	c, err := s.Login(context.Background(), sf.Token("u1"))
	require.NoError(t, err)
	assert.Equal(t, models.CartStatusError, c.Status)
	assert.True(t, s.Authenticated())
}

func TestShippingQuote_UsesEffectiveAddress(t *testing.T) {
	ctx := context.Background()
	sf, m := setup(t)
	sf.SetAddresses("u1",
		models.Address{ID: "a1", District: "Khulna"},
		models.Address{ID: "a2", District: "Dhaka", IsDefault: true},
	)
	s := m.Create()

	q, addr := s.ShippingQuote(ctx)
	assert.Nil(t, addr)
	assert.Equal(t, 100, q.Shipping)

	_, _ = s.Login(ctx, sf.Token("u1"))
	_, err := s.Cart.AddItem(ctx, cart.AddInput{ProductID: "p3", Quantity: 1})
	require.NoError(t, err)

	q, addr = s.ShippingQuote(ctx)
	require.NotNil(t, addr)
	assert.Equal(t, "a2", addr.ID)
	assert.Equal(t, 60, q.Shipping)
	assert.Equal(t, 360.0, q.Total)
}

func TestCheckout_Success(t *testing.T) {
	ctx := context.Background()
	sf, m := setup(t)
	sf.SetAddresses("u1", dhakaAddress("a1", false), dhakaAddress("a2", true))
	s := m.Create()
	_, _ = s.Login(ctx, sf.Token("u1"))
	_, err := s.Cart.AddItem(ctx, cart.AddInput{ProductID: "p3", Quantity: 2})
	require.NoError(t, err)

	// a1 is not the default; checking out with it makes it one
	res, err := s.Checkout(ctx, session.CheckoutInput{AddressID: "a1", PaymentMethod: "cod"})
	require.NoError(t, err)
	assert.Equal(t, "order-1", res.Order.ID)
	assert.Equal(t, 660.0, res.Request.TotalPrice)
	assert.Empty(t, res.Cart.Items)
	assert.Empty(t, sf.ServerCart("u1"))

	select {
	case id := <-sf.DefaultSaved:
		assert.Equal(t, "a1", id)
	case <-time.After(time.Second):
		t.Fatal("default address was not saved")
	}
	s.Wait()
	assert.True(t, sf.Addresses("u1")[0].IsDefault)
	assert.False(t, sf.Addresses("u1")[1].IsDefault)
}

func TestCheckout_NewAddressSavedAsDefault(t *testing.T) {
	ctx := context.Background()
	sf, m := setup(t)
	s := m.Create()
	_, _ = s.Login(ctx, sf.Token("u1"))
	_, _ = s.Cart.AddItem(ctx, cart.AddInput{ProductID: "p3", Quantity: 1})

	addr := dhakaAddress("", false)
	addr.District = "Khulna"
	res, err := s.Checkout(ctx, session.CheckoutInput{Address: &addr, PaymentMethod: "bkash"})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Request.ShippingPrice)

	s.Wait()
	saved := sf.Addresses("u1")
	require.Len(t, saved, 1)
	assert.True(t, saved[0].IsDefault)
	assert.Equal(t, "Khulna", saved[0].District)
}

func TestCheckout_AddressSaveFailureDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	sf, m := setup(t)
	sf.FailAddressSave = true
	sf.SetAddresses("u1", dhakaAddress("a1", true), dhakaAddress("a2", false))
	s := m.Create()
	_, _ = s.Login(ctx, sf.Token("u1"))
	_, _ = s.Cart.AddItem(ctx, cart.AddInput{ProductID: "p3", Quantity: 1})

	res, err := s.Checkout(ctx, session.CheckoutInput{AddressID: "a2", PaymentMethod: "nagad"})
	require.NoError(t, err)
	assert.NotNil(t, res.Order)
	s.Wait()
	assert.Equal(t, "a2", <-sf.DefaultSaved)
	assert.Len(t, sf.Orders(), 1)
	assert.True(t, sf.Addresses("u1")[0].IsDefault)
}

func TestCheckout_DefaultAddressIsNotResaved(t *testing.T) {
	ctx := context.Background()
	sf, m := setup(t)
	sf.SetAddresses("u1", dhakaAddress("a1", true))
	s := m.Create()
	_, _ = s.Login(ctx, sf.Token("u1"))
	_, _ = s.Cart.AddItem(ctx, cart.AddInput{ProductID: "p3", Quantity: 1})

	_, err := s.Checkout(ctx, session.CheckoutInput{PaymentMethod: "cod"})
	require.NoError(t, err)
	s.Wait()
	assert.Empty(t, sf.DefaultSaved)
}

func TestProductAction_RejectsQuantityBelowOne(t *testing.T) {
	ctx := context.Background()
	_, m := setup(t)
	s := m.Create()

	for _, q := range []int{0, -1} {
		_, err := s.ProductAction(ctx, intent.ActionAddToCart, cart.AddInput{ProductID: "p3", Quantity: q}, "/product/p3")
		require.True(t, errors.Is(err, apperrors.ErrValidation), q)
		assert.Equal(t, "quantity", apperrors.As(err).Field)
	}
	pending, err := s.PendingIntent(ctx)
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestCheckout_SubmitFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	sf, m := setup(t)
	sf.FailOrders = true
	sf.SetAddresses("u1", dhakaAddress("a1", true))
	s := m.Create()
	_, _ = s.Login(ctx, sf.Token("u1"))
	_, _ = s.Cart.AddItem(ctx, cart.AddInput{ProductID: "p3", Quantity: 1})

	_, err := s.Checkout(ctx, session.CheckoutInput{PaymentMethod: "cod"})
	assert.True(t, errors.Is(err, apperrors.ErrNetwork))
	assert.Len(t, s.Cart.Snapshot().Items, 1)
	assert.Len(t, sf.ServerCart("u1"), 1)
}

func TestCheckout_Validation(t *testing.T) {
	ctx := context.Background()
	sf, m := setup(t)
	s := m.Create()

	_, err := s.Checkout(ctx, session.CheckoutInput{PaymentMethod: "cod"})
	require.True(t, errors.Is(err, apperrors.ErrAuthRequired))
	assert.Equal(t, "/register?redirect=/checkout", apperrors.As(err).Redirect)

	_, _ = s.Login(ctx, sf.Token("u1"))
	_, err = s.Checkout(ctx, session.CheckoutInput{PaymentMethod: "cod"})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, _ = s.Cart.AddItem(ctx, cart.AddInput{ProductID: "p3", Quantity: 1})
	_, err = s.Checkout(ctx, session.CheckoutInput{PaymentMethod: "cod"})
	assert.Equal(t, "shippingAddress", apperrors.As(err).Field)

	_, err = s.Checkout(ctx, session.CheckoutInput{AddressID: "nope", PaymentMethod: "cod"})
	assert.Equal(t, "addressId", apperrors.As(err).Field)
	assert.Empty(t, sf.Orders())
}

func TestManager(t *testing.T) {
	_, m := setup(t)
	s := m.Create()
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get("unknown")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = m.Resume("not-a-uuid")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	resumed, err := m.Resume(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, resumed)
}

func TestManager_ResumeKeepsIntentAfterEviction(t *testing.T) {
	ctx := context.Background()
	sf, _ := setup(t)
	m := session.NewManager(sf.Deps(), nil, time.Nanosecond)
	s := m.Create()
	_, _ = s.ProductAction(ctx, intent.ActionAddToCart, cart.AddInput{ProductID: "p3", Quantity: 1}, "/product/p3")

	time.Sleep(time.Millisecond)
	assert.Equal(t, 1, m.Evict())
	assert.Equal(t, 0, m.Len())

	again, err := m.Resume(s.ID)
	require.NoError(t, err)
	assert.NotSame(t, s, again)
	pending, err := again.PendingIntent(ctx)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "p3", pending.ProductID)
}

func TestManager_RunStopsWithContext(t *testing.T) {
	_, m := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	time.Sleep(10 * time.Millisecond)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, ev.Type)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestManagerWait_JoinsEventPublishes(t *testing.T) {
	ctx := context.Background()
	sf := sessiontest.NewStorefront(sessiontest.Catalog()...)
	sf.SetAddresses("u1", dhakaAddress("a1", true))
	pub := &recordingPublisher{}
	deps := sf.Deps()
	deps.Events = pub
	m := session.NewManager(deps, nil, time.Hour)

	s := m.Create()
	_, _ = s.Login(ctx, sf.Token("u1"))
	_, _ = s.Cart.AddItem(ctx, cart.AddInput{ProductID: "p3", Quantity: 1})
	_, err := s.Checkout(ctx, session.CheckoutInput{PaymentMethod: "cod"})
	require.NoError(t, err)

	m.Wait()
	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Equal(t, []string{events.TypeOrderSubmitted}, pub.types)
}

func TestProductAction_RecordsProductSpelling(t *testing.T) {
	ctx := context.Background()
	_, m := setup(t)
	s := m.Create()

	_, err := s.ProductAction(ctx, intent.ActionAddToCart,
		cart.AddInput{ProductID: "p2", Quantity: 1, Selection: variant.Selection{Color: "red"}}, "/product/p2")
	require.True(t, errors.Is(err, apperrors.ErrAuthRequired))

	pending, err := s.PendingIntent(ctx)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, &models.ColorChoice{Name: "Red", HexCode: "#ff0000"}, pending.SelectedColor)
}
