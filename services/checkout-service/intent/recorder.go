package intent

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/cart"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/variant"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/logger"
)

const (
	// RegisterPath is where an unauthenticated buy attempt is sent.
	RegisterPath = "/register"
	// CheckoutPath is where a replayed buy-now lands.
	CheckoutPath = "/checkout"
)

// Recorder stores an intent for later replay.
type Recorder struct {
	slot   *Slot
	logger *zap.Logger
}

func NewRecorder(slot *Slot, l *zap.Logger) *Recorder {
	if l == nil {
		l = zap.NewNop()
	}
	return &Recorder{slot: slot, logger: l}
}

// Record persists in, replacing any earlier intent, and returns the path the
// shopper must be redirected to in order to authenticate.
func (r *Recorder) Record(ctx context.Context, in Intent, currentPath string) (string, error) {
	if err := in.normalize(); err != nil {
		return "", err
	}
	if err := r.slot.Put(ctx, in); err != nil {
		return "", err
	}
	logger.For(ctx, r.logger).Info("intent recorded",
		zap.String("product_id", in.ProductID), zap.String("action", string(in.Action)))
	return RedirectTo(currentPath), nil
}

// RedirectTo builds the register URL that brings the shopper back to path.
// Anything that is not a local absolute path falls back to the home page.
func RedirectTo(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		path = "/"
	}
	escaped := strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
	return RegisterPath + "?redirect=" + escaped
}

// Adder is the cart operation a replay performs.
type Adder interface {
	AddItem(ctx context.Context, in cart.AddInput) (models.Cart, error)
}

// Outcome describes what a product mount did with the pending intent.
type Outcome struct {
	Replayed bool         `json:"replayed"`
	Action   Action       `json:"action,omitempty"`
	Intent   *Intent      `json:"intent,omitempty"`
	Cart     *models.Cart `json:"cart,omitempty"`
	Redirect string       `json:"redirect,omitempty"`
}

// Replayer applies a pending intent when its product page is mounted by an
// authenticated shopper.
type Replayer struct {
	slot   *Slot
	logger *zap.Logger
}

func NewReplayer(slot *Slot, l *zap.Logger) *Replayer {
	if l == nil {
		l = zap.NewNop()
	}
	return &Replayer{slot: slot, logger: l}
}

// OnProductMount replays the pending intent into c when authenticated and
// the intent is for productID. The slot is emptied atomically before the
// cart is touched, so an intent is applied at most once whatever AddItem
// returns, even when mounts overlap. An intent for a different product is
// left in place.
func (r *Replayer) OnProductMount(ctx context.Context, productID string, authenticated bool, c Adder) (Outcome, error) {
	if !authenticated {
		return Outcome{}, nil
	}
	pending, err := r.slot.Take(ctx, productID)
	if err != nil || pending == nil {
		return Outcome{}, err
	}

	log := logger.For(ctx, r.logger).With(
		zap.String("product_id", pending.ProductID), zap.String("action", string(pending.Action)))

	out := Outcome{Replayed: true, Action: pending.Action, Intent: pending}
	snapshot, err := c.AddItem(ctx, cart.AddInput{
		ProductID: pending.ProductID,
		Quantity:  pending.Quantity,
		Selection: variant.Selection{Size: pending.SelectedSize, Color: pending.ColorName()},
	})
	out.Cart = &snapshot
	if err != nil {
		log.Warn("intent replay failed", zap.Error(err))
		return out, err
	}
	if pending.Action == ActionBuyNow {
		out.Redirect = CheckoutPath
	}
	log.Info("intent replayed")
	return out, nil
}
