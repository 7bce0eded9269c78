package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/address"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/cart"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/intent"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/session"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/variant"
	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/logger"
)

const sessionKey = "session"

type SessionController struct {
	manager *session.Manager
	logger  *zap.Logger
}

func NewSessionController(manager *session.Manager, l *zap.Logger) *SessionController {
	if l == nil {
		l = zap.NewNop()
	}
	return &SessionController{manager: manager, logger: l}
}

func (sc *SessionController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": sc.manager.Len()})
}

// LoadSession resolves :session_id for the handlers below it.
func (sc *SessionController) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := sc.manager.Resume(c.Param("session_id"))
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set(sessionKey, s)
		c.Set(logger.SessionIDKey, s.ID)
		c.Next()
	}
}

func current(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// respondError writes err. selection_required and auth_required are control
// flow for the client, so they carry an action instead of only a message.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	switch appErr.Kind {
	case apperrors.KindSelectionRequired:
		c.JSON(appErr.Code, gin.H{"action": "select_variant", "field": appErr.Field, "message": appErr.Message, "kind": appErr.Kind})
	case apperrors.KindAuthRequired:
		c.JSON(appErr.Code, gin.H{"action": "authenticate", "redirect": appErr.Redirect, "message": appErr.Message, "kind": appErr.Kind})
	default:
		c.JSON(appErr.Code, appErr)
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperrors.Wrap(apperrors.ErrValidation, "invalid payload", err))
		return false
	}
	return true
}

// CreateSession starts a new shopper session.
func (sc *SessionController) CreateSession(c *gin.Context) {
	s := sc.manager.Create()
	logger.For(c, sc.logger).Info("session created", zap.String(logger.SessionIDKey, s.ID))
	c.JSON(http.StatusCreated, gin.H{"sessionId": s.ID, "cart": s.Cart.Snapshot()})
}

func (sc *SessionController) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, current(c).Cart.Snapshot())
}

func (sc *SessionController) LoadCart(c *gin.Context) {
	c.JSON(http.StatusOK, current(c).LoadCart(c))
}

func (sc *SessionController) AddItem(c *gin.Context) {
	var in cart.AddInput
	if !bindJSON(c, &in) {
		return
	}
	snapshot, err := current(c).Cart.AddItem(c, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (sc *SessionController) UpdateItem(c *gin.Context) {
	var req updateQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	snapshot, err := current(c).Cart.UpdateQuantity(c, c.Param("key"), *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (sc *SessionController) RemoveItem(c *gin.Context) {
	snapshot, err := current(c).Cart.RemoveItem(c, c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (sc *SessionController) ClearCart(c *gin.Context) {
	snapshot, err := current(c).Cart.Clear(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

type loginRequest struct {
	Token string `json:"token"`
}

// Login binds a storefront access token to the session. The token may come
// in the body or as a bearer header.
func (sc *SessionController) Login(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBindJSON(&req)
	token := strings.TrimSpace(req.Token)
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	}
	if token == "" {
		respondError(c, apperrors.OnField(apperrors.ErrValidation, "token", "token is required"))
		return
	}

	s := current(c)
	snapshot, err := s.Login(c, token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": s.UserID(), "cart": snapshot})
}

func (sc *SessionController) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cart": current(c).Logout(c)})
}

type productActionRequest struct {
	// Quantity defaults to one when the buy button sends none.
	Quantity      *int   `json:"quantity"`
	SelectedSize  string `json:"selectedSize"`
	SelectedColor string `json:"selectedColor"`
	// CurrentPath is where the shopper should return after logging in.
	CurrentPath string `json:"currentPath"`
}

func (sc *SessionController) AddToCart(c *gin.Context) {
	sc.productAction(c, intent.ActionAddToCart)
}

func (sc *SessionController) BuyNow(c *gin.Context) {
	sc.productAction(c, intent.ActionBuyNow)
}

func (sc *SessionController) productAction(c *gin.Context, action intent.Action) {
	var req productActionRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	productID := c.Param("product_id")
	if req.CurrentPath == "" {
		req.CurrentPath = "/product/" + productID
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	res, err := current(c).ProductAction(c, action, cart.AddInput{
		ProductID: productID,
		Quantity:  quantity,
		Selection: variant.Selection{Size: req.SelectedSize, Color: req.SelectedColor},
	}, req.CurrentPath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// MountProduct is called when a product page opens; it may replay a pending
// intent.
func (sc *SessionController) MountProduct(c *gin.Context) {
	out, err := current(c).MountProduct(c, c.Param("product_id"))
	if err != nil {
		resp := apperrors.As(err)
		c.JSON(resp.Code, gin.H{"outcome": out, "error": resp})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (sc *SessionController) Availability(c *gin.Context) {
	sel := variant.Selection{Size: c.Query("size"), Color: c.Query("color")}
	avail, err := current(c).Availability(c, c.Param("product_id"), sel)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"variant":      avail.Kind.String(),
		"availability": avail,
	})
}

func (sc *SessionController) GetIntent(c *gin.Context) {
	pending, err := current(c).PendingIntent(c)
	if err != nil {
		respondError(c, apperrors.Wrap(apperrors.ErrInternalServer, "", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

func (sc *SessionController) ClearIntent(c *gin.Context) {
	if err := current(c).ClearIntent(c); err != nil {
		respondError(c, apperrors.Wrap(apperrors.ErrInternalServer, "", err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (sc *SessionController) Shipping(c *gin.Context) {
	quote, addr := current(c).ShippingQuote(c)
	c.JSON(http.StatusOK, gin.H{"quote": quote, "address": addr})
}

func (sc *SessionController) Addresses(c *gin.Context) {
	list, err := current(c).Addresses(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []models.Address{}
	}
	c.JSON(http.StatusOK, gin.H{"addresses": list, "effective": address.Effective(list)})
}

func (sc *SessionController) Checkout(c *gin.Context) {
	var in session.CheckoutInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := current(c).Checkout(c, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
