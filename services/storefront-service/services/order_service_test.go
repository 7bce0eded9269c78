package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/services"
)

func orderRequest() models.CreateOrderRequest {
	return models.CreateOrderRequest{
		OrderItems: []models.OrderItem{
			{ProductID: "p2", Price: 1200, Quantity: 2, SelectedColor: "Red"},
		},
		ShippingAddress: models.ShippingAddress{
			FullName: "Rina", Phone: "01712345678", Address: "House 1", District: "Dhaka", Thana: "Gulshan",
		},
		PaymentMethod: "cod",
		ItemsPrice:    2400,
		ShippingPrice: 0,
		TotalPrice:    2400,
	}
}

type orderFixture struct {
	svc    *services.OrderService
	orders *fakeOrders
	idem   *fakeIdem
	sns    *fakeSNS
}

func newOrderFixture() orderFixture {
	f := orderFixture{orders: newFakeOrders(), idem: &fakeIdem{}, sns: &fakeSNS{}}
	f.svc = services.NewOrderService(f.orders, newFakeProducts(), f.idem, services.OrderServiceOptions{
		SNS:         f.sns,
		SNSTopicArn: "arn:aws:sns:ap-south-1:000000000000:orders",
	})
	return f
}

func TestOrderService_Create(t *testing.T) {
	f := newOrderFixture()

	order, created, err := f.svc.Create(context.Background(), "u1", "k1", orderRequest())
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "Pearl Necklace", order.OrderItems[0].Name)
	assert.Equal(t, models.DefaultCountry, order.ShippingAddress.Country)
	assert.Equal(t, order.ID, f.idem.keys["k1"])
	require.Len(t, f.sns.messages, 1)
	assert.Contains(t, string(f.sns.messages[0]), `"event":"order.created"`)
}

func TestOrderService_SameKeyReturnsSameOrder(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	first, _, err := f.svc.Create(ctx, "u1", "k1", orderRequest())
	require.NoError(t, err)
	second, created, err := f.svc.Create(ctx, "u1", "k1", orderRequest())
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.orders.created)
}

func TestOrderService_KeyFoundInDatabaseWhenRedisLostIt(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	first, _, err := f.svc.Create(ctx, "u1", "k1", orderRequest())
	require.NoError(t, err)
	delete(f.idem.keys, "k1")

	second, created, err := f.svc.Create(ctx, "u1", "k1", orderRequest())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestOrderService_KeyOfAnotherUser(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	_, _, err := f.svc.Create(ctx, "u1", "k1", orderRequest())
	require.NoError(t, err)
	_, _, err = f.svc.Create(ctx, "u2", "k1", orderRequest())
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestOrderService_ConcurrentDuplicatesCreateOnce(t *testing.T) {
	f := newOrderFixture()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = f.svc.Create(context.Background(), "u1", "k1", orderRequest())
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, f.orders.created)
}

func TestOrderService_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.CreateOrderRequest)
		kind   apperrors.Kind
		field  string
	}{
		{"unknown product", func(r *models.CreateOrderRequest) { r.OrderItems[0].ProductID = "nope" }, apperrors.KindValidation, "orderItems"},
		{"stale price", func(r *models.CreateOrderRequest) { r.OrderItems[0].Price = 1000 }, apperrors.KindValidation, "orderItems"},
		{"over stock", func(r *models.CreateOrderRequest) {
			r.OrderItems[0].Quantity = 6
			r.ItemsPrice, r.TotalPrice = 7200, 7200
		}, apperrors.KindOutOfStock, ""},
		{"items price", func(r *models.CreateOrderRequest) { r.ItemsPrice = 2000 }, apperrors.KindValidation, "itemsPrice"},
		{"negative shipping", func(r *models.CreateOrderRequest) { r.ShippingPrice = -1 }, apperrors.KindValidation, "shippingPrice"},
		{"total", func(r *models.CreateOrderRequest) { r.TotalPrice = 2460 }, apperrors.KindValidation, "totalPrice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			req := orderRequest()
			tt.mutate(&req)

			_, _, err := f.svc.Create(context.Background(), "u1", "", req)
			require.Error(t, err)
			appErr := apperrors.As(err)
			assert.Equal(t, tt.kind, appErr.Kind)
			assert.Equal(t, tt.field, appErr.Field)
			assert.Zero(t, f.orders.created)
		})
	}
}

func TestOrderService_StoreFailure(t *testing.T) {
	f := newOrderFixture()
	f.orders.err = errors.New("connection reset")

	_, _, err := f.svc.Create(context.Background(), "u1", "k1", orderRequest())
	assert.True(t, errors.Is(err, apperrors.ErrInternalServer))
	assert.Empty(t, f.idem.keys)
	assert.Empty(t, f.sns.messages)
}
