package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/repository"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
	return gormDB, mock
}

func TestProductFindByID_DecodesVariants(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProductRepository(gormDB)

	rows := sqlmock.NewRows([]string{"id", "name", "price", "category", "sizes", "colors", "in_stock", "stock"}).
		AddRow("p1", "Glass Bangle", 450.0, "bangles", `[{"size":"M","stock":3,"available":true}]`, `[]`, false, 0)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
		WithArgs("p1", 1).
		WillReturnRows(rows)

	p, err := repo.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, p.Sizes, 1)
	assert.Equal(t, 3, p.Sizes[0].Stock)
	stock, ok := p.StockFor("M", "")
	assert.True(t, ok)
	assert.Equal(t, 3, stock)
}

func TestProductFindByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProductRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	p, err := repo.FindByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.Nil(t, p)
}

func TestAddressCreate_FirstBecomesDefault(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormAddressRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "addresses"`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "addresses" SET "is_default"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "addresses"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	addr := &models.Address{UserID: "u1", FullName: "Rina", Phone: "01712345678", Address: "House 1", District: "Dhaka", Thana: "Gulshan"}
	require.NoError(t, repo.Create(context.Background(), addr))
	assert.True(t, addr.IsDefault)
	assert.NotEmpty(t, addr.ID)
}

func TestAddressCreate_NonDefaultLeavesOthers(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormAddressRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "addresses"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "addresses"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	addr := &models.Address{UserID: "u1", FullName: "Rina"}
	require.NoError(t, repo.Create(context.Background(), addr))
	assert.False(t, addr.IsDefault)
}

func TestAddressSetDefault_ClearsOthers(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormAddressRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "addresses" SET "is_default"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "addresses" SET "is_default"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	assert.NoError(t, repo.SetDefault(context.Background(), "u1", "a2"))
}

func TestAddressSetDefault_UnknownAddressRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormAddressRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "addresses" SET "is_default"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SetDefault(context.Background(), "u1", "other-users-address")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestAddressListByUser(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormAddressRepository(gormDB)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "full_name", "district", "is_default", "created_at"}).
		AddRow("a2", "u1", "Rina", "Dhaka", true, now).
		AddRow("a1", "u1", "Rina", "Khulna", false, now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "addresses" WHERE user_id = $1 ORDER BY is_default DESC,created_at ASC`)).
		WithArgs("u1").
		WillReturnRows(rows)

	list, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].IsDefault)
}

func TestOrderCreate(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	key := "k1"
	err := repo.Create(context.Background(), &models.Order{
		ID:             "o1",
		UserID:         "u1",
		IdempotencyKey: &key,
		OrderItems:     []models.OrderItem{{ProductID: "p1", Price: 450, Quantity: 2}},
		PaymentMethod:  "cod",
		Status:         models.OrderStatusPending,
	})
	assert.NoError(t, err)
}

func TestOrderFindByIdempotencyKey_Missing(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE idempotency_key = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	o, err := repo.FindByIdempotencyKey(context.Background(), "k1")
	assert.NoError(t, err)
	assert.Nil(t, o)
}

func TestOrderFindByIdempotencyKey_Found(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	rows := sqlmock.NewRows([]string{"id", "user_id", "order_items", "shipping_address", "payment_method", "total_price", "status"}).
		AddRow("o1", "u1", `[{"product":"p1","price":450,"quantity":2}]`, `{"fullName":"Rina","district":"Dhaka"}`, "cod", 960.0, "pending")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(rows)

	o, err := repo.FindByIdempotencyKey(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)
	require.Len(t, o.OrderItems, 1)
	assert.Equal(t, "Dhaka", o.ShippingAddress.District)
}
