package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	cart "github.com/agrilinkhq/agrilink-backend/internal/cart"
	orders "github.com/agrilinkhq/agrilink-backend/internal/orders"
	product "github.com/agrilinkhq/agrilink-backend/internal/products"
	"github.com/agrilinkhq/agrilink-backend/pkg/db"
	"github.com/agrilinkhq/agrilink-backend/pkg/db/models"
	"github.com/agrilinkhq/agrilink-backend/pkg/enums"
	pkgerrors "github.com/agrilinkhq/agrilink-backend/pkg/errors"
	"github.com/agrilinkhq/agrilink-backend/pkg/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  farmer_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  unit TEXT NOT NULL,
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  status TEXT NOT NULL,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  consumer_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  consumer_id TEXT NOT NULL,
  farmer_id TEXT NOT NULL,
  total_amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL,
  shipping_details TEXT NOT NULL,
  notes TEXT,
  cancel_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  unit_price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`,
	} {
		if err := conn.Exec(ddl).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return conn
}

type fixture struct {
	svc      Service
	cartSvc  cart.Service
	conn     *gorm.DB
	products *product.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := newTestDB(t)
	products := product.NewRepository(conn)
	carts := cart.NewRepository(conn)

	svc, err := NewService(carts, products, orders.NewRepository(conn), db.NewWithConn(conn))
	if err != nil {
		t.Fatalf("new checkout service: %v", err)
	}
	cartSvc, err := cart.NewService(carts, products)
	if err != nil {
		t.Fatalf("new cart service: %v", err)
	}
	return &fixture{svc: svc, cartSvc: cartSvc, conn: conn, products: products}
}

func (f *fixture) seedProduct(t *testing.T, farmerID uuid.UUID, name string, price int64, quantity int) *models.Product {
	t.Helper()

	listing := &models.Product{
		ID:       uuid.New(),
		FarmerID: farmerID,
		Name:     name,
		Category: enums.ProductCategoryVegetables,
		Unit:     enums.ProductUnitKg,
		Price:    decimal.NewFromInt(price),
		Quantity: quantity,
		Status:   enums.DeriveProductStatus(quantity),
	}
	if err := f.conn.Create(listing).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return listing
}

func (f *fixture) addToCart(t *testing.T, consumerID, productID uuid.UUID, quantity int) {
	t.Helper()
	if _, err := f.cartSvc.UpsertItem(context.Background(), consumerID, cart.ItemInput{
		ProductID: productID,
		Quantity:  quantity,
	}); err != nil {
		t.Fatalf("add to cart: %v", err)
	}
}

func testInput() Input {
	return Input{
		PaymentMethod: enums.PaymentMethodCashOnDelivery,
		ShippingDetails: types.ShippingDetails{
			FullName:   "Meera Joshi",
			Address:    "2 Field View",
			City:       "Satara",
			State:      "MH",
			PostalCode: "415001",
			Phone:      "9123456780",
		},
	}
}

func TestCheckoutSplitsCartAcrossFarmers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	consumerID := uuid.New()
	farmer1 := uuid.New()
	farmer2 := uuid.New()
	productA := f.seedProduct(t, farmer1, "Product A", 10, 20)
	productB := f.seedProduct(t, farmer2, "Product B", 5, 20)

	f.addToCart(t, consumerID, productA.ID, 2)
	f.addToCart(t, consumerID, productB.ID, 1)

	created, err := f.svc.Checkout(ctx, consumerID, testInput())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(created))
	}
	if created[0].FarmerID != farmer1 || created[0].TotalAmount != "20.00" {
		t.Fatalf("unexpected first order: %+v", created[0])
	}
	if created[1].FarmerID != farmer2 || created[1].TotalAmount != "5.00" {
		t.Fatalf("unexpected second order: %+v", created[1])
	}
	for _, order := range created {
		if order.ConsumerID != consumerID || order.Status != string(enums.OrderStatusPending) {
			t.Fatalf("unexpected order header: %+v", order)
		}
	}

	gotA, err := f.products.FindByID(ctx, productA.ID)
	if err != nil {
		t.Fatalf("reload product A: %v", err)
	}
	gotB, err := f.products.FindByID(ctx, productB.ID)
	if err != nil {
		t.Fatalf("reload product B: %v", err)
	}
	if gotA.Quantity != 18 || gotB.Quantity != 19 {
		t.Fatalf("expected stock 18/19, got %d/%d", gotA.Quantity, gotB.Quantity)
	}

	after, err := f.cartSvc.GetCart(ctx, consumerID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(after.Items) != 0 {
		t.Fatalf("cart must be empty after checkout, got %+v", after.Items)
	}
}

func TestCheckoutInsufficientStockAbortsAtomically(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	consumerID := uuid.New()
	plenty := f.seedProduct(t, uuid.New(), "Plenty", 10, 50)
	scarce := f.seedProduct(t, uuid.New(), "ProductC", 7, 3)

	f.addToCart(t, consumerID, plenty.ID, 5)
	f.addToCart(t, consumerID, scarce.ID, 3)

	// Another sale shrinks stock between add-to-cart and checkout.
	if err := f.products.Reserve(ctx, scarce.ID, 1); err != nil {
		t.Fatalf("concurrent reserve: %v", err)
	}

	_, err := f.svc.Checkout(ctx, consumerID, testInput())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["product"] != "ProductC" || details["available"] != 2 || details["requested"] != 3 {
		t.Fatalf("unexpected shortfall details: %+v", typed.Details())
	}

	// Atomicity: no orders, no decrements beyond the concurrent sale,
	// cart untouched.
	var orderCount int64
	if err := f.conn.Table("orders").Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("no orders may survive failed checkout, found %d", orderCount)
	}
	gotPlenty, err := f.products.FindByID(ctx, plenty.ID)
	if err != nil {
		t.Fatalf("reload plenty: %v", err)
	}
	if gotPlenty.Quantity != 50 {
		t.Fatalf("expected plenty stock 50, got %d", gotPlenty.Quantity)
	}
	after, err := f.cartSvc.GetCart(ctx, consumerID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(after.Items) != 2 {
		t.Fatalf("failed checkout must leave the cart intact, got %d items", len(after.Items))
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), uuid.New(), testInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected empty cart error, got %v", err)
	}
}

func TestCheckoutVanishedProduct(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	consumerID := uuid.New()
	listing := f.seedProduct(t, uuid.New(), "Fleeting", 15, 10)

	f.addToCart(t, consumerID, listing.ID, 2)
	if err := f.products.Delete(ctx, listing.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	_, err := f.svc.Checkout(ctx, consumerID, testInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for vanished product, got %v", err)
	}
}

func TestCheckoutRejectsBadHeader(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	consumerID := uuid.New()
	listing := f.seedProduct(t, uuid.New(), "Ginger", 90, 10)
	f.addToCart(t, consumerID, listing.ID, 1)

	bad := testInput()
	bad.PaymentMethod = enums.PaymentMethod("barter")
	if _, err := f.svc.Checkout(ctx, consumerID, bad); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error for payment method, got %v", err)
	}

	bad = testInput()
	bad.ShippingDetails.Phone = ""
	_, err := f.svc.Checkout(ctx, consumerID, bad)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for shipping, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details, got %T", typed.Details())
	}
	missing, ok := details["missing"].([]string)
	if !ok || len(missing) != 1 || missing[0] != "phone" {
		t.Fatalf("unexpected missing fields: %+v", details["missing"])
	}
}
