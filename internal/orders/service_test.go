package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/agrilinkhq/agrilink-backend/internal/products"
	"github.com/agrilinkhq/agrilink-backend/pkg/db"
	"github.com/agrilinkhq/agrilink-backend/pkg/enums"
	pkgerrors "github.com/agrilinkhq/agrilink-backend/pkg/errors"
	"github.com/agrilinkhq/agrilink-backend/pkg/pagination"
	"github.com/agrilinkhq/agrilink-backend/pkg/types"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn), product.NewRepository(conn), db.NewWithConn(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func testShipping() types.ShippingDetails {
	return types.ShippingDetails{
		FullName:   "Ravi Kumar",
		Address:    "7 Bazaar Lane",
		City:       "Nashik",
		State:      "MH",
		PostalCode: "422001",
		Phone:      "9000000000",
	}
}

func TestCreateOrderSplitsAcrossFarmers(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	consumerID := uuid.New()
	farmer1 := uuid.New()
	farmer2 := uuid.New()
	productA := mustCreateTestProduct(t, conn, farmer1, "Product A", 10, 50)
	productB := mustCreateTestProduct(t, conn, farmer2, "Product B", 5, 50)

	created, err := svc.CreateOrder(ctx, consumerID, CreateOrderInput{
		Items: []OrderLineInput{
			{ProductID: productA.ID, Quantity: 2},
			{ProductID: productB.ID, Quantity: 1},
		},
		PaymentMethod:   enums.PaymentMethodUPI,
		ShippingDetails: testShipping(),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected one order per farmer, got %d", len(created))
	}
	if created[0].FarmerID != farmer1 || created[0].TotalAmount != "20.00" {
		t.Fatalf("unexpected first order: %+v", created[0])
	}
	if created[1].FarmerID != farmer2 || created[1].TotalAmount != "5.00" {
		t.Fatalf("unexpected second order: %+v", created[1])
	}

	reloaded, err := product.NewRepository(conn).FindByID(ctx, productA.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Quantity != 48 {
		t.Fatalf("expected stock 48 after order, got %d", reloaded.Quantity)
	}
}

func TestCreateOrderInsufficientStockRollsBackEverything(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	plenty := mustCreateTestProduct(t, conn, uuid.New(), "Plenty", 10, 100)
	scarce := mustCreateTestProduct(t, conn, uuid.New(), "Scarce", 8, 3)

	_, err := svc.CreateOrder(ctx, uuid.New(), CreateOrderInput{
		Items: []OrderLineInput{
			{ProductID: plenty.ID, Quantity: 10},
			{ProductID: scarce.ID, Quantity: 5},
		},
		PaymentMethod:   enums.PaymentMethodCard,
		ShippingDetails: testShipping(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["product"] != "Scarce" || details["available"] != 3 || details["requested"] != 5 {
		t.Fatalf("unexpected shortfall details: %+v", typed.Details())
	}

	repo := product.NewRepository(conn)
	for _, seeded := range []struct {
		id   uuid.UUID
		want int
	}{{plenty.ID, 100}, {scarce.ID, 3}} {
		got, err := repo.FindByID(ctx, seeded.id)
		if err != nil {
			t.Fatalf("reload product: %v", err)
		}
		if got.Quantity != seeded.want {
			t.Fatalf("rollback must restore stock, want %d got %d", seeded.want, got.Quantity)
		}
	}

	var count int64
	if err := conn.Table("orders").Count(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 0 {
		t.Fatalf("no orders may survive a failed creation, found %d", count)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	listing := mustCreateTestProduct(t, conn, uuid.New(), "Listing", 10, 10)

	cases := []struct {
		name  string
		input CreateOrderInput
	}{
		{"empty items", CreateOrderInput{PaymentMethod: enums.PaymentMethodUPI, ShippingDetails: testShipping()}},
		{"bad payment method", CreateOrderInput{
			Items:           []OrderLineInput{{ProductID: listing.ID, Quantity: 1}},
			PaymentMethod:   enums.PaymentMethod("crypto"),
			ShippingDetails: testShipping(),
		}},
		{"missing shipping fields", CreateOrderInput{
			Items:         []OrderLineInput{{ProductID: listing.ID, Quantity: 1}},
			PaymentMethod: enums.PaymentMethodUPI,
		}},
		{"zero quantity", CreateOrderInput{
			Items:           []OrderLineInput{{ProductID: listing.ID, Quantity: 0}},
			PaymentMethod:   enums.PaymentMethodUPI,
			ShippingDetails: testShipping(),
		}},
		{"duplicate product", CreateOrderInput{
			Items: []OrderLineInput{
				{ProductID: listing.ID, Quantity: 1},
				{ProductID: listing.ID, Quantity: 2},
			},
			PaymentMethod:   enums.PaymentMethodUPI,
			ShippingDetails: testShipping(),
		}},
	}
	for _, tc := range cases {
		_, err := svc.CreateOrder(ctx, uuid.New(), tc.input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	_, err := svc.CreateOrder(ctx, uuid.New(), CreateOrderInput{
		Items:           []OrderLineInput{{ProductID: uuid.New(), Quantity: 1}},
		PaymentMethod:   enums.PaymentMethodUPI,
		ShippingDetails: testShipping(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
}

func TestSetStatusOwnershipAndTransitions(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	consumerID := uuid.New()
	farmerID := uuid.New()
	listing := mustCreateTestProduct(t, conn, farmerID, "Onions", 12, 40)

	created, err := svc.CreateOrder(ctx, consumerID, CreateOrderInput{
		Items:           []OrderLineInput{{ProductID: listing.ID, Quantity: 4}},
		PaymentMethod:   enums.PaymentMethodCashOnDelivery,
		ShippingDetails: testShipping(),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	orderID := created[0].ID

	// Neither the consumer nor a stranger may transition.
	for _, actor := range []uuid.UUID{consumerID, uuid.New()} {
		_, err := svc.SetStatus(ctx, actor, orderID, SetStatusInput{Status: enums.OrderStatusConfirmed})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
			t.Fatalf("expected forbidden for actor %s, got %v", actor, err)
		}
	}

	updated, err := svc.SetStatus(ctx, farmerID, orderID, SetStatusInput{Status: enums.OrderStatusConfirmed})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if updated.Status != string(enums.OrderStatusConfirmed) {
		t.Fatalf("expected confirmed, got %s", updated.Status)
	}

	_, err = svc.SetStatus(ctx, farmerID, orderID, SetStatusInput{Status: enums.OrderStatusDelivered})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict skipping states, got %v", err)
	}

	_, err = svc.SetStatus(ctx, farmerID, orderID, SetStatusInput{Status: enums.OrderStatus("archived")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}

func TestCancelRequiresReasonAndReleasesStock(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	farmerID := uuid.New()
	listing := mustCreateTestProduct(t, conn, farmerID, "Paneer", 300, 10)

	created, err := svc.CreateOrder(ctx, uuid.New(), CreateOrderInput{
		Items:           []OrderLineInput{{ProductID: listing.ID, Quantity: 10}},
		PaymentMethod:   enums.PaymentMethodUPI,
		ShippingDetails: testShipping(),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	orderID := created[0].ID

	repo := product.NewRepository(conn)
	sold, err := repo.FindByID(ctx, listing.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if sold.Quantity != 0 || sold.Status != enums.ProductStatusSoldOut {
		t.Fatalf("expected sold out after full reservation, got %+v", sold)
	}

	_, err = svc.SetStatus(ctx, farmerID, orderID, SetStatusInput{Status: enums.OrderStatusCancelled})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error without reason, got %v", err)
	}

	reason := "out for the season"
	cancelled, err := svc.SetStatus(ctx, farmerID, orderID, SetStatusInput{
		Status:       enums.OrderStatusCancelled,
		CancelReason: &reason,
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != string(enums.OrderStatusCancelled) || cancelled.CancelReason == nil || *cancelled.CancelReason != reason {
		t.Fatalf("unexpected cancelled order: %+v", cancelled)
	}

	restocked, err := repo.FindByID(ctx, listing.ID)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if restocked.Quantity != 10 || restocked.Status != enums.ProductStatusAvailable {
		t.Fatalf("cancellation must restock, got %+v", restocked)
	}

	// Terminal: nothing moves out of cancelled.
	_, err = svc.SetStatus(ctx, farmerID, orderID, SetStatusInput{Status: enums.OrderStatusConfirmed})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict from cancelled, got %v", err)
	}
}

func TestGetOrderVisibility(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	consumerID := uuid.New()
	farmerID := uuid.New()
	listing := mustCreateTestProduct(t, conn, farmerID, "Honey", 450, 5)

	created, err := svc.CreateOrder(ctx, consumerID, CreateOrderInput{
		Items:           []OrderLineInput{{ProductID: listing.ID, Quantity: 1}},
		PaymentMethod:   enums.PaymentMethodBankTransfer,
		ShippingDetails: testShipping(),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	orderID := created[0].ID

	for _, actor := range []uuid.UUID{consumerID, farmerID} {
		got, err := svc.GetOrder(ctx, actor, orderID)
		if err != nil {
			t.Fatalf("get order as %s: %v", actor, err)
		}
		if got.ID != orderID {
			t.Fatalf("expected order %s, got %s", orderID, got.ID)
		}
	}

	_, err = svc.GetOrder(ctx, uuid.New(), orderID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}

	_, err = svc.GetOrder(ctx, consumerID, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListOrdersByParty(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	consumerID := uuid.New()
	farmerID := uuid.New()
	listing := mustCreateTestProduct(t, conn, farmerID, "Ghee", 600, 50)

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateOrder(ctx, consumerID, CreateOrderInput{
			Items:           []OrderLineInput{{ProductID: listing.ID, Quantity: 1}},
			PaymentMethod:   enums.PaymentMethodUPI,
			ShippingDetails: testShipping(),
		}); err != nil {
			t.Fatalf("create order %d: %v", i, err)
		}
	}

	mine, err := svc.ListConsumerOrders(ctx, consumerID, pagination.Params{})
	if err != nil {
		t.Fatalf("list consumer orders: %v", err)
	}
	if len(mine) != 3 {
		t.Fatalf("expected 3 consumer orders, got %d", len(mine))
	}

	incoming, err := svc.ListFarmerOrders(ctx, farmerID, pagination.Params{})
	if err != nil {
		t.Fatalf("list farmer orders: %v", err)
	}
	if len(incoming) != 3 {
		t.Fatalf("expected 3 farmer orders, got %d", len(incoming))
	}

	other, err := svc.ListConsumerOrders(ctx, uuid.New(), pagination.Params{})
	if err != nil {
		t.Fatalf("list other consumer orders: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no orders for stranger, got %d", len(other))
	}
}
