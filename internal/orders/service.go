package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/agrilinkhq/agrilink-backend/internal/products"
	"github.com/agrilinkhq/agrilink-backend/pkg/db"
	"github.com/agrilinkhq/agrilink-backend/pkg/db/models"
	"github.com/agrilinkhq/agrilink-backend/pkg/enums"
	pkgerrors "github.com/agrilinkhq/agrilink-backend/pkg/errors"
	"github.com/agrilinkhq/agrilink-backend/pkg/pagination"
	"github.com/agrilinkhq/agrilink-backend/pkg/types"
)

// Service exposes the order ledger operations.
type Service interface {
	CreateOrder(ctx context.Context, consumerID uuid.UUID, input CreateOrderInput) ([]OrderDTO, error)
	GetOrder(ctx context.Context, actorID uuid.UUID, orderID uuid.UUID) (*OrderDTO, error)
	ListConsumerOrders(ctx context.Context, consumerID uuid.UUID, page pagination.Params) ([]OrderDTO, error)
	ListFarmerOrders(ctx context.Context, farmerID uuid.UUID, page pagination.Params) ([]OrderDTO, error)
	SetStatus(ctx context.Context, actorID, orderID uuid.UUID, input SetStatusInput) (*OrderDTO, error)
}

// CreateOrderInput is the direct order creation payload. The items may span
// multiple farmers; one order is produced per farmer, exactly as checkout
// would split them.
type CreateOrderInput struct {
	Items           []OrderLineInput
	PaymentMethod   enums.PaymentMethod
	ShippingDetails types.ShippingDetails
	Notes           *string
}

// OrderLineInput requests a quantity of one product.
type OrderLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// SetStatusInput carries the requested transition.
type SetStatusInput struct {
	Status       enums.OrderStatus
	CancelReason *string
}

type service struct {
	repo     *Repository
	products *product.Repository
	dbClient *db.Client
}

// NewService constructs an order service instance.
func NewService(repo *Repository, products *product.Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, products: products, dbClient: dbClient}, nil
}

// CreateOrder reserves stock and writes one order per farmer atomically.
// Failure of any reservation rolls back every order and every decrement.
func (s *service) CreateOrder(ctx context.Context, consumerID uuid.UUID, input CreateOrderInput) ([]OrderDTO, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if err := ValidateHeader(input.PaymentMethod, input.ShippingDetails); err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]struct{}, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		if _, dup := seen[line.ProductID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in order items")
		}
		seen[line.ProductID] = struct{}{}
	}

	var created []models.Order
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txProducts := s.products.WithTx(tx)
		txOrders := s.repo.WithTx(tx)

		lines := make([]Line, 0, len(input.Items))
		for _, item := range input.Items {
			listing, err := txProducts.FindByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
			}
			if err := txProducts.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			lines = append(lines, Line{Product: listing, Quantity: item.Quantity})
		}

		orders := BuildFarmerOrders(OrderHeader{
			ConsumerID:      consumerID,
			PaymentMethod:   input.PaymentMethod,
			ShippingDetails: input.ShippingDetails,
			Notes:           input.Notes,
		}, lines)
		for i := range orders {
			if _, err := txOrders.Create(ctx, &orders[i]); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
			}
		}
		created = orders
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewOrderDTOs(created), nil
}

// GetOrder returns the order when the actor is its consumer or its farmer.
func (s *service) GetOrder(ctx context.Context, actorID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ConsumerID != actorID && order.FarmerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
	}
	return NewOrderDTO(order), nil
}

// ListConsumerOrders returns the consumer's purchase history.
func (s *service) ListConsumerOrders(ctx context.Context, consumerID uuid.UUID, page pagination.Params) ([]OrderDTO, error) {
	orders, err := s.repo.ListByConsumer(ctx, consumerID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list consumer orders")
	}
	return NewOrderDTOs(orders), nil
}

// ListFarmerOrders returns orders addressed to the farmer.
func (s *service) ListFarmerOrders(ctx context.Context, farmerID uuid.UUID, page pagination.Params) ([]OrderDTO, error) {
	orders, err := s.repo.ListByFarmer(ctx, farmerID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list farmer orders")
	}
	return NewOrderDTOs(orders), nil
}

// SetStatus moves the order along its lifecycle. Only the owning farmer may
// transition; cancelling requires a reason and returns reserved stock.
func (s *service) SetStatus(ctx context.Context, actorID, orderID uuid.UUID, input SetStatusInput) (*OrderDTO, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.FarmerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the order's farmer can update status")
	}
	if !CanTransition(order.Status, input.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition disallowed").
			WithDetails(map[string]any{
				"from": string(order.Status),
				"to":   string(input.Status),
			})
	}

	cancelling := input.Status == enums.OrderStatusCancelled
	if cancelling {
		if input.CancelReason == nil || *input.CancelReason == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancel_reason is required when cancelling")
		}
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.repo.WithTx(tx)

		order.Status = input.Status
		if cancelling {
			order.CancelReason = input.CancelReason
			txProducts := s.products.WithTx(tx)
			for _, item := range order.Items {
				if err := txProducts.Release(ctx, item.ProductID, item.Quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: release stock")
				}
			}
		}
		if _, err := txOrders.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return order, nil
}

// ValidateHeader checks the shared order header fields. Checkout reuses it so
// both creation paths reject the same inputs.
func ValidateHeader(method enums.PaymentMethod, shipping types.ShippingDetails) error {
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if missing := shipping.MissingFields(); len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing shipping fields").
			WithDetails(map[string]any{"missing": missing})
	}
	return nil
}
