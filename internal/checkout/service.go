package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
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

// Service turns a consumer's cart into one pending order per farmer.
type Service interface {
	Checkout(ctx context.Context, consumerID uuid.UUID, input Input) ([]orders.OrderDTO, error)
}

// Input is the validated checkout payload.
type Input struct {
	PaymentMethod   enums.PaymentMethod
	ShippingDetails types.ShippingDetails
	Notes           *string
}

type service struct {
	carts    *cart.Repository
	products *product.Repository
	orders   *orders.Repository
	dbClient *db.Client
}

// NewService constructs the checkout coordinator.
func NewService(carts *cart.Repository, products *product.Repository, orderRepo *orders.Repository, dbClient *db.Client) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		carts:    carts,
		products: products,
		orders:   orderRepo,
		dbClient: dbClient,
	}, nil
}

// Checkout validates the header, reserves stock line by line, writes one
// order per farmer and empties the cart, all inside one transaction. Any
// failed reservation rolls the whole thing back: no partial orders, no
// partial decrements.
func (s *service) Checkout(ctx context.Context, consumerID uuid.UUID, input Input) ([]orders.OrderDTO, error) {
	if err := orders.ValidateHeader(input.PaymentMethod, input.ShippingDetails); err != nil {
		return nil, err
	}

	var created []models.Order
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txCarts := s.carts.WithTx(tx)
		txProducts := s.products.WithTx(tx)
		txOrders := s.orders.WithTx(tx)

		staged, err := txCarts.FindByConsumer(ctx, consumerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
		}
		if len(staged.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		lines := make([]orders.Line, 0, len(staged.Items))
		for _, item := range staged.Items {
			// Reload inside the transaction; the preloaded snapshot may be stale.
			listing, err := txProducts.FindByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product no longer exists").
						WithDetails(map[string]any{"product_id": item.ProductID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
			}
			if err := txProducts.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			lines = append(lines, orders.Line{Product: listing, Quantity: item.Quantity})
		}

		built := orders.BuildFarmerOrders(orders.OrderHeader{
			ConsumerID:      consumerID,
			PaymentMethod:   input.PaymentMethod,
			ShippingDetails: input.ShippingDetails,
			Notes:           input.Notes,
		}, lines)
		for i := range built {
			if _, err := txOrders.Create(ctx, &built[i]); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
			}
		}

		if err := txCarts.ClearItems(ctx, staged.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
		}

		created = built
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders.NewOrderDTOs(created), nil
}
