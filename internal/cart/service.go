package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/agrilinkhq/agrilink-backend/internal/products"
	"github.com/agrilinkhq/agrilink-backend/pkg/db/models"
	pkgerrors "github.com/agrilinkhq/agrilink-backend/pkg/errors"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the consumer cart operations.
type Service interface {
	GetCart(ctx context.Context, consumerID uuid.UUID) (*CartDTO, error)
	UpsertItem(ctx context.Context, consumerID uuid.UUID, input ItemInput) (*CartDTO, error)
	UpdateItem(ctx context.Context, consumerID, itemID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, consumerID, itemID uuid.UUID) (*CartDTO, error)
	ClearCart(ctx context.Context, consumerID uuid.UUID) error
}

// ItemInput is the validated add/update payload for a single line.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type service struct {
	repo     *Repository
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo *Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

// GetCart returns the consumer's cart, or an empty view when none exists.
func (s *service) GetCart(ctx context.Context, consumerID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindByConsumer(ctx, consumerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmptyCartDTO(consumerID), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	return NewCartDTO(cart), nil
}

// UpsertItem adds a line or replaces the quantity of an existing one. The
// quantity is validated against live stock so the cart stays orderable.
func (s *service) UpsertItem(ctx context.Context, consumerID uuid.UUID, input ItemInput) (*CartDTO, error) {
	if err := validateQuantity(input.Quantity); err != nil {
		return nil, err
	}

	listing, err := s.loadListing(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if listing.Quantity < input.Quantity {
		return nil, product.ErrInsufficientStock(listing.Name, listing.Quantity, input.Quantity)
	}

	cart, err := s.ensureCart(ctx, consumerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindItem(ctx, cart.ID, input.ProductID)
	switch {
	case err == nil:
		if err := s.repo.UpdateItemQuantity(ctx, existing.ID, input.Quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart item")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item := &models.CartItem{
			CartID:    cart.ID,
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
		}
		if _, err := s.repo.CreateItem(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert cart item")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart item")
	}

	return s.GetCart(ctx, consumerID)
}

// UpdateItem changes the quantity of a line that must already exist.
func (s *service) UpdateItem(ctx context.Context, consumerID, itemID uuid.UUID, quantity int) (*CartDTO, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	cart, err := s.repo.FindByConsumer(ctx, consumerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}

	item, err := s.repo.FindItemByID(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart item")
	}

	listing, err := s.loadListing(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if listing.Quantity < quantity {
		return nil, product.ErrInsufficientStock(listing.Name, listing.Quantity, quantity)
	}

	if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart item")
	}
	return s.GetCart(ctx, consumerID)
}

// RemoveItem deletes a line from the cart. Removing the same item twice
// yields NotFound on the second call with the cart unchanged.
func (s *service) RemoveItem(ctx context.Context, consumerID, itemID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindByConsumer(ctx, consumerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}

	removed, err := s.repo.DeleteItemByID(ctx, cart.ID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart item")
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return s.GetCart(ctx, consumerID)
}

// ClearCart removes every line. Clearing an absent cart is a no-op.
func (s *service) ClearCart(ctx context.Context, consumerID uuid.UUID) error {
	cart, err := s.repo.FindByConsumer(ctx, consumerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	if err := s.repo.ClearItems(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
	}
	return nil
}

func (s *service) ensureCart(ctx context.Context, consumerID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByConsumer(ctx, consumerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	created, err := s.repo.Create(ctx, &models.Cart{ConsumerID: consumerID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create cart")
	}
	return created, nil
}

func (s *service) loadListing(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	listing, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return listing, nil
}

func validateQuantity(quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	return nil
}
