package catalog

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Service encapsulates shop mutation logic in front of a Repository. A failed
// mutation leaves stored state untouched; callers are expected to re-fetch
// the snapshot after any successful mutation rather than patch it in place.
type Service struct {
	shops Repository
}

// NewService creates a catalog Service backed by the given repository.
func NewService(shops Repository) *Service {
	return &Service{shops: shops}
}

// ListShops returns the full snapshot: every shop with its nested products.
func (s *Service) ListShops(ctx context.Context) ([]Shop, error) {
	shops, err := s.shops.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list shops")
	}
	return shops, nil
}

// GetShop returns a single shop by ID.
func (s *Service) GetShop(ctx context.Context, id string) (*Shop, error) {
	shop, err := s.shops.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return shop, nil
}

// CreateShop validates the input and persists a new shop with a
// server-assigned identifier and an empty product collection.
func (s *Service) CreateShop(ctx context.Context, in ShopInput) (*Shop, error) {
	in, err := ValidateShopInput(in)
	if err != nil {
		return nil, err
	}

	shop := &Shop{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Logo:        in.Logo,
		Products:    []Product{},
	}
	if err := s.shops.Create(ctx, shop); err != nil {
		return nil, errors.Wrap(err, "create shop")
	}
	return shop, nil
}

// UpdateShop applies a partial patch. Name and description, when present,
// must be non-empty after trimming. A products replacement assigns IDs to
// any products arriving without one.
func (s *Service) UpdateShop(ctx context.Context, id string, patch ShopPatch) (*Shop, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
		}
		patch.Name = &trimmed
	}
	if patch.Description != nil {
		trimmed := strings.TrimSpace(*patch.Description)
		if trimmed == "" {
			return nil, &ValidationError{Field: "description", Reason: "must not be empty"}
		}
		patch.Description = &trimmed
	}
	if patch.Products != nil {
		products := make([]Product, len(*patch.Products))
		copy(products, *patch.Products)
		for i := range products {
			if products[i].ID == "" {
				products[i].ID = uuid.New().String()
			}
		}
		patch.Products = &products
	}

	shop, err := s.shops.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, ErrShopNotFound) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "update shop %s", id)
	}
	return shop, nil
}

// DeleteShop removes an empty shop. ErrShopNotEmpty passes through as the
// precondition failure of deleting a shop that still owns products.
func (s *Service) DeleteShop(ctx context.Context, id string) error {
	err := s.shops.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrShopNotFound) || errors.Is(err, ErrShopNotEmpty) {
			return err
		}
		return errors.Wrapf(err, "delete shop %s", id)
	}
	return nil
}
