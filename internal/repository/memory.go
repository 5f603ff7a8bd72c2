package repository

import (
	"context"
	"sync"

	"github.com/bazarlab/marketplace-admin/internal/domain/catalog"
)

var _ catalog.Repository = (*MemoryStore)(nil)

// MemoryStore is an in-memory catalog.Repository. It backs unit tests and
// the feed importer's dry-run mode. All methods return deep copies so a
// fetched snapshot never aliases stored state.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	shops map[string]*catalog.Shop
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{shops: make(map[string]*catalog.Shop)}
}

// List returns all shops in insertion order.
func (m *MemoryStore) List(_ context.Context) ([]catalog.Shop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]catalog.Shop, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, copyShop(m.shops[id]))
	}
	return out, nil
}

// GetByID returns one shop or catalog.ErrShopNotFound.
func (m *MemoryStore) GetByID(_ context.Context, id string) (*catalog.Shop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.shops[id]
	if !ok {
		return nil, catalog.ErrShopNotFound
	}
	c := copyShop(s)
	return &c, nil
}

// Create stores a new shop.
func (m *MemoryStore) Create(_ context.Context, shop *catalog.Shop) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := copyShop(shop)
	m.shops[shop.ID] = &c
	m.order = append(m.order, shop.ID)
	return nil
}

// Update applies a partial patch, replacing the product collection when the
// patch carries one.
func (m *MemoryStore) Update(_ context.Context, id string, patch catalog.ShopPatch) (*catalog.Shop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.shops[id]
	if !ok {
		return nil, catalog.ErrShopNotFound
	}

	if patch.Name != nil {
		s.Name = *patch.Name
	}
	if patch.Description != nil {
		s.Description = *patch.Description
	}
	if patch.Logo != nil {
		s.Logo = *patch.Logo
	}
	if patch.Products != nil {
		s.Products = append([]catalog.Product(nil), *patch.Products...)
	}

	c := copyShop(s)
	return &c, nil
}

// Delete removes an empty shop, enforcing the same precondition as the
// PostgreSQL store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.shops[id]
	if !ok {
		return catalog.ErrShopNotFound
	}
	if len(s.Products) > 0 {
		return catalog.ErrShopNotEmpty
	}

	delete(m.shops, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func copyShop(s *catalog.Shop) catalog.Shop {
	c := *s
	c.Products = append([]catalog.Product(nil), s.Products...)
	if s.Products == nil {
		c.Products = []catalog.Product{}
	}
	return c
}
