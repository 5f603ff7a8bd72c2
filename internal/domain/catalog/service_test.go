package catalog

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepo is a minimal Repository double recording the last mutation.
type mockRepo struct {
	shops     map[string]*Shop
	created   *Shop
	updatedID string
	patch     ShopPatch
	deletedID string
	err       error
}

func newMockRepo(shops ...Shop) *mockRepo {
	m := &mockRepo{shops: make(map[string]*Shop, len(shops))}
	for i := range shops {
		m.shops[shops[i].ID] = &shops[i]
	}
	return m
}

func (m *mockRepo) List(_ context.Context) ([]Shop, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Shop, 0, len(m.shops))
	for _, s := range m.shops {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Shop, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.shops[id]
	if !ok {
		return nil, ErrShopNotFound
	}
	return s, nil
}

func (m *mockRepo) Create(_ context.Context, shop *Shop) error {
	m.created = shop
	return m.err
}

func (m *mockRepo) Update(_ context.Context, id string, patch ShopPatch) (*Shop, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.shops[id]
	if !ok {
		return nil, ErrShopNotFound
	}
	m.updatedID = id
	m.patch = patch
	return s, nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	s, ok := m.shops[id]
	if !ok {
		return ErrShopNotFound
	}
	if len(s.Products) > 0 {
		return ErrShopNotEmpty
	}
	m.deletedID = id
	return nil
}

func TestServiceCreateShop(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	shop, err := svc.CreateShop(context.Background(), ShopInput{
		Name:        "  Harbor Goods ",
		Description: "waterfront",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, shop.ID)
	assert.Equal(t, "Harbor Goods", shop.Name)
	assert.NotNil(t, shop.Products)
	assert.Empty(t, shop.Products)
	assert.Same(t, shop, repo.created)
}

func TestServiceCreateShop_ValidationFailed(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	_, err := svc.CreateShop(context.Background(), ShopInput{Name: " "})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Nil(t, repo.created, "failed validation must not reach the repository")
}

func TestServiceUpdateShop(t *testing.T) {
	repo := newMockRepo(newShop("s1", "Old"))
	svc := NewService(repo)

	name := " New Name "
	_, err := svc.UpdateShop(context.Background(), "s1", ShopPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "s1", repo.updatedID)
	require.NotNil(t, repo.patch.Name)
	assert.Equal(t, "New Name", *repo.patch.Name)
}

func TestServiceUpdateShop_AssignsProductIDs(t *testing.T) {
	repo := newMockRepo(newShop("s1", "Shop"))
	svc := NewService(repo)

	products := []Product{
		newProduct("keep-id", "Existing", 1, 1),
		{Name: "Fresh", Description: "new product"},
	}
	_, err := svc.UpdateShop(context.Background(), "s1", ShopPatch{Products: &products})
	require.NoError(t, err)

	require.NotNil(t, repo.patch.Products)
	got := *repo.patch.Products
	require.Len(t, got, 2)
	assert.Equal(t, "keep-id", got[0].ID)
	assert.NotEmpty(t, got[1].ID)

	// The caller's slice stays untouched.
	assert.Empty(t, products[1].ID)
}

func TestServiceUpdateShop_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	name := "x"
	_, err := svc.UpdateShop(context.Background(), "missing", ShopPatch{Name: &name})
	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestServiceDeleteShop_Precondition(t *testing.T) {
	repo := newMockRepo(
		newShop("empty", "Empty"),
		newShop("full", "Full", newProduct("p1", "One", 1, 1)),
	)
	svc := NewService(repo)

	require.NoError(t, svc.DeleteShop(context.Background(), "empty"))
	assert.Equal(t, "empty", repo.deletedID)

	err := svc.DeleteShop(context.Background(), "full")
	assert.ErrorIs(t, err, ErrShopNotEmpty)

	err = svc.DeleteShop(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrShopNotFound)
}
