//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListShops(t *testing.T) {
	resp := doGet(t, "/api/shops")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	shops := decodeJSON[[]shopResponse](t, resp)
	if len(shops) != 3 {
		t.Fatalf("expected 3 shops, got %d", len(shops))
	}
}

func TestGetShop_Fields(t *testing.T) {
	seeded := findShopByName(t, "Harbor Goods")

	resp := doGet(t, "/api/shops/"+seeded.ID)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	shop := decodeJSON[shopResponse](t, resp)
	if shop.Name != "Harbor Goods" {
		t.Errorf("name: got %q, want %q", shop.Name, "Harbor Goods")
	}
	if shop.Description != "General store on the waterfront" {
		t.Errorf("description: got %q", shop.Description)
	}
	if shop.Logo == nil {
		t.Error("logo: got null, want URL")
	}
	if len(shop.Products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(shop.Products))
	}

	var compass *productResponse
	for i := range shop.Products {
		if shop.Products[i].Name == "Brass Compass" {
			compass = &shop.Products[i]
			break
		}
	}
	if compass == nil {
		t.Fatal("product 'Brass Compass' not found")
	}
	if compass.Price != 89.0 {
		t.Errorf("price: got %v, want 89", compass.Price)
	}
	if compass.StockLevel != 3 {
		t.Errorf("stockLevel: got %d, want 3", compass.StockLevel)
	}
	if compass.Image != nil {
		t.Errorf("image: got %v, want null", *compass.Image)
	}
}

func TestGetShop_NotFound(t *testing.T) {
	resp := doGet(t, "/api/shops/no-such-shop")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}

func TestCreateShop_Validation(t *testing.T) {
	resp := doPost(t, "/api/shops", map[string]any{"name": "   "})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// TestShopLifecycle drives a shop through create, partial update, product
// replacement, the non-empty delete precondition, and final deletion.
func TestShopLifecycle(t *testing.T) {
	resp := doPost(t, "/api/shops", map[string]any{
		"name":        "Lifecycle Test Shop",
		"description": "created by the integration suite",
	})
	if resp.StatusCode != http.StatusCreated {
		resp.Body.Close()
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[shopResponse](t, resp)
	resp.Body.Close()

	if created.ID == "" {
		t.Fatal("create: shop ID is empty")
	}
	if len(created.Products) != 0 {
		t.Fatalf("create: expected no products, got %d", len(created.Products))
	}

	// Cleanup even if an assertion below fails: clear products, then delete.
	defer func() {
		resp := doPatch(t, "/api/shops/"+created.ID, map[string]any{"products": []any{}})
		resp.Body.Close()
		resp = doDelete(t, "/api/shops/"+created.ID)
		resp.Body.Close()
	}()

	// Partial update: rename only, description must survive.
	resp = doPatch(t, "/api/shops/"+created.ID, map[string]any{"name": "Lifecycle Shop v2"})
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("patch name: expected 200, got %d", resp.StatusCode)
	}
	patched := decodeJSON[shopResponse](t, resp)
	resp.Body.Close()

	if patched.Name != "Lifecycle Shop v2" {
		t.Errorf("patch name: got %q", patched.Name)
	}
	if patched.Description != "created by the integration suite" {
		t.Errorf("patch name clobbered description: got %q", patched.Description)
	}

	// Replace the product collection.
	resp = doPatch(t, "/api/shops/"+created.ID, map[string]any{
		"products": []map[string]any{
			{"name": "Widget", "price": 3.5, "stockLevel": 7, "description": "test widget"},
		},
	})
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("patch products: expected 200, got %d", resp.StatusCode)
	}
	withProducts := decodeJSON[shopResponse](t, resp)
	resp.Body.Close()

	if len(withProducts.Products) != 1 {
		t.Fatalf("patch products: expected 1 product, got %d", len(withProducts.Products))
	}
	if withProducts.Products[0].ID == "" {
		t.Error("patch products: product ID not assigned")
	}

	// Deleting a shop that still owns products must fail and change nothing.
	resp = doDelete(t, "/api/shops/"+created.ID)
	if resp.StatusCode != http.StatusConflict {
		resp.Body.Close()
		t.Fatalf("delete non-empty: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doGet(t, "/api/shops/"+created.ID)
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("shop gone after failed delete: %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Empty it, then delete for real.
	resp = doPatch(t, "/api/shops/"+created.ID, map[string]any{"products": []any{}})
	resp.Body.Close()

	resp = doDelete(t, "/api/shops/"+created.ID)
	if resp.StatusCode != http.StatusNoContent {
		resp.Body.Close()
		t.Fatalf("delete empty: expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doGet(t, "/api/shops/"+created.ID)
	if resp.StatusCode != http.StatusNotFound {
		resp.Body.Close()
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
