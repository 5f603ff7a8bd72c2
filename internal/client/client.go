// Package client is a typed client for the shop resource API. It mirrors the
// admin screens' data access: fetch the full snapshot, mutate through the
// resource endpoints, and perform product changes as a read-modify-write of
// the owning shop's whole product collection.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/bazarlab/marketplace-admin/internal/domain/catalog"
)

// StatusError reports a non-success HTTP status from the store.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("store returned %d: %s", e.Status, e.Message)
}

// Sentinel errors distinguishing the interesting failure classes.
var (
	ErrNotFound = errors.New("resource not found")
	// ErrPreconditionFailed is returned when deleting a shop that still
	// owns products.
	ErrPreconditionFailed = errors.New("precondition failed")
)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTracerProvider instruments the transport with otelhttp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.http.Transport = otelhttp.NewTransport(base, otelhttp.WithTracerProvider(tp))
	}
}

// Client talks to the shop store. All calls take a context; there is no
// retry or response sequencing — callers re-fetch the snapshot after any
// mutation instead of patching local state.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the store at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Shop is the wire shape of a shop resource.
type Shop struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Logo        *string   `json:"logo"`
	Products    []Product `json:"products"`
}

// Product is the wire shape of a product within a shop.
type Product struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	StockLevel  int     `json:"stockLevel"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

// ShopFields are the mutable shop attributes for create and update.
type ShopFields struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Logo        *string `json:"logo"`
}

// ListShops fetches the full snapshot of shops with nested products.
func (c *Client) ListShops(ctx context.Context) ([]Shop, error) {
	var shops []Shop
	if err := c.do(ctx, http.MethodGet, "/shops", nil, &shops); err != nil {
		return nil, err
	}
	return shops, nil
}

// GetShop fetches a single shop.
func (c *Client) GetShop(ctx context.Context, id string) (*Shop, error) {
	var shop Shop
	if err := c.do(ctx, http.MethodGet, "/shops/"+id, nil, &shop); err != nil {
		return nil, err
	}
	return &shop, nil
}

// CreateShop creates a shop; the server assigns the ID and an empty product
// collection.
func (c *Client) CreateShop(ctx context.Context, fields ShopFields) (*Shop, error) {
	var shop Shop
	if err := c.do(ctx, http.MethodPost, "/shops", fields, &shop); err != nil {
		return nil, err
	}
	return &shop, nil
}

// UpdateShop applies a partial update of the shop's own fields.
func (c *Client) UpdateShop(ctx context.Context, id string, fields ShopFields) (*Shop, error) {
	var shop Shop
	if err := c.do(ctx, http.MethodPatch, "/shops/"+id, fields, &shop); err != nil {
		return nil, err
	}
	return &shop, nil
}

// DeleteShop removes a shop. ErrPreconditionFailed means the shop still owns
// products.
func (c *Client) DeleteShop(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/shops/"+id, nil, nil)
}

// productsPatch is the whole-collection replacement body used by the
// read-modify-write product operations.
type productsPatch struct {
	Products []Product `json:"products"`
}

// AddProduct appends a product to the owning shop. This is a whole-shop
// read-modify-write and is not atomic against concurrent edits of the same
// shop.
func (c *Client) AddProduct(ctx context.Context, shopID string, p Product) (*Shop, error) {
	shop, err := c.GetShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	products := append(append([]Product(nil), shop.Products...), p)
	return c.patchProducts(ctx, shopID, products)
}

// UpdateProduct replaces the product with the same ID in the owning shop.
func (c *Client) UpdateProduct(ctx context.Context, shopID string, p Product) (*Shop, error) {
	shop, err := c.GetShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	products := append([]Product(nil), shop.Products...)
	found := false
	for i := range products {
		if products[i].ID == p.ID {
			products[i] = p
			found = true
			break
		}
	}
	if !found {
		return nil, errors.Wrapf(ErrNotFound, "product %s in shop %s", p.ID, shopID)
	}
	return c.patchProducts(ctx, shopID, products)
}

// DeleteProduct removes one product from the owning shop.
func (c *Client) DeleteProduct(ctx context.Context, shopID, productID string) (*Shop, error) {
	shop, err := c.GetShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(shop.Products))
	for _, p := range shop.Products {
		if p.ID != productID {
			products = append(products, p)
		}
	}
	if len(products) == len(shop.Products) {
		return nil, errors.Wrapf(ErrNotFound, "product %s in shop %s", productID, shopID)
	}
	return c.patchProducts(ctx, shopID, products)
}

func (c *Client) patchProducts(ctx context.Context, shopID string, products []Product) (*Shop, error) {
	var shop Shop
	if err := c.do(ctx, http.MethodPatch, "/shops/"+shopID, productsPatch{Products: products}, &shop); err != nil {
		return nil, err
	}
	return &shop, nil
}

// do performs one request/response cycle, mapping non-2xx statuses to the
// error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusToError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrapf(err, "decode %s %s response", method, path)
		}
	}
	return nil
}

func statusToError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	serr := &StatusError{Status: resp.StatusCode, Message: body.Message}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return errors.Wrap(ErrNotFound, serr.Error())
	case http.StatusConflict:
		return errors.Wrap(ErrPreconditionFailed, serr.Error())
	default:
		return serr
	}
}

// Forms bridging raw user input to wire products, keeping the permissive
// numeric policy of the admin screens.
type ProductForm struct {
	Name        string
	Price       string
	StockLevel  string
	Description string
	Image       *string
}

// BuildProduct validates a product form and converts it to the wire shape.
func BuildProduct(form ProductForm) (Product, error) {
	p, err := catalog.ValidateProductInput(catalog.ProductInput{
		Name:        form.Name,
		Price:       form.Price,
		StockLevel:  form.StockLevel,
		Description: form.Description,
		Image:       form.Image,
	})
	if err != nil {
		return Product{}, err
	}
	return Product{
		Name:        p.Name,
		Price:       p.Price.InexactFloat64(),
		StockLevel:  p.StockLevel,
		Description: p.Description,
		Image:       p.Image,
	}, nil
}
