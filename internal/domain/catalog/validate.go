package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError reports a rejected mutation input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ShopInput carries the user-editable fields of a shop form.
type ShopInput struct {
	Name        string
	Description string
	Logo        *string
}

// ProductInput carries the user-editable fields of a product form. Price and
// StockLevel arrive as raw text and are parsed permissively.
type ProductInput struct {
	Name        string
	Price       string
	StockLevel  string
	Description string
	Image       *string
}

// ValidateShopInput trims and checks the required shop fields.
func ValidateShopInput(in ShopInput) (ShopInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return in, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if in.Description == "" {
		return in, &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	return in, nil
}

// ValidateProductInput trims and checks the required product fields and
// resolves the numeric fields. Unparsable numbers are not rejected.
func ValidateProductInput(in ProductInput) (Product, error) {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	if name == "" {
		return Product{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if description == "" {
		return Product{}, &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	return Product{
		Name:        name,
		Price:       ParsePrice(in.Price),
		StockLevel:  ParseStockLevel(in.StockLevel),
		Description: description,
		Image:       in.Image,
	}, nil
}

// ParsePrice parses a price magnitude. Unparsable or negative input yields
// zero rather than an error, matching the permissive behavior of the admin
// forms this replaces.
func ParsePrice(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ParseStockLevel parses a stock level. Unparsable or negative input yields
// zero, same policy as ParsePrice.
func ParseStockLevel(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
