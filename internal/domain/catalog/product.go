package catalog

import "github.com/erp/adminpanel/internal/domain/shared"

// Product is a product record as served by GET /products and GET /products/{id}
type Product struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	InStock bool    `json:"inStock"`
}

// ProductInput is the editable field set sent on create and update
type ProductInput struct {
	Name    string  `json:"name" mapstructure:"name" validate:"min=2"`
	Price   float64 `json:"price" mapstructure:"price" validate:"gt=0"`
	InStock bool    `json:"inStock" mapstructure:"inStock"`
}

// Input returns the editable fields of p
func (p Product) Input() ProductInput {
	return ProductInput{
		Name:    p.Name,
		Price:   p.Price,
		InStock: p.InStock,
	}
}

// Filter keeps products whose name contains term, ignoring case
func Filter(products []Product, term string) []Product {
	if term == "" {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if shared.ContainsFold(p.Name, term) {
			out = append(out, p)
		}
	}
	return out
}
