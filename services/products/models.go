package main

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Nombre      string          `json:"nombre" db:"nombre"`
	Precio      decimal.Decimal `json:"precio" db:"precio"`
	Descripcion string          `json:"descripcion" db:"descripcion"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// ProductAttributes is the attribute block of a product resource.
type ProductAttributes struct {
	Nombre      string  `json:"nombre"`
	Precio      float64 `json:"precio"`
	Descripcion string  `json:"descripcion"`
}

// ProductResource is the JSON:API resource object for a product.
type ProductResource struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Attributes ProductAttributes `json:"attributes"`
}

// ToJSONAPI shapes the product as a JSON:API resource object. Prices are
// emitted as plain JSON numbers, matching what clients already parse.
func (p *Product) ToJSONAPI() ProductResource {
	return ProductResource{
		Type: "products",
		ID:   strconv.FormatInt(p.ID, 10),
		Attributes: ProductAttributes{
			Nombre:      p.Nombre,
			Precio:      p.Precio.InexactFloat64(),
			Descripcion: p.Descripcion,
		},
	}
}

// productDocument is the request envelope for product writes.
type productDocument struct {
	Data *productData `json:"data"`
}

type productData struct {
	Type       string                 `json:"type"`
	Attributes productWriteAttributes `json:"attributes"`
}

type productWriteAttributes struct {
	Nombre      string           `json:"nombre"`
	Precio      *decimal.Decimal `json:"precio"`
	Descripcion string           `json:"descripcion"`
}

// ErrorObject is a single entry of the uniform error envelope.
type ErrorObject struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// ErrorDocument wraps error entries under the "errors" key.
type ErrorDocument struct {
	Errors []ErrorObject `json:"errors"`
}

func newErrorDocument(status int, title, detail string) ErrorDocument {
	return ErrorDocument{Errors: []ErrorObject{{
		Status: strconv.Itoa(status),
		Title:  title,
		Detail: detail,
	}}}
}
