package main

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord representa la existencia de un producto en inventario.
// Hay exactamente un registro por producto y su cantidad nunca es negativa.
type InventoryRecord struct {
	ID         int64     `json:"id" db:"id"`
	ProductoID int64     `json:"producto_id" db:"producto_id"`
	Cantidad   int       `json:"cantidad" db:"cantidad"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// PurchaseRecord es una entrada inmutable del historial de compras. El precio
// unitario es el vigente al momento de la compra y el total se calcula una
// sola vez al persistir.
type PurchaseRecord struct {
	ID             int64           `json:"id" db:"id"`
	ProductoID     int64           `json:"producto_id" db:"producto_id"`
	Cantidad       int             `json:"cantidad" db:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" db:"precio_unitario"`
	Total          decimal.Decimal `json:"total" db:"total"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// Product es la representación remota de un producto del catálogo. Solo vive
// durante el request que lo consultó; no se cachea entre invocaciones.
type Product struct {
	ID          string
	Nombre      string
	Precio      decimal.Decimal
	Descripcion string
}

// PurchaseResult es el resultado de una compra completada.
type PurchaseResult struct {
	Purchase           *PurchaseRecord
	ProductoNombre     string
	InventarioRestante int
}

// remoteProductDocument decodifica la respuesta JSON:API del products service.
type remoteProductDocument struct {
	Data *remoteProductData `json:"data"`
}

type remoteProductData struct {
	Type       string                  `json:"type"`
	ID         string                  `json:"id"`
	Attributes remoteProductAttributes `json:"attributes"`
}

type remoteProductAttributes struct {
	Nombre      string          `json:"nombre"`
	Precio      decimal.Decimal `json:"precio"`
	Descripcion string          `json:"descripcion"`
}

// ProductAttributes is the outbound attribute block for an embedded product.
type ProductAttributes struct {
	Nombre      string  `json:"nombre"`
	Precio      float64 `json:"precio"`
	Descripcion string  `json:"descripcion"`
}

// InventoryAttributes is the attribute block of an inventory resource.
type InventoryAttributes struct {
	ProductoID int64              `json:"producto_id"`
	Cantidad   int                `json:"cantidad"`
	Producto   *ProductAttributes `json:"producto,omitempty"`
}

// InventoryResource is the JSON:API resource object for an inventory record.
type InventoryResource struct {
	Type       string              `json:"type"`
	ID         string              `json:"id"`
	Attributes InventoryAttributes `json:"attributes"`
}

// ToJSONAPI shapes the record as a JSON:API resource, optionally embedding
// the product attributes fetched from the catalog.
func (i *InventoryRecord) ToJSONAPI(product *Product) InventoryResource {
	resource := InventoryResource{
		Type: "inventory",
		ID:   strconv.FormatInt(i.ProductoID, 10),
		Attributes: InventoryAttributes{
			ProductoID: i.ProductoID,
			Cantidad:   i.Cantidad,
		},
	}

	if product != nil {
		resource.Attributes.Producto = &ProductAttributes{
			Nombre:      product.Nombre,
			Precio:      product.Precio.InexactFloat64(),
			Descripcion: product.Descripcion,
		}
	}

	return resource
}

// PurchaseAttributes is the attribute block returned after a purchase.
type PurchaseAttributes struct {
	ProductoID         int64     `json:"producto_id"`
	ProductoNombre     string    `json:"producto_nombre"`
	Cantidad           int       `json:"cantidad"`
	PrecioUnitario     float64   `json:"precio_unitario"`
	Total              float64   `json:"total"`
	InventarioRestante int       `json:"inventario_restante"`
	Fecha              time.Time `json:"fecha"`
}

// PurchaseResource is the JSON:API resource object for a completed purchase.
type PurchaseResource struct {
	Type       string             `json:"type"`
	ID         string             `json:"id"`
	Attributes PurchaseAttributes `json:"attributes"`
}

// ToJSONAPI shapes the purchase result as a JSON:API resource object.
func (r *PurchaseResult) ToJSONAPI() PurchaseResource {
	return PurchaseResource{
		Type: "purchases",
		ID:   strconv.FormatInt(r.Purchase.ID, 10),
		Attributes: PurchaseAttributes{
			ProductoID:         r.Purchase.ProductoID,
			ProductoNombre:     r.ProductoNombre,
			Cantidad:           r.Purchase.Cantidad,
			PrecioUnitario:     r.Purchase.PrecioUnitario.InexactFloat64(),
			Total:              r.Purchase.Total.InexactFloat64(),
			InventarioRestante: r.InventarioRestante,
			Fecha:              r.Purchase.CreatedAt,
		},
	}
}

// HistoryAttributes is the attribute block of a purchase-history entry.
type HistoryAttributes struct {
	ProductoID     int64     `json:"producto_id"`
	Cantidad       int       `json:"cantidad"`
	PrecioUnitario float64   `json:"precio_unitario"`
	Total          float64   `json:"total"`
	Fecha          time.Time `json:"fecha"`
}

// HistoryResource is the JSON:API resource object for a history entry.
type HistoryResource struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Attributes HistoryAttributes `json:"attributes"`
}

// ToHistoryJSONAPI shapes a persisted purchase as a history resource.
func (p *PurchaseRecord) ToHistoryJSONAPI() HistoryResource {
	return HistoryResource{
		Type: "purchase-history",
		ID:   strconv.FormatInt(p.ID, 10),
		Attributes: HistoryAttributes{
			ProductoID:     p.ProductoID,
			Cantidad:       p.Cantidad,
			PrecioUnitario: p.PrecioUnitario.InexactFloat64(),
			Total:          p.Total.InexactFloat64(),
			Fecha:          p.CreatedAt,
		},
	}
}

// inventoryDocument is the request envelope for inventory updates.
type inventoryDocument struct {
	Data *inventoryData `json:"data"`
}

type inventoryData struct {
	Type       string                   `json:"type"`
	Attributes inventoryWriteAttributes `json:"attributes"`
}

type inventoryWriteAttributes struct {
	Cantidad *int `json:"cantidad"`
}

// purchaseDocument is the request envelope for purchases.
type purchaseDocument struct {
	Data *purchaseData `json:"data"`
}

type purchaseData struct {
	Type       string                  `json:"type"`
	Attributes purchaseWriteAttributes `json:"attributes"`
}

type purchaseWriteAttributes struct {
	ProductoID *int64 `json:"producto_id"`
	Cantidad   *int   `json:"cantidad"`
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
