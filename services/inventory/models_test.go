package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseResult_ToJSONAPI(t *testing.T) {
	// Arrange
	result := &PurchaseResult{
		Purchase: &PurchaseRecord{
			ID:             42,
			ProductoID:     1,
			Cantidad:       2,
			PrecioUnitario: decimal.RequireFromString("1299.99"),
			Total:          decimal.RequireFromString("2599.98"),
			CreatedAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		ProductoNombre:     "Laptop",
		InventarioRestante: 48,
	}

	// Act
	resource := result.ToJSONAPI()

	// Assert
	assert.Equal(t, "purchases", resource.Type)
	assert.Equal(t, "42", resource.ID)
	assert.Equal(t, int64(1), resource.Attributes.ProductoID)
	assert.Equal(t, "Laptop", resource.Attributes.ProductoNombre)
	assert.Equal(t, 1299.99, resource.Attributes.PrecioUnitario)
	assert.Equal(t, 2599.98, resource.Attributes.Total)
	assert.Equal(t, 48, resource.Attributes.InventarioRestante)
}

func TestInventoryRecord_ToJSONAPI_EmbedsProduct(t *testing.T) {
	// Arrange
	record := &InventoryRecord{ID: 1, ProductoID: 7, Cantidad: 10}
	product := &Product{ID: "7", Nombre: "Teclado", Precio: decimal.RequireFromString("49.90"), Descripcion: "Mecánico"}

	// Act
	resource := record.ToJSONAPI(product)

	// Assert: the resource id is the product id, not the row id
	assert.Equal(t, "inventory", resource.Type)
	assert.Equal(t, "7", resource.ID)
	require.NotNil(t, resource.Attributes.Producto)
	assert.Equal(t, "Teclado", resource.Attributes.Producto.Nombre)
	assert.Equal(t, 49.90, resource.Attributes.Producto.Precio)
}

func TestInventoryRecord_ToJSONAPI_OmitsProduct(t *testing.T) {
	// Arrange
	record := &InventoryRecord{ID: 1, ProductoID: 7, Cantidad: 10}

	// Act
	payload, err := json.Marshal(record.ToJSONAPI(nil))

	// Assert
	require.NoError(t, err)
	assert.NotContains(t, string(payload), `"producto"`)
}

func TestTotalComputation_FullPrecision(t *testing.T) {
	// Arrange
	precio := decimal.RequireFromString("1299.99")

	// Act
	total := precio.Mul(decimal.NewFromInt(2))

	// Assert: no binary floating point drift
	assert.Equal(t, "2599.98", total.String())
}

func TestErrorDocument_Shape(t *testing.T) {
	// Arrange / Act
	payload, err := json.Marshal(newErrorDocument(409, "Conflict", "Inventario insuficiente"))

	// Assert: status is a string and errors is an array, per the envelope
	// contract
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"errors":[{"status":"409","title":"Conflict","detail":"Inventario insuficiente"}]}`,
		string(payload))
}
