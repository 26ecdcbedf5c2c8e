package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// MockUseCase simula el use case de inventario.
type MockUseCase struct {
	mock.Mock
}

func (m *MockUseCase) GetInventory(ctx context.Context, productoID int64) (*InventoryRecord, *Product, error) {
	args := m.Called(ctx, productoID)
	var record *InventoryRecord
	var product *Product
	if args.Get(0) != nil {
		record = args.Get(0).(*InventoryRecord)
	}
	if args.Get(1) != nil {
		product = args.Get(1).(*Product)
	}
	return record, product, args.Error(2)
}

func (m *MockUseCase) UpdateInventory(ctx context.Context, productoID int64, cantidad int) (*InventoryRecord, error) {
	args := m.Called(ctx, productoID, cantidad)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*InventoryRecord), args.Error(1)
}

func (m *MockUseCase) Purchase(ctx context.Context, productoID int64, cantidad int) (*PurchaseResult, error) {
	args := m.Called(ctx, productoID, cantidad)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PurchaseResult), args.Error(1)
}

func (m *MockUseCase) GetHistory(ctx context.Context, productoID int64) ([]PurchaseRecord, error) {
	args := m.Called(ctx, productoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PurchaseRecord), args.Error(1)
}

func setupRouter(useCase InventoryUseCaseInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewInventoryHandler(useCase, otel.Tracer("test"))

	r := gin.New()
	r.GET("/api/inventory/:producto_id", handler.GetInventory)
	r.PATCH("/api/inventory/:producto_id", handler.UpdateInventory)
	r.POST("/api/purchases", handler.Purchase)
	r.GET("/api/purchases/history/:producto_id", handler.GetHistory)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/vnd.api+json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errWithAvailability(disponible, solicitado int) error {
	return fmt.Errorf("%w. Disponible: %d, Solicitado: %d", ErrInsufficientStock, disponible, solicitado)
}

func decodeErrors(t *testing.T, w *httptest.ResponseRecorder) ErrorDocument {
	t.Helper()
	var doc ErrorDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Len(t, doc.Errors, 1)
	return doc
}

func TestPurchaseHandler_Created(t *testing.T) {
	// Arrange
	useCase := new(MockUseCase)
	precio := decimal.RequireFromString("1299.99")
	useCase.On("Purchase", mock.Anything, int64(1), 2).Return(&PurchaseResult{
		Purchase: &PurchaseRecord{
			ID:             1,
			ProductoID:     1,
			Cantidad:       2,
			PrecioUnitario: precio,
			Total:          decimal.RequireFromString("2599.98"),
			CreatedAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		ProductoNombre:     "Laptop",
		InventarioRestante: 48,
	}, nil)
	r := setupRouter(useCase)

	// Act
	w := doRequest(r, http.MethodPost, "/api/purchases",
		`{"data":{"type":"purchases","attributes":{"producto_id":1,"cantidad":2}}}`)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data PurchaseResource `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "purchases", resp.Data.Type)
	assert.Equal(t, "1", resp.Data.ID)
	assert.Equal(t, "Laptop", resp.Data.Attributes.ProductoNombre)
	assert.Equal(t, 2, resp.Data.Attributes.Cantidad)
	assert.Equal(t, 1299.99, resp.Data.Attributes.PrecioUnitario)
	assert.Equal(t, 2599.98, resp.Data.Attributes.Total)
	assert.Equal(t, 48, resp.Data.Attributes.InventarioRestante)
	useCase.AssertExpectations(t)
}

func TestPurchaseHandler_InvalidEnvelope(t *testing.T) {
	// Arrange
	useCase := new(MockUseCase)
	r := setupRouter(useCase)

	// Act
	w := doRequest(r, http.MethodPost, "/api/purchases",
		`{"data":{"type":"orders","attributes":{"producto_id":1,"cantidad":2}}}`)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	doc := decodeErrors(t, w)
	assert.Equal(t, "400", doc.Errors[0].Status)
	assert.Equal(t, "Formato JSON API inválido", doc.Errors[0].Detail)
	useCase.AssertNotCalled(t, "Purchase", mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseHandler_MissingFields(t *testing.T) {
	// Arrange
	useCase := new(MockUseCase)
	r := setupRouter(useCase)

	// Act
	w := doRequest(r, http.MethodPost, "/api/purchases",
		`{"data":{"type":"purchases","attributes":{"producto_id":1}}}`)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	doc := decodeErrors(t, w)
	assert.Equal(t, "producto_id y cantidad (mayor a 0) son requeridos", doc.Errors[0].Detail)
}

func TestPurchaseHandler_ProductNotFound(t *testing.T) {
	// Arrange
	useCase := new(MockUseCase)
	useCase.On("Purchase", mock.Anything, int64(99), 1).Return(nil, ErrProductNotFound)
	r := setupRouter(useCase)

	// Act
	w := doRequest(r, http.MethodPost, "/api/purchases",
		`{"data":{"type":"purchases","attributes":{"producto_id":99,"cantidad":1}}}`)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
	doc := decodeErrors(t, w)
	assert.Equal(t, "404", doc.Errors[0].Status)
	assert.Equal(t, "Not Found", doc.Errors[0].Title)
	assert.Equal(t, "Producto no encontrado", doc.Errors[0].Detail)
}

func TestPurchaseHandler_InsufficientStock(t *testing.T) {
	// Arrange
	useCase := new(MockUseCase)
	useCase.On("Purchase", mock.Anything, int64(1), 5).
		Return(nil, errWithAvailability(1, 5))
	r := setupRouter(useCase)

	// Act
	w := doRequest(r, http.MethodPost, "/api/purchases",
		`{"data":{"type":"purchases","attributes":{"producto_id":1,"cantidad":5}}}`)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)
	doc := decodeErrors(t, w)
	assert.Equal(t, "409", doc.Errors[0].Status)
	assert.Equal(t, "Conflict", doc.Errors[0].Title)
	assert.Contains(t, doc.Errors[0].Detail, "Inventario insuficiente")
	assert.Contains(t, doc.Errors[0].Detail, "Disponible: 1, Solicitado: 5")
}

func TestPurchaseHandler_ServiceUnavailable(t *testing.T) {
	// Arrange
	useCase := new(MockUseCase)
	useCase.On("Purchase", mock.Anything, int64(1), 1).Return(nil, ErrProductUnavailable)
	r := setupRouter(useCase)

	// Act
	w := doRequest(r, http.MethodPost, "/api/purchases",
		`{"data":{"type":"purchases","attributes":{"producto_id":1,"cantidad":1}}}`)

	// Assert
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	doc := decodeErrors(t, w)
	assert.Equal(t, "503", doc.Errors[0].Status)
}

func TestPurchaseHandler_InternalError(t *testing.T) {
	// Arrange
	useCase := new(MockUseCase)
	useCase.On("Purchase", mock.Anything, int64(1), 1).Return(nil, assert.AnError)
	r := setupRouter(useCase)

	// Act
	w := doRequest(r, http.MethodPost, "/api/purchases",
		`{"data":{"type":"purchases","attributes":{"producto_id":1,"cantidad":1}}}`)

	// Assert
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	doc := decodeErrors(t, w)
	assert.Equal(t, "Error al procesar la compra", doc.Errors[0].Detail)
}

func TestGetInventoryHandler_WithProduct(t *testing.T) {
	// Arrange
	useCase := new(MockUseCase)
	useCase.On("GetInventory", mock.Anything, int64(1)).Return(
		&InventoryRecord{ProductoID: 1, Cantidad: 50},
		&Product{ID: "1", Nombre: "Laptop", Precio: decimal.RequireFromString("1299.99")},
		nil,
	)
	r := setupRouter(useCase)

	// Act
	w := doRequest(r, http.MethodGet, "/api/inventory/1", "")

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data InventoryResource `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "inventory", resp.Data.Type)
	assert.Equal(t, int64(1), resp.Data.Attributes.ProductoID)
	assert.Equal(t, 50, resp.Data.Attributes.Cantidad)
	require.NotNil(t, resp.Data.Attributes.Producto)
	assert.Equal(t, "Laptop", resp.Data.Attributes.Producto.Nombre)
	assert.Equal(t, 1299.99, resp.Data.Attributes.Producto.Precio)
}

func TestGetInventoryHandler_InventoryNotFound(t *testing.T) {
	// Arrange
	useCase := new(MockUseCase)
	useCase.On("GetInventory", mock.Anything, int64(1)).Return(nil, nil, ErrInventoryNotFound)
	r := setupRouter(useCase)

	// Act
	w := doRequest(r, http.MethodGet, "/api/inventory/1", "")

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
	doc := decodeErrors(t, w)
	assert.Equal(t, "Inventario no encontrado para este producto", doc.Errors[0].Detail)
}

func TestUpdateInventoryHandler_NegativeQuantity(t *testing.T) {
	// Arrange
	useCase := new(MockUseCase)
	r := setupRouter(useCase)

	// Act
	w := doRequest(r, http.MethodPatch, "/api/inventory/1",
		`{"data":{"type":"inventory","attributes":{"cantidad":-5}}}`)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	doc := decodeErrors(t, w)
	assert.Equal(t, "Cantidad debe ser un número no negativo", doc.Errors[0].Detail)
	useCase.AssertNotCalled(t, "UpdateInventory", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateInventoryHandler_Success(t *testing.T) {
	// Arrange
	useCase := new(MockUseCase)
	useCase.On("UpdateInventory", mock.Anything, int64(1), 100).
		Return(&InventoryRecord{ProductoID: 1, Cantidad: 100}, nil)
	r := setupRouter(useCase)

	// Act
	w := doRequest(r, http.MethodPatch, "/api/inventory/1",
		`{"data":{"type":"inventory","attributes":{"cantidad":100}}}`)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data InventoryResource `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 100, resp.Data.Attributes.Cantidad)
	assert.Nil(t, resp.Data.Attributes.Producto)
}

func TestGetHistoryHandler_EmptyList(t *testing.T) {
	// Arrange
	useCase := new(MockUseCase)
	useCase.On("GetHistory", mock.Anything, int64(1)).Return([]PurchaseRecord{}, nil)
	r := setupRouter(useCase)

	// Act
	w := doRequest(r, http.MethodGet, "/api/purchases/history/1", "")

	// Assert: 200 with an empty data array, not an error
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestGetHistoryHandler_Ordering(t *testing.T) {
	// Arrange: repository already returns newest-first
	useCase := new(MockUseCase)
	newer := PurchaseRecord{ID: 2, ProductoID: 1, Cantidad: 1,
		PrecioUnitario: decimal.RequireFromString("29.99"),
		Total:          decimal.RequireFromString("29.99"),
		CreatedAt:      time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)}
	older := PurchaseRecord{ID: 1, ProductoID: 1, Cantidad: 2,
		PrecioUnitario: decimal.RequireFromString("29.99"),
		Total:          decimal.RequireFromString("59.98"),
		CreatedAt:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	useCase.On("GetHistory", mock.Anything, int64(1)).Return([]PurchaseRecord{newer, older}, nil)
	r := setupRouter(useCase)

	// Act
	w := doRequest(r, http.MethodGet, "/api/purchases/history/1", "")

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []HistoryResource `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "2", resp.Data[0].ID)
	assert.Equal(t, "1", resp.Data[1].ID)
	assert.Equal(t, 59.98, resp.Data[1].Attributes.Total)
}
