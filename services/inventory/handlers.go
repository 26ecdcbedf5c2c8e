package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// InventoryUseCaseInterface define la interfaz para el use case.
type InventoryUseCaseInterface interface {
	GetInventory(ctx context.Context, productoID int64) (*InventoryRecord, *Product, error)
	UpdateInventory(ctx context.Context, productoID int64, cantidad int) (*InventoryRecord, error)
	Purchase(ctx context.Context, productoID int64, cantidad int) (*PurchaseResult, error)
	GetHistory(ctx context.Context, productoID int64) ([]PurchaseRecord, error)
}

// InventoryHandler contiene los handlers HTTP de inventario y compras.
type InventoryHandler struct {
	useCase InventoryUseCaseInterface
	tracer  trace.Tracer
}

// NewInventoryHandler crea una nueva instancia de InventoryHandler.
func NewInventoryHandler(useCase InventoryUseCaseInterface, tracer trace.Tracer) *InventoryHandler {
	return &InventoryHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// GetInventory consulta el inventario de un producto con sus atributos de
// catálogo embebidos.
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_inventory")
	defer span.End()

	productoID, err := strconv.ParseInt(c.Param("producto_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound,
			newErrorDocument(http.StatusNotFound, "Not Found", "Producto no encontrado"))
		return
	}
	span.SetAttributes(attribute.Int64("producto_id", productoID))

	record, product, err := h.useCase.GetInventory(ctx, productoID)
	if err != nil {
		log.Error().Err(err).Int64("producto_id", productoID).Msg("Error fetching inventory")
		span.RecordError(err)
		h.writeError(c, err, "Error al obtener el inventario")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": record.ToJSONAPI(product)})
}

// UpdateInventory reemplaza la cantidad en inventario de un producto.
func (h *InventoryHandler) UpdateInventory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "update_inventory")
	defer span.End()

	productoID, err := strconv.ParseInt(c.Param("producto_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound,
			newErrorDocument(http.StatusNotFound, "Not Found", "Producto no encontrado"))
		return
	}
	span.SetAttributes(attribute.Int64("producto_id", productoID))

	var doc inventoryDocument
	if err := c.ShouldBindJSON(&doc); err != nil || doc.Data == nil || doc.Data.Type != "inventory" {
		c.JSON(http.StatusBadRequest,
			newErrorDocument(http.StatusBadRequest, "Bad Request", "Formato JSON API inválido"))
		return
	}

	cantidad := doc.Data.Attributes.Cantidad
	if cantidad == nil || *cantidad < 0 {
		c.JSON(http.StatusBadRequest,
			newErrorDocument(http.StatusBadRequest, "Bad Request", "Cantidad debe ser un número no negativo"))
		return
	}

	record, err := h.useCase.UpdateInventory(ctx, productoID, *cantidad)
	if err != nil {
		log.Error().Err(err).Int64("producto_id", productoID).Msg("Error updating inventory")
		span.RecordError(err)
		h.writeError(c, err, "Error al actualizar el inventario")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": record.ToJSONAPI(nil)})
}

// Purchase procesa una compra: valida, resuelve el producto, descuenta stock
// y registra el historial.
func (h *InventoryHandler) Purchase(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "purchase_request")
	defer span.End()

	var doc purchaseDocument
	if err := c.ShouldBindJSON(&doc); err != nil || doc.Data == nil || doc.Data.Type != "purchases" {
		c.JSON(http.StatusBadRequest,
			newErrorDocument(http.StatusBadRequest, "Bad Request", "Formato JSON API inválido"))
		return
	}

	attrs := doc.Data.Attributes
	if attrs.ProductoID == nil || attrs.Cantidad == nil || *attrs.Cantidad <= 0 {
		c.JSON(http.StatusBadRequest,
			newErrorDocument(http.StatusBadRequest, "Bad Request", "producto_id y cantidad (mayor a 0) son requeridos"))
		return
	}

	result, err := h.useCase.Purchase(ctx, *attrs.ProductoID, *attrs.Cantidad)
	if err != nil {
		log.Error().Err(err).Int64("producto_id", *attrs.ProductoID).Msg("Error processing purchase")
		span.RecordError(err)
		h.writeError(c, err, "Error al procesar la compra")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result.ToJSONAPI()})
}

// GetHistory devuelve el historial de compras de un producto. Una lista vacía
// es una respuesta válida, no un error.
func (h *InventoryHandler) GetHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "purchase_history")
	defer span.End()

	productoID, err := strconv.ParseInt(c.Param("producto_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest,
			newErrorDocument(http.StatusBadRequest, "Bad Request", "producto_id inválido"))
		return
	}
	span.SetAttributes(attribute.Int64("producto_id", productoID))

	history, err := h.useCase.GetHistory(ctx, productoID)
	if err != nil {
		log.Error().Err(err).Int64("producto_id", productoID).Msg("Error fetching purchase history")
		span.RecordError(err)
		h.writeError(c, err, "Error al obtener el historial")
		return
	}

	resources := make([]HistoryResource, 0, len(history))
	for i := range history {
		resources = append(resources, history[i].ToHistoryJSONAPI())
	}

	c.JSON(http.StatusOK, gin.H{"data": resources})
}

// HealthCheck es el endpoint de health check.
func (h *InventoryHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "inventory"})
}

// writeError traduce los errores de negocio a la taxonomía HTTP del servicio.
// Cualquier error no reconocido se reporta como 500 con un detalle genérico.
func (h *InventoryHandler) writeError(c *gin.Context, err error, fallbackDetail string) {
	switch {
	case errors.Is(err, ErrInvalidPurchase):
		c.JSON(http.StatusBadRequest,
			newErrorDocument(http.StatusBadRequest, "Bad Request", err.Error()))
	case errors.Is(err, ErrProductNotFound):
		c.JSON(http.StatusNotFound,
			newErrorDocument(http.StatusNotFound, "Not Found", "Producto no encontrado"))
	case errors.Is(err, ErrInventoryNotFound):
		c.JSON(http.StatusNotFound,
			newErrorDocument(http.StatusNotFound, "Not Found", "Inventario no encontrado para este producto"))
	case errors.Is(err, ErrInsufficientStock):
		c.JSON(http.StatusConflict,
			newErrorDocument(http.StatusConflict, "Conflict", err.Error()))
	case errors.Is(err, ErrProductUnavailable):
		c.JSON(http.StatusServiceUnavailable,
			newErrorDocument(http.StatusServiceUnavailable, "Service Unavailable", err.Error()))
	default:
		c.JSON(http.StatusInternalServerError,
			newErrorDocument(http.StatusInternalServerError, "Internal Server Error", fallbackDetail))
	}
}
