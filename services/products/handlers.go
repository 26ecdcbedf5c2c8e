package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProductHandler contiene los handlers HTTP de productos.
type ProductHandler struct {
	repository ProductRepository
	tracer     trace.Tracer
}

// NewProductHandler crea una nueva instancia de ProductHandler.
func NewProductHandler(repository ProductRepository, tracer trace.Tracer) *ProductHandler {
	return &ProductHandler{
		repository: repository,
		tracer:     tracer,
	}
}

// CreateProduct crea un producto nuevo.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "create_product")
	defer span.End()

	var doc productDocument
	if err := c.ShouldBindJSON(&doc); err != nil || doc.Data == nil || doc.Data.Type != "products" {
		c.JSON(http.StatusBadRequest,
			newErrorDocument(http.StatusBadRequest, "Bad Request", "Formato JSON API inválido"))
		return
	}

	attrs := doc.Data.Attributes
	if attrs.Nombre == "" || attrs.Precio == nil || attrs.Precio.Sign() <= 0 {
		c.JSON(http.StatusBadRequest,
			newErrorDocument(http.StatusBadRequest, "Bad Request", "Nombre y precio son requeridos"))
		return
	}

	product := &Product{
		Nombre:      attrs.Nombre,
		Precio:      *attrs.Precio,
		Descripcion: attrs.Descripcion,
	}

	if err := h.repository.Create(ctx, product); err != nil {
		log.Error().Err(err).Msg("Error creating product")
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError,
			newErrorDocument(http.StatusInternalServerError, "Internal Server Error", "Error al crear el producto"))
		return
	}

	span.SetAttributes(attribute.Int64("product_id", product.ID))
	log.Info().Int64("producto_id", product.ID).Str("nombre", product.Nombre).Msg("Producto creado")

	c.JSON(http.StatusCreated, gin.H{"data": product.ToJSONAPI()})
}

// GetProduct devuelve un producto por id.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_product")
	defer span.End()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound,
			newErrorDocument(http.StatusNotFound, "Not Found", "Producto no encontrado"))
		return
	}

	product, err := h.repository.GetByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Int64("producto_id", id).Msg("Error fetching product")
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError,
			newErrorDocument(http.StatusInternalServerError, "Internal Server Error", "Error al obtener el producto"))
		return
	}

	if product == nil {
		c.JSON(http.StatusNotFound,
			newErrorDocument(http.StatusNotFound, "Not Found", "Producto no encontrado"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product.ToJSONAPI()})
}

// ListProducts devuelve todos los productos.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_products")
	defer span.End()

	products, err := h.repository.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error fetching products")
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError,
			newErrorDocument(http.StatusInternalServerError, "Internal Server Error", "Error al obtener los productos"))
		return
	}

	resources := make([]ProductResource, 0, len(products))
	for i := range products {
		resources = append(resources, products[i].ToJSONAPI())
	}

	c.JSON(http.StatusOK, gin.H{"data": resources})
}

// HealthCheck es el endpoint de health check.
func (h *ProductHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "products"})
}
