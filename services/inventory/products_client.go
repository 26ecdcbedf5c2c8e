package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

var (
	// ErrProductNotFound indica que el producto no existe en el catálogo.
	// Es terminal: un 404 del products service no se reintenta.
	ErrProductNotFound = errors.New("Producto no encontrado")

	// ErrProductUnavailable indica que el products service no respondió
	// dentro del presupuesto de reintentos.
	ErrProductUnavailable = errors.New("Servicio de productos no disponible")
)

// ProductsClient define el cliente del catálogo de productos.
type ProductsClient interface {
	GetProduct(ctx context.Context, productoID int64) (*Product, error)
}

// HTTPProductsClient implementa ProductsClient sobre HTTP con reintentos.
type HTTPProductsClient struct {
	client     *resty.Client
	maxRetries int
	backoff    time.Duration
}

// NewProductsClient crea un cliente autenticado hacia el products service.
func NewProductsClient(baseURL, apiKey string) *HTTPProductsClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("X-API-Key", apiKey).
		SetTimeout(5 * time.Second)

	return &HTTPProductsClient{
		client:     client,
		maxRetries: 3,
		backoff:    1 * time.Second,
	}
}

// GetProduct busca un producto por id con hasta maxRetries intentos.
// Un 404 corta de inmediato con ErrProductNotFound; cualquier otro fallo se
// reintenta con backoff lineal (intento × backoff) hasta agotar el
// presupuesto, y entonces devuelve ErrProductUnavailable.
func (c *HTTPProductsClient) GetProduct(ctx context.Context, productoID int64) (*Product, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		var doc remoteProductDocument
		resp, err := c.client.R().
			SetContext(ctx).
			SetResult(&doc).
			Get(fmt.Sprintf("/api/products/%d", productoID))

		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode() == http.StatusNotFound:
			return nil, ErrProductNotFound
		case resp.IsSuccess():
			if doc.Data == nil {
				lastErr = fmt.Errorf("respuesta sin recurso de producto")
				break
			}
			return &Product{
				ID:          doc.Data.ID,
				Nombre:      doc.Data.Attributes.Nombre,
				Precio:      doc.Data.Attributes.Precio,
				Descripcion: doc.Data.Attributes.Descripcion,
			}, nil
		default:
			lastErr = fmt.Errorf("status inesperado %d", resp.StatusCode())
		}

		log.Warn().Err(lastErr).Int("attempt", attempt).Int64("producto_id", productoID).
			Msg("Products service request failed")

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
	}

	log.Error().Err(lastErr).Int64("producto_id", productoID).Msg("Products service exhausted retries")
	return nil, fmt.Errorf("%w después de %d intentos", ErrProductUnavailable, c.maxRetries)
}
