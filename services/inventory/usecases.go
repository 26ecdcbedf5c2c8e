package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ErrInvalidPurchase indica una compra con datos faltantes o inválidos.
// Se rechaza antes de cualquier I/O.
var ErrInvalidPurchase = errors.New("producto_id y cantidad (mayor a 0) son requeridos")

// InventoryUseCase contiene la lógica de negocio de inventario y compras.
type InventoryUseCase struct {
	repository InventoryRepository
	products   ProductsClient
	tracer     trace.Tracer

	purchaseCounter metric.Int64Counter
	conflictCounter metric.Int64Counter
}

// NewInventoryUseCase crea una nueva instancia de InventoryUseCase.
func NewInventoryUseCase(
	repository InventoryRepository,
	products ProductsClient,
	tracer trace.Tracer,
) *InventoryUseCase {
	meter := otel.Meter("inventory-service")
	purchaseCounter, _ := meter.Int64Counter("purchases_completed_total")
	conflictCounter, _ := meter.Int64Counter("purchases_conflicts_total")

	return &InventoryUseCase{
		repository:      repository,
		products:        products,
		tracer:          tracer,
		purchaseCounter: purchaseCounter,
		conflictCounter: conflictCounter,
	}
}

// GetInventory devuelve el registro de inventario junto con el producto del
// catálogo. El producto se consulta primero: si no existe, el inventario no
// se expone.
func (uc *InventoryUseCase) GetInventory(ctx context.Context, productoID int64) (*InventoryRecord, *Product, error) {
	product, err := uc.products.GetProduct(ctx, productoID)
	if err != nil {
		return nil, nil, err
	}

	record, err := uc.repository.GetByProductID(ctx, productoID)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, ErrInventoryNotFound
	}

	return record, product, nil
}

// UpdateInventory reemplaza la cantidad en inventario de un producto,
// verificando antes que el producto exista en el catálogo. La validación de
// cantidad no negativa ocurre en el handler, antes de llegar aquí.
func (uc *InventoryUseCase) UpdateInventory(ctx context.Context, productoID int64, cantidad int) (*InventoryRecord, error) {
	if _, err := uc.products.GetProduct(ctx, productoID); err != nil {
		return nil, err
	}

	record, err := uc.repository.Upsert(ctx, productoID, cantidad)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("producto_id", productoID).Int("cantidad", cantidad).
		Msg("[EVENT] Inventario actualizado")
	return record, nil
}

// Purchase ejecuta el flujo de compra: valida la solicitud, resuelve el
// producto en el catálogo, verifica disponibilidad, descuenta el stock de
// forma atómica y registra la compra en el historial.
//
// El orden de los efectos es estricto: el historial solo se escribe si el
// descuento ya ocurrió. El descuento y el registro de historial no comparten
// transacción; si el registro falla, el stock queda descontado sin entrada de
// historial.
func (uc *InventoryUseCase) Purchase(ctx context.Context, productoID int64, cantidad int) (*PurchaseResult, error) {
	ctx, span := uc.tracer.Start(ctx, "purchase")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("producto_id", productoID),
		attribute.Int("cantidad", cantidad),
	)

	// 1. Validación de forma, antes de cualquier I/O.
	if productoID <= 0 || cantidad <= 0 {
		return nil, ErrInvalidPurchase
	}

	// 2. Resolver el producto: confirma existencia y captura el precio
	// vigente al momento de la compra.
	product, err := uc.products.GetProduct(ctx, productoID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 3. Pre-chequeo de disponibilidad sin lock. Es solo una salida rápida:
	// el guard definitivo contra carreras es el decremento atómico.
	record, err := uc.repository.GetByProductID(ctx, productoID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if record == nil {
		return nil, ErrInventoryNotFound
	}
	if record.Cantidad < cantidad {
		uc.conflictCounter.Add(ctx, 1)
		return nil, fmt.Errorf("%w. Disponible: %d, Solicitado: %d", ErrInsufficientStock, record.Cantidad, cantidad)
	}

	// 4. Decremento atómico bajo lock de fila. Una carrera perdida entre el
	// paso 3 y este punto vuelve a aparecer aquí como ErrInsufficientStock.
	updated, err := uc.repository.DecrementStock(ctx, productoID, cantidad)
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			uc.conflictCounter.Add(ctx, 1)
		}
		span.RecordError(err)
		return nil, err
	}

	// 5. Registrar la compra con el precio capturado en el paso 2.
	purchase, err := uc.repository.CreatePurchase(ctx, productoID, cantidad, product.Precio)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.purchaseCounter.Add(ctx, 1)
	log.Info().Int64("producto_id", productoID).Int("cantidad", cantidad).
		Str("total", purchase.Total.String()).Msg("[EVENT] Compra realizada")

	return &PurchaseResult{
		Purchase:           purchase,
		ProductoNombre:     product.Nombre,
		InventarioRestante: updated.Cantidad,
	}, nil
}

// GetHistory devuelve el historial de compras de un producto, más recientes
// primero.
func (uc *InventoryUseCase) GetHistory(ctx context.Context, productoID int64) ([]PurchaseRecord, error) {
	return uc.repository.GetPurchaseHistory(ctx, productoID)
}
