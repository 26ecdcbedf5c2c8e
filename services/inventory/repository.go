package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrInventoryNotFound indica que no hay registro de inventario para
	// el producto.
	ErrInventoryNotFound = errors.New("Inventario no encontrado")

	// ErrInsufficientStock indica que la cantidad disponible no alcanza
	// para la cantidad solicitada.
	ErrInsufficientStock = errors.New("Inventario insuficiente")
)

// InventoryRepository define las operaciones del libro de inventario:
// existencias por producto y el historial de compras solo-de-anexado.
type InventoryRepository interface {
	// GetByProductID lee el registro sin lock. Devuelve nil cuando no existe.
	GetByProductID(ctx context.Context, productoID int64) (*InventoryRecord, error)

	// Upsert inserta o reemplaza la cantidad de un producto. Es idempotente
	// ante llamadas repetidas con la misma cantidad.
	Upsert(ctx context.Context, productoID int64, cantidad int) (*InventoryRecord, error)

	// DecrementStock descuenta cantidad dentro de una única transacción con
	// lock de fila. Falla con ErrInventoryNotFound o ErrInsufficientStock.
	DecrementStock(ctx context.Context, productoID int64, cantidad int) (*InventoryRecord, error)

	// CreatePurchase registra una compra en el historial calculando el total
	// una sola vez.
	CreatePurchase(ctx context.Context, productoID int64, cantidad int, precioUnitario decimal.Decimal) (*PurchaseRecord, error)

	// GetPurchaseHistory devuelve las compras de un producto, más recientes
	// primero. Lista vacía cuando no hay compras.
	GetPurchaseHistory(ctx context.Context, productoID int64) ([]PurchaseRecord, error)
}

// PostgresInventoryRepository implementa InventoryRepository usando PostgreSQL.
type PostgresInventoryRepository struct {
	db *pgxpool.Pool
}

// NewInventoryRepository crea una nueva instancia de PostgresInventoryRepository.
func NewInventoryRepository(db *pgxpool.Pool) InventoryRepository {
	return &PostgresInventoryRepository{
		db: db,
	}
}

// GetByProductID lee el registro de inventario sin lock.
func (r *PostgresInventoryRepository) GetByProductID(ctx context.Context, productoID int64) (*InventoryRecord, error) {
	var record InventoryRecord
	err := r.db.QueryRow(ctx, `
		SELECT id, producto_id, cantidad, created_at, updated_at
		FROM inventario
		WHERE producto_id = $1
	`, productoID).Scan(&record.ID, &record.ProductoID, &record.Cantidad, &record.CreatedAt, &record.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	return &record, nil
}

// Upsert inserta o reemplaza la cantidad de un producto.
func (r *PostgresInventoryRepository) Upsert(ctx context.Context, productoID int64, cantidad int) (*InventoryRecord, error) {
	var record InventoryRecord
	err := r.db.QueryRow(ctx, `
		INSERT INTO inventario (producto_id, cantidad, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (producto_id)
		DO UPDATE SET cantidad = $2, updated_at = CURRENT_TIMESTAMP
		RETURNING id, producto_id, cantidad, created_at, updated_at
	`, productoID, cantidad).Scan(&record.ID, &record.ProductoID, &record.Cantidad, &record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert inventory: %w", err)
	}
	return &record, nil
}

// DecrementStock descuenta cantidad del inventario de un producto dentro de
// una única transacción. La fila se toma con SELECT ... FOR UPDATE, de modo
// que decrementos concurrentes sobre el mismo producto se serializan y la
// cantidad nunca puede quedar negativa. Ante cualquier fallo la transacción
// hace rollback completo.
func (r *PostgresInventoryRepository) DecrementStock(ctx context.Context, productoID int64, cantidad int) (*InventoryRecord, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current int
	err = tx.QueryRow(ctx, `
		SELECT cantidad FROM inventario
		WHERE producto_id = $1
		FOR UPDATE
	`, productoID).Scan(&current)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInventoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock inventory row: %w", err)
	}

	if current < cantidad {
		return nil, ErrInsufficientStock
	}

	var record InventoryRecord
	err = tx.QueryRow(ctx, `
		UPDATE inventario
		SET cantidad = cantidad - $1, updated_at = CURRENT_TIMESTAMP
		WHERE producto_id = $2
		RETURNING id, producto_id, cantidad, created_at, updated_at
	`, cantidad, productoID).Scan(&record.ID, &record.ProductoID, &record.Cantidad, &record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit decrement: %w", err)
	}
	return &record, nil
}

// CreatePurchase registra la compra en el historial. El total se calcula aquí
// una sola vez y queda persistido; nunca se recalcula.
func (r *PostgresInventoryRepository) CreatePurchase(ctx context.Context, productoID int64, cantidad int, precioUnitario decimal.Decimal) (*PurchaseRecord, error) {
	total := precioUnitario.Mul(decimal.NewFromInt(int64(cantidad)))

	record := PurchaseRecord{
		ProductoID:     productoID,
		Cantidad:       cantidad,
		PrecioUnitario: precioUnitario,
		Total:          total,
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO historial_compras (producto_id, cantidad, precio_unitario, total)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, productoID, cantidad, precioUnitario, total).Scan(&record.ID, &record.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create purchase record: %w", err)
	}
	return &record, nil
}

// GetPurchaseHistory devuelve las compras de un producto ordenadas por fecha
// de creación descendente.
func (r *PostgresInventoryRepository) GetPurchaseHistory(ctx context.Context, productoID int64) ([]PurchaseRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, producto_id, cantidad, precio_unitario, total, created_at
		FROM historial_compras
		WHERE producto_id = $1
		ORDER BY created_at DESC
	`, productoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase history: %w", err)
	}
	defer rows.Close()

	history := make([]PurchaseRecord, 0)
	for rows.Next() {
		var record PurchaseRecord
		if err := rows.Scan(&record.ID, &record.ProductoID, &record.Cantidad, &record.PrecioUnitario, &record.Total, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase record: %w", err)
		}
		history = append(history, record)
	}
	return history, rows.Err()
}

// initSchema crea las tablas de inventario e historial si no existen.
func initSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS inventario (
			id SERIAL PRIMARY KEY,
			producto_id INTEGER NOT NULL UNIQUE,
			cantidad INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create inventario table: %w", err)
	}

	_, err = db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS historial_compras (
			id SERIAL PRIMARY KEY,
			producto_id INTEGER NOT NULL,
			cantidad INTEGER NOT NULL,
			precio_unitario DECIMAL(10, 2),
			total DECIMAL(10, 2),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create historial_compras table: %w", err)
	}
	return nil
}
