package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRepository define las operaciones de persistencia de productos.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context) ([]Product, error)
}

// PostgresProductRepository implementa ProductRepository usando PostgreSQL.
type PostgresProductRepository struct {
	db *pgxpool.Pool
}

// NewProductRepository crea una nueva instancia de PostgresProductRepository.
func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &PostgresProductRepository{
		db: db,
	}
}

// Create inserta un producto y completa el id y created_at asignados.
func (r *PostgresProductRepository) Create(ctx context.Context, product *Product) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO productos (nombre, precio, descripcion)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, product.Nombre, product.Precio, product.Descripcion).Scan(&product.ID, &product.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID busca un producto por id. Devuelve nil cuando no existe.
func (r *PostgresProductRepository) GetByID(ctx context.Context, id int64) (*Product, error) {
	var product Product
	err := r.db.QueryRow(ctx, `
		SELECT id, nombre, precio, descripcion, created_at
		FROM productos
		WHERE id = $1
	`, id).Scan(&product.ID, &product.Nombre, &product.Precio, &product.Descripcion, &product.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// List devuelve todos los productos ordenados por id.
func (r *PostgresProductRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, nombre, precio, descripcion, created_at
		FROM productos
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var product Product
		if err := rows.Scan(&product.ID, &product.Nombre, &product.Precio, &product.Descripcion, &product.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// initSchema crea la tabla de productos si no existe.
func initSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS productos (
			id SERIAL PRIMARY KEY,
			nombre VARCHAR(255) NOT NULL,
			precio DECIMAL(10, 2) NOT NULL,
			descripcion TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
