package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	CodigoBarras *string         `json:"codigo_barras" validate:"omitempty,min=4,max=32"`
	Nombre       string          `json:"nombre"        validate:"required,min=2,max=120"`
	PrecioCosto  decimal.Decimal `json:"precio_costo"  validate:"min=0"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"  validate:"min=0"`
	StockInicial int             `json:"stock_inicial" validate:"min=0"`
}

// AjustarStockRequest is a signed manual correction. Delta must not be zero.
type AjustarStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID           string          `json:"id"`
	CodigoBarras *string         `json:"codigo_barras,omitempty"`
	Nombre       string          `json:"nombre"`
	PrecioCosto  decimal.Decimal `json:"precio_costo"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"`
	StockActual  int             `json:"stock_actual"`
	Activo       bool            `json:"activo"`
}

type AjusteStockResponse struct {
	ProductoID    string `json:"producto_id"`
	StockAnterior int    `json:"stock_anterior"`
	StockNuevo    int    `json:"stock_nuevo"`
	Motivo        string `json:"motivo"`
}
