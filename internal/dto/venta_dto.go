package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"`
}

type PagoRequest struct {
	Medio string          `json:"medio" validate:"max=30"`
	Monto decimal.Decimal `json:"monto"`
}

// RegistrarVentaRequest is a counter sale. The sum of Pagos must equal the
// total derived from the item prices.
type RegistrarVentaRequest struct {
	Items   []ItemVentaRequest `json:"items"   validate:"required,min=1,dive"`
	Pagos   []PagoRequest      `json:"pagos"   validate:"required,min=1,dive"`
	Cliente *string            `json:"cliente" validate:"omitempty,max=120"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaItemResponse struct {
	ProductoID     *string         `json:"producto_id,omitempty"`
	Descripcion    string          `json:"descripcion"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaPagoResponse struct {
	Medio string          `json:"medio"`
	Monto decimal.Decimal `json:"monto"`
}

type VentaResponse struct {
	ID             string              `json:"id"`
	Fecha          time.Time           `json:"fecha"`
	FechaComercial string              `json:"fecha_comercial"`
	Total          decimal.Decimal     `json:"total"`
	Estado         string              `json:"estado"`
	Cliente        *string             `json:"cliente,omitempty"`
	Descripcion    string              `json:"descripcion,omitempty"`
	EsAbonoCredito bool                `json:"es_abono_credito"`
	CreditoID      *string             `json:"credito_id,omitempty"`
	Items          []VentaItemResponse `json:"items"`
	Pagos          []VentaPagoResponse `json:"pagos"`
}

type VentaListResponse struct {
	FechaComercial string          `json:"fecha_comercial"`
	Data           []VentaResponse `json:"data"`
	Total          int             `json:"total"`
}

// TotalesResponse aggregates sales over an instant range by payment channel.
type TotalesResponse struct {
	Desde          time.Time                  `json:"desde"`
	Hasta          time.Time                  `json:"hasta"`
	Bruto          decimal.Decimal            `json:"bruto"`
	Efectivo       decimal.Decimal            `json:"efectivo"`
	Electronico    decimal.Decimal            `json:"electronico"`
	PorMedio       map[string]decimal.Decimal `json:"por_medio"`
	CantidadVentas int                        `json:"cantidad_ventas"`
}

type PuntoSerie struct {
	Fecha string          `json:"fecha"`
	Total decimal.Decimal `json:"total"`
}
