package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CargarCreditoRequest charges a product to the customer's open account of the
// given class, opening one when none exists.
type CargarCreditoRequest struct {
	Cliente          string `json:"cliente"           validate:"required,min=2,max=120"`
	ProductoID       string `json:"producto_id"       validate:"required,uuid"`
	Cantidad         int    `json:"cantidad"`
	Tipo             string `json:"tipo"              validate:"required,oneof=corto largo"`
	Fecha            string `json:"fecha"             validate:"omitempty,datetime=2006-01-02"`
	FechaVencimiento string `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
}

type EditarItemRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"`
}

// AbonoRequest registers a payment. Monto is checked by the ledger, not the
// validator, so that non-positive amounts surface as monto_invalido.
type AbonoRequest struct {
	Monto     decimal.Decimal `json:"monto"`
	MedioPago string          `json:"medio_pago" validate:"omitempty,max=30"`
	Fecha     string          `json:"fecha"      validate:"omitempty,datetime=2006-01-02"`
}

type RenombrarClienteRequest struct {
	Cliente string `json:"cliente" validate:"required,min=2,max=120"`
}

type CreditoFilter struct {
	Tipo    string `form:"tipo"    validate:"omitempty,oneof=corto largo"`
	Estado  string `form:"estado"  validate:"omitempty,oneof=abierto cerrado"`
	Cliente string `form:"cliente"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CreditoItemResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	NombreProducto string          `json:"nombre_producto"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Cantidad       int             `json:"cantidad"`
	TotalLinea     decimal.Decimal `json:"total_linea"`
	Fecha          string          `json:"fecha"`
}

type CreditoAbonoResponse struct {
	ID        string          `json:"id"`
	Monto     decimal.Decimal `json:"monto"`
	MedioPago string          `json:"medio_pago"`
	Fecha     string          `json:"fecha"`
	VentaID   *string         `json:"venta_id,omitempty"`
}

type CreditoResponse struct {
	ID               string                 `json:"id"`
	Cliente          string                 `json:"cliente"`
	Tipo             string                 `json:"tipo"`
	Estado           string                 `json:"estado"`
	FechaApertura    string                 `json:"fecha_apertura"`
	FechaVencimiento *string                `json:"fecha_vencimiento,omitempty"`
	FechaCierre      *string                `json:"fecha_cierre,omitempty"`
	FechaUltimoAbono *string                `json:"fecha_ultimo_abono,omitempty"`
	TotalConsumido   decimal.Decimal        `json:"total_consumido"`
	TotalPagado      decimal.Decimal        `json:"total_pagado"`
	Saldo            decimal.Decimal        `json:"saldo"`
	Items            []CreditoItemResponse  `json:"items,omitempty"`
	Abonos           []CreditoAbonoResponse `json:"abonos,omitempty"`
}

type AbonoResponse struct {
	Credito CreditoResponse `json:"credito"`
	VentaID string          `json:"venta_id"`
	Cerrado bool            `json:"cerrado"`
}

type CreditoListResponse struct {
	Data  []CreditoResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
