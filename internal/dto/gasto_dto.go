package dto

import "github.com/shopspring/decimal"

type RegistrarPagoGastoRequest struct {
	Fecha     string          `json:"fecha"      validate:"omitempty,datetime=2006-01-02"`
	Monto     decimal.Decimal `json:"monto"`
	MedioPago string          `json:"medio_pago" validate:"omitempty,max=30"`
	Concepto  string          `json:"concepto"   validate:"required,min=3,max=200"`
}

type PagoGastoResponse struct {
	ID        string          `json:"id"`
	Fecha     string          `json:"fecha"`
	Monto     decimal.Decimal `json:"monto"`
	MedioPago string          `json:"medio_pago"`
	Concepto  string          `json:"concepto"`
}

type PagosGastoDiaResponse struct {
	Fecha string              `json:"fecha"`
	Total decimal.Decimal     `json:"total"`
	Data  []PagoGastoResponse `json:"data"`
}
