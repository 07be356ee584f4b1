package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CerrarCajaRequest closes a commercial day. Empty Fecha means the current one.
type CerrarCajaRequest struct {
	Fecha string `json:"fecha" validate:"omitempty,datetime=2006-01-02"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CierreResponse struct {
	ID               string                     `json:"id"`
	FechaComercial   string                     `json:"fecha_comercial"`
	UsuarioID        string                     `json:"usuario_id"`
	TotalBruto       decimal.Decimal            `json:"total_bruto"`
	TotalEfectivo    decimal.Decimal            `json:"total_efectivo"`
	TotalElectronico decimal.Decimal            `json:"total_electronico"`
	TotalEgresos     decimal.Decimal            `json:"total_egresos"`
	SaldoNeto        decimal.Decimal            `json:"saldo_neto"`
	Pagos            map[string]decimal.Decimal `json:"pagos"`
	Ventas           int                        `json:"ventas"`
	RangoInicio      time.Time                  `json:"rango_inicio"`
	RangoFin         time.Time                  `json:"rango_fin"`
	CerradoAt        time.Time                  `json:"cerrado_at"`
}

type CierreListResponse struct {
	Data  []CierreResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// ReporteDiaResponse is the dashboard view of one commercial day.
type ReporteDiaResponse struct {
	Fecha       string          `json:"fecha"`
	Totales     TotalesResponse `json:"totales"`
	Egresos     decimal.Decimal `json:"egresos"`
	SaldoNeto   decimal.Decimal `json:"saldo_neto"`
	CajaCerrada bool            `json:"caja_cerrada"`
	Cierre      *CierreResponse `json:"cierre,omitempty"`
	Serie       []PuntoSerie    `json:"serie"`
}

type ReporteRangoResponse struct {
	Desde     string          `json:"desde"`
	Hasta     string          `json:"hasta"`
	Totales   TotalesResponse `json:"totales"`
	Egresos   decimal.Decimal `json:"egresos"`
	SaldoNeto decimal.Decimal `json:"saldo_neto"`
}
