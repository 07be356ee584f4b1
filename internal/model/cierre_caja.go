package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DetalleCierre is the snapshot frozen into a closing.
type DetalleCierre struct {
	Pagos       map[string]decimal.Decimal `json:"pagos"`
	Egresos     decimal.Decimal            `json:"egresos"`
	SaldoNeto   decimal.Decimal            `json:"saldo_neto"`
	Ventas      int                        `json:"ventas"`
	RangoInicio time.Time                  `json:"rango_inicio"`
	RangoFin    time.Time                  `json:"rango_fin"`
	HoraCierre  time.Time                  `json:"hora_cierre"`
}

// CierreCaja is the immutable end-of-day snapshot. FechaComercial is unique.
type CierreCaja struct {
	ID               uuid.UUID                         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FechaComercial   time.Time                         `gorm:"type:date;not null;uniqueIndex"`
	UsuarioID        uuid.UUID                         `gorm:"type:uuid;not null"`
	TotalBruto       decimal.Decimal                   `gorm:"type:decimal(14,2);not null"`
	TotalEfectivo    decimal.Decimal                   `gorm:"type:decimal(14,2);not null"`
	TotalElectronico decimal.Decimal                   `gorm:"type:decimal(14,2);not null"`
	TotalEgresos     decimal.Decimal                   `gorm:"type:decimal(14,2);not null"`
	SaldoNeto        decimal.Decimal                   `gorm:"type:decimal(14,2);not null"`
	Detalle          datatypes.JSONType[DetalleCierre] `gorm:"type:jsonb;not null"`
	CerradoAt        time.Time                         `gorm:"not null"`
}

func (CierreCaja) TableName() string { return "cierres_caja" }
