package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PagoGasto is an expense outflow (supplier invoice payment, rent, services)
// dated on the commercial day it leaves the till.
type PagoGasto struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha     time.Time       `gorm:"type:date;not null;index"`
	Monto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MedioPago string          `gorm:"type:varchar(30);not null"`
	Concepto  string          `gorm:"not null"`
	UsuarioID *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt time.Time
}

func (PagoGasto) TableName() string { return "pagos_gastos" }
