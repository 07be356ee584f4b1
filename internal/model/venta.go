package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de venta.
const (
	VentaCerrada = "cerrada"
	VentaAnulada = "anulada"
)

// MedioEfectivo is the cash channel. Every other channel counts as electronic.
const MedioEfectivo = "efectivo"

// Venta is a finalized sale. Total equals the sum of Items subtotals and of Pagos.
type Venta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha          time.Time       `gorm:"not null;index"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado         string          `gorm:"type:varchar(10);not null;default:'cerrada'"`
	Cliente        *string         `gorm:"type:varchar(120)"`
	UsuarioID      *uuid.UUID      `gorm:"type:uuid;index"`
	Descripcion    string
	EsAbonoCredito bool       `gorm:"not null;default:false"`
	CreditoID      *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time

	Items []VentaItem `gorm:"foreignKey:VentaID"`
	Pagos []VentaPago `gorm:"foreignKey:VentaID"`
}

func (Venta) TableName() string { return "ventas" }

// VentaItem is a sale line. ProductoID is nil for credit-settlement lines.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     *uuid.UUID      `gorm:"type:uuid"`
	Descripcion    string          `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (VentaItem) TableName() string { return "venta_items" }

// VentaPago is one entry of the payment breakdown.
type VentaPago struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Medio   string          `gorm:"type:varchar(30);not null"`
	Monto   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (VentaPago) TableName() string { return "venta_pagos" }
