package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Clases de cuenta de credito.
const (
	CreditoCorto = "corto"
	CreditoLargo = "largo"
)

// Estados de cuenta de credito.
const (
	CreditoAbierto = "abierto"
	CreditoCerrado = "cerrado"
)

// Credito is a customer's running tab ("fiado"). Only one account per
// (Cliente, Tipo) may be abierto at a time.
type Credito struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Cliente          string          `gorm:"type:varchar(120);not null;index"`
	Tipo             string          `gorm:"type:varchar(10);not null"`
	Estado           string          `gorm:"type:varchar(10);not null;default:'abierto'"`
	FechaApertura    time.Time       `gorm:"type:date;not null"`
	FechaVencimiento *time.Time      `gorm:"type:date"`
	FechaCierre      *time.Time      `gorm:"type:date"`
	FechaUltimoAbono *time.Time      `gorm:"type:date"`
	TotalConsumido   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalPagado      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Items  []CreditoItem  `gorm:"foreignKey:CreditoID"`
	Abonos []CreditoAbono `gorm:"foreignKey:CreditoID"`
}

func (Credito) TableName() string { return "creditos" }

// Saldo is consumed minus paid. Negative means overpaid.
func (c *Credito) Saldo() decimal.Decimal {
	return c.TotalConsumido.Sub(c.TotalPagado)
}

// CreditoItem is a product charged to an account. Name and unit price are
// captured at charge time.
type CreditoItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreditoID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	NombreProducto string          `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cantidad       int             `gorm:"not null"`
	TotalLinea     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Fecha          time.Time       `gorm:"type:date;not null"`
	CreatedAt      time.Time
}

func (CreditoItem) TableName() string { return "credito_items" }

// CreditoAbono is a partial payment. VentaID points at the settlement sale it emitted.
type CreditoAbono struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreditoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Monto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MedioPago string          `gorm:"type:varchar(30);not null"`
	Fecha     time.Time       `gorm:"type:date;not null"`
	VentaID   *uuid.UUID      `gorm:"type:uuid"`
	UsuarioID *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt time.Time
}

func (CreditoAbono) TableName() string { return "credito_abonos" }
