package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a sellable item. StockActual is owned by the inventory ledger and
// is never negative (CHECK constraint in the schema).
type Producto struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CodigoBarras *string         `gorm:"uniqueIndex" json:"codigo_barras,omitempty"`
	Nombre       string          `gorm:"index;not null" json:"nombre"`
	PrecioCosto  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"precio_costo"`
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"precio_venta"`
	StockActual  int             `gorm:"not null;default:0" json:"stock_actual"`
	Activo       bool            `gorm:"not null;default:true" json:"activo"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName keeps the Spanish plural.
func (Producto) TableName() string { return "productos" }
