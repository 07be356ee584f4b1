package model

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de movimiento de stock.
const (
	MovimientoAjusteManual     = "ajuste_manual"
	MovimientoCredito          = "credito"
	MovimientoRestoreCredito   = "restore_credito"
	MovimientoVenta            = "venta"
	MovimientoRestoreAnulacion = "restore_anulacion"
)

// MovimientoStock registra cada cambio de stock en un producto.
type MovimientoStock struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo          string    `gorm:"not null"`
	Cantidad      int       `gorm:"not null"` // positive = entrada, negative = salida
	StockAnterior int       `gorm:"not null"`
	StockNuevo    int       `gorm:"not null"`
	Motivo        string
	UsuarioID     *uuid.UUID `gorm:"type:uuid"`
	ReferenciaID  *uuid.UUID `gorm:"type:uuid"` // credito_item, venta or nil for manual adjustments
	CreatedAt     time.Time
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
