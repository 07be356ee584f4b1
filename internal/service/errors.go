package service

import (
	"errors"
	"fmt"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"

	"github.com/google/uuid"
)

// Domain error kinds. Handlers map each one onto an HTTP status and code.
var (
	ErrStockInsuficiente     = errors.New("stock insuficiente")
	ErrMontoInvalido         = errors.New("monto invalido")
	ErrCreditoNoEncontrado   = errors.New("credito no encontrado")
	ErrProductoNoEncontrado  = errors.New("producto no encontrado")
	ErrProductoDuplicado     = errors.New("ya existe un producto con ese codigo de barras")
	ErrItemNoEncontrado      = errors.New("item de credito no encontrado")
	ErrVentaNoEncontrada     = errors.New("venta no encontrada")
	ErrVentaNoAnulable       = errors.New("la venta no se puede anular")
	ErrCajaYaCerrada         = errors.New("la caja de esta jornada ya fue cerrada")
	ErrCierreNoEncontrado    = errors.New("cierre no encontrado")
	ErrDesgloseInconsistente = errors.New("el desglose de pagos no coincide con el total")
	ErrCreditoEnConflicto    = errors.New("el cliente ya tiene un credito abierto de esa clase")
	ErrSolicitudInvalida     = errors.New("solicitud invalida")
)

// StockInsuficienteError carries the quantities behind a rejected reservation.
type StockInsuficienteError struct {
	ProductoID uuid.UUID
	Nombre     string
	Disponible int
	Solicitado int
}

func (e *StockInsuficienteError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d", e.Nombre, e.Disponible, e.Solicitado)
}

func (e *StockInsuficienteError) Is(target error) bool { return target == ErrStockInsuficiente }

// CajaYaCerradaError is returned by a second close of the same day and carries
// the record that already exists.
type CajaYaCerradaError struct {
	Cierre *dto.CierreResponse
}

func (e *CajaYaCerradaError) Error() string { return ErrCajaYaCerrada.Error() }

func (e *CajaYaCerradaError) Is(target error) bool { return target == ErrCajaYaCerrada }

func solicitudInvalida(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSolicitudInvalida, fmt.Sprintf(format, args...))
}
