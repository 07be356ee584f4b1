package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/model"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// margenPorDefecto is applied to the cost when a product is created without a sale price.
var margenPorDefecto = decimal.RequireFromString("1.35")

// Movimiento describes why a ledger operation touched stock. It becomes the
// audit row written next to the stock change.
type Movimiento struct {
	Tipo         string
	Motivo       string
	UsuarioID    *uuid.UUID
	ReferenciaID *uuid.UUID
}

// InventarioService owns product stock. Every change goes through a
// conditional update and leaves a movimiento_stock row behind.
type InventarioService interface {
	CrearProducto(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerProducto(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	BuscarPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error)
	Reservar(ctx context.Context, id uuid.UUID, cantidad int) (int, error)
	Liberar(ctx context.Context, id uuid.UUID, cantidad int) (int, error)
	AjustarStock(ctx context.Context, id uuid.UUID, usuarioID *uuid.UUID, req dto.AjustarStockRequest) (*dto.AjusteStockResponse, error)
	ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) (*dto.MovimientoListResponse, error)

	// ReservarTx and LiberarTx run against a transaction-bound store so callers
	// can compose stock changes with their own writes.
	ReservarTx(ctx context.Context, tx repository.Store, id uuid.UUID, cantidad int, mov Movimiento) (*model.Producto, error)
	LiberarTx(ctx context.Context, tx repository.Store, id uuid.UUID, cantidad int, mov Movimiento) (*model.Producto, error)
}

type inventarioService struct {
	store repository.Store
}

func NewInventarioService(store repository.Store) InventarioService {
	return &inventarioService{store: store}
}

// ── CrearProducto ─────────────────────────────────────────────────────────────

func (s *inventarioService) CrearProducto(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if req.PrecioCosto.IsNegative() || req.PrecioVenta.IsNegative() {
		return nil, ErrMontoInvalido
	}
	if req.StockInicial < 0 {
		return nil, ErrMontoInvalido
	}
	precioVenta := req.PrecioVenta
	if precioVenta.IsZero() {
		precioVenta = req.PrecioCosto.Mul(margenPorDefecto).Round(2)
	}

	p := &model.Producto{
		CodigoBarras: req.CodigoBarras,
		Nombre:       req.Nombre,
		PrecioCosto:  req.PrecioCosto.Round(2),
		PrecioVenta:  precioVenta,
		StockActual:  req.StockInicial,
		Activo:       true,
	}
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		if err := tx.Productos().Create(ctx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicado) {
				return ErrProductoDuplicado
			}
			return err
		}
		if req.StockInicial == 0 {
			return nil
		}
		return tx.Movimientos().Create(ctx, &model.MovimientoStock{
			ProductoID:    p.ID,
			Tipo:          model.MovimientoAjusteManual,
			Cantidad:      req.StockInicial,
			StockAnterior: 0,
			StockNuevo:    req.StockInicial,
			Motivo:        "stock inicial",
		})
	})
	if err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *inventarioService) ObtenerProducto(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.store.Productos().FindByID(ctx, id)
	if err != nil {
		return nil, productoErr(err)
	}
	return productoToResponse(p), nil
}

func (s *inventarioService) BuscarPorCodigo(ctx context.Context, codigo string) (*dto.ProductoResponse, error) {
	codigo = strings.TrimSpace(codigo)
	if codigo == "" {
		return nil, ErrProductoNoEncontrado
	}
	p, err := s.store.Productos().FindByBarcode(ctx, codigo)
	if err != nil {
		return nil, productoErr(err)
	}
	return productoToResponse(p), nil
}

// ── Reservar / Liberar ────────────────────────────────────────────────────────

func (s *inventarioService) Reservar(ctx context.Context, id uuid.UUID, cantidad int) (int, error) {
	var nuevo int
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		p, err := s.ReservarTx(ctx, tx, id, cantidad, Movimiento{Tipo: model.MovimientoVenta, Motivo: "reserva"})
		if err != nil {
			return err
		}
		nuevo = p.StockActual
		return nil
	})
	return nuevo, err
}

func (s *inventarioService) Liberar(ctx context.Context, id uuid.UUID, cantidad int) (int, error) {
	var nuevo int
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		p, err := s.LiberarTx(ctx, tx, id, cantidad, Movimiento{Tipo: model.MovimientoRestoreAnulacion, Motivo: "liberacion"})
		if err != nil {
			return err
		}
		nuevo = p.StockActual
		return nil
	})
	return nuevo, err
}

func (s *inventarioService) ReservarTx(ctx context.Context, tx repository.Store, id uuid.UUID, cantidad int, mov Movimiento) (*model.Producto, error) {
	if cantidad <= 0 {
		return nil, ErrMontoInvalido
	}
	p, err := tx.Productos().FindByID(ctx, id)
	if err != nil {
		return nil, productoErr(err)
	}
	nuevo, err := tx.Productos().Descontar(ctx, id, cantidad)
	if err != nil {
		if errors.Is(err, repository.ErrSinStock) {
			log.Warn().Str("producto_id", id.String()).Int("disponible", p.StockActual).
				Int("solicitado", cantidad).Msg("inventario: stock insuficiente")
			return nil, &StockInsuficienteError{ProductoID: id, Nombre: p.Nombre, Disponible: p.StockActual, Solicitado: cantidad}
		}
		return nil, productoErr(err)
	}
	if err := registrarMovimiento(ctx, tx, id, -cantidad, nuevo, mov); err != nil {
		return nil, err
	}
	p.StockActual = nuevo
	return p, nil
}

func (s *inventarioService) LiberarTx(ctx context.Context, tx repository.Store, id uuid.UUID, cantidad int, mov Movimiento) (*model.Producto, error) {
	if cantidad <= 0 {
		return nil, ErrMontoInvalido
	}
	p, err := tx.Productos().FindByID(ctx, id)
	if err != nil {
		return nil, productoErr(err)
	}
	nuevo, err := tx.Productos().Incrementar(ctx, id, cantidad)
	if err != nil {
		return nil, productoErr(err)
	}
	if err := registrarMovimiento(ctx, tx, id, cantidad, nuevo, mov); err != nil {
		return nil, err
	}
	p.StockActual = nuevo
	return p, nil
}

// ── AjustarStock ──────────────────────────────────────────────────────────────
// Manual correction. A result below zero is rejected, never clamped.

func (s *inventarioService) AjustarStock(ctx context.Context, id uuid.UUID, usuarioID *uuid.UUID, req dto.AjustarStockRequest) (*dto.AjusteStockResponse, error) {
	if req.Delta == 0 {
		return nil, ErrMontoInvalido
	}
	mov := Movimiento{Tipo: model.MovimientoAjusteManual, Motivo: req.Motivo, UsuarioID: usuarioID}

	var antes, despues int
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		var p *model.Producto
		var err error
		if req.Delta < 0 {
			p, err = s.ReservarTx(ctx, tx, id, -req.Delta, mov)
		} else {
			p, err = s.LiberarTx(ctx, tx, id, req.Delta, mov)
		}
		if err != nil {
			return err
		}
		despues = p.StockActual
		antes = despues - req.Delta
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("producto_id", id.String()).Int("delta", req.Delta).Int("stock", despues).
		Str("motivo", req.Motivo).Msg("inventario: ajuste manual")
	return &dto.AjusteStockResponse{
		ProductoID:    id.String(),
		StockAnterior: antes,
		StockNuevo:    despues,
		Motivo:        req.Motivo,
	}, nil
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) (*dto.MovimientoListResponse, error) {
	filter.Normalize()
	movs, total, err := s.store.Movimientos().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MovimientoStockResponse, 0, len(movs))
	for i := range movs {
		data = append(data, movimientoToResponse(&movs[i]))
	}
	return &dto.MovimientoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func registrarMovimiento(ctx context.Context, tx repository.Store, productoID uuid.UUID, cantidad, stockNuevo int, mov Movimiento) error {
	return tx.Movimientos().Create(ctx, &model.MovimientoStock{
		ProductoID:    productoID,
		Tipo:          mov.Tipo,
		Cantidad:      cantidad,
		StockAnterior: stockNuevo - cantidad,
		StockNuevo:    stockNuevo,
		Motivo:        mov.Motivo,
		UsuarioID:     mov.UsuarioID,
		ReferenciaID:  mov.ReferenciaID,
	})
}

func productoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProductoNoEncontrado
	}
	return err
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:           p.ID.String(),
		CodigoBarras: p.CodigoBarras,
		Nombre:       p.Nombre,
		PrecioCosto:  p.PrecioCosto,
		PrecioVenta:  p.PrecioVenta,
		StockActual:  p.StockActual,
		Activo:       p.Activo,
	}
}

func movimientoToResponse(m *model.MovimientoStock) dto.MovimientoStockResponse {
	r := dto.MovimientoStockResponse{
		ID:            m.ID.String(),
		ProductoID:    m.ProductoID.String(),
		Tipo:          m.Tipo,
		Cantidad:      m.Cantidad,
		StockAnterior: m.StockAnterior,
		StockNuevo:    m.StockNuevo,
		Motivo:        m.Motivo,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
	if m.UsuarioID != nil {
		s := m.UsuarioID.String()
		r.UsuarioID = &s
	}
	if m.ReferenciaID != nil {
		s := m.ReferenciaID.String()
		r.ReferenciaID = &s
	}
	return r
}
