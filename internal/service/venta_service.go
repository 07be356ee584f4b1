package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/jornada"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/model"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// VentaService records sales and aggregates them over commercial days.
type VentaService interface {
	RegistrarVenta(ctx context.Context, usuarioID *uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	// RegistrarVentaTx validates and persists an already built sale inside tx.
	RegistrarVentaTx(ctx context.Context, tx repository.Store, v *model.Venta) error
	AnularVenta(ctx context.Context, id uuid.UUID, usuarioID *uuid.UUID) error
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, fecha time.Time) (*dto.VentaListResponse, error)
	Totales(ctx context.Context, desde, hasta time.Time, usuarioID *uuid.UUID) (*dto.TotalesResponse, error)
	TotalesTx(ctx context.Context, tx repository.Store, desde, hasta time.Time, usuarioID *uuid.UUID) (*dto.TotalesResponse, error)
	SerieDiaria(ctx context.Context, fechas []time.Time) ([]dto.PuntoSerie, error)
}

type ventaService struct {
	store      repository.Store
	inventario InventarioService
	jornada    *jornada.Resolver
}

func NewVentaService(store repository.Store, inventario InventarioService, resolver *jornada.Resolver) VentaService {
	return &ventaService{store: store, inventario: inventario, jornada: resolver}
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// Counter sale. In one transaction:
//   1. Reserve stock for every line at the current sale price
//   2. Derive the total from the line subtotals
//   3. Validate the payment breakdown against that total and persist

func (s *ventaService) RegistrarVenta(ctx context.Context, usuarioID *uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	if len(req.Items) == 0 {
		return nil, solicitudInvalida("la venta no tiene items")
	}

	venta := &model.Venta{
		ID:        uuid.New(),
		Fecha:     s.jornada.Ahora().UTC(),
		Estado:    model.VentaCerrada,
		Cliente:   req.Cliente,
		UsuarioID: usuarioID,
	}
	for _, p := range req.Pagos {
		venta.Pagos = append(venta.Pagos, model.VentaPago{Medio: p.Medio, Monto: p.Monto})
	}

	err := s.store.Tx(ctx, func(tx repository.Store) error {
		venta.Items = venta.Items[:0]
		total := decimal.Zero
		for _, it := range req.Items {
			productoID, err := uuid.Parse(it.ProductoID)
			if err != nil {
				return solicitudInvalida("producto_id invalido: %s", it.ProductoID)
			}
			p, err := s.inventario.ReservarTx(ctx, tx, productoID, it.Cantidad, Movimiento{
				Tipo:         model.MovimientoVenta,
				Motivo:       "venta",
				UsuarioID:    usuarioID,
				ReferenciaID: &venta.ID,
			})
			if err != nil {
				return err
			}
			subtotal := p.PrecioVenta.Mul(decimal.NewFromInt(int64(it.Cantidad))).Round(2)
			total = total.Add(subtotal)
			venta.Items = append(venta.Items, model.VentaItem{
				ProductoID:     &productoID,
				Descripcion:    p.Nombre,
				Cantidad:       it.Cantidad,
				PrecioUnitario: p.PrecioVenta,
				Subtotal:       subtotal,
			})
		}
		venta.Total = total
		return s.RegistrarVentaTx(ctx, tx, venta)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("venta_id", venta.ID.String()).Str("total", venta.Total.StringFixed(2)).Msg("venta: registrada")
	return s.toResponse(venta), nil
}

// RegistrarVentaTx enforces total == Σ items == Σ pagos after rounding to
// cents. Channel names are lower-cased and repeated channels are merged. A sale
// without pagos is accepted and counts entirely as cash.
func (s *ventaService) RegistrarVentaTx(ctx context.Context, tx repository.Store, v *model.Venta) error {
	if len(v.Items) == 0 {
		return solicitudInvalida("la venta no tiene items")
	}
	sumaItems := decimal.Zero
	for _, it := range v.Items {
		if it.Cantidad <= 0 || !it.Subtotal.IsPositive() {
			return ErrMontoInvalido
		}
		sumaItems = sumaItems.Add(it.Subtotal)
	}
	if !v.Total.IsPositive() {
		return ErrMontoInvalido
	}
	total := v.Total.Round(2)
	if !sumaItems.Round(2).Equal(total) {
		log.Warn().Str("total", total.String()).Str("items", sumaItems.String()).Msg("venta: items no cuadran con el total")
		return ErrDesgloseInconsistente
	}

	pagos, err := normalizarPagos(v.Pagos)
	if err != nil {
		return err
	}
	if len(pagos) > 0 {
		sumaPagos := decimal.Zero
		for _, p := range pagos {
			sumaPagos = sumaPagos.Add(p.Monto)
		}
		if !sumaPagos.Round(2).Equal(total) {
			log.Warn().Str("total", total.String()).Str("pagos", sumaPagos.String()).Msg("venta: desglose inconsistente")
			return ErrDesgloseInconsistente
		}
	}

	v.Total = total
	v.Pagos = pagos
	if v.Estado == "" {
		v.Estado = model.VentaCerrada
	}
	if v.Fecha.IsZero() {
		v.Fecha = s.jornada.Ahora().UTC()
	}
	return tx.Ventas().Create(ctx, v)
}

func normalizarPagos(in []model.VentaPago) ([]model.VentaPago, error) {
	var out []model.VentaPago
	idx := make(map[string]int)
	for _, p := range in {
		medio := strings.ToLower(strings.TrimSpace(p.Medio))
		if medio == "" {
			medio = model.MedioEfectivo
		}
		if !p.Monto.IsPositive() {
			return nil, ErrMontoInvalido
		}
		if i, ok := idx[medio]; ok {
			out[i].Monto = out[i].Monto.Add(p.Monto)
			continue
		}
		idx[medio] = len(out)
		out = append(out, model.VentaPago{Medio: medio, Monto: p.Monto})
	}
	return out, nil
}

// ── AnularVenta ───────────────────────────────────────────────────────────────
// Restores the stock of product lines. Settlement sales and sales of a closed
// commercial day cannot be annulled.

func (s *ventaService) AnularVenta(ctx context.Context, id uuid.UUID, usuarioID *uuid.UUID) error {
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		v, err := tx.Ventas().FindByID(ctx, id)
		if err != nil {
			return ventaErr(err)
		}
		if v.Estado == model.VentaAnulada {
			return fmt.Errorf("%w: ya esta anulada", ErrVentaNoAnulable)
		}
		if v.EsAbonoCredito {
			return fmt.Errorf("%w: corresponde a un abono de credito", ErrVentaNoAnulable)
		}
		dia := s.jornada.Resolve(v.Fecha)
		if _, err := tx.Cierres().FindByFecha(ctx, dia.Fecha); err == nil {
			return fmt.Errorf("%w: la jornada %s ya fue cerrada", ErrVentaNoAnulable, dia)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		for _, it := range v.Items {
			if it.ProductoID == nil {
				continue
			}
			if _, err := s.inventario.LiberarTx(ctx, tx, *it.ProductoID, it.Cantidad, Movimiento{
				Tipo:         model.MovimientoRestoreAnulacion,
				Motivo:       "anulacion de venta",
				UsuarioID:    usuarioID,
				ReferenciaID: &v.ID,
			}); err != nil {
				return err
			}
		}
		return tx.Ventas().UpdateEstado(ctx, id, model.VentaAnulada)
	})
	if err != nil {
		return err
	}
	log.Info().Str("venta_id", id.String()).Msg("venta: anulada")
	return nil
}

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	v, err := s.store.Ventas().FindByID(ctx, id)
	if err != nil {
		return nil, ventaErr(err)
	}
	return s.toResponse(v), nil
}

// ListarVentas returns every sale of the commercial day, annulled ones included.
func (s *ventaService) ListarVentas(ctx context.Context, fecha time.Time) (*dto.VentaListResponse, error) {
	dia := s.jornada.Dia(fecha)
	ventas, err := s.store.Ventas().List(ctx, repository.VentaFilter{Desde: dia.Inicio, Hasta: dia.Fin, IncluirAnuladas: true})
	if err != nil {
		return nil, err
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *s.toResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{FechaComercial: dia.String(), Data: data, Total: len(data)}, nil
}

// ── Totales ───────────────────────────────────────────────────────────────────

func (s *ventaService) Totales(ctx context.Context, desde, hasta time.Time, usuarioID *uuid.UUID) (*dto.TotalesResponse, error) {
	return s.TotalesTx(ctx, s.store, desde, hasta, usuarioID)
}

// TotalesTx sums non-annulled sales in [desde, hasta). Every channel other
// than cash counts as electronic.
func (s *ventaService) TotalesTx(ctx context.Context, tx repository.Store, desde, hasta time.Time, usuarioID *uuid.UUID) (*dto.TotalesResponse, error) {
	ventas, err := tx.Ventas().List(ctx, repository.VentaFilter{Desde: desde, Hasta: hasta, UsuarioID: usuarioID})
	if err != nil {
		return nil, err
	}

	t := &dto.TotalesResponse{
		Desde:       desde,
		Hasta:       hasta,
		Bruto:       decimal.Zero,
		Efectivo:    decimal.Zero,
		Electronico: decimal.Zero,
		PorMedio:    make(map[string]decimal.Decimal),
	}
	for _, v := range ventas {
		if v.Estado == model.VentaAnulada {
			continue
		}
		t.CantidadVentas++
		t.Bruto = t.Bruto.Add(v.Total)
		if len(v.Pagos) == 0 {
			t.PorMedio[model.MedioEfectivo] = t.PorMedio[model.MedioEfectivo].Add(v.Total)
			continue
		}
		for _, p := range v.Pagos {
			t.PorMedio[p.Medio] = t.PorMedio[p.Medio].Add(p.Monto)
		}
	}
	for medio, monto := range t.PorMedio {
		monto = monto.Round(2)
		t.PorMedio[medio] = monto
		if medio == model.MedioEfectivo {
			t.Efectivo = t.Efectivo.Add(monto)
		} else {
			t.Electronico = t.Electronico.Add(monto)
		}
	}
	t.Bruto = t.Bruto.Round(2)
	return t, nil
}

// SerieDiaria returns the gross total of each commercial date, in input order.
func (s *ventaService) SerieDiaria(ctx context.Context, fechas []time.Time) ([]dto.PuntoSerie, error) {
	serie := make([]dto.PuntoSerie, 0, len(fechas))
	for _, f := range fechas {
		inicio, fin := s.jornada.RangeFor(f)
		t, err := s.Totales(ctx, inicio, fin, nil)
		if err != nil {
			return nil, err
		}
		serie = append(serie, dto.PuntoSerie{Fecha: jornada.FormatFecha(f), Total: t.Bruto})
	}
	return serie, nil
}

func ventaErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrVentaNoEncontrada
	}
	return err
}

func (s *ventaService) toResponse(v *model.Venta) *dto.VentaResponse {
	r := &dto.VentaResponse{
		ID:             v.ID.String(),
		Fecha:          v.Fecha,
		FechaComercial: s.jornada.Resolve(v.Fecha).String(),
		Total:          v.Total,
		Estado:         v.Estado,
		Cliente:        v.Cliente,
		Descripcion:    v.Descripcion,
		EsAbonoCredito: v.EsAbonoCredito,
		Items:          make([]dto.VentaItemResponse, 0, len(v.Items)),
		Pagos:          make([]dto.VentaPagoResponse, 0, len(v.Pagos)),
	}
	if v.CreditoID != nil {
		id := v.CreditoID.String()
		r.CreditoID = &id
	}
	for _, it := range v.Items {
		item := dto.VentaItemResponse{
			Descripcion:    it.Descripcion,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.Subtotal,
		}
		if it.ProductoID != nil {
			id := it.ProductoID.String()
			item.ProductoID = &id
		}
		r.Items = append(r.Items, item)
	}
	for _, p := range v.Pagos {
		r.Pagos = append(r.Pagos, dto.VentaPagoResponse{Medio: p.Medio, Monto: p.Monto})
	}
	return r
}
