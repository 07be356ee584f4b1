package service

import (
	"context"
	"errors"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/jornada"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/metrics"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/model"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	diasSerieReporte = 7
	maxDiasRango     = 366
)

// NotificadorCierre receives closings once they are committed. The Redis job
// dispatcher implements it.
type NotificadorCierre interface {
	EncolarReporteCierre(ctx context.Context, cierreID uuid.UUID) error
}

// CierreService closes commercial days and reports on them. A day is closed at
// most once and a closing is never modified afterwards.
type CierreService interface {
	// CerrarDia closes fecha, or the current commercial day when fecha is nil.
	CerrarDia(ctx context.Context, usuarioID uuid.UUID, fecha *time.Time) (*dto.CierreResponse, error)
	ObtenerPorFecha(ctx context.Context, fecha time.Time) (*dto.CierreResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CierreResponse, error)
	Historial(ctx context.Context, page, limit int) (*dto.CierreListResponse, error)
	Reporte(ctx context.Context, fecha time.Time) (*dto.ReporteDiaResponse, error)
	ReporteRango(ctx context.Context, desde, hasta time.Time) (*dto.ReporteRangoResponse, error)
	// JornadaPendiente returns the previous commercial day when it has no closing yet.
	JornadaPendiente(ctx context.Context) (*jornada.Dia, error)
}

type cierreService struct {
	store       repository.Store
	ventas      VentaService
	jornada     *jornada.Resolver
	notificador NotificadorCierre
}

// NewCierreService builds the closing engine. notificador may be nil.
func NewCierreService(store repository.Store, ventas VentaService, resolver *jornada.Resolver, notificador NotificadorCierre) CierreService {
	return &cierreService{store: store, ventas: ventas, jornada: resolver, notificador: notificador}
}

// ── CerrarDia ─────────────────────────────────────────────────────────────────
// closeDay, in one transaction:
//   1. Reject when the date already has a closing
//   2. Aggregate sales in [inicio, fin) and expenses dated on the day
//   3. Persist the snapshot; a concurrent closer loses on the unique date

func (s *cierreService) CerrarDia(ctx context.Context, usuarioID uuid.UUID, fecha *time.Time) (*dto.CierreResponse, error) {
	dia := s.jornada.Hoy()
	if fecha != nil {
		dia = s.jornada.Dia(*fecha)
	}
	ahora := s.jornada.Ahora().UTC()
	if dia.Inicio.After(ahora) {
		return nil, solicitudInvalida("la jornada %s aun no empieza", dia)
	}

	var cierre *model.CierreCaja
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		if existente, err := tx.Cierres().FindByFecha(ctx, dia.Fecha); err == nil {
			return &CajaYaCerradaError{Cierre: cierreToResponse(existente)}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		totales, err := s.ventas.TotalesTx(ctx, tx, dia.Inicio, dia.Fin, nil)
		if err != nil {
			return err
		}
		egresos, err := tx.Gastos().SumByFecha(ctx, dia.Fecha)
		if err != nil {
			return err
		}
		neto := totales.Bruto.Sub(egresos).Round(2)

		cierre = &model.CierreCaja{
			FechaComercial:   dia.Fecha,
			UsuarioID:        usuarioID,
			TotalBruto:       totales.Bruto,
			TotalEfectivo:    totales.Efectivo,
			TotalElectronico: totales.Electronico,
			TotalEgresos:     egresos.Round(2),
			SaldoNeto:        neto,
			Detalle: datatypes.NewJSONType(model.DetalleCierre{
				Pagos:       totales.PorMedio,
				Egresos:     egresos.Round(2),
				SaldoNeto:   neto,
				Ventas:      totales.CantidadVentas,
				RangoInicio: dia.Inicio,
				RangoFin:    dia.Fin,
				HoraCierre:  ahora,
			}),
			CerradoAt: ahora,
		}
		return tx.Cierres().Create(ctx, cierre)
	})
	if errors.Is(err, repository.ErrDuplicado) {
		existente, ferr := s.store.Cierres().FindByFecha(ctx, dia.Fecha)
		if ferr != nil {
			return nil, ferr
		}
		err = &CajaYaCerradaError{Cierre: cierreToResponse(existente)}
	}
	if err != nil {
		if errors.Is(err, ErrCajaYaCerrada) {
			log.Warn().Str("fecha", dia.String()).Msg("cierre: la jornada ya estaba cerrada")
		}
		return nil, err
	}

	metrics.Cierres.Inc()
	log.Info().Str("fecha", dia.String()).Str("bruto", cierre.TotalBruto.StringFixed(2)).
		Str("neto", cierre.SaldoNeto.StringFixed(2)).Str("usuario_id", usuarioID.String()).Msg("cierre: jornada cerrada")

	if s.notificador != nil {
		if err := s.notificador.EncolarReporteCierre(ctx, cierre.ID); err != nil {
			log.Error().Err(err).Str("cierre_id", cierre.ID.String()).Msg("cierre: no se pudo encolar el reporte")
		}
	}
	return cierreToResponse(cierre), nil
}

func (s *cierreService) ObtenerPorFecha(ctx context.Context, fecha time.Time) (*dto.CierreResponse, error) {
	c, err := s.store.Cierres().FindByFecha(ctx, jornada.Normalizar(fecha))
	if err != nil {
		return nil, cierreErr(err)
	}
	return cierreToResponse(c), nil
}

func (s *cierreService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CierreResponse, error) {
	c, err := s.store.Cierres().FindByID(ctx, id)
	if err != nil {
		return nil, cierreErr(err)
	}
	return cierreToResponse(c), nil
}

func (s *cierreService) Historial(ctx context.Context, page, limit int) (*dto.CierreListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 30
	}
	cierres, total, err := s.store.Cierres().List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.CierreResponse, 0, len(cierres))
	for i := range cierres {
		data = append(data, *cierreToResponse(&cierres[i]))
	}
	return &dto.CierreListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// ── Reportes ──────────────────────────────────────────────────────────────────

// Reporte is the live view of a day: totals so far, expenses, whether it is
// closed and the gross series of the week ending on it.
func (s *cierreService) Reporte(ctx context.Context, fecha time.Time) (*dto.ReporteDiaResponse, error) {
	dia := s.jornada.Dia(fecha)
	totales, err := s.ventas.Totales(ctx, dia.Inicio, dia.Fin, nil)
	if err != nil {
		return nil, err
	}
	egresos, err := s.store.Gastos().SumByFecha(ctx, dia.Fecha)
	if err != nil {
		return nil, err
	}
	serie, err := s.ventas.SerieDiaria(ctx, jornada.DiasHasta(dia.Fecha, diasSerieReporte))
	if err != nil {
		return nil, err
	}

	r := &dto.ReporteDiaResponse{
		Fecha:     dia.String(),
		Totales:   *totales,
		Egresos:   egresos.Round(2),
		SaldoNeto: totales.Bruto.Sub(egresos).Round(2),
		Serie:     serie,
	}
	c, err := s.store.Cierres().FindByFecha(ctx, dia.Fecha)
	switch {
	case err == nil:
		r.CajaCerrada = true
		r.Cierre = cierreToResponse(c)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	return r, nil
}

// ReporteRango summarizes the commercial days desde..hasta, both inclusive.
func (s *cierreService) ReporteRango(ctx context.Context, desde, hasta time.Time) (*dto.ReporteRangoResponse, error) {
	desde, hasta = jornada.Normalizar(desde), jornada.Normalizar(hasta)
	if hasta.Before(desde) {
		return nil, solicitudInvalida("hasta es anterior a desde")
	}
	if hasta.Sub(desde) > maxDiasRango*24*time.Hour {
		return nil, solicitudInvalida("el rango no puede superar %d dias", maxDiasRango)
	}

	inicio, _ := s.jornada.RangeFor(desde)
	_, fin := s.jornada.RangeFor(hasta)
	totales, err := s.ventas.Totales(ctx, inicio, fin, nil)
	if err != nil {
		return nil, err
	}
	egresos := decimal.Zero
	for f := desde; !f.After(hasta); f = f.AddDate(0, 0, 1) {
		suma, err := s.store.Gastos().SumByFecha(ctx, f)
		if err != nil {
			return nil, err
		}
		egresos = egresos.Add(suma)
	}
	return &dto.ReporteRangoResponse{
		Desde:     jornada.FormatFecha(desde),
		Hasta:     jornada.FormatFecha(hasta),
		Totales:   *totales,
		Egresos:   egresos.Round(2),
		SaldoNeto: totales.Bruto.Sub(egresos).Round(2),
	}, nil
}

func (s *cierreService) JornadaPendiente(ctx context.Context) (*jornada.Dia, error) {
	anterior := s.jornada.Dia(s.jornada.Hoy().Fecha.AddDate(0, 0, -1))
	_, err := s.store.Cierres().FindByFecha(ctx, anterior.Fecha)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return &anterior, nil
}

func cierreErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCierreNoEncontrado
	}
	return err
}

func cierreToResponse(c *model.CierreCaja) *dto.CierreResponse {
	d := c.Detalle.Data()
	return &dto.CierreResponse{
		ID:               c.ID.String(),
		FechaComercial:   jornada.FormatFecha(c.FechaComercial),
		UsuarioID:        c.UsuarioID.String(),
		TotalBruto:       c.TotalBruto,
		TotalEfectivo:    c.TotalEfectivo,
		TotalElectronico: c.TotalElectronico,
		TotalEgresos:     c.TotalEgresos,
		SaldoNeto:        c.SaldoNeto,
		Pagos:            d.Pagos,
		Ventas:           d.Ventas,
		RangoInicio:      d.RangoInicio,
		RangoFin:         d.RangoFin,
		CerradoAt:        c.CerradoAt,
	}
}
