package service

import (
	"context"
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

// GastoService records expense outflows that the closing subtracts from gross sales.
type GastoService interface {
	RegistrarPago(ctx context.Context, usuarioID *uuid.UUID, req dto.RegistrarPagoGastoRequest) (*dto.PagoGastoResponse, error)
	SumaPorFecha(ctx context.Context, fecha time.Time) (decimal.Decimal, error)
	ListarPorFecha(ctx context.Context, fecha time.Time) (*dto.PagosGastoDiaResponse, error)
}

type gastoService struct {
	store   repository.Store
	jornada *jornada.Resolver
}

func NewGastoService(store repository.Store, resolver *jornada.Resolver) GastoService {
	return &gastoService{store: store, jornada: resolver}
}

func (s *gastoService) RegistrarPago(ctx context.Context, usuarioID *uuid.UUID, req dto.RegistrarPagoGastoRequest) (*dto.PagoGastoResponse, error) {
	monto := req.Monto.Round(2)
	if !monto.IsPositive() {
		return nil, ErrMontoInvalido
	}
	fecha := s.jornada.Hoy().Fecha
	if req.Fecha != "" {
		f, err := jornada.ParseFecha(req.Fecha)
		if err != nil {
			return nil, solicitudInvalida("%s", err.Error())
		}
		fecha = f
	}
	medio := strings.ToLower(strings.TrimSpace(req.MedioPago))
	if medio == "" {
		medio = model.MedioEfectivo
	}

	pago := &model.PagoGasto{
		Fecha:     fecha,
		Monto:     monto,
		MedioPago: medio,
		Concepto:  strings.TrimSpace(req.Concepto),
		UsuarioID: usuarioID,
	}
	if err := s.store.Gastos().Create(ctx, pago); err != nil {
		return nil, err
	}
	log.Info().Str("fecha", jornada.FormatFecha(fecha)).Str("monto", monto.StringFixed(2)).
		Str("concepto", pago.Concepto).Msg("gasto: pago registrado")
	return pagoGastoToResponse(pago), nil
}

// SumaPorFecha is the expense total the closing of fecha subtracts.
func (s *gastoService) SumaPorFecha(ctx context.Context, fecha time.Time) (decimal.Decimal, error) {
	return s.store.Gastos().SumByFecha(ctx, jornada.Normalizar(fecha))
}

func (s *gastoService) ListarPorFecha(ctx context.Context, fecha time.Time) (*dto.PagosGastoDiaResponse, error) {
	fecha = jornada.Normalizar(fecha)
	pagos, err := s.store.Gastos().ListByFecha(ctx, fecha)
	if err != nil {
		return nil, err
	}
	r := &dto.PagosGastoDiaResponse{
		Fecha: jornada.FormatFecha(fecha),
		Total: decimal.Zero,
		Data:  make([]dto.PagoGastoResponse, 0, len(pagos)),
	}
	for i := range pagos {
		r.Total = r.Total.Add(pagos[i].Monto)
		r.Data = append(r.Data, *pagoGastoToResponse(&pagos[i]))
	}
	return r, nil
}

func pagoGastoToResponse(p *model.PagoGasto) *dto.PagoGastoResponse {
	return &dto.PagoGastoResponse{
		ID:        p.ID.String(),
		Fecha:     jornada.FormatFecha(p.Fecha),
		Monto:     p.Monto,
		MedioPago: p.MedioPago,
		Concepto:  p.Concepto,
	}
}
