package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/jornada"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/metrics"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/model"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CreditoService is the customer credit ledger. An account is abierto exactly
// while TotalConsumido - TotalPagado > 0, and every mutation keeps product
// stock in step within the same transaction.
type CreditoService interface {
	Cargar(ctx context.Context, usuarioID *uuid.UUID, req dto.CargarCreditoRequest) (*dto.CreditoResponse, error)
	EditarItem(ctx context.Context, itemID uuid.UUID, usuarioID *uuid.UUID, req dto.EditarItemRequest) (*dto.CreditoResponse, error)
	EliminarItem(ctx context.Context, itemID uuid.UUID, usuarioID *uuid.UUID) (*dto.CreditoResponse, error)
	RegistrarAbono(ctx context.Context, creditoID uuid.UUID, usuarioID *uuid.UUID, req dto.AbonoRequest) (*dto.AbonoResponse, error)
	Eliminar(ctx context.Context, creditoID uuid.UUID, usuarioID *uuid.UUID) error
	Obtener(ctx context.Context, id uuid.UUID) (*dto.CreditoResponse, error)
	Listar(ctx context.Context, filter dto.CreditoFilter) (*dto.CreditoListResponse, error)
	RenombrarCliente(ctx context.Context, id uuid.UUID, req dto.RenombrarClienteRequest) (*dto.CreditoResponse, error)
}

type creditoService struct {
	store      repository.Store
	inventario InventarioService
	ventas     VentaService
	jornada    *jornada.Resolver
}

func NewCreditoService(store repository.Store, inventario InventarioService, ventas VentaService, resolver *jornada.Resolver) CreditoService {
	return &creditoService{store: store, inventario: inventario, ventas: ventas, jornada: resolver}
}

// NormalizarCliente trims, collapses inner whitespace and upper-cases a customer name.
func NormalizarCliente(nombre string) string {
	return strings.ToUpper(strings.Join(strings.Fields(nombre), " "))
}

// ── Cargar ────────────────────────────────────────────────────────────────────
// chargeItem: reserve stock, find or open the (cliente, tipo) account, append
// the line with snapshot name and price, grow the consumed total.

func (s *creditoService) Cargar(ctx context.Context, usuarioID *uuid.UUID, req dto.CargarCreditoRequest) (*dto.CreditoResponse, error) {
	cliente := NormalizarCliente(req.Cliente)
	if cliente == "" {
		return nil, solicitudInvalida("cliente requerido")
	}
	if req.Tipo != model.CreditoCorto && req.Tipo != model.CreditoLargo {
		return nil, solicitudInvalida("tipo de credito invalido: %q", req.Tipo)
	}
	if req.Cantidad <= 0 {
		return nil, ErrMontoInvalido
	}
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, solicitudInvalida("producto_id invalido")
	}
	fecha, err := s.fechaOHoy(req.Fecha)
	if err != nil {
		return nil, err
	}
	var vencimiento *time.Time
	if req.FechaVencimiento != "" {
		v, err := jornada.ParseFecha(req.FechaVencimiento)
		if err != nil {
			return nil, solicitudInvalida("%s", err.Error())
		}
		vencimiento = &v
	}

	var creditoID uuid.UUID
	var total decimal.Decimal
	err = s.store.Tx(ctx, func(tx repository.Store) error {
		if err := tx.Creditos().BloquearCliente(ctx, cliente, req.Tipo); err != nil {
			return err
		}

		itemID := uuid.New()
		p, err := s.inventario.ReservarTx(ctx, tx, productoID, req.Cantidad, Movimiento{
			Tipo:         model.MovimientoCredito,
			Motivo:       "credito " + cliente,
			UsuarioID:    usuarioID,
			ReferenciaID: &itemID,
		})
		if err != nil {
			return err
		}
		total = lineaTotal(p.PrecioVenta, req.Cantidad)
		if !total.IsPositive() {
			return ErrMontoInvalido
		}

		credito, err := s.abiertoOCrear(ctx, tx, cliente, req.Tipo, fecha, vencimiento)
		if err != nil {
			return err
		}
		if err := tx.Creditos().CreateItem(ctx, &model.CreditoItem{
			ID:             itemID,
			CreditoID:      credito.ID,
			ProductoID:     p.ID,
			NombreProducto: p.Nombre,
			PrecioUnitario: p.PrecioVenta,
			Cantidad:       req.Cantidad,
			TotalLinea:     total,
			Fecha:          fecha,
		}); err != nil {
			return err
		}
		credito.TotalConsumido = credito.TotalConsumido.Add(total)
		creditoID = credito.ID
		return tx.Creditos().Update(ctx, credito)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("credito_id", creditoID.String()).Str("cliente", cliente).Str("tipo", req.Tipo).
		Str("total_linea", total.StringFixed(2)).Msg("credito: cargo registrado")
	return s.Obtener(ctx, creditoID)
}

func (s *creditoService) abiertoOCrear(ctx context.Context, tx repository.Store, cliente, tipo string, fecha time.Time, vencimiento *time.Time) (*model.Credito, error) {
	credito, err := tx.Creditos().FindAbierto(ctx, cliente, tipo)
	if err == nil {
		if vencimiento != nil && credito.FechaVencimiento == nil {
			credito.FechaVencimiento = vencimiento
		}
		return credito, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	credito = &model.Credito{
		Cliente:          cliente,
		Tipo:             tipo,
		Estado:           model.CreditoAbierto,
		FechaApertura:    fecha,
		FechaVencimiento: vencimiento,
		TotalConsumido:   decimal.Zero,
		TotalPagado:      decimal.Zero,
	}
	if err := tx.Creditos().Create(ctx, credito); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, ErrCreditoEnConflicto
		}
		return nil, err
	}
	log.Info().Str("credito_id", credito.ID.String()).Str("cliente", cliente).Str("tipo", tipo).Msg("credito: cuenta abierta")
	return credito, nil
}

// ── EditarItem ────────────────────────────────────────────────────────────────
// Release the old quantity and reserve the new one in the same transaction. The
// price is re-read from the product, so an edit reprices the line.

func (s *creditoService) EditarItem(ctx context.Context, itemID uuid.UUID, usuarioID *uuid.UUID, req dto.EditarItemRequest) (*dto.CreditoResponse, error) {
	if req.Cantidad <= 0 {
		return nil, ErrMontoInvalido
	}
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, solicitudInvalida("producto_id invalido")
	}

	var creditoID uuid.UUID
	err = s.store.Tx(ctx, func(tx repository.Store) error {
		item, credito, err := s.itemConCredito(ctx, tx, itemID)
		if err != nil {
			return err
		}
		creditoID = credito.ID

		if _, err := s.inventario.LiberarTx(ctx, tx, item.ProductoID, item.Cantidad, Movimiento{
			Tipo:         model.MovimientoRestoreCredito,
			Motivo:       "edicion de credito",
			UsuarioID:    usuarioID,
			ReferenciaID: &item.ID,
		}); err != nil {
			return err
		}
		p, err := s.inventario.ReservarTx(ctx, tx, productoID, req.Cantidad, Movimiento{
			Tipo:         model.MovimientoCredito,
			Motivo:       "edicion de credito",
			UsuarioID:    usuarioID,
			ReferenciaID: &item.ID,
		})
		if err != nil {
			return err
		}
		nuevoTotal := lineaTotal(p.PrecioVenta, req.Cantidad)
		if !nuevoTotal.IsPositive() {
			return ErrMontoInvalido
		}

		credito.TotalConsumido = credito.TotalConsumido.Sub(item.TotalLinea).Add(nuevoTotal)
		item.ProductoID = p.ID
		item.NombreProducto = p.Nombre
		item.PrecioUnitario = p.PrecioVenta
		item.Cantidad = req.Cantidad
		item.TotalLinea = nuevoTotal
		if err := tx.Creditos().UpdateItem(ctx, item); err != nil {
			return err
		}
		if err := s.ajustarEstado(ctx, tx, credito); err != nil {
			return err
		}
		return tx.Creditos().Update(ctx, credito)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("credito_id", creditoID.String()).Str("item_id", itemID.String()).Msg("credito: item editado")
	return s.Obtener(ctx, creditoID)
}

// ── EliminarItem ──────────────────────────────────────────────────────────────

func (s *creditoService) EliminarItem(ctx context.Context, itemID uuid.UUID, usuarioID *uuid.UUID) (*dto.CreditoResponse, error) {
	var creditoID uuid.UUID
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		item, credito, err := s.itemConCredito(ctx, tx, itemID)
		if err != nil {
			return err
		}
		creditoID = credito.ID

		if _, err := s.inventario.LiberarTx(ctx, tx, item.ProductoID, item.Cantidad, Movimiento{
			Tipo:         model.MovimientoRestoreCredito,
			Motivo:       "item eliminado",
			UsuarioID:    usuarioID,
			ReferenciaID: &item.ID,
		}); err != nil {
			return err
		}
		credito.TotalConsumido = credito.TotalConsumido.Sub(item.TotalLinea)
		if err := tx.Creditos().DeleteItem(ctx, item.ID); err != nil {
			return err
		}
		if err := s.ajustarEstado(ctx, tx, credito); err != nil {
			return err
		}
		return tx.Creditos().Update(ctx, credito)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("credito_id", creditoID.String()).Str("item_id", itemID.String()).Msg("credito: item eliminado")
	return s.Obtener(ctx, creditoID)
}

func (s *creditoService) itemConCredito(ctx context.Context, tx repository.Store, itemID uuid.UUID) (*model.CreditoItem, *model.Credito, error) {
	item, err := tx.Creditos().FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrItemNoEncontrado
		}
		return nil, nil, err
	}
	credito, err := tx.Creditos().FindForUpdate(ctx, item.CreditoID)
	if err != nil {
		return nil, nil, creditoErr(err)
	}
	return item, credito, nil
}

// ajustarEstado re-derives the status from the balance. A closed account that
// owes again reopens unless the customer already has another open account of
// the same class.
func (s *creditoService) ajustarEstado(ctx context.Context, tx repository.Store, c *model.Credito) error {
	saldo := c.Saldo()
	switch {
	case saldo.IsPositive() && c.Estado == model.CreditoCerrado:
		if err := tx.Creditos().BloquearCliente(ctx, c.Cliente, c.Tipo); err != nil {
			return err
		}
		otro, err := tx.Creditos().FindAbierto(ctx, c.Cliente, c.Tipo)
		if err == nil && otro.ID != c.ID {
			log.Warn().Str("credito_id", c.ID.String()).Str("abierto", otro.ID.String()).Msg("credito: reapertura en conflicto")
			return ErrCreditoEnConflicto
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		c.Estado = model.CreditoAbierto
		c.FechaCierre = nil
		log.Info().Str("credito_id", c.ID.String()).Msg("credito: cuenta reabierta")
	case !saldo.IsPositive() && c.Estado == model.CreditoAbierto:
		hoy := s.jornada.Hoy().Fecha
		c.Estado = model.CreditoCerrado
		c.FechaCierre = &hoy
		log.Info().Str("credito_id", c.ID.String()).Msg("credito: cuenta cerrada")
	}
	return nil
}

// ── RegistrarAbono ────────────────────────────────────────────────────────────
// recordPayment: the payment is also revenue of the day, so a settlement sale
// is emitted through the sales aggregator in the same transaction.

func (s *creditoService) RegistrarAbono(ctx context.Context, creditoID uuid.UUID, usuarioID *uuid.UUID, req dto.AbonoRequest) (*dto.AbonoResponse, error) {
	monto := req.Monto.Round(2)
	if !monto.IsPositive() {
		return nil, ErrMontoInvalido
	}
	medio := strings.ToLower(strings.TrimSpace(req.MedioPago))
	if medio == "" {
		medio = model.MedioEfectivo
	}
	fecha, err := s.fechaOHoy(req.Fecha)
	if err != nil {
		return nil, err
	}

	var ventaID uuid.UUID
	var cerrado bool
	err = s.store.Tx(ctx, func(tx repository.Store) error {
		credito, err := tx.Creditos().FindForUpdate(ctx, creditoID)
		if err != nil {
			return creditoErr(err)
		}

		cliente := credito.Cliente
		venta := &model.Venta{
			ID:             uuid.New(),
			Fecha:          s.jornada.Ahora().UTC(),
			Total:          monto,
			Estado:         model.VentaCerrada,
			Cliente:        &cliente,
			UsuarioID:      usuarioID,
			Descripcion:    fmt.Sprintf("ABONO CRÉDITO - CLIENTE: %s", cliente),
			EsAbonoCredito: true,
			CreditoID:      &credito.ID,
			Items: []model.VentaItem{{
				Descripcion:    fmt.Sprintf("Abono credito %s", credito.Tipo),
				Cantidad:       1,
				PrecioUnitario: monto,
				Subtotal:       monto,
			}},
			Pagos: []model.VentaPago{{Medio: medio, Monto: monto}},
		}
		if err := s.ventas.RegistrarVentaTx(ctx, tx, venta); err != nil {
			return err
		}
		ventaID = venta.ID

		if err := tx.Creditos().CreateAbono(ctx, &model.CreditoAbono{
			CreditoID: credito.ID,
			Monto:     monto,
			MedioPago: medio,
			Fecha:     fecha,
			VentaID:   &venta.ID,
			UsuarioID: usuarioID,
		}); err != nil {
			return err
		}

		credito.TotalPagado = credito.TotalPagado.Add(monto)
		credito.FechaUltimoAbono = &fecha
		if !credito.Saldo().IsPositive() && credito.Estado == model.CreditoAbierto {
			credito.Estado = model.CreditoCerrado
			hoy := s.jornada.Hoy().Fecha
			credito.FechaCierre = &hoy
			cerrado = true
		}
		return tx.Creditos().Update(ctx, credito)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("credito_id", creditoID.String()).Str("monto", monto.StringFixed(2)).Str("medio", medio).
		Bool("cerrado", cerrado).Msg("credito: abono registrado")
	metrics.Abonos.WithLabelValues(medio).Inc()
	credito, err := s.Obtener(ctx, creditoID)
	if err != nil {
		return nil, err
	}
	return &dto.AbonoResponse{Credito: *credito, VentaID: ventaID.String(), Cerrado: cerrado}, nil
}

// ── Eliminar ──────────────────────────────────────────────────────────────────
// deleteAccount: every remaining item gives its stock back. Settlement sales
// already emitted stay, they are money that was actually received.

func (s *creditoService) Eliminar(ctx context.Context, creditoID uuid.UUID, usuarioID *uuid.UUID) error {
	var restaurados int
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		credito, err := tx.Creditos().FindByID(ctx, creditoID)
		if err != nil {
			return creditoErr(err)
		}
		for _, it := range credito.Items {
			if _, err := s.inventario.LiberarTx(ctx, tx, it.ProductoID, it.Cantidad, Movimiento{
				Tipo:         model.MovimientoRestoreCredito,
				Motivo:       "credito eliminado",
				UsuarioID:    usuarioID,
				ReferenciaID: &it.ID,
			}); err != nil {
				return err
			}
			restaurados++
		}
		return tx.Creditos().Delete(ctx, creditoID)
	})
	if err != nil {
		return err
	}
	log.Info().Str("credito_id", creditoID.String()).Int("items_restaurados", restaurados).Msg("credito: cuenta eliminada")
	return nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *creditoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.CreditoResponse, error) {
	c, err := s.store.Creditos().FindByID(ctx, id)
	if err != nil {
		return nil, creditoErr(err)
	}
	return creditoToResponse(c), nil
}

func (s *creditoService) Listar(ctx context.Context, filter dto.CreditoFilter) (*dto.CreditoListResponse, error) {
	f := repository.CreditoFilter{
		Tipo:    filter.Tipo,
		Estado:  filter.Estado,
		Cliente: NormalizarCliente(filter.Cliente),
		Page:    filter.Page,
		Limit:   filter.Limit,
	}
	creditos, total, err := s.store.Creditos().List(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.CreditoResponse, 0, len(creditos))
	for i := range creditos {
		data = append(data, *creditoToResponse(&creditos[i]))
	}
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = len(data)
	}
	return &dto.CreditoListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// RenombrarCliente fixes a customer name. An open account cannot be moved onto
// a name that already has an open account of the same class.
func (s *creditoService) RenombrarCliente(ctx context.Context, id uuid.UUID, req dto.RenombrarClienteRequest) (*dto.CreditoResponse, error) {
	nuevo := NormalizarCliente(req.Cliente)
	if nuevo == "" {
		return nil, solicitudInvalida("cliente requerido")
	}
	err := s.store.Tx(ctx, func(tx repository.Store) error {
		c, err := tx.Creditos().FindForUpdate(ctx, id)
		if err != nil {
			return creditoErr(err)
		}
		if c.Cliente == nuevo {
			return nil
		}
		if c.Estado == model.CreditoAbierto {
			if err := tx.Creditos().BloquearCliente(ctx, nuevo, c.Tipo); err != nil {
				return err
			}
			if _, err := tx.Creditos().FindAbierto(ctx, nuevo, c.Tipo); err == nil {
				return ErrCreditoEnConflicto
			} else if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}
		c.Cliente = nuevo
		if err := tx.Creditos().Update(ctx, c); err != nil {
			if errors.Is(err, repository.ErrDuplicado) {
				return ErrCreditoEnConflicto
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Obtener(ctx, id)
}

func (s *creditoService) fechaOHoy(raw string) (time.Time, error) {
	if raw == "" {
		return s.jornada.Hoy().Fecha, nil
	}
	f, err := jornada.ParseFecha(raw)
	if err != nil {
		return time.Time{}, solicitudInvalida("%s", err.Error())
	}
	return f, nil
}

func lineaTotal(precio decimal.Decimal, cantidad int) decimal.Decimal {
	return precio.Mul(decimal.NewFromInt(int64(cantidad))).Round(2)
}

func creditoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCreditoNoEncontrado
	}
	return err
}

func fechaPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := jornada.FormatFecha(*t)
	return &s
}

func creditoToResponse(c *model.Credito) *dto.CreditoResponse {
	r := &dto.CreditoResponse{
		ID:               c.ID.String(),
		Cliente:          c.Cliente,
		Tipo:             c.Tipo,
		Estado:           c.Estado,
		FechaApertura:    jornada.FormatFecha(c.FechaApertura),
		FechaVencimiento: fechaPtr(c.FechaVencimiento),
		FechaCierre:      fechaPtr(c.FechaCierre),
		FechaUltimoAbono: fechaPtr(c.FechaUltimoAbono),
		TotalConsumido:   c.TotalConsumido,
		TotalPagado:      c.TotalPagado,
		Saldo:            c.Saldo(),
	}
	for _, it := range c.Items {
		r.Items = append(r.Items, dto.CreditoItemResponse{
			ID:             it.ID.String(),
			ProductoID:     it.ProductoID.String(),
			NombreProducto: it.NombreProducto,
			PrecioUnitario: it.PrecioUnitario,
			Cantidad:       it.Cantidad,
			TotalLinea:     it.TotalLinea,
			Fecha:          jornada.FormatFecha(it.Fecha),
		})
	}
	for _, a := range c.Abonos {
		ab := dto.CreditoAbonoResponse{
			ID:        a.ID.String(),
			Monto:     a.Monto,
			MedioPago: a.MedioPago,
			Fecha:     jornada.FormatFecha(a.Fecha),
		}
		if a.VentaID != nil {
			id := a.VentaID.String()
			ab.VentaID = &id
		}
		r.Abonos = append(r.Abonos, ab)
	}
	return r
}
