package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/jornada"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/repository/memstore"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ── Test fixture ──────────────────────────────────────────────────────────────

type fakeNotificador struct {
	mu  sync.Mutex
	ids []uuid.UUID
	err error
}

func (n *fakeNotificador) EncolarReporteCierre(_ context.Context, id uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, id)
	return n.err
}

type fixture struct {
	ctx   context.Context
	store *memstore.Store
	loc   *time.Location
	jor   *jornada.Resolver

	mu  sync.Mutex
	now time.Time

	inventario InventarioService
	ventas     VentaService
	creditos   CreditoService
	cierres    CierreService
	gastos     GastoService
	notif      *fakeNotificador
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)

	f := &fixture{
		ctx:   context.Background(),
		store: memstore.New(),
		loc:   loc,
		now:   time.Date(2024, 3, 1, 10, 0, 0, 0, loc),
		notif: &fakeNotificador{},
	}
	resolver, err := jornada.NewResolver(loc, 6, jornada.WithClock(f.clock))
	require.NoError(t, err)
	f.jor = resolver

	f.inventario = NewInventarioService(f.store)
	f.ventas = NewVentaService(f.store, f.inventario, resolver)
	f.creditos = NewCreditoService(f.store, f.inventario, f.ventas, resolver)
	f.cierres = NewCierreService(f.store, f.ventas, resolver, f.notif)
	f.gastos = NewGastoService(f.store, resolver)
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// at moves the clock to a local wall time in the business zone.
func (f *fixture) at(y int, m time.Month, d, h, min, s int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = time.Date(y, m, d, h, min, s, 0, f.loc)
}

func (f *fixture) dia(fecha time.Time) jornada.Dia { return f.jor.Dia(fecha) }

func (f *fixture) producto(t *testing.T, nombre, precio string, stock int) uuid.UUID {
	t.Helper()
	p, err := f.inventario.CrearProducto(f.ctx, dto.CrearProductoRequest{
		Nombre:       nombre,
		PrecioCosto:  dec(precio),
		PrecioVenta:  dec(precio),
		StockInicial: stock,
	})
	require.NoError(t, err)
	return uuid.MustParse(p.ID)
}

func (f *fixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.inventario.ObtenerProducto(f.ctx, id)
	require.NoError(t, err)
	return p.StockActual
}

func (f *fixture) cargar(cliente string, productoID uuid.UUID, cantidad int, tipo string) (*dto.CreditoResponse, error) {
	return f.creditos.Cargar(f.ctx, nil, dto.CargarCreditoRequest{
		Cliente:    cliente,
		ProductoID: productoID.String(),
		Cantidad:   cantidad,
		Tipo:       tipo,
	})
}

func (f *fixture) vender(t *testing.T, productoID uuid.UUID, cantidad int, pagos ...dto.PagoRequest) *dto.VentaResponse {
	t.Helper()
	v, err := f.ventas.RegistrarVenta(f.ctx, nil, dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: productoID.String(), Cantidad: cantidad}},
		Pagos: pagos,
	})
	require.NoError(t, err)
	return v
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pago(medio, monto string) dto.PagoRequest {
	return dto.PagoRequest{Medio: medio, Monto: dec(monto)}
}

// requireDec compares decimals by value, ignoring exponent differences.
func requireDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s got %s", want, got.String())
}
