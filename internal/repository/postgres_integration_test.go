//go:build integration

package repository_test

// Runs the store against a real PostgreSQL via testcontainers.
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/infra"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/jornada"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/model"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/repository"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupStore(t *testing.T) repository.Store {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("sanroque_test"),
		tcPostgres.WithUsername("sanroque"),
		tcPostgres.WithPassword("sanroque"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	// Re-running is a no-op.
	require.NoError(t, infra.RunMigrations(db))

	return repository.NewStore(db)
}

func newResolver(t *testing.T) *jornada.Resolver {
	t.Helper()
	loc, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)
	ahora := time.Date(2024, 3, 1, 10, 0, 0, 0, loc)
	r, err := jornada.NewResolver(loc, 6, jornada.WithClock(func() time.Time { return ahora }))
	require.NoError(t, err)
	return r
}

func TestPostgres_ConcurrentChargeOnLastUnit(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	resolver := newResolver(t)

	inventario := service.NewInventarioService(store)
	ventas := service.NewVentaService(store, inventario, resolver)
	creditos := service.NewCreditoService(store, inventario, ventas, resolver)

	prod, err := inventario.CrearProducto(ctx, dto.CrearProductoRequest{
		Nombre:       "Gaseosa 1.5L",
		PrecioCosto:  decimal.NewFromInt(3000),
		PrecioVenta:  decimal.NewFromInt(4500),
		StockInicial: 1,
	})
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		sinStock int
	)
	for _, cliente := range []string{"ANA", "LUIS"} {
		wg.Add(1)
		go func(cliente string) {
			defer wg.Done()
			_, err := creditos.Cargar(ctx, nil, dto.CargarCreditoRequest{
				Cliente: cliente, ProductoID: prod.ID, Cantidad: 1, Tipo: model.CreditoCorto,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, service.ErrStockInsuficiente):
				sinStock++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(cliente)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, sinStock)

	got, err := inventario.ObtenerProducto(ctx, uuid.MustParse(prod.ID))
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockActual)
}

func TestPostgres_ClosingIsUniquePerDay(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	resolver := newResolver(t)

	inventario := service.NewInventarioService(store)
	ventas := service.NewVentaService(store, inventario, resolver)
	cierres := service.NewCierreService(store, ventas, resolver, nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []error
	)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cierres.CerrarDia(ctx, uuid.New(), nil)
			mu.Lock()
			results = append(results, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	exitos := 0
	for _, err := range results {
		if err == nil {
			exitos++
			continue
		}
		assert.ErrorIs(t, err, service.ErrCajaYaCerrada)
	}
	assert.Equal(t, 1, exitos)

	dup := &model.CierreCaja{FechaComercial: resolver.Hoy().Fecha, UsuarioID: uuid.New(), CerradoAt: time.Now()}
	assert.ErrorIs(t, store.Cierres().Create(ctx, dup), repository.ErrDuplicado)
}

func TestPostgres_SingleOpenAccountPerPair(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	hoy := jornada.Fecha(2024, 3, 1)

	primero := &model.Credito{Cliente: "MARIA", Tipo: model.CreditoLargo, Estado: model.CreditoAbierto, FechaApertura: hoy}
	require.NoError(t, store.Creditos().Create(ctx, primero))

	segundo := &model.Credito{Cliente: "MARIA", Tipo: model.CreditoLargo, Estado: model.CreditoAbierto, FechaApertura: hoy}
	assert.ErrorIs(t, store.Creditos().Create(ctx, segundo), repository.ErrDuplicado)

	// A closed account for the same pair is fine.
	cerrado := &model.Credito{Cliente: "MARIA", Tipo: model.CreditoLargo, Estado: model.CreditoCerrado, FechaApertura: hoy}
	require.NoError(t, store.Creditos().Create(ctx, cerrado))

	// Stock can never go negative.
	p := &model.Producto{Nombre: "Sal", PrecioCosto: decimal.NewFromInt(1), PrecioVenta: decimal.NewFromInt(2), StockActual: 1, Activo: true}
	require.NoError(t, store.Productos().Create(ctx, p))
	_, err := store.Productos().Descontar(ctx, p.ID, 2)
	assert.ErrorIs(t, err, repository.ErrSinStock)
}
