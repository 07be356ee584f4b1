package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/jornada"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/model"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Scenarios ─────────────────────────────────────────────────────────────────

func TestCargar_AbreCuentaYDescuentaStock(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz 1kg", "5000", 10)

	c, err := f.cargar("ana", p, 3, model.CreditoLargo)
	require.NoError(t, err)

	assert.Equal(t, "ANA", c.Cliente)
	assert.Equal(t, model.CreditoLargo, c.Tipo)
	assert.Equal(t, model.CreditoAbierto, c.Estado)
	requireDec(t, "15000", c.TotalConsumido)
	requireDec(t, "0", c.TotalPagado)
	requireDec(t, "15000", c.Saldo)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Arroz 1kg", c.Items[0].NombreProducto)
	assert.Equal(t, "2024-03-01", c.Items[0].Fecha)
	assert.Equal(t, 7, f.stock(t, p))

	movs, err := f.inventario.ListarMovimientos(f.ctx, repository.MovimientoStockFilter{ProductoID: &p, Tipo: model.MovimientoCredito})
	require.NoError(t, err)
	require.Len(t, movs.Data, 1)
	assert.Equal(t, -3, movs.Data[0].Cantidad)
	assert.Equal(t, 10, movs.Data[0].StockAnterior)
	assert.Equal(t, 7, movs.Data[0].StockNuevo)
}

func TestRegistrarAbono_SaldaYEmiteVenta(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz 1kg", "5000", 10)
	c, err := f.cargar("ANA", p, 3, model.CreditoLargo)
	require.NoError(t, err)

	res, err := f.creditos.RegistrarAbono(f.ctx, uuid.MustParse(c.ID), nil, dto.AbonoRequest{Monto: dec("15000"), MedioPago: "efectivo"})
	require.NoError(t, err)

	assert.True(t, res.Cerrado)
	assert.Equal(t, model.CreditoCerrado, res.Credito.Estado)
	requireDec(t, "15000", res.Credito.TotalPagado)
	requireDec(t, "0", res.Credito.Saldo)
	require.NotNil(t, res.Credito.FechaCierre)
	require.Len(t, res.Credito.Abonos, 1)
	assert.Equal(t, res.VentaID, *res.Credito.Abonos[0].VentaID)

	venta, err := f.ventas.ObtenerVenta(f.ctx, uuid.MustParse(res.VentaID))
	require.NoError(t, err)
	assert.True(t, venta.EsAbonoCredito)
	assert.Equal(t, "ABONO CRÉDITO - CLIENTE: ANA", venta.Descripcion)
	requireDec(t, "15000", venta.Total)
	require.Len(t, venta.Pagos, 1)
	assert.Equal(t, "efectivo", venta.Pagos[0].Medio)
	requireDec(t, "15000", venta.Pagos[0].Monto)
	require.NotNil(t, venta.CreditoID)
	assert.Equal(t, c.ID, *venta.CreditoID)
}

func TestRegistrarAbono_AtrasadoCierraConFechaDeHoy(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz 1kg", "5000", 10)
	c, err := f.cargar("ANA", p, 2, model.CreditoLargo)
	require.NoError(t, err)

	res, err := f.creditos.RegistrarAbono(f.ctx, uuid.MustParse(c.ID), nil, dto.AbonoRequest{Monto: dec("10000"), MedioPago: "efectivo", Fecha: "2024-02-20"})
	require.NoError(t, err)

	require.True(t, res.Cerrado)
	require.NotNil(t, res.Credito.FechaCierre)
	assert.Equal(t, "2024-03-01", *res.Credito.FechaCierre)
	require.NotNil(t, res.Credito.FechaUltimoAbono)
	assert.Equal(t, "2024-02-20", *res.Credito.FechaUltimoAbono)
}

func TestCargar_StockInsuficienteNoCambiaNada(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz 1kg", "5000", 10)
	c, err := f.cargar("ANA", p, 3, model.CreditoLargo)
	require.NoError(t, err)

	_, err = f.cargar("ANA", p, 8, model.CreditoLargo)
	require.ErrorIs(t, err, ErrStockInsuficiente)
	var stockErr *StockInsuficienteError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 7, stockErr.Disponible)
	assert.Equal(t, 8, stockErr.Solicitado)

	despues, err := f.creditos.Obtener(f.ctx, uuid.MustParse(c.ID))
	require.NoError(t, err)
	requireDec(t, "15000", despues.TotalConsumido)
	assert.Len(t, despues.Items, 1)
	assert.Equal(t, 7, f.stock(t, p))
}

func TestCargar_ConcurrenteSoloUnoReserva(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz 1kg", "5000", 7)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, cliente := range []string{"ANA", "LUIS"} {
		wg.Add(1)
		go func(i int, cliente string) {
			defer wg.Done()
			_, errs[i] = f.cargar(cliente, p, 5, model.CreditoCorto)
		}(i, cliente)
	}
	wg.Wait()

	var ok, rechazos int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrStockInsuficiente):
			rechazos++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rechazos)
	assert.Equal(t, 2, f.stock(t, p))
}

// ── Cargar ────────────────────────────────────────────────────────────────────

func TestCargar_ReusaCuentaAbiertaPorClienteYTipo(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Leche", "3000", 20)

	a, err := f.cargar("  ana   maria ", p, 1, model.CreditoCorto)
	require.NoError(t, err)
	b, err := f.cargar("Ana Maria", p, 2, model.CreditoCorto)
	require.NoError(t, err)
	largo, err := f.cargar("ANA MARIA", p, 1, model.CreditoLargo)
	require.NoError(t, err)

	assert.Equal(t, "ANA MARIA", a.Cliente)
	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, largo.ID)
	requireDec(t, "9000", b.TotalConsumido)
	assert.Len(t, b.Items, 2)
}

func TestCargar_Validaciones(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Leche", "3000", 20)

	_, err := f.cargar("ANA", p, 0, model.CreditoCorto)
	assert.ErrorIs(t, err, ErrMontoInvalido)

	_, err = f.cargar("   ", p, 1, model.CreditoCorto)
	assert.ErrorIs(t, err, ErrSolicitudInvalida)

	_, err = f.cargar("ANA", p, 1, "mediano")
	assert.ErrorIs(t, err, ErrSolicitudInvalida)

	_, err = f.cargar("ANA", uuid.New(), 1, model.CreditoCorto)
	assert.ErrorIs(t, err, ErrProductoNoEncontrado)

	gratis := f.producto(t, "Muestra", "0", 5)
	_, err = f.cargar("ANA", gratis, 1, model.CreditoCorto)
	assert.ErrorIs(t, err, ErrMontoInvalido)
	assert.Equal(t, 5, f.stock(t, gratis))
	assert.Equal(t, 20, f.stock(t, p))
}

func TestCargar_FechaYVencimiento(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Leche", "3000", 20)

	c, err := f.creditos.Cargar(f.ctx, nil, dto.CargarCreditoRequest{
		Cliente:          "ANA",
		ProductoID:       p.String(),
		Cantidad:         1,
		Tipo:             model.CreditoLargo,
		Fecha:            "2024-02-20",
		FechaVencimiento: "2024-04-30",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-02-20", c.FechaApertura)
	require.NotNil(t, c.FechaVencimiento)
	assert.Equal(t, "2024-04-30", *c.FechaVencimiento)
}

// ── EditarItem / EliminarItem ─────────────────────────────────────────────────

func TestEditarItem_AjustaStockYConsumido(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz", "5000", 10)
	q := f.producto(t, "Frijol", "7000", 10)
	c, err := f.cargar("ANA", p, 3, model.CreditoCorto)
	require.NoError(t, err)
	itemID := uuid.MustParse(c.Items[0].ID)

	c, err = f.creditos.EditarItem(f.ctx, itemID, nil, dto.EditarItemRequest{ProductoID: p.String(), Cantidad: 5})
	require.NoError(t, err)
	requireDec(t, "25000", c.TotalConsumido)
	assert.Equal(t, 5, f.stock(t, p))

	c, err = f.creditos.EditarItem(f.ctx, itemID, nil, dto.EditarItemRequest{ProductoID: q.String(), Cantidad: 2})
	require.NoError(t, err)
	requireDec(t, "14000", c.TotalConsumido)
	assert.Equal(t, "Frijol", c.Items[0].NombreProducto)
	assert.Equal(t, 10, f.stock(t, p))
	assert.Equal(t, 8, f.stock(t, q))
}

func TestEditarItem_FalloDejaEstadoIntacto(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz", "5000", 10)
	c, err := f.cargar("ANA", p, 3, model.CreditoCorto)
	require.NoError(t, err)
	itemID := uuid.MustParse(c.Items[0].ID)

	// 7 left + 3 released = 10, 11 does not fit
	_, err = f.creditos.EditarItem(f.ctx, itemID, nil, dto.EditarItemRequest{ProductoID: p.String(), Cantidad: 11})
	require.ErrorIs(t, err, ErrStockInsuficiente)

	despues, err := f.creditos.Obtener(f.ctx, uuid.MustParse(c.ID))
	require.NoError(t, err)
	requireDec(t, "15000", despues.TotalConsumido)
	assert.Equal(t, 3, despues.Items[0].Cantidad)
	assert.Equal(t, 7, f.stock(t, p))

	// exactly the released quantity fits
	_, err = f.creditos.EditarItem(f.ctx, itemID, nil, dto.EditarItemRequest{ProductoID: p.String(), Cantidad: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, f.stock(t, p))

	_, err = f.creditos.EditarItem(f.ctx, uuid.New(), nil, dto.EditarItemRequest{ProductoID: p.String(), Cantidad: 1})
	assert.ErrorIs(t, err, ErrItemNoEncontrado)
}

func TestEliminarItem_RestauraStockYCierraSinSaldo(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz", "5000", 10)
	c, err := f.cargar("ANA", p, 3, model.CreditoCorto)
	require.NoError(t, err)
	c, err = f.cargar("ANA", p, 1, model.CreditoCorto)
	require.NoError(t, err)
	require.Len(t, c.Items, 2)

	c, err = f.creditos.EliminarItem(f.ctx, uuid.MustParse(c.Items[0].ID), nil)
	require.NoError(t, err)
	requireDec(t, "5000", c.TotalConsumido)
	assert.Equal(t, model.CreditoAbierto, c.Estado)
	assert.Equal(t, 9, f.stock(t, p))

	c, err = f.creditos.EliminarItem(f.ctx, uuid.MustParse(c.Items[0].ID), nil)
	require.NoError(t, err)
	requireDec(t, "0", c.TotalConsumido)
	assert.Equal(t, model.CreditoCerrado, c.Estado)
	assert.Equal(t, 10, f.stock(t, p))
}

func TestEditarItem_ReabreCuentaSaldada(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz", "5000", 10)
	c, err := f.cargar("ANA", p, 3, model.CreditoCorto)
	require.NoError(t, err)
	id := uuid.MustParse(c.ID)
	_, err = f.creditos.RegistrarAbono(f.ctx, id, nil, dto.AbonoRequest{Monto: dec("15000")})
	require.NoError(t, err)

	c, err = f.creditos.EditarItem(f.ctx, uuid.MustParse(c.Items[0].ID), nil, dto.EditarItemRequest{ProductoID: p.String(), Cantidad: 4})
	require.NoError(t, err)
	assert.Equal(t, model.CreditoAbierto, c.Estado)
	assert.Nil(t, c.FechaCierre)
	requireDec(t, "5000", c.Saldo)
}

func TestEditarItem_ReaperturaEnConflicto(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz", "5000", 10)
	viejo, err := f.cargar("ANA", p, 1, model.CreditoCorto)
	require.NoError(t, err)
	_, err = f.creditos.RegistrarAbono(f.ctx, uuid.MustParse(viejo.ID), nil, dto.AbonoRequest{Monto: dec("5000")})
	require.NoError(t, err)

	nuevo, err := f.cargar("ANA", p, 1, model.CreditoCorto)
	require.NoError(t, err)
	require.NotEqual(t, viejo.ID, nuevo.ID)

	_, err = f.creditos.EditarItem(f.ctx, uuid.MustParse(viejo.Items[0].ID), nil, dto.EditarItemRequest{ProductoID: p.String(), Cantidad: 2})
	require.ErrorIs(t, err, ErrCreditoEnConflicto)

	assert.Equal(t, 8, f.stock(t, p))
	despues, err := f.creditos.Obtener(f.ctx, uuid.MustParse(viejo.ID))
	require.NoError(t, err)
	assert.Equal(t, model.CreditoCerrado, despues.Estado)
	assert.Equal(t, 1, despues.Items[0].Cantidad)
}

// ── RegistrarAbono ────────────────────────────────────────────────────────────

func TestRegistrarAbono_ParcialYSobrepago(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz", "5000", 10)
	c, err := f.cargar("ANA", p, 3, model.CreditoCorto)
	require.NoError(t, err)
	id := uuid.MustParse(c.ID)

	res, err := f.creditos.RegistrarAbono(f.ctx, id, nil, dto.AbonoRequest{Monto: dec("4000"), MedioPago: " Nequi "})
	require.NoError(t, err)
	assert.False(t, res.Cerrado)
	assert.Equal(t, model.CreditoAbierto, res.Credito.Estado)
	requireDec(t, "11000", res.Credito.Saldo)
	assert.Equal(t, "nequi", res.Credito.Abonos[0].MedioPago)
	require.NotNil(t, res.Credito.FechaUltimoAbono)

	res, err = f.creditos.RegistrarAbono(f.ctx, id, nil, dto.AbonoRequest{Monto: dec("20000")})
	require.NoError(t, err)
	assert.True(t, res.Cerrado)
	requireDec(t, "-9000", res.Credito.Saldo)
	assert.Equal(t, "efectivo", res.Credito.Abonos[1].MedioPago)
}

func TestRegistrarAbono_Rechazos(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz", "5000", 10)
	c, err := f.cargar("ANA", p, 1, model.CreditoCorto)
	require.NoError(t, err)
	id := uuid.MustParse(c.ID)

	for _, monto := range []string{"0", "-100", "0.001"} {
		_, err = f.creditos.RegistrarAbono(f.ctx, id, nil, dto.AbonoRequest{Monto: dec(monto)})
		assert.ErrorIs(t, err, ErrMontoInvalido, monto)
	}
	_, err = f.creditos.RegistrarAbono(f.ctx, uuid.New(), nil, dto.AbonoRequest{Monto: dec("100")})
	assert.ErrorIs(t, err, ErrCreditoNoEncontrado)

	ventas, err := f.ventas.ListarVentas(f.ctx, jornada.Fecha(2024, 3, 1))
	require.NoError(t, err)
	assert.Empty(t, ventas.Data)
}

// ── Eliminar ──────────────────────────────────────────────────────────────────

func TestEliminar_RestauraStockYConservaVentas(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz", "5000", 10)
	q := f.producto(t, "Frijol", "7000", 10)
	_, err := f.cargar("ANA", p, 3, model.CreditoCorto)
	require.NoError(t, err)
	c, err := f.cargar("ANA", q, 2, model.CreditoCorto)
	require.NoError(t, err)
	id := uuid.MustParse(c.ID)
	_, err = f.creditos.RegistrarAbono(f.ctx, id, nil, dto.AbonoRequest{Monto: dec("1000")})
	require.NoError(t, err)

	require.NoError(t, f.creditos.Eliminar(f.ctx, id, nil))

	assert.Equal(t, 10, f.stock(t, p))
	assert.Equal(t, 10, f.stock(t, q))
	_, err = f.creditos.Obtener(f.ctx, id)
	assert.ErrorIs(t, err, ErrCreditoNoEncontrado)

	ventas, err := f.ventas.ListarVentas(f.ctx, jornada.Fecha(2024, 3, 1))
	require.NoError(t, err)
	require.Len(t, ventas.Data, 1)
	assert.True(t, ventas.Data[0].EsAbonoCredito)

	movs, err := f.inventario.ListarMovimientos(f.ctx, repository.MovimientoStockFilter{Tipo: model.MovimientoRestoreCredito})
	require.NoError(t, err)
	assert.Len(t, movs.Data, 2)

	assert.ErrorIs(t, f.creditos.Eliminar(f.ctx, id, nil), ErrCreditoNoEncontrado)
}

// ── Invariantes ───────────────────────────────────────────────────────────────

func TestInvariantes_SecuenciaDeOperaciones(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz", "5000", 30)
	q := f.producto(t, "Frijol", "2500", 30)

	check := func(id uuid.UUID) {
		t.Helper()
		c, err := f.creditos.Obtener(f.ctx, id)
		require.NoError(t, err)

		consumido, pagado := dec("0"), dec("0")
		reservado := map[string]int{}
		for _, it := range c.Items {
			consumido = consumido.Add(it.TotalLinea)
			reservado[it.ProductoID] += it.Cantidad
		}
		for _, a := range c.Abonos {
			pagado = pagado.Add(a.Monto)
		}
		requireDec(t, consumido.String(), c.TotalConsumido)
		requireDec(t, pagado.String(), c.TotalPagado)
		assert.Equal(t, c.Saldo.IsPositive(), c.Estado == model.CreditoAbierto)
		assert.Equal(t, 30, f.stock(t, p)+reservado[p.String()])
		assert.Equal(t, 30, f.stock(t, q)+reservado[q.String()])
	}

	c, err := f.cargar("ANA", p, 4, model.CreditoCorto)
	require.NoError(t, err)
	id := uuid.MustParse(c.ID)
	check(id)

	c, err = f.cargar("ANA", q, 6, model.CreditoCorto)
	require.NoError(t, err)
	check(id)

	_, err = f.creditos.RegistrarAbono(f.ctx, id, nil, dto.AbonoRequest{Monto: dec("12500")})
	require.NoError(t, err)
	check(id)

	c, err = f.creditos.EditarItem(f.ctx, uuid.MustParse(c.Items[0].ID), nil, dto.EditarItemRequest{ProductoID: q.String(), Cantidad: 3})
	require.NoError(t, err)
	check(id)

	_, err = f.cargar("ANA", p, 40, model.CreditoCorto)
	require.ErrorIs(t, err, ErrStockInsuficiente)
	check(id)

	c, err = f.creditos.EliminarItem(f.ctx, uuid.MustParse(c.Items[1].ID), nil)
	require.NoError(t, err)
	assert.Equal(t, model.CreditoCerrado, c.Estado)
	check(id)

	c, err = f.creditos.EditarItem(f.ctx, uuid.MustParse(c.Items[0].ID), nil, dto.EditarItemRequest{ProductoID: q.String(), Cantidad: 10})
	require.NoError(t, err)
	assert.Equal(t, model.CreditoAbierto, c.Estado)
	check(id)

	_, err = f.creditos.RegistrarAbono(f.ctx, id, nil, dto.AbonoRequest{Monto: c.Saldo})
	require.NoError(t, err)
	check(id)
}

func TestCargarYEliminar_VuelveAlEstadoInicial(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz", "5000", 10)

	c, err := f.cargar("ANA", p, 4, model.CreditoLargo)
	require.NoError(t, err)
	require.NoError(t, f.creditos.Eliminar(f.ctx, uuid.MustParse(c.ID), nil))

	assert.Equal(t, 10, f.stock(t, p))
	lista, err := f.creditos.Listar(f.ctx, dto.CreditoFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Zero(t, lista.Total)
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func TestListarYRenombrar(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Arroz", "5000", 10)
	ana, err := f.cargar("ANA", p, 1, model.CreditoCorto)
	require.NoError(t, err)
	_, err = f.cargar("LUIS", p, 1, model.CreditoCorto)
	require.NoError(t, err)

	lista, err := f.creditos.Listar(f.ctx, dto.CreditoFilter{Cliente: "an", Page: 1, Limit: 50})
	require.NoError(t, err)
	require.EqualValues(t, 1, lista.Total)
	assert.Equal(t, "ANA", lista.Data[0].Cliente)

	_, err = f.creditos.RenombrarCliente(f.ctx, uuid.MustParse(ana.ID), dto.RenombrarClienteRequest{Cliente: "luis"})
	assert.ErrorIs(t, err, ErrCreditoEnConflicto)

	renombrado, err := f.creditos.RenombrarCliente(f.ctx, uuid.MustParse(ana.ID), dto.RenombrarClienteRequest{Cliente: "ana maria"})
	require.NoError(t, err)
	assert.Equal(t, "ANA MARIA", renombrado.Cliente)
}
