package service

import (
	"testing"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/jornada"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/model"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrarVenta_DerivaTotalYReservaStock(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Gaseosa", "2500", 10)
	q := f.producto(t, "Pan", "1000", 10)

	v, err := f.ventas.RegistrarVenta(f.ctx, nil, dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{
			{ProductoID: p.String(), Cantidad: 2},
			{ProductoID: q.String(), Cantidad: 3},
		},
		Pagos: []dto.PagoRequest{pago("Efectivo", "5000"), pago("tarjeta", "3000")},
	})
	require.NoError(t, err)

	requireDec(t, "8000", v.Total)
	assert.Equal(t, model.VentaCerrada, v.Estado)
	assert.Equal(t, "2024-03-01", v.FechaComercial)
	require.Len(t, v.Items, 2)
	assert.Equal(t, "Gaseosa", v.Items[0].Descripcion)
	require.Len(t, v.Pagos, 2)
	assert.Equal(t, "efectivo", v.Pagos[0].Medio)
	assert.Equal(t, 8, f.stock(t, p))
	assert.Equal(t, 7, f.stock(t, q))
}

func TestRegistrarVenta_DesgloseInconsistente(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Gaseosa", "2500", 10)

	_, err := f.ventas.RegistrarVenta(f.ctx, nil, dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: p.String(), Cantidad: 2}},
		Pagos: []dto.PagoRequest{pago("efectivo", "4999.99")},
	})
	require.ErrorIs(t, err, ErrDesgloseInconsistente)
	assert.Equal(t, 10, f.stock(t, p))

	_, err = f.ventas.RegistrarVenta(f.ctx, nil, dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: p.String(), Cantidad: 2}},
		Pagos: []dto.PagoRequest{pago("efectivo", "6000"), pago("nequi", "-1000")},
	})
	require.ErrorIs(t, err, ErrMontoInvalido)
	assert.Equal(t, 10, f.stock(t, p))
}

func TestRegistrarVenta_SinStock(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Gaseosa", "2500", 1)
	q := f.producto(t, "Pan", "1000", 10)

	_, err := f.ventas.RegistrarVenta(f.ctx, nil, dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{
			{ProductoID: q.String(), Cantidad: 1},
			{ProductoID: p.String(), Cantidad: 2},
		},
		Pagos: []dto.PagoRequest{pago("efectivo", "6000")},
	})
	require.ErrorIs(t, err, ErrStockInsuficiente)
	assert.Equal(t, 10, f.stock(t, q))
	assert.Equal(t, 1, f.stock(t, p))
}

func TestRegistrarVentaTx_RedondeoYMediosRepetidos(t *testing.T) {
	f := newFixture(t)
	v := &model.Venta{
		Total: dec("10000.004"),
		Items: []model.VentaItem{{Descripcion: "Servicio", Cantidad: 1, PrecioUnitario: dec("10000"), Subtotal: dec("10000")}},
		Pagos: []model.VentaPago{
			{Medio: "Tarjeta", Monto: dec("4000")},
			{Medio: "tarjeta ", Monto: dec("1000")},
			{Medio: "", Monto: dec("5000")},
		},
	}
	err := f.store.Tx(f.ctx, func(tx repository.Store) error { return f.ventas.RegistrarVentaTx(f.ctx, tx, v) })
	require.NoError(t, err)

	requireDec(t, "10000", v.Total)
	require.Len(t, v.Pagos, 2)
	assert.Equal(t, "tarjeta", v.Pagos[0].Medio)
	requireDec(t, "5000", v.Pagos[0].Monto)
	assert.Equal(t, model.MedioEfectivo, v.Pagos[1].Medio)
}

func TestTotales_VentaSinDesgloseCuentaComoEfectivo(t *testing.T) {
	f := newFixture(t)
	sinDesglose := &model.Venta{
		Total: dec("7000"),
		Items: []model.VentaItem{{Descripcion: "Varios", Cantidad: 1, PrecioUnitario: dec("7000"), Subtotal: dec("7000")}},
	}
	err := f.store.Tx(f.ctx, func(tx repository.Store) error { return f.ventas.RegistrarVentaTx(f.ctx, tx, sinDesglose) })
	require.NoError(t, err)

	p := f.producto(t, "Pan", "1000", 10)
	f.vender(t, p, 3, pago("transferencia", "3000"))

	dia := f.dia(jornada.Fecha(2024, 3, 1))
	tot, err := f.ventas.Totales(f.ctx, dia.Inicio, dia.Fin, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, tot.CantidadVentas)
	requireDec(t, "10000", tot.Bruto)
	requireDec(t, "7000", tot.Efectivo)
	requireDec(t, "3000", tot.Electronico)
	requireDec(t, "7000", tot.PorMedio["efectivo"])
	requireDec(t, "3000", tot.PorMedio["transferencia"])
}

func TestAnularVenta_RestauraStockYSaleDeTotales(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Pan", "1000", 10)
	v := f.vender(t, p, 4, pago("efectivo", "4000"))
	id := uuid.MustParse(v.ID)

	require.NoError(t, f.ventas.AnularVenta(f.ctx, id, nil))
	assert.Equal(t, 10, f.stock(t, p))

	anulada, err := f.ventas.ObtenerVenta(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.VentaAnulada, anulada.Estado)

	lista, err := f.ventas.ListarVentas(f.ctx, jornada.Fecha(2024, 3, 1))
	require.NoError(t, err)
	assert.Len(t, lista.Data, 1)

	dia := f.dia(jornada.Fecha(2024, 3, 1))
	tot, err := f.ventas.Totales(f.ctx, dia.Inicio, dia.Fin, nil)
	require.NoError(t, err)
	assert.Zero(t, tot.CantidadVentas)

	assert.ErrorIs(t, f.ventas.AnularVenta(f.ctx, id, nil), ErrVentaNoAnulable)
	assert.ErrorIs(t, f.ventas.AnularVenta(f.ctx, uuid.New(), nil), ErrVentaNoEncontrada)
}

func TestAnularVenta_RechazaAbonosYJornadasCerradas(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Pan", "1000", 10)
	c, err := f.cargar("ANA", p, 2, model.CreditoCorto)
	require.NoError(t, err)
	abono, err := f.creditos.RegistrarAbono(f.ctx, uuid.MustParse(c.ID), nil, dto.AbonoRequest{Monto: dec("500")})
	require.NoError(t, err)
	assert.ErrorIs(t, f.ventas.AnularVenta(f.ctx, uuid.MustParse(abono.VentaID), nil), ErrVentaNoAnulable)

	v := f.vender(t, p, 1, pago("efectivo", "1000"))
	f.at(2024, 3, 2, 7, 0, 0)
	fecha := jornada.Fecha(2024, 3, 1)
	_, err = f.cierres.CerrarDia(f.ctx, uuid.New(), &fecha)
	require.NoError(t, err)
	assert.ErrorIs(t, f.ventas.AnularVenta(f.ctx, uuid.MustParse(v.ID), nil), ErrVentaNoAnulable)
	assert.Equal(t, 7, f.stock(t, p))
}

func TestListarVentas_MadrugadaPerteneceAlDiaAnterior(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Pan", "1000", 10)

	f.at(2024, 3, 2, 2, 30, 0)
	v := f.vender(t, p, 1, pago("efectivo", "1000"))
	assert.Equal(t, "2024-03-01", v.FechaComercial)

	f.at(2024, 3, 2, 6, 0, 0)
	f.vender(t, p, 2, pago("efectivo", "2000"))

	ayer, err := f.ventas.ListarVentas(f.ctx, jornada.Fecha(2024, 3, 1))
	require.NoError(t, err)
	require.Len(t, ayer.Data, 1)
	assert.Equal(t, v.ID, ayer.Data[0].ID)

	serie, err := f.ventas.SerieDiaria(f.ctx, []time.Time{jornada.Fecha(2024, 3, 1), jornada.Fecha(2024, 3, 2)})
	require.NoError(t, err)
	require.Len(t, serie, 2)
	assert.Equal(t, "2024-03-01", serie[0].Fecha)
	requireDec(t, "1000", serie[0].Total)
	requireDec(t, "2000", serie[1].Total)
}
