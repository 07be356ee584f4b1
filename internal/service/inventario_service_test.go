package service

import (
	"testing"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/model"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrearProducto_PrecioPorDefectoYCodigoUnico(t *testing.T) {
	f := newFixture(t)
	codigo := "7702001"

	p, err := f.inventario.CrearProducto(f.ctx, dto.CrearProductoRequest{
		Nombre:       "Aceite",
		CodigoBarras: &codigo,
		PrecioCosto:  dec("10000"),
		StockInicial: 4,
	})
	require.NoError(t, err)
	requireDec(t, "13500", p.PrecioVenta)
	assert.Equal(t, 4, p.StockActual)

	_, err = f.inventario.CrearProducto(f.ctx, dto.CrearProductoRequest{Nombre: "Otro", CodigoBarras: &codigo, PrecioCosto: dec("1")})
	assert.ErrorIs(t, err, ErrProductoDuplicado)

	_, err = f.inventario.CrearProducto(f.ctx, dto.CrearProductoRequest{Nombre: "Malo", PrecioCosto: dec("-1")})
	assert.ErrorIs(t, err, ErrMontoInvalido)
}

func TestAjustarStock_RegistraMovimientoYNoQuedaNegativo(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Aceite", "10000", 5)
	actor := uuid.New()

	res, err := f.inventario.AjustarStock(f.ctx, p, &actor, dto.AjustarStockRequest{Delta: -2, Motivo: "rotura"})
	require.NoError(t, err)
	assert.Equal(t, 5, res.StockAnterior)
	assert.Equal(t, 3, res.StockNuevo)

	res, err = f.inventario.AjustarStock(f.ctx, p, &actor, dto.AjustarStockRequest{Delta: 7, Motivo: "conteo fisico"})
	require.NoError(t, err)
	assert.Equal(t, 10, res.StockNuevo)

	_, err = f.inventario.AjustarStock(f.ctx, p, &actor, dto.AjustarStockRequest{Delta: -11, Motivo: "error"})
	assert.ErrorIs(t, err, ErrStockInsuficiente)
	assert.Equal(t, 10, f.stock(t, p))

	_, err = f.inventario.AjustarStock(f.ctx, p, &actor, dto.AjustarStockRequest{Delta: 0, Motivo: "nada"})
	assert.ErrorIs(t, err, ErrMontoInvalido)

	movs, err := f.inventario.ListarMovimientos(f.ctx, repository.MovimientoStockFilter{ProductoID: &p, Tipo: model.MovimientoAjusteManual})
	require.NoError(t, err)
	// stock inicial + two adjustments, newest first
	require.EqualValues(t, 3, movs.Total)
	assert.Equal(t, "conteo fisico", movs.Data[0].Motivo)
	require.NotNil(t, movs.Data[0].UsuarioID)
	assert.Equal(t, actor.String(), *movs.Data[0].UsuarioID)
}

func TestReservarYLiberar(t *testing.T) {
	f := newFixture(t)
	p := f.producto(t, "Aceite", "10000", 5)

	nuevo, err := f.inventario.Reservar(f.ctx, p, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, nuevo)

	_, err = f.inventario.Reservar(f.ctx, p, 1)
	assert.ErrorIs(t, err, ErrStockInsuficiente)

	nuevo, err = f.inventario.Liberar(f.ctx, p, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, nuevo)

	_, err = f.inventario.Reservar(f.ctx, p, 0)
	assert.ErrorIs(t, err, ErrMontoInvalido)
	_, err = f.inventario.Reservar(f.ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrProductoNoEncontrado)
	_, err = f.inventario.Liberar(f.ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrProductoNoEncontrado)
}
