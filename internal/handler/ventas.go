package handler

import (
	"net/http"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/jornada"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/middleware"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct {
	svc     service.VentaService
	jornada *jornada.Resolver
}

func NewVentasHandler(svc service.VentaService, resolver *jornada.Resolver) *VentasHandler {
	return &VentasHandler{svc: svc, jornada: resolver}
}

// RegistrarVenta godoc
// @Summary      Registrar venta
// @Description  Descuenta stock de cada linea y registra la venta con su desglose por medio de pago.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarVentaRequest true "Venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      409  {object} handler.StockInsuficienteBody
// @Failure      422  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) RegistrarVenta(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarVenta(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarVentas godoc
// @Summary      Ventas de una jornada
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        fecha query string false "YYYY-MM-DD, por defecto la jornada actual"
// @Success      200 {object} dto.VentaListResponse
// @Router       /v1/ventas [get]
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	fecha, ok := fechaParam(c, c.Query("fecha"), h.jornada)
	if !ok {
		return
	}
	resp, err := h.svc.ListarVentas(c.Request.Context(), fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerVenta godoc
// @Summary      Detalle de venta
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID de la venta"
// @Success      200 {object} dto.VentaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ventas/{id} [get]
func (h *VentasHandler) ObtenerVenta(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerVenta(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AnularVenta godoc
// @Summary      Anular venta
// @Description  Devuelve el stock de las lineas. No aplica a ventas de abono ni a jornadas ya cerradas.
// @Tags         ventas
// @Security     BearerAuth
// @Param        id path string true "UUID de la venta"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/ventas/{id} [delete]
func (h *VentasHandler) AnularVenta(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.AnularVenta(c.Request.Context(), id, middleware.ActorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
