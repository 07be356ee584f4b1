package handler

import (
	"net/http"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/jornada"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/middleware"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/service"

	"github.com/gin-gonic/gin"
)

type GastosHandler struct {
	svc     service.GastoService
	jornada *jornada.Resolver
}

func NewGastosHandler(svc service.GastoService, resolver *jornada.Resolver) *GastosHandler {
	return &GastosHandler{svc: svc, jornada: resolver}
}

// RegistrarPago godoc
// @Summary      Registrar pago o egreso de caja
// @Tags         gastos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarPagoGastoRequest true "Pago"
// @Success      201  {object} dto.PagoGastoResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/gastos/pagos [post]
func (h *GastosHandler) RegistrarPago(c *gin.Context) {
	var req dto.RegistrarPagoGastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarPago(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarPagos godoc
// @Summary      Pagos de una fecha
// @Tags         gastos
// @Produce      json
// @Security     BearerAuth
// @Param        fecha query string false "YYYY-MM-DD"
// @Success      200 {object} dto.PagosGastoDiaResponse
// @Router       /v1/gastos/pagos [get]
func (h *GastosHandler) ListarPagos(c *gin.Context) {
	fecha, ok := fechaParam(c, c.Query("fecha"), h.jornada)
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorFecha(c.Request.Context(), fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
