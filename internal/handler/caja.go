package handler

import (
	"net/http"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/apierror"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/jornada"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/middleware"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct {
	svc     service.CierreService
	jornada *jornada.Resolver
}

func NewCajaHandler(svc service.CierreService, resolver *jornada.Resolver) *CajaHandler {
	return &CajaHandler{svc: svc, jornada: resolver}
}

// CerrarDia godoc
// @Summary      Cierre de caja
// @Description  Congela los totales de la jornada. Un segundo cierre de la misma fecha devuelve 409 con el registro existente.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CerrarCajaRequest false "Fecha opcional, por defecto la jornada actual"
// @Success      201  {object} dto.CierreResponse
// @Failure      409  {object} handler.CajaYaCerradaBody
// @Router       /v1/caja/cierres [post]
func (h *CajaHandler) CerrarDia(c *gin.Context) {
	usuarioID := middleware.ActorID(c)
	if usuarioID == nil {
		c.JSON(http.StatusUnauthorized, apierror.WithCode("token_invalido", "Token sin usuario valido"))
		return
	}

	var req dto.CerrarCajaRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	var fecha *time.Time
	if req.Fecha != "" {
		f, ok := fechaParam(c, req.Fecha, h.jornada)
		if !ok {
			return
		}
		fecha = &f
	}

	resp, err := h.svc.CerrarDia(c.Request.Context(), *usuarioID, fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Historial godoc
// @Summary      Historial de cierres
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        page  query int false "Pagina"
// @Param        limit query int false "Tamano de pagina"
// @Success      200 {object} dto.CierreListResponse
// @Router       /v1/caja/cierres [get]
func (h *CajaHandler) Historial(c *gin.Context) {
	resp, err := h.svc.Historial(c.Request.Context(), intQuery(c, "page", 1), intQuery(c, "limit", 30))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorFecha godoc
// @Summary      Cierre de una fecha
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        fecha path     string true "YYYY-MM-DD"
// @Success      200   {object} dto.CierreResponse
// @Failure      404   {object} apierror.APIError
// @Router       /v1/caja/cierres/{fecha} [get]
func (h *CajaHandler) ObtenerPorFecha(c *gin.Context) {
	fecha, ok := fechaParam(c, c.Param("fecha"), h.jornada)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorFecha(c.Request.Context(), fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reporte godoc
// @Summary      Reporte diario
// @Description  Totales vivos de la jornada (o congelados si ya cerro), egresos, saldo neto y serie de los ultimos 7 dias.
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        fecha query string false "YYYY-MM-DD"
// @Success      200 {object} dto.ReporteDiaResponse
// @Router       /v1/caja/reporte [get]
func (h *CajaHandler) Reporte(c *gin.Context) {
	fecha, ok := fechaParam(c, c.Query("fecha"), h.jornada)
	if !ok {
		return
	}
	resp, err := h.svc.Reporte(c.Request.Context(), fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReporteRango godoc
// @Summary      Reporte por rango de fechas
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        desde query string true "YYYY-MM-DD"
// @Param        hasta query string true "YYYY-MM-DD"
// @Success      200 {object} dto.ReporteRangoResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/caja/reporte/rango [get]
func (h *CajaHandler) ReporteRango(c *gin.Context) {
	if c.Query("desde") == "" || c.Query("hasta") == "" {
		c.JSON(http.StatusBadRequest, apierror.WithCode("fecha_invalida", "desde y hasta son requeridos"))
		return
	}
	desde, ok := fechaParam(c, c.Query("desde"), h.jornada)
	if !ok {
		return
	}
	hasta, ok := fechaParam(c, c.Query("hasta"), h.jornada)
	if !ok {
		return
	}
	resp, err := h.svc.ReporteRango(c.Request.Context(), desde, hasta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
