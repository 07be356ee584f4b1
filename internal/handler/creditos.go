package handler

import (
	"net/http"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/middleware"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/service"

	"github.com/gin-gonic/gin"
)

type CreditosHandler struct{ svc service.CreditoService }

func NewCreditosHandler(svc service.CreditoService) *CreditosHandler {
	return &CreditosHandler{svc: svc}
}

// Cargar godoc
// @Summary      Cargar producto a credito
// @Description  Descuenta stock y suma la linea a la cuenta abierta del cliente para la clase dada, abriendola si no existe.
// @Tags         creditos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CargarCreditoRequest true "Cargo"
// @Success      201  {object} dto.CreditoResponse
// @Failure      409  {object} handler.StockInsuficienteBody
// @Failure      422  {object} apierror.APIError
// @Router       /v1/creditos/cargos [post]
func (h *CreditosHandler) Cargar(c *gin.Context) {
	var req dto.CargarCreditoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cargar(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar creditos
// @Tags         creditos
// @Produce      json
// @Security     BearerAuth
// @Param        tipo    query string false "corto | largo"
// @Param        estado  query string false "abierto | cerrado"
// @Param        cliente query string false "Busqueda parcial por nombre"
// @Param        page    query int    false "Pagina"
// @Param        limit   query int    false "Tamano de pagina"
// @Success      200 {object} dto.CreditoListResponse
// @Router       /v1/creditos [get]
func (h *CreditosHandler) Listar(c *gin.Context) {
	var filter dto.CreditoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary      Detalle de credito con items y abonos
// @Tags         creditos
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID del credito"
// @Success      200 {object} dto.CreditoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/creditos/{id} [get]
func (h *CreditosHandler) Obtener(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RenombrarCliente godoc
// @Summary      Corregir nombre del cliente
// @Tags         creditos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                      true "UUID del credito"
// @Param        body body     dto.RenombrarClienteRequest true "Nuevo nombre"
// @Success      200  {object} dto.CreditoResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/creditos/{id}/cliente [put]
func (h *CreditosHandler) RenombrarCliente(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.RenombrarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RenombrarCliente(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar credito
// @Description  Borra la cuenta con sus items y abonos y devuelve al inventario el stock de cada item.
// @Tags         creditos
// @Security     BearerAuth
// @Param        id path string true "UUID del credito"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/creditos/{id} [delete]
func (h *CreditosHandler) Eliminar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id, middleware.ActorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EditarItem godoc
// @Summary      Editar item de credito
// @Tags         creditos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        item_id path     string                true "UUID del item"
// @Param        body    body     dto.EditarItemRequest true "Producto y cantidad"
// @Success      200     {object} dto.CreditoResponse
// @Failure      409     {object} apierror.APIError
// @Router       /v1/creditos/items/{item_id} [put]
func (h *CreditosHandler) EditarItem(c *gin.Context) {
	itemID, ok := uuidParam(c, "item_id")
	if !ok {
		return
	}
	var req dto.EditarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EditarItem(c.Request.Context(), itemID, middleware.ActorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarItem godoc
// @Summary      Eliminar item de credito
// @Tags         creditos
// @Produce      json
// @Security     BearerAuth
// @Param        item_id path     string true "UUID del item"
// @Success      200     {object} dto.CreditoResponse
// @Failure      404     {object} apierror.APIError
// @Router       /v1/creditos/items/{item_id} [delete]
func (h *CreditosHandler) EliminarItem(c *gin.Context) {
	itemID, ok := uuidParam(c, "item_id")
	if !ok {
		return
	}
	resp, err := h.svc.EliminarItem(c.Request.Context(), itemID, middleware.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarAbono godoc
// @Summary      Registrar abono
// @Description  Suma el pago a la cuenta, la cierra si el saldo llega a cero y emite la venta de abono del dia.
// @Tags         creditos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string           true "UUID del credito"
// @Param        body body     dto.AbonoRequest true "Abono"
// @Success      201  {object} dto.AbonoResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/creditos/{id}/abonos [post]
func (h *CreditosHandler) RegistrarAbono(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.AbonoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarAbono(c.Request.Context(), id, middleware.ActorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
