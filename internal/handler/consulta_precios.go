package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Stock moves with every sale and charge, so cached entries live briefly.
const precioCacheTTL = time.Minute

// ConsultaPreciosHandler serves the barcode lookup used at the till before a
// sale or a credit charge. rdb may be nil, in which case every lookup hits the store.
type ConsultaPreciosHandler struct {
	svc service.InventarioService
	rdb *redis.Client
}

func NewConsultaPreciosHandler(svc service.InventarioService, rdb *redis.Client) *ConsultaPreciosHandler {
	return &ConsultaPreciosHandler{svc: svc, rdb: rdb}
}

// GetPrecioPorCodigo godoc
// @Summary      Consulta de precio por codigo de barras
// @Tags         productos
// @Produce      json
// @Security     BearerAuth
// @Param        codigo path     string true "Codigo de barras"
// @Success      200    {object} dto.ProductoResponse
// @Failure      404    {object} apierror.APIError
// @Router       /v1/precio/{codigo} [get]
func (h *ConsultaPreciosHandler) GetPrecioPorCodigo(c *gin.Context) {
	codigo := c.Param("codigo")
	ctx := c.Request.Context()
	cacheKey := "precio:" + codigo

	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.ProductoResponse
			if json.Unmarshal(cached, &resp) == nil {
				c.Header("X-Cache", "hit")
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	resp, err := h.svc.BuscarPorCodigo(ctx, codigo)
	if err != nil {
		respondError(c, err)
		return
	}

	// Best effort; a cache failure never fails the lookup.
	if h.rdb != nil {
		if b, err := json.Marshal(resp); err == nil {
			if err := h.rdb.Set(context.WithoutCancel(ctx), cacheKey, b, precioCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Str("codigo", codigo).Msg("precio cache write failed")
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}
