package middleware

import (
	"net/http"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var errInterno = apierror.WithCode("error_interno", "Error interno del servidor")

// ErrorHandler answers 500 for errors a handler pushed with c.Error instead of
// writing a response. Domain errors never reach it; respondError maps those.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		log.Error().Err(last.Err).
			Str("request_id", c.GetString(RequestIDKey)).
			Str("ruta", c.FullPath()).
			Str("method", c.Request.Method).
			Int("errores", len(c.Errors)).
			Msg("error no controlado")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errInterno)
	}
}

// Recovery turns a panic into the same 500 body. The panic value is logged,
// never sent.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.Error().
				Str("request_id", c.GetString(RequestIDKey)).
				Str("ruta", c.FullPath()).
				Interface("panic", r).
				Msg("panic recuperado")
			c.AbortWithStatusJSON(http.StatusInternalServerError, errInterno)
		}()
		c.Next()
	}
}
