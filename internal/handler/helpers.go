package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/apierror"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/dto"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/jornada"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/metrics"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails; the
// caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode("json_invalido", "JSON invalido: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode("parametros_invalidos", "Parametros invalidos: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// uuidParam parses a path parameter, writing 400 when it is not a UUID.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode("id_invalido", "ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// fechaParam reads a YYYY-MM-DD value. Empty means the current commercial day.
func fechaParam(c *gin.Context, raw string, resolver *jornada.Resolver) (time.Time, bool) {
	if raw == "" {
		return resolver.Hoy().Fecha, true
	}
	f, err := jornada.ParseFecha(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode("fecha_invalida", err.Error()))
		return time.Time{}, false
	}
	return f, true
}

func intQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

// ── Domain error mapping ──────────────────────────────────────────────────────

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrStockInsuficiente, http.StatusConflict, "stock_insuficiente"},
	{service.ErrMontoInvalido, http.StatusUnprocessableEntity, "monto_invalido"},
	{service.ErrDesgloseInconsistente, http.StatusUnprocessableEntity, "desglose_inconsistente"},
	{service.ErrCajaYaCerrada, http.StatusConflict, "caja_ya_cerrada"},
	{service.ErrCreditoEnConflicto, http.StatusConflict, "credito_en_conflicto"},
	{service.ErrProductoDuplicado, http.StatusConflict, "producto_duplicado"},
	{service.ErrVentaNoAnulable, http.StatusConflict, "venta_no_anulable"},
	{service.ErrCreditoNoEncontrado, http.StatusNotFound, "credito_no_encontrado"},
	{service.ErrProductoNoEncontrado, http.StatusNotFound, "producto_no_encontrado"},
	{service.ErrItemNoEncontrado, http.StatusNotFound, "item_no_encontrado"},
	{service.ErrVentaNoEncontrada, http.StatusNotFound, "venta_no_encontrada"},
	{service.ErrCierreNoEncontrado, http.StatusNotFound, "cierre_no_encontrado"},
	{service.ErrSolicitudInvalida, http.StatusBadRequest, "solicitud_invalida"},
}

// StockInsuficienteBody is the 409 body of a rejected reservation.
type StockInsuficienteBody struct {
	apierror.APIError
	ProductoID string `json:"producto_id"`
	Disponible int    `json:"disponible"`
	Solicitado int    `json:"solicitado"`
}

// CajaYaCerradaBody is the 409 body of a repeated closing; it carries the existing record.
type CajaYaCerradaBody struct {
	apierror.APIError
	Cierre *dto.CierreResponse `json:"cierre,omitempty"`
}

// respondError writes the status and envelope for a service error. Unknown
// errors are handed to the ErrorHandler middleware, which logs them and
// answers 500 without internals.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		metrics.Rechazos.WithLabelValues(m.code).Inc()
		base := apierror.WithCode(m.code, err.Error())

		var stockErr *service.StockInsuficienteError
		var cerradaErr *service.CajaYaCerradaError
		switch {
		case errors.As(err, &stockErr):
			c.JSON(m.status, StockInsuficienteBody{
				APIError:   *base,
				ProductoID: stockErr.ProductoID.String(),
				Disponible: stockErr.Disponible,
				Solicitado: stockErr.Solicitado,
			})
		case errors.As(err, &cerradaErr):
			c.JSON(m.status, CajaYaCerradaBody{APIError: *base, Cierre: cerradaErr.Cierre})
		default:
			c.JSON(m.status, base)
		}
		return
	}

	_ = c.Error(err)
}
