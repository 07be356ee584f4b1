package router

import (
	"time"

	"github.com/Lorenara04/SAN-ROQUE-MB/internal/config"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/handler"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/jornada"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/middleware"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/repository"
	"github.com/Lorenara04/SAN-ROQUE-MB/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the infrastructure pieces built by the composition root.
// DB and Redis are only used for health reporting and may be nil.
type Deps struct {
	Store       repository.Store
	Jornada     *jornada.Resolver
	Notificador service.NotificadorCierre
	DB          *gorm.DB
	Redis       *redis.Client
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Store ← DB
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	if cfg.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))
	}
	r.Use(middleware.PrometheusMiddleware())

	// ── Services ─────────────────────────────────────────────────────────────
	inventarioSvc := service.NewInventarioService(d.Store)
	ventaSvc := service.NewVentaService(d.Store, inventarioSvc, d.Jornada)
	creditoSvc := service.NewCreditoService(d.Store, inventarioSvc, ventaSvc, d.Jornada)
	cierreSvc := service.NewCierreService(d.Store, ventaSvc, d.Jornada, d.Notificador)
	gastoSvc := service.NewGastoService(d.Store, d.Jornada)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productosH := handler.NewProductosHandler(inventarioSvc)
	creditosH := handler.NewCreditosHandler(creditoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc, d.Jornada)
	gastosH := handler.NewGastosHandler(gastoSvc, d.Jornada)
	cajaH := handler.NewCajaHandler(cierreSvc, d.Jornada)
	consultaH := handler.NewConsultaPreciosHandler(inventarioSvc, d.Redis)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := middleware.RequireRole(middleware.RolAdministrador)
	staff := middleware.RequireRole(middleware.RolAdministrador, middleware.RolVendedor)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), staff)
	{
		v1.POST("/productos", admin, productosH.Crear)
		v1.GET("/productos/:id", productosH.ObtenerPorID)
		v1.PATCH("/productos/:id/stock", admin, productosH.AjustarStock)
		v1.GET("/inventario/movimientos", productosH.ListarMovimientos)
		v1.GET("/precio/:codigo", consultaH.GetPrecioPorCodigo)

		cred := v1.Group("/creditos")
		{
			cred.POST("/cargos", creditosH.Cargar)
			cred.GET("", creditosH.Listar)
			cred.GET("/:id", creditosH.Obtener)
			cred.PUT("/:id/cliente", creditosH.RenombrarCliente)
			cred.DELETE("/:id", admin, creditosH.Eliminar)
			cred.POST("/:id/abonos", creditosH.RegistrarAbono)
			cred.PUT("/items/:item_id", creditosH.EditarItem)
			cred.DELETE("/items/:item_id", creditosH.EliminarItem)
		}

		v1.POST("/ventas", ventasH.RegistrarVenta)
		v1.GET("/ventas", ventasH.ListarVentas)
		v1.GET("/ventas/:id", ventasH.ObtenerVenta)
		v1.DELETE("/ventas/:id", admin, ventasH.AnularVenta)

		v1.POST("/gastos/pagos", admin, gastosH.RegistrarPago)
		v1.GET("/gastos/pagos", gastosH.ListarPagos)

		caja := v1.Group("/caja")
		{
			caja.POST("/cierres", admin, cajaH.CerrarDia)
			caja.GET("/cierres", cajaH.Historial)
			caja.GET("/cierres/:fecha", cajaH.ObtenerPorFecha)
			caja.GET("/reporte", cajaH.Reporte)
			caja.GET("/reporte/rango", cajaH.ReporteRango)
		}
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
