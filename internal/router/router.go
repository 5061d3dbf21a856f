package router

import (
	"time"

	"github.com/outisoft/ambar-pdv/internal/config"
	"github.com/outisoft/ambar-pdv/internal/handler"
	"github.com/outisoft/ambar-pdv/internal/infra"
	"github.com/outisoft/ambar-pdv/internal/middleware"
	"github.com/outisoft/ambar-pdv/internal/repository"
	"github.com/outisoft/ambar-pdv/internal/service"
	"github.com/outisoft/ambar-pdv/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, notifier *infra.Notifier, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	sucursalRepo := repository.NewSucursalRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	stockRepo := repository.NewStockRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	ventaRepo := repository.NewVentaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, stockRepo, rdb)
	stockSvc := service.NewStockService(stockRepo)
	clienteSvc := service.NewClienteService(clienteRepo)
	creditoSvc := service.NewCreditoService(clienteRepo, cajaRepo)
	cajaSvc := service.NewCajaService(cajaRepo, ventaRepo, usuarioRepo, sucursalRepo, dispatcher, cfg.UmbralDesvio())
	ventaSvc := service.NewVentaService(ventaRepo, stockSvc, creditoSvc, cajaRepo, productoRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductoHandler(productoSvc, stockSvc)
	clientesH := handler.NewClienteHandler(clienteSvc, creditoSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	ventasH := handler.NewVentaHandler(ventaSvc)
	sucursalesH := handler.NewSucursalHandler(sucursalRepo)
	empresaH := handler.NewEmpresaHandler(sucursalRepo)
	consultaH := handler.NewConsultaPreciosHandler(productoRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, notifier))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required (verification kiosks)
	r.GET("/v1/precio/:empresa_id/:barcode", consultaH.GetPrecioPorBarcode)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	todos := middleware.RequireRole("cajero", "supervisor", "administrador")
	management := middleware.RequireRole("supervisor", "administrador")
	admin := middleware.RequireRole("administrador")

	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/auth/me", todos, authH.Me)

		// Ventas — anulación requires management
		v1.POST("/ventas", todos, ventasH.Registrar)
		v1.GET("/ventas", todos, ventasH.Listar)
		v1.GET("/ventas/:id", todos, ventasH.Obtener)
		v1.POST("/ventas/:id/anular", management, ventasH.Anular)

		// Productos — reads for everyone (catalog sync), writes for admin
		v1.GET("/productos", todos, productosH.Listar)
		v1.GET("/productos/:id", todos, productosH.Obtener)
		v1.GET("/productos/:id/movimientos", management, productosH.MovimientosStock)
		v1.PUT("/productos/:id/stock", management, productosH.AjustarStock)
		prods := v1.Group("/productos", admin)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
		}
		v1.GET("/stock/bajo-minimo", management, productosH.StockBajo)

		// Caja
		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", todos, cajaH.Abrir)
			caja.POST("/cerrar", todos, cajaH.Cerrar)
			caja.GET("/activa", todos, cajaH.Activa)
			caja.POST("/movimiento", todos, cajaH.RegistrarMovimiento)
			caja.GET("/:id/arqueo", todos, cajaH.Arqueo)
			caja.GET("/:id/movimientos", management, cajaH.Movimientos)
			caja.GET("/historial", management, cajaH.Historial)
		}

		// Clientes — credit line reads/writes
		v1.GET("/clientes", todos, clientesH.Listar)
		v1.GET("/clientes/:id", todos, clientesH.Obtener)
		v1.GET("/clientes/:id/estado-cuenta", todos, clientesH.EstadoCuenta)
		v1.POST("/clientes/abono", todos, clientesH.Abono)
		v1.POST("/clientes/:id/recalcular-saldo", management, clientesH.RecalcularSaldo)
		clientes := v1.Group("/clientes", management)
		{
			clientes.POST("", clientesH.Crear)
			clientes.PUT("/:id", clientesH.Actualizar)
			clientes.DELETE("/:id", clientesH.Desactivar)
		}

		// Empresa — the actor's own tenant
		v1.GET("/empresa", management, empresaH.Obtener)
		v1.PUT("/empresa", admin, empresaH.Actualizar)

		// Sucursales — admin only
		sucursales := v1.Group("/sucursales", admin)
		{
			sucursales.POST("", sucursalesH.Crear)
			sucursales.GET("", sucursalesH.Listar)
			sucursales.PUT("/:id", sucursalesH.Actualizar)
			sucursales.DELETE("/:id", sucursalesH.Desactivar)
		}

		// Usuarios — admin only
		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", authH.CrearUsuario)
			usuarios.GET("", authH.ListarUsuarios)
			usuarios.PUT("/:id", authH.ActualizarUsuario)
			usuarios.DELETE("/:id", authH.DesactivarUsuario)
			usuarios.PATCH("/:id/reactivar", authH.ReactivarUsuario)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
