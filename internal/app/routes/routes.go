package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "noticeboard-http-service/docs"
	"noticeboard-http-service/internal/app/controllers"
	"noticeboard-http-service/internal/app/middleware"
	"noticeboard-http-service/internal/domain/services"
	"noticeboard-http-service/internal/domain/services/container"
)

// SetupRouter builds the gin engine with every route of the service.
func SetupRouter(serviceContainer *container.ServiceContainer) *gin.Engine {
	if !serviceContainer.Config().IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(serviceContainer.Logger()))

	allowedOrigin := serviceContainer.Config().PublicBaseURL
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// The board page is HTML and sits outside the JSON API.
	r.SetHTMLTemplate(controllers.BoardTemplates())
	r.GET("/board/:buildingComplexId", middleware.IPRateLimiter(10, 20), controllers.HandleBoardFunc(serviceContainer, "showBoard"))

	registerRoutes(r, serviceContainer)
	return r
}

func registerRoutes(r *gin.Engine, sc *container.ServiceContainer) {
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Next()
	})
	registerPublicRoutes(api, sc)
	registerAuthenticatedRoutes(api, sc)
}

func registerPublicRoutes(api *gin.RouterGroup, sc *container.ServiceContainer) {
	public := api.Group("")
	public.Use(middleware.IPRateLimiter(10, 20))

	public.GET("/ping", controllers.HandleHealthFunc(sc, "ping"))
	public.GET("/health", controllers.HandleHealthFunc(sc, "ping"))
	public.GET("/health/status", controllers.HandleHealthFunc(sc, "status"))

	public.POST("/auth/signin", middleware.PathRateLimiter(1, 5), controllers.HandleAuthFunc(sc, "signIn"))
	public.GET("/auth/session", controllers.HandleAuthFunc(sc, "getSession"))

	public.GET("/notices/infinite", cached(sc, services.CacheTagNotices, 30*time.Second), controllers.HandleNoticeFunc(sc, "infiniteListNotices"))
	public.GET("/files/*key", controllers.HandleUploadFunc(sc, "redirectToFile"))
}

func registerAuthenticatedRoutes(api *gin.RouterGroup, sc *container.ServiceContainer) {
	jwtService := sc.GetService(container.ServiceJWT).(services.InterfaceJWTService)
	users := sc.GetService(container.ServiceUser).(services.InterfaceUserService)

	auth := api.Group("")
	auth.Use(middleware.Authenticate(jwtService, users, sc.Logger()))
	auth.Use(middleware.IPRateLimiter(30, 50))

	noticeGroup := auth.Group("/notices")
	noticeGroup.GET("", cached(sc, services.CacheTagNotices, time.Minute), controllers.HandleNoticeFunc(sc, "listNotices"))
	noticeGroup.GET("/archived", cached(sc, services.CacheTagNotices, time.Minute), controllers.HandleNoticeFunc(sc, "listArchivedNotices"))
	noticeGroup.GET("/:id", controllers.HandleNoticeFunc(sc, "getNotice"))
	noticeGroup.POST("", controllers.HandleNoticeFunc(sc, "createNotice"))
	noticeGroup.PATCH("/:id/status", controllers.HandleNoticeFunc(sc, "updateStatus"))
	noticeGroup.POST("/:id/archive", controllers.HandleNoticeFunc(sc, "archiveNotice"))
	noticeGroup.DELETE("/:id", controllers.HandleNoticeFunc(sc, "deleteNotice"))

	complexGroup := auth.Group("/building-complexes")
	complexGroup.POST("", controllers.HandleBuildingComplexFunc(sc, "createBuildingComplex"))
	complexGroup.GET("/:id", cached(sc, services.CacheTagBuildingComplex, 5*time.Minute), controllers.HandleBuildingComplexFunc(sc, "getBuildingComplex"))
	complexGroup.GET("/:id/notices/search", controllers.HandleNoticeFunc(sc, "searchNotices"))
	complexGroup.GET("/:id/notices/export", controllers.HandleNoticeFunc(sc, "exportNotices"))

	organisationGroup := auth.Group("/organisations")
	organisationGroup.POST("", controllers.HandleOrganisationFunc(sc, "createOrganisation"))
	organisationGroup.GET("/:id", cached(sc, services.CacheTagOrganisation, 5*time.Minute), controllers.HandleOrganisationFunc(sc, "getOrganisation"))
	organisationGroup.PUT("/:id", controllers.HandleOrganisationFunc(sc, "updateOrganisation"))
	organisationGroup.GET("/:id/billing", cached(sc, services.CacheTagOrganisation, 5*time.Minute), controllers.HandleOrganisationFunc(sc, "getBilling"))
	organisationGroup.GET("/:id/building-complexes", cached(sc, services.CacheTagBuildingComplex, 5*time.Minute), controllers.HandleBuildingComplexFunc(sc, "getBuildingComplexesByOrganisation"))

	billingGroup := auth.Group("/billing")
	billingGroup.POST("", controllers.HandleBillingFunc(sc, "createBilling"))
	billingGroup.POST("/save", controllers.HandleBillingFunc(sc, "saveBilling"))
	billingGroup.PUT("/:id", controllers.HandleBillingFunc(sc, "updateBilling"))

	userGroup := auth.Group("/users")
	userGroup.GET("/:id", cached(sc, services.CacheTagUser, time.Minute), controllers.HandleUserFunc(sc, "getUser"))
	userGroup.PUT("/:id", controllers.HandleUserFunc(sc, "updateUser"))

	auth.POST("/upload/presign", controllers.HandleUploadFunc(sc, "presignUpload"))
	auth.POST("/email/send", middleware.PathRateLimiter(1, 10), controllers.HandleEmailFunc(sc, "sendEmail"))
}

func cached(c *container.ServiceContainer, tag string, expiration time.Duration) gin.HandlerFunc {
	cacheService := c.GetService(container.ServiceCache).(services.InterfaceCacheService)
	return middleware.Cache(cacheService, c.Logger(), middleware.CacheConfig{Tag: tag, Expiration: expiration})
}
