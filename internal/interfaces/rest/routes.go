package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/application/services"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/interfaces/middleware"
)

// RegisterRoutes mounts the health check and every /api route on router.
// All /api routes require a bearer token; the token's user owns the data.
func RegisterRoutes(router *gin.Engine, svcMgr *services.ServiceManager) {
	router.GET("/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if err := svcMgr.DB().DB().PingContext(c.Request.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status})
	})

	moduleHandler := NewModuleHandler(svcMgr)
	fieldHandler := NewFieldHandler(svcMgr)
	recordHandler := NewRecordHandler(svcMgr)
	statsHandler := NewStatsHandler(svcMgr.Stats)
	customFieldHandler := NewCustomFieldHandler(svcMgr)

	api := router.Group("/api")
	api.Use(middleware.APIVersion(), middleware.RequireAuth())
	{
		api.GET("/fieldtypes", GetFieldTypes)

		modules := api.Group("/modules")
		{
			modules.GET("", moduleHandler.ListModules)
			modules.POST("", moduleHandler.CreateModule)
			// Static segment, registered beside /:id
			modules.POST("/migrate-platforms", moduleHandler.MigratePlatforms)
			modules.GET("/:id", moduleHandler.GetModule)
			modules.PATCH("/:id", moduleHandler.UpdateModule)
			modules.DELETE("/:id", moduleHandler.DeleteModule)

			modules.GET("/:id/fields", fieldHandler.GetFields)
			modules.POST("/:id/fields", fieldHandler.CreateField)
			modules.PUT("/:id/fields/order", fieldHandler.ReorderFields)
			modules.PATCH("/:id/fields/:fieldId", fieldHandler.UpdateField)
			modules.DELETE("/:id/fields/:fieldId", fieldHandler.DeleteField)

			modules.GET("/:id/sections", fieldHandler.GetSections)
			modules.POST("/:id/sections", fieldHandler.CreateSection)
			modules.PATCH("/:id/sections/:sectionId", fieldHandler.UpdateSection)
			modules.DELETE("/:id/sections/:sectionId", fieldHandler.DeleteSection)

			modules.GET("/:id/records", recordHandler.GetRecords)
			modules.POST("/:id/records", recordHandler.CreateRecord)
			modules.GET("/:id/records/:recordId", recordHandler.GetRecord)
			modules.PATCH("/:id/records/:recordId", recordHandler.UpdateRecord)
			modules.DELETE("/:id/records/:recordId", recordHandler.DeleteRecord)

			modules.GET("/:id/stats", statsHandler.GetStats)
			modules.GET("/:id/orphan-keys", recordHandler.GetOrphanKeys)
		}

		customFields := api.Group("/custom-fields")
		{
			customFields.GET("", customFieldHandler.GetCustomFields)
			customFields.POST("", customFieldHandler.CreateCustomField)
			customFields.PATCH("/:id", customFieldHandler.UpdateCustomField)
			customFields.DELETE("/:id", customFieldHandler.DeleteCustomField)
		}

		platforms := api.Group("/platforms")
		{
			platforms.GET("/:platformId/custom-values", customFieldHandler.GetCustomValues)
			platforms.PUT("/:platformId/custom-values", customFieldHandler.SetCustomValues)
		}
	}
}

// NewRouter builds the gin engine with recovery, request logging, CORS and
// every route registered
func NewRouter(svcMgr *services.ServiceManager, corsOrigins string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Cors(corsOrigins))
	RegisterRoutes(router, svcMgr)
	return router
}
