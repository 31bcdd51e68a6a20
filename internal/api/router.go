package api

import (
	"net/http"

	"voice-console/internal/logging"
	"voice-console/pkg/models"

	"github.com/gin-gonic/gin"
)

// NewRouter wires every console route.
func NewRouter(env *Env) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), logging.GinLogger(env.Logger), CORS(env.AllowedOrigin))

	authHandler := NewAuthHandler(env)
	tenantHandler := NewTenantHandler(env)
	userHandler := NewUserHandler(env)
	agentHandler := NewAgentHandler(env)
	contactHandler := NewContactHandler(env)
	campaignHandler := NewCampaignHandler(env)
	historyHandler := NewHistoryHandler(env)
	billingHandler := NewBillingHandler(env)
	dashboardHandler := NewDashboardHandler(env)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/auth/login", authHandler.Login)
		apiGroup.POST("/auth/register", authHandler.Register)

		authed := apiGroup.Group("", env.RequireSession())
		authed.POST("/auth/logout", authHandler.Logout)
		authed.GET("/auth/me", authHandler.Me)

		// Tenant Routes
		authed.GET("/tenants", tenantHandler.List)
		authed.PUT("/tenants/selected", env.RequireRole(models.RoleSuperAdmin), tenantHandler.Select)
		authed.DELETE("/tenants/selected", env.RequireRole(models.RoleSuperAdmin), tenantHandler.Clear)
		authed.POST("/tenants", env.RequireRole(models.RoleSuperAdmin), tenantHandler.Create)
		authed.PATCH("/tenants/:id/config", env.RequireRole(models.RoleSuperAdmin), tenantHandler.Configure)

		// User Routes
		users := authed.Group("/users", env.RequireRole(models.RoleAdmin))
		{
			users.GET("", userHandler.List)
			users.POST("", userHandler.Create)
			users.PATCH("/:id/status", userHandler.ToggleStatus)
			users.PATCH("/:id/balance", userHandler.UpdateBalance)
			users.PATCH("/:id/tenant", userHandler.AssignTenant)
			users.PUT("/:id/phone", userHandler.UpdatePhone)
			users.PATCH("/:id/agents", userHandler.AssignAgents)
			users.GET("/mutations", userHandler.Mutations)
		}

		// Agent Routes
		authed.GET("/agents", agentHandler.List)
		authed.POST("/agents", env.RequireRole(models.RoleAdmin), agentHandler.Save)

		// CRM Routes
		authed.GET("/contacts", contactHandler.GetContacts)
		authed.POST("/contacts", contactHandler.CreateContact)
		authed.POST("/contacts/import/csv", contactHandler.ImportCSV)
		authed.POST("/contacts/import/excel", contactHandler.ImportExcel)
		authed.GET("/contacts/export", contactHandler.ExportContacts)
		authed.GET("/contacts/lists", contactHandler.GetLists)
		authed.POST("/contacts/lists", contactHandler.CreateList)
		authed.GET("/contacts/lists/:id", contactHandler.GetList)

		// Campaign Routes
		authed.POST("/campaigns/initiate", campaignHandler.Initiate)
		authed.POST("/campaigns/start", campaignHandler.Start)

		authed.GET("/history", historyHandler.List)
		authed.POST("/history/sync", historyHandler.Sync)
		authed.GET("/history/stats", historyHandler.Stats)

		authed.GET("/billing", billingHandler.Get)
		authed.POST("/billing/recharge", billingHandler.Recharge)

		authed.GET("/dashboard", dashboardHandler.Get)
		authed.GET("/system-status", dashboardHandler.SystemStatus)

		authed.GET("/ws", func(c *gin.Context) {
			env.Hub.ServeWs(c.Writer, c.Request, currentSession(c).ID)
		})
	}
	return r
}
