package router

import (
	"github.com/JosephCatalano/ledgerleaf/internal/config"
	"github.com/JosephCatalano/ledgerleaf/internal/handler"
	"github.com/JosephCatalano/ledgerleaf/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret

	// login/registration, no auth required
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(db))
	protected.POST("/profile/password", handler.ChangePassword(db))

	accountHandler := handler.NewAccountHandler(db)
	protected.POST("/accounts", accountHandler.CreateAccount)
	protected.GET("/accounts", accountHandler.ListAccounts)
	protected.DELETE("/accounts/:id", accountHandler.DeleteAccount)

	categoryHandler := handler.NewCategoryHandler(db)
	protected.POST("/categories", categoryHandler.CreateCategory)
	protected.GET("/categories", categoryHandler.ListCategories)
	protected.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	transactionHandler := handler.NewTransactionHandler(db)
	protected.GET("/transactions", transactionHandler.ListTransactions)
	protected.PUT("/transactions/:id", transactionHandler.UpdateTransaction)
	protected.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)
	protected.GET("/stats/monthly", transactionHandler.GetMonthlyStats)

	ruleHandler := handler.NewRuleHandler(db)
	protected.POST("/rules", ruleHandler.CreateRule)
	protected.GET("/rules", ruleHandler.ListRules)
	protected.PUT("/rules/:id", ruleHandler.UpdateRule)
	protected.DELETE("/rules/:id", ruleHandler.DeleteRule)
	protected.GET("/rules/preview", ruleHandler.PreviewRules)

	importHandler := handler.NewImportHandler(
		db,
		handler.NewPresetStore(db),
		cfg.Import.MaxUploadBytes,
		cfg.Import.SampleRows,
	)
	protected.POST("/import/preview", importHandler.Preview)
	protected.POST("/import", importHandler.Import)
	protected.POST("/import/mapping", importHandler.SaveMapping)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	logHandler := handler.NewLogHandler(db)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}
