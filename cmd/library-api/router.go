package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/library-admin-api/internal/handler"
	"github.com/noah-isme/library-admin-api/internal/middleware"
	"github.com/noah-isme/library-admin-api/internal/models"
	"github.com/noah-isme/library-admin-api/internal/service"
	"github.com/noah-isme/library-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/library-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/library-admin-api/pkg/middleware/requestid"
)

// routerDeps carries everything the HTTP surface needs.
type routerDeps struct {
	APIPrefix      string
	AllowedOrigins []string
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Tokens         middleware.TokenValidator
	Audit          middleware.AuditWriter

	Auth      *handler.AuthHandler
	Books     *handler.BookHandler
	Students  *handler.StudentHandler
	Loans     *handler.LoanHandler
	Dashboard *handler.DashboardHandler
	Ops       *handler.MetricsHandler

	Docs gin.HandlerFunc
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.Logger))
	r.Use(corsmiddleware.New(d.AllowedOrigins))
	r.Use(middleware.Metrics(d.Metrics))

	r.GET("/health", d.Ops.Health)
	r.GET("/ready", d.Ops.Ready)
	r.GET("/metrics", d.Ops.Prometheus)
	if d.Docs != nil {
		r.GET("/docs/*any", d.Docs)
	}

	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(d.Audit, d.Logger, action, resource)
	}
	requireAuth := middleware.JWT(d.Tokens)

	api := r.Group(d.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	auth := api.Group("/auth")
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", requireAuth, d.Auth.Logout)

	secured := api.Group("")
	secured.Use(requireAuth)

	books := secured.Group("/books", middleware.RequireCapability(models.CapManageCatalog))
	books.GET("", d.Books.List)
	books.POST("", audit(models.AuditActionCreate, "book"), d.Books.Create)
	books.PUT("/bulk", audit(models.AuditActionBulkUpdate, "book"), d.Books.BulkUpdate)
	books.POST("/bulk-delete", audit(models.AuditActionBulkDelete, "book"), d.Books.BulkDelete)
	books.GET("/:id", d.Books.Get)

	students := secured.Group("/students", middleware.RequireCapability(models.CapManageMembers))
	students.GET("", d.Students.List)
	students.POST("", audit(models.AuditActionCreate, "student"), d.Students.Create)
	students.PUT("/bulk", audit(models.AuditActionBulkUpdate, "student"), d.Students.BulkUpdate)
	students.POST("/bulk-delete", audit(models.AuditActionBulkDelete, "student"), d.Students.BulkDelete)
	students.GET("/:id", d.Students.Get)

	loans := secured.Group("/loans", middleware.RequireCapability(models.CapManageLoans))
	loans.POST("", audit(models.AuditActionIssue, "loan"), d.Loans.Issue)
	loans.GET("/active", d.Loans.Active)
	loans.GET("/export", d.Loans.Export)
	loans.PUT("/bulk", audit(models.AuditActionBulkUpdate, "loan"), d.Loans.BulkUpdate)
	loans.POST("/:id/return", audit(models.AuditActionReturn, "loan"), d.Loans.Return)

	secured.GET("/dashboard", middleware.RequireCapability(models.CapViewReports), d.Dashboard.Summary)

	return r
}
