package routes

import (
	"Gin_postgres_redis_invent_tool/app"
	"Gin_postgres_redis_invent_tool/controllers"
	"time"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	invCtl := controllers.NewInventoryController(s)
	reqCtl := controllers.NewRequestController(s)
	selCtl := controllers.NewSelectionController(s)
	issCtl := controllers.NewIssuanceController(s)
	refCtl := controllers.NewRefDataController(s)
	repCtl := controllers.NewReportController(s)
	userCtl := controllers.NewUserController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSessions(), s.Repo)
	clerkMW := app.ClerkOnly()
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// ------------------------------
	// 会话（login 公开，其余受保护）
	// ------------------------------
	auth := r.Group("/auth")
	{
		auth.POST("/login", authCtl.Login)
	}
	authed := auth.Group("", authMW, seenMW)
	{
		authed.POST("/logout", authCtl.Logout)
		authed.GET("/whoami", authCtl.WhoAmI)
	}

	// ------------------------------
	// 库存（浏览对所有登录用户开放；变更仅店员+）
	// ------------------------------
	products := r.Group("/api/products", authMW, seenMW)
	{
		products.GET("", invCtl.ListProducts)
		products.GET("/:id/units", invCtl.ListUnits)
		products.GET("/:id/units/available", invCtl.ListAvailableUnits)
	}
	productsClerk := r.Group("/api/products", authMW, clerkMW)
	{
		productsClerk.POST("", invCtl.CreateProduct)
		productsClerk.DELETE("/:id", invCtl.DeleteProduct)
		productsClerk.POST("/:id/units", invCtl.IntakeUnits)
	}

	// ------------------------------
	// 请求生命周期
	// ------------------------------
	requests := r.Group("/api/requests", authMW, seenMW)
	{
		requests.POST("", reqCtl.CreateRequest)
		requests.GET("/mine", reqCtl.ListMyRequests)
		requests.GET("/mine/summary", reqCtl.MySummary)
		requests.GET("/:id", reqCtl.GetRequest)
		requests.POST("/:id/cancel", reqCtl.CancelRequest)
	}
	requestsClerk := r.Group("/api/requests", authMW, clerkMW)
	{
		requestsClerk.GET("", reqCtl.ListRequests)
		requestsClerk.POST("/:id/review", selCtl.StartReview)
		requestsClerk.POST("/:id/selections", selCtl.SubmitSelection)
		requestsClerk.GET("/:id/selections", selCtl.ListForRequest)
		requestsClerk.POST("/:id/issue", issCtl.Issue)
		requestsClerk.POST("/:id/returns", issCtl.Return)
		requestsClerk.GET("/:id/delivery-note", reqCtl.DeliveryNote)
	}
	requestsAdmin := r.Group("/api/requests", authMW, adminMW)
	{
		requestsAdmin.POST("/:id/reject", reqCtl.RejectRequest)
	}

	// 审批（仅 branch admin）
	selections := r.Group("/api/selections", authMW, adminMW)
	{
		selections.GET("/:id", selCtl.GetSelection)
		selections.POST("/:id/resolve", selCtl.ResolveSelection)
	}

	// 直发/直还（仅店员+）
	units := r.Group("/api/units", authMW, clerkMW)
	{
		units.POST("/:id/issue", issCtl.DirectIssue)
		units.POST("/:id/return", issCtl.DirectReturn)
	}

	// 审计记录（仅店员+）
	records := r.Group("/api/records", authMW, clerkMW)
	{
		records.GET("/issuances", issCtl.ListIssuances)
		records.GET("/returns", issCtl.ListReturns)
	}

	// 参考数据
	ref := r.Group("/api", authMW, seenMW)
	{
		ref.GET("/branches", refCtl.ListBranches)
		ref.GET("/oems", refCtl.ListOEMs)
		ref.GET("/clients", refCtl.ListClients)
	}
	refAdmin := r.Group("/api", authMW, adminMW)
	{
		refAdmin.POST("/branches", refCtl.CreateBranch)
		refAdmin.POST("/oems", refCtl.CreateOEM)
		refAdmin.POST("/clients", refCtl.CreateClient)
	}

	// 报表
	reports := r.Group("/api/reports", authMW, clerkMW)
	{
		reports.GET("/stock", repCtl.StockSummary)
		reports.GET("/pending-count", repCtl.PendingCount)
	}

	// 用户管理（仅管理员）
	users := r.Group("/api/users", authMW, adminMW)
	{
		users.GET("", userCtl.ListUsers)
		users.GET("/:id", userCtl.GetUser)
		users.DELETE("/:id", userCtl.DeleteUser)
	}
}
