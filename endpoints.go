package main

import (
	"github.com/labstack/echo/v4"
	"github.com/satstacker/satstacker.go/controllers"
	"github.com/satstacker/satstacker.go/lib/service"
)

func RegisterEndpoints(svc *service.SatstackerService, e *echo.Echo, secured *echo.Group, securedWithStrictRateLimit *echo.Group, strictRateLimitMiddleware echo.MiddlewareFunc, adminMw echo.MiddlewareFunc, logMw echo.MiddlewareFunc) {
	if svc.Config.AllowAccountCreation {
		e.POST("/v2/users", controllers.NewCreateUserController(svc).CreateUser, strictRateLimitMiddleware, logMw)
	}
	e.POST("/auth", controllers.NewAuthController(svc).Auth, strictRateLimitMiddleware, logMw)

	postCtrl := controllers.NewPostController(svc)
	invoiceCtrl := controllers.NewInvoiceController(svc)
	verifyCtrl := controllers.NewVerifyInvoiceController(svc)
	zapCtrl := controllers.NewZapController(svc)
	userCtrl := controllers.NewUserController(svc)

	// public read surface, served through the in-memory response cache
	cacheClient := createCacheClient()
	e.GET("/v2/posts", postCtrl.ListPosts, cacheClient.Middleware(), logMw)
	e.GET("/v2/posts/:id", postCtrl.GetPost, cacheClient.Middleware(), logMw)
	e.GET("/v2/posts/:id/comments", postCtrl.ListComments, logMw)
	e.GET("/v2/invoices/:payment_hash/qr", invoiceCtrl.InvoiceQR, logMw)
	e.POST("/v2/invoices/verify", verifyCtrl.VerifyInvoice, logMw)

	secured.POST("/v2/posts", postCtrl.CreatePost)
	secured.POST("/v2/posts/:id/comments", postCtrl.CreateComment)
	secured.POST("/v2/invoices", invoiceCtrl.CreateInvoice)
	secured.POST("/v2/zaps", zapCtrl.CreateZap)
	secured.POST("/v2/zaps/:id/confirm", zapCtrl.ConfirmZap)
	securedWithStrictRateLimit.POST("/v2/zaps/send", zapCtrl.SendZap)
	secured.GET("/v2/zaps/stream", controllers.NewZapStreamController(svc).StreamZaps)
	secured.GET("/v2/users/me", userCtrl.GetMe)
	secured.PUT("/v2/users/me", userCtrl.UpdateMe)

	//require admin token for aggregate repair
	if svc.Config.AdminToken != "" {
		e.POST("/v2/admin/users/:user/recompute", userCtrl.RecomputeEarnedSats, adminMw)
	}
}
