package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/identity-access/internal/handler"
	"github.com/iliyamo/identity-access/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check for load balancers and
// monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Unauthenticated
// operations live under /v1/auth; change_password additionally needs a
// bearer token. Confirmation and reset links carry their purpose token
// as a query parameter so they work straight from the email client.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup)
	g.GET("/confirm", a.Confirm)
	g.POST("/resend_confirmation", a.ResendConfirmation)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/request_password_reset", a.RequestPasswordReset)
	g.GET("/reset_password", a.ResetPassword)
	g.POST("/change_password", a.ChangePassword, middleware.RequireBearer())
}

// RegisterUsers registers the self-service and admin user endpoints.
// All of them require a bearer token; the admin-only ones are gated
// inside the service through the role check, so a non-admin token gets
// a 403 without any storage mutation.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler) {
	g := e.Group("/v1/users")
	g.Use(middleware.RequireBearer())
	g.GET("/me", u.Me)
	g.PATCH("/me", u.UpdateMe)
	g.DELETE("/me", u.DeleteMe)
	g.GET("", u.List)
	g.GET("/:id", u.GetByID)
	g.PATCH("/:id", u.UpdateByID)
	g.DELETE("/:id", u.DeleteByID)
}

// RegisterRoles registers the admin role and permission surfaces.
func RegisterRoles(e *echo.Echo, r *handler.RoleHandler, p *handler.PermissionHandler) {
	roles := e.Group("/v1/roles")
	roles.Use(middleware.RequireBearer())
	roles.POST("", r.Create)
	roles.GET("", r.List)
	roles.GET("/:id", r.GetByID)
	roles.PATCH("/:id", r.UpdateByID)
	roles.DELETE("/:id", r.DeleteByID)
	roles.POST("/:name/permissions/:permission", r.AddPermission)
	roles.DELETE("/:name/permissions/:permission", r.RemovePermission)

	perms := e.Group("/v1/permissions")
	perms.Use(middleware.RequireBearer())
	perms.POST("", p.Create)
	perms.GET("", p.List)
	perms.GET("/:id", p.GetByID)
	perms.PATCH("/:id", p.UpdateByID)
	perms.DELETE("/:id", p.DeleteByID)
}
