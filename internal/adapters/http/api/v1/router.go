package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/example/profile-service/internal/adapters/http/api/v1/handlers"
)

type Router struct {
	auth         *handlers.AuthHandler
	profiles     *handlers.ProfileHandler
	transactions *handlers.TransactionHandler
	authMW       echo.MiddlewareFunc
}

func NewRouter(auth *handlers.AuthHandler, profiles *handlers.ProfileHandler, transactions *handlers.TransactionHandler, authMW echo.MiddlewareFunc) *Router {
	return &Router{auth: auth, profiles: profiles, transactions: transactions, authMW: authMW}
}

func (r *Router) Register(g *echo.Group) {
	auth := g.Group("/auth")
	auth.POST("/register", r.auth.Register)
	auth.POST("/login", r.auth.Login)
	auth.POST("/otp/verify", r.auth.VerifyOTP)

	g.GET("/users/:username", r.auth.GetUser)

	profile := g.Group("/profile")
	profile.POST("", r.profiles.Upsert, r.authMW)
	profile.GET("/me", r.profiles.GetMine, r.authMW)
	profile.DELETE("", r.profiles.Delete, r.authMW)
	profile.GET("/search/country", r.profiles.SearchByCountry)
	profile.GET("/:username", r.profiles.GetByUsername)
	profile.POST("/find/:username", r.profiles.FindByPlatformUsername)

	g.POST("/transactions", r.transactions.Record, r.authMW)
}
