package handler

import (
	"salesledger/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Registrar is implemented by every handler in this package
type Registrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// Mount attaches public handlers at the root and protected ones under /api
// behind RequireAuth
func Mount(engine *gin.Engine, secret []byte, public Registrar, protected ...Registrar) {
	public.RegisterRoutes(&engine.RouterGroup)

	api := engine.Group("/api", middleware.RequireAuth(secret))
	for _, h := range protected {
		h.RegisterRoutes(api)
	}
}
