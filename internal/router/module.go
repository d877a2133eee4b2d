package router

import "github.com/gin-gonic/gin"

// Module is a self-contained route bundle. Each feature registers its own
// endpoints and per-route limiters on the shared /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
