package router

import "github.com/gin-gonic/gin"

// Module is one feature area (auth, contacts, users, health) that mounts its
// routes on the shared /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
