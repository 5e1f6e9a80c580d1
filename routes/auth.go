package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ivanmitkovski/chisto-mk/handlers/auth"
)

func AuthRoutes(r *gin.Engine) {
	r.POST("/register", auth.Register)
	r.POST("/login", auth.Login)
}
