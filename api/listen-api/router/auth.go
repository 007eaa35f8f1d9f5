package listen_routers

import (
	"github.com/gin-gonic/gin"
	internal_auth "github.com/lullai/api/internal/auth"
	authApi "github.com/lullai/api/listen-api/api/auth"
	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

func AuthApiRoute(
	cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger,
	service *internal_auth.Service) {
	apiv1 := engine.Group("v1/auth")
	aApi := authApi.New(cfg, logger, service)
	{
		apiv1.POST("/register", aApi.Register)
		apiv1.POST("/login", aApi.Login)
		// logout is tolerant of dead tokens so the client can always
		// clear its state; no auth middleware in front of it
		apiv1.POST("/logout", aApi.Logout)
	}

	protected := engine.Group("v1/auth", internal_auth.Middleware(service, logger))
	{
		protected.GET("/me", aApi.Me)
	}
}
