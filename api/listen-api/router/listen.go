package listen_routers

import (
	"github.com/gin-gonic/gin"
	internal_auth "github.com/lullai/api/internal/auth"
	internal_capture "github.com/lullai/api/internal/capture"
	listenApi "github.com/lullai/api/listen-api/api/listen"
	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

func ListenApiRoute(
	cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger,
	service *internal_auth.Service,
	manager *internal_capture.Manager) {
	apiv1 := engine.Group("v1/listen", internal_auth.Middleware(service, logger))
	lApi := listenApi.New(cfg, logger, manager, service)
	{
		apiv1.POST("/start", lApi.Start)
		apiv1.POST("/:sessionId/chunk", lApi.Chunk)
		apiv1.POST("/:sessionId/stop", lApi.Stop)
		apiv1.POST("/:sessionId/cancel", lApi.Cancel)

		// live capture feed: audio in, levels and the analysis out
		apiv1.GET("/:sessionId/live", lApi.Live)
	}
}
