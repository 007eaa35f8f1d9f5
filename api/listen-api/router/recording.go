package listen_routers

import (
	"github.com/gin-gonic/gin"
	internal_alert "github.com/lullai/api/internal/alert"
	internal_auth "github.com/lullai/api/internal/auth"
	internal_store "github.com/lullai/api/internal/store"
	recordingApi "github.com/lullai/api/listen-api/api/recording"
	"github.com/lullai/config"
	"github.com/lullai/pkg/commons"
)

func RecordingApiRoute(
	cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger,
	service *internal_auth.Service,
	store internal_store.RecordingStore,
	alerts *internal_alert.Dispatcher) {
	apiv1 := engine.Group("v1/recordings", internal_auth.Middleware(service, logger))
	rApi := recordingApi.New(cfg, logger, store, alerts)
	{
		apiv1.POST("", rApi.Save)
		apiv1.GET("", rApi.List)
		apiv1.DELETE("/:recordingId", rApi.Delete)
	}
}
