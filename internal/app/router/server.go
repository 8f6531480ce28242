package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"evolve_backend/internal/api"
	"evolve_backend/internal/feature/user/domain/entity"
)

// apiServer はOpenAPIから生成されたServerInterfaceを各フィーチャーのハンドラーに振り分けます。
type apiServer struct {
	d Deps
}

var _ api.ServerInterface = (*apiServer)(nil)

func (s *apiServer) SyncUser(c *gin.Context) { s.d.User.Sync(c) }

func (s *apiServer) GetUser(c *gin.Context, clerkId api.ClerkId) { s.d.User.Get(c, clerkId) }

func (s *apiServer) TrackUsage(c *gin.Context) { s.d.Usage.Track(c) }

func (s *apiServer) GetUsageStatus(c *gin.Context, clerkId api.ClerkId) {
	s.d.Usage.Status(c, clerkId)
}

func (s *apiServer) UpdateSubscription(c *gin.Context) { s.d.Subscription.Update(c) }

func (s *apiServer) GetSubscriptionStatus(c *gin.Context, clerkId api.ClerkId) {
	s.d.Subscription.Status(c, clerkId)
}

func (s *apiServer) PostSubscriptionStatus(c *gin.Context, clerkId api.ClerkId) {
	s.d.Subscription.Status(c, clerkId)
}

// ChatWithAssistant はAI機能を使用量ゲートで包んで実行します。
func (s *apiServer) ChatWithAssistant(c *gin.Context) {
	if s.d.Assistant == nil {
		c.JSON(http.StatusServiceUnavailable, api.MessageResponse{Message: "assistant is not configured"})
		return
	}
	s.d.Gate.Run(c, entity.MetricConversations, s.d.Assistant.Chat)
}

// writeParamError はパスパラメーターのバインドに失敗した場合のレスポンスです。
func writeParamError(c *gin.Context, err error, status int) {
	log.Debug().Err(err).Str("path", c.FullPath()).Msg("invalid request parameter")
	c.AbortWithStatusJSON(status, api.MessageResponse{Message: "invalid request"})
}
