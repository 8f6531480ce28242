package router

import (
	"github.com/gin-gonic/gin"

	"evolve_backend/internal/api"
	assistanthandler "evolve_backend/internal/feature/assistant/transport/handler"
	subscriptionhandler "evolve_backend/internal/feature/subscription/transport/handler"
	usagehandler "evolve_backend/internal/feature/usage/transport/handler"
	gatemw "evolve_backend/internal/feature/usage/transport/middleware"
	userhandler "evolve_backend/internal/feature/user/transport/handler"
	"evolve_backend/internal/platform/http/handler"
	"evolve_backend/internal/platform/http/middleware"
	jwtmw "evolve_backend/internal/platform/jwt"
	"evolve_backend/internal/platform/metrics"
)

// Deps はルーターが必要とするハンドラーとミドルウェアです。
type Deps struct {
	User         *userhandler.UserHandler
	Usage        *usagehandler.UsageHandler
	Subscription *subscriptionhandler.SubscriptionHandler
	Gate         *gatemw.Gate
	// Assistant がnilの場合、チャットは503を返します。
	Assistant *assistanthandler.AssistantHandler
	// StripeWebhook がnilの場合、Webhookのルートは登録されません。
	StripeWebhook *subscriptionhandler.StripeWebhookHandler
	// Verifier がnilの場合、認証は無効です。
	Verifier       *jwtmw.Verifier
	AllowedOrigins []string
	ReadyChecks    map[string]handler.Check
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery())
	if len(d.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(d.AllowedOrigins))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(d.ReadyChecks))
	r.GET("/metrics", metrics.Handler())
	// 決済完了通知（Stripeの署名で検証）
	if d.StripeWebhook != nil {
		r.POST("/webhooks/stripe", d.StripeWebhook.Handle)
	}

	// 認証必須のルート（api/openapi.yamlから生成）
	// → CLERK_JWT_KEY が設定されていればBearerトークンが必要になる
	// AI機能は使用量ゲートを通す
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(d.Verifier))
	api.RegisterHandlersWithOptions(auth, &apiServer{d: d}, api.GinServerOptions{
		ErrorHandler: writeParamError,
	})

	return r
}
