// Package middleware はすべてのルートに適用する共通のginミドルウェアを提供します。
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID はリクエストIDを伝搬するヘッダー名です。
const HeaderRequestID = "X-Request-ID"

// ContextRequestID はgin.Contextに保存するリクエストIDのキーです。
const ContextRequestID = "requestID"

// maxRequestIDLength を超える受信IDは破棄して新しく採番します。
const maxRequestIDLength = 128

// RequestID は受信したX-Request-IDを引き継ぎ、無ければUUIDを採番します。
// IDはレスポンスヘッダーとgin.Contextの両方に設定されます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID はRequestIDミドルウェアが設定したIDを返します。
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
