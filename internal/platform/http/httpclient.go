package http

import (
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ClientOption はNewHTTPClientの設定を変更します。
type ClientOption func(*clientOptions)

type clientOptions struct {
	service         string
	maxConnsPerHost int
}

// WithService はログに出力する呼び出し先サービス名を設定します。
func WithService(name string) ClientOption {
	return func(o *clientOptions) { o.service = name }
}

// WithMaxConnsPerHost は1ホストあたりの最大接続数を設定します。0は無制限です。
func WithMaxConnsPerHost(n int) ClientOption {
	return func(o *clientOptions) { o.maxConnsPerHost = n }
}

// NewHTTPClient は外部API(Geminiなど)呼び出し用に設定されたHTTPクライアントを作成します。
//
// http.DefaultClientにはタイムアウトがないため、常にこのクライアントを使用してください。
// timeoutはリクエスト全体のタイムアウトです。各リクエストの所要時間はdebugレベルで記録されます。
func NewHTTPClient(timeout time.Duration, opts ...ClientOption) *http.Client {
	o := clientOptions{service: "upstream"}
	for _, opt := range opts {
		opt(&o)
	}

	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     o.maxConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingTransport{next: t, service: o.service},
	}
}

// loggingTransport は外部API呼び出しの結果と所要時間を記録します。
// URLのクエリ(APIキーを含む場合がある)はログに出力しません。
type loggingTransport struct {
	next    http.RoundTripper
	service string
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	ev := log.Debug()
	if err != nil {
		ev = log.Warn().Err(err)
	} else {
		ev = ev.Int("status", resp.StatusCode)
	}
	ev.Str("service", t.service).
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Dur("latency", time.Since(start)).
		Msg("upstream request")
	return resp, err
}
