// Package logger はzerologのグローバルロガーを初期化します。
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init はグローバルロガーを設定します。
// pretty がtrueの場合は人が読みやすいコンソール出力、それ以外はJSONを出力します。
// 解釈できないレベル文字列はinfoとして扱います。
func Init(serviceName, level string, pretty bool) {
	InitWithWriter(os.Stdout, serviceName, level, pretty)
}

// InitWithWriter はInitと同じ設定を任意の出力先で行います。
func InitWithWriter(w io.Writer, serviceName, level string, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}
