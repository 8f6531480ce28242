// Package db opens the gorm connection used by the relational user store.
package db

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"evolve_backend/internal/config"
	useradapters "evolve_backend/internal/feature/user/adapters"
)

// retryInterval は接続リトライの間隔です。
const retryInterval = 3 * time.Second

// Opener はDSNからgorm.DBを開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// slowQueryThreshold を超えたクエリは警告として記録されます。
const slowQueryThreshold = 200 * time.Millisecond

// zerologWriter はgormのログをzerologに流します。
type zerologWriter struct{}

func (zerologWriter) Printf(format string, args ...any) {
	log.Warn().Str("component", "gorm").Msgf(format, args...)
}

// newGormLogger はWarn以上をzerologに出力するgormロガーです。
// ユーザー未登録は通常の分岐なので、ErrRecordNotFoundは記録しません。
func newGormLogger() logger.Interface {
	return logger.New(zerologWriter{}, logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// gormConfig はすべてのドライバーで共通のgorm設定です。
// TranslateError により一意制約違反が gorm.ErrDuplicatedKey に変換されます。
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(),
	}
}

// PostgresOpener はPostgreSQL用のOpenerです。
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

// SQLiteOpener はSQLite用のOpenerです。外部キー制約を有効にして開きます。
func SQLiteOpener(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), gormConfig())
}

// BuildDSN はPostgreSQL接続用のURL形式のDSNを組み立てます。
// ユーザー名やパスワードはURLエンコードされるため、記号や空白を含んでも構いません。
// InstanceName が設定されている場合はCloud SQLのUnixソケットを使用します。
// 日付の判定はアプリケーション側のローカル時刻で行うため、TimeZoneは送りません。
func BuildDSN(cfg config.Postgres) string {
	u := url.URL{Scheme: "postgres", Path: "/" + cfg.Name}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else {
		u.User = url.User(cfg.User)
	}

	q := url.Values{}
	switch {
	case cfg.InstanceName != "":
		q.Set("host", "/cloudsql/"+cfg.InstanceName)
	case cfg.Port != "":
		u.Host = net.JoinHostPort(cfg.Host, cfg.Port)
	default:
		u.Host = cfg.Host
	}
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ConnectWithRetry はタイムアウトまで一定間隔で接続を試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		log.Warn().Err(err).Msg("db connect failed, retrying")
		time.Sleep(retryInterval)
	}
}

// Open は設定されたドライバーでデータベースを開き、必要に応じてマイグレーションを実行します。
func Open(cfg *config.Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err = ConnectWithRetry(BuildDSN(cfg.Postgres), cfg.Postgres.ConnTimeout, PostgresOpener)
	case config.DriverSQLite:
		db, err = SQLiteOpener(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("db: driver %q is not a gorm driver", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Store.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	log.Info().Str("driver", cfg.Store.Driver).Msg("database connected")
	return db, nil
}

// Migrate はユーザーと使用量のテーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(useradapters.Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
