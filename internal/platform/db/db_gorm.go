// Package db はPostgreSQLへの接続とストレージエラーの分類を提供します。
package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/boatjones/quant-lab/internal/shared/storeerr"
)

const retryInterval = 3 * time.Second

// Config はデータベース接続設定です。
type Config struct {
	User     string `yaml:"user" default:"postgres"`
	Password string `yaml:"password"`
	Name     string `yaml:"name" default:"market"`
	Host     string `yaml:"host" default:"localhost"`
	Port     string `yaml:"port" default:"5432"`
	SSLMode  string `yaml:"ssl_mode" default:"disable"`
	// ConnectTimeout は起動時の接続リトライを諦めるまでの時間です。
	ConnectTimeout time.Duration `yaml:"connect_timeout" default:"60s"`
}

// Opener はDSNからgorm.DBを開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// ApplyEnv は設定された環境変数で cfg を上書きします。空の変数は無視されます。
func ApplyEnv(cfg *Config) {
	overrides := []struct {
		key string
		dst *string
	}{
		{"DB_USER", &cfg.User},
		{"DB_PASSWORD", &cfg.Password},
		{"DB_NAME", &cfg.Name},
		{"DB_HOST", &cfg.Host},
		{"DB_PORT", &cfg.Port},
		{"DB_SSLMODE", &cfg.SSLMode},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}
}

// BuildDSN はpgx形式のkey=value DSNを組み立てます。日付はUTCで扱います。
func BuildDSN(cfg Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	parts := []string{
		"host=" + cfg.Host,
		"port=" + cfg.Port,
		"user=" + cfg.User,
		"password=" + cfg.Password,
		"dbname=" + cfg.Name,
		"sslmode=" + sslMode,
		"TimeZone=UTC",
	}
	return strings.Join(parts, " ")
}

// OpenPostgres はPostgreSQL用のOpenerです。
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// ConnectWithRetry はtimeoutに達するまで一定間隔で接続を再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, Classify(err))
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Migrate は渡されたモデルのテーブルを作成・更新します。
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Ping はコネクションプールの疎通を確認します。
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return Classify(sqlDB.PingContext(ctx))
}

// Classify は接続断やタイムアウトを storeerr.ErrUnavailable でラップします。
// それ以外のエラーはそのまま返します。
func Classify(err error) error {
	if err == nil || errors.Is(err, storeerr.ErrUnavailable) {
		return err
	}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %w", storeerr.ErrUnavailable, err)
	}
	return err
}

func isUnavailable(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || pgconn.Timeout(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception, 57P01-03: server shutting down
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P0")
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
