package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/mara-shop/internal/app"
	"github.com/mara-shop/internal/config"
	"github.com/mara-shop/internal/logger"
	"github.com/mara-shop/internal/models"

	"github.com/gin-gonic/gin"
)

var weakSecretMarkers = []string{"change-me", "change-in-production", "your-secret-key"}

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	fmt.Println("\033[36m\033[1mMara Shop API\033[0m  \033[2mcart / catalog / checkout\033[0m")

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, *mode); err != nil {
		logger.Errorw("server_exit", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, mode string) error {
	release := cfg.Server.Mode == "release"
	if err := checkSessionSecret(cfg.Session.Secret, release); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Admin.APIKey) == "" {
		logger.Warnw("admin_api_disabled", "reason", "admin.api_key is empty")
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if err := models.AutoMigrate(nil); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if release {
		gin.SetMode(gin.ReleaseMode)
	}
	return app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	})
}

// checkSessionSecret release 模式下拒绝弱会话密钥，其余模式仅告警
func checkSessionSecret(secret string, release bool) error {
	if !isWeakSecret(secret) {
		return nil
	}
	if release {
		return errors.New("session.secret is weak or still the default value")
	}
	logger.Warnw("session_secret_weak", "hint", "configure a random secret of at least 32 bytes before going live")
	return nil
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	for _, marker := range weakSecretMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}
