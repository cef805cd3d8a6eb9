package app

import (
	"errors"
	"net"

	"github.com/mara-shop/internal/config"
	"github.com/mara-shop/internal/logger"
	"github.com/mara-shop/internal/provider"
	"github.com/mara-shop/internal/router"
	"github.com/mara-shop/internal/worker"
)

// BuildRunner 按启动模式组装 HTTP 与 worker 服务
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateMode(mode); err != nil {
		return nil, err
	}
	if mode == ModeWorker && !cfg.Queue.Enabled {
		return nil, errors.New("worker mode requires queue.enabled")
	}

	container := provider.NewContainer(cfg)
	var services []Service

	if mode != ModeWorker {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(listenAddr(cfg), engine))
	}

	// 未启用队列时由 API 进程在下单时直接扣减库存
	if cfg.Queue.Enabled && mode != ModeAPI {
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			_ = container.Close()
			return nil, err
		}
		services = append(services, workerService)
	} else if mode == ModeAll {
		logger.Infow("worker_skip_queue_disabled", "mode", mode)
	}

	runner := NewRunner(services...)
	runner.OnShutdown("container", container.Close)
	return runner, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	opts.Logger.Infow("app_start",
		"addr", listenAddr(opts.Config),
		"mode", opts.Mode,
		"cart_store", opts.Config.Cart.Store,
		"queue", opts.Config.Queue.Enabled,
	)
	return RunWithOptions(runner, opts)
}

func listenAddr(cfg *config.Config) string {
	return net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
}
