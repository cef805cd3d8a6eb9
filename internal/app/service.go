package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultStopTimeout = 10 * time.Second

// Service 可由 Runner 托管的长驻组件
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 并发启动服务，任一服务退出或收到信号后统一停止
type Runner struct {
	services []Service
	closers  []namedCloser
}

type namedCloser struct {
	name string
	fn   func() error
}

// NewRunner 创建服务运行器
func NewRunner(services ...Service) *Runner {
	return &Runner{services: services}
}

// OnShutdown 注册在全部服务停止后执行的资源释放函数，按注册逆序执行
func (r *Runner) OnShutdown(name string, fn func() error) {
	if r == nil || fn == nil {
		return
	}
	r.closers = append(r.closers, namedCloser{name: name, fn: fn})
}

// RunWithOptions 运行服务并处理系统信号
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

// Run 启动全部服务并阻塞，上下文取消视为正常退出
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	for i, svc := range r.services {
		if svc == nil {
			return fmt.Errorf("service #%d is nil", i)
		}
	}
	if stopTimeout <= 0 {
		stopTimeout = defaultStopTimeout
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	exited := make(chan error, len(r.services))
	for _, svc := range r.services {
		wg.Add(1)
		go func(svc Service) {
			defer wg.Done()
			log.Infow("service_start", "service", svc.Name())
			err := svc.Start(runCtx)
			log.Infow("service_exit", "service", svc.Name(), "error", err)
			exited <- err
		}(svc)
	}

	var runErr error
	select {
	case <-runCtx.Done():
		runErr = ctx.Err()
	case runErr = <-exited:
	}
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	r.stopServices(stopCtx, log)
	waitGroupOrDone(stopCtx, &wg)
	r.runClosers(log)

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// stopServices 按注册逆序停止服务
func (r *Runner) stopServices(ctx context.Context, log *zap.SugaredLogger) {
	for i := len(r.services) - 1; i >= 0; i-- {
		svc := r.services[i]
		if err := svc.Stop(ctx); err != nil {
			log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}
}

func (r *Runner) runClosers(log *zap.SugaredLogger) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		closer := r.closers[i]
		if err := closer.fn(); err != nil {
			log.Errorw("shutdown_hook_failed", "name", closer.name, "error", err)
		}
	}
}

func waitGroupOrDone(ctx context.Context, wg *sync.WaitGroup) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
