package worker

import (
	"context"
	"errors"

	"github.com/mara-shop/internal/config"
	"github.com/mara-shop/internal/constants"
	"github.com/mara-shop/internal/logger"
	"github.com/mara-shop/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 托管 asynq 消费端与定时调度器
type Service struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
}

// NewService 创建 worker 服务；快照保留天数为正时注册每日清理任务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = newAsynqLogger()
	serverCfg.ErrorHandler = asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		logger.Warnw("worker_task_failed", "type", task.Type(), "retried", retried, "max_retry", maxRetry, "error", err)
	})

	svc := &Service{server: asynq.NewServer(opt, serverCfg), mux: asynq.NewServeMux()}
	consumer.Register(svc.mux)

	if days := retentionDays(consumer); days > 0 {
		task, err := queue.NewCartSnapshotPurgeTask(queue.CartSnapshotPurgePayload{RetentionDays: days})
		if err != nil {
			return nil, err
		}
		svc.scheduler = asynq.NewScheduler(opt, &asynq.SchedulerOpts{Logger: newAsynqLogger()})
		if _, err := svc.scheduler.Register(constants.CartSnapshotPurgeCron, task, asynq.Queue(queue.DefaultQueue)); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

func retentionDays(consumer *Consumer) int {
	if consumer.Container == nil || consumer.Config == nil {
		return 0
	}
	return consumer.Config.Cart.SnapshotRetentionDays
}

// Name 服务名称
func (s *Service) Name() string {
	return "worker"
}

// Start 启动消费端与调度器，阻塞至上下文取消
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	if s.scheduler != nil {
		if err := s.scheduler.Start(); err != nil {
			return err
		}
		logger.Infow("worker_scheduler_started", "cron", constants.CartSnapshotPurgeCron)
	}
	<-ctx.Done()
	return nil
}

// Stop 先停调度器再停消费端，等待进行中的任务结束
func (s *Service) Stop(context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	if s.scheduler != nil {
		s.scheduler.Shutdown()
	}
	s.server.Shutdown()
	return nil
}
