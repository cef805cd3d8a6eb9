package worker

import (
	"fmt"

	"github.com/mara-shop/internal/logger"

	"go.uber.org/zap"
)

// asynqLogger 将 asynq 内部日志转发到 zap
type asynqLogger struct {
	log *zap.SugaredLogger
}

func newAsynqLogger() *asynqLogger {
	return &asynqLogger{log: logger.Named("asynq")}
}

func (l *asynqLogger) Debug(args ...interface{}) { l.log.Debug(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...interface{}) { l.log.Info(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...interface{}) { l.log.Warn(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...interface{}) { l.log.Error(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.log.Fatal(fmt.Sprint(args...)) }
