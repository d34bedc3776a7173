package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LoggerAdaptorConfig struct {
	SlowThreshold             time.Duration
	IgnoreRecordNotFoundError bool
}

// loggerAdaptor sends gorm's statement log through logrus.
type loggerAdaptor struct {
	logger *logrus.Logger
	config LoggerAdaptorConfig
}

func NewLoggerAdaptor(l *logrus.Logger, cfg LoggerAdaptorConfig) logger.Interface {
	return &loggerAdaptor{logger: l, config: cfg}
}

// LogMode is a no-op; the logrus level decides what is written.
func (l *loggerAdaptor) LogMode(logger.LogLevel) logger.Interface {
	return l
}

func (l *loggerAdaptor) Info(ctx context.Context, format string, args ...interface{}) {
	l.entry(ctx).Infof(format, args...)
}

func (l *loggerAdaptor) Warn(ctx context.Context, format string, args ...interface{}) {
	l.entry(ctx).Warnf(format, args...)
}

func (l *loggerAdaptor) Error(ctx context.Context, format string, args ...interface{}) {
	l.entry(ctx).Errorf(format, args...)
}

// Trace logs failed statements at error, slow ones at warn and everything
// else at debug.
func (l *loggerAdaptor) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	switch {
	case err != nil &&
		l.logger.IsLevelEnabled(logrus.ErrorLevel) &&
		(!errors.Is(err, gorm.ErrRecordNotFound) || !l.config.IgnoreRecordNotFoundError):
		l.statement(ctx, elapsed, fc).WithError(err).Error("sql error")
	case l.config.SlowThreshold != 0 &&
		elapsed > l.config.SlowThreshold &&
		l.logger.IsLevelEnabled(logrus.WarnLevel):
		l.statement(ctx, elapsed, fc).Warnf("slow sql >= %v", l.config.SlowThreshold)
	case l.logger.IsLevelEnabled(logrus.DebugLevel):
		l.statement(ctx, elapsed, fc).Debug("sql trace")
	}
}

func (l *loggerAdaptor) entry(ctx context.Context) *logrus.Entry {
	return l.logger.WithContext(ctx).WithField("component", "catalog")
}

func (l *loggerAdaptor) statement(ctx context.Context, elapsed time.Duration, fc func() (string, int64)) *logrus.Entry {
	sql, rows := fc()
	fields := logrus.Fields{
		"elapsed": fmt.Sprintf("%.3fms", float64(elapsed.Microseconds())/1000),
		"sql":     sql,
		"rows":    rows,
	}
	if rows == -1 {
		fields["rows"] = "-"
	}
	return l.entry(ctx).WithFields(fields)
}
