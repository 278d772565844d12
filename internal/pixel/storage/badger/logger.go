package badger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// badgerLogger routes badger's printf style logging into zap.
type badgerLogger struct {
	logger *zap.Logger
}

func newBadgerLogger(logger *zap.Logger) badgerLogger {
	return badgerLogger{logger: logger.Named("badger").WithOptions(zap.AddCallerSkip(1))}
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(line(format, args))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(line(format, args))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(line(format, args))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(line(format, args))
}

func line(format string, args []interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
