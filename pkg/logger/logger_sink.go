package logger

import (
	"fmt"

	"github.com/kyp2022/ghostlink/pkg/utilities/timeutil"

	"github.com/rs/zerolog"
)

// AddSinkToLoggerInstance forwards every message logged through loggerInstance (and the
// loggers derived from it afterwards) to sinkFunction.
func AddSinkToLoggerInstance(loggerInstance *Logger, sinkFunction func(string, zerolog.Level, timeutil.TimeUTC)) {
	loggerInstance.sink = sinkFunction
}

func (l *Logger) activateSinkFormatted(level zerolog.Level, format string, v ...interface{}) {
	if l.sink == nil {
		return
	}
	l.activateSink(fmt.Sprintf(format, v...), level)
}

func (l *Logger) activateSink(msg string, level zerolog.Level) {
	if l.sink == nil || level < l.zl.GetLevel() {
		return
	}
	l.sink(msg, level, timeutil.NowUTC())
}
