package httpcontroller

import (
	"fmt"
	"io"
	"sync/atomic"

	gommonlog "github.com/labstack/gommon/log"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
)

// echoLogger routes Echo's internal logging into our logger. Output, prefix
// and header settings are ignored; the level filters messages before they
// reach the logger.
type echoLogger struct {
	log   logger.Logger
	level atomic.Uint32
}

func newEchoLogger(log logger.Logger, debug bool) *echoLogger {
	l := &echoLogger{log: log}
	lvl := gommonlog.INFO
	if debug {
		lvl = gommonlog.DEBUG
	}
	l.level.Store(uint32(lvl))
	return l
}

func (l *echoLogger) enabled(lvl gommonlog.Lvl) bool {
	return lvl >= l.Level()
}

func (l *echoLogger) Output() io.Writer   { return io.Discard }
func (l *echoLogger) SetOutput(io.Writer) {}
func (l *echoLogger) Prefix() string      { return "" }
func (l *echoLogger) SetPrefix(string)    {}
func (l *echoLogger) SetHeader(string)    {}

func (l *echoLogger) Level() gommonlog.Lvl {
	return gommonlog.Lvl(l.level.Load())
}

func (l *echoLogger) SetLevel(v gommonlog.Lvl) {
	l.level.Store(uint32(v))
}

func (l *echoLogger) Print(i ...any)                 { l.Info(i...) }
func (l *echoLogger) Printf(format string, a ...any) { l.Infof(format, a...) }
func (l *echoLogger) Printj(j gommonlog.JSON)        { l.Infoj(j) }

func (l *echoLogger) Debug(i ...any) {
	if l.enabled(gommonlog.DEBUG) {
		l.log.Debug(fmt.Sprint(i...))
	}
}

func (l *echoLogger) Debugf(format string, a ...any) {
	if l.enabled(gommonlog.DEBUG) {
		l.log.Debug(fmt.Sprintf(format, a...))
	}
}

func (l *echoLogger) Debugj(j gommonlog.JSON) {
	if l.enabled(gommonlog.DEBUG) {
		l.log.Debug("echo", logger.Any("data", j))
	}
}

func (l *echoLogger) Info(i ...any) {
	if l.enabled(gommonlog.INFO) {
		l.log.Info(fmt.Sprint(i...))
	}
}

func (l *echoLogger) Infof(format string, a ...any) {
	if l.enabled(gommonlog.INFO) {
		l.log.Info(fmt.Sprintf(format, a...))
	}
}

func (l *echoLogger) Infoj(j gommonlog.JSON) {
	if l.enabled(gommonlog.INFO) {
		l.log.Info("echo", logger.Any("data", j))
	}
}

func (l *echoLogger) Warn(i ...any) {
	if l.enabled(gommonlog.WARN) {
		l.log.Warn(fmt.Sprint(i...))
	}
}

func (l *echoLogger) Warnf(format string, a ...any) {
	if l.enabled(gommonlog.WARN) {
		l.log.Warn(fmt.Sprintf(format, a...))
	}
}

func (l *echoLogger) Warnj(j gommonlog.JSON) {
	if l.enabled(gommonlog.WARN) {
		l.log.Warn("echo", logger.Any("data", j))
	}
}

func (l *echoLogger) Error(i ...any) {
	if l.enabled(gommonlog.ERROR) {
		l.log.Error(fmt.Sprint(i...))
	}
}

func (l *echoLogger) Errorf(format string, a ...any) {
	if l.enabled(gommonlog.ERROR) {
		l.log.Error(fmt.Sprintf(format, a...))
	}
}

func (l *echoLogger) Errorj(j gommonlog.JSON) {
	if l.enabled(gommonlog.ERROR) {
		l.log.Error("echo", logger.Any("data", j))
	}
}

// Fatal variants panic instead of exiting so deferred shutdown still runs.
func (l *echoLogger) Fatal(i ...any) {
	msg := fmt.Sprint(i...)
	l.log.Error(msg)
	panic("echo fatal: " + msg)
}

func (l *echoLogger) Fatalf(format string, a ...any) {
	l.Fatal(fmt.Sprintf(format, a...))
}

func (l *echoLogger) Fatalj(j gommonlog.JSON) {
	l.Fatal(fmt.Sprint(j))
}

func (l *echoLogger) Panic(i ...any) {
	msg := fmt.Sprint(i...)
	l.log.Error(msg)
	panic(msg)
}

func (l *echoLogger) Panicf(format string, a ...any) {
	l.Panic(fmt.Sprintf(format, a...))
}

func (l *echoLogger) Panicj(j gommonlog.JSON) {
	l.Panic(fmt.Sprint(j))
}
