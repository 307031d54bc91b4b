package core

import (
	"io"
	"os"
	"sync"
	"time"
	"unsafe"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	if singleton == nil {
		once.Do(
			func() {
				l := log.NewWithOptions(os.Stderr, log.Options{
					ReportCaller:    true,
					ReportTimestamp: true,
					TimeFormat:      time.RFC3339,
					CallerOffset:    1,
					Prefix:          "Hearth 🔥 ",
				})
				l.SetLevel(log.DebugLevel)
				singleton = &logger{l}
			})
	}
	return singleton
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

// LogFatal reports an unrecoverable condition. The process keeps running so
// the caller can unwind and shut down cleanly.
func LogFatal(msg string, args ...interface{}) {
	getLogger().Logf(log.FatalLevel, msg, args...)
}

// loggingStats lives in the subsystem arena.
type loggingStats struct {
	BytesWritten  uint64
	WriteCount    uint64
	WriteFailures uint64
}

type LoggingConfig struct {
	// File receives a copy of every log line. Empty disables the file sink.
	File string
	// Level is one of debug, info, warn, error, fatal.
	Level string
}

// LoggingSystem tees the engine logger into a log file.
type LoggingSystem struct {
	stats *loggingStats
	file  *os.File
}

func LoggingSystemRequirement(config LoggingConfig) uint64 {
	return uint64(unsafe.Sizeof(loggingStats{}))
}

// countingWriter forwards to the log file and records what went through.
type countingWriter struct {
	w     io.Writer
	stats *loggingStats
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.stats.WriteCount++
	cw.stats.BytesWritten += uint64(n)
	if err != nil {
		cw.stats.WriteFailures++
	}
	return n, err
}

func NewLoggingSystem(config LoggingConfig, block []byte) (*LoggingSystem, error) {
	stats, err := placeState[loggingStats](block, "logging system")
	if err != nil {
		return nil, err
	}

	ls := &LoggingSystem{stats: stats}

	if config.Level != "" {
		level, err := log.ParseLevel(config.Level)
		if err != nil {
			LogWarn("unknown log level '%s', keeping %s", config.Level, getLogger().GetLevel())
		} else {
			getLogger().SetLevel(level)
		}
	}

	if config.File != "" {
		f, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			LogError("unable to open log file '%s' for writing: %s", config.File, err)
			return nil, err
		}
		ls.file = f
		getLogger().SetOutput(io.MultiWriter(os.Stderr, &countingWriter{w: f, stats: stats}))
	}
	return ls, nil
}

// BytesWritten reports how much has been written to the log file.
func (ls *LoggingSystem) BytesWritten() uint64 {
	if ls == nil || ls.stats == nil {
		return 0
	}
	return ls.stats.BytesWritten
}

func (ls *LoggingSystem) Shutdown() error {
	if ls == nil {
		return nil
	}
	getLogger().SetOutput(os.Stderr)
	ls.stats = nil
	if ls.file != nil {
		err := ls.file.Close()
		ls.file = nil
		return err
	}
	return nil
}
