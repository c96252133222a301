package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSize = 10
	maxBack = 5
	maxAge  = 30
)

// NewLogger builds the application logger. Records go to the console and,
// when filePath is set, to a rotating file. An unknown level falls back to debug.
func NewLogger(filePath, serviceName, level string) (zerolog.Logger, error) {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		NoColor:    false,
	}

	writers := []io.Writer{consoleWriter}

	if filePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    maxSize, // megabytes before rotation
			MaxBackups: maxBack,
			MaxAge:     maxAge, // days
			Compress:   true,
		})
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.DebugLevel
	}

	multiWriter := zerolog.MultiLevelWriter(writers...)
	logger := zerolog.New(multiWriter).With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Logger().
		Level(lvl).
		Hook(RequestIDHook{})

	logger.Info().
		Str("logsFilePath", filePath).
		Str("serviceName", serviceName).
		Str("level", lvl.String()).
		Msg("logger initialized")

	return logger, nil
}
