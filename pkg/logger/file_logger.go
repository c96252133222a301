package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	fileMode = 0o644
	dirMode  = 0o755
)

// NewFileLogger opens a JSON zap logger appending to filePath. Missing parent
// directories are created.
func NewFileLogger(filePath string) (*zap.Logger, error) {
	clean := filepath.Clean(filePath)
	if err := os.MkdirAll(filepath.Dir(clean), dirMode); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(clean, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return nil, err
	}

	writer := zapcore.AddSync(file)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		writer,
		zap.InfoLevel,
	)
	return zap.New(core), nil
}
