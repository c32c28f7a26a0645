package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options настройки логгера
type Options struct {
	// Level уровень логирования: debug, info, warn, error
	Level string
	// File путь к файлу логов с ротацией. Пустая строка - только stdout.
	File string
}

// NewLogger создает логгер по переменным окружения LOG_LEVEL и LOG_FILE
func NewLogger() *zap.Logger {
	return New(Options{
		Level: os.Getenv("LOG_LEVEL"),
		File:  os.Getenv("LOG_FILE"),
	}, os.Stdout)
}

// New создает JSON-логгер, пишущий в out и, если задан файл, в файл с ротацией
func New(opts Options, out io.Writer) *zap.Logger {
	level := ParseLevel(opts.Level)
	encoder := zapcore.NewJSONEncoder(encoderConfig())

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)

	if opts.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		core = zapcore.NewTee(core, zapcore.NewCore(encoder, zapcore.AddSync(fileWriter), level))
	}

	return zap.New(core, zap.AddCaller())
}

// ParseLevel преобразует строку в уровень логирования. По умолчанию info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
