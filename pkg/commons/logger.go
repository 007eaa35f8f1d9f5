package commons

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging surface shared by every service. It extends the
// sugared zap API with a benchmark helper and a context-aware trace hook.
type Logger interface {
	Level() zapcore.Level
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	DPanic(args ...interface{})
	DPanicf(template string, args ...interface{})
	Panic(args ...interface{})
	Panicf(template string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(template string, args ...interface{})
	Benchmark(functionName string, duration time.Duration)
	Tracef(ctx context.Context, format string, args ...interface{})
	Sync() error
}

type loggerOptions struct {
	name  string
	path  string
	level string
}

type LoggerOption func(*loggerOptions)

// Name sets the logger name, also used as the rotated file basename.
func Name(name string) LoggerOption {
	return func(o *loggerOptions) { o.name = name }
}

// Path directs output to rotated files under the given directory instead
// of stderr.
func Path(path string) LoggerOption {
	return func(o *loggerOptions) { o.path = path }
}

// Level sets the minimum level, parsed the zap way ("debug", "info", ...).
func Level(level string) LoggerOption {
	return func(o *loggerOptions) { o.level = level }
}

type applicationLogger struct {
	*zap.SugaredLogger
	level zapcore.Level
}

// NewApplicationLogger builds the process logger. Without options it logs
// JSON at info level to stderr; with Path it writes through lumberjack
// rotation.
func NewApplicationLogger(opts ...LoggerOption) (Logger, error) {
	options := &loggerOptions{
		name:  "application",
		level: "info",
	}
	for _, opt := range opts {
		opt(options)
	}

	level, err := zapcore.ParseLevel(options.level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	var sink zapcore.WriteSyncer
	if options.path != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(options.path, options.name+".log"),
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	} else {
		sink = zapcore.AddSync(os.Stderr)
	}

	core := zapcore.NewCore(encoder, sink, level)
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).
		Named(options.name).
		Sugar()

	return &applicationLogger{SugaredLogger: logger, level: level}, nil
}

func (l *applicationLogger) Level() zapcore.Level {
	return l.level
}

// Benchmark records how long a named operation took. Kept at debug so
// production logs stay quiet unless timing is being chased.
func (l *applicationLogger) Benchmark(functionName string, duration time.Duration) {
	l.Debugw("benchmark", "function", functionName, "duration", duration)
}

// Tracef logs at debug level with the request trace id attached when the
// context carries one.
func (l *applicationLogger) Tracef(ctx context.Context, format string, args ...interface{}) {
	if traceId := TraceId(ctx); traceId != "" {
		l.With("trace_id", traceId).Debugf(format, args...)
		return
	}
	l.Debugf(format, args...)
}
