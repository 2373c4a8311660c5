package logs

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	INFO  Level = "INFO"
	WARN  Level = "WARN"
	ERROR Level = "ERROR"
	DEBUG Level = "DEBUG"
)

// levelPriority defines the priority of each log level
// higher value= more severe
var levelPriority = map[Level]int{
	DEBUG: 1,
	INFO:  2,
	WARN:  3,
	ERROR: 4,
}

var zapLevels = map[Level]zapcore.Level{
	DEBUG: zapcore.DebugLevel,
	INFO:  zapcore.InfoLevel,
	WARN:  zapcore.WarnLevel,
	ERROR: zapcore.ErrorLevel,
}

// ParseLevel maps a config string ("debug", "info", ...) to a Level.
// Unknown values fall back to INFO.
func ParseLevel(s string) Level {
	lvl := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelPriority[lvl]; ok {
		return lvl
	}
	return INFO
}

type Entry struct {
	TimeStamp time.Time              `json:"timestamp"`
	Level     Level                  `json:"level"`
	Module    string                 `json:"module,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// ring is the bounded in-memory buffer shared by a logger and its children.
type ring struct {
	mu      sync.Mutex
	entries []Entry
	maxSize int
}

// Logger writes structured records to zap and keeps the most recent ones in
// memory for the admin and health endpoints.
type Logger struct {
	zl     *zap.Logger
	ring   *ring
	level  Level
	module string
}

// level: minimum log level to record(e.g., INFO, WARN, ERROR,DEBUG)
//
// maxsize:maximum number of log entries kept in memory
//
// The returned logger only records into memory; use New to tee into zap.
func NewLogger(maxSize int, level Level) *Logger {
	return New(zap.NewNop(), maxSize, level)
}

// New wraps an existing zap logger.
func New(zl *zap.Logger, maxSize int, level Level) *Logger {
	if zl == nil {
		zl = zap.NewNop()
	}
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Logger{
		zl: zl,
		ring: &ring{
			entries: make([]Entry, 0, maxSize),
			maxSize: maxSize,
		},
		level: level,
	}
}

// NewProduction builds a JSON zap logger at the given level and wraps it.
func NewProduction(level Level, maxSize int) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevels[level])

	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return New(zl, maxSize, level), nil
}

// With returns a child logger annotated with the module name.
// Children share the parent's memory buffer.
func (l *Logger) With(module string) *Logger {
	return &Logger{
		zl:     l.zl.With(zap.String("module", module)),
		ring:   l.ring,
		level:  l.level,
		module: module,
	}
}

// Zap exposes the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	return l.zl
}

// Sync flushes buffered zap output.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

// log is the internal logging function
// it applies level filtering and ring buffer behavior
func (l *Logger) log(level Level, msg string, fields []zap.Field) {
	if ce := l.zl.Check(zapLevels[level], msg); ce != nil {
		ce.Write(fields...)
	}

	//filter logs below the current level
	if levelPriority[level] < levelPriority[l.level] {
		return
	}

	entry := Entry{
		TimeStamp: time.Now(),
		Level:     level,
		Module:    l.module,
		Message:   msg,
	}
	if len(fields) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range fields {
			f.AddTo(enc)
		}
		entry.Fields = enc.Fields
	}

	l.ring.mu.Lock()
	defer l.ring.mu.Unlock()

	if len(l.ring.entries) >= l.ring.maxSize {
		//remove oldest entry(ring behavior)
		l.ring.entries = l.ring.entries[1:]
	}
	l.ring.entries = append(l.ring.entries, entry)
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.log(DEBUG, msg, fields)
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.log(INFO, msg, fields)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.log(WARN, msg, fields)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.log(ERROR, msg, fields)
}

func (l *Logger) GetLast(n int) []Entry {
	l.ring.mu.Lock()
	defer l.ring.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if n > len(l.ring.entries) {
		out := make([]Entry, len(l.ring.entries))
		copy(out, l.ring.entries)
		return out
	}

	start := len(l.ring.entries) - n
	out := make([]Entry, n)
	copy(out, l.ring.entries[start:])
	return out
}
