package diag

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName 为日志目录下的当前日志文件名。
const LogFileName = "zbench.log"

// Logger 为结构化事件日志器：单行 JSON（zap），可选 lumberjack 按 10MiB 轮转。
// 所有方法对 nil 接收者安全。
type Logger struct {
	z      *zap.Logger
	closer io.Closer
}

// NewLogger 通过配置的 level 初始化；dir 为空时写 stderr，否则写入 dir/zbench.log。
func NewLogger(corrID, level, dir string) *Logger {
	if strings.TrimSpace(dir) == "" {
		return NewLoggerTo(os.Stderr, corrID, level)
	}
	lj := &lumberjack.Logger{
		Filename:   filepath.Join(dir, LogFileName),
		MaxSize:    10, // MB
		MaxBackups: 5,
	}
	l := newLogger(zapcore.AddSync(lj), corrID, level)
	l.closer = lj
	return l
}

// NewLoggerTo 将日志写入任意 io.Writer（测试与 stderr 用）。
func NewLoggerTo(w io.Writer, corrID, level string) *Logger {
	return newLogger(zapcore.AddSync(w), corrID, level)
}

// NewNop 返回丢弃全部事件的日志器。
func NewNop() *Logger { return &Logger{z: zap.NewNop()} }

func newLogger(ws zapcore.WriteSyncer, corrID, level string) *Logger {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		EncodeTime:     utcTime,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	})
	core := zapcore.NewCore(enc, zapcore.Lock(ws), ParseLevel(level))
	z := zap.New(core)
	if corrID != "" {
		z = z.With(zap.String("corr_id", corrID))
	}
	return &Logger{z: z}
}

func utcTime(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
	pae.AppendString(t.UTC().Format(time.RFC3339))
}

// ParseLevel 解析 debug|info|warn|error；其他取值按 info。
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Close 刷新并关闭底层文件（若有）。
func (l *Logger) Close() error {
	if l == nil || l.z == nil {
		return nil
	}
	_ = l.z.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// Event 为标准事件字段集合。
type Event struct {
	Comp     string
	Stage    string // start|finish|error
	Code     string
	DurMS    int64
	Count    int64
	Strategy string
	Msg      string
	KV       map[string]string
}

func (l *Logger) log(lv zapcore.Level, ev Event) {
	if l == nil || l.z == nil {
		return
	}
	ce := l.z.Check(lv, ev.Msg)
	if ce == nil {
		return
	}
	fs := make([]zap.Field, 0, 7)
	fs = append(fs, zap.String("comp", ev.Comp), zap.String("stage", ev.Stage))
	if ev.Code != "" {
		fs = append(fs, zap.String("code", ev.Code))
	}
	if ev.DurMS != 0 {
		fs = append(fs, zap.Int64("dur_ms", ev.DurMS))
	}
	if ev.Count != 0 {
		fs = append(fs, zap.Int64("count", ev.Count))
	}
	if ev.Strategy != "" {
		fs = append(fs, zap.String("strategy", ev.Strategy))
	}
	if len(ev.KV) > 0 {
		fs = append(fs, zap.Any("kv", ev.KV))
	}
	ce.Write(fs...)
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg string) *Timer {
	l.log(zapcore.InfoLevel, Event{Comp: comp, Stage: "start", Msg: msg})
	return &Timer{l: l, comp: comp, t0: time.Now()}
}

// StartWith 记录带策略与键值的 start。
func (l *Logger) StartWith(comp, msg, strategy string, kv map[string]string) *Timer {
	l.log(zapcore.InfoLevel, Event{Comp: comp, Stage: "start", Strategy: strategy, Msg: msg, KV: kv})
	return &Timer{l: l, comp: comp, strategy: strategy, t0: time.Now()}
}

// Error 记录 error 事件。
func (l *Logger) Error(comp, code, msg string, durSince *time.Time) {
	l.ErrorWith(comp, code, msg, durSince, "", nil)
}

// ErrorWith 支持策略与键值。
func (l *Logger) ErrorWith(comp, code, msg string, durSince *time.Time, strategy string, kv map[string]string) {
	var dur int64
	if durSince != nil {
		dur = time.Since(*durSince).Milliseconds()
	}
	l.log(zapcore.ErrorLevel, Event{Comp: comp, Stage: "error", Code: code, DurMS: dur, Strategy: strategy, Msg: msg, KV: kv})
}

// InfoFinish 在已有起点的情况下记录 finish。
func (l *Logger) InfoFinish(comp, msg string, start time.Time, count int64) {
	l.log(zapcore.InfoLevel, Event{Comp: comp, Stage: "finish", DurMS: time.Since(start).Milliseconds(), Count: count, Msg: msg})
}

// Debug 输出调试事件（仅在 level=debug 时生效）。
func (l *Logger) Debug(comp, msg string, kv map[string]string) {
	l.log(zapcore.DebugLevel, Event{Comp: comp, Stage: "debug", Msg: msg, KV: kv})
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l        *Logger
	comp     string
	strategy string
	t0       time.Time
}

// Since 返回起点（供 Error 计算耗时）。
func (t *Timer) Since() *time.Time {
	if t == nil {
		return nil
	}
	return &t.t0
}

// Finish 记录 finish；可选 count 与键值。
func (t *Timer) Finish(msg string, count int64, kv map[string]string) {
	if t == nil || t.l == nil {
		return
	}
	t.l.log(zapcore.InfoLevel, Event{Comp: t.comp, Stage: "finish", DurMS: time.Since(t.t0).Milliseconds(), Count: count, Strategy: t.strategy, Msg: msg, KV: kv})
}
