package logger

import (
	"errors"

	"github.com/rollbar/rollbar-go"
	"go.uber.org/zap/zapcore"
)

// RollbarConfig configures error reporting
type RollbarConfig struct {
	Token       string
	Environment string
	CodeVersion string
	ServerHost  string
}

// rollbarCore forwards error-level entries to Rollbar.
// Fields are flattened into the custom data map of the item.
type rollbarCore struct {
	zapcore.LevelEnabler
	fields []zapcore.Field
}

// NewRollbarCore configures the global Rollbar notifier and returns a core
// that reports entries at error level and above. It returns nil when no
// token is configured so callers can pass the result to WithCore directly.
func NewRollbarCore(cfg RollbarConfig) zapcore.Core {
	if cfg.Token == "" {
		return nil
	}
	rollbar.SetToken(cfg.Token)
	rollbar.SetEnvironment(cfg.Environment)
	rollbar.SetCodeVersion(cfg.CodeVersion)
	rollbar.SetServerHost(cfg.ServerHost)
	rollbar.SetEnabled(true)
	return &rollbarCore{LevelEnabler: zapcore.ErrorLevel}
}

// FlushRollbar waits for queued Rollbar items to be sent
func FlushRollbar() {
	rollbar.Wait()
}

func (c *rollbarCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &rollbarCore{LevelEnabler: c.LevelEnabler, fields: merged}
}

func (c *rollbarCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *rollbarCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	var cause error
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if err, ok := f.Interface.(error); ok && cause == nil {
				cause = err
				continue
			}
		}
		f.AddTo(enc)
	}
	if cause == nil {
		cause = errors.New(ent.Message)
	}

	custom := enc.Fields
	custom["message"] = ent.Message
	if ent.LoggerName != "" {
		custom["logger"] = ent.LoggerName
	}

	level := rollbar.ERR
	if ent.Level >= zapcore.DPanicLevel {
		level = rollbar.CRIT
	}
	rollbar.ErrorWithExtras(level, cause, custom)
	return nil
}

func (c *rollbarCore) Sync() error {
	rollbar.Wait()
	return nil
}
