package logging

import "go.uber.org/zap"

// NewDevLogger returns a zap-backed Logger that prints dev friendly output.
func NewDevLogger() Logger {
	l, _ := zap.NewDevelopment(zap.AddCallerSkip(2))
	return &ZapLogger{z: l.Sugar()}
}

// NewProdLogger returns a zap-backed Logger that outputs JSON.
func NewProdLogger() Logger {
	l, _ := zap.NewProduction(zap.AddCallerSkip(2))
	return &ZapLogger{z: l.Sugar()}
}

// ZapLogger adapts a zap SugaredLogger to Logger.
type ZapLogger struct {
	z *zap.SugaredLogger
}

func (z *ZapLogger) Warnw(msg string, keysAndValues ...interface{}) {
	z.z.Warnw(msg, keysAndValues...)
}

func (z *ZapLogger) Errorw(msg string, keysAndValues ...interface{}) {
	z.z.Errorw(msg, keysAndValues...)
}
