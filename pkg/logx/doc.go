// Package logx provides a small structured logging facade over zerolog.
//
// Services receive a logx.Logger in their constructors; the zero value is a
// safe no-op, so tests can pass Logger{} without wiring sinks. The Service
// type owns the sinks (console, file) and supports live reconfiguration via
// Apply() without invalidating loggers already handed out.
package logx
