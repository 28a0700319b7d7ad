package core

// Logger logs messages locally and optionally reports them to an external
// error tracking service. Extra args are attached to the report as-is; an
// auth.User arg identifies the signed-in Google identity as the report's
// person (see services/logger).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
