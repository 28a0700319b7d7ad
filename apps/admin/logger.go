package main

import (
	"log"

	"github.com/trezcool/sanaa/core"
)

// stdLogger adapts the standard logger; the CLI has no error tracking service.
type stdLogger struct {
	std *log.Logger
}

var _ core.Logger = (*stdLogger)(nil)

func (l stdLogger) log(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l stdLogger) Debug(msg string, args ...interface{}) { l.log(msg, args) }
func (l stdLogger) Info(msg string, args ...interface{})  { l.log(msg, args) }
func (l stdLogger) Warn(msg string, args ...interface{})  { l.log(msg, args) }
func (l stdLogger) Error(msg string, args ...interface{}) { l.log(msg, args) }
func (l stdLogger) Fatal(msg string, args ...interface{}) {
	l.log(msg, args)
	l.std.Fatal(msg)
}
