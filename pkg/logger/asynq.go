package logger

import "fmt"

// AsynqLogger adapts the global logger to asynq.Logger.
type AsynqLogger struct{}

func NewAsynqLogger() *AsynqLogger { return &AsynqLogger{} }

func (AsynqLogger) Debug(args ...interface{}) { Log.Debug(fmt.Sprint(args...)) }
func (AsynqLogger) Info(args ...interface{})  { Log.Info(fmt.Sprint(args...)) }
func (AsynqLogger) Warn(args ...interface{})  { Log.Warn(fmt.Sprint(args...)) }
func (AsynqLogger) Error(args ...interface{}) { Log.Error(fmt.Sprint(args...)) }
func (AsynqLogger) Fatal(args ...interface{}) { Log.Fatal(fmt.Sprint(args...)) }
