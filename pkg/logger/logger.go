package logx

import (
	"os"

	"github.com/Chative-trip-planner/server/internal/core"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var DefaultLoggerOpts = &LoggerOpts{
	Environment: core.Development,
}

type LoggerOpts struct {
	Environment core.Environment
	// Service is attached to every event when set.
	Service string
}

func safe(opts ...LoggerOpts) *LoggerOpts {
	if len(opts) == 0 {
		return DefaultLoggerOpts
	}
	return &opts[0]
}

func Init(opts ...LoggerOpts) {
	o := safe(opts...)

	var ctx zerolog.Context
	if o.Environment.IsProduction() {
		ctx = zerolog.New(os.Stdout).With().Timestamp()
	} else {
		ctx = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Caller()
	}
	if o.Service != "" {
		ctx = ctx.Str("service", o.Service)
	}

	level := zerolog.InfoLevel
	if o.Environment.Verbose() {
		level = zerolog.DebugLevel
	}
	log.Logger = ctx.Logger().Level(level)
}

// Conversation returns a child logger tagged with the conversation id.
func Conversation(conversationID string) zerolog.Logger {
	return log.Logger.With().Str("conversation_id", conversationID).Logger()
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Panic() *zerolog.Event {
	return log.Panic()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
