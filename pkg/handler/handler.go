package handler

import (
	"github.com/m-mizutani/pmcoa/internal"
	"github.com/pkg/errors"
)

// Logger is common logger gateway
var Logger = internal.Logger

// Handler has main logic of a command
type Handler func(Arguments) error

// Run configures logger and error reporter by args and invokes handler.
func Run(handler Handler, args Arguments) error {
	SetLogLevel(args.LogLevel)
	internal.SetLogFormat(args.LogFormat)

	if err := internal.InitErrorHandler(args.SentryDSN, args.SentryEnv); err != nil {
		return err
	}
	defer internal.FlushError()

	Logger.WithFields(args.LogFields()).Debug("Start handler")

	if err := handler(args); err != nil {
		Logger.WithFields(args.LogFields()).Error("Failed Handler")
		err = errors.Wrap(err, "Failed Handler")
		internal.HandleError(err)
		return err
	}

	return nil
}

// SetLogLevel changes log level if level is not empty
func SetLogLevel(level string) {
	if level != "" {
		internal.SetupLogger(level)
	}
}
