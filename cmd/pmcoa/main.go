package main

import (
	"os"

	"github.com/m-mizutani/pmcoa/pkg/handler"
	cli "github.com/urfave/cli/v2"
)

var logger = handler.Logger

func main() {
	var args handler.Arguments

	app := &cli.App{
		Name:  "pmcoa",
		Usage: "Build indexed corpus from PMC Open Access bulk text packages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Aliases:     []string{"l"},
				Usage:       "Log level [TRACE|DEBUG|INFO|WARN|ERROR]",
				Value:       "INFO",
				EnvVars:     []string{"LOG_LEVEL"},
				Destination: &args.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "Log format [text|json]",
				Value:       "text",
				EnvVars:     []string{"LOG_FORMAT"},
				Destination: &args.LogFormat,
			},
			&cli.StringFlag{
				Name:        "sentry-dsn",
				Usage:       "Sentry DSN to report errors",
				EnvVars:     []string{"SENTRY_DSN"},
				Destination: &args.SentryDSN,
			},
			&cli.StringFlag{
				Name:        "sentry-env",
				Usage:       "Sentry environment",
				EnvVars:     []string{"SENTRY_ENVIRONMENT"},
				Destination: &args.SentryEnv,
			},
		},
		Commands: []*cli.Command{
			buildCommand(&args),
			inspectCommand(&args),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.WithError(err).Fatal("Abort")
	}
}
