package main

import (
	"os"
	"strings"

	cli "github.com/urfave/cli/v2"

	"github.com/strix-project/strix/internal"
	"github.com/strix-project/strix/pkg/drivers"

	// Register available drivers
	_ "github.com/strix-project/strix/pkg/drivers/athena"
	_ "github.com/strix-project/strix/pkg/drivers/postgres"
	_ "github.com/strix-project/strix/pkg/drivers/splunk"
)

var logger = internal.Logger

type arguments struct {
	Driver     string
	Connection string
	LogLevel   string
}

func main() {
	var args arguments

	app := &cli.App{
		Name:  "strix",
		Usage: "CLI utility of strix data-source drivers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "driver",
				Aliases:     []string{"d"},
				Usage:       "Driver name (" + strings.Join(drivers.Available(), ", ") + ")",
				Required:    true,
				EnvVars:     []string{"STRIX_DRIVER"},
				Destination: &args.Driver,
			},
			&cli.StringFlag{
				Name:        "connect",
				Aliases:     []string{"c"},
				Usage:       "Connection string such as 'host=splunk.example.com;username=admin;password=xxx'",
				Required:    true,
				EnvVars:     []string{"STRIX_CONNECT"},
				Destination: &args.Connection,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Aliases:     []string{"l"},
				Value:       "INFO",
				Usage:       "Log level (TRACE, DEBUG, INFO, WARN, ERROR)",
				Destination: &args.LogLevel,
			},
		},
		Before: func(c *cli.Context) error {
			internal.SetLogLevel(args.LogLevel)
			drivers.Logger = logger
			return nil
		},
		Commands: []*cli.Command{
			queryCommand(&args),
			savedSearchesCommand(&args),
			firedAlertsCommand(&args),
		},
	}

	internal.SetupErrorHandler()

	if err := app.Run(os.Args); err != nil {
		internal.HandleError(err)
		internal.FlushError()
		logger.WithError(err).Fatal("Abort")
	}
}
