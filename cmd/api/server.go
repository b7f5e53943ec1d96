package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/strix-project/strix/internal"
	"github.com/strix-project/strix/pkg/api"
	"github.com/strix-project/strix/pkg/drivers"

	// Register available drivers
	_ "github.com/strix-project/strix/pkg/drivers/athena"
	_ "github.com/strix-project/strix/pkg/drivers/postgres"
	_ "github.com/strix-project/strix/pkg/drivers/splunk"
)

var logger = internal.Logger

type parameters struct {
	addr string
	port int
}

func main() {
	var args api.Arguments
	var params parameters
	var logLevel string

	api.Logger = logger
	drivers.Logger = logger

	app := &cli.App{
		Name:  "api",
		Usage: "strix search API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Aliases:     []string{"a"},
				Value:       "127.0.0.1",
				Usage:       "Bind address",
				Destination: &params.addr,
			},
			&cli.IntFlag{
				Name:        "port",
				Aliases:     []string{"p"},
				Value:       10080,
				Usage:       "Bind port number",
				Destination: &params.port,
			},
			&cli.StringFlag{
				Name:        "driver",
				Aliases:     []string{"d"},
				Required:    true,
				Usage:       "Driver name (splunk, athena, postgres)",
				EnvVars:     []string{"STRIX_DRIVER"},
				Destination: &args.DriverName,
			},
			&cli.StringFlag{
				Name:        "connect",
				Aliases:     []string{"c"},
				Required:    true,
				Usage:       "Connection string passed to the driver",
				EnvVars:     []string{"STRIX_CONNECT"},
				Destination: &args.Connection,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Aliases:     []string{"l"},
				Value:       "INFO",
				Usage:       "Log level (TRACE, DEBUG, INFO, WARN, ERROR)",
				Destination: &logLevel,
			},

			// Optional parameters
			&cli.StringFlag{
				Name:        "history-table",
				Usage:       "DynamoDB table name for search history (disabled when empty)",
				EnvVars:     []string{"STRIX_HISTORY_TABLE"},
				Destination: &args.HistoryTable,
			},
			&cli.StringFlag{
				Name:        "region",
				Aliases:     []string{"r"},
				Usage:       "AWS region of the history table",
				EnvVars:     []string{"AWS_REGION"},
				Destination: &args.Region,
			},
		},

		Action: func(c *cli.Context) error {
			internal.SetLogLevel(logLevel)
			logger.WithFields(logrus.Fields{
				"driver": args.DriverName,
				"params": params,
			}).Info("Start API server")

			r := gin.Default()
			v1 := r.Group("/api/v1")
			api.SetupRoute(v1, &args)

			bindAddr := fmt.Sprintf("%s:%d", params.addr, params.port)
			return r.Run(bindAddr)
		},
	}

	internal.SetupErrorHandler()

	if err := app.Run(os.Args); err != nil {
		internal.HandleError(err)
		internal.FlushError()
		logger.WithError(err).Fatal("Server error")
	}
}
