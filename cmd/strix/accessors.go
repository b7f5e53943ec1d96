package main

import (
	"github.com/pkg/errors"
	cli "github.com/urfave/cli/v2"

	"github.com/strix-project/strix/pkg/drivers"
)

func savedSearchesCommand(args *arguments) *cli.Command {
	var format string

	return &cli.Command{
		Name:    "saved-searches",
		Aliases: []string{"ss"},
		Usage:   "List saved searches defined on the remote service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Value:       "json",
				Usage:       "Output format (json or csv)",
				Destination: &format,
			},
		},
		Action: func(c *cli.Context) error {
			driver, err := connectDriver(args)
			if err != nil {
				return err
			}

			lister, ok := driver.(drivers.SavedSearchLister)
			if !ok {
				return errors.Wrapf(drivers.ErrNotSupported, "driver %s has no saved searches", args.Driver)
			}

			table, err := lister.SavedSearches()
			if err != nil {
				return err
			}
			return writeTable(table, format)
		},
	}
}

func firedAlertsCommand(args *arguments) *cli.Command {
	var format string

	return &cli.Command{
		Name:    "fired-alerts",
		Aliases: []string{"fa"},
		Usage:   "List fired alerts on the remote service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Value:       "json",
				Usage:       "Output format (json or csv)",
				Destination: &format,
			},
		},
		Action: func(c *cli.Context) error {
			driver, err := connectDriver(args)
			if err != nil {
				return err
			}

			lister, ok := driver.(drivers.FiredAlertLister)
			if !ok {
				return errors.Wrapf(drivers.ErrNotSupported, "driver %s has no fired alerts", args.Driver)
			}

			table, err := lister.FiredAlerts()
			if err != nil {
				return err
			}
			return writeTable(table, format)
		},
	}
}
