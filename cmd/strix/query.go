package main

import (
	"strings"

	"github.com/itchyny/gojq"
	"github.com/k0kubun/pp"
	"github.com/pkg/errors"
	cli "github.com/urfave/cli/v2"

	"github.com/strix-project/strix/pkg/models"
)

type queryArguments struct {
	jqFilter string
	format   string
	debug    bool
}

func queryCommand(args *arguments) *cli.Command {
	var queryArgs queryArguments

	return &cli.Command{
		Name:      "query",
		Aliases:   []string{"q"},
		Usage:     "Run a search query and print the result table",
		ArgsUsage: "[query text]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "jq",
				Usage:       "jq query to filter result rows",
				Destination: &queryArgs.jqFilter,
			},
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Value:       "json",
				Usage:       "Output format (json or csv)",
				Destination: &queryArgs.format,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "Dump the raw result table",
				Destination: &queryArgs.debug,
			},
		},
		Action: func(c *cli.Context) error {
			queryText := strings.Join(c.Args().Slice(), " ")
			if queryText == "" {
				return errors.New("query text is required")
			}

			driver, err := connectDriver(args)
			if err != nil {
				return err
			}

			table, err := driver.Query(queryText)
			if err != nil {
				return err
			}

			if queryArgs.jqFilter != "" {
				if table, err = filterTable(table, queryArgs.jqFilter); err != nil {
					return err
				}
			}

			if queryArgs.debug {
				pp.Println(table.Rows())
			}
			return writeTable(table, queryArgs.format)
		},
	}
}

// filterTable applies a jq query to each row and rebuilds the table
// from the produced values. A scalar output is kept as a blank-keyed
// column to stay in row shape.
func filterTable(table *models.Table, jqFilter string) (*models.Table, error) {
	query, err := gojq.Parse(jqFilter)
	if err != nil {
		return nil, errors.Wrap(err, "fail to parse jq query")
	}

	var rows []models.Row
	for _, row := range table.Rows() {
		iter := query.Run(map[string]interface{}(row))
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}
			if err, ok := v.(error); ok {
				return nil, errors.Wrap(err, "fail to run jq query")
			}
			if v == nil {
				continue
			}

			if mapped, ok := v.(map[string]interface{}); ok {
				rows = append(rows, models.Row(mapped))
			} else {
				rows = append(rows, models.Row{"": v})
			}
		}
	}

	return models.NewTable(rows), nil
}
