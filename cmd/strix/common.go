package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/strix-project/strix/pkg/drivers"
	"github.com/strix-project/strix/pkg/models"
)

func connectDriver(args *arguments) (drivers.Driver, error) {
	driver, err := drivers.New(args.Driver)
	if err != nil {
		return nil, err
	}

	if err := driver.Connect(args.Connection, nil); err != nil {
		return nil, errors.Wrapf(err, "fail to connect %s", args.Driver)
	}
	return driver, nil
}

func writeTable(table *models.Table, format string) error {
	switch format {
	case "csv":
		return table.WriteCSV(os.Stdout)
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(table)
	default:
		return errors.Errorf("unsupported output format %q, must be json or csv", format)
	}
}
