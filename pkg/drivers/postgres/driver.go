// Package postgres is a data-source driver for PostgreSQL-compatible
// log stores, built on database/sql.
package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/strix-project/strix/pkg/drivers"
	"github.com/strix-project/strix/pkg/models"
)

func init() {
	drivers.Register("postgres", func() drivers.Driver { return NewDriver() })
}

// ConnectArgs describes all recognized connection parameters.
var ConnectArgs = map[string]string{
	"host":            "(string) The database host name",
	"port":            "(integer) The port number (the default is 5432)",
	"username":        "(string) The database account name",
	"password":        "(string) The password for the database account",
	"dbname":          "(string) The database name",
	"sslmode":         "(string) disable, require, verify-ca or verify-full (the default is 'disable')",
	"connect_timeout": "(integer) Connection timeout in seconds (optional)",
}

var requiredArgs = []string{"host", "username", "password", "dbname"}

var connectDefaults = map[string]interface{}{
	"port":    5432,
	"sslmode": "disable",
}

// Driver queries a PostgreSQL database. Unlike the log-search drivers
// it exposes Close because sql.DB holds real sockets.
type Driver struct {
	db        *sql.DB
	connected bool

	// open is replaceable for testing
	open func(dsn string) (*sql.DB, error)
}

// NewDriver returns an unconnected driver.
func NewDriver() *Driver {
	return &Driver{
		open: func(dsn string) (*sql.DB, error) { return sql.Open("postgres", dsn) },
	}
}

// SetOpener replaces the database opener.
func (x *Driver) SetOpener(open func(dsn string) (*sql.DB, error)) { x.open = open }

// BuildDSN converts merged connection parameters to a lib/pq DSN.
func BuildDSN(params map[string]interface{}) (string, error) {
	port, err := drivers.CoerceInt(params["port"])
	if err != nil {
		return "", fmt.Errorf("invalid 'port' parameter: %v", err)
	}

	parts := []string{
		fmt.Sprintf("host=%v", params["host"]),
		fmt.Sprintf("port=%d", port),
		fmt.Sprintf("user=%v", params["username"]),
		fmt.Sprintf("password=%v", params["password"]),
		fmt.Sprintf("dbname=%v", params["dbname"]),
		fmt.Sprintf("sslmode=%v", params["sslmode"]),
	}
	if v, ok := params["connect_timeout"]; ok {
		timeout, err := drivers.CoerceInt(v)
		if err != nil {
			return "", fmt.Errorf("invalid 'connect_timeout' parameter: %v", err)
		}
		parts = append(parts, fmt.Sprintf("connect_timeout=%d", timeout))
	}

	return strings.Join(parts, " "), nil
}

// Connect opens the database and verifies it with a ping.
func (x *Driver) Connect(connStr string, params map[string]interface{}) error {
	var supplied map[string]interface{}
	switch {
	case connStr != "" && len(params) == 0:
		supplied = drivers.ParseConnectionString(connStr)
	case connStr == "" && len(params) > 0:
		supplied = params
	default:
		return &drivers.UserInputError{
			Driver:     "postgres",
			Required:   requiredArgs,
			Recognized: ConnectArgs,
		}
	}

	merged := drivers.MergeParams(connectDefaults, supplied)
	if err := drivers.CheckRequired(merged, requiredArgs); err != nil {
		return err
	}

	dsn, err := BuildDSN(drivers.FilterParams(merged, ConnectArgs))
	if err != nil {
		return err
	}

	db, err := x.open(dsn)
	if err != nil {
		return &drivers.ConnectionError{Driver: "postgres", Cause: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return &drivers.ConnectionError{Driver: "postgres", Cause: err}
	}

	x.db = db
	x.connected = true
	drivers.Logger.WithField("host", merged["host"]).Info("Connected to PostgreSQL")
	return nil
}

// IsConnected returns true after a successful Connect.
func (x *Driver) IsConnected() bool { return x.connected }

// Query runs queryText and scans all rows into a table. []byte cells
// are normalized to string.
func (x *Driver) Query(queryText string) (*models.Table, error) {
	if !x.connected {
		return nil, drivers.ErrNotConnected
	}

	result, err := x.db.Query(queryText)
	if err != nil {
		return nil, &drivers.ConnectionError{Driver: "postgres", Cause: err}
	}
	defer result.Close()

	columns, err := result.Columns()
	if err != nil {
		return nil, err
	}

	var rows []models.Row
	for result.Next() {
		values := make([]interface{}, len(columns))
		for i := range values {
			var v interface{}
			values[i] = &v
		}
		if err := result.Scan(values...); err != nil {
			return nil, err
		}

		row := models.Row{}
		for i, column := range columns {
			v := *(values[i].(*interface{}))
			if raw, ok := v.([]byte); ok {
				v = string(raw)
			}
			row[column] = v
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		drivers.Logger.Warn("query did not return any results")
	}
	return models.NewTable(rows), nil
}

// Close releases the underlying connection pool.
func (x *Driver) Close() error {
	if x.db == nil {
		return nil
	}
	x.connected = false
	return x.db.Close()
}
