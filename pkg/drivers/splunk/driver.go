// Package splunk is a data-source driver that delegates
// authentication and query execution to the Splunk management API and
// reshapes results into tables.
package splunk

import (
	"github.com/strix-project/strix/internal/splunkapi"
	"github.com/strix-project/strix/pkg/drivers"
	"github.com/strix-project/strix/pkg/models"
)

func init() {
	drivers.Register("splunk", func() drivers.Driver { return NewDriver() })
}

// ServiceFactory opens an authenticated session from connection
// parameters. Replaceable for testing.
type ServiceFactory func(cfg splunkapi.Config) (splunkapi.Service, error)

// Driver connects and queries a Splunk instance. One instance owns at
// most one session and is not safe for concurrent use.
type Driver struct {
	service   splunkapi.Service
	connected bool
	factory   ServiceFactory
}

// NewDriver returns an unconnected driver using the REST binding.
func NewDriver() *Driver {
	return &Driver{
		factory: func(cfg splunkapi.Config) (splunkapi.Service, error) {
			return splunkapi.New(cfg)
		},
	}
}

// SetServiceFactory replaces the session factory.
func (x *Driver) SetServiceFactory(factory ServiceFactory) { x.factory = factory }

// Connect opens a session from a connection string or a parameter
// map. Exactly one of the two must be supplied.
func (x *Driver) Connect(connStr string, params map[string]interface{}) error {
	var supplied map[string]interface{}
	switch {
	case connStr != "" && len(params) == 0:
		supplied = drivers.ParseConnectionString(connStr)
	case connStr == "" && len(params) > 0:
		supplied = params
	default:
		return &drivers.UserInputError{
			Driver:     "splunk",
			Required:   requiredArgs,
			Recognized: ConnectArgs,
		}
	}

	merged := drivers.MergeParams(connectDefaults, supplied)
	if err := drivers.CheckRequired(merged, requiredArgs); err != nil {
		return err
	}

	cfg, err := buildConfig(drivers.FilterParams(merged, ConnectArgs))
	if err != nil {
		return err
	}

	service, err := x.factory(cfg)
	if err != nil {
		return &drivers.ConnectionError{Driver: "splunk", Cause: err}
	}

	x.service = service
	x.connected = true
	drivers.Logger.WithField("host", cfg.Host).Info("Connected to Splunk")
	return nil
}

// IsConnected returns true after a successful Connect.
func (x *Driver) IsConnected() bool { return x.connected }

// Query executes queryText in oneshot mode and materializes all
// records into a table. A query matching nothing returns an empty
// table with a warning log, not an error.
func (x *Driver) Query(queryText string) (*models.Table, error) {
	if !x.connected {
		return nil, drivers.ErrNotConnected
	}

	results, err := x.service.Oneshot(queryText)
	if err != nil {
		return nil, &drivers.ConnectionError{Driver: "splunk", Cause: err}
	}

	if len(results) == 0 {
		drivers.Logger.Warn("query did not return any results")
		return models.NewTable(nil), nil
	}

	rows := make([]models.Row, len(results))
	for i, record := range results {
		rows[i] = models.Row(record)
	}
	return models.NewTable(rows), nil
}

// SavedSearches returns the searches persisted on the service as a
// name/query table, in service order.
func (x *Driver) SavedSearches() (*models.Table, error) {
	if !x.connected {
		return nil, drivers.ErrNotConnected
	}

	searches, err := x.service.SavedSearches()
	if err != nil {
		return nil, &drivers.ConnectionError{Driver: "splunk", Cause: err}
	}

	rows := make([]models.Row, len(searches))
	for i, search := range searches {
		rows[i] = models.Row{"name": search.Name, "query": search.Query}
	}
	return models.NewTable(rows), nil
}

// FiredAlerts returns triggered alerts as a name/count table, in
// service order.
func (x *Driver) FiredAlerts() (*models.Table, error) {
	if !x.connected {
		return nil, drivers.ErrNotConnected
	}

	alerts, err := x.service.FiredAlerts()
	if err != nil {
		return nil, &drivers.ConnectionError{Driver: "splunk", Cause: err}
	}

	rows := make([]models.Row, len(alerts))
	for i, alert := range alerts {
		rows[i] = models.Row{"name": alert.Name, "count": alert.Count}
	}
	return models.NewTable(rows), nil
}
