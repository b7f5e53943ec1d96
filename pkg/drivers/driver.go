package drivers

import (
	"github.com/sirupsen/logrus"

	"github.com/strix-project/strix/pkg/models"
)

// Logger can be replaced by binaries to unify log output
var Logger = logrus.New()

// Driver is the common contract of data-source drivers. A driver is
// created unconnected; Connect must succeed before Query and the
// optional accessors are available.
type Driver interface {
	// Connect opens a session from either a connection string
	// ("key1=value1;key2=value2") or a parameter map. Exactly one of
	// the two must be non-empty.
	Connect(connStr string, params map[string]interface{}) error

	IsConnected() bool

	// Query submits queryText verbatim to the backend, blocks until
	// all results are available and returns them as a table. A query
	// matching nothing yields an empty table, not an error.
	Query(queryText string) (*models.Table, error)
}

// SavedSearchLister is an optional capability: enumeration of query
// definitions persisted on the remote service as a name/query table.
type SavedSearchLister interface {
	SavedSearches() (*models.Table, error)
}

// FiredAlertLister is an optional capability: enumeration of
// triggered alerts on the remote service as a name/count table.
type FiredAlertLister interface {
	FiredAlerts() (*models.Table, error)
}
