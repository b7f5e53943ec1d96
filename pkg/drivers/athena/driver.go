// Package athena is a data-source driver executing SQL against AWS
// Athena. Queries block until the execution reaches a terminal state,
// then all result pages are materialized into a table.
package athena

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	awsathena "github.com/aws/aws-sdk-go/service/athena"
	"github.com/pkg/errors"

	"github.com/strix-project/strix/internal/adaptor"
	"github.com/strix-project/strix/pkg/drivers"
	"github.com/strix-project/strix/pkg/models"
)

func init() {
	drivers.Register("athena", func() drivers.Driver { return NewDriver() })
}

// ConnectArgs describes all recognized connection parameters.
var ConnectArgs = map[string]string{
	"region":          "(string) AWS region of the Athena workgroup",
	"database":        "(string) Glue database to query",
	"output_location": "(string) S3 path for query results, e.g. s3://bucket/prefix",
	"workgroup":       "(string) Athena workgroup (optional)",
	"poll_interval":   "(integer) Seconds between query status checks (the default is 1)",
	"timeout":         "(integer) Seconds to wait for query completion (the default is 300)",
}

var requiredArgs = []string{"region", "database", "output_location"}

var connectDefaults = map[string]interface{}{
	"poll_interval": 1,
	"timeout":       300,
}

// Driver runs queries on Athena. Session validity is not checked at
// Connect because Athena has no login; the first query surfaces
// credential problems.
type Driver struct {
	client    adaptor.AthenaClient
	factory   adaptor.AthenaClientFactory
	connected bool

	database     string
	outputPath   string
	workgroup    string
	pollInterval time.Duration
	timeout      time.Duration
}

// NewDriver returns an unconnected driver using the real SDK client.
func NewDriver() *Driver {
	return &Driver{factory: adaptor.NewAthenaClient}
}

// SetClientFactory replaces the SDK client constructor.
func (x *Driver) SetClientFactory(factory adaptor.AthenaClientFactory) { x.factory = factory }

// Connect validates parameters and builds the SDK client.
func (x *Driver) Connect(connStr string, params map[string]interface{}) error {
	var supplied map[string]interface{}
	switch {
	case connStr != "" && len(params) == 0:
		supplied = drivers.ParseConnectionString(connStr)
	case connStr == "" && len(params) > 0:
		supplied = params
	default:
		return &drivers.UserInputError{
			Driver:     "athena",
			Required:   requiredArgs,
			Recognized: ConnectArgs,
		}
	}

	merged := drivers.MergeParams(connectDefaults, supplied)
	if err := drivers.CheckRequired(merged, requiredArgs); err != nil {
		return err
	}
	merged = drivers.FilterParams(merged, ConnectArgs)

	pollInterval, err := drivers.CoerceInt(merged["poll_interval"])
	if err != nil {
		return errors.Wrap(err, "invalid 'poll_interval' parameter")
	}
	timeout, err := drivers.CoerceInt(merged["timeout"])
	if err != nil {
		return errors.Wrap(err, "invalid 'timeout' parameter")
	}

	x.database = toString(merged["database"])
	x.outputPath = toString(merged["output_location"])
	x.workgroup = toString(merged["workgroup"])
	x.pollInterval = time.Duration(pollInterval) * time.Second
	x.timeout = time.Duration(timeout) * time.Second

	x.client = x.factory(toString(merged["region"]))
	x.connected = true
	drivers.Logger.WithField("database", x.database).Info("Connected to Athena")
	return nil
}

// IsConnected returns true after a successful Connect.
func (x *Driver) IsConnected() bool { return x.connected }

// Query starts a query execution, waits for a terminal state and
// returns all result rows. The first result row is the header.
func (x *Driver) Query(queryText string) (*models.Table, error) {
	if !x.connected {
		return nil, drivers.ErrNotConnected
	}

	input := &awsathena.StartQueryExecutionInput{
		QueryString: aws.String(queryText),
		QueryExecutionContext: &awsathena.QueryExecutionContext{
			Database: aws.String(x.database),
		},
		ResultConfiguration: &awsathena.ResultConfiguration{
			OutputLocation: aws.String(x.outputPath),
		},
	}
	if x.workgroup != "" {
		input.WorkGroup = aws.String(x.workgroup)
	}

	started, err := x.client.StartQueryExecution(input)
	if err != nil {
		return nil, &drivers.ConnectionError{Driver: "athena", Cause: err}
	}
	queryID := aws.StringValue(started.QueryExecutionId)

	if err := x.waitForQuery(queryID); err != nil {
		return nil, err
	}
	return x.fetchResults(queryID)
}

func (x *Driver) waitForQuery(queryID string) error {
	deadline := time.Now().Add(x.timeout)

	for {
		output, err := x.client.GetQueryExecution(&awsathena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(queryID),
		})
		if err != nil {
			return &drivers.ConnectionError{Driver: "athena", Cause: err}
		}

		var state, reason string
		if output.QueryExecution != nil && output.QueryExecution.Status != nil {
			state = aws.StringValue(output.QueryExecution.Status.State)
			reason = aws.StringValue(output.QueryExecution.Status.StateChangeReason)
		}

		switch state {
		case awsathena.QueryExecutionStateSucceeded:
			return nil
		case awsathena.QueryExecutionStateFailed, awsathena.QueryExecutionStateCancelled:
			return errors.Errorf("query execution %s: %s", state, reason)
		}

		if time.Now().After(deadline) {
			return errors.Errorf("query %s timed out after %s", queryID, x.timeout)
		}
		time.Sleep(x.pollInterval)
	}
}

func (x *Driver) fetchResults(queryID string) (*models.Table, error) {
	var header []string
	var rows []models.Row
	var nextToken *string
	firstPage := true

	for {
		output, err := x.client.GetQueryResults(&awsathena.GetQueryResultsInput{
			QueryExecutionId: aws.String(queryID),
			NextToken:        nextToken,
		})
		if err != nil {
			return nil, &drivers.ConnectionError{Driver: "athena", Cause: err}
		}

		if output.ResultSet != nil {
			for i, resultRow := range output.ResultSet.Rows {
				values := make([]string, len(resultRow.Data))
				for j, datum := range resultRow.Data {
					values[j] = aws.StringValue(datum.VarCharValue)
				}

				// Athena repeats the header as the first row of the first page only.
				if firstPage && i == 0 {
					header = values
					continue
				}

				row := models.Row{}
				for j, value := range values {
					if j < len(header) {
						row[header[j]] = value
					}
				}
				rows = append(rows, row)
			}
		}
		nextToken = output.NextToken

		if nextToken == nil {
			break
		}
		firstPage = false
	}

	if len(rows) == 0 {
		drivers.Logger.Warn("query did not return any results")
	}
	return models.NewTable(rows), nil
}

// SavedSearches lists Athena named queries as a name/query table.
func (x *Driver) SavedSearches() (*models.Table, error) {
	if !x.connected {
		return nil, drivers.ErrNotConnected
	}

	var ids []*string
	var nextToken *string
	for {
		output, err := x.client.ListNamedQueries(&awsathena.ListNamedQueriesInput{
			NextToken: nextToken,
		})
		if err != nil {
			return nil, &drivers.ConnectionError{Driver: "athena", Cause: err}
		}
		ids = append(ids, output.NamedQueryIds...)
		if nextToken = output.NextToken; nextToken == nil {
			break
		}
	}

	// BatchGetNamedQuery accepts at most 50 IDs per call.
	var rows []models.Row
	for len(ids) > 0 {
		batch := ids
		if len(batch) > 50 {
			batch = batch[:50]
		}
		ids = ids[len(batch):]

		output, err := x.client.BatchGetNamedQuery(&awsathena.BatchGetNamedQueryInput{
			NamedQueryIds: batch,
		})
		if err != nil {
			return nil, &drivers.ConnectionError{Driver: "athena", Cause: err}
		}
		for _, query := range output.NamedQueries {
			rows = append(rows, models.Row{
				"name":  aws.StringValue(query.Name),
				"query": aws.StringValue(query.QueryString),
			})
		}
	}

	return models.NewTable(rows), nil
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
