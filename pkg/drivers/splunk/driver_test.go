package splunk_test

import (
	"errors"
	"testing"

	"github.com/strix-project/strix/internal/splunkapi"
	"github.com/strix-project/strix/pkg/drivers"
	"github.com/strix-project/strix/pkg/drivers/splunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceMock struct {
	results    []map[string]interface{}
	searches   []splunkapi.SavedSearch
	alerts     []splunkapi.FiredAlert
	oneshotErr error
	lastQuery  string
}

func (x *serviceMock) Oneshot(query string) ([]map[string]interface{}, error) {
	x.lastQuery = query
	return x.results, x.oneshotErr
}
func (x *serviceMock) SavedSearches() ([]splunkapi.SavedSearch, error) { return x.searches, nil }
func (x *serviceMock) FiredAlerts() ([]splunkapi.FiredAlert, error)   { return x.alerts, nil }

// newMockDriver returns a driver whose session factory records the
// built config and returns mock.
func newMockDriver(mock *serviceMock) (*splunk.Driver, *splunkapi.Config) {
	var captured splunkapi.Config
	driver := splunk.NewDriver()
	driver.SetServiceFactory(func(cfg splunkapi.Config) (splunkapi.Service, error) {
		captured = cfg
		return mock, nil
	})
	return driver, &captured
}

func TestConnectWithConnectionString(t *testing.T) {
	driver, captured := newMockDriver(&serviceMock{})

	err := driver.Connect("host=h1;port=9000;username=u;password=p", nil)
	require.NoError(t, err)
	assert.True(t, driver.IsConnected())

	assert.Equal(t, "h1", captured.Host)
	assert.Equal(t, 9000, captured.Port)
	assert.Equal(t, "u", captured.Username)
	assert.Equal(t, "p", captured.Password)
	// Defaults survive the merge.
	assert.Equal(t, "https", captured.Scheme)
	assert.False(t, captured.Verify)
}

func TestConnectWithParams(t *testing.T) {
	driver, captured := newMockDriver(&serviceMock{})

	err := driver.Connect("", map[string]interface{}{
		"host":     "h2",
		"username": "u",
		"password": "p",
		"verify":   true,
	})
	require.NoError(t, err)
	assert.True(t, driver.IsConnected())
	assert.Equal(t, 8089, captured.Port)
	assert.True(t, captured.Verify)
}

func TestConnectWithoutAnySource(t *testing.T) {
	driver, _ := newMockDriver(&serviceMock{})

	err := driver.Connect("", nil)
	require.Error(t, err)

	var userErr *drivers.UserInputError
	require.True(t, errors.As(err, &userErr))
	// The message enumerates every recognized parameter.
	for name := range splunk.ConnectArgs {
		assert.Contains(t, err.Error(), name+":")
	}
	assert.False(t, driver.IsConnected())
}

func TestConnectWithBothSources(t *testing.T) {
	driver, _ := newMockDriver(&serviceMock{})

	err := driver.Connect("host=h1", map[string]interface{}{"host": "h2"})
	var userErr *drivers.UserInputError
	require.True(t, errors.As(err, &userErr))
}

func TestConnectMissingArguments(t *testing.T) {
	driver, _ := newMockDriver(&serviceMock{})

	err := driver.Connect("host=h1", nil)
	require.Error(t, err)

	var missing *drivers.MissingArgumentError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"username", "password"}, missing.Missing)
	assert.False(t, driver.IsConnected())
}

func TestConnectVerifyCoercion(t *testing.T) {
	cases := []struct {
		value  interface{}
		expect bool
	}{
		{"True", true},
		{"true", true},
		{"TRUE", true},
		{"false", false},
		{"no", false},
		{true, true},
		{false, false},
		{123, false},
	}

	for _, c := range cases {
		driver, captured := newMockDriver(&serviceMock{})
		err := driver.Connect("", map[string]interface{}{
			"host":     "h1",
			"username": "u",
			"password": "p",
			"verify":   c.value,
		})
		require.NoError(t, err)
		assert.Equal(t, c.expect, captured.Verify, "verify=%v", c.value)
	}
}

func TestConnectInvalidPort(t *testing.T) {
	driver, _ := newMockDriver(&serviceMock{})

	err := driver.Connect("host=h1;port=eight;username=u;password=p", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestConnectUnrecognizedKeysFiltered(t *testing.T) {
	driver, captured := newMockDriver(&serviceMock{})

	err := driver.Connect("host=h1;username=u;password=p;debug=1;workspace=x", nil)
	require.NoError(t, err)
	assert.Equal(t, "h1", captured.Host)
}

func TestConnectFactoryFailure(t *testing.T) {
	cause := errors.New("authentication failed")
	driver := splunk.NewDriver()
	driver.SetServiceFactory(func(cfg splunkapi.Config) (splunkapi.Service, error) {
		return nil, cause
	})

	err := driver.Connect("host=h1;username=u;password=bad", nil)
	require.Error(t, err)

	var connErr *drivers.ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, driver.IsConnected())
}

func TestQueryBeforeConnect(t *testing.T) {
	driver := splunk.NewDriver()

	_, err := driver.Query("search index=main")
	assert.True(t, errors.Is(err, drivers.ErrNotConnected))

	_, err = driver.SavedSearches()
	assert.True(t, errors.Is(err, drivers.ErrNotConnected))

	_, err = driver.FiredAlerts()
	assert.True(t, errors.Is(err, drivers.ErrNotConnected))
}

func TestQueryResults(t *testing.T) {
	mock := &serviceMock{
		results: []map[string]interface{}{
			{"_raw": "log1", "host": "h1", "meta": map[string]interface{}{"index": "main"}},
			{"_raw": "log2", "host": "h2"},
		},
	}
	driver, _ := newMockDriver(mock)
	require.NoError(t, driver.Connect("host=h1;username=u;password=p", nil))

	table, err := driver.Query("search index=main | head 2")
	require.NoError(t, err)
	assert.Equal(t, "search index=main | head 2", mock.lastQuery)

	assert.Equal(t, 2, table.Length())
	assert.Contains(t, table.Columns(), "meta.index")
	assert.Equal(t, "main", table.Get(0, "meta.index"))
	assert.Equal(t, "h2", table.Get(1, "host"))
}

func TestQueryNoResults(t *testing.T) {
	driver, _ := newMockDriver(&serviceMock{})
	require.NoError(t, driver.Connect("host=h1;username=u;password=p", nil))

	table, err := driver.Query("search index=nothing")
	require.NoError(t, err)
	require.NotNil(t, table)
	assert.True(t, table.IsEmpty())
}

func TestQueryTransportFailure(t *testing.T) {
	mock := &serviceMock{oneshotErr: errors.New("connection reset")}
	driver, _ := newMockDriver(mock)
	require.NoError(t, driver.Connect("host=h1;username=u;password=p", nil))

	_, err := driver.Query("search *")
	var connErr *drivers.ConnectionError
	require.True(t, errors.As(err, &connErr))
}

func TestSavedSearches(t *testing.T) {
	mock := &serviceMock{
		searches: []splunkapi.SavedSearch{
			{Name: "Errors last hour", Query: "search error"},
			{Name: "Logins", Query: "search action=login"},
		},
	}
	driver, _ := newMockDriver(mock)
	require.NoError(t, driver.Connect("host=h1;username=u;password=p", nil))

	table, err := driver.SavedSearches()
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "query"}, table.Columns())
	assert.Equal(t, 2, table.Length())
	assert.Equal(t, "Errors last hour", table.Get(0, "name"))
	assert.Equal(t, "search action=login", table.Get(1, "query"))
}

func TestFiredAlerts(t *testing.T) {
	mock := &serviceMock{
		alerts: []splunkapi.FiredAlert{
			{Name: "alert_a", Count: 3},
			{Name: "alert_b", Count: 7},
		},
	}
	driver, _ := newMockDriver(mock)
	require.NoError(t, driver.Connect("host=h1;username=u;password=p", nil))

	table, err := driver.FiredAlerts()
	require.NoError(t, err)
	assert.Equal(t, []string{"count", "name"}, table.Columns())
	assert.Equal(t, "alert_a", table.Get(0, "name"))
	assert.Equal(t, 7, table.Get(1, "count"))
}

func TestFactoryRegistersSplunk(t *testing.T) {
	driver, err := drivers.New("splunk")
	require.NoError(t, err)
	assert.False(t, driver.IsConnected())
}
