package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/strix-project/strix/internal/repository"
	"github.com/strix-project/strix/pkg/api"
	"github.com/strix-project/strix/pkg/drivers"
	"github.com/strix-project/strix/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type driverMock struct {
	connected    bool
	connectErr   error
	connectDelay time.Duration
	connectCount int32
	queryErr     error
	table        *models.Table
	saved        *models.Table

	mutex     sync.Mutex
	lastQuery string
}

func (x *driverMock) Connect(connStr string, params map[string]interface{}) error {
	atomic.AddInt32(&x.connectCount, 1)
	if x.connectDelay > 0 {
		time.Sleep(x.connectDelay)
	}
	if x.connectErr != nil {
		return x.connectErr
	}
	x.connected = true
	return nil
}
func (x *driverMock) IsConnected() bool { return x.connected }
func (x *driverMock) Query(queryText string) (*models.Table, error) {
	x.mutex.Lock()
	x.lastQuery = queryText
	x.mutex.Unlock()
	if x.queryErr != nil {
		return nil, x.queryErr
	}
	return x.table, nil
}
func (x *driverMock) SavedSearches() (*models.Table, error) { return x.saved, nil }

func newTestServer(args *api.Arguments) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.SetupRoute(r.Group("/api/v1"), args)
	return r
}

func postSearch(r *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestExecSearch(t *testing.T) {
	mock := &driverMock{
		table: models.NewTable([]models.Row{
			{"host": "h1", "action": "login"},
			{"host": "h2", "action": "logout"},
		}),
	}
	history := repository.NewHistoryMock()
	r := newTestServer(&api.Arguments{
		DriverName: "splunk",
		Driver:     mock,
		History:    history,
	})

	w := postSearch(r, map[string]string{"query": "search index=main"})
	require.Equal(t, 201, w.Code)
	assert.Equal(t, "search index=main", mock.lastQuery)

	var resp struct {
		SearchID string `json:"search_id"`
		Table    struct {
			Columns []string     `json:"columns"`
			Rows    []models.Row `json:"rows"`
		} `json:"table"`
		MetaData struct {
			Driver   string `json:"driver"`
			RowCount int    `json:"row_count"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SearchID)
	assert.Equal(t, []string{"action", "host"}, resp.Table.Columns)
	assert.Equal(t, 2, resp.MetaData.RowCount)
	assert.Equal(t, "splunk", resp.MetaData.Driver)

	// The search must be recorded to history.
	require.Equal(t, 1, len(history.Records))
	assert.Equal(t, resp.SearchID, history.Records[0].SearchID)
	assert.Equal(t, "search index=main", history.Records[0].Query)
}

func TestExecSearchConcurrentRequests(t *testing.T) {
	mock := &driverMock{
		table:        models.NewTable(nil),
		connectDelay: 10 * time.Millisecond,
	}
	r := newTestServer(&api.Arguments{DriverName: "splunk", Driver: mock})

	var wg sync.WaitGroup
	codes := make([]int, 4)
	for i := 0; i < len(codes); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := postSearch(r, map[string]string{"query": "search *"})
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, 201, code)
	}
	// Requests share one session, only the first request connects.
	assert.Equal(t, int32(1), atomic.LoadInt32(&mock.connectCount))
}

func TestExecSearchWithoutQuery(t *testing.T) {
	r := newTestServer(&api.Arguments{Driver: &driverMock{}})

	w := postSearch(r, map[string]string{})
	assert.Equal(t, 400, w.Code)
}

func TestExecSearchBackendFailure(t *testing.T) {
	mock := &driverMock{
		queryErr: &drivers.ConnectionError{Driver: "splunk", Cause: errors.New("connection reset")},
	}
	r := newTestServer(&api.Arguments{Driver: mock})

	w := postSearch(r, map[string]string{"query": "search *"})
	assert.Equal(t, 502, w.Code)
}

func TestExecSearchConnectFailure(t *testing.T) {
	mock := &driverMock{
		connectErr: &drivers.MissingArgumentError{Missing: []string{"host"}},
	}
	r := newTestServer(&api.Arguments{Driver: mock})

	w := postSearch(r, map[string]string{"query": "search *"})
	assert.Equal(t, 400, w.Code)
}

func TestGetSavedSearches(t *testing.T) {
	mock := &driverMock{
		saved: models.NewTable([]models.Row{{"name": "Logins", "query": "search action=login"}}),
	}
	r := newTestServer(&api.Arguments{Driver: mock})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/saved_searches", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Logins")
}

func TestFiredAlertsNotSupported(t *testing.T) {
	// driverMock does not implement FiredAlertLister.
	r := newTestServer(&api.Arguments{Driver: &driverMock{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fired_alerts", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 400, w.Code)
}

func TestGetSearchHistory(t *testing.T) {
	history := repository.NewHistoryMock()
	history.PutSearch(&repository.SearchRecord{
		SearchID:    "abc-123",
		Driver:      "splunk",
		Query:       "search *",
		RowCount:    10,
		SubmittedAt: time.Now().UTC(),
	})
	r := newTestServer(&api.Arguments{Driver: &driverMock{}, History: history})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search/abc-123", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "abc-123")

	req = httptest.NewRequest(http.MethodGet, "/api/v1/search/no-such-id", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 404, w.Code)
}

func TestGetSearchHistoryDisabled(t *testing.T) {
	r := newTestServer(&api.Arguments{Driver: &driverMock{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search/abc-123", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 404, w.Code)
}
