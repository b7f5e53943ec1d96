package api

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/strix-project/strix/internal/repository"
	"github.com/strix-project/strix/pkg/drivers"
)

var Logger = logrus.New()

// Arguments carries the facade configuration. Driver and History can
// be injected for testing; when nil they are built from DriverName,
// Connection and HistoryTable on first use.
type Arguments struct {
	DriverName   string
	Connection   string
	Region       string
	HistoryTable string

	Driver  drivers.Driver
	History repository.HistoryRepository

	// mutex serializes lazy construction and Connect. Drivers are not
	// safe for concurrent use while connecting, and gin runs handlers
	// in parallel goroutines.
	mutex sync.Mutex
}

// ensureDriver connects lazily so the server can start before the
// backend is reachable. Only the first request pays the connect cost.
func (x *Arguments) ensureDriver() (drivers.Driver, apiError) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	if x.Driver == nil {
		driver, err := drivers.New(x.DriverName)
		if err != nil {
			return nil, wrapUserError(err, 400, "Unsupported driver")
		}
		x.Driver = driver
	}

	if !x.Driver.IsConnected() {
		if err := x.Driver.Connect(x.Connection, nil); err != nil {
			return nil, wrapDriverError(err)
		}
	}
	return x.Driver, nil
}

func (x *Arguments) history() repository.HistoryRepository {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	if x.History == nil && x.HistoryTable != "" {
		x.History = repository.NewHistoryDynamoDB(x.Region, x.HistoryTable)
	}
	return x.History
}

type apiResponse struct {
	Code    int
	Message interface{}
}

type handler func(args *Arguments, c *gin.Context) (*apiResponse, apiError)

func handleRequest(args *Arguments, c *gin.Context, hdlr handler) {
	resp, err := hdlr(args, c)
	if err != nil {
		Logger.WithFields(logrus.Fields{
			"error": err.Message(),
			"code":  err.Code(),
			"path":  c.FullPath(),
		}).Error("Request failed")
		c.JSON(err.Code(), gin.H{"message": err.Message()})
	} else {
		c.JSON(resp.Code, resp.Message)
	}
}

// SetupRoute binds the facade endpoints under r.
func SetupRoute(r *gin.RouterGroup, args *Arguments) {
	r.POST("/search", func(c *gin.Context) {
		handleRequest(args, c, execSearch)
	})
	r.GET("/search", func(c *gin.Context) {
		handleRequest(args, c, listSearches)
	})
	r.GET("/search/:search_id", func(c *gin.Context) {
		handleRequest(args, c, getSearch)
	})
	r.GET("/saved_searches", func(c *gin.Context) {
		handleRequest(args, c, getSavedSearches)
	})
	r.GET("/fired_alerts", func(c *gin.Context) {
		handleRequest(args, c, getFiredAlerts)
	})
}
