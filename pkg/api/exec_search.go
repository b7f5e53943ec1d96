package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/strix-project/strix/internal/repository"
	"github.com/strix-project/strix/pkg/models"
)

// ExecSearchRequest is the body of POST /search.
type ExecSearchRequest struct {
	Query string `json:"query"`
}

type execSearchMetaData struct {
	Driver         string  `json:"driver"`
	RowCount       int     `json:"row_count"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// ExecSearchResponse returns the full result table; the search runs
// synchronously, there is no polling contract.
type ExecSearchResponse struct {
	SearchID string             `json:"search_id"`
	Table    *models.Table      `json:"table"`
	MetaData execSearchMetaData `json:"metadata"`
}

func execSearch(args *Arguments, c *gin.Context) (*apiResponse, apiError) {
	var req ExecSearchRequest
	if err := c.BindJSON(&req); err != nil {
		return nil, wrapUserError(err, 400, "Fail to parse requested body")
	}
	if req.Query == "" {
		return nil, newUserErrorf(400, "'query' field is required")
	}

	Logger.WithField("query", req.Query).Info("Start search")

	driver, apiErr := args.ensureDriver()
	if apiErr != nil {
		return nil, apiErr
	}

	startedAt := time.Now().UTC()
	table, err := driver.Query(req.Query)
	if err != nil {
		return nil, wrapDriverError(err)
	}
	elapsed := time.Now().UTC().Sub(startedAt)

	resp := ExecSearchResponse{
		SearchID: uuid.New().String(),
		Table:    table,
		MetaData: execSearchMetaData{
			Driver:         args.DriverName,
			RowCount:       table.Length(),
			ElapsedSeconds: elapsed.Seconds(),
		},
	}

	if history := args.history(); history != nil {
		record := &repository.SearchRecord{
			SearchID:       resp.SearchID,
			Driver:         args.DriverName,
			Query:          req.Query,
			RowCount:       table.Length(),
			ElapsedSeconds: elapsed.Seconds(),
			SubmittedAt:    startedAt,
		}
		if err := history.PutSearch(record); err != nil {
			// Failing to audit must not fail the search itself.
			Logger.WithError(err).Error("Fail to record search history")
		}
	} else {
		Logger.Debug("Search history is disabled, skip recording")
	}

	Logger.WithFields(logrus.Fields{
		"search_id": resp.SearchID,
		"rows":      resp.MetaData.RowCount,
	}).Info("Done search")

	return &apiResponse{201, &resp}, nil
}
