package api

import (
	"github.com/gin-gonic/gin"

	"github.com/strix-project/strix/pkg/drivers"
)

func getSavedSearches(args *Arguments, c *gin.Context) (*apiResponse, apiError) {
	driver, apiErr := args.ensureDriver()
	if apiErr != nil {
		return nil, apiErr
	}

	lister, ok := driver.(drivers.SavedSearchLister)
	if !ok {
		return nil, wrapDriverError(drivers.ErrNotSupported)
	}

	table, err := lister.SavedSearches()
	if err != nil {
		return nil, wrapDriverError(err)
	}
	return &apiResponse{200, table}, nil
}

func getFiredAlerts(args *Arguments, c *gin.Context) (*apiResponse, apiError) {
	driver, apiErr := args.ensureDriver()
	if apiErr != nil {
		return nil, apiErr
	}

	lister, ok := driver.(drivers.FiredAlertLister)
	if !ok {
		return nil, wrapDriverError(drivers.ErrNotSupported)
	}

	table, err := lister.FiredAlerts()
	if err != nil {
		return nil, wrapDriverError(err)
	}
	return &apiResponse{200, table}, nil
}
