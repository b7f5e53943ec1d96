package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/strix-project/strix/internal/repository"
)

type listSearchesResponse struct {
	Searches []*repository.SearchRecord `json:"searches"`
}

func getSearch(args *Arguments, c *gin.Context) (*apiResponse, apiError) {
	history := args.history()
	if history == nil {
		return nil, newUserErrorf(404, "search history is not enabled")
	}

	searchID := c.Param("search_id")
	record, err := history.GetSearch(searchID)
	if err != nil {
		return nil, wrapSystemError(err, 500, "Fail to load search record")
	}
	if record == nil {
		return nil, newUserErrorf(404, "search %s is not found", searchID)
	}

	return &apiResponse{200, record}, nil
}

func listSearches(args *Arguments, c *gin.Context) (*apiResponse, apiError) {
	history := args.history()
	if history == nil {
		return nil, newUserErrorf(404, "search history is not enabled")
	}

	limit := int64(50)
	if v := c.Query("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, wrapUserError(err, 400, "Fail to parse 'limit'")
		}
		limit = n
	}

	records, err := history.ListSearches(limit)
	if err != nil {
		return nil, wrapSystemError(err, 500, "Fail to list search records")
	}

	return &apiResponse{200, &listSearchesResponse{Searches: records}}, nil
}
