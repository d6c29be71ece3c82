package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/petition-qc/app/requests"
	"github.com/petition-qc/app/responses"
	"github.com/petition-qc/app/services"
)

// SearchController serves the registry lookups behind the signature
// entry screen.
type SearchController struct {
	searchService *services.SearchService
	logger        *zap.Logger
}

// NewSearchController wires the search controller.
func NewSearchController(searchService *services.SearchService, logger *zap.Logger) *SearchController {
	return &SearchController{searchService: searchService, logger: logger}
}

// Search answers an address lookup with the ranked candidate list.
func (sc *SearchController) Search(c *gin.Context) {
	var req requests.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	results, err := sc.searchService.SearchByAddress(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		sc.logger.Error("address search failed", zap.String("query", req.Query), zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.SearchResponse{
		Query:   req.Query,
		Count:   len(results),
		Results: results,
	})
}

// SearchByName answers a blended name-and-address lookup.
func (sc *SearchController) SearchByName(c *gin.Context) {
	var req requests.NameSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	results, err := sc.searchService.SearchByNameAndAddress(
		c.Request.Context(), req.FirstName, req.LastName, req.Address, req.Limit)
	if err != nil {
		sc.logger.Error("name search failed", zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.SearchResponse{
		Query:   req.LastName,
		Count:   len(results),
		Results: results,
	})
}
