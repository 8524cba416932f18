package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/channelscope/models"
)

// ChannelAnalyzer produces a ChannelRecord for a channel URL.
type ChannelAnalyzer interface {
	Analyze(ctx context.Context, channelURL string) (*models.ChannelRecord, error)
}

// analyzeRequestKey holds the validated request in the gin context.
const analyzeRequestKey = "analyzeRequest"

// BindAnalyzeRequest binds ?url= and validates it, storing the request for
// Analyze. Mounted ahead of rate limiting so malformed input is answered
// with 400 without spending the client's budget.
func BindAnalyzeRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := bindAnalyzeRequest(c)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(analyzeRequestKey, req)
		c.Next()
	}
}

func bindAnalyzeRequest(c *gin.Context) (models.AnalyzeRequest, error) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return req, models.NewScrapeError(models.ErrCodeInvalidInput, models.InvalidURLMessage, err)
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

// Analyze returns a handler for GET /api/analyze.
//
// Orchestration flow:
//  1. Take the request validated by BindAnalyzeRequest, or bind and validate
//     it here; invalid input never reaches the analyzer.
//  2. Analyzer.Analyze → ChannelRecord (session acquired and released inside).
//  3. Return the record, or {"error": ...} with the mapped status.
func Analyze(a ChannelAnalyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnalyzeRequest
		if v, exists := c.Get(analyzeRequestKey); exists {
			req = v.(models.AnalyzeRequest)
		} else {
			var err error
			if req, err = bindAnalyzeRequest(c); err != nil {
				respondError(c, err)
				return
			}
		}

		record, err := a.Analyze(c.Request.Context(), req.URL)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, record)
	}
}

// respondError writes the error body. Internal details of the wrapped error
// never reach the client.
func respondError(c *gin.Context, err error) {
	scrapeErr := models.AsScrapeError(err)
	c.AbortWithStatusJSON(scrapeErr.HTTPStatus(), scrapeErr.ToResponse())
}
