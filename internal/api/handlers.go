package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gorate/app"
	"gorate/domain/rate"
	"gorate/internal/errors"
	"gorate/internal/inference"
	"gorate/internal/report"
)

// summaryBody is the JSON payload of POST /v1/summary
type summaryBody struct {
	Stream     string      `json:"stream"`
	Timestamps []time.Time `json:"timestamps"`
	Prior      *rate.Prior `json:"prior"`
	Horizon    float64     `json:"horizon"`
}

// posteriorQuery selects a Gamma posterior by its parameters
type posteriorQuery struct {
	Alpha   float64 `form:"alpha" binding:"required,gt=0"`
	Beta    float64 `form:"beta" binding:"required,gt=0"`
	Horizon float64 `form:"horizon"`
	MaxK    *int    `form:"max_k" binding:"omitempty,gte=0,lte=1000"`
	Points  int     `form:"points" binding:"omitempty,gt=0,lte=10000"`
}

func (s *Server) handleHealth(c *gin.Context) {
	s.respondJSON(c, http.StatusOK, gin.H{
		"status":     "ok",
		"session_id": s.service.SessionID(),
	})
}

func (s *Server) handleReference(c *gin.Context) {
	s.respondJSON(c, http.StatusOK, gin.H{
		"session_id": s.service.SessionID(),
		"profile":    s.service.Profile(),
	})
}

func (s *Server) handlePercentile(c *gin.Context) {
	var q struct {
		Value *float64 `form:"value" binding:"required"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondError(c, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}
	if math.IsInf(*q.Value, 0) || math.IsNaN(*q.Value) {
		s.respondError(c, errors.InvalidInput("value must be finite"))
		return
	}

	s.respondJSON(c, http.StatusOK, gin.H{
		"value":      *q.Value,
		"percentile": s.service.Reference().Percentile(*q.Value),
		"session_id": s.service.SessionID(),
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	var body summaryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}

	summary, err := s.service.Summarize(app.SummaryRequest{
		Stream:     body.Stream,
		Timestamps: body.Timestamps,
		Prior:      body.Prior,
		Horizon:    body.Horizon,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respondJSON(c, http.StatusOK, summary)
}

func (s *Server) handlePredictive(c *gin.Context) {
	q, ok := s.bindPosterior(c)
	if !ok {
		return
	}

	maxK := s.service.Model().MaxK
	if q.MaxK != nil {
		maxK = *q.MaxK
	}

	s.respondJSON(c, http.StatusOK, gin.H{
		"alpha":   q.Alpha,
		"beta":    q.Beta,
		"horizon": q.Horizon,
		"mean":    inference.PredictiveMean(q.Alpha, q.Beta, q.Horizon),
		"pmf":     inference.PredictiveTable(q.Alpha, q.Beta, q.Horizon, maxK),
	})
}

func (s *Server) handleCurve(c *gin.Context) {
	q, ok := s.bindPosterior(c)
	if !ok {
		return
	}

	points := q.Points
	if points == 0 {
		points = s.service.Model().CurvePoints
	}

	s.respondJSON(c, http.StatusOK, gin.H{
		"alpha": q.Alpha,
		"beta":  q.Beta,
		"curve": inference.PosteriorCurve(q.Alpha, q.Beta, points),
	})
}

func (s *Server) bindPosterior(c *gin.Context) (posteriorQuery, bool) {
	var q posteriorQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondError(c, errors.WithCode(errors.CodeInvalidInput, err))
		return q, false
	}
	if q.Horizon == 0 {
		q.Horizon = s.service.Model().Horizon
	}
	if err := (rate.PredictiveQuery{Horizon: q.Horizon}).Validate(); err != nil {
		s.respondError(c, errors.WithCode(errors.CodeInvalidInput, err))
		return q, false
	}
	if err := rate.CheckMoments(q.Alpha, q.Beta); err != nil {
		s.respondError(c, errors.WithCode(errors.CodeInvalidInput, err))
		return q, false
	}
	if mean := inference.PredictiveMean(q.Alpha, q.Beta, q.Horizon); math.IsInf(mean, 0) {
		s.respondError(c, errors.InvalidInput(fmt.Sprintf("predictive mean overflows over %g days", q.Horizon)))
		return q, false
	}
	return q, true
}

func (s *Server) handleStreams(c *gin.Context) {
	streams, err := s.service.Streams(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respondJSON(c, http.StatusOK, gin.H{"streams": streams})
}

func (s *Server) handleStreamSummary(c *gin.Context) {
	summary, err := s.service.SummarizeStream(c.Request.Context(), c.Param("stream"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respondJSON(c, http.StatusOK, summary)
}

func (s *Server) handleStreamReport(c *gin.Context) {
	summary, err := s.service.SummarizeStream(c.Request.Context(), c.Param("stream"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	if c.Query("format") == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(*summary)))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(*summary))
}

func (s *Server) handleSummaries(c *gin.Context) {
	summaries, err := s.service.SummarizeStreams(c.Request.Context(), c.QueryArray("stream"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respondJSON(c, http.StatusOK, gin.H{
		"session_id": s.service.SessionID(),
		"summaries":  summaries,
	})
}

// respondJSON encodes v before writing the header so an unencodable value
// becomes a 500 instead of a 200 with an empty body
func (s *Server) respondJSON(c *gin.Context, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		s.respondError(c, errors.Wrap(err, "failed to encode response"))
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

// respondError maps AppError codes onto HTTP statuses
func (s *Server) respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeSourceError:
		status = http.StatusBadGateway
	case errors.CodeConfigInvalid:
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("[API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
