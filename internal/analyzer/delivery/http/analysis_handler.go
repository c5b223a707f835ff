package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/repository"
	"golang-stock-analyzer/internal/analyzer/service"
	"golang-stock-analyzer/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisHandler handles HTTP requests for single analyses and history.
type AnalysisHandler struct {
	analysisService  service.AnalysisService
	narrativeService service.NarrativeService
	defaults         dto.AnalyzeOptions
	logger           *logger.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler. defaults is the option
// set each request starts from.
func NewAnalysisHandler(analysisService service.AnalysisService, narrativeService service.NarrativeService, defaults dto.AnalyzeOptions, logger *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService:  analysisService,
		narrativeService: narrativeService,
		defaults:         defaults,
		logger:           logger,
	}
}

// RegisterRoutes registers the analysis routes to the Echo group.
func (h *AnalysisHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/analyses", h.Analyze)
	g.GET("/histories", h.GetHistories)
	g.GET("/histories/:id", h.GetHistory)
	g.GET("/providers", h.GetProviders)
	g.POST("/providers/test", h.TestProvider)
}

// Analyze godoc
// @Summary Analyze a symbol
// @Description Run the full analysis pipeline for one symbol and store the result
// @Tags analyses
// @Accept  json
// @Produce  json
// @Param   request  body    dto.AnalyzeRequest   true    "Symbol to analyze"
// @Success 200 {object} dto.AnalysisResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /analyses [post]
func (h *AnalysisHandler) Analyze(c echo.Context) error {
	var req dto.AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	opts := service.WithOverrides(h.defaults, req.EnableNarrative, req.Weights)
	result, err := h.analysisService.Analyze(c.Request().Context(), req.Symbol, opts)
	if err != nil {
		h.logger.WarnContext(c.Request().Context(), "Analysis failed", logger.StringField("symbol", req.Symbol), logger.ErrorField(err))
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetHistories godoc
// @Summary List saved analyses
// @Description List saved analyses, newest first
// @Tags analyses
// @Produce  json
// @Param   symbol  query   string  false   "Symbol filter"
// @Param   from    query   string  false   "Earliest analysis time (RFC3339 or YYYY-MM-DD)"
// @Param   to      query   string  false   "Latest analysis time (RFC3339 or YYYY-MM-DD)"
// @Param   limit   query   int     false   "Page size, at most 500"
// @Param   offset  query   int     false   "Page offset"
// @Success 200 {array} dto.AnalysisResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /histories [get]
func (h *AnalysisHandler) GetHistories(c echo.Context) error {
	filter := dto.HistoryFilter{Symbol: c.QueryParam("symbol")}

	var err error
	if filter.From, err = parseTimeParam(c.QueryParam("from"), false); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid from parameter"})
	}
	if filter.To, err = parseTimeParam(c.QueryParam("to"), true); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid to parameter"})
	}
	if v := c.QueryParam("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit parameter"})
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid offset parameter"})
		}
	}

	results, err := h.analysisService.History(c.Request().Context(), filter)
	if err != nil {
		if dto.KindOf(err) != dto.KindValidation {
			h.logger.Error("Failed to query analysis history", logger.ErrorField(err))
		}
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

// GetHistory godoc
// @Summary Get a saved analysis
// @Description Get one saved analysis by id
// @Tags analyses
// @Produce  json
// @Param   id  path    int true    "History ID"
// @Success 200 {object} dto.AnalysisResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /histories/{id} [get]
func (h *AnalysisHandler) GetHistory(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid id parameter", Kind: string(dto.KindValidation)})
	}

	result, err := h.analysisService.HistoryByID(c.Request().Context(), uint(id))
	if err != nil {
		if !errors.Is(err, dto.ErrAnalysisNotFound) {
			h.logger.Error("Failed to get analysis history", logger.IntField("id", int(id)), logger.ErrorField(err))
		}
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetProviders godoc
// @Summary List narrative providers
// @Description List the supported narrative providers with their defaults
// @Tags analyses
// @Produce  json
// @Success 200 {array} dto.ProviderInfo
// @Router /providers [get]
func (h *AnalysisHandler) GetProviders(c echo.Context) error {
	return c.JSON(http.StatusOK, repository.SupportedProviders())
}

// TestProvider godoc
// @Summary Test a narrative provider
// @Description Send a minimal prompt to a provider. Empty fields use the configured provider.
// @Tags analyses
// @Accept  json
// @Produce  json
// @Param   request  body    dto.TestProviderRequest   false   "Provider override"
// @Success 200 {object} dto.TestProviderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /providers/test [post]
func (h *AnalysisHandler) TestProvider(c echo.Context) error {
	var req dto.TestProviderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	cfg := h.defaults.Provider
	if req.Provider != "" && req.Provider != cfg.Kind {
		cfg = dto.ProviderConfig{Kind: req.Provider, Timeout: cfg.Timeout}
	}
	if req.APIKey != "" {
		cfg.APIKey = req.APIKey
	}
	if req.BaseURL != "" {
		cfg.BaseURL = req.BaseURL
	}
	if req.Model != "" {
		cfg.Model = req.Model
	}

	start := time.Now()
	narrative, err := h.narrativeService.TestConnection(c.Request().Context(), cfg)
	resp := dto.TestProviderResponse{
		OK:       err == nil,
		Provider: string(cfg.Kind),
		Model:    narrative.Model,
		Latency:  time.Since(start).Round(time.Millisecond).String(),
	}
	if err != nil {
		resp.Failure = dto.NarrativeFailureOf(err)
		h.logger.Warn("Provider test failed",
			logger.StringField("provider", string(cfg.Kind)),
			logger.StringField("failure", string(resp.Failure)),
			logger.ErrorField(err))
	}
	return c.JSON(http.StatusOK, resp)
}

// parseTimeParam accepts RFC3339 or a bare date. A bare date used as an
// upper bound covers the whole day.
func parseTimeParam(v string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
