package http

import (
	"net/http"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/service"

	"github.com/labstack/echo/v4"
)

// MarketHandler reports exchange trading hours.
type MarketHandler struct {
	now func() time.Time
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler() *MarketHandler {
	return &MarketHandler{now: time.Now}
}

// RegisterRoutes registers the market routes to the Echo group.
func (h *MarketHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/market/time", h.GetMarketTime)
}

// GetMarketTime godoc
// @Summary Market trading status
// @Description Whether the market of a symbol is open now and when its next session opens or closes
// @Tags market
// @Produce  json
// @Param   symbol  query   string  true    "Symbol whose market to report"
// @Success 200 {object} dto.MarketTimeInfo
// @Failure 400 {object} dto.ErrorResponse
// @Router /market/time [get]
func (h *MarketHandler) GetMarketTime(c echo.Context) error {
	symbol, err := dto.ParseSymbol(c.QueryParam("symbol"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, service.MarketTime(symbol.Market(), h.now()))
}
