package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/service"
	"golang-stock-analyzer/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	sseKeepAlive   = 15 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// BatchHandler handles HTTP requests for batch tasks.
type BatchHandler struct {
	batchService service.BatchService
	defaults     dto.AnalyzeOptions
	logger       *logger.Logger
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batchService service.BatchService, defaults dto.AnalyzeOptions, logger *logger.Logger) *BatchHandler {
	return &BatchHandler{batchService: batchService, defaults: defaults, logger: logger}
}

// RegisterRoutes registers the batch routes to the Echo group.
func (h *BatchHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.SubmitBatch)
	g.GET("/:id", h.GetBatch)
	g.DELETE("/:id", h.CancelBatch)
	g.GET("/:id/events", h.StreamEvents)
	g.GET("/:id/ws", h.StreamWebSocket)
}

// SubmitBatch godoc
// @Summary Submit a batch
// @Description Analyze many symbols concurrently. Returns at once with the task id.
// @Tags batches
// @Accept  json
// @Produce  json
// @Param   request  body    dto.SubmitBatchRequest   true    "Symbols to analyze"
// @Success 202 {object} dto.SubmitBatchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /batches [post]
func (h *BatchHandler) SubmitBatch(c echo.Context) error {
	var req dto.SubmitBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	opts := service.WithOverrides(h.defaults, req.EnableNarrative, req.Weights)
	taskID, err := h.batchService.SubmitBatch(c.Request().Context(), req.Symbols, opts)
	if err != nil {
		return errorJSON(c, err)
	}

	task, err := h.batchService.GetProgress(c.Request().Context(), taskID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusAccepted, dto.SubmitBatchResponse{TaskID: taskID, Total: task.Total()})
}

// GetBatch godoc
// @Summary Get batch progress
// @Description Get a snapshot of a batch task
// @Tags batches
// @Produce  json
// @Param   id  path    string true    "Task ID"
// @Success 200 {object} dto.BatchProgressResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /batches/{id} [get]
func (h *BatchHandler) GetBatch(c echo.Context) error {
	task, err := h.batchService.GetProgress(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewBatchProgressResponse(task))
}

// CancelBatch godoc
// @Summary Cancel a batch
// @Description Stop pending symbols from starting. Running symbols finish.
// @Tags batches
// @Produce  json
// @Param   id  path    string true    "Task ID"
// @Success 202 {object} dto.BatchProgressResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /batches/{id} [delete]
func (h *BatchHandler) CancelBatch(c echo.Context) error {
	taskID := c.Param("id")
	if err := h.batchService.Cancel(taskID); err != nil {
		return errorJSON(c, err)
	}
	task, err := h.batchService.GetProgress(c.Request().Context(), taskID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusAccepted, dto.NewBatchProgressResponse(task))
}

// StreamEvents godoc
// @Summary Stream batch progress
// @Description Server-sent events, one "progress" event per symbol transition and a final "done" event with the task snapshot
// @Tags batches
// @Produce  text/event-stream
// @Param   id  path    string true    "Task ID"
// @Success 200 {object} dto.ProgressEvent
// @Failure 404 {object} dto.ErrorResponse
// @Router /batches/{id}/events [get]
func (h *BatchHandler) StreamEvents(c echo.Context) error {
	taskID := c.Param("id")
	events, unsubscribe, err := h.batchService.Subscribe(taskID)
	if err != nil {
		return errorJSON(c, err)
	}
	defer unsubscribe()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-keepAlive.C:
			if _, err := fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case event, ok := <-events:
			if !ok {
				task, err := h.batchService.GetProgress(c.Request().Context(), taskID)
				if err != nil {
					return nil
				}
				return writeSSE(res, "done", dto.NewBatchProgressResponse(task))
			}
			if err := writeSSE(res, "progress", event); err != nil {
				h.logger.Debug("SSE client went away", logger.StringField("task_id", taskID), logger.ErrorField(err))
				return nil
			}
		}
	}
}

func writeSSE(res *echo.Response, name string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}

// StreamWebSocket godoc
// @Summary Stream batch progress over WebSocket
// @Description Upgrades to a WebSocket and sends each progress event as a JSON text message. The server closes the socket when the task finishes.
// @Tags batches
// @Param   id  path    string true    "Task ID"
// @Failure 404 {object} dto.ErrorResponse
// @Router /batches/{id}/ws [get]
func (h *BatchHandler) StreamWebSocket(c echo.Context) error {
	taskID := c.Param("id")
	events, unsubscribe, err := h.batchService.Subscribe(taskID)
	if err != nil {
		return errorJSON(c, err)
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", logger.ErrorField(err))
		return nil
	}
	defer conn.Close()

	// Reads only detect the client closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return nil
		case event, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "task finished"))
				return nil
			}
			if err := conn.WriteJSON(event); err != nil {
				return nil
			}
		}
	}
}
