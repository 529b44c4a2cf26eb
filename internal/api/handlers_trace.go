// handlers_trace.go - Signal trace query handlers
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/circuitbench/backend/internal/models"
	"github.com/circuitbench/backend/internal/trace"
)

// TraceHandlerImpl implements the TraceHandler interface
type TraceHandlerImpl struct {
	manager WorkspaceManager
}

// NewTraceHandler creates a new trace handler
func NewTraceHandler(manager WorkspaceManager) TraceHandler {
	return &TraceHandlerImpl{
		manager: manager,
	}
}

// traceStore resolves the workspace's trace store. Workspaces created
// while DuckDB was unavailable run untraced and answer 503 here.
func (h *TraceHandlerImpl) traceStore(c echo.Context) (*trace.Store, error) {
	id := c.Param("id")
	ws, ok := h.manager.Get(id)
	if !ok {
		return nil, NewNotFoundError("workspace", id)
	}
	h.manager.Touch(id)

	store := ws.Tracer()
	if store == nil {
		return nil, NewServiceUnavailableError("trace recording is unavailable for this workspace")
	}
	return store, nil
}

// HandleGetTrace returns the signal transitions within a time window
func (h *TraceHandlerImpl) HandleGetTrace(c echo.Context) error {
	store, err := h.traceStore(c)
	if err != nil {
		return err
	}

	start, end, err := timeWindow(c, store)
	if err != nil {
		return err
	}

	signals := c.QueryParams()["signals"]

	ctx := c.Request().Context()
	events, err := store.Events(ctx, start, end, signals)
	if err != nil {
		return NewInternalError("trace query failed", err)
	}

	return c.JSON(http.StatusOK, traceResponse{
		Events: events,
		Total:  store.Len(),
		Range:  store.TimeRange(),
	})
}

// HandleGetTraceMsgpack returns the trace window in MessagePack format.
// MessagePack payloads are 30-50% smaller than JSON, which matters when a
// client pulls a whole run at once.
func (h *TraceHandlerImpl) HandleGetTraceMsgpack(c echo.Context) error {
	store, err := h.traceStore(c)
	if err != nil {
		return err
	}

	start, end, err := timeWindow(c, store)
	if err != nil {
		return err
	}

	signals := c.QueryParams()["signals"]

	ctx := c.Request().Context()
	events, err := store.Events(ctx, start, end, signals)
	if err != nil {
		return NewInternalError("trace query failed", err)
	}

	data, err := msgpack.Marshal(map[string]interface{}{
		"events": events,
		"total":  store.Len(),
	})
	if err != nil {
		return NewInternalError("failed to encode response", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleTraceStream pushes newly recorded transitions via SSE
func (h *TraceHandlerImpl) HandleTraceStream(c echo.Context) error {
	store, err := h.traceStore(c)
	if err != nil {
		return err
	}

	// Set SSE headers
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	// Resume after the client's last seen timestamp, or from the start
	after := time.UnixMilli(0)
	if s := c.QueryParam("since"); s != "" {
		ts, err := parseTimestamp(s)
		if err != nil {
			h.sendSSEError(c, "invalid since timestamp")
			return nil
		}
		after = ts.Add(time.Millisecond)
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	timeout := time.NewTimer(5 * time.Minute)
	defer timeout.Stop()

	ctx := c.Request().Context()

	for {
		select {
		case <-ticker.C:
			events, err := store.Events(ctx, after, time.Now(), nil)
			if err != nil {
				h.sendSSEError(c, "trace query failed")
				return nil
			}
			if len(events) > 0 {
				h.sendSSEData(c, events)
				after = events[len(events)-1].Timestamp.Add(time.Millisecond)
			}

		case <-timeout.C:
			h.sendSSEError(c, "stream timeout")
			return nil

		case <-ctx.Done():
			return nil
		}
	}
}

// HandleGetTraceValues returns the value each signal held at a timestamp
func (h *TraceHandlerImpl) HandleGetTraceValues(c echo.Context) error {
	store, err := h.traceStore(c)
	if err != nil {
		return err
	}

	ts, err := parseTimestamp(c.QueryParam("timestamp"))
	if err != nil {
		return NewBadRequestError("invalid timestamp", err)
	}

	signals := c.QueryParams()["signals"]

	ctx := c.Request().Context()
	events, err := store.ValuesAt(ctx, ts, signals)
	if err != nil {
		return NewInternalError("trace query failed", err)
	}

	return c.JSON(http.StatusOK, events)
}

// Request/Response types

type traceResponse struct {
	Events []models.SignalEvent `json:"events"`
	Total  int                  `json:"total"`
	Range  *models.TimeRange    `json:"range,omitempty"`
}

// Helper methods

// timeWindow reads the start/end query params, defaulting to the stored
// range so a bare GET returns the whole trace.
func timeWindow(c echo.Context, store *trace.Store) (time.Time, time.Time, error) {
	start := time.UnixMilli(0)
	end := time.Now()
	if tr := store.TimeRange(); tr != nil {
		start, end = tr.Start, tr.End
	}

	if s := c.QueryParam("start"); s != "" {
		ts, err := parseTimestamp(s)
		if err != nil {
			return time.Time{}, time.Time{}, NewBadRequestError("invalid start time", err)
		}
		start = ts
	}
	if s := c.QueryParam("end"); s != "" {
		ts, err := parseTimestamp(s)
		if err != nil {
			return time.Time{}, time.Time{}, NewBadRequestError("invalid end time", err)
		}
		end = ts
	}
	return start, end, nil
}

func (h *TraceHandlerImpl) sendSSEData(c echo.Context, data interface{}) {
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(c.Response(), "data: %s\n\n", jsonData)
	c.Response().Flush()
}

func (h *TraceHandlerImpl) sendSSEError(c echo.Context, message string) {
	h.sendSSEData(c, map[string]string{"error": message})
}

func parseTimestamp(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}
