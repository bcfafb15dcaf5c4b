package handler

import (
	"io"
	"net/http"

	"jobtrack/internal/core/ports"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	bus ports.EventBus
}

func NewEventHandler(bus ports.EventBus) *EventHandler {
	return &EventHandler{bus: bus}
}

// Stream relays bus events as server-sent events until the client goes away.
// The optional workflowId query parameter filters by workflow.
func (h *EventHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	events, err := h.bus.Subscribe(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	workflowID := c.Query("workflowId")

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Header("Content-Type", "text/event-stream")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			if workflowID != "" && event.WorkflowID != workflowID {
				return true
			}
			c.SSEvent(string(event.Type), event)
			return true
		}
	})
}
