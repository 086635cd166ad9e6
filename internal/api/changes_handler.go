package api

import (
	"io"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/wellness-booking-backend/internal/auth"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pubsub"
)

const (
	changeBuffer  = 32
	keepAliveTick = 25 * time.Second
)

type ChangesHandler struct {
	broker *pubsub.Broker
}

func NewChangesHandler(broker *pubsub.Broker) *ChangesHandler {
	return &ChangesHandler{broker: broker}
}

//
// GET /v1/changes
//

// Stream pushes committed reservation and blocked-slot changes as server-sent
// events until the client goes away. A client that falls behind loses changes
// and is expected to refetch.
func (h *ChangesHandler) Stream(c *gin.Context) {
	changes := make(chan pubsub.Change, changeBuffer)
	caller := auth.GetIdentity(c)

	forward := func(payload any) {
		change, ok := payload.(pubsub.Change)
		if !ok {
			return
		}
		select {
		case changes <- change:
		default:
			log.Printf("[sse] dropped %s change for %s", change.Topic, caller)
		}
	}

	for _, topic := range []string{pubsub.TopicReservations, pubsub.TopicBlockedSlots} {
		unsubscribe := h.broker.Subscribe(topic, forward)
		defer unsubscribe()
	}

	ticker := time.NewTicker(keepAliveTick)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"identity": caller})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case change := <-changes:
			c.SSEvent(change.Topic, change)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}
