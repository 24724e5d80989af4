package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"coaching-platform-api/services"

	"github.com/gin-gonic/gin"
)

// GetUnclaimedQueue returns the snapshot of pending submissions, oldest
// first, optionally filtered by skill tag.
func GetUnclaimedQueue(c *gin.Context) {
	svc := services.NewQueueService(getDB())
	submissions, err := svc.UnclaimedQueue(c.Query("skill"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// GetMyQueue returns the current coach's claimed submissions.
func GetMyQueue(c *gin.Context) {
	coachID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	svc := services.NewQueueService(getDB())
	submissions, err := svc.MyQueue(coachID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// StreamQueueEvents streams queue diffs over SSE. Clients take a snapshot
// from the queue endpoints first, then apply these events. The subscription
// is torn down as soon as the client disconnects; nothing keeps running for
// it afterwards.
func StreamQueueEvents(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	hub := services.QueueEvents()
	sub := hub.Subscribe(userID)
	defer hub.Unsubscribe(sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming unsupported"})
		return
	}

	ctx := c.Request.Context()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": ping\n\n")
			flusher.Flush()
		case event, open := <-sub.Outbound:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\n", event.Event)
			fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
