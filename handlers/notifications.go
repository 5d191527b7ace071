package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"p9e.in/inspectra/config"
	"p9e.in/inspectra/middleware"
	"p9e.in/inspectra/models"
)

// Notification event types pushed over the per-user channel. The
// header badge consumes these instead of ad hoc browser events.
const (
	NotifyChecklistAssigned = "checklist_assigned"
	NotifyChecklistUpdated  = "checklist_updated"
	NotifyRequestReceived   = "request_received"
	NotifyAlertRaised       = "alert_raised"
)

// NotificationEvent is the typed message on the pub/sub bus.
type NotificationEvent struct {
	Type     string `json:"type"`
	EntityID string `json:"entityId,omitempty"`
}

var (
	redisOnce   sync.Once
	redisClient *redis.Client
)

// notifyRedis returns the shared redis client, or nil when REDIS_ADDR
// is unset (SSE then degrades to heartbeats only).
func notifyRedis() *redis.Client {
	redisOnce.Do(func() {
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			log.Println("⚠️  REDIS_ADDR not set, notification stream runs without pub/sub")
			return
		}
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
	})
	return redisClient
}

func notifyChannel(userID string) string { return fmt.Sprintf("notify:%s", userID) }

// PublishNotification pushes an event onto a user's channel. Delivery
// is best-effort; the badge counts endpoint remains the source of
// truth.
func PublishNotification(userID string, event NotificationEvent) {
	rdb := notifyRedis()
	if rdb == nil {
		return
	}
	b, _ := json.Marshal(event)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Publish(ctx, notifyChannel(userID), b).Err(); err != nil {
		log.Printf("⚠️  Failed to publish %s notification for user %s: %v", event.Type, userID, err)
	}
}

type notificationCounts struct {
	OpenChecklists   int64 `json:"openChecklists"`
	PendingRequests  int64 `json:"pendingRequests"`
	UnresolvedAlerts int64 `json:"unresolvedAlerts"`
	Total            int64 `json:"total"`
}

// GetNotificationCounts returns the badge numbers for the current
// user: checklists assigned to them still open, plus (for admins)
// unresolved requests and alerts addressed to them.
func GetNotificationCounts(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var counts notificationCounts
	config.DB.Model(&models.Checklist{}).
		Where("assigned_user_id = ? AND status = ?", claims.UserID, models.ChecklistSent).
		Count(&counts.OpenChecklists)
	if claims.Role == models.RoleAdmin {
		config.DB.Model(&models.UserRequest{}).
			Where("admin_id = ? AND resolved = false", claims.UserID).
			Count(&counts.PendingRequests)
		config.DB.Model(&models.ChecklistAlert{}).
			Where("admin_id = ? AND resolved = false", claims.UserID).
			Count(&counts.UnresolvedAlerts)
	}
	counts.Total = counts.OpenChecklists + counts.PendingRequests + counts.UnresolvedAlerts

	json.NewEncoder(w).Encode(counts)
}

// StreamNotifications streams badge events via Server-Sent Events,
// fed by the redis pub/sub channel for the session user.
// GET /api/v1/notifications/stream
func StreamNotifications(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Send initial message
	w.Write([]byte("data: {\"type\":\"connected\"}\n\n"))
	flusher.Flush()

	var events <-chan *redis.Message
	if rdb := notifyRedis(); rdb != nil {
		sub := rdb.Subscribe(r.Context(), notifyChannel(claims.UserID))
		defer sub.Close()
		events = sub.Channel()
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg.Payload)
			flusher.Flush()
		case <-ticker.C:
			// Send heartbeat
			w.Write([]byte("data: {\"type\":\"heartbeat\"}\n\n"))
			flusher.Flush()
		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}
