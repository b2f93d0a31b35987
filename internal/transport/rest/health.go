package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/dutytrack/dutytrack/internal"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

// Stores is the slice of the store registry the health check needs.
type Stores interface {
	DB(guildID string) (*gorm.DB, error)
}

type HealthHandler struct {
	cfg    *internal.Config
	stores Stores
}

func NewHealthHandler(cfg *internal.Config, stores Stores) *HealthHandler {
	return &HealthHandler{cfg: cfg, stores: stores}
}

// just says service is up
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "OK"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// pings every guild store
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	overall := HealthHealthy
	components := make(map[string]CheckEntry)

	for _, guildID := range h.cfg.GuildIDs() {
		entry := h.checkGuildStore(ctx, guildID)
		if entry.Status == HealthUnhealthy {
			overall = HealthUnhealthy
		}
		components["store:"+guildID] = entry
	}

	resp := HealthResponse{
		Status:     overall,
		CheckedAt:  time.Now(),
		Components: components,
	}

	statusCode := http.StatusOK
	if overall == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func (h *HealthHandler) checkGuildStore(ctx context.Context, guildID string) CheckEntry {
	start := time.Now()
	entry := CheckEntry{
		Status:    HealthHealthy,
		CheckedAt: time.Now(),
	}

	db, err := h.stores.DB(guildID)
	if err == nil {
		var sqlDB *sql.DB
		if sqlDB, err = db.DB(); err == nil {
			err = sqlDB.PingContext(ctx)
		}
	}

	entry.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}
