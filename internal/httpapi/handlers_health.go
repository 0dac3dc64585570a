package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	DB    *pgxpool.Pool
	Redis *redis.Client
}

func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	type resp struct {
		Status string `json:"status"`
		DB     string `json:"db"`
		Redis  string `json:"redis"`
		Time   string `json:"time"`
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := h.DB.Ping(ctx); err != nil {
		dbStatus = "down"
	}

	redisStatus := "ok"
	if h.Redis == nil {
		redisStatus = "disabled"
	} else if err := h.Redis.Ping(ctx).Err(); err != nil {
		redisStatus = "down"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp{
		Status: "ok",
		DB:     dbStatus,
		Redis:  redisStatus,
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
