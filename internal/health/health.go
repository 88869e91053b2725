// Package health exposes liveness, readiness and a detailed system report.
package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"rechnung-backend/pkg/utils"
)

type Handler struct {
	db      *pgxpool.Pool
	started time.Time
}

func NewHandler(db *pgxpool.Pool) *Handler {
	return &Handler{db: db, started: time.Now()}
}

// Live reports process liveness only.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	utils.Success(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks the database connection.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		utils.JSON(w, http.StatusServiceUnavailable, utils.Response{
			Success: false,
			Error:   "database unreachable",
		})
		return
	}
	utils.Success(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Detailed adds uptime, database pool and host resource figures.
func (h *Handler) Detailed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "up"
	if err := h.db.Ping(ctx); err != nil {
		dbStatus = "down"
	}
	poolStat := h.db.Stat()

	report := map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"go_version":     runtime.Version(),
		"goroutines":     runtime.NumGoroutine(),
		"database": map[string]any{
			"status":            dbStatus,
			"total_conns":       poolStat.TotalConns(),
			"idle_conns":        poolStat.IdleConns(),
			"acquired_conns":    poolStat.AcquiredConns(),
			"max_conns":         poolStat.MaxConns(),
			"new_conns_count":   poolStat.NewConnsCount(),
			"acquire_count":     poolStat.AcquireCount(),
			"canceled_acquires": poolStat.CanceledAcquireCount(),
		},
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		report["cpu_percent"] = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		report["memory"] = map[string]any{
			"total":        vm.Total,
			"available":    vm.Available,
			"used_percent": vm.UsedPercent,
		}
	}

	status := http.StatusOK
	if dbStatus == "down" {
		report["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	utils.JSON(w, status, utils.Response{Success: dbStatus == "up", Data: report})
}
