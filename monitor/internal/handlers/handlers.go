package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Q872/base-sniper-monitor/monitor/internal/engine"
	"github.com/Q872/base-sniper-monitor/monitor/internal/ledger"
	"github.com/Q872/base-sniper-monitor/shared/logger"
)

func RegisterRoutes(router *gin.Engine, appLogger *logger.Logger) {
	router.GET("/", func(c *gin.Context) {
		appLogger.Info("Root endpoint accessed")
		c.JSON(http.StatusOK, gin.H{"message": "API is running. Monitor active!"})
	})
}

func RegisterAPIRoutes(router *gin.Engine, appLogger *logger.Logger, store *ledger.Store, orch *engine.Orchestrator) {
	apiGroup := router.Group("/api/v1")
	{
		apiGroup.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "tracked_tokens": store.Len()})
		})

		apiGroup.GET("/status", func(c *gin.Context) {
			summary, ok := orch.LastSummary()
			if !ok {
				c.JSON(http.StatusOK, gin.H{"status": "waiting", "message": "No monitoring cycle has completed yet"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok", "last_cycle": summary})
		})

		apiGroup.GET("/tokens/top", handleTopTokens(appLogger, store))
		apiGroup.GET("/tokens/recent", handleRecentTokens(appLogger, store))
		apiGroup.GET("/tokens/:address", handleTokenByAddress(store))
	}
	appLogger.Info("API routes registered under /api/v1")
}

func handleTopTokens(appLogger *logger.Logger, store *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 10
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 100 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 100"})
				return
			}
			limit = parsed
		}

		performers := store.TopPerformers(limit)
		appLogger.Debug("Top performers requested", zap.Int("limit", limit), zap.Int("returned", len(performers)))
		c.JSON(http.StatusOK, gin.H{"count": len(performers), "tokens": performers})
	}
}

func handleRecentTokens(appLogger *logger.Logger, store *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		hours := 24
		if raw := c.Query("hours"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 168 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be an integer between 1 and 168"})
				return
			}
			hours = parsed
		}

		window := time.Duration(hours) * time.Hour
		recent := store.RecentTokens(window, time.Now())
		appLogger.Debug("Recent tokens requested", zap.Int("hours", hours), zap.Int("returned", len(recent)))
		c.JSON(http.StatusOK, gin.H{"count": len(recent), "tokens": recent})
	}
}

func handleTokenByAddress(store *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		address := c.Param("address")
		rec, ok := store.Snapshot(address)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "token not tracked"})
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}
