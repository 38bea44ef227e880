package server

import (
	"net/http"
	"strings"

	"spread-observer/src/models"
	"spread-observer/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

// getData computes a snapshot for the caller and pushes it to websocket clients.
func (s *FastAPIServer) getData(c *gin.Context) {
	snap := s.Session.Snapshot(c.Request.Context())
	s.Broadcast(snap)
	c.JSON(http.StatusOK, snap)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.Session.Pair())
}

// -----------------------------------------------------------------------------

// updateStocks persists the new pair and re-arms the session.
func (s *FastAPIServer) updateStocks(c *gin.Context) {
	var req models.MUpdatePairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pair := models.MTrackedPair{
		CodeA: utils.Qualify(strings.TrimSpace(req.Stock1)),
		CodeB: utils.Qualify(strings.TrimSpace(req.Stock2)),
	}
	if !pair.IsConfigured() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock codes cannot be empty"})
		return
	}

	s.Logger.Info("Updating stocks: %s, %s", pair.CodeA, pair.CodeB)

	if s.Store != nil {
		if err := s.Store.SavePair(c.Request.Context(), pair); err != nil {
			s.Logger.Error("Failed to persist pair: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save configuration"})
			return
		}
	}

	s.Session.SetPair(pair.CodeA, pair.CodeB)

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"stock1": pair.CodeA,
		"stock2": pair.CodeB,
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := s.connections
	var latest int64
	if s.latestState != nil {
		latest = s.latestState.GeneratedAt.Unix()
	}
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"state":         s.Session.State(),
		"connections":   connections,
		"latest_update": latest,
	})
}
