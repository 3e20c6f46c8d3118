package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/counterworks/counterlog/internal/ledger"
)

// LedgerHandler exposes read-only integrity endpoints. Both routes are
// admin-only: integrity findings are for auditors, never for the actors
// submitting events.
type LedgerHandler struct {
	store    ledger.Store
	verifier *ledger.Verifier
	logger   *zap.Logger
}

// NewLedgerHandler creates a LedgerHandler.
func NewLedgerHandler(store ledger.Store, verifier *ledger.Verifier, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{store: store, verifier: verifier, logger: logger}
}

// Register mounts the ledger routes on the given (admin-guarded) router group.
func (h *LedgerHandler) Register(rg *gin.RouterGroup) {
	l := rg.Group("/ledger")
	{
		l.GET("", h.Overview)
		l.GET("/verify", h.Verify)
	}
}

// Overview handles GET /ledger — record count and current chain tip.
func (h *LedgerHandler) Overview(c *gin.Context) {
	recs, err := h.store.ReadAll(c.Request.Context())
	if err != nil {
		h.logger.Error("ledger read", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to read ledger"})
		return
	}

	tip := ledger.GenesisHash
	if len(recs) > 0 {
		tip = recs[len(recs)-1].Hash
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"total_records": len(recs),
		"tip":           tip,
	})
}

// Verify handles GET /ledger/verify — replays the chain and reports every
// finding. A corrupted ledger is still a 200: the report is the product.
func (h *LedgerHandler) Verify(c *gin.Context) {
	report, err := h.verifier.Verify(c.Request.Context())
	if err != nil {
		h.logger.Error("ledger verify", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to read ledger"})
		return
	}

	recordVerifyRun(report.Valid)
	if !report.Valid {
		h.logger.Warn("ledger integrity check failed",
			zap.Int("total_records", report.TotalRecords),
			zap.Int("findings", len(report.Findings)),
		)
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"valid":         report.Valid,
		"total_records": report.TotalRecords,
		"findings":      report.Findings,
	})
}
