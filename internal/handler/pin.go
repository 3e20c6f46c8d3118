package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/counterworks/counterlog/internal/ledger"
	"github.com/counterworks/counterlog/internal/roster"
)

// memberFinder is the slice of the directory the PIN endpoint needs.
type memberFinder interface {
	FindByID(ctx context.Context, id string) (*roster.Member, error)
}

// PinHandler verifies a member's PIN server-side before the form UI lets them
// submit events. The PIN hash never leaves the server.
type PinHandler struct {
	members memberFinder
	pinSalt string
	logger  *zap.Logger
}

// NewPinHandler creates a PinHandler.
func NewPinHandler(members memberFinder, pinSalt string, logger *zap.Logger) *PinHandler {
	return &PinHandler{members: members, pinSalt: pinSalt, logger: logger}
}

// Register mounts the PIN route on the given router group.
func (h *PinHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/pin/verify", h.Verify)
}

type pinRequest struct {
	ActorID string `json:"actor_id"`
	PIN     string `json:"pin"`
}

// Verify handles POST /pin/verify.
func (h *PinHandler) Verify(c *gin.Context) {
	var req pinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "message": "invalid request body"})
		return
	}

	actorID := ledger.Sanitize(req.ActorID)
	pin := strings.TrimSpace(req.PIN)

	if actorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "message": "actor_id is required"})
		return
	}
	if err := roster.ValidatePINFormat(pin); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "message": err.Error()})
		return
	}

	member, err := h.members.FindByID(c.Request.Context(), actorID)
	if errors.Is(err, roster.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"valid": false, "message": "member id not found"})
		return
	}
	if err != nil {
		h.logger.Error("pin verify lookup", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"valid": false, "message": "temporary system error, please retry"})
		return
	}

	if !roster.VerifyPIN(pin, h.pinSalt, member.PINHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "message": "invalid pin"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"actor_id": member.ID,
		"name":     member.Name,
		"grade":    member.Grade,
	})
}
