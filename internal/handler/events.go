package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/counterworks/counterlog/internal/ledger"
)

// EventsHandler exposes the event-recording endpoints: attendance check-ins
// and assist session start/end, plus the active-session lookup the form UI
// polls.
type EventsHandler struct {
	writer   *ledger.Writer
	resolver *ledger.Resolver
	logger   *zap.Logger
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(writer *ledger.Writer, resolver *ledger.Resolver, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{writer: writer, resolver: resolver, logger: logger}
}

// Register mounts the event routes on the given router group.
func (h *EventsHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/attendance", h.RecordAttendance)
	rg.POST("/assist", h.Assist)
	rg.GET("/assist/active", h.ActiveAssist)
}

type attendanceRequest struct {
	ActorID string `json:"actor_id"`
	Session string `json:"session_label"`
}

// RecordAttendance handles POST /attendance.
func (h *EventsHandler) RecordAttendance(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	session := ledger.Session(strings.ToUpper(strings.TrimSpace(req.Session)))
	result, err := h.writer.RecordAttendance(c.Request.Context(), req.ActorID, session)
	if err != nil {
		h.reject(c, err, "record attendance")
		return
	}

	recordAppended(string(ledger.KindAttendance))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "attendance recorded, thank you for being on duty",
		"data":    result,
	})
}

type assistRequest struct {
	ActorID     string `json:"actor_id"`
	Action      string `json:"action"`
	Note        string `json:"note"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// Assist handles POST /assist with action START or END.
func (h *EventsHandler) Assist(c *gin.Context) {
	var req assistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	switch strings.ToUpper(strings.TrimSpace(req.Action)) {
	case "START":
		result, err := h.writer.StartAssist(c.Request.Context(),
			req.ActorID, req.Note, req.Location, req.Category, req.Subcategory)
		if err != nil {
			h.reject(c, err, "start assist")
			return
		}
		recordAppended(string(ledger.KindAssistStart))
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "assist session started, start time recorded",
			"data":    result,
		})

	case "END":
		result, err := h.writer.EndAssist(c.Request.Context(), req.ActorID)
		if err != nil {
			h.reject(c, err, "end assist")
			return
		}
		recordAppended(string(ledger.KindAssistEnd))
		message := "assist session ended and recorded"
		if result.Warning != "" {
			message = "assist session ended and recorded, with a note"
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": message,
			"data":    result,
		})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "action must be START or END"})
	}
}

// ActiveAssist handles GET /assist/active?actor_id=...
func (h *EventsHandler) ActiveAssist(c *gin.Context) {
	actorID := ledger.Sanitize(c.Query("actor_id"))
	if actorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "actor_id is required"})
		return
	}

	rec, err := h.resolver.ActiveAssist(c.Request.Context(), actorID)
	if err != nil {
		h.logger.Error("active assist lookup", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "temporary system error, please retry"})
		return
	}

	if rec == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"active":  true,
		"data": gin.H{
			"record_id":  rec.RecordID,
			"actor_id":   rec.ActorID,
			"actor_name": rec.ActorName,
			"start_time": rec.StartTime,
			"note":       rec.Note,
		},
	})
}

// reject maps writer errors onto HTTP responses. Business rejections carry
// their own message; anything else is an infrastructure failure reported
// generically and logged as a fault.
func (h *EventsHandler) reject(c *gin.Context, err error, op string) {
	if status, reason, ok := rejectionStatus(err); ok {
		recordRejection(reason)
		c.JSON(status, gin.H{"success": false, "message": err.Error()})
		return
	}
	h.logger.Error(op, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "temporary system error, please retry"})
}

func rejectionStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, ledger.ErrDuplicateEvent):
		return http.StatusConflict, "duplicate_event", true
	case errors.Is(err, ledger.ErrConflictingActiveSession):
		return http.StatusConflict, "conflicting_active_session", true
	case errors.Is(err, ledger.ErrNoActiveSession):
		return http.StatusNotFound, "no_active_session", true
	case errors.Is(err, ledger.ErrActorNotFound):
		return http.StatusNotFound, "actor_not_found", true
	case errors.Is(err, ledger.ErrInvalidSession):
		return http.StatusBadRequest, "invalid_session", true
	case errors.Is(err, ledger.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input", true
	}
	return 0, "", false
}
