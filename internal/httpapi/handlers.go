// Package httpapi exposes the orchestration entry points over HTTP. The
// telephony webhook posts transcribed turns here and speaks back the
// returned text.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"preop-callbot/internal/db"
	"preop-callbot/internal/dialog"
	"preop-callbot/pkg"
)

// TurnProcessor is the orchestration entry point the handlers depend on.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, sessionID string, in dialog.TurnInput) (*dialog.TurnResult, error)
}

// SessionRepository is the narrow persistence contract the handlers need.
type SessionRepository interface {
	CreateSession(ctx context.Context, patientID string, callType pkg.CallType, daysPostSurgery int) (*pkg.CallSession, error)
	Load(ctx context.Context, id string) (*pkg.CallSession, error)
	ListByPatient(ctx context.Context, patientID string) ([]pkg.CallSession, error)
}

// Handler bundles the dependencies required by the HTTP surface.
type Handler struct {
	orch TurnProcessor
	repo SessionRepository
	log  zerolog.Logger
}

// NewHandler constructs the HTTP handler set.
func NewHandler(orch TurnProcessor, repo SessionRepository, log zerolog.Logger) *Handler {
	return &Handler{orch: orch, repo: repo, log: log}
}

// RegisterRoutes mounts the API on the echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	api := e.Group("/api")
	api.POST("/calls", h.CreateCall)
	api.POST("/calls/:id/turns", h.PostTurn)
	api.GET("/calls/:id", h.GetCall)
	api.GET("/patients/:id/calls", h.ListPatientCalls)
}

// Health answers deployment probes.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type createCallRequest struct {
	PatientID       string `json:"patient_id"`
	CallType        string `json:"call_type"`
	DaysPostSurgery int    `json:"days_post_surgery"`
}

type createCallResponse struct {
	SessionID    string         `json:"session_id"`
	ResponseText string         `json:"response_text"`
	Stage        dialog.Stage   `json:"stage"`
	Status       pkg.CallStatus `json:"status"`
}

// CreateCall opens a new call session and returns the opening line to
// speak.
func (h *Handler) CreateCall(c echo.Context) error {
	var req createCallRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.PatientID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	ct := pkg.CallType(req.CallType)
	if dialog.Gates(ct) == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown call_type")
	}

	ctx := c.Request().Context()
	sess, err := h.repo.CreateSession(ctx, req.PatientID, ct, req.DaysPostSurgery)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create session")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create session")
	}
	// Empty utterance signals "begin the call".
	result, err := h.orch.ProcessTurn(ctx, sess.ID, dialog.TurnInput{})
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sess.ID).Msg("failed to begin call")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to begin call")
	}
	return c.JSON(http.StatusCreated, createCallResponse{
		SessionID:    sess.ID,
		ResponseText: result.ResponseText,
		Stage:        result.Stage,
		Status:       result.Status,
	})
}

type postTurnRequest struct {
	Utterance  string   `json:"utterance"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// PostTurn applies one transcribed patient utterance to a session.
func (h *Handler) PostTurn(c echo.Context) error {
	var req postTurnRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	result, err := h.orch.ProcessTurn(c.Request().Context(), c.Param("id"), dialog.TurnInput{
		Utterance:  req.Utterance,
		Confidence: req.Confidence,
	})
	if err != nil {
		if errors.Is(err, db.ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		}
		h.log.Error().Err(err).Str("session_id", c.Param("id")).Msg("failed to process turn")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to process turn")
	}
	return c.JSON(http.StatusOK, result)
}

// GetCall returns the session with its report and history for staff
// tooling.
func (h *Handler) GetCall(c echo.Context) error {
	sess, err := h.repo.Load(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		}
		h.log.Error().Err(err).Str("session_id", c.Param("id")).Msg("failed to load session")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load session")
	}
	return c.JSON(http.StatusOK, sess)
}

// ListPatientCalls returns a patient's call sessions, newest first.
func (h *Handler) ListPatientCalls(c echo.Context) error {
	sessions, err := h.repo.ListByPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.log.Error().Err(err).Str("patient_id", c.Param("id")).Msg("failed to list sessions")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list sessions")
	}
	if sessions == nil {
		sessions = []pkg.CallSession{}
	}
	return c.JSON(http.StatusOK, sessions)
}
