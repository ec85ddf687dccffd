// Package handler contains the HTTP handlers for the OleaWatch API.
//
// This file implements the workflow endpoints: the generic status transition,
// the composite operations that create a side-entity together with the move,
// and the read side of a report's workflow position.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/oleawatch/oleawatch/internal/auth"
	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/service"
)

// WorkflowHandler handles HTTP requests for workflow transitions.
type WorkflowHandler struct {
	workflow service.WorkflowService
	logger   *slog.Logger
}

// NewWorkflowHandler creates a new WorkflowHandler.
func NewWorkflowHandler(workflow service.WorkflowService, logger *slog.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		workflow: workflow,
		logger:   logger,
	}
}

// RegisterRoutes registers the workflow routes on the mux. All routes require
// an authenticated operator.
func (h *WorkflowHandler) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("POST /api/reports/{id}/transitions", protect(http.HandlerFunc(h.Transition)))
	mux.Handle("GET /api/reports/{id}/transitions", protect(http.HandlerFunc(h.TransitionState)))
	mux.Handle("POST /api/reports/{id}/inspections", protect(http.HandlerFunc(h.ScheduleInspection)))
	mux.Handle("POST /api/reports/{id}/clarifications", protect(http.HandlerFunc(h.RequestClarification)))
	mux.Handle("POST /api/reports/{id}/authority-notices", protect(http.HandlerFunc(h.NotifyAuthority)))
	mux.Handle("POST /api/reports/{id}/close-from-inspection", protect(http.HandlerFunc(h.CloseFromInspection)))
	mux.Handle("POST /api/reports/{id}/escalate", protect(http.HandlerFunc(h.EscalateFromInspection)))
	mux.Handle("POST /api/inspections/{id}/minutes", protect(http.HandlerFunc(h.RecordMinutes)))
}

// transitionRequest is the body of the generic transition endpoint. Metadata
// is kept raw so the closed union decides the concrete payload type.
type transitionRequest struct {
	Target        domain.ReportStatus `json:"target"`
	Motive        string              `json:"motive"`
	Note          string              `json:"note"`
	AttachmentIDs []uuid.UUID         `json:"attachment_ids"`
	Metadata      json.RawMessage     `json:"metadata"`
}

// Transition moves a report to an adjacent status.
// POST /api/reports/{id}/transitions
func (h *WorkflowHandler) Transition(w http.ResponseWriter, r *http.Request) {
	operator := auth.GetOperatorFromRequest(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	metadata, err := domain.UnmarshalTransitionMetadata(req.Metadata)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	result, err := h.workflow.Transition(r.Context(), domain.TransitionParams{
		ReportID:      id,
		Target:        req.Target,
		Motive:        req.Motive,
		Note:          req.Note,
		AttachmentIDs: req.AttachmentIDs,
		Metadata:      metadata,
		ActorID:       operator.ID,
	})
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, newTransitionResultView(result))
}

// TransitionState returns the report's workflow position.
// GET /api/reports/{id}/transitions
func (h *WorkflowHandler) TransitionState(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	state, err := h.workflow.TransitionState(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, newTransitionStateView(state))
}

// scheduleInspectionRequest is the body of the inspection composite.
type scheduleInspectionRequest struct {
	Kind          domain.InspectionKind `json:"kind"`
	ScheduledAt   time.Time             `json:"scheduled_at"`
	Location      string                `json:"location"`
	Inspector     string                `json:"inspector"`
	Motive        string                `json:"motive"`
	Note          string                `json:"note"`
	AttachmentIDs []uuid.UUID           `json:"attachment_ids"`
}

// ScheduleInspection moves the report under verification and creates a
// planned inspection in one transaction.
// POST /api/reports/{id}/inspections
func (h *WorkflowHandler) ScheduleInspection(w http.ResponseWriter, r *http.Request) {
	operator := auth.GetOperatorFromRequest(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	var req scheduleInspectionRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	result, err := h.workflow.ScheduleInspection(r.Context(), service.ScheduleInspectionParams{
		ReportID: id,
		Inspection: domain.InspectionMetadata{
			InspectionKind: req.Kind,
			ScheduledAt:    req.ScheduledAt,
			Location:       req.Location,
			Inspector:      req.Inspector,
		},
		Motive:        req.Motive,
		Note:          req.Note,
		AttachmentIDs: req.AttachmentIDs,
		ActorID:       operator.ID,
	})
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusCreated, newTransitionResultView(result))
}

// requestClarificationRequest is the body of the clarification composite.
type requestClarificationRequest struct {
	RecipientCategory domain.RecipientCategory `json:"recipient_category"`
	RecipientEmail    string                   `json:"recipient_email"`
	Subject           string                   `json:"subject"`
	Questions         []string                 `json:"questions"`
	DueAt             *time.Time               `json:"due_date"`
	Motive            string                   `json:"motive"`
	Note              string                   `json:"note"`
	AttachmentIDs     []uuid.UUID              `json:"attachment_ids"`
}

// RequestClarification moves the report to clarification_requested and
// records the outgoing request in one transaction. Repeating the call while
// already waiting sends a further request without moving the status.
// POST /api/reports/{id}/clarifications
func (h *WorkflowHandler) RequestClarification(w http.ResponseWriter, r *http.Request) {
	operator := auth.GetOperatorFromRequest(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	var req requestClarificationRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	result, err := h.workflow.RequestClarification(r.Context(), service.RequestClarificationParams{
		ReportID: id,
		Clarification: domain.ClarificationMetadata{
			RecipientCategory: req.RecipientCategory,
			RecipientEmail:    req.RecipientEmail,
			Subject:           req.Subject,
			Questions:         req.Questions,
			DueAt:             req.DueAt,
		},
		Motive:        req.Motive,
		Note:          req.Note,
		AttachmentIDs: req.AttachmentIDs,
		ActorID:       operator.ID,
	})
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusCreated, newTransitionResultView(result))
}

// notifyAuthorityRequest is the body of the authority composite.
type notifyAuthorityRequest struct {
	AuthorityKind domain.AuthorityKind  `json:"authority_kind"`
	AuthorityName string                `json:"authority_name"`
	Subject       string                `json:"subject"`
	Violations    []string              `json:"violations"`
	Severity      domain.NoticeSeverity `json:"severity"`
	Motive        string                `json:"motive"`
	Note          string                `json:"note"`
	AttachmentIDs []uuid.UUID           `json:"attachment_ids"`
}

// NotifyAuthority moves the report to reported_to_authority and records the
// notice in one transaction.
// POST /api/reports/{id}/authority-notices
func (h *WorkflowHandler) NotifyAuthority(w http.ResponseWriter, r *http.Request) {
	operator := auth.GetOperatorFromRequest(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	var req notifyAuthorityRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	result, err := h.workflow.NotifyAuthority(r.Context(), service.NotifyAuthorityParams{
		ReportID: id,
		Notice: domain.AuthorityNoticeMetadata{
			AuthorityKind: req.AuthorityKind,
			AuthorityName: req.AuthorityName,
			Subject:       req.Subject,
			Violations:    req.Violations,
			Severity:      req.Severity,
		},
		Motive:        req.Motive,
		Note:          req.Note,
		AttachmentIDs: req.AttachmentIDs,
		ActorID:       operator.ID,
	})
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusCreated, newTransitionResultView(result))
}

// inspectionRefRequest is the body of the close-from-inspection endpoint.
type inspectionRefRequest struct {
	InspectionID  *uuid.UUID  `json:"inspection_id"`
	Motive        string      `json:"motive"`
	Note          string      `json:"note"`
	AttachmentIDs []uuid.UUID `json:"attachment_ids"`
}

// CloseFromInspection closes a report under verification on the strength of a
// completed inspection.
// POST /api/reports/{id}/close-from-inspection
func (h *WorkflowHandler) CloseFromInspection(w http.ResponseWriter, r *http.Request) {
	operator := auth.GetOperatorFromRequest(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	var req inspectionRefRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	result, err := h.workflow.CloseFromInspection(r.Context(), domain.InspectionRefParams{
		ReportID:      id,
		InspectionID:  req.InspectionID,
		Motive:        req.Motive,
		Note:          req.Note,
		AttachmentIDs: req.AttachmentIDs,
		ActorID:       operator.ID,
	})
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, newTransitionResultView(result))
}

// escalateRequest is the body of the escalate-from-inspection endpoint.
type escalateRequest struct {
	InspectionID  *uuid.UUID            `json:"inspection_id"`
	AuthorityKind domain.AuthorityKind  `json:"authority_kind"`
	AuthorityName string                `json:"authority_name"`
	Subject       string                `json:"subject"`
	Violations    []string              `json:"violations"`
	Severity      domain.NoticeSeverity `json:"severity"`
	Motive        string                `json:"motive"`
	Note          string                `json:"note"`
	AttachmentIDs []uuid.UUID           `json:"attachment_ids"`
}

// EscalateFromInspection escalates a report under verification to an
// authority, referencing a completed inspection as grounds.
// POST /api/reports/{id}/escalate
func (h *WorkflowHandler) EscalateFromInspection(w http.ResponseWriter, r *http.Request) {
	operator := auth.GetOperatorFromRequest(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	var req escalateRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	result, err := h.workflow.EscalateFromInspection(r.Context(), service.EscalateFromInspectionParams{
		InspectionRefParams: domain.InspectionRefParams{
			ReportID:      id,
			InspectionID:  req.InspectionID,
			Motive:        req.Motive,
			Note:          req.Note,
			AttachmentIDs: req.AttachmentIDs,
			ActorID:       operator.ID,
		},
		Notice: domain.AuthorityNoticeMetadata{
			AuthorityKind: req.AuthorityKind,
			AuthorityName: req.AuthorityName,
			Subject:       req.Subject,
			Violations:    req.Violations,
			Severity:      req.Severity,
		},
	})
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusCreated, newTransitionResultView(result))
}

// recordMinutesRequest is the body of the minutes endpoint.
type recordMinutesRequest struct {
	Minutes string `json:"minutes"`
	Outcome string `json:"outcome"`
}

// RecordMinutes completes an inspection by recording its minutes. This is
// not a status transition; it is what makes closing or escalating from the
// inspection possible.
// POST /api/inspections/{id}/minutes
func (h *WorkflowHandler) RecordMinutes(w http.ResponseWriter, r *http.Request) {
	operator := auth.GetOperatorFromRequest(r)

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	var req recordMinutesRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	inspection, err := h.workflow.RecordInspectionMinutes(r.Context(), domain.RecordMinutesParams{
		ID:      id,
		Minutes: req.Minutes,
		Outcome: req.Outcome,
		ActorID: operator.ID,
	})
	if err != nil {
		ErrorResponse(w, r, err, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, newInspectionView(inspection))
}
