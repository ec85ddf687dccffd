// Package service contains the business logic layer.
//
// This file implements the workflow engine: the single entry point through
// which a report's status ever changes. Every transition runs inside one
// database transaction covering the status move, the state-change record, the
// optional side-entity and the audit entry.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/metrics"
	"github.com/oleawatch/oleawatch/internal/repository"
)

// =============================================================================
// Interface Definition
// =============================================================================

// WorkflowService defines the interface for report workflow operations.
//
// All write operations are atomic: either the status move, state-change
// record, side-entity and audit entry all commit, or none do.
type WorkflowService interface {
	// Transition moves a report to an adjacent status.
	// Returns domain.ETRANSITION if the move is not in the adjacency map.
	// Returns domain.ESTALE if the report's status changed underneath the caller.
	// Returns domain.EINVALID / domain.EMISSINGFIELD for metadata violations.
	Transition(ctx context.Context, params domain.TransitionParams) (*domain.TransitionResult, error)

	// TransitionState returns a report's workflow position: current status,
	// legal next states, transition history and linked side-entities.
	// Returns domain.ENOTFOUND if the report does not exist.
	TransitionState(ctx context.Context, reportID uuid.UUID) (*domain.TransitionState, error)

	// ScheduleInspection moves the report UNDER_VERIFICATION and creates a
	// planned inspection in the same transaction.
	// Returns domain.ESTATE if the report is not in a state that admits
	// verification.
	ScheduleInspection(ctx context.Context, params ScheduleInspectionParams) (*domain.TransitionResult, error)

	// RequestClarification moves the report CLARIFICATION_REQUESTED and
	// creates the outgoing request in the same transaction. Repeating the
	// operation from CLARIFICATION_REQUESTED sends a further request without
	// moving the status.
	RequestClarification(ctx context.Context, params RequestClarificationParams) (*domain.TransitionResult, error)

	// NotifyAuthority moves the report REPORTED_TO_AUTHORITY and creates the
	// notice in the same transaction.
	// Returns domain.EPENDING if a previous notice is still awaiting feedback.
	// Returns domain.EMISSINGFIELD if the authority name is absent.
	NotifyAuthority(ctx context.Context, params NotifyAuthorityParams) (*domain.TransitionResult, error)

	// CloseFromInspection closes a report under verification on the strength
	// of a completed inspection. A nil inspection reference selects the most
	// recently completed inspection.
	// Returns domain.ESTATE if the report is not UNDER_VERIFICATION or the
	// inspection has no minutes.
	CloseFromInspection(ctx context.Context, params domain.InspectionRefParams) (*domain.TransitionResult, error)

	// EscalateFromInspection escalates a report under verification to an
	// authority, referencing a completed inspection as grounds.
	EscalateFromInspection(ctx context.Context, params EscalateFromInspectionParams) (*domain.TransitionResult, error)

	// RecordInspectionMinutes completes an inspection by recording its
	// minutes. This is not a status transition; it is what makes closing or
	// escalating from the inspection possible.
	// Returns domain.ESTATE if minutes were already recorded.
	RecordInspectionMinutes(ctx context.Context, params domain.RecordMinutesParams) (*domain.Inspection, error)
}

// Notifier sends outbound mail for workflow events. Implementations must be
// safe for concurrent use; a nil Notifier disables notifications.
type Notifier interface {
	ClarificationRequested(ctx context.Context, report *domain.Report, req *domain.ClarificationRequest) error
	AuthorityNotified(ctx context.Context, report *domain.Report, notice *domain.AuthorityNotice) error
	ClarificationOverdue(ctx context.Context, report *domain.Report, req *domain.ClarificationRequest) error
	FeedbackRecorded(ctx context.Context, report *domain.Report, summary string) error
}

// =============================================================================
// Composite Operation Parameters
// =============================================================================

// ScheduleInspectionParams contains validated parameters for the
// verification composite.
type ScheduleInspectionParams struct {
	ReportID      uuid.UUID
	Inspection    domain.InspectionMetadata
	Motive        string
	Note          string
	AttachmentIDs []uuid.UUID
	ActorID       uuid.UUID
}

// RequestClarificationParams contains validated parameters for the
// clarification composite.
type RequestClarificationParams struct {
	ReportID      uuid.UUID
	Clarification domain.ClarificationMetadata
	Motive        string
	Note          string
	AttachmentIDs []uuid.UUID
	ActorID       uuid.UUID
}

// NotifyAuthorityParams contains validated parameters for the authority
// composite.
type NotifyAuthorityParams struct {
	ReportID      uuid.UUID
	Notice        domain.AuthorityNoticeMetadata
	Motive        string
	Note          string
	AttachmentIDs []uuid.UUID
	ActorID       uuid.UUID
}

// EscalateFromInspectionParams contains validated parameters for escalating
// an inspected report to an authority.
type EscalateFromInspectionParams struct {
	domain.InspectionRefParams
	Notice domain.AuthorityNoticeMetadata
}

// =============================================================================
// Implementation
// =============================================================================

// workflowService implements the WorkflowService interface.
type workflowService struct {
	store    Store
	tx       Transactor
	factory  sideEntityFactory
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewWorkflowService creates a new WorkflowService.
//
// Parameters:
// - store: Pool-backed queries for read paths
// - tx: Transactor wrapping write paths in one transaction
// - notifier: Outbound mail for clarification/authority events (may be nil)
// - logger: Structured logger for operation logging
func NewWorkflowService(store Store, tx Transactor, notifier Notifier, logger *slog.Logger) WorkflowService {
	return &workflowService{
		store:    store,
		tx:       tx,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// metadataTarget maps each metadata kind to the only status it may accompany.
var metadataTarget = map[domain.MetadataKind]domain.ReportStatus{
	domain.MetadataKindInspection:      domain.ReportStatusUnderVerification,
	domain.MetadataKindClarification:   domain.ReportStatusClarificationRequested,
	domain.MetadataKindAuthorityNotice: domain.ReportStatusReportedToAuthority,
	domain.MetadataKindClose:           domain.ReportStatusClosed,
}

func (s *workflowService) Transition(ctx context.Context, params domain.TransitionParams) (*domain.TransitionResult, error) {
	const op = "workflow.Transition"

	if !params.Target.IsValid() {
		return nil, domain.Invalid(op, "invalid target status: "+params.Target.String())
	}
	if params.Metadata != nil {
		if want := metadataTarget[params.Metadata.Kind()]; want != params.Target {
			return nil, domain.Invalid(op, fmt.Sprintf(
				"%s metadata requires target status %s, got %s",
				params.Metadata.Kind(), want, params.Target))
		}
	}

	return s.run(ctx, params, transitionOptions{op: op})
}

func (s *workflowService) ScheduleInspection(ctx context.Context, params ScheduleInspectionParams) (*domain.TransitionResult, error) {
	const op = "workflow.ScheduleInspection"

	return s.run(ctx, domain.TransitionParams{
		ReportID:      params.ReportID,
		Target:        domain.ReportStatusUnderVerification,
		Motive:        params.Motive,
		Note:          params.Note,
		AttachmentIDs: params.AttachmentIDs,
		Metadata:      params.Inspection,
		ActorID:       params.ActorID,
	}, transitionOptions{
		op: op,
		requireFrom: []domain.ReportStatus{
			domain.ReportStatusInProgress,
			domain.ReportStatusUnderVerification,
		},
	})
}

func (s *workflowService) RequestClarification(ctx context.Context, params RequestClarificationParams) (*domain.TransitionResult, error) {
	const op = "workflow.RequestClarification"

	return s.run(ctx, domain.TransitionParams{
		ReportID:      params.ReportID,
		Target:        domain.ReportStatusClarificationRequested,
		Motive:        params.Motive,
		Note:          params.Note,
		AttachmentIDs: params.AttachmentIDs,
		Metadata:      params.Clarification,
		ActorID:       params.ActorID,
	}, transitionOptions{
		op: op,
		requireFrom: []domain.ReportStatus{
			domain.ReportStatusInProgress,
			domain.ReportStatusClarificationRequested,
		},
	})
}

func (s *workflowService) NotifyAuthority(ctx context.Context, params NotifyAuthorityParams) (*domain.TransitionResult, error) {
	const op = "workflow.NotifyAuthority"

	return s.run(ctx, domain.TransitionParams{
		ReportID:      params.ReportID,
		Target:        domain.ReportStatusReportedToAuthority,
		Motive:        params.Motive,
		Note:          params.Note,
		AttachmentIDs: params.AttachmentIDs,
		Metadata:      params.Notice,
		ActorID:       params.ActorID,
	}, transitionOptions{
		op: op,
		requireFrom: []domain.ReportStatus{
			domain.ReportStatusInProgress,
			domain.ReportStatusUnderVerification,
			domain.ReportStatusClarificationRequested,
			domain.ReportStatusReportedToAuthority,
		},
	})
}

func (s *workflowService) CloseFromInspection(ctx context.Context, params domain.InspectionRefParams) (*domain.TransitionResult, error) {
	const op = "workflow.CloseFromInspection"

	var result *domain.TransitionResult
	err := s.tx.InTx(ctx, func(store Store) error {
		inspection, err := s.resolveCompletedInspection(ctx, store, op, params.ReportID, params.InspectionID)
		if err != nil {
			return err
		}

		result, err = s.applyTransition(ctx, store, domain.TransitionParams{
			ReportID:      params.ReportID,
			Target:        domain.ReportStatusClosed,
			Motive:        params.Motive,
			Note:          params.Note,
			AttachmentIDs: params.AttachmentIDs,
			Metadata:      domain.CloseMetadata{Motive: params.Motive},
			ActorID:       params.ActorID,
		}, transitionOptions{
			op:          op,
			requireFrom: []domain.ReportStatus{domain.ReportStatusUnderVerification},
			auditExtra:  map[string]any{"inspection_id": inspection.ID},
		})
		return err
	})
	if err != nil {
		s.reject(op, err)
		return nil, err
	}

	s.committed(ctx, result)
	return result, nil
}

func (s *workflowService) EscalateFromInspection(ctx context.Context, params EscalateFromInspectionParams) (*domain.TransitionResult, error) {
	const op = "workflow.EscalateFromInspection"

	var result *domain.TransitionResult
	err := s.tx.InTx(ctx, func(store Store) error {
		inspection, err := s.resolveCompletedInspection(ctx, store, op, params.ReportID, params.InspectionID)
		if err != nil {
			return err
		}

		result, err = s.applyTransition(ctx, store, domain.TransitionParams{
			ReportID:      params.ReportID,
			Target:        domain.ReportStatusReportedToAuthority,
			Motive:        params.Motive,
			Note:          params.Note,
			AttachmentIDs: params.AttachmentIDs,
			Metadata:      params.Notice,
			ActorID:       params.ActorID,
		}, transitionOptions{
			op:          op,
			requireFrom: []domain.ReportStatus{domain.ReportStatusUnderVerification},
			auditExtra:  map[string]any{"inspection_id": inspection.ID},
		})
		return err
	})
	if err != nil {
		s.reject(op, err)
		return nil, err
	}

	s.committed(ctx, result)
	return result, nil
}

func (s *workflowService) RecordInspectionMinutes(ctx context.Context, params domain.RecordMinutesParams) (*domain.Inspection, error) {
	const op = "workflow.RecordInspectionMinutes"

	minutes := strings.TrimSpace(params.Minutes)
	if minutes == "" {
		return nil, domain.MissingField(op, "minutes")
	}

	var inspection *domain.Inspection
	err := s.tx.InTx(ctx, func(store Store) error {
		var err error
		inspection, err = store.GetInspection(ctx, params.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFound(op, "inspection", params.ID.String())
			}
			return domain.Internal(err, op, "failed to load inspection")
		}

		rows, err := store.UpdateInspectionMinutes(ctx, repository.UpdateInspectionMinutesParams{
			ID:      params.ID,
			Minutes: minutes,
			Outcome: strings.TrimSpace(params.Outcome),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to record minutes")
		}
		if rows == 0 {
			return domain.InvalidState(op, "minutes already recorded for inspection "+params.ID.String())
		}

		inspection.Minutes = minutes
		inspection.Outcome = strings.TrimSpace(params.Outcome)

		_, err = store.AppendAction(ctx, domain.AppendActionParams{
			ReportID: inspection.ReportID,
			Type:     domain.ActionTypeMinutesRecorded,
			Message:  fmt.Sprintf("Minutes recorded for %s inspection", inspection.Kind),
			ActorID:  params.ActorID,
			Metadata: auditMetadata(map[string]any{"inspection_id": inspection.ID}),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to append audit entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inspection minutes recorded",
		slog.String("inspection_id", inspection.ID.String()),
		slog.String("report_id", inspection.ReportID.String()))
	return inspection, nil
}

func (s *workflowService) TransitionState(ctx context.Context, reportID uuid.UUID) (*domain.TransitionState, error) {
	const op = "workflow.TransitionState"

	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "report", reportID.String())
		}
		return nil, domain.Internal(err, op, "failed to load report")
	}

	changes, err := s.store.ListStateChanges(ctx, reportID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load state changes")
	}
	inspections, err := s.store.ListInspectionsByReport(ctx, reportID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load inspections")
	}
	clarifications, err := s.store.ListClarificationsByReport(ctx, reportID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load clarification requests")
	}
	notices, err := s.store.ListNoticesByReport(ctx, reportID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load authority notices")
	}

	return &domain.TransitionState{
		ReportID:             report.ID,
		Status:               report.Status,
		AvailableTransitions: report.Status.AvailableTransitions(),
		StateChanges:         changes,
		Inspections:          inspections,
		Clarifications:       clarifications,
		Notices:              notices,
	}, nil
}

// =============================================================================
// Engine Core
// =============================================================================

// transitionOptions tunes how applyTransition validates the move.
type transitionOptions struct {
	op string

	// requireFrom, when non-empty, replaces the adjacency check: the report
	// must currently be in one of these states. Composites use this because
	// their precondition sets are wider than single adjacency edges (a second
	// clarification request does not move the status at all).
	requireFrom []domain.ReportStatus

	// auditExtra is merged into the audit entry metadata.
	auditExtra map[string]any
}

// run wraps applyTransition in a transaction and handles post-commit
// observability and notifications.
func (s *workflowService) run(ctx context.Context, params domain.TransitionParams, opts transitionOptions) (*domain.TransitionResult, error) {
	var result *domain.TransitionResult
	err := s.tx.InTx(ctx, func(store Store) error {
		var err error
		result, err = s.applyTransition(ctx, store, params, opts)
		return err
	})
	if err != nil {
		s.reject(opts.op, err)
		return nil, err
	}

	s.committed(ctx, result)
	return result, nil
}

// applyTransition performs one validated transition against the given
// transactional store. On return with nil error, the status move, the
// state-change record, the side-entity and the audit entry are all written
// but not yet committed.
func (s *workflowService) applyTransition(ctx context.Context, store Store, params domain.TransitionParams, opts transitionOptions) (*domain.TransitionResult, error) {
	op := opts.op

	motive := strings.TrimSpace(params.Motive)
	if motive == "" {
		return nil, domain.MissingField(op, "motive")
	}

	report, err := store.GetReportForUpdate(ctx, params.ReportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "report", params.ReportID.String())
		}
		return nil, domain.Internal(err, op, "failed to load report")
	}

	from := report.Status
	if len(opts.requireFrom) > 0 {
		if !statusIn(from, opts.requireFrom) {
			return nil, domain.InvalidState(op, fmt.Sprintf(
				"operation requires status %s; report is %s",
				statusList(opts.requireFrom), from))
		}
	} else if !from.CanTransitionTo(params.Target) {
		return nil, domain.InvalidTransition(op, from, params.Target)
	}

	now := s.now().UTC()

	entity, err := s.factory.build(ctx, store, report, params.Metadata, params.ActorID, now)
	if err != nil {
		return nil, err
	}

	rawMeta, err := domain.MarshalTransitionMetadata(params.Metadata)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to encode transition metadata")
	}

	change, err := store.InsertStateChange(ctx, repository.InsertStateChangeParams{
		ID:         uuid.New(),
		ReportID:   report.ID,
		FromStatus: from,
		ToStatus:   params.Target,
		Motive:     motive,
		Note:       strings.TrimSpace(params.Note),
		Metadata:   rawMeta,
		ActorID:    params.ActorID,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to record state change")
	}

	if len(params.AttachmentIDs) > 0 {
		if err := s.linkAttachments(ctx, store, op, change, params); err != nil {
			return nil, err
		}
	}

	if from != params.Target {
		rows, err := store.UpdateReportStatus(ctx, repository.UpdateReportStatusParams{
			ID:       report.ID,
			Expected: from,
			Target:   params.Target,
		})
		if err != nil {
			return nil, domain.Internal(err, op, "failed to update report status")
		}
		if rows == 0 {
			return nil, domain.ConcurrentModification(op, report.ID.String())
		}
	}

	if err := s.appendTransitionAudit(ctx, store, op, change, entity, len(params.AttachmentIDs), opts.auditExtra); err != nil {
		return nil, err
	}

	report.Status = params.Target
	report.UpdatedAt = now
	return &domain.TransitionResult{
		Report:        report,
		StateChange:   change,
		CreatedEntity: entity,
	}, nil
}

// appendTransitionAudit writes the single audit entry for one transition.
// The entry's type names the side-entity created, falling back to
// status_changed for pure moves and closures; entity and attachment detail is
// folded into the message and metadata rather than written as further entries.
func (s *workflowService) appendTransitionAudit(ctx context.Context, store Store, op string, change *domain.StateChange, entity domain.CreatedEntity, attachments int, extra map[string]any) error {
	meta := map[string]any{
		"from":            change.FromStatus,
		"to":              change.ToStatus,
		"state_change_id": change.ID,
	}
	for k, v := range extra {
		meta[k] = v
	}

	var parts []string
	if change.FromStatus != change.ToStatus {
		parts = append(parts, fmt.Sprintf("Status changed from %s to %s",
			change.FromStatus.Label(), change.ToStatus.Label()))
	}

	actionType := domain.ActionTypeStatusChanged
	switch {
	case entity.Inspection != nil:
		i := entity.Inspection
		actionType = domain.ActionTypeInspectionCreated
		parts = append(parts, fmt.Sprintf("%s inspection scheduled for %s",
			i.Kind, i.ScheduledAt.Format("2006-01-02")))
		meta["inspection_id"] = i.ID
	case entity.Clarification != nil:
		c := entity.Clarification
		actionType = domain.ActionTypeClarificationSent
		parts = append(parts, fmt.Sprintf("Clarification request sent to %s", c.RecipientCategory))
		meta["clarification_id"] = c.ID
	case entity.AuthorityNotice != nil:
		n := entity.AuthorityNotice
		actionType = domain.ActionTypeAuthorityNotified
		parts = append(parts, fmt.Sprintf("Authority notified: %s (%s)", n.AuthorityName, n.AuthorityKind))
		meta["notice_id"] = n.ID
		meta["severity"] = n.Severity
	}

	if attachments > 0 {
		parts = append(parts, fmt.Sprintf("%d attachment(s) linked as evidence", attachments))
		meta["attachment_count"] = attachments
	}

	_, err := store.AppendAction(ctx, domain.AppendActionParams{
		ReportID: change.ReportID,
		Type:     actionType,
		Message:  strings.Join(parts, "; "),
		ActorID:  change.ActorID,
		Metadata: auditMetadata(meta),
	})
	if err != nil {
		return domain.Internal(err, op, "failed to append audit entry")
	}
	return nil
}

// linkAttachments verifies the referenced evidence exists and links it to the
// state-change record. The transition's audit entry carries the link detail.
func (s *workflowService) linkAttachments(ctx context.Context, store Store, op string, change *domain.StateChange, params domain.TransitionParams) error {
	count, err := store.CountAttachments(ctx, params.AttachmentIDs)
	if err != nil {
		return domain.Internal(err, op, "failed to verify attachments")
	}
	if count != int64(len(params.AttachmentIDs)) {
		return domain.Invalid(op, "one or more attachments do not exist")
	}

	if _, err := store.LinkAttachmentsToStateChange(ctx, change.ID, params.AttachmentIDs); err != nil {
		return domain.Internal(err, op, "failed to link attachments")
	}
	return nil
}

// resolveCompletedInspection loads the inspection a close/escalate operation
// refers to and verifies it belongs to the report and has minutes.
func (s *workflowService) resolveCompletedInspection(ctx context.Context, store Store, op string, reportID uuid.UUID, inspectionID *uuid.UUID) (*domain.Inspection, error) {
	if inspectionID == nil {
		inspection, err := store.LatestCompletedInspection(ctx, reportID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, domain.InvalidState(op, "report has no completed inspection")
			}
			return nil, domain.Internal(err, op, "failed to load inspection")
		}
		return inspection, nil
	}

	inspection, err := store.GetInspection(ctx, *inspectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "inspection", inspectionID.String())
		}
		return nil, domain.Internal(err, op, "failed to load inspection")
	}
	if inspection.ReportID != reportID {
		return nil, domain.Invalid(op, "inspection does not belong to this report")
	}
	if !inspection.IsCompleted() {
		return nil, domain.InvalidState(op, "inspection minutes have not been recorded")
	}
	return inspection, nil
}

// committed handles metrics, logging and notifications after a successful
// transition. Notification failures are logged, never surfaced: the
// transition has already committed.
func (s *workflowService) committed(ctx context.Context, result *domain.TransitionResult) {
	change := result.StateChange
	if change.FromStatus != change.ToStatus {
		metrics.TransitionsTotal.WithLabelValues(
			change.FromStatus.String(), change.ToStatus.String()).Inc()
	}

	s.logger.Info("report transition committed",
		slog.String("report_id", change.ReportID.String()),
		slog.String("from", change.FromStatus.String()),
		slog.String("to", change.ToStatus.String()),
		slog.String("actor_id", change.ActorID.String()))

	switch {
	case result.CreatedEntity.Inspection != nil:
		metrics.SideEntitiesCreated.WithLabelValues("inspection").Inc()
	case result.CreatedEntity.Clarification != nil:
		metrics.SideEntitiesCreated.WithLabelValues("clarification").Inc()
		if s.notifier != nil {
			c := result.CreatedEntity.Clarification
			if err := s.notifier.ClarificationRequested(ctx, result.Report, c); err != nil {
				s.logger.Error("failed to send clarification request email",
					slog.String("clarification_id", c.ID.String()),
					slog.String("error", err.Error()))
			}
		}
	case result.CreatedEntity.AuthorityNotice != nil:
		metrics.SideEntitiesCreated.WithLabelValues("authority_notice").Inc()
		if s.notifier != nil {
			n := result.CreatedEntity.AuthorityNotice
			if err := s.notifier.AuthorityNotified(ctx, result.Report, n); err != nil {
				s.logger.Error("failed to send authority notice email",
					slog.String("notice_id", n.ID.String()),
					slog.String("error", err.Error()))
			}
		}
	}
}

// reject records a failed transition attempt.
func (s *workflowService) reject(op string, err error) {
	code := domain.ErrorCode(err)
	switch code {
	case domain.ETRANSITION, domain.ESTATE, domain.EPENDING, domain.ESTALE:
		metrics.TransitionsRejected.WithLabelValues(code).Inc()
	}
	s.logger.Warn("transition rejected",
		slog.String("op", op),
		slog.String("code", code),
		slog.String("error", err.Error()))
}

// =============================================================================
// Helpers
// =============================================================================

func statusIn(status domain.ReportStatus, set []domain.ReportStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func statusList(set []domain.ReportStatus) string {
	parts := make([]string, len(set))
	for i, s := range set {
		parts[i] = s.String()
	}
	return strings.Join(parts, " or ")
}

// auditMetadata encodes structured audit detail, dropping it on encode
// failure rather than failing the transaction.
func auditMetadata(fields map[string]any) json.RawMessage {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return raw
}
