// Package service contains the business logic layer.
//
// This file implements the feedback reconciler: recording replies on
// clarification requests and authority notices, and moving the parent report
// accordingly in the same transaction.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/metrics"
	"github.com/oleawatch/oleawatch/internal/repository"
)

// Closure motives stamped by the reconciler. Operator-facing closures carry a
// free-text motive instead.
const (
	closureMotiveClarified = "Clarification feedback received; case resolved without escalation"
	closureMotiveAuthority = "Authority feedback received; case closed on authority response"
)

// =============================================================================
// Interface Definition
// =============================================================================

// FeedbackService defines the interface for reconciling external replies.
//
// Feedback is write-once: recording a second reply on the same request or
// notice fails with domain.EANSWERED and leaves the first reply untouched.
type FeedbackService interface {
	// RecordClarificationFeedback stamps the reply on a clarification request
	// and transitions the parent report: CLOSED when the reply settles the
	// case, REPORTED_TO_AUTHORITY when it is escalated.
	// Returns domain.EANSWERED if the request was already answered.
	// Returns domain.ESTATE if the parent report is not CLARIFICATION_REQUESTED.
	// Returns domain.EMISSINGFIELD if escalation names no authority.
	RecordClarificationFeedback(ctx context.Context, params domain.ClarificationFeedbackParams) (*domain.TransitionResult, error)

	// RecordAuthorityFeedback stamps the authority's reply on a notice and,
	// unless the caller keeps the case open, closes the parent report.
	// Returns domain.EANSWERED if the notice was already answered.
	// Returns domain.ESTATE if the parent report is not REPORTED_TO_AUTHORITY.
	RecordAuthorityFeedback(ctx context.Context, params domain.AuthorityFeedbackParams) (*domain.TransitionResult, error)
}

// =============================================================================
// Implementation
// =============================================================================

// feedbackService implements the FeedbackService interface.
type feedbackService struct {
	tx     Transactor
	engine *workflowService
	logger *slog.Logger
	now    func() time.Time
}

// NewFeedbackService creates a new FeedbackService. The workflow service must
// be the one returned by NewWorkflowService; the reconciler reuses its
// transition core so parent-report moves share one code path.
func NewFeedbackService(tx Transactor, workflow WorkflowService, logger *slog.Logger) FeedbackService {
	engine, ok := workflow.(*workflowService)
	if !ok {
		panic("service: NewFeedbackService requires the concrete workflow engine")
	}
	return &feedbackService{
		tx:     tx,
		engine: engine,
		logger: logger,
		now:    time.Now,
	}
}

func (s *feedbackService) RecordClarificationFeedback(ctx context.Context, params domain.ClarificationFeedbackParams) (*domain.TransitionResult, error) {
	const op = "feedback.RecordClarificationFeedback"

	feedback := strings.TrimSpace(params.Feedback)
	if feedback == "" {
		return nil, domain.MissingField(op, "feedback")
	}
	if !params.Outcome.IsValid() {
		return nil, domain.Invalid(op, "invalid outcome: "+params.Outcome.String())
	}
	if params.Outcome == domain.ClarificationOutcomeEscalated && strings.TrimSpace(params.AuthorityName) == "" {
		return nil, domain.MissingField(op, "authority_name")
	}

	var result *domain.TransitionResult
	err := s.tx.InTx(ctx, func(store Store) error {
		clarification, err := store.GetClarification(ctx, params.ClarificationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFound(op, "clarification request", params.ClarificationID.String())
			}
			return domain.Internal(err, op, "failed to load clarification request")
		}
		if clarification.IsAnswered() {
			return domain.AlreadyAnswered(op, "clarification request", clarification.ID.String())
		}

		now := s.now().UTC()
		rows, err := store.RecordClarificationFeedback(ctx, repository.RecordClarificationFeedbackParams{
			ID:         clarification.ID,
			Feedback:   feedback,
			FeedbackAt: now,
			Outcome:    params.Outcome,
		})
		if err != nil {
			return domain.Internal(err, op, "failed to record feedback")
		}
		if rows == 0 {
			return domain.AlreadyAnswered(op, "clarification request", clarification.ID.String())
		}

		_, err = store.AppendAction(ctx, domain.AppendActionParams{
			ReportID: clarification.ReportID,
			Type:     domain.ActionTypeClarificationAnswered,
			Message:  fmt.Sprintf("Clarification answered by %s", clarification.RecipientCategory),
			ActorID:  params.ActorID,
			Metadata: auditMetadata(map[string]any{
				"clarification_id": clarification.ID,
				"outcome":          params.Outcome,
			}),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to append audit entry")
		}

		result, err = s.transitionParent(ctx, store, op, clarification, params)
		return err
	})
	if err != nil {
		s.engine.reject(op, err)
		return nil, err
	}

	metrics.FeedbackRecorded.WithLabelValues("clarification", params.Outcome.String()).Inc()
	s.engine.committed(ctx, result)
	s.notifyFeedback(ctx, result.Report,
		fmt.Sprintf("Clarification feedback recorded (%s)", params.Outcome))
	return result, nil
}

// notifyFeedback mails the compliance inbox after a reply is committed. Send
// failures are logged, never surfaced.
func (s *feedbackService) notifyFeedback(ctx context.Context, report *domain.Report, summary string) {
	if s.engine.notifier == nil || report == nil {
		return
	}
	if err := s.engine.notifier.FeedbackRecorded(ctx, report, summary); err != nil {
		s.logger.Error("failed to send feedback notification",
			slog.String("report_id", report.ID.String()),
			slog.String("error", err.Error()))
	}
}

// transitionParent moves the parent report after a clarification reply. The
// move runs the same validation and bookkeeping as operator-driven
// transitions; its requireFrom pins the parent to CLARIFICATION_REQUESTED.
func (s *feedbackService) transitionParent(ctx context.Context, store Store, op string, clarification *domain.ClarificationRequest, params domain.ClarificationFeedbackParams) (*domain.TransitionResult, error) {
	requireFrom := []domain.ReportStatus{domain.ReportStatusClarificationRequested}

	if params.Outcome == domain.ClarificationOutcomeClosed {
		return s.engine.applyTransition(ctx, store, domain.TransitionParams{
			ReportID: clarification.ReportID,
			Target:   domain.ReportStatusClosed,
			Motive:   closureMotiveClarified,
			Metadata: domain.CloseMetadata{Motive: closureMotiveClarified},
			ActorID:  params.ActorID,
		}, transitionOptions{
			op:          op,
			requireFrom: requireFrom,
			auditExtra:  map[string]any{"clarification_id": clarification.ID},
		})
	}

	kind := params.AuthorityKind
	if kind == "" {
		kind = domain.AuthorityKindOther
	}

	return s.engine.applyTransition(ctx, store, domain.TransitionParams{
		ReportID: clarification.ReportID,
		Target:   domain.ReportStatusReportedToAuthority,
		Motive:   "Clarification reply insufficient; escalating to authority",
		Metadata: domain.AuthorityNoticeMetadata{
			AuthorityKind: kind,
			AuthorityName: strings.TrimSpace(params.AuthorityName),
			Subject:       "Escalation after clarification: " + clarification.Subject,
			Severity:      domain.NoticeSeverityMedium,
		},
		ActorID: params.ActorID,
	}, transitionOptions{
		op:          op,
		requireFrom: requireFrom,
		auditExtra:  map[string]any{"clarification_id": clarification.ID},
	})
}

func (s *feedbackService) RecordAuthorityFeedback(ctx context.Context, params domain.AuthorityFeedbackParams) (*domain.TransitionResult, error) {
	const op = "feedback.RecordAuthorityFeedback"

	feedback := strings.TrimSpace(params.Feedback)
	if feedback == "" {
		return nil, domain.MissingField(op, "feedback")
	}

	var result *domain.TransitionResult
	var report *domain.Report
	err := s.tx.InTx(ctx, func(store Store) error {
		notice, err := store.GetNotice(ctx, params.NoticeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFound(op, "authority notice", params.NoticeID.String())
			}
			return domain.Internal(err, op, "failed to load authority notice")
		}
		if !notice.IsPending() {
			return domain.AlreadyAnswered(op, "authority notice", notice.ID.String())
		}

		report, err = store.GetReportForUpdate(ctx, notice.ReportID)
		if err != nil {
			return domain.Internal(err, op, "failed to load report")
		}
		if report.Status != domain.ReportStatusReportedToAuthority {
			return domain.InvalidState(op, fmt.Sprintf(
				"operation requires status %s; report is %s",
				domain.ReportStatusReportedToAuthority, report.Status))
		}

		now := s.now().UTC()
		rows, err := store.RecordNoticeFeedback(ctx, repository.RecordNoticeFeedbackParams{
			ID:             notice.ID,
			Feedback:       feedback,
			FeedbackAt:     now,
			ProtocolNumber: strings.TrimSpace(params.ProtocolNumber),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to record feedback")
		}
		if rows == 0 {
			return domain.AlreadyAnswered(op, "authority notice", notice.ID.String())
		}

		_, err = store.AppendAction(ctx, domain.AppendActionParams{
			ReportID: notice.ReportID,
			Type:     domain.ActionTypeAuthorityAnswered,
			Message:  fmt.Sprintf("Authority %s responded", notice.AuthorityName),
			ActorID:  params.ActorID,
			Metadata: auditMetadata(map[string]any{
				"notice_id":       notice.ID,
				"protocol_number": strings.TrimSpace(params.ProtocolNumber),
			}),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to append audit entry")
		}

		if !params.CloseCase {
			// The case stays reported_to_authority; later notices or a
			// manual close decide its fate.
			return nil
		}

		result, err = s.engine.applyTransition(ctx, store, domain.TransitionParams{
			ReportID: notice.ReportID,
			Target:   domain.ReportStatusClosed,
			Motive:   closureMotiveAuthority,
			Metadata: domain.CloseMetadata{Motive: closureMotiveAuthority},
			ActorID:  params.ActorID,
		}, transitionOptions{
			op:          op,
			requireFrom: []domain.ReportStatus{domain.ReportStatusReportedToAuthority},
			auditExtra:  map[string]any{"notice_id": notice.ID},
		})
		return err
	})
	if err != nil {
		s.engine.reject(op, err)
		return nil, err
	}

	metrics.FeedbackRecorded.WithLabelValues("authority_notice", outcomeLabel(params.CloseCase)).Inc()
	if result != nil {
		s.engine.committed(ctx, result)
		report = result.Report
	} else {
		s.logger.Info("authority feedback recorded, case kept open",
			slog.String("notice_id", params.NoticeID.String()))
	}
	s.notifyFeedback(ctx, report,
		fmt.Sprintf("Authority feedback recorded (%s)", outcomeLabel(params.CloseCase)))
	return result, nil
}

func outcomeLabel(closed bool) string {
	if closed {
		return "closed"
	}
	return "kept_open"
}
