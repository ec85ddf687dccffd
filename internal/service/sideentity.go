package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/repository"
)

// =============================================================================
// Side-Entity Factory
// =============================================================================

// sideEntityFactory validates transition metadata and creates the entity it
// describes, inside the caller's transaction. Each metadata kind carries its
// own field requirements; a violation aborts the whole transition.
type sideEntityFactory struct{}

// build dispatches on the metadata kind. A nil payload yields an empty
// CreatedEntity: the transition is a pure status change.
func (f sideEntityFactory) build(
	ctx context.Context,
	store Store,
	report *domain.Report,
	meta domain.TransitionMetadata,
	actorID uuid.UUID,
	now time.Time,
) (domain.CreatedEntity, error) {
	if meta == nil {
		return domain.CreatedEntity{}, nil
	}

	switch m := meta.(type) {
	case domain.InspectionMetadata:
		return f.buildInspection(ctx, store, report, m)
	case domain.ClarificationMetadata:
		return f.buildClarification(ctx, store, report, m, actorID)
	case domain.AuthorityNoticeMetadata:
		return f.buildNotice(ctx, store, report, m, now)
	case domain.CloseMetadata:
		return domain.CreatedEntity{}, f.applyClosure(ctx, store, report, m, now)
	default:
		return domain.CreatedEntity{}, domain.Invalid("workflow.sideentity",
			"unsupported metadata kind")
	}
}

func (f sideEntityFactory) buildInspection(
	ctx context.Context,
	store Store,
	report *domain.Report,
	m domain.InspectionMetadata,
) (domain.CreatedEntity, error) {
	const op = "workflow.sideentity.inspection"

	kind := m.InspectionKind
	if kind == "" {
		kind = domain.InspectionKindSiteVisit
	}
	if !kind.IsValid() {
		return domain.CreatedEntity{}, domain.Invalid(op, "invalid inspection kind: "+kind.String())
	}
	if m.ScheduledAt.IsZero() {
		return domain.CreatedEntity{}, domain.MissingField(op, "date")
	}

	inspection, err := store.CreateInspection(ctx, repository.CreateInspectionParams{
		ID:          uuid.New(),
		ReportID:    report.ID,
		Kind:        kind,
		ScheduledAt: m.ScheduledAt,
		Location:    m.Location,
		Inspector:   m.Inspector,
	})
	if err != nil {
		return domain.CreatedEntity{}, domain.Internal(err, op, "failed to create inspection")
	}
	return domain.CreatedEntity{Inspection: inspection}, nil
}

func (f sideEntityFactory) buildClarification(
	ctx context.Context,
	store Store,
	report *domain.Report,
	m domain.ClarificationMetadata,
	actorID uuid.UUID,
) (domain.CreatedEntity, error) {
	const op = "workflow.sideentity.clarification"

	if !m.RecipientCategory.IsValid() {
		return domain.CreatedEntity{}, domain.Invalid(op, "invalid recipient category: "+m.RecipientCategory.String())
	}
	if strings.TrimSpace(m.Subject) == "" {
		return domain.CreatedEntity{}, domain.MissingField(op, "subject")
	}

	questions := make([]string, 0, len(m.Questions))
	for _, q := range m.Questions {
		if trimmed := strings.TrimSpace(q); trimmed != "" {
			questions = append(questions, trimmed)
		}
	}
	if len(questions) == 0 {
		return domain.CreatedEntity{}, domain.Invalid(op, "at least one question is required")
	}

	clarification, err := store.CreateClarification(ctx, repository.CreateClarificationParams{
		ID:                uuid.New(),
		ReportID:          report.ID,
		RecipientCategory: m.RecipientCategory,
		RecipientEmail:    m.RecipientEmail,
		Subject:           strings.TrimSpace(m.Subject),
		Questions:         questions,
		DueAt:             m.DueAt,
		RequestedBy:       actorID,
	})
	if err != nil {
		return domain.CreatedEntity{}, domain.Internal(err, op, "failed to create clarification request")
	}
	return domain.CreatedEntity{Clarification: clarification}, nil
}

func (f sideEntityFactory) buildNotice(
	ctx context.Context,
	store Store,
	report *domain.Report,
	m domain.AuthorityNoticeMetadata,
	now time.Time,
) (domain.CreatedEntity, error) {
	const op = "workflow.sideentity.notice"

	if strings.TrimSpace(m.AuthorityName) == "" {
		return domain.CreatedEntity{}, domain.MissingField(op, "authority_name")
	}
	if !m.AuthorityKind.IsValid() {
		return domain.CreatedEntity{}, domain.Invalid(op, "invalid authority kind: "+m.AuthorityKind.String())
	}
	if strings.TrimSpace(m.Subject) == "" {
		return domain.CreatedEntity{}, domain.MissingField(op, "subject")
	}

	severity := m.Severity
	if severity == "" {
		severity = domain.NoticeSeverityMedium
	}
	if !severity.IsValid() {
		return domain.CreatedEntity{}, domain.Invalid(op, "invalid severity: "+severity.String())
	}

	// One outstanding notice per report.
	pending, err := store.HasPendingNotice(ctx, report.ID)
	if err != nil {
		return domain.CreatedEntity{}, domain.Internal(err, op, "failed to check pending notices")
	}
	if pending {
		return domain.CreatedEntity{}, domain.ConflictingPendingNotice(op, report.ID.String())
	}

	notice, err := store.CreateNotice(ctx, repository.CreateNoticeParams{
		ID:            uuid.New(),
		ReportID:      report.ID,
		AuthorityKind: m.AuthorityKind,
		AuthorityName: strings.TrimSpace(m.AuthorityName),
		Subject:       strings.TrimSpace(m.Subject),
		Violations:    m.Violations,
		Severity:      severity,
		SentAt:        now,
	})
	if err != nil {
		return domain.CreatedEntity{}, domain.Internal(err, op, "failed to create authority notice")
	}
	return domain.CreatedEntity{AuthorityNotice: notice}, nil
}

// applyClosure stamps the closure reason and timestamp on the report. It does
// not move the status; the engine does that as part of the transition proper.
func (f sideEntityFactory) applyClosure(
	ctx context.Context,
	store Store,
	report *domain.Report,
	m domain.CloseMetadata,
	now time.Time,
) error {
	const op = "workflow.sideentity.close"

	motive := strings.TrimSpace(m.Motive)
	if len(motive) < domain.CloseMotiveMinLength {
		return domain.Invalid(op, "closure motive must be at least 20 characters")
	}

	if err := store.SetReportClosure(ctx, report.ID, motive, now); err != nil {
		return domain.Internal(err, op, "failed to record closure")
	}
	report.ClosureReason = motive
	report.ClosedAt = &now
	return nil
}
