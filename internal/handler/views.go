// Package handler contains the HTTP handlers for the OleaWatch API.
//
// This file defines the JSON representations of the domain types. Domain
// structs deliberately carry no serialization tags; the wire shape is owned
// here so internal refactors never leak into the API.
package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/oleawatch/oleawatch/internal/domain"
)

// reportView is the JSON representation of a report.
type reportView struct {
	ID                   uuid.UUID             `json:"id"`
	Title                string                `json:"title"`
	Description          string                `json:"description,omitempty"`
	Status               domain.ReportStatus   `json:"status"`
	ClosureReason        string                `json:"closure_reason,omitempty"`
	ClosedAt             *time.Time            `json:"closed_at,omitempty"`
	CreatedBy            uuid.UUID             `json:"created_by"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
	AvailableTransitions []domain.ReportStatus `json:"available_transitions"`
	InspectionCount      int                   `json:"inspection_count"`
	ClarificationCount   int                   `json:"clarification_count"`
	NoticeCount          int                   `json:"notice_count"`
}

func newReportView(r *domain.Report) reportView {
	return reportView{
		ID:                   r.ID,
		Title:                r.Title,
		Description:          r.Description,
		Status:               r.Status,
		ClosureReason:        r.ClosureReason,
		ClosedAt:             r.ClosedAt,
		CreatedBy:            r.CreatedBy,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
		AvailableTransitions: r.Status.AvailableTransitions(),
		InspectionCount:      r.InspectionCount,
		ClarificationCount:   r.ClarificationCount,
		NoticeCount:          r.NoticeCount,
	}
}

// stateChangeView is the JSON representation of a workflow state change.
type stateChangeView struct {
	ID         uuid.UUID           `json:"id"`
	ReportID   uuid.UUID           `json:"report_id"`
	FromStatus domain.ReportStatus `json:"from_status"`
	ToStatus   domain.ReportStatus `json:"to_status"`
	Motive     string              `json:"motive"`
	Note       string              `json:"note,omitempty"`
	Metadata   json.RawMessage     `json:"metadata,omitempty"`
	ActorID    uuid.UUID           `json:"actor_id"`
	CreatedAt  time.Time           `json:"created_at"`
}

func newStateChangeView(sc *domain.StateChange) stateChangeView {
	return stateChangeView{
		ID:         sc.ID,
		ReportID:   sc.ReportID,
		FromStatus: sc.FromStatus,
		ToStatus:   sc.ToStatus,
		Motive:     sc.Motive,
		Note:       sc.Note,
		Metadata:   sc.Metadata,
		ActorID:    sc.ActorID,
		CreatedAt:  sc.CreatedAt,
	}
}

// inspectionView is the JSON representation of an inspection.
type inspectionView struct {
	ID          uuid.UUID             `json:"id"`
	ReportID    uuid.UUID             `json:"report_id"`
	Kind        domain.InspectionKind `json:"kind"`
	ScheduledAt time.Time             `json:"scheduled_at"`
	Location    string                `json:"location,omitempty"`
	Inspector   string                `json:"inspector,omitempty"`
	Minutes     string                `json:"minutes,omitempty"`
	Outcome     string                `json:"outcome,omitempty"`
	Completed   bool                  `json:"completed"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

func newInspectionView(i *domain.Inspection) inspectionView {
	return inspectionView{
		ID:          i.ID,
		ReportID:    i.ReportID,
		Kind:        i.Kind,
		ScheduledAt: i.ScheduledAt,
		Location:    i.Location,
		Inspector:   i.Inspector,
		Minutes:     i.Minutes,
		Outcome:     i.Outcome,
		Completed:   i.IsCompleted(),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// clarificationView is the JSON representation of a clarification request.
type clarificationView struct {
	ID                uuid.UUID                    `json:"id"`
	ReportID          uuid.UUID                    `json:"report_id"`
	RecipientCategory domain.RecipientCategory     `json:"recipient_category"`
	RecipientEmail    string                       `json:"recipient_email,omitempty"`
	Subject           string                       `json:"subject"`
	Questions         []string                     `json:"questions"`
	DueAt             *time.Time                   `json:"due_date,omitempty"`
	RequestedBy       uuid.UUID                    `json:"requested_by"`
	Feedback          string                       `json:"feedback,omitempty"`
	FeedbackAt        *time.Time                   `json:"feedback_at,omitempty"`
	Outcome           *domain.ClarificationOutcome `json:"outcome,omitempty"`
	Answered          bool                         `json:"answered"`
	CreatedAt         time.Time                    `json:"created_at"`
}

func newClarificationView(c *domain.ClarificationRequest) clarificationView {
	return clarificationView{
		ID:                c.ID,
		ReportID:          c.ReportID,
		RecipientCategory: c.RecipientCategory,
		RecipientEmail:    c.RecipientEmail,
		Subject:           c.Subject,
		Questions:         c.Questions,
		DueAt:             c.DueAt,
		RequestedBy:       c.RequestedBy,
		Feedback:          c.Feedback,
		FeedbackAt:        c.FeedbackAt,
		Outcome:           c.Outcome,
		Answered:          c.IsAnswered(),
		CreatedAt:         c.CreatedAt,
	}
}

// noticeView is the JSON representation of an authority notice.
type noticeView struct {
	ID             uuid.UUID             `json:"id"`
	ReportID       uuid.UUID             `json:"report_id"`
	AuthorityKind  domain.AuthorityKind  `json:"authority_kind"`
	AuthorityName  string                `json:"authority_name"`
	Subject        string                `json:"subject"`
	Violations     []string              `json:"violations,omitempty"`
	Severity       domain.NoticeSeverity `json:"severity"`
	ProtocolNumber string                `json:"protocol_number,omitempty"`
	SentAt         time.Time             `json:"sent_at"`
	Feedback       string                `json:"feedback,omitempty"`
	FeedbackAt     *time.Time            `json:"feedback_at,omitempty"`
	Pending        bool                  `json:"pending"`
	CreatedAt      time.Time             `json:"created_at"`
}

func newNoticeView(n *domain.AuthorityNotice) noticeView {
	return noticeView{
		ID:             n.ID,
		ReportID:       n.ReportID,
		AuthorityKind:  n.AuthorityKind,
		AuthorityName:  n.AuthorityName,
		Subject:        n.Subject,
		Violations:     n.Violations,
		Severity:       n.Severity,
		ProtocolNumber: n.ProtocolNumber,
		SentAt:         n.SentAt,
		Feedback:       n.Feedback,
		FeedbackAt:     n.FeedbackAt,
		Pending:        n.IsPending(),
		CreatedAt:      n.CreatedAt,
	}
}

// createdEntityView wraps the zero-or-one side-entity a transition produced.
type createdEntityView struct {
	Inspection      *inspectionView    `json:"inspection,omitempty"`
	Clarification   *clarificationView `json:"clarification,omitempty"`
	AuthorityNotice *noticeView        `json:"authority_notice,omitempty"`
}

// transitionResultView is the JSON representation of a successful transition.
type transitionResultView struct {
	Report        reportView         `json:"report"`
	StateChange   stateChangeView    `json:"state_change"`
	CreatedEntity *createdEntityView `json:"created_entity,omitempty"`
}

func newTransitionResultView(res *domain.TransitionResult) transitionResultView {
	v := transitionResultView{
		Report:      newReportView(res.Report),
		StateChange: newStateChangeView(res.StateChange),
	}
	if !res.CreatedEntity.IsZero() {
		entity := &createdEntityView{}
		if i := res.CreatedEntity.Inspection; i != nil {
			iv := newInspectionView(i)
			entity.Inspection = &iv
		}
		if c := res.CreatedEntity.Clarification; c != nil {
			cv := newClarificationView(c)
			entity.Clarification = &cv
		}
		if n := res.CreatedEntity.AuthorityNotice; n != nil {
			nv := newNoticeView(n)
			entity.AuthorityNotice = &nv
		}
		v.CreatedEntity = entity
	}
	return v
}

// transitionStateView is the JSON representation of a report's workflow
// position.
type transitionStateView struct {
	ReportID             uuid.UUID             `json:"report_id"`
	Status               domain.ReportStatus   `json:"status"`
	AvailableTransitions []domain.ReportStatus `json:"available_transitions"`
	StateChanges         []stateChangeView     `json:"state_changes"`
	Inspections          []inspectionView      `json:"inspections"`
	Clarifications       []clarificationView   `json:"clarifications"`
	Notices              []noticeView          `json:"authority_notices"`
}

func newTransitionStateView(ts *domain.TransitionState) transitionStateView {
	v := transitionStateView{
		ReportID:             ts.ReportID,
		Status:               ts.Status,
		AvailableTransitions: ts.AvailableTransitions,
		StateChanges:         make([]stateChangeView, 0, len(ts.StateChanges)),
		Inspections:          make([]inspectionView, 0, len(ts.Inspections)),
		Clarifications:       make([]clarificationView, 0, len(ts.Clarifications)),
		Notices:              make([]noticeView, 0, len(ts.Notices)),
	}
	for i := range ts.StateChanges {
		v.StateChanges = append(v.StateChanges, newStateChangeView(&ts.StateChanges[i]))
	}
	for i := range ts.Inspections {
		v.Inspections = append(v.Inspections, newInspectionView(&ts.Inspections[i]))
	}
	for i := range ts.Clarifications {
		v.Clarifications = append(v.Clarifications, newClarificationView(&ts.Clarifications[i]))
	}
	for i := range ts.Notices {
		v.Notices = append(v.Notices, newNoticeView(&ts.Notices[i]))
	}
	return v
}

// actionLogView is the JSON representation of an audit trail entry.
type actionLogView struct {
	ID        uuid.UUID         `json:"id"`
	ReportID  uuid.UUID         `json:"report_id"`
	Type      domain.ActionType `json:"type"`
	Message   string            `json:"message"`
	ActorID   uuid.UUID         `json:"actor_id"`
	Metadata  json.RawMessage   `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func newActionLogView(a *domain.ActionLog) actionLogView {
	return actionLogView{
		ID:        a.ID,
		ReportID:  a.ReportID,
		Type:      a.Type,
		Message:   a.Message,
		ActorID:   a.ActorID,
		Metadata:  a.Metadata,
		CreatedAt: a.CreatedAt,
	}
}

// mentionView is the JSON representation of a monitored mention.
type mentionView struct {
	ID        uuid.UUID                `json:"id"`
	Source    string                   `json:"source"`
	URL       string                   `json:"url"`
	Excerpt   string                   `json:"excerpt"`
	Sentiment *domain.MentionSentiment `json:"sentiment,omitempty"`
	Relevance *float64                 `json:"relevance,omitempty"`
	ReportID  *uuid.UUID               `json:"report_id,omitempty"`
	FetchedAt time.Time                `json:"fetched_at"`
	ScoredAt  *time.Time               `json:"scored_at,omitempty"`
}

func newMentionView(m *domain.Mention) mentionView {
	return mentionView{
		ID:        m.ID,
		Source:    m.Source,
		URL:       m.URL,
		Excerpt:   m.Excerpt,
		Sentiment: m.Sentiment,
		Relevance: m.Relevance,
		ReportID:  m.ReportID,
		FetchedAt: m.FetchedAt,
		ScoredAt:  m.ScoredAt,
	}
}

// attachmentView is the JSON representation of an evidence attachment.
type attachmentView struct {
	ID          uuid.UUID                  `json:"id"`
	Filename    string                     `json:"filename"`
	ContentType string                     `json:"content_type"`
	Size        int64                      `json:"size"`
	OwnerKind   domain.AttachmentOwnerKind `json:"owner_kind,omitempty"`
	OwnerID     *uuid.UUID                 `json:"owner_id,omitempty"`
	UploadedBy  uuid.UUID                  `json:"uploaded_by"`
	CreatedAt   time.Time                  `json:"created_at"`
}

func newAttachmentView(a *domain.Attachment) attachmentView {
	return attachmentView{
		ID:          a.ID,
		Filename:    a.Filename,
		ContentType: a.ContentType,
		Size:        a.Size,
		OwnerKind:   a.OwnerKind,
		OwnerID:     a.OwnerID,
		UploadedBy:  a.UploadedBy,
		CreatedAt:   a.CreatedAt,
	}
}

// operatorView is the JSON representation of an operator. The token hash is
// never exposed.
type operatorView struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Role      domain.OperatorRole `json:"role"`
	CreatedAt time.Time           `json:"created_at"`
}

func newOperatorView(o *domain.Operator) operatorView {
	return operatorView{
		ID:        o.ID,
		Name:      o.Name,
		Email:     o.Email,
		Role:      o.Role,
		CreatedAt: o.CreatedAt,
	}
}
