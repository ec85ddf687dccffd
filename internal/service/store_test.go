package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/repository"
)

// memStore is an in-memory Store used by the service tests. Writes mimic the
// guards the real queries carry: status updates check the expected status,
// feedback and minutes writes are write-once.
type memStore struct {
	reports        map[uuid.UUID]*domain.Report
	stateChanges   []domain.StateChange
	actions        []domain.ActionLog
	inspections    map[uuid.UUID]*domain.Inspection
	clarifications map[uuid.UUID]*domain.ClarificationRequest
	notices        map[uuid.UUID]*domain.AuthorityNotice
	attachments    map[uuid.UUID]*domain.Attachment
	mentions       map[uuid.UUID]*domain.Mention
	operators      map[uuid.UUID]*domain.Operator
	jobs           []repository.Job

	// onGetReportForUpdate mutates the copy handed to the caller, letting
	// tests simulate a status that moved underneath a transition.
	onGetReportForUpdate func(*domain.Report)
}

func newMemStore() *memStore {
	return &memStore{
		reports:        make(map[uuid.UUID]*domain.Report),
		inspections:    make(map[uuid.UUID]*domain.Inspection),
		clarifications: make(map[uuid.UUID]*domain.ClarificationRequest),
		notices:        make(map[uuid.UUID]*domain.AuthorityNotice),
		attachments:    make(map[uuid.UUID]*domain.Attachment),
		mentions:       make(map[uuid.UUID]*domain.Mention),
		operators:      make(map[uuid.UUID]*domain.Operator),
	}
}

// memTransactor satisfies Transactor without a database. The fake store has
// no isolation; a returned error simply surfaces to the caller.
type memTransactor struct {
	store *memStore
}

func (t *memTransactor) InTx(ctx context.Context, fn func(Store) error) error {
	return fn(t.store)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedReport inserts a report in the given status and returns it.
func (m *memStore) seedReport(status domain.ReportStatus) *domain.Report {
	r := &domain.Report{
		ID:        uuid.New(),
		Title:     "Suspicious DOP labelling",
		Status:    status,
		CreatedBy: uuid.New(),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	m.reports[r.ID] = r
	return r
}

func inspectionFixture(reportID uuid.UUID) repository.CreateInspectionParams {
	return repository.CreateInspectionParams{
		ID:          uuid.New(),
		ReportID:    reportID,
		Kind:        domain.InspectionKindSiteVisit,
		ScheduledAt: time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC),
		Location:    "Frantoio Oleario Bianchi, Spoleto",
		Inspector:   "M. Greco",
	}
}

func attachmentFixture() repository.CreateAttachmentParams {
	return repository.CreateAttachmentParams{
		ID:          uuid.New(),
		Filename:    "label-front.jpg",
		ContentType: "image/jpeg",
		Size:        482119,
		StorageKey:  "attachments/label-front.jpg",
		OwnerKind:   domain.AttachmentOwnerNone,
		UploadedBy:  uuid.New(),
	}
}

// seedCompletedInspection inserts an inspection with minutes recorded.
func seedCompletedInspection(m *memStore, reportID uuid.UUID) *domain.Inspection {
	i := &domain.Inspection{
		ID:          uuid.New(),
		ReportID:    reportID,
		Kind:        domain.InspectionKindSiteVisit,
		ScheduledAt: time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC),
		Minutes:     "Press logs reviewed on site; lot traceability incomplete.",
		Outcome:     "violation suspected",
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	m.inspections[i.ID] = i
	return i
}

// seedPendingNotice inserts an authority notice awaiting feedback.
func seedPendingNotice(m *memStore, reportID uuid.UUID) *domain.AuthorityNotice {
	n := &domain.AuthorityNotice{
		ID:            uuid.New(),
		ReportID:      reportID,
		AuthorityKind: domain.AuthorityKindICQRF,
		AuthorityName: "ICQRF Perugia",
		Subject:       "Suspected false origin claim on DOP label",
		Violations:    []string{"false origin claim"},
		Severity:      domain.NoticeSeverityHigh,
		SentAt:        time.Now().UTC(),
		CreatedAt:     time.Now().UTC(),
	}
	m.notices[n.ID] = n
	return n
}

// =============================================================================
// Reports
// =============================================================================

func (m *memStore) CreateReport(ctx context.Context, params repository.CreateReportParams) (*domain.Report, error) {
	r := &domain.Report{
		ID:          params.ID,
		Title:       params.Title,
		Description: params.Description,
		Status:      params.Status,
		CreatedBy:   params.CreatedBy,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	m.reports[r.ID] = r
	out := *r
	return &out, nil
}

func (m *memStore) GetReport(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *r
	return &out, nil
}

func (m *memStore) GetReportForUpdate(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	r, err := m.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.onGetReportForUpdate != nil {
		m.onGetReportForUpdate(r)
	}
	return r, nil
}

func (m *memStore) ListReports(ctx context.Context, params repository.ListReportsParams) ([]domain.Report, error) {
	var out []domain.Report
	for _, r := range m.reports {
		if params.Status != nil && r.Status != *params.Status {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) CountReports(ctx context.Context, status *domain.ReportStatus) (int64, error) {
	var n int64
	for _, r := range m.reports {
		if status == nil || r.Status == *status {
			n++
		}
	}
	return n, nil
}

func (m *memStore) UpdateReport(ctx context.Context, params repository.UpdateReportParams) error {
	r, ok := m.reports[params.ID]
	if !ok {
		return sql.ErrNoRows
	}
	r.Title = params.Title
	r.Description = params.Description
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memStore) UpdateReportStatus(ctx context.Context, params repository.UpdateReportStatusParams) (int64, error) {
	r, ok := m.reports[params.ID]
	if !ok || r.Status != params.Expected {
		return 0, nil
	}
	r.Status = params.Target
	r.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (m *memStore) SetReportClosure(ctx context.Context, id uuid.UUID, reason string, closedAt time.Time) error {
	r, ok := m.reports[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.ClosureReason = reason
	r.ClosedAt = &closedAt
	return nil
}

// =============================================================================
// State Changes & Audit
// =============================================================================

func (m *memStore) InsertStateChange(ctx context.Context, params repository.InsertStateChangeParams) (*domain.StateChange, error) {
	change := domain.StateChange{
		ID:         params.ID,
		ReportID:   params.ReportID,
		FromStatus: params.FromStatus,
		ToStatus:   params.ToStatus,
		Motive:     params.Motive,
		Note:       params.Note,
		Metadata:   params.Metadata,
		ActorID:    params.ActorID,
		CreatedAt:  time.Now().UTC(),
	}
	m.stateChanges = append(m.stateChanges, change)
	return &change, nil
}

func (m *memStore) ListStateChanges(ctx context.Context, reportID uuid.UUID) ([]domain.StateChange, error) {
	var out []domain.StateChange
	for _, c := range m.stateChanges {
		if c.ReportID == reportID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) AppendAction(ctx context.Context, params domain.AppendActionParams) (*domain.ActionLog, error) {
	entry := domain.ActionLog{
		ID:        uuid.New(),
		ReportID:  params.ReportID,
		Type:      params.Type,
		Message:   params.Message,
		ActorID:   params.ActorID,
		Metadata:  params.Metadata,
		CreatedAt: time.Now().UTC(),
	}
	m.actions = append(m.actions, entry)
	return &entry, nil
}

func (m *memStore) ListActions(ctx context.Context, reportID uuid.UUID) ([]domain.ActionLog, error) {
	var out []domain.ActionLog
	for _, a := range m.actions {
		if a.ReportID == reportID {
			out = append(out, a)
		}
	}
	return out, nil
}

// =============================================================================
// Inspections
// =============================================================================

func (m *memStore) CreateInspection(ctx context.Context, params repository.CreateInspectionParams) (*domain.Inspection, error) {
	i := &domain.Inspection{
		ID:          params.ID,
		ReportID:    params.ReportID,
		Kind:        params.Kind,
		ScheduledAt: params.ScheduledAt,
		Location:    params.Location,
		Inspector:   params.Inspector,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	m.inspections[i.ID] = i
	out := *i
	return &out, nil
}

func (m *memStore) GetInspection(ctx context.Context, id uuid.UUID) (*domain.Inspection, error) {
	i, ok := m.inspections[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *i
	return &out, nil
}

func (m *memStore) ListInspectionsByReport(ctx context.Context, reportID uuid.UUID) ([]domain.Inspection, error) {
	var out []domain.Inspection
	for _, i := range m.inspections {
		if i.ReportID == reportID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (m *memStore) UpdateInspectionMinutes(ctx context.Context, params repository.UpdateInspectionMinutesParams) (int64, error) {
	i, ok := m.inspections[params.ID]
	if !ok || i.Minutes != "" {
		return 0, nil
	}
	i.Minutes = params.Minutes
	i.Outcome = params.Outcome
	i.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (m *memStore) LatestCompletedInspection(ctx context.Context, reportID uuid.UUID) (*domain.Inspection, error) {
	var latest *domain.Inspection
	for _, i := range m.inspections {
		if i.ReportID != reportID || i.Minutes == "" {
			continue
		}
		if latest == nil || i.UpdatedAt.After(latest.UpdatedAt) {
			latest = i
		}
	}
	if latest == nil {
		return nil, sql.ErrNoRows
	}
	out := *latest
	return &out, nil
}

// =============================================================================
// Clarification Requests
// =============================================================================

func (m *memStore) CreateClarification(ctx context.Context, params repository.CreateClarificationParams) (*domain.ClarificationRequest, error) {
	c := &domain.ClarificationRequest{
		ID:                params.ID,
		ReportID:          params.ReportID,
		RecipientCategory: params.RecipientCategory,
		RecipientEmail:    params.RecipientEmail,
		Subject:           params.Subject,
		Questions:         params.Questions,
		DueAt:             params.DueAt,
		RequestedBy:       params.RequestedBy,
		CreatedAt:         time.Now().UTC(),
	}
	m.clarifications[c.ID] = c
	out := *c
	return &out, nil
}

func (m *memStore) GetClarification(ctx context.Context, id uuid.UUID) (*domain.ClarificationRequest, error) {
	c, ok := m.clarifications[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *c
	return &out, nil
}

func (m *memStore) ListClarificationsByReport(ctx context.Context, reportID uuid.UUID) ([]domain.ClarificationRequest, error) {
	var out []domain.ClarificationRequest
	for _, c := range m.clarifications {
		if c.ReportID == reportID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) RecordClarificationFeedback(ctx context.Context, params repository.RecordClarificationFeedbackParams) (int64, error) {
	c, ok := m.clarifications[params.ID]
	if !ok || c.FeedbackAt != nil {
		return 0, nil
	}
	c.Feedback = params.Feedback
	at := params.FeedbackAt
	c.FeedbackAt = &at
	outcome := params.Outcome
	c.Outcome = &outcome
	return 1, nil
}

func (m *memStore) ListOverdueClarifications(ctx context.Context, now time.Time) ([]domain.ClarificationRequest, error) {
	var out []domain.ClarificationRequest
	for _, c := range m.clarifications {
		if c.FeedbackAt == nil && c.DueAt != nil && c.DueAt.Before(now) {
			out = append(out, *c)
		}
	}
	return out, nil
}

// =============================================================================
// Authority Notices
// =============================================================================

func (m *memStore) CreateNotice(ctx context.Context, params repository.CreateNoticeParams) (*domain.AuthorityNotice, error) {
	n := &domain.AuthorityNotice{
		ID:            params.ID,
		ReportID:      params.ReportID,
		AuthorityKind: params.AuthorityKind,
		AuthorityName: params.AuthorityName,
		Subject:       params.Subject,
		Violations:    params.Violations,
		Severity:      params.Severity,
		SentAt:        params.SentAt,
		CreatedAt:     time.Now().UTC(),
	}
	m.notices[n.ID] = n
	out := *n
	return &out, nil
}

func (m *memStore) GetNotice(ctx context.Context, id uuid.UUID) (*domain.AuthorityNotice, error) {
	n, ok := m.notices[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *n
	return &out, nil
}

func (m *memStore) ListNoticesByReport(ctx context.Context, reportID uuid.UUID) ([]domain.AuthorityNotice, error) {
	var out []domain.AuthorityNotice
	for _, n := range m.notices {
		if n.ReportID == reportID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *memStore) HasPendingNotice(ctx context.Context, reportID uuid.UUID) (bool, error) {
	for _, n := range m.notices {
		if n.ReportID == reportID && n.FeedbackAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) RecordNoticeFeedback(ctx context.Context, params repository.RecordNoticeFeedbackParams) (int64, error) {
	n, ok := m.notices[params.ID]
	if !ok || n.FeedbackAt != nil {
		return 0, nil
	}
	n.Feedback = params.Feedback
	at := params.FeedbackAt
	n.FeedbackAt = &at
	if params.ProtocolNumber != "" {
		n.ProtocolNumber = params.ProtocolNumber
	}
	return 1, nil
}

// =============================================================================
// Attachments
// =============================================================================

func (m *memStore) CreateAttachment(ctx context.Context, params repository.CreateAttachmentParams) (*domain.Attachment, error) {
	a := &domain.Attachment{
		ID:          params.ID,
		Filename:    params.Filename,
		ContentType: params.ContentType,
		Size:        params.Size,
		StorageKey:  params.StorageKey,
		OwnerKind:   params.OwnerKind,
		OwnerID:     params.OwnerID,
		UploadedBy:  params.UploadedBy,
		CreatedAt:   time.Now().UTC(),
	}
	m.attachments[a.ID] = a
	out := *a
	return &out, nil
}

func (m *memStore) GetAttachment(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	a, ok := m.attachments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *a
	return &out, nil
}

func (m *memStore) LinkAttachmentsToStateChange(ctx context.Context, stateChangeID uuid.UUID, attachmentIDs []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range attachmentIDs {
		a, ok := m.attachments[id]
		if !ok {
			continue
		}
		a.OwnerKind = domain.AttachmentOwnerStateChange
		owner := stateChangeID
		a.OwnerID = &owner
		n++
	}
	return n, nil
}

func (m *memStore) ListAttachmentsByOwner(ctx context.Context, kind domain.AttachmentOwnerKind, ownerID uuid.UUID) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, a := range m.attachments {
		if a.OwnerKind == kind && a.OwnerID != nil && *a.OwnerID == ownerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) CountAttachments(ctx context.Context, attachmentIDs []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range attachmentIDs {
		if _, ok := m.attachments[id]; ok {
			n++
		}
	}
	return n, nil
}

// =============================================================================
// Mentions
// =============================================================================

func (m *memStore) CreateMention(ctx context.Context, params repository.CreateMentionParams) (*domain.Mention, error) {
	mn := &domain.Mention{
		ID:        params.ID,
		Source:    params.Source,
		URL:       params.URL,
		Excerpt:   params.Excerpt,
		FetchedAt: time.Now().UTC(),
	}
	m.mentions[mn.ID] = mn
	out := *mn
	return &out, nil
}

func (m *memStore) GetMention(ctx context.Context, id uuid.UUID) (*domain.Mention, error) {
	mn, ok := m.mentions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *mn
	return &out, nil
}

func (m *memStore) ListMentions(ctx context.Context, params repository.ListMentionsParams) ([]domain.Mention, error) {
	var out []domain.Mention
	for _, mn := range m.mentions {
		if params.Sentiment != nil && (mn.Sentiment == nil || *mn.Sentiment != *params.Sentiment) {
			continue
		}
		out = append(out, *mn)
	}
	return out, nil
}

func (m *memStore) ListMentionsByReport(ctx context.Context, reportID uuid.UUID) ([]domain.Mention, error) {
	var out []domain.Mention
	for _, mn := range m.mentions {
		if mn.ReportID != nil && *mn.ReportID == reportID {
			out = append(out, *mn)
		}
	}
	return out, nil
}

func (m *memStore) ScoreMention(ctx context.Context, params repository.ScoreMentionParams) error {
	mn, ok := m.mentions[params.ID]
	if !ok {
		return sql.ErrNoRows
	}
	sentiment := params.Sentiment
	mn.Sentiment = &sentiment
	relevance := params.Relevance
	mn.Relevance = &relevance
	at := params.ScoredAt
	mn.ScoredAt = &at
	return nil
}

func (m *memStore) PromoteMention(ctx context.Context, id, reportID uuid.UUID) error {
	mn, ok := m.mentions[id]
	if !ok {
		return sql.ErrNoRows
	}
	r := reportID
	mn.ReportID = &r
	return nil
}

// =============================================================================
// Operators & Jobs
// =============================================================================

func (m *memStore) CreateOperator(ctx context.Context, params repository.CreateOperatorParams) (*domain.Operator, error) {
	o := &domain.Operator{
		ID:        params.ID,
		Name:      params.Name,
		Email:     params.Email,
		TokenHash: params.TokenHash,
		Role:      params.Role,
		CreatedAt: time.Now().UTC(),
	}
	m.operators[o.ID] = o
	out := *o
	return &out, nil
}

func (m *memStore) GetOperator(ctx context.Context, id uuid.UUID) (*domain.Operator, error) {
	o, ok := m.operators[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *o
	return &out, nil
}

func (m *memStore) GetOperatorByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	for _, o := range m.operators {
		if o.Email == email {
			out := *o
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) EnqueueJob(ctx context.Context, params repository.EnqueueJobParams) (repository.Job, error) {
	job := repository.Job{
		ID:          uuid.New(),
		JobType:     params.JobType,
		Payload:     params.Payload,
		Status:      "pending",
		Priority:    params.Priority,
		MaxAttempts: params.MaxAttempts,
		ScheduledAt: params.ScheduledAt,
		CreatedAt:   time.Now().UTC(),
	}
	m.jobs = append(m.jobs, job)
	return job, nil
}
