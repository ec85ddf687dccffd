package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/service"
	"github.com/oleawatch/oleawatch/internal/worker"
)

// OverdueClarificationsHandler sweeps clarification requests whose reply
// deadline passed without feedback. Each overdue request gets an audit entry
// and, when a notifier is configured, a reminder email.
type OverdueClarificationsHandler struct {
	store    service.Store
	tx       service.Transactor
	reports  service.ReportService
	notifier service.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewOverdueClarificationsHandler creates a new handler for the overdue
// sweep. The notifier may be nil.
func NewOverdueClarificationsHandler(
	store service.Store,
	tx service.Transactor,
	reports service.ReportService,
	notifier service.Notifier,
	logger *slog.Logger,
) *OverdueClarificationsHandler {
	return &OverdueClarificationsHandler{
		store:    store,
		tx:       tx,
		reports:  reports,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Type returns the job type identifier.
func (h *OverdueClarificationsHandler) Type() string {
	return worker.JobTypeClarificationOverdue
}

// Handle executes one sweep. A failure on one request does not stop the
// sweep; the job fails only if the listing itself fails.
func (h *OverdueClarificationsHandler) Handle(ctx context.Context, payload []byte) error {
	var p worker.ClarificationOverduePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
	}

	now := h.now().UTC()
	overdue, err := h.store.ListOverdueClarifications(ctx, now)
	if err != nil {
		return fmt.Errorf("list overdue clarifications: %w", err)
	}
	if len(overdue) == 0 {
		return nil
	}

	h.logger.Info("Overdue clarification sweep", "count", len(overdue))

	var failed int
	for i := range overdue {
		req := &overdue[i]
		if err := h.markOverdue(ctx, req, now); err != nil {
			failed++
			h.logger.Error("Failed to mark clarification overdue",
				"clarification_id", req.ID, "error", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("sweep finished with %d of %d failures", failed, len(overdue))
	}
	return nil
}

// markOverdue writes the audit entry and sends the reminder for one request.
// The audit entry doubles as the dedup marker: a request already marked since
// its deadline is skipped.
func (h *OverdueClarificationsHandler) markOverdue(ctx context.Context, req *domain.ClarificationRequest, now time.Time) error {
	alreadyMarked, err := h.hasOverdueMark(ctx, req)
	if err != nil {
		return err
	}
	if alreadyMarked {
		return nil
	}

	err = h.tx.InTx(ctx, func(store service.Store) error {
		_, err := store.AppendAction(ctx, domain.AppendActionParams{
			ReportID: req.ReportID,
			Type:     domain.ActionTypeClarificationOverdue,
			Message:  fmt.Sprintf("Clarification request to %s is overdue", req.RecipientCategory),
			ActorID:  req.RequestedBy,
			Metadata: overdueMetadata(req, now),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	if h.notifier != nil {
		report, err := h.reports.GetByID(ctx, req.ReportID)
		if err != nil {
			return fmt.Errorf("load parent report: %w", err)
		}
		if err := h.notifier.ClarificationOverdue(ctx, report, req); err != nil {
			// Reminder failures are logged, not retried; the audit entry is
			// already committed.
			h.logger.Error("Failed to send overdue reminder",
				"clarification_id", req.ID, "error", err)
		}
	}
	return nil
}

// hasOverdueMark reports whether an overdue audit entry for this request
// already exists after its deadline.
func (h *OverdueClarificationsHandler) hasOverdueMark(ctx context.Context, req *domain.ClarificationRequest) (bool, error) {
	actions, err := h.store.ListActions(ctx, req.ReportID)
	if err != nil {
		return false, fmt.Errorf("list actions: %w", err)
	}
	for _, a := range actions {
		if a.Type != domain.ActionTypeClarificationOverdue {
			continue
		}
		var meta struct {
			ClarificationID string `json:"clarification_id"`
		}
		if err := json.Unmarshal(a.Metadata, &meta); err != nil {
			continue
		}
		if meta.ClarificationID == req.ID.String() && req.DueAt != nil && a.CreatedAt.After(*req.DueAt) {
			return true, nil
		}
	}
	return false, nil
}

func overdueMetadata(req *domain.ClarificationRequest, now time.Time) json.RawMessage {
	raw, err := json.Marshal(map[string]any{
		"clarification_id": req.ID,
		"due_at":           req.DueAt,
		"detected_at":      now,
	})
	if err != nil {
		return nil
	}
	return raw
}
