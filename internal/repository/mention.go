package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/oleawatch/oleawatch/internal/domain"
)

const mentionColumns = `id, source, url, excerpt, sentiment, relevance, report_id, fetched_at, scored_at`

func scanMention(row interface{ Scan(...interface{}) error }) (*domain.Mention, error) {
	var m domain.Mention
	var sentiment sql.NullString
	var relevance sql.NullFloat64
	var reportID uuid.NullUUID
	var scoredAt sql.NullTime

	err := row.Scan(
		&m.ID, &m.Source, &m.URL, &m.Excerpt,
		&sentiment, &relevance, &reportID, &m.FetchedAt, &scoredAt,
	)
	if err != nil {
		return nil, err
	}
	if sentiment.Valid {
		s := domain.MentionSentiment(sentiment.String)
		m.Sentiment = &s
	}
	if relevance.Valid {
		v := relevance.Float64
		m.Relevance = &v
	}
	if reportID.Valid {
		id := reportID.UUID
		m.ReportID = &id
	}
	if scoredAt.Valid {
		t := scoredAt.Time
		m.ScoredAt = &t
	}
	return &m, nil
}

// CreateMentionParams are the column values for a new mentions row.
type CreateMentionParams struct {
	ID      uuid.UUID
	Source  string
	URL     string
	Excerpt string
}

// CreateMention inserts an unscored mention and returns it.
func (q *Queries) CreateMention(ctx context.Context, params CreateMentionParams) (*domain.Mention, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO mentions (id, source, url, excerpt)
		VALUES ($1, $2, $3, $4)
		RETURNING `+mentionColumns,
		params.ID, params.Source, params.URL, params.Excerpt,
	)
	return scanMention(row)
}

// GetMention retrieves a mention by ID.
func (q *Queries) GetMention(ctx context.Context, id uuid.UUID) (*domain.Mention, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+mentionColumns+` FROM mentions WHERE id = $1`, id)
	return scanMention(row)
}

// ListMentionsParams are the filters for listing mentions.
type ListMentionsParams struct {
	Sentiment *domain.MentionSentiment
	Limit     int32
	Offset    int32
}

// ListMentions retrieves a page of mentions, newest first.
func (q *Queries) ListMentions(ctx context.Context, params ListMentionsParams) ([]domain.Mention, error) {
	var sentiment interface{}
	if params.Sentiment != nil {
		sentiment = string(*params.Sentiment)
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT `+mentionColumns+` FROM mentions
		WHERE $1::text IS NULL OR sentiment = $1
		ORDER BY fetched_at DESC
		LIMIT $2 OFFSET $3`,
		sentiment, params.Limit, params.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mentions []domain.Mention
	for rows.Next() {
		m, err := scanMention(rows)
		if err != nil {
			return nil, err
		}
		mentions = append(mentions, *m)
	}
	return mentions, rows.Err()
}

// ListMentionsByReport retrieves the mentions promoted into a report,
// newest first.
func (q *Queries) ListMentionsByReport(ctx context.Context, reportID uuid.UUID) ([]domain.Mention, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+mentionColumns+` FROM mentions
		WHERE report_id = $1
		ORDER BY fetched_at DESC`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mentions []domain.Mention
	for rows.Next() {
		m, err := scanMention(rows)
		if err != nil {
			return nil, err
		}
		mentions = append(mentions, *m)
	}
	return mentions, rows.Err()
}

// ScoreMentionParams stamp the provider's verdict on a mention.
type ScoreMentionParams struct {
	ID        uuid.UUID
	Sentiment domain.MentionSentiment
	Relevance float64
	ScoredAt  time.Time
}

// ScoreMention stamps the sentiment provider's result on a mention.
func (q *Queries) ScoreMention(ctx context.Context, params ScoreMentionParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE mentions SET sentiment = $2, relevance = $3, scored_at = $4
		WHERE id = $1`,
		params.ID, params.Sentiment, params.Relevance, params.ScoredAt,
	)
	return err
}

// PromoteMention links a mention to the report opened from it.
func (q *Queries) PromoteMention(ctx context.Context, id, reportID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE mentions SET report_id = $2 WHERE id = $1`, id, reportID)
	return err
}
