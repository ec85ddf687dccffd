package dossier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oleawatch/oleawatch/internal/domain"
)

func TestHexToRGB(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		r, g, b int
	}{
		{"red with hash", "#DC2626", 220, 38, 38},
		{"green without hash", "16A34A", 22, 163, 74},
		{"lowercase", "#f59e0b", 245, 158, 11},
		{"black", "#000000", 0, 0, 0},
		{"white", "#FFFFFF", 255, 255, 255},
		{"too short", "#FFF", 0, 0, 0},
		{"empty", "", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := HexToRGB(tt.hex)
			assert.Equal(t, tt.r, r)
			assert.Equal(t, tt.g, g)
			assert.Equal(t, tt.b, b)
		})
	}
}

func TestSeverityColor(t *testing.T) {
	assert.Equal(t, "#DC2626", SeverityColor(domain.NoticeSeverityCritical))
	assert.Equal(t, "#6B7280", SeverityColor(domain.NoticeSeverityLow))
	// Unknown severities fall back to the muted house color.
	assert.Equal(t, HouseColors.TextMuted, SeverityColor(domain.NoticeSeverity("urgent")))
}

func TestSentimentColor(t *testing.T) {
	assert.Equal(t, "#16A34A", SentimentColor(domain.MentionSentimentPositive))
	assert.Equal(t, HouseColors.TextMuted, SentimentColor(domain.MentionSentiment("sour")))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "exactly ten", TruncateText("exactly ten", 11))
	assert.Equal(t, "a long ...", TruncateText("a long excerpt about olive oil", 10))
	assert.Equal(t, "ab", TruncateText("abcdef", 2))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Site Visit", KindLabel(domain.InspectionKindSiteVisit))
	assert.Equal(t, "Sample Analysis", KindLabel(domain.InspectionKindSampleAnalysis))
	assert.Equal(t, "ICQRF", AuthorityLabel(domain.AuthorityKindICQRF))
	assert.Equal(t, "Other Authority", AuthorityLabel(domain.AuthorityKindOther))
	assert.Equal(t, "Producer", RecipientLabel(domain.RecipientCategoryProducer))
	assert.Equal(t, "Negative", SentimentLabel(domain.MentionSentimentNegative))
	assert.Equal(t, "High", SeverityLabel(domain.NoticeSeverityHigh))
}

func TestJoinQuestions(t *testing.T) {
	got := JoinQuestions([]string{
		"Where was lot 2026-042 pressed?",
		"  Can you provide mill delivery receipts?  ",
	})
	assert.Equal(t,
		"1. Where was lot 2026-042 pressed?\n2. Can you provide mill delivery receipts?",
		got)

	assert.Empty(t, JoinQuestions(nil))
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2026, 9, 14, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "September 14, 2026", FormatDate(ts))
	assert.Equal(t, "September 14, 2026 at 3:30 PM", FormatDateTime(ts))
}
