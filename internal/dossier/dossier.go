// Package dossier renders a report's full case history as a PDF or DOCX
// document for consortium members and authority correspondence.
//
// The package defines a Generator interface implemented by PDFGenerator and
// DOCXGenerator, along with common helpers for formatting and styling the
// exported documents in the OleaWatch house style.
package dossier

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/oleawatch/oleawatch/internal/domain"
)

// =============================================================================
// Generator Interface
// =============================================================================

// Generator renders an assembled dossier to a writer.
// Implementations handle the specifics of each format (PDF, DOCX).
type Generator interface {
	// Generate renders the dossier and writes it to the provided writer.
	// Returns the number of bytes written and any error.
	Generate(ctx context.Context, d *domain.Dossier, w io.Writer) (int64, error)

	// Format returns the output format of this generator.
	Format() domain.DossierFormat
}

// =============================================================================
// House Colors
// =============================================================================

// HouseColors defines the color palette for exported dossiers.
var HouseColors = struct {
	Olive      string // Primary brand color
	Gold       string // Accent color
	TextDark   string // Primary text
	TextMuted  string // Secondary text
	Border     string // Borders and dividers
	Background string // Light background
	White      string // White
}{
	Olive:      "#3F4A1E",
	Gold:       "#C9A227",
	TextDark:   "#1F2937",
	TextMuted:  "#6B7280",
	Border:     "#E5E7EB",
	Background: "#F9FAFB",
	White:      "#FFFFFF",
}

// =============================================================================
// Severity Colors
// =============================================================================

// SeverityColors maps notice severity levels to display colors.
var SeverityColors = map[domain.NoticeSeverity]string{
	domain.NoticeSeverityCritical: "#DC2626", // Red-600
	domain.NoticeSeverityHigh:     "#F59E0B", // Amber-500
	domain.NoticeSeverityMedium:   "#3B82F6", // Blue-500
	domain.NoticeSeverityLow:      "#6B7280", // Gray-500
}

// SeverityColor returns the color for a notice severity level.
func SeverityColor(severity domain.NoticeSeverity) string {
	if color, ok := SeverityColors[severity]; ok {
		return color
	}
	return HouseColors.TextMuted
}

// SentimentColors maps mention sentiments to display colors.
var SentimentColors = map[domain.MentionSentiment]string{
	domain.MentionSentimentNegative: "#DC2626", // Red-600
	domain.MentionSentimentNeutral:  "#6B7280", // Gray-500
	domain.MentionSentimentPositive: "#16A34A", // Green-600
}

// SentimentColor returns the color for a mention sentiment.
func SentimentColor(sentiment domain.MentionSentiment) string {
	if color, ok := SentimentColors[sentiment]; ok {
		return color
	}
	return HouseColors.TextMuted
}

// =============================================================================
// Display Labels
// =============================================================================

// SeverityLabel returns a human-readable label for a notice severity.
func SeverityLabel(severity domain.NoticeSeverity) string {
	switch severity {
	case domain.NoticeSeverityCritical:
		return "Critical"
	case domain.NoticeSeverityHigh:
		return "High"
	case domain.NoticeSeverityMedium:
		return "Medium"
	case domain.NoticeSeverityLow:
		return "Low"
	default:
		return string(severity)
	}
}

// KindLabel returns a human-readable label for an inspection kind.
func KindLabel(kind domain.InspectionKind) string {
	switch kind {
	case domain.InspectionKindSiteVisit:
		return "Site Visit"
	case domain.InspectionKindLabelAudit:
		return "Label Audit"
	case domain.InspectionKindSampleAnalysis:
		return "Sample Analysis"
	case domain.InspectionKindDocumentReview:
		return "Document Review"
	default:
		return string(kind)
	}
}

// AuthorityLabel returns a human-readable label for an authority kind.
func AuthorityLabel(kind domain.AuthorityKind) string {
	switch kind {
	case domain.AuthorityKindICQRF:
		return "ICQRF"
	case domain.AuthorityKindNAS:
		return "NAS"
	case domain.AuthorityKindASL:
		return "ASL"
	case domain.AuthorityKindCustoms:
		return "Customs"
	default:
		return "Other Authority"
	}
}

// SentimentLabel returns a human-readable label for a mention sentiment.
func SentimentLabel(sentiment domain.MentionSentiment) string {
	switch sentiment {
	case domain.MentionSentimentPositive:
		return "Positive"
	case domain.MentionSentimentNeutral:
		return "Neutral"
	case domain.MentionSentimentNegative:
		return "Negative"
	default:
		return string(sentiment)
	}
}

// RecipientLabel returns a human-readable label for a recipient category.
func RecipientLabel(category domain.RecipientCategory) string {
	switch category {
	case domain.RecipientCategoryProducer:
		return "Producer"
	case domain.RecipientCategoryBottler:
		return "Bottler"
	case domain.RecipientCategoryDistributor:
		return "Distributor"
	case domain.RecipientCategoryRetailer:
		return "Retailer"
	default:
		return "Other"
	}
}

// =============================================================================
// Color Conversion Helpers
// =============================================================================

// HexToRGB converts a hex color string to RGB values.
// Input format: "#RRGGBB" or "RRGGBB"
func HexToRGB(hex string) (r, g, b int) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return 0, 0, 0
	}

	r = hexToDec(hex[0:2])
	g = hexToDec(hex[2:4])
	b = hexToDec(hex[4:6])
	return
}

// hexToDec converts a 2-character hex string to decimal.
func hexToDec(hex string) int {
	val := 0
	for _, c := range hex {
		val *= 16
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	return val
}

// =============================================================================
// Text Formatting Helpers
// =============================================================================

// TruncateText truncates text to a maximum length, adding ellipsis if needed.
func TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return text[:maxLen]
	}
	return text[:maxLen-3] + "..."
}

// FormatDate formats a date for display in dossiers.
func FormatDate(t interface{ Format(string) string }) string {
	return t.Format("January 2, 2006")
}

// FormatDateTime formats a datetime for display in dossiers.
func FormatDateTime(t interface{ Format(string) string }) string {
	return t.Format("January 2, 2006 at 3:04 PM")
}

// JoinQuestions renders a question list as a numbered block of text.
func JoinQuestions(questions []string) string {
	var sb strings.Builder
	for i, q := range questions {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, strings.TrimSpace(q))
	}
	return sb.String()
}
