package dossier

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/oleawatch/oleawatch/internal/domain"
)

// =============================================================================
// PDF Generator
// =============================================================================

// PDFGenerator renders dossiers as PDF documents.
type PDFGenerator struct {
	// Page dimensions (A4 in mm)
	pageWidth  float64
	pageHeight float64
	margin     float64

	// Content area
	contentWidth float64
}

// NewPDFGenerator creates a new PDF generator with default settings.
func NewPDFGenerator() *PDFGenerator {
	margin := 15.0
	pageWidth := 210.0 // A4 width in mm
	return &PDFGenerator{
		pageWidth:    pageWidth,
		pageHeight:   297.0, // A4 height in mm
		margin:       margin,
		contentWidth: pageWidth - (2 * margin),
	}
}

// Format returns the output format of this generator.
func (g *PDFGenerator) Format() domain.DossierFormat {
	return domain.DossierFormatPDF
}

// Generate renders a dossier as PDF and writes it to the provided writer.
func (g *PDFGenerator) Generate(ctx context.Context, d *domain.Dossier, w io.Writer) (int64, error) {
	pdf := fpdf.New("P", "mm", "A4", "")

	// Set document metadata
	pdf.SetTitle("Compliance Case Dossier - "+d.Report.Title, true)
	pdf.SetAuthor(d.GeneratedBy, true)
	pdf.SetCreator("OleaWatch Reputation Monitoring Platform", true)

	// Enable automatic page breaks with footer space
	pdf.SetAutoPageBreak(true, 20)

	pdf.SetFooterFunc(func() {
		g.addFooter(pdf, d)
	})

	// Generate dossier sections
	g.addCoverPage(pdf, d)
	g.addTimeline(pdf, d)
	g.addInspections(pdf, d)
	g.addClarifications(pdf, d)
	g.addNotices(pdf, d)

	if len(d.Mentions) > 0 {
		g.addMentionAppendix(pdf, d)
	}

	// Check for errors during generation
	if err := pdf.Error(); err != nil {
		return 0, fmt.Errorf("pdf generation error: %w", err)
	}

	// Write to buffer to count bytes
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return 0, fmt.Errorf("pdf output error: %w", err)
	}

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// =============================================================================
// Cover Page
// =============================================================================

func (g *PDFGenerator) addCoverPage(pdf *fpdf.Fpdf, d *domain.Dossier) {
	pdf.AddPage()

	// Olive header bar
	r, gr, b := HexToRGB(HouseColors.Olive)
	pdf.SetFillColor(r, gr, b)
	pdf.Rect(0, 0, g.pageWidth, 70, "F")

	// Title
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 32)
	pdf.SetXY(g.margin, 25)
	pdf.Cell(0, 12, "Compliance Case Dossier")

	// Subtitle with case title
	pdf.SetFont("Helvetica", "", 14)
	pdf.SetXY(g.margin, 42)
	pdf.Cell(0, 8, TruncateText(d.Report.Title, 90))

	// Reset text color for body content
	r, gr, b = HexToRGB(HouseColors.TextDark)
	pdf.SetTextColor(r, gr, b)

	// Case block
	pdf.SetXY(g.margin, 90)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "CASE")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Reference: "+d.Report.ID.String())
	pdf.Ln(7)
	pdf.Cell(0, 7, "Status: "+d.Report.Status.Label())
	pdf.Ln(7)
	pdf.Cell(0, 7, "Opened: "+FormatDate(d.Report.CreatedAt))
	pdf.Ln(7)
	if d.Report.ClosedAt != nil {
		pdf.Cell(0, 7, "Closed: "+FormatDate(*d.Report.ClosedAt))
		pdf.Ln(7)
	}

	if d.Report.Description != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "DESCRIPTION")
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(g.contentWidth, 6, d.Report.Description, "", "L", false)
	}

	if d.Report.ClosureReason != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "CLOSURE REASON")
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(g.contentWidth, 6, d.Report.ClosureReason, "", "L", false)
	}

	// Activity summary table
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "ACTIVITY")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(245, 245, 245)
	pdf.CellFormat(80, 8, "Activity", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Count", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	rows := []struct {
		label string
		count int
	}{
		{"State transitions", len(d.StateChanges)},
		{"Inspections", len(d.Inspections)},
		{"Clarification requests", len(d.Requests)},
		{"Authority notices", len(d.Notices)},
		{"Promoted mentions", len(d.Mentions)},
		{"Evidence files", len(d.Attachments)},
	}
	for _, row := range rows {
		pdf.CellFormat(80, 8, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%d", row.count), "1", 1, "C", false, 0, "")
	}
}

// =============================================================================
// Workflow Timeline
// =============================================================================

func (g *PDFGenerator) addTimeline(pdf *fpdf.Fpdf, d *domain.Dossier) {
	pdf.AddPage()
	g.addSectionHeader(pdf, "Workflow Timeline")

	if len(d.StateChanges) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 10, "No transitions have been recorded for this case.")
		return
	}

	for i, change := range d.StateChanges {
		if pdf.GetY() > 240 {
			pdf.AddPage()
		}

		// Status movement header with gold marker
		r, gr, b := HexToRGB(HouseColors.Gold)
		pdf.SetFillColor(r, gr, b)
		pdf.Rect(g.margin, pdf.GetY(), 4, 8, "F")

		pdf.SetX(g.margin + 8)
		pdf.SetFont("Helvetica", "B", 11)
		r, gr, b = HexToRGB(HouseColors.TextDark)
		pdf.SetTextColor(r, gr, b)
		pdf.Cell(0, 8, change.FromStatus.Label()+"  to  "+change.ToStatus.Label())
		pdf.Ln(9)

		pdf.SetX(g.margin + 8)
		pdf.SetFont("Helvetica", "", 9)
		r, gr, b = HexToRGB(HouseColors.TextMuted)
		pdf.SetTextColor(r, gr, b)
		pdf.Cell(0, 5, FormatDateTime(change.CreatedAt))
		pdf.Ln(7)

		r, gr, b = HexToRGB(HouseColors.TextDark)
		pdf.SetTextColor(r, gr, b)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetX(g.margin + 8)
		pdf.MultiCell(g.contentWidth-8, 5, "Motive: "+change.Motive, "", "L", false)
		if change.Note != "" {
			pdf.SetX(g.margin + 8)
			pdf.SetFont("Helvetica", "I", 10)
			pdf.MultiCell(g.contentWidth-8, 5, change.Note, "", "L", false)
		}

		if i < len(d.StateChanges)-1 {
			pdf.Ln(4)
		}
	}
}

// =============================================================================
// Inspections
// =============================================================================

func (g *PDFGenerator) addInspections(pdf *fpdf.Fpdf, d *domain.Dossier) {
	if len(d.Inspections) == 0 {
		return
	}

	pdf.AddPage()
	g.addSectionHeader(pdf, "Inspections")

	for i, insp := range d.Inspections {
		if pdf.GetY() > 230 {
			pdf.AddPage()
		}

		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, fmt.Sprintf("Inspection #%d: %s", i+1, KindLabel(insp.Kind)))
		pdf.Ln(10)

		pdf.SetFont("Helvetica", "", 10)
		g.addLabelValue(pdf, "Scheduled", FormatDateTime(insp.ScheduledAt))
		g.addLabelValue(pdf, "Location", insp.Location)
		g.addLabelValue(pdf, "Inspector", insp.Inspector)
		g.addLabelValue(pdf, "Outcome", insp.Outcome)

		if insp.Minutes != "" {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.Cell(0, 6, "Minutes:")
			pdf.Ln(6)
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(g.contentWidth, 5, insp.Minutes, "", "L", false)
		} else {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.Cell(0, 6, "Minutes not yet recorded.")
			pdf.Ln(6)
		}

		if i < len(d.Inspections)-1 {
			g.addSeparator(pdf)
		}
	}
}

// =============================================================================
// Clarification Requests
// =============================================================================

func (g *PDFGenerator) addClarifications(pdf *fpdf.Fpdf, d *domain.Dossier) {
	if len(d.Requests) == 0 {
		return
	}

	pdf.AddPage()
	g.addSectionHeader(pdf, "Clarification Requests")

	for i, req := range d.Requests {
		if pdf.GetY() > 220 {
			pdf.AddPage()
		}

		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, fmt.Sprintf("Request #%d: %s", i+1, TruncateText(req.Subject, 70)))
		pdf.Ln(10)

		pdf.SetFont("Helvetica", "", 10)
		g.addLabelValue(pdf, "Recipient", RecipientLabel(req.RecipientCategory))
		g.addLabelValue(pdf, "Sent to", req.RecipientEmail)
		if req.DueAt != nil {
			g.addLabelValue(pdf, "Due", FormatDate(*req.DueAt))
		}

		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, "Questions:")
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(g.contentWidth, 5, JoinQuestions(req.Questions), "", "L", false)
		pdf.Ln(2)

		if req.IsAnswered() {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.Cell(0, 6, "Reply ("+FormatDate(*req.FeedbackAt)+"):")
			pdf.Ln(6)
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(g.contentWidth, 5, req.Feedback, "", "L", false)
			if req.Outcome != nil {
				g.addLabelValue(pdf, "Outcome", string(*req.Outcome))
			}
		} else {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.Cell(0, 6, "Awaiting reply.")
			pdf.Ln(6)
		}

		if i < len(d.Requests)-1 {
			g.addSeparator(pdf)
		}
	}
}

// =============================================================================
// Authority Notices
// =============================================================================

func (g *PDFGenerator) addNotices(pdf *fpdf.Fpdf, d *domain.Dossier) {
	if len(d.Notices) == 0 {
		return
	}

	pdf.AddPage()
	g.addSectionHeader(pdf, "Authority Notices")

	for i, notice := range d.Notices {
		if pdf.GetY() > 220 {
			pdf.AddPage()
		}

		// Severity marker
		r, gr, b := HexToRGB(SeverityColor(notice.Severity))
		pdf.SetFillColor(r, gr, b)
		pdf.Rect(g.margin, pdf.GetY(), 4, 8, "F")

		pdf.SetX(g.margin + 8)
		pdf.SetFont("Helvetica", "B", 12)
		r, gr, b = HexToRGB(HouseColors.TextDark)
		pdf.SetTextColor(r, gr, b)
		pdf.Cell(0, 8, fmt.Sprintf("Notice #%d: %s", i+1, AuthorityLabel(notice.AuthorityKind)))
		pdf.Ln(10)

		pdf.SetX(g.margin + 8)
		pdf.SetFont("Helvetica", "", 10)
		r, gr, b = HexToRGB(SeverityColor(notice.Severity))
		pdf.SetTextColor(r, gr, b)
		pdf.Cell(0, 6, "Severity: "+SeverityLabel(notice.Severity))
		pdf.Ln(8)

		r, gr, b = HexToRGB(HouseColors.TextDark)
		pdf.SetTextColor(r, gr, b)
		pdf.SetFont("Helvetica", "", 10)
		g.addLabelValue(pdf, "Authority", notice.AuthorityName)
		g.addLabelValue(pdf, "Subject", notice.Subject)
		g.addLabelValue(pdf, "Sent", FormatDateTime(notice.SentAt))
		g.addLabelValue(pdf, "Protocol #", notice.ProtocolNumber)

		if len(notice.Violations) > 0 {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.Cell(0, 6, "Suspected violations:")
			pdf.Ln(6)
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(g.contentWidth, 5, JoinQuestions(notice.Violations), "", "L", false)
			pdf.Ln(2)
		}

		if notice.FeedbackAt != nil {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.Cell(0, 6, "Authority reply ("+FormatDate(*notice.FeedbackAt)+"):")
			pdf.Ln(6)
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(g.contentWidth, 5, notice.Feedback, "", "L", false)
		} else {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.Cell(0, 6, "Awaiting authority reply.")
			pdf.Ln(6)
		}

		if i < len(d.Notices)-1 {
			g.addSeparator(pdf)
		}
	}
}

// =============================================================================
// Mention Appendix
// =============================================================================

func (g *PDFGenerator) addMentionAppendix(pdf *fpdf.Fpdf, d *domain.Dossier) {
	pdf.AddPage()
	g.addSectionHeader(pdf, "Appendix: Promoted Mentions")

	for _, mention := range d.Mentions {
		if pdf.GetY() > 245 {
			pdf.AddPage()
		}

		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, mention.Source)
		pdf.Ln(6)

		r, gr, b := HexToRGB(HouseColors.TextMuted)
		pdf.SetTextColor(r, gr, b)
		pdf.SetFont("Helvetica", "", 9)
		pdf.Cell(0, 5, TruncateText(mention.URL, 100))
		pdf.Ln(5)
		pdf.Cell(0, 5, "Fetched: "+FormatDateTime(mention.FetchedAt))
		pdf.Ln(5)

		if mention.Sentiment != nil {
			r, gr, b = HexToRGB(SentimentColor(*mention.Sentiment))
			pdf.SetTextColor(r, gr, b)
			label := "Sentiment: " + SentimentLabel(*mention.Sentiment)
			if mention.Relevance != nil {
				label += fmt.Sprintf(" (relevance %.2f)", *mention.Relevance)
			}
			pdf.Cell(0, 5, label)
			pdf.Ln(6)
		}

		r, gr, b = HexToRGB(HouseColors.TextDark)
		pdf.SetTextColor(r, gr, b)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(g.contentWidth, 5, TruncateText(mention.Excerpt, 600), "", "L", false)

		g.addSeparator(pdf)
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

func (g *PDFGenerator) addSectionHeader(pdf *fpdf.Fpdf, title string) {
	r, gr, b := HexToRGB(HouseColors.Olive)
	pdf.SetDrawColor(r, gr, b)
	pdf.SetLineWidth(0.5)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(r, gr, b)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.Line(g.margin, pdf.GetY(), g.pageWidth-g.margin, pdf.GetY())
	pdf.Ln(10)

	// Reset text color
	r, gr, b = HexToRGB(HouseColors.TextDark)
	pdf.SetTextColor(r, gr, b)
}

func (g *PDFGenerator) addLabelValue(pdf *fpdf.Fpdf, label, value string) {
	if value == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(40, 6, label+":")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(g.contentWidth-40, 6, value, "", "L", false)
}

func (g *PDFGenerator) addSeparator(pdf *fpdf.Fpdf) {
	pdf.Ln(6)
	r, gr, b := HexToRGB(HouseColors.Border)
	pdf.SetDrawColor(r, gr, b)
	pdf.Line(g.margin, pdf.GetY(), g.pageWidth-g.margin, pdf.GetY())
	pdf.Ln(6)
}

func (g *PDFGenerator) addFooter(pdf *fpdf.Fpdf, d *domain.Dossier) {
	pdf.SetY(-15)

	// Draw separator line
	r, gr, b := HexToRGB(HouseColors.Border)
	pdf.SetDrawColor(r, gr, b)
	pdf.Line(g.margin, pdf.GetY()-3, g.pageWidth-g.margin, pdf.GetY()-3)

	// Footer text
	r, gr, b = HexToRGB(HouseColors.TextMuted)
	pdf.SetTextColor(r, gr, b)
	pdf.SetFont("Helvetica", "", 8)

	// Left: generation date
	pdf.Cell(0, 10, "Generated: "+FormatDateTime(d.GeneratedAt))

	// Right: page number
	pdf.SetX(-g.margin - 30)
	pdf.CellFormat(30, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
}
