package dossier

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"

	"github.com/oleawatch/oleawatch/internal/domain"
)

// =============================================================================
// DOCX Generator
// =============================================================================

// DOCXGenerator renders dossiers as DOCX documents.
type DOCXGenerator struct{}

// NewDOCXGenerator creates a new DOCX generator.
func NewDOCXGenerator() *DOCXGenerator {
	return &DOCXGenerator{}
}

// Format returns the output format of this generator.
func (g *DOCXGenerator) Format() domain.DossierFormat {
	return domain.DossierFormatDOCX
}

// Generate renders a dossier as DOCX and writes it to the provided writer.
func (g *DOCXGenerator) Generate(ctx context.Context, d *domain.Dossier, w io.Writer) (int64, error) {
	doc := document.New()
	defer doc.Close()

	// Set document properties
	props := doc.CoreProperties
	props.SetTitle("Compliance Case Dossier - " + d.Report.Title)
	props.SetAuthor(d.GeneratedBy)

	// Generate dossier sections
	g.addCoverSection(doc, d)
	g.addTimeline(doc, d)
	g.addInspections(doc, d)
	g.addClarifications(doc, d)
	g.addNotices(doc, d)

	if len(d.Mentions) > 0 {
		g.addMentionAppendix(doc, d)
	}

	// Write to buffer to count bytes
	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return 0, fmt.Errorf("docx save error: %w", err)
	}

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// =============================================================================
// Cover Section
// =============================================================================

func (g *DOCXGenerator) addCoverSection(doc *document.Document, d *domain.Dossier) {
	// Main title
	title := doc.AddParagraph()
	titleRun := title.AddRun()
	titleRun.Properties().SetBold(true)
	titleRun.Properties().SetSize(32 * measurement.Point)
	titleRun.Properties().SetColor(color.RGB(63, 74, 30)) // Olive
	titleRun.AddText("Compliance Case Dossier")
	title.Properties().SetSpacing(0, 20*measurement.Point)

	// Case title
	subtitle := doc.AddParagraph()
	subtitleRun := subtitle.AddRun()
	subtitleRun.Properties().SetSize(14 * measurement.Point)
	subtitleRun.AddText(d.Report.Title)
	subtitle.Properties().SetSpacing(0, 30*measurement.Point)

	// Case details
	g.addLabeledSection(doc, "CASE", func() {
		g.addTextLine(doc, "Reference: "+d.Report.ID.String(), false)
		g.addTextLine(doc, "Status: "+d.Report.Status.Label(), false)
		g.addTextLine(doc, "Opened: "+FormatDate(d.Report.CreatedAt), false)
		if d.Report.ClosedAt != nil {
			g.addTextLine(doc, "Closed: "+FormatDate(*d.Report.ClosedAt), false)
		}
	})

	if d.Report.Description != "" {
		g.addLabeledSection(doc, "DESCRIPTION", func() {
			g.addTextLine(doc, d.Report.Description, false)
		})
	}

	if d.Report.ClosureReason != "" {
		g.addLabeledSection(doc, "CLOSURE REASON", func() {
			g.addTextLine(doc, d.Report.ClosureReason, false)
		})
	}

	// Activity summary table
	g.addLabeledSection(doc, "ACTIVITY", func() {
		table := doc.AddTable()
		table.Properties().SetWidthPercent(60)

		headerRow := table.AddRow()
		g.addTableCell(headerRow, "Activity", true, "")
		g.addTableCell(headerRow, "Count", true, "")

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
		for _, r := range rows {
			row := table.AddRow()
			g.addTableCell(row, r.label, false, "")
			g.addTableCell(row, fmt.Sprintf("%d", r.count), false, "")
		}
	})

	// Page break
	doc.AddParagraph().AddRun().AddPageBreak()
}

// =============================================================================
// Workflow Timeline
// =============================================================================

func (g *DOCXGenerator) addTimeline(doc *document.Document, d *domain.Dossier) {
	g.addSectionHeader(doc, "Workflow Timeline")

	if len(d.StateChanges) == 0 {
		g.addTextLine(doc, "No transitions have been recorded for this case.", true)
		return
	}

	for i, change := range d.StateChanges {
		header := doc.AddParagraph()
		headerRun := header.AddRun()
		headerRun.Properties().SetBold(true)
		headerRun.Properties().SetSize(12 * measurement.Point)
		headerRun.AddText(change.FromStatus.Label() + "  to  " + change.ToStatus.Label())

		when := doc.AddParagraph()
		whenRun := when.AddRun()
		whenRun.Properties().SetColor(color.Gray)
		whenRun.Properties().SetSize(9 * measurement.Point)
		whenRun.AddText(FormatDateTime(change.CreatedAt))

		g.addLabelValue(doc, "Motive", change.Motive)
		if change.Note != "" {
			g.addTextLine(doc, change.Note, true)
		}

		if i < len(d.StateChanges)-1 {
			g.addSeparator(doc)
		}
	}

	doc.AddParagraph().AddRun().AddPageBreak()
}

// =============================================================================
// Inspections
// =============================================================================

func (g *DOCXGenerator) addInspections(doc *document.Document, d *domain.Dossier) {
	if len(d.Inspections) == 0 {
		return
	}

	g.addSectionHeader(doc, "Inspections")

	for i, insp := range d.Inspections {
		header := doc.AddParagraph()
		headerRun := header.AddRun()
		headerRun.Properties().SetBold(true)
		headerRun.Properties().SetSize(14 * measurement.Point)
		headerRun.AddText(fmt.Sprintf("Inspection #%d: %s", i+1, KindLabel(insp.Kind)))

		g.addLabelValue(doc, "Scheduled", FormatDateTime(insp.ScheduledAt))
		g.addLabelValue(doc, "Location", insp.Location)
		g.addLabelValue(doc, "Inspector", insp.Inspector)
		g.addLabelValue(doc, "Outcome", insp.Outcome)

		if insp.Minutes != "" {
			minutesLabel := doc.AddParagraph()
			minutesLabelRun := minutesLabel.AddRun()
			minutesLabelRun.Properties().SetBold(true)
			minutesLabelRun.AddText("Minutes:")
			g.addTextLine(doc, insp.Minutes, false)
		} else {
			g.addTextLine(doc, "Minutes not yet recorded.", true)
		}

		if i < len(d.Inspections)-1 {
			g.addSeparator(doc)
		}
	}

	doc.AddParagraph().AddRun().AddPageBreak()
}

// =============================================================================
// Clarification Requests
// =============================================================================

func (g *DOCXGenerator) addClarifications(doc *document.Document, d *domain.Dossier) {
	if len(d.Requests) == 0 {
		return
	}

	g.addSectionHeader(doc, "Clarification Requests")

	for i, req := range d.Requests {
		header := doc.AddParagraph()
		headerRun := header.AddRun()
		headerRun.Properties().SetBold(true)
		headerRun.Properties().SetSize(14 * measurement.Point)
		headerRun.AddText(fmt.Sprintf("Request #%d: %s", i+1, req.Subject))

		g.addLabelValue(doc, "Recipient", RecipientLabel(req.RecipientCategory))
		g.addLabelValue(doc, "Sent to", req.RecipientEmail)
		if req.DueAt != nil {
			g.addLabelValue(doc, "Due", FormatDate(*req.DueAt))
		}

		questionsLabel := doc.AddParagraph()
		questionsLabelRun := questionsLabel.AddRun()
		questionsLabelRun.Properties().SetBold(true)
		questionsLabelRun.AddText("Questions:")
		for j, q := range req.Questions {
			g.addTextLine(doc, fmt.Sprintf("%d. %s", j+1, q), false)
		}

		if req.IsAnswered() {
			replyLabel := doc.AddParagraph()
			replyLabelRun := replyLabel.AddRun()
			replyLabelRun.Properties().SetBold(true)
			replyLabelRun.AddText("Reply (" + FormatDate(*req.FeedbackAt) + "):")
			g.addTextLine(doc, req.Feedback, false)
			if req.Outcome != nil {
				g.addLabelValue(doc, "Outcome", string(*req.Outcome))
			}
		} else {
			g.addTextLine(doc, "Awaiting reply.", true)
		}

		if i < len(d.Requests)-1 {
			g.addSeparator(doc)
		}
	}

	doc.AddParagraph().AddRun().AddPageBreak()
}

// =============================================================================
// Authority Notices
// =============================================================================

func (g *DOCXGenerator) addNotices(doc *document.Document, d *domain.Dossier) {
	if len(d.Notices) == 0 {
		return
	}

	g.addSectionHeader(doc, "Authority Notices")

	for i, notice := range d.Notices {
		header := doc.AddParagraph()
		headerRun := header.AddRun()
		headerRun.Properties().SetBold(true)
		headerRun.Properties().SetSize(14 * measurement.Point)
		headerRun.AddText(fmt.Sprintf("Notice #%d: %s", i+1, AuthorityLabel(notice.AuthorityKind)))

		severity := doc.AddParagraph()
		sevLabel := severity.AddRun()
		sevLabel.AddText("Severity: ")
		sevValue := severity.AddRun()
		sevValue.Properties().SetBold(true)
		r, g_, b := HexToRGB(SeverityColor(notice.Severity))
		sevValue.Properties().SetColor(color.RGB(uint8(r), uint8(g_), uint8(b)))
		sevValue.AddText(SeverityLabel(notice.Severity))

		g.addLabelValue(doc, "Authority", notice.AuthorityName)
		g.addLabelValue(doc, "Subject", notice.Subject)
		g.addLabelValue(doc, "Sent", FormatDateTime(notice.SentAt))
		g.addLabelValue(doc, "Protocol #", notice.ProtocolNumber)

		if len(notice.Violations) > 0 {
			violationsLabel := doc.AddParagraph()
			violationsLabelRun := violationsLabel.AddRun()
			violationsLabelRun.Properties().SetBold(true)
			violationsLabelRun.AddText("Suspected violations:")
			for j, v := range notice.Violations {
				g.addTextLine(doc, fmt.Sprintf("%d. %s", j+1, v), false)
			}
		}

		if notice.FeedbackAt != nil {
			replyLabel := doc.AddParagraph()
			replyLabelRun := replyLabel.AddRun()
			replyLabelRun.Properties().SetBold(true)
			replyLabelRun.AddText("Authority reply (" + FormatDate(*notice.FeedbackAt) + "):")
			g.addTextLine(doc, notice.Feedback, false)
		} else {
			g.addTextLine(doc, "Awaiting authority reply.", true)
		}

		if i < len(d.Notices)-1 {
			g.addSeparator(doc)
		}
	}

	doc.AddParagraph().AddRun().AddPageBreak()
}

// =============================================================================
// Mention Appendix
// =============================================================================

func (g *DOCXGenerator) addMentionAppendix(doc *document.Document, d *domain.Dossier) {
	g.addSectionHeader(doc, "Appendix: Promoted Mentions")

	for _, mention := range d.Mentions {
		source := doc.AddParagraph()
		sourceRun := source.AddRun()
		sourceRun.Properties().SetBold(true)
		sourceRun.AddText(mention.Source)

		urlPara := doc.AddParagraph()
		urlRun := urlPara.AddRun()
		urlRun.Properties().SetColor(color.Gray)
		urlRun.Properties().SetSize(9 * measurement.Point)
		urlRun.AddText(mention.URL)

		g.addLabelValue(doc, "Fetched", FormatDateTime(mention.FetchedAt))

		if mention.Sentiment != nil {
			sentiment := doc.AddParagraph()
			sentLabel := sentiment.AddRun()
			sentLabel.AddText("Sentiment: ")
			sentValue := sentiment.AddRun()
			sentValue.Properties().SetBold(true)
			r, g_, b := HexToRGB(SentimentColor(*mention.Sentiment))
			sentValue.Properties().SetColor(color.RGB(uint8(r), uint8(g_), uint8(b)))
			label := SentimentLabel(*mention.Sentiment)
			if mention.Relevance != nil {
				label += fmt.Sprintf(" (relevance %.2f)", *mention.Relevance)
			}
			sentValue.AddText(label)
		}

		g.addTextLine(doc, TruncateText(mention.Excerpt, 600), true)
		g.addSeparator(doc)
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

func (g *DOCXGenerator) addSectionHeader(doc *document.Document, title string) {
	para := doc.AddParagraph()
	run := para.AddRun()
	run.Properties().SetBold(true)
	run.Properties().SetSize(18 * measurement.Point)
	run.Properties().SetColor(color.RGB(63, 74, 30)) // Olive
	run.AddText(title)
	para.Properties().SetSpacing(0, 12*measurement.Point)

	// Add underline effect with a second paragraph
	underline := doc.AddParagraph()
	underlineRun := underline.AddRun()
	underlineRun.Properties().SetColor(color.RGB(63, 74, 30))
	underlineRun.AddText("══════════════════════════════════════════════════")
	underline.Properties().SetSpacing(0, 12*measurement.Point)
}

func (g *DOCXGenerator) addLabeledSection(doc *document.Document, label string, content func()) {
	labelPara := doc.AddParagraph()
	labelRun := labelPara.AddRun()
	labelRun.Properties().SetBold(true)
	labelRun.Properties().SetSize(10 * measurement.Point)
	labelRun.Properties().SetColor(color.Gray)
	labelRun.AddText(label)
	labelPara.Properties().SetSpacing(12*measurement.Point, 4*measurement.Point)

	content()
}

func (g *DOCXGenerator) addTextLine(doc *document.Document, text string, italic bool) {
	para := doc.AddParagraph()
	run := para.AddRun()
	if italic {
		run.Properties().SetItalic(true)
	}
	run.AddText(text)
}

func (g *DOCXGenerator) addLabelValue(doc *document.Document, label, value string) {
	if value == "" {
		return
	}
	para := doc.AddParagraph()
	labelRun := para.AddRun()
	labelRun.Properties().SetBold(true)
	labelRun.AddText(label + ": ")
	para.AddRun().AddText(value)
}

func (g *DOCXGenerator) addTableCell(row document.Row, text string, bold bool, colorHex string) {
	cell := row.AddCell()
	para := cell.AddParagraph()
	run := para.AddRun()
	if bold {
		run.Properties().SetBold(true)
	}
	if colorHex != "" {
		r, g_, b := HexToRGB(colorHex)
		run.Properties().SetColor(color.RGB(uint8(r), uint8(g_), uint8(b)))
	}
	run.AddText(text)
}

func (g *DOCXGenerator) addSeparator(doc *document.Document) {
	sep := doc.AddParagraph()
	sep.Properties().SetSpacing(8*measurement.Point, 8*measurement.Point)
	sepRun := sep.AddRun()
	sepRun.Properties().SetColor(color.LightGray)
	sepRun.AddText("────────────────────────────────────────")
}
