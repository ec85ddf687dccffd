package domain

import (
	"fmt"
	"time"
)

// DossierFormat identifies a dossier export format.
type DossierFormat string

const (
	DossierFormatPDF  DossierFormat = "pdf"
	DossierFormatDOCX DossierFormat = "docx"
)

// IsValid reports whether the format is a supported export format.
func (f DossierFormat) IsValid() bool {
	switch f {
	case DossierFormatPDF, DossierFormatDOCX:
		return true
	}
	return false
}

// ContentType returns the MIME type for the format.
func (f DossierFormat) ContentType() string {
	switch f {
	case DossierFormatPDF:
		return "application/pdf"
	case DossierFormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension for the format, without the dot.
func (f DossierFormat) Extension() string {
	return string(f)
}

// Dossier is the assembled case history exported for consortium members
// and authority correspondence. It carries everything recorded against a
// report: the workflow timeline, every verification activity, and the
// mentions the case grew out of.
type Dossier struct {
	Report       Report
	StateChanges []StateChange
	Inspections  []Inspection
	Requests     []ClarificationRequest
	Notices      []AuthorityNotice
	Mentions     []Mention
	Attachments  []Attachment

	// Operator who requested the export
	GeneratedBy string
	GeneratedAt time.Time
}

// Filename returns a download filename for the dossier.
func (d *Dossier) Filename(format DossierFormat) string {
	return fmt.Sprintf("dossier-%s.%s", d.Report.ID, format.Extension())
}

// PendingNotice returns the authority notice still awaiting feedback, or
// nil when every notice has been answered.
func (d *Dossier) PendingNotice() *AuthorityNotice {
	for i := range d.Notices {
		if d.Notices[i].FeedbackAt == nil {
			return &d.Notices[i]
		}
	}
	return nil
}

// NoticeCountBySeverity returns the number of authority notices for each
// severity level.
func (d *Dossier) NoticeCountBySeverity() map[NoticeSeverity]int {
	counts := make(map[NoticeSeverity]int)
	for _, n := range d.Notices {
		counts[n.Severity]++
	}
	return counts
}

// MentionCountBySentiment returns the number of promoted mentions for each
// sentiment. Unscored mentions are not counted.
func (d *Dossier) MentionCountBySentiment() map[MentionSentiment]int {
	counts := make(map[MentionSentiment]int)
	for _, m := range d.Mentions {
		if m.Sentiment != nil {
			counts[*m.Sentiment]++
		}
	}
	return counts
}

// HasActivity reports whether any verification work has been recorded.
func (d *Dossier) HasActivity() bool {
	return len(d.Inspections) > 0 || len(d.Requests) > 0 || len(d.Notices) > 0
}
