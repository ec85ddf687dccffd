package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/oleawatch/oleawatch/internal/domain"
)

// =============================================================================
// SMTP Email Service Implementation
// =============================================================================

// SMTPEmailService sends emails via SMTP.
//
// This implementation works with:
// - Mailhog (development): No authentication required
// - Any standard SMTP relay (production): Uses username/password authentication
//
// HTML bodies are rendered from embedded templates; every message also
// carries a plain text part.
type SMTPEmailService struct {
	config    SMTPConfig
	baseURL   string
	templates *template.Template
	logger    *slog.Logger
}

// NewSMTPEmailService creates a new SMTP-based email service.
//
// Parameters:
// - config: SMTP server configuration
// - baseURL: Application base URL for constructing links (e.g., "http://localhost:8080")
// - logger: Structured logger for error reporting
func NewSMTPEmailService(
	config SMTPConfig,
	baseURL string,
	logger *slog.Logger,
) (*SMTPEmailService, error) {
	// Set defaults
	if config.From == "" {
		config.From = DefaultFromEmail
	}
	if config.FromName == "" {
		config.FromName = DefaultFromName
	}

	templates, err := template.New("email").Parse(emailTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &SMTPEmailService{
		config:    config,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		templates: templates,
		logger:    logger,
	}, nil
}

// =============================================================================
// EmailService Interface Implementation
// =============================================================================

// ClarificationRequested sends the clarification questions to the report
// subject.
func (s *SMTPEmailService) ClarificationRequested(ctx context.Context, report *domain.Report, req *domain.ClarificationRequest) error {
	if req.RecipientEmail == "" {
		s.logger.Info("clarification request has no recipient email, skipping send",
			"clarification_id", req.ID)
		return nil
	}

	var due string
	if req.DueAt != nil {
		due = req.DueAt.Format("2 January 2006")
	}

	data := map[string]interface{}{
		"Subject":   req.Subject,
		"Title":     report.Title,
		"Questions": req.Questions,
		"Due":       due,
		"Year":      time.Now().Year(),
	}

	htmlBody, err := s.renderTemplate("clarification_request", data)
	if err != nil {
		return fmt.Errorf("failed to render clarification email template: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear recipient,\n\nRegarding %q, the consortium asks you to clarify the following:\n\n", report.Title)
	for i, q := range req.Questions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, q)
	}
	if due != "" {
		fmt.Fprintf(&sb, "\nPlease reply by %s.\n", due)
	}
	sb.WriteString("\nRegards,\nThe OleaWatch compliance office\n")

	email := Email{
		To:       req.RecipientEmail,
		Subject:  "Clarification requested: " + req.Subject,
		HTMLBody: htmlBody,
		TextBody: sb.String(),
	}

	return s.send(ctx, email)
}

// AuthorityNotified sends the internal copy of an authority notice to the
// compliance inbox.
func (s *SMTPEmailService) AuthorityNotified(ctx context.Context, report *domain.Report, notice *domain.AuthorityNotice) error {
	if s.config.ComplianceInbox == "" {
		return nil
	}

	data := map[string]interface{}{
		"Title":         report.Title,
		"AuthorityName": notice.AuthorityName,
		"AuthorityKind": strings.ToUpper(notice.AuthorityKind.String()),
		"Subject":       notice.Subject,
		"Violations":    notice.Violations,
		"Severity":      notice.Severity.String(),
		"ReportURL":     fmt.Sprintf("%s/reports/%s", s.baseURL, report.ID),
		"Year":          time.Now().Year(),
	}

	htmlBody, err := s.renderTemplate("authority_notice", data)
	if err != nil {
		return fmt.Errorf("failed to render authority notice email template: %w", err)
	}

	textBody := fmt.Sprintf(`An authority notice was sent for report %q.

Authority: %s (%s)
Subject: %s
Severity: %s

Case: %s/reports/%s
`, report.Title, notice.AuthorityName, strings.ToUpper(notice.AuthorityKind.String()),
		notice.Subject, notice.Severity, s.baseURL, report.ID)

	email := Email{
		To:       s.config.ComplianceInbox,
		Subject:  fmt.Sprintf("Authority notified: %s (%s)", notice.AuthorityName, notice.Severity),
		HTMLBody: htmlBody,
		TextBody: textBody,
	}

	return s.send(ctx, email)
}

// ClarificationOverdue sends a reminder that a request's deadline passed.
func (s *SMTPEmailService) ClarificationOverdue(ctx context.Context, report *domain.Report, req *domain.ClarificationRequest) error {
	if s.config.ComplianceInbox == "" {
		return nil
	}

	var due string
	if req.DueAt != nil {
		due = req.DueAt.Format("2 January 2006")
	}

	data := map[string]interface{}{
		"Title":     report.Title,
		"Subject":   req.Subject,
		"Due":       due,
		"ReportURL": fmt.Sprintf("%s/reports/%s", s.baseURL, report.ID),
		"Year":      time.Now().Year(),
	}

	htmlBody, err := s.renderTemplate("clarification_overdue", data)
	if err != nil {
		return fmt.Errorf("failed to render overdue email template: %w", err)
	}

	textBody := fmt.Sprintf(`The clarification request %q on report %q is overdue (deadline %s).

Review the case: %s/reports/%s
`, req.Subject, report.Title, due, s.baseURL, report.ID)

	email := Email{
		To:       s.config.ComplianceInbox,
		Subject:  "Clarification overdue: " + report.Title,
		HTMLBody: htmlBody,
		TextBody: textBody,
	}

	return s.send(ctx, email)
}

// FeedbackRecorded notifies the compliance inbox that a reply landed on a
// case.
func (s *SMTPEmailService) FeedbackRecorded(ctx context.Context, report *domain.Report, summary string) error {
	if s.config.ComplianceInbox == "" {
		return nil
	}

	data := map[string]interface{}{
		"Title":     report.Title,
		"Summary":   summary,
		"Status":    report.Status.String(),
		"ReportURL": fmt.Sprintf("%s/reports/%s", s.baseURL, report.ID),
		"Year":      time.Now().Year(),
	}

	htmlBody, err := s.renderTemplate("feedback_recorded", data)
	if err != nil {
		return fmt.Errorf("failed to render feedback email template: %w", err)
	}

	textBody := fmt.Sprintf(`%s

Report: %q (now %s)
Case: %s/reports/%s
`, summary, report.Title, report.Status, s.baseURL, report.ID)

	email := Email{
		To:       s.config.ComplianceInbox,
		Subject:  "Feedback recorded: " + report.Title,
		HTMLBody: htmlBody,
		TextBody: textBody,
	}

	return s.send(ctx, email)
}

// =============================================================================
// Internal Methods
// =============================================================================

// send sends an email via SMTP.
func (s *SMTPEmailService) send(ctx context.Context, email Email) error {
	// Build the email message
	msg := s.buildMessage(email)

	// Create SMTP address
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	// Create auth if credentials are provided (not needed for Mailhog)
	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	// Send the email
	err := smtp.SendMail(addr, auth, s.config.From, []string{email.To}, msg)
	if err != nil {
		s.logger.Error("failed to send email",
			"to", email.To,
			"subject", email.Subject,
			"error", err,
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		"to", email.To,
		"subject", email.Subject,
	)

	return nil
}

// buildMessage constructs the raw email message with headers.
func (s *SMTPEmailService) buildMessage(email Email) []byte {
	var buf bytes.Buffer

	// From header with display name
	fromHeader := fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)

	// Write headers
	buf.WriteString(fmt.Sprintf("From: %s\r\n", fromHeader))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", email.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	// Create multipart message for HTML + text
	boundary := "===============OLEAWATCH_BOUNDARY==============="
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	buf.WriteString("\r\n")

	// Plain text part
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.TextBody)
	buf.WriteString("\r\n")

	// HTML part
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.HTMLBody)
	buf.WriteString("\r\n")

	// End boundary
	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return buf.Bytes()
}

// renderTemplate renders an email template with the given data.
func (s *SMTPEmailService) renderTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// =============================================================================
// Embedded Templates
// =============================================================================

// emailTemplates holds the HTML bodies for all workflow emails.
const emailTemplates = `
{{define "clarification_request"}}
<html><body>
<p>Dear recipient,</p>
<p>Regarding <strong>{{.Title}}</strong>, the consortium asks you to clarify the following:</p>
<ol>
{{range .Questions}}<li>{{.}}</li>{{end}}
</ol>
{{if .Due}}<p>Please reply by <strong>{{.Due}}</strong>.</p>{{end}}
<p>Regards,<br>The OleaWatch compliance office</p>
<p style="color:#888;font-size:12px">&copy; {{.Year}} OleaWatch</p>
</body></html>
{{end}}

{{define "authority_notice"}}
<html><body>
<p>An authority notice was sent for report <strong>{{.Title}}</strong>.</p>
<ul>
<li>Authority: {{.AuthorityName}} ({{.AuthorityKind}})</li>
<li>Subject: {{.Subject}}</li>
<li>Severity: {{.Severity}}</li>
</ul>
{{if .Violations}}<p>Reported violations:</p>
<ul>{{range .Violations}}<li>{{.}}</li>{{end}}</ul>{{end}}
<p><a href="{{.ReportURL}}">Open the case</a></p>
<p style="color:#888;font-size:12px">&copy; {{.Year}} OleaWatch</p>
</body></html>
{{end}}

{{define "feedback_recorded"}}
<html><body>
<p>{{.Summary}}</p>
<p>Report <strong>{{.Title}}</strong> is now <strong>{{.Status}}</strong>.</p>
<p><a href="{{.ReportURL}}">Open the case</a></p>
<p style="color:#888;font-size:12px">&copy; {{.Year}} OleaWatch</p>
</body></html>
{{end}}

{{define "clarification_overdue"}}
<html><body>
<p>The clarification request <strong>{{.Subject}}</strong> on report
<strong>{{.Title}}</strong> is overdue{{if .Due}} (deadline {{.Due}}){{end}}.</p>
<p><a href="{{.ReportURL}}">Review the case</a></p>
<p style="color:#888;font-size:12px">&copy; {{.Year}} OleaWatch</p>
</body></html>
{{end}}
`

// =============================================================================
// Compile-time interface check
// =============================================================================

var _ EmailService = (*SMTPEmailService)(nil)
