package email

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"sort"
	"strings"

	"me-platform/internal/config"
	"me-platform/internal/models"
)

// SendFunc delivers a fully built message. It matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service renders and sends notification e-mails
type Service struct {
	config *config.EmailConfig
	send   SendFunc
}

// NewService creates a new email service
func NewService(cfg *config.EmailConfig) *Service {
	return &Service{config: cfg, send: smtp.SendMail}
}

// WithSender replaces the SMTP transport, mainly for tests
func (s *Service) WithSender(send SendFunc) *Service {
	s.send = send
	return s
}

// Enabled reports whether an SMTP host is configured
func (s *Service) Enabled() bool {
	return s.config.SMTPHost != ""
}

var decisionTmpl = template.Must(template.New("decision").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Report review</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2e7d32;">Report {{.Report.ID}} was {{.Verb}}</h2>
        <p>Hello {{.Name}},</p>
        <p>A reviewer has {{.Verb}} your report for period <strong>{{.Report.Period}}</strong> at the <strong>{{.Comment.Stage}}</strong> stage.</p>
        <p>Current stage: <strong>{{.Report.CurrentStage}}</strong><br>Status: <strong>{{.Report.Status}}</strong></p>
        {{if .Comment.Comment}}<blockquote style="border-left: 4px solid #ccc; margin: 0; padding-left: 12px;">{{.Comment.Comment}}</blockquote>{{end}}
        <div style="text-align: center; margin: 30px 0;">
            <a href="{{.URL}}" style="background-color: #2e7d32; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Open report</a>
        </div>
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`))

var summaryTmpl = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Reports awaiting review</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 800px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2e7d32;">{{.Total}} reports awaiting review</h2>
        <p>Hello {{.Name}},</p>
        {{range .Groups}}
        <h3>{{.Stage}} ({{len .Items}})</h3>
        <table style="width: 100%; border-collapse: collapse; margin: 10px 0;">
            <thead>
                <tr style="background-color: #f5f5f5; border-bottom: 2px solid #ddd;">
                    <th style="padding: 8px; text-align: left;">Report</th>
                    <th style="padding: 8px; text-align: left;">Organisation</th>
                    <th style="padding: 8px; text-align: left;">Focus area</th>
                    <th style="padding: 8px; text-align: left;">Period</th>
                    <th style="padding: 8px; text-align: left;">Status</th>
                </tr>
            </thead>
            <tbody>
            {{range .Items}}
                <tr style="border-bottom: 1px solid #eee;">
                    <td style="padding: 8px;"><a href="{{$.BaseURL}}/reports/{{.ReportID}}">#{{.ReportID}}</a></td>
                    <td style="padding: 8px;">{{.OrganisationName}}</td>
                    <td style="padding: 8px;">{{.FocusAreaName}}</td>
                    <td style="padding: 8px;">{{.Period}}</td>
                    <td style="padding: 8px;">{{.Status}}</td>
                </tr>
            {{end}}
            </tbody>
        </table>
        {{end}}
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">You receive this summary as a reviewer. This is an automated email.</p>
    </div>
</body>
</html>
`))

// SendReviewDecision tells a report author about a review decision
func (s *Service) SendReviewDecision(to, recipientName string, report *models.Report, comment models.ReviewComment) error {
	verb := "approved"
	if comment.Action == models.ActionReject {
		verb = "rejected"
	}

	var body bytes.Buffer
	err := decisionTmpl.Execute(&body, map[string]any{
		"Name":    recipientName,
		"Verb":    verb,
		"Report":  report,
		"Comment": comment,
		"URL":     fmt.Sprintf("%s/reports/%d", strings.TrimRight(s.config.AppURL, "/"), report.ID),
	})
	if err != nil {
		return fmt.Errorf("failed to render review email: %w", err)
	}

	subject := fmt.Sprintf("Report %d %s at %s stage", report.ID, verb, comment.Stage)
	return s.sendEmail(to, subject, body.String())
}

// StageGroup is the pending reports of one workflow stage
type StageGroup struct {
	Stage models.Stage
	Items []models.PendingReview
}

// GroupByStage orders pending reports by workflow stage
func GroupByStage(pending []models.PendingReview) []StageGroup {
	order := map[models.Stage]int{
		models.StagePlanning:   0,
		models.StageExecution:  1,
		models.StageMonitoring: 2,
		models.StageClosure:    3,
	}
	byStage := map[models.Stage][]models.PendingReview{}
	for _, p := range pending {
		byStage[p.Stage] = append(byStage[p.Stage], p)
	}
	groups := make([]StageGroup, 0, len(byStage))
	for stage, items := range byStage {
		groups = append(groups, StageGroup{Stage: stage, Items: items})
	}
	sort.Slice(groups, func(i, j int) bool {
		return order[groups[i].Stage] < order[groups[j].Stage]
	})
	return groups
}

// SendReviewerSummary sends a reviewer the reports waiting on a decision.
// Nothing is sent when the list is empty.
func (s *Service) SendReviewerSummary(to, recipientName string, pending []models.PendingReview) error {
	if len(pending) == 0 {
		return nil
	}

	var body bytes.Buffer
	err := summaryTmpl.Execute(&body, map[string]any{
		"Name":    recipientName,
		"Total":   len(pending),
		"Groups":  GroupByStage(pending),
		"BaseURL": strings.TrimRight(s.config.AppURL, "/"),
	})
	if err != nil {
		return fmt.Errorf("failed to render summary email: %w", err)
	}

	subject := fmt.Sprintf("%d reports awaiting review", len(pending))
	return s.sendEmail(to, subject, body.String())
}

func (s *Service) buildMessage(to, subject, body string) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.config.SMTPFrom)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return msg.Bytes()
}

// sendEmail sends an email using SMTP. Without an SMTP host it only logs.
func (s *Service) sendEmail(to, subject, body string) error {
	if !s.Enabled() {
		slog.Debug("SMTP disabled, skipping email", "to", to, "subject", subject)
		return nil
	}

	addr := net.JoinHostPort(s.config.SMTPHost, s.config.SMTPPort)

	// credentials are optional, e.g. for a local Mailpit
	var auth smtp.Auth
	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.SMTPFrom, []string{to}, s.buildMessage(to, subject, body)); err != nil {
		slog.Error("Failed to send email", "address", addr, "to", to, "error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("Email sent successfully", "to", to, "subject", subject)
	return nil
}
