package notifier

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"

	"cine-insights/config"
	"cine-insights/preprocess"
)

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier sends pipeline run reports by email.
type EmailNotifier struct {
	senderEmail    string
	recipientEmail string
	htmlTemplate   *template.Template
	sender         Sender
	logger         *zap.Logger
	now            func() time.Time
}

var reportTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Cine Insights - Pipeline Run</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; }
        h1 { color: #e50914; }
        h2 { color: #0071c5; margin-top: 30px; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
        th { background-color: #f4f4f4; text-align: left; padding: 10px; }
        td { padding: 10px; border-bottom: 1px solid #ddd; }
        .passed { color: #2e7d32; font-weight: bold; }
        .failed { color: #e50914; font-weight: bold; }
        .footer { font-size: 12px; color: #666; margin-top: 50px; text-align: center; }
    </style>
</head>
<body>
    <h1>Cine Insights - Pipeline Run</h1>
    <p>Run {{.RunID}} finished on {{.Date}} in {{.Duration}}.</p>
    <p>Input: {{.Report.InputPath}}<br>Output: {{.Report.OutputPath}}</p>

    <h2>Summary</h2>
    <table>
        <tr><th>Metric</th><th>Value</th></tr>
        <tr><td>Original rows</td><td>{{.Report.OriginalRows}}</td></tr>
        <tr><td>Final rows</td><td>{{.Report.FinalRows}}</td></tr>
        <tr><td>Rows removed</td><td>{{.Report.RowsRemoved}}</td></tr>
        <tr><td>Duplicates removed</td><td>{{.Report.DuplicatesRemoved}}</td></tr>
        <tr><td>Columns added</td><td>{{.Report.ColumnsAdded}}</td></tr>
        <tr><td>Missing values remaining</td><td>{{.Report.MissingRemaining}}</td></tr>
        {{range $key, $value := .Stats}}<tr><td>Stored {{$key}}</td><td>{{$value}}</td></tr>
        {{end}}
    </table>

    <h2>Validation</h2>
    {{if .Report.Issues}}
    <p class="failed">{{len .Report.Issues}} issue(s) found</p>
    <ul>
        {{range .Report.Issues}}<li>{{.}}</li>
        {{end}}
    </ul>
    {{else}}
    <p class="passed">All data quality checks passed</p>
    {{end}}

    {{if .Report.Features}}
    <h2>Engineered Features ({{len .Report.Features}})</h2>
    <p>{{join .Report.Features ", "}}</p>
    {{end}}

    <div class="footer">
        <p>This is an automated email from Cine Insights. Please do not reply.</p>
    </div>
</body>
</html>
`

// NewEmailNotifier creates a notifier delivering over SMTP.
func NewEmailNotifier(cfg config.EmailConfig, logger *zap.Logger) (*EmailNotifier, error) {
	// Mailtrap-style SMTP: the user name is fixed and the password is the API token.
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, "api", cfg.SenderPassword)
	return NewEmailNotifierWithSender(cfg, dialer, logger)
}

// NewEmailNotifierWithSender creates a notifier delivering through sender.
func NewEmailNotifierWithSender(cfg config.EmailConfig, sender Sender, logger *zap.Logger) (*EmailNotifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := template.New("email").
		Funcs(template.FuncMap{"join": strings.Join}).
		Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email template: %w", err)
	}

	logger.Info("email notifications enabled",
		zap.String("host", cfg.SMTPHost),
		zap.Int("port", cfg.SMTPPort),
		zap.String("recipient", cfg.RecipientEmail))

	return &EmailNotifier{
		senderEmail:    cfg.SenderEmail,
		recipientEmail: cfg.RecipientEmail,
		htmlTemplate:   tmpl,
		sender:         sender,
		logger:         logger,
		now:            time.Now,
	}, nil
}

// BuildRunReport composes the message for a finished preprocessing run.
// stats holds optional stored title counts.
func (n *EmailNotifier) BuildRunReport(runID string, report *preprocess.Report, stats map[string]int) (*gomail.Message, error) {
	status := "passed"
	if !report.Passed() {
		status = fmt.Sprintf("%d issues", len(report.Issues))
	}

	data := struct {
		RunID    string
		Date     string
		Duration string
		Report   *preprocess.Report
		Stats    map[string]int
	}{
		RunID:    runID,
		Date:     n.now().Format("January 2, 2006 at 3:04 PM"),
		Duration: report.Duration().Round(time.Millisecond).String(),
		Report:   report,
		Stats:    stats,
	}

	var emailBody bytes.Buffer
	if err := n.htmlTemplate.Execute(&emailBody, data); err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.senderEmail)
	m.SetHeader("To", n.recipientEmail)
	m.SetHeader("Subject", fmt.Sprintf("Cine Insights: %d titles processed (validation %s)",
		report.FinalRows, status))

	plainText := fmt.Sprintf(
		"Cine Insights Pipeline Run\n\n"+
			"Run %s finished on %s.\n"+
			"Rows: %d -> %d (%d duplicates removed)\n"+
			"Validation: %s\n\n"+
			"This is an automated email from Cine Insights. Please do not reply.",
		runID, data.Date, report.OriginalRows, report.FinalRows, report.DuplicatesRemoved, status)

	m.SetBody("text/plain", plainText)
	m.AddAlternative("text/html", emailBody.String())
	return m, nil
}

// NotifyRunReport emails the run report.
func (n *EmailNotifier) NotifyRunReport(runID string, report *preprocess.Report, stats map[string]int) error {
	if n.recipientEmail == "" {
		n.logger.Info("no recipient email configured, skipping notification")
		return nil
	}

	m, err := n.BuildRunReport(runID, report, stats)
	if err != nil {
		return err
	}
	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Info("email notification sent",
		zap.String("recipient", n.recipientEmail),
		zap.String("run_id", runID))
	return nil
}
