package service

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/models"
)

// SendMailFunc matches smtp.SendMail so tests can capture messages
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailService struct {
	cfg      config.EmailConfig
	logger   *zap.Logger
	sendMail SendMailFunc
}

var _ IEmailService = (*EmailService)(nil)

func NewEmailService(cfg config.EmailConfig, logger *zap.Logger) *EmailService {
	return &EmailService{cfg: cfg, logger: logger, sendMail: smtp.SendMail}
}

// WithSendMail replaces the SMTP transport
func (s *EmailService) WithSendMail(fn SendMailFunc) *EmailService {
	s.sendMail = fn
	return s
}

// Configured reports whether an SMTP host is set
func (s *EmailService) Configured() bool {
	return s.cfg.SMTPHost != ""
}

func (s *EmailService) SendFeedbackNotification(feedback *models.Feedback, user *models.User) error {
	toEmail := s.cfg.FeedbackTo
	if toEmail == "" {
		toEmail = s.cfg.From
	}

	caser := cases.Title(language.English)
	subject := fmt.Sprintf("[Recipebox] New %s: %s", caser.String(feedback.Type), feedback.Title)
	return s.SendEmail(toEmail, subject, buildFeedbackEmailBody(feedback, user))
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	// without SMTP the message is only logged
	if !s.Configured() || to == "" {
		s.logger.Info("SMTP not configured, email not sent",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	from := s.cfg.From
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	}
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", to, from, subject, body))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	if err := s.sendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildFeedbackEmailBody(feedback *models.Feedback, user *models.User) string {
	reporter := "Anonymous"
	if user != nil {
		reporter = fmt.Sprintf("%s (%s)", user.Username, user.Email)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<body style=\"font-family: Arial, sans-serif; line-height: 1.6; color: #333;\">\n")
	fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(feedback.Title))
	b.WriteString("<table cellpadding=\"4\">\n")
	rows := [][2]string{
		{"Type", feedback.Type},
		{"Priority", feedback.Priority},
		{"Reporter", reporter},
		{"Page", feedback.URL},
		{"User agent", feedback.UserAgent},
		{"Submitted", feedback.CreatedAt.Format("2006-01-02 15:04 MST")},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "<tr><td><strong>%s</strong></td><td>%s</td></tr>\n", r[0], html.EscapeString(r[1]))
	}
	b.WriteString("</table>\n")
	fmt.Fprintf(&b, "<p style=\"white-space: pre-wrap;\">%s</p>\n", html.EscapeString(feedback.Description))
	fmt.Fprintf(&b, "<p style=\"color: #666; font-size: 12px;\">Feedback ID: %s</p>\n", feedback.ID)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
