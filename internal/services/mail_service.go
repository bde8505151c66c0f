package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"path/filepath"
	"strings"

	"habitlink/internal/logger"
)

// Mailer is the outgoing email surface the domain services use.
type Mailer interface {
	SendFriendRequestEmail(email, senderName, link string)
	SendLevelUpEmail(email string, level int, title string)
}

type MailConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	From         string
	TemplatesDir string
}

type MailService struct {
	cfg     MailConfig
	Enabled bool
	send    func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailService(cfg MailConfig) *MailService {
	enabled := cfg.Host != "" && cfg.Port != "" && cfg.Username != "" && cfg.Password != "" && cfg.From != ""
	if !enabled {
		logger.Warn("MailService disabled: missing SMTP settings")
	}
	return &MailService{cfg: cfg, Enabled: enabled, send: smtp.SendMail}
}

func (s *MailService) buildMessage(to []string, subject, body string) []byte {
	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	return []byte(fmt.Sprintf("To: %s\r\n"+
		"From: Habitlink <%s>\r\n"+
		"Subject: %s\r\n"+
		"%s\r\n%s", strings.Join(to, ","), s.cfg.From, subject, mime, body))
}

func (s *MailService) sendAsync(to []string, subject string, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)

		if err := s.send(addr, auth, s.cfg.From, to, s.buildMessage(to, subject, body)); err != nil {
			logger.Error("Failed to send email", "to", to, "error", err)
		} else {
			logger.Info("Email sent", "to", to, "subject", subject)
		}
	}()
}

func (s *MailService) parseTemplate(templateName string, data interface{}) (string, error) {
	path := filepath.Join(s.cfg.TemplatesDir, "email", templateName)
	t, err := template.ParseFiles(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}
	return buf.String(), nil
}

func (s *MailService) SendFriendRequestEmail(email, senderName, link string) {
	body, err := s.parseTemplate("friend_request.html", map[string]string{
		"Sender": senderName,
		"Link":   link,
	})
	if err != nil {
		logger.Error("Error rendering friend request email", "error", err)
		return
	}
	s.sendAsync([]string{email}, senderName+" sent you a friend request", body)
}

func (s *MailService) SendLevelUpEmail(email string, level int, title string) {
	body, err := s.parseTemplate("level_up.html", map[string]interface{}{
		"Level": level,
		"Title": title,
	})
	if err != nil {
		logger.Error("Error rendering level up email", "error", err)
		return
	}
	s.sendAsync([]string{email}, fmt.Sprintf("You reached level %d!", level), body)
}
