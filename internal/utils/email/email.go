package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/SantaVM/bank-rest/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Sender) send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, subject)
	return nil
}

// SendBlockRequestNotice confirms that a block request has been registered
// and will be processed by an administrator.
func (s *Sender) SendBlockRequestNotice(to, cardHolder string, cardID int64) error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your request to block card #%d has been registered on %s.\n"+
			"An administrator will process it shortly. The card remains usable\n"+
			"until the block is applied.\n"+
			"\nBest regards,\nBank Service",
		cardHolder, cardID, time.Now().Format("2006-01-02 15:04:05"),
	)
	return s.send(to, "Card Block Request Received", body)
}

// SendTransferNotice notifies the owner about a completed transfer between
// their cards. The amount is a decimal string; card numbers are never
// included.
func (s *Sender) SendTransferNotice(to string, fromID, toID int64, amount string) error {
	body := fmt.Sprintf(
		"Dear customer,\n\n"+
			"A transfer of %s has been completed from your card #%d to your card #%d.\n"+
			"Transaction time: %s\n"+
			"\nBest regards,\nBank Service",
		amount, fromID, toID, time.Now().Format("2006-01-02 15:04:05"),
	)
	return s.send(to, "Transfer Notification", body)
}
