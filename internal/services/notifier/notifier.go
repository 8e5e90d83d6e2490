// Package notifier отправляет подписчикам письма о подтверждении покупки.
// Сообщения приходят из очереди benefits.purchase.
package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/benefit-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-ledger/internal/lib/smtp"
	"github.com/magabrotheeeer/benefit-ledger/internal/models"
)

type NotifierService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр NotifierService.
func New(transport smtp.TransportInterface, log *slog.Logger) *NotifierService {
	return &NotifierService{
		transport: transport,
		log:       log,
	}
}

// SendPurchaseConfirmation отправляет письмо о созданной покупке.
// Сообщения без email подтверждаются без отправки: подписчик мог
// зарегистрироваться без почты.
func (s *NotifierService) SendPurchaseConfirmation(body []byte) error {
	var message models.PurchaseInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}
	if message.Email == "" {
		s.log.Info("purchase message without email, skipping",
			slog.String("subscriber_uid", message.SubscriberUID))
		return nil
	}

	to := []string{message.Email}
	subject := "Покупка подтверждена"
	bodyText := fmt.Sprintf("Здравствуйте!\n\nВаша покупка плана %s подтверждена. Доступные услуги уже отображаются в личном кабинете.",
		message.PlanName)

	return s.sendEmail(to, subject, bodyText)
}

func (s *NotifierService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("to", addr), sl.Err(err))
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		s.log.Error("failed to open DATA", sl.Err(err))
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write message", sl.Err(err))
		return err
	}
	if err := w.Close(); err != nil {
		s.log.Error("failed to close message writer", sl.Err(err))
		return err
	}
	return client.Quit()
}
