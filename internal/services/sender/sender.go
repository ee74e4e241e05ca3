// Package sender отправляет письма о кредитах по событиям из очереди уведомлений.
package sender

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/lib/smtp"
	"github.com/magabrotheeeer/bizplan/internal/models"
)

// errUndeliverable сервер окончательно отклонил письмо.
var errUndeliverable = errors.New("message undeliverable")

// SenderService формирует и отправляет письма.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// HandleCreditEvent обработчик сообщений очереди notification.credits.
// Ошибка возвращается только при временном сбое отправки, чтобы сообщение вернулось в очередь.
// Некорректные сообщения и окончательно отклоненные письма отбрасываются.
func (s *SenderService) HandleCreditEvent(body []byte) error {
	var event models.CreditEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body, dropping", sl.Err(err))
		return nil
	}
	if event.Email == "" {
		s.log.Warn("credit event without email, skipping", slog.String("type", event.Type), sl.UserID(event.UserID))
		return nil
	}
	if strings.ContainsAny(event.Email, "\r\n") {
		s.log.Warn("credit event with malformed email, dropping", sl.UserID(event.UserID))
		return nil
	}

	var subject, text string
	switch event.Type {
	case models.EventCreditsAdded:
		subject, text = creditsAddedEmail(event)
	case models.EventCreditsLow:
		subject, text = creditsLowEmail(event)
	default:
		s.log.Warn("unknown credit event type, dropping", slog.String("type", event.Type))
		return nil
	}
	err := s.sendEmail([]string{event.Email}, subject, text)
	if errors.Is(err, errUndeliverable) {
		s.log.Warn("email rejected permanently, dropping", sl.UserID(event.UserID), sl.Err(err))
		return nil
	}
	return err
}

func creditsAddedEmail(e models.CreditEvent) (string, string) {
	subject := "Vos crédits ont été ajoutés"
	text := fmt.Sprintf("Bonjour,\n\n%d crédits ont été ajoutés à votre compte (%s).\n"+
		"Solde actuel : %d crédits.\n\nRéférence : %s\n\nMerci de votre confiance !",
		e.Added, e.Pack, e.Balance, e.Reference)
	return subject, text
}

func creditsLowEmail(e models.CreditEvent) (string, string) {
	switch {
	case e.Balance <= 0:
		return "Crédits épuisés",
			"Bonjour,\n\nVous n'avez plus de crédits. Rechargez maintenant pour continuer à générer des business plans."
	case e.Balance == 1:
		return "Dernier crédit",
			"Bonjour,\n\nIl ne vous reste qu'un seul crédit. Pensez à recharger pour ne pas être bloqué."
	default:
		return "Crédits bientôt épuisés",
			fmt.Sprintf("Bonjour,\n\nIl ne vous reste que %d crédits. Pensez à recharger bientôt.", e.Balance)
	}
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
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
		s.log.Error("Failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("Failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("Failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			if smtp.IsPermanent(err) {
				return fmt.Errorf("%w: %v", errUndeliverable, err)
			}
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("Failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("Failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("Failed to close Data writer", sl.Err(err))
		if smtp.IsPermanent(err) {
			return fmt.Errorf("%w: %v", errUndeliverable, err)
		}
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("Failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
