// Package contact принимает обращения из формы обратной связи.
// Имя и email шифруются до записи в базу.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/metrics"
	"github.com/magabrotheeeer/bizplan/internal/models"
	"github.com/magabrotheeeer/bizplan/internal/storage/repository"
)

// MsgSent ответ на успешную отправку.
const MsgSent = "Your message has been sent successfully. We will get back to you soon!"

const (
	maxName    = 100
	maxEmail   = 255
	maxMessage = 1000

	defaultPageSize = 50
	maxPageSize     = 200

	anonymizedName  = "Anonymized"
	anonymizedEmail = "anonymized@invalid"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ErrNotFound обращение не найдено.
var ErrNotFound = errors.New("Message not found")

// ValidationError ошибка проверки полей формы. Текст отдаётся клиенту как есть.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Repository хранилище обращений.
type Repository interface {
	CreateContact(ctx context.Context, name, email, message string) (string, error)
	ListContacts(ctx context.Context, limit, offset int) ([]models.ContactMessage, error)
	MarkContactRead(ctx context.Context, id string) error
	AnonymizeContacts(ctx context.Context, before time.Time, limit int, name, email string) (int64, error)
}

// Cipher шифрование полей.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(stored string) (string, error)
}

// Submission данные формы.
type Submission struct {
	Name    string
	Email   string
	Message string
}

// Service приём и чтение обращений.
type Service struct {
	repo   Repository
	cipher Cipher
	log    *slog.Logger
}

// New создаёт сервис.
func New(repo Repository, cipher Cipher, log *slog.Logger) *Service {
	return &Service{repo: repo, cipher: cipher, log: log}
}

// Normalize обрезает пробелы и приводит email к нижнему регистру.
func Normalize(in Submission) Submission {
	return Submission{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Message: strings.TrimSpace(in.Message),
	}
}

// Validate проверяет поля по порядку и возвращает первое нарушение.
func Validate(in Submission) error {
	switch {
	case in.Name == "":
		return &ValidationError{"Name cannot be empty"}
	case utf8.RuneCountInString(in.Name) > maxName:
		return &ValidationError{"Name must be less than 100 characters"}
	case strings.ContainsAny(in.Name, "<>{}"):
		return &ValidationError{"Name contains invalid characters"}
	case in.Email == "":
		return &ValidationError{"Email cannot be empty"}
	case utf8.RuneCountInString(in.Email) > maxEmail:
		return &ValidationError{"Email must be less than 255 characters"}
	case !emailRe.MatchString(in.Email):
		return &ValidationError{"Invalid email format"}
	case in.Message == "":
		return &ValidationError{"Message cannot be empty"}
	case utf8.RuneCountInString(in.Message) > maxMessage:
		return &ValidationError{"Message must be less than 1000 characters"}
	}
	return nil
}

// Submit проверяет, шифрует и сохраняет обращение.
func (s *Service) Submit(ctx context.Context, in Submission) (string, error) {
	const op = "services.contact.Submit"

	in = Normalize(in)
	if err := Validate(in); err != nil {
		metrics.ContactSubmissions.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return "", err
	}

	name, err := s.cipher.Encrypt(in.Name)
	if err != nil {
		metrics.ContactSubmissions.WithLabelValues(metrics.OutcomeError).Inc()
		return "", fmt.Errorf("%s: encrypt name: %w", op, err)
	}
	email, err := s.cipher.Encrypt(in.Email)
	if err != nil {
		metrics.ContactSubmissions.WithLabelValues(metrics.OutcomeError).Inc()
		return "", fmt.Errorf("%s: encrypt email: %w", op, err)
	}

	id, err := s.repo.CreateContact(ctx, name, email, in.Message)
	if err != nil {
		metrics.ContactSubmissions.WithLabelValues(metrics.OutcomeError).Inc()
		return "", fmt.Errorf("%s: %w", op, err)
	}
	metrics.ContactSubmissions.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.log.Info("contact message stored", slog.String("id", id))
	return id, nil
}

// List обращения с расшифрованными именем и email, новые первыми.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.ContactMessage, error) {
	const op = "services.contact.List"
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	msgs, err := s.repo.ListContacts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range msgs {
		msgs[i].Name = s.decrypt(msgs[i].ID, msgs[i].Name)
		msgs[i].Email = s.decrypt(msgs[i].ID, msgs[i].Email)
	}
	return msgs, nil
}

func (s *Service) decrypt(id, value string) string {
	plain, err := s.cipher.Decrypt(value)
	if err != nil {
		s.log.Warn("failed to decrypt contact field", slog.String("id", id), sl.Err(err))
		return "[encrypted]"
	}
	return plain
}

// MarkRead отмечает обращение прочитанным.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	const op = "services.contact.MarkRead"
	if err := s.repo.MarkContactRead(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Anonymize заменяет имя и email у обращений старше before пачками по batch.
// Возвращает общее число обработанных записей.
func (s *Service) Anonymize(ctx context.Context, before time.Time, batch int) (int64, error) {
	const op = "services.contact.Anonymize"
	if batch <= 0 {
		batch = defaultPageSize
	}

	name, err := s.cipher.Encrypt(anonymizedName)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	email, err := s.cipher.Encrypt(anonymizedEmail)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var total int64
	for {
		n, err := s.repo.AnonymizeContacts(ctx, before, batch, name, email)
		if err != nil {
			return total, fmt.Errorf("%s: %w", op, err)
		}
		total += n
		if n < int64(batch) {
			return total, nil
		}
	}
}
