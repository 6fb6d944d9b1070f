package contact

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/techflow/techflow-backend/internal/db/entities"
	"github.com/techflow/techflow-backend/internal/db/interfaces"
	"github.com/techflow/techflow-backend/internal/metrics"
	"go.uber.org/zap"
)

// Submission is one contact-form entry as sent by the site
type Submission struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Company     string `json:"company,omitempty"`
	Phone       string `json:"phone,omitempty"`
	InquiryType string `json:"inquiryType,omitempty"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp,omitempty"`
	UserAgent   string `json:"userAgent,omitempty"`
}

// Receipt confirms an accepted submission
type Receipt struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ValidationError rejects a submission with a user-facing message.
// Messages are Korean because the site audience is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var inquiryTypeLabels = map[string]string{
	"general":     "일반 문의",
	"project":     "프로젝트 상담",
	"partnership": "파트너십",
	"support":     "기술 지원",
	"quote":       "견적 요청",
	"other":       "기타",
}

// InquiryTypeLabel maps an inquiry-type key to its Korean label.
// Unknown keys pass through; an empty key reads as unselected.
func InquiryTypeLabel(inquiryType string) string {
	if inquiryType == "" {
		return "미선택"
	}
	if label, ok := inquiryTypeLabels[inquiryType]; ok {
		return label
	}
	return inquiryType
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service validates submissions, keeps an audit row per accepted entry
// and forwards a notification through the mailer.
type Service struct {
	messages  interfaces.Repository
	mailer    Mailer
	recipient string
	logger    *zap.SugaredLogger
	metrics   *metrics.Metrics
}

func NewService(db interfaces.Database, mailer Mailer, recipient string, logger *zap.SugaredLogger, m *metrics.Metrics) *Service {
	return &Service{
		messages:  db.Repository(entities.ContactMessageSchema),
		mailer:    mailer,
		recipient: recipient,
		logger:    logger,
		metrics:   m,
	}
}

// Submit processes one contact-form entry
func (s *Service) Submit(ctx context.Context, submission Submission) (*Receipt, error) {
	if err := validate(submission); err != nil {
		if s.metrics != nil {
			s.metrics.RecordContactSubmission(ctx, false)
		}
		return nil, err
	}

	if submission.Timestamp == "" {
		submission.Timestamp = time.Now().Format(time.RFC3339)
	}

	if _, err := s.messages.Create(ctx, map[string]interface{}{
		"name":         submission.Name,
		"email":        submission.Email,
		"company":      submission.Company,
		"phone":        submission.Phone,
		"inquiry_type": submission.InquiryType,
		"message":      submission.Message,
		"user_agent":   submission.UserAgent,
		"submitted_at": submission.Timestamp,
	}); err != nil {
		if s.metrics != nil {
			s.metrics.RecordContactSubmission(ctx, false)
		}
		return nil, fmt.Errorf("store contact message: %w", err)
	}

	if err := s.mailer.Send(ctx, s.recipient, submission); err != nil {
		// The audit row is already written; surface the delivery failure
		if s.metrics != nil {
			s.metrics.RecordContactSubmission(ctx, false)
		}
		return nil, fmt.Errorf("send contact notification: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordContactSubmission(ctx, true)
	}
	if s.logger != nil {
		s.logger.Infow("Contact submission accepted", "email", submission.Email, "inquiry_type", submission.InquiryType)
	}

	return &Receipt{
		Success:   true,
		Message:   "문의가 성공적으로 전송되었습니다.",
		Timestamp: submission.Timestamp,
	}, nil
}

func validate(submission Submission) error {
	if submission.Name == "" || submission.Email == "" || submission.Message == "" {
		return &ValidationError{Message: "필수 필드가 누락되었습니다."}
	}
	if !emailPattern.MatchString(submission.Email) {
		return &ValidationError{Message: "올바른 이메일 형식이 아닙니다."}
	}
	return nil
}
