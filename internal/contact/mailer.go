package contact

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Mailer delivers an inquiry notification to the site operators
type Mailer interface {
	Send(ctx context.Context, recipient string, submission Submission) error
}

// LogMailer writes the notification to the structured log instead of an
// SMTP relay. It is the default until a delivery provider is configured.
type LogMailer struct {
	logger *zap.SugaredLogger
}

func NewLogMailer(logger *zap.SugaredLogger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, recipient string, submission Submission) error {
	if m.logger != nil {
		m.logger.Infow("문의 접수",
			"recipient", recipient,
			"name", submission.Name,
			"email", submission.Email,
			"company", submission.Company,
			"phone", submission.Phone,
			"inquiry_type", InquiryTypeLabel(submission.InquiryType),
			"timestamp", submission.Timestamp,
		)
		m.logger.Debugw("문의 본문", "body", RenderNotification(submission))
	}
	return nil
}

// RenderNotification builds the plain-text body of the operator email
func RenderNotification(submission Submission) string {
	var b strings.Builder

	b.WriteString("TechFlow 문의 접수\n")
	b.WriteString("새로운 고객 문의가 접수되었습니다.\n\n")

	fmt.Fprintf(&b, "접수 시간: %s\n", submission.Timestamp)
	fmt.Fprintf(&b, "이름: %s\n", submission.Name)
	fmt.Fprintf(&b, "이메일: %s\n", submission.Email)
	if submission.Company != "" {
		fmt.Fprintf(&b, "회사: %s\n", submission.Company)
	}
	if submission.Phone != "" {
		fmt.Fprintf(&b, "연락처: %s\n", submission.Phone)
	}
	fmt.Fprintf(&b, "문의 유형: %s\n\n", InquiryTypeLabel(submission.InquiryType))

	b.WriteString("문의 내용:\n")
	b.WriteString(submission.Message)
	b.WriteString("\n\n")

	if submission.UserAgent != "" {
		fmt.Fprintf(&b, "User Agent: %s\n", submission.UserAgent)
	}

	return b.String()
}
