package contact

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techflow/techflow-backend/internal/db"
	"github.com/techflow/techflow-backend/internal/db/entities"
	"github.com/techflow/techflow-backend/internal/db/interfaces"
	"go.uber.org/zap"
)

type recordingMailer struct {
	sent      []Submission
	recipient string
	fail      error
}

func (m *recordingMailer) Send(ctx context.Context, recipient string, submission Submission) error {
	if m.fail != nil {
		return m.fail
	}
	m.recipient = recipient
	m.sent = append(m.sent, submission)
	return nil
}

func newTestService(t *testing.T, mailer Mailer) (*Service, interfaces.Database) {
	t.Helper()
	ctx := context.Background()

	database := db.NewInMemoryDatabase()
	require.NoError(t, db.ConnectAndMigrate(ctx, database, db.AllSchemas()))
	t.Cleanup(func() { database.Disconnect(ctx) })

	logger, _ := zap.NewDevelopment()
	return NewService(database, mailer, "contact@techflow.co.kr", logger.Sugar(), nil), database
}

func TestSubmitAcceptsValidEntry(t *testing.T) {
	mailer := &recordingMailer{}
	svc, database := newTestService(t, mailer)
	ctx := context.Background()

	receipt, err := svc.Submit(ctx, Submission{
		Name:        "김철수",
		Email:       "kim@example.com",
		Company:     "테크플로우 파트너스",
		Phone:       "010-1234-5678",
		InquiryType: "project",
		Message:     "프로젝트 상담을 요청드립니다.",
		Timestamp:   "2026-08-28T09:00:00Z",
		UserAgent:   "Mozilla/5.0",
	})
	require.NoError(t, err)

	assert.True(t, receipt.Success)
	assert.Equal(t, "문의가 성공적으로 전송되었습니다.", receipt.Message)
	assert.Equal(t, "2026-08-28T09:00:00Z", receipt.Timestamp)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "contact@techflow.co.kr", mailer.recipient)
	assert.Equal(t, "김철수", mailer.sent[0].Name)

	// An audit row is kept
	repo := database.Repository(entities.ContactMessageSchema)
	count, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSubmitFillsTimestamp(t *testing.T) {
	mailer := &recordingMailer{}
	svc, _ := newTestService(t, mailer)

	receipt, err := svc.Submit(context.Background(), Submission{
		Name:    "김철수",
		Email:   "kim@example.com",
		Message: "문의드립니다.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.Timestamp)
}

func TestSubmitValidation(t *testing.T) {
	mailer := &recordingMailer{}
	svc, database := newTestService(t, mailer)
	ctx := context.Background()

	cases := []struct {
		name       string
		submission Submission
		message    string
	}{
		{
			name:       "missing name",
			submission: Submission{Email: "kim@example.com", Message: "문의"},
			message:    "필수 필드가 누락되었습니다.",
		},
		{
			name:       "missing email",
			submission: Submission{Name: "김철수", Message: "문의"},
			message:    "필수 필드가 누락되었습니다.",
		},
		{
			name:       "missing message",
			submission: Submission{Name: "김철수", Email: "kim@example.com"},
			message:    "필수 필드가 누락되었습니다.",
		},
		{
			name:       "malformed email",
			submission: Submission{Name: "김철수", Email: "not-an-email", Message: "문의"},
			message:    "올바른 이메일 형식이 아닙니다.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tc.submission)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.message, verr.Message)
		})
	}

	assert.Empty(t, mailer.sent)

	repo := database.Repository(entities.ContactMessageSchema)
	count, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestSubmitMailerFailure(t *testing.T) {
	mailer := &recordingMailer{fail: errors.New("smtp unreachable")}
	svc, _ := newTestService(t, mailer)

	_, err := svc.Submit(context.Background(), Submission{
		Name:    "김철수",
		Email:   "kim@example.com",
		Message: "문의드립니다.",
	})
	require.Error(t, err)

	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestInquiryTypeLabel(t *testing.T) {
	assert.Equal(t, "프로젝트 상담", InquiryTypeLabel("project"))
	assert.Equal(t, "기술 지원", InquiryTypeLabel("support"))
	assert.Equal(t, "미선택", InquiryTypeLabel(""))
	// Unknown keys pass through untouched
	assert.Equal(t, "custom-type", InquiryTypeLabel("custom-type"))
}

func TestRenderNotification(t *testing.T) {
	body := RenderNotification(Submission{
		Name:        "김철수",
		Email:       "kim@example.com",
		Company:     "테크플로우 파트너스",
		InquiryType: "quote",
		Message:     "견적 부탁드립니다.",
		Timestamp:   "2026-08-28T09:00:00Z",
	})

	assert.Contains(t, body, "김철수")
	assert.Contains(t, body, "견적 요청")
	assert.Contains(t, body, "견적 부탁드립니다.")
	assert.Contains(t, body, "테크플로우 파트너스")
	assert.NotContains(t, body, "연락처:")
}
