package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
)

// MockEmailService is a mock implementation of the EmailService interface
type MockEmailService struct {
	mock.Mock
}

var _ service.IEmailService = (*MockEmailService)(nil)

func (m *MockEmailService) SendFeedbackNotification(feedback *models.Feedback, user *models.User) error {
	args := m.Called(feedback, user)
	return args.Error(0)
}

func (m *MockEmailService) SendEmail(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}
