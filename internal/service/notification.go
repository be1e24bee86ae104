package service

import (
	"context"

	"cabbook/internal/logger"
)

// TemplateMessage is a templated WhatsApp message.
type TemplateMessage struct {
	To           string
	TemplateName string
	Language     string
	Values       []string
}

// MessageSender delivers templated messages over WhatsApp.
type MessageSender interface {
	SendTemplate(ctx context.Context, msg TemplateMessage) error
}

// NotificationService sends verification codes to users.
type NotificationService struct {
	sender   MessageSender
	template string
	log      logger.ILogger
}

// NewNotificationService creates a new NotificationService. With a nil
// sender every send fails.
func NewNotificationService(sender MessageSender, template string, log logger.ILogger) *NotificationService {
	return &NotificationService{
		sender:   sender,
		template: template,
		log:      log,
	}
}

// SendVerificationCode delivers code to mobile using the verification template.
func (s *NotificationService) SendVerificationCode(ctx context.Context, mobile, code string) error {
	if s.sender == nil {
		s.log.Warning("whatsapp sender not configured, verification code not sent", logger.String("mobile", maskMobile(mobile)))
		return ErrVerificationSendFails
	}

	err := s.sender.SendTemplate(ctx, TemplateMessage{
		To:           mobile,
		TemplateName: s.template,
		Language:     "en",
		Values:       []string{code},
	})
	if err != nil {
		s.log.Error("failed to send verification code",
			logger.String("mobile", maskMobile(mobile)),
			logger.Error(err),
		)
		return ErrVerificationSendFails
	}

	s.log.Info("verification code sent", logger.String("mobile", maskMobile(mobile)))
	return nil
}

// maskMobile keeps the last four digits of a number for logs.
func maskMobile(mobile string) string {
	if len(mobile) <= 4 {
		return "****"
	}
	return "******" + mobile[len(mobile)-4:]
}
