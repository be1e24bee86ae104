package service

import (
	"context"
	"errors"
	"testing"

	"cabbook/internal/logger"
)

type recordingSender struct {
	sent []TemplateMessage
	err  error
}

func (r *recordingSender) SendTemplate(ctx context.Context, msg TemplateMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func TestNotificationService_SendVerificationCode(t *testing.T) {
	sender := &recordingSender{}
	svc := NewNotificationService(sender, "verifyacc", logger.NewNop())

	if err := svc.SendVerificationCode(context.Background(), "9876543210", "4821"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "9876543210" || msg.TemplateName != "verifyacc" || len(msg.Values) != 1 || msg.Values[0] != "4821" {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestNotificationService_SenderFailure(t *testing.T) {
	svc := NewNotificationService(&recordingSender{err: errors.New("403 forbidden")}, "verifyacc", logger.NewNop())

	err := svc.SendVerificationCode(context.Background(), "9876543210", "4821")
	if !errors.Is(err, ErrVerificationSendFails) || !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected send failure, got %v", err)
	}
}

func TestNotificationService_Unconfigured(t *testing.T) {
	svc := NewNotificationService(nil, "verifyacc", logger.NewNop())

	if err := svc.SendVerificationCode(context.Background(), "9876543210", "4821"); !errors.Is(err, ErrVerificationSendFails) {
		t.Fatalf("expected send failure, got %v", err)
	}
}

func TestMaskMobile(t *testing.T) {
	if got := maskMobile("9876543210"); got != "******3210" {
		t.Errorf("unexpected mask %q", got)
	}
	if got := maskMobile("12"); got != "****" {
		t.Errorf("unexpected mask %q", got)
	}
}
