package email

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNewSMTPSender_RequiresHostAndFrom(t *testing.T) {
	if _, err := NewSMTPSender("", 587, "", "", "noreply@example.com", "", false); err == nil {
		t.Fatalf("expected error for missing host")
	}
	if _, err := NewSMTPSender("smtp.example.com", 587, "", "", "", "", false); err == nil {
		t.Fatalf("expected error for missing from")
	}
}

func TestNewSMTPSender_DefaultPort(t *testing.T) {
	sender, err := NewSMTPSender("smtp.example.com", 0, "", "", "noreply@example.com", "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.port != 587 {
		t.Fatalf("expected default port 587, got %d", sender.port)
	}
}

func TestSMTPSender_RejectsEmptyRecipient(t *testing.T) {
	sender, err := NewSMTPSender("smtp.example.com", 587, "", "", "noreply@example.com", "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sender.SendPasswordReset(context.Background(), " ", "ABCD2345", time.Now()); err == nil {
		t.Fatalf("expected error for empty recipient")
	}
}

func TestSMTPSender_CanceledContext(t *testing.T) {
	sender, err := NewSMTPSender("smtp.example.com", 587, "", "", "noreply@example.com", "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sender.SendPasswordReset(ctx, "user@example.com", "ABCD2345", time.Now()); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("noreply@example.com", "Cinetrack", "user@example.com", "Forgot Password", "Code: ABCD2345\n")

	for _, want := range []string{
		"From: Cinetrack <noreply@example.com>",
		"To: user@example.com",
		"Subject: Forgot Password",
		"\r\n\r\nCode: ABCD2345",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected message to contain %q, got %q", want, msg)
		}
	}
}
