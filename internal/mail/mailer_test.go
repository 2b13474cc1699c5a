package mail

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/finbot-app/finbot/internal/config"
)

func TestBuildMessage_Multipart(t *testing.T) {
	msg := string(BuildMessage("noreply@finbot.app", "alice@example.com", "Hello", "plain body", "<p>html body</p>"))

	for _, want := range []string{
		"From: noreply@finbot.app",
		"To: alice@example.com",
		"Subject: Hello",
		"Content-Type: multipart/alternative",
		"plain body",
		"<p>html body</p>",
		"--BOUNDARY--",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestSMTPMailer_SendVerificationCode(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	m := NewSMTPMailer(config.SMTPConfig{Host: "mail.example.com", Port: 587, From: "noreply@finbot.app"}, "Fin-Bot")
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	if err := m.SendVerificationCode(context.Background(), "alice@example.com", "Alice", "123456", "15 minutes"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAddr != "mail.example.com:587" {
		t.Fatalf("unexpected addr %q", gotAddr)
	}
	if gotFrom != "noreply@finbot.app" {
		t.Fatalf("unexpected from %q", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "alice@example.com" {
		t.Fatalf("unexpected recipients %v", gotTo)
	}
	body := string(gotMsg)
	if !strings.Contains(body, "123456") {
		t.Fatalf("verification code missing from message")
	}
	if !strings.Contains(body, "15 minutes") {
		t.Fatalf("expiry window missing from message")
	}
}

func TestSMTPMailer_MissingHost(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{}, "Fin-Bot")
	if err := m.SendPasswordReset(context.Background(), "a@b.c", "A", "654321"); err == nil {
		t.Fatalf("expected error for unconfigured host")
	}
}
