package mail

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestNewSMTPValidation(t *testing.T) {
	base := Config{
		Host:        "smtp.example.com",
		Port:        587,
		From:        "noreply@tripmate.example",
		DisplayName: "TripMate",
	}

	if _, err := NewSMTP(base, nil); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	for name, mutate := range map[string]func(*Config){
		"missing host": func(c *Config) { c.Host = "" },
		"missing port": func(c *Config) { c.Port = 0 },
		"bad port":     func(c *Config) { c.Port = 70000 },
		"missing from": func(c *Config) { c.From = "" },
		"missing name": func(c *Config) { c.DisplayName = "" },
	} {
		cfg := base
		mutate(&cfg)
		if _, err := NewSMTP(cfg, nil); err == nil {
			t.Errorf("%s: expected config error", name)
		}
	}
}

func TestVerifyTemplateRendering(t *testing.T) {
	body, err := renderTemplate(verifyTemplate, "A1B2C3")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if !strings.Contains(body, "A1B2C3") {
		t.Fatal("rendered body missing the verification code")
	}
	if !strings.Contains(body, "TripMate") {
		t.Fatal("rendered body missing branding")
	}
	if !strings.Contains(body, strconv.Itoa(time.Now().Year())) {
		t.Fatal("rendered body missing copyright year")
	}
}

func TestResetTemplateRendering(t *testing.T) {
	body, err := renderTemplate(resetTemplate, "reset-code-xyz")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if !strings.Contains(body, "reset-code-xyz") {
		t.Fatal("rendered body missing the reset code")
	}
	if !strings.Contains(body, "Reset Your Password") {
		t.Fatal("rendered body missing subject line copy")
	}
}

func TestTemplateEscapesCode(t *testing.T) {
	body, err := renderTemplate(verifyTemplate, "<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Fatal("code must be HTML-escaped")
	}
}

func TestMessageHeaders(t *testing.T) {
	sender, err := NewSMTP(Config{
		Host:        "smtp.example.com",
		Port:        587,
		From:        "noreply@tripmate.example",
		DisplayName: "TripMate",
	}, nil)
	if err != nil {
		t.Fatalf("NewSMTP failed: %v", err)
	}

	msg := sender.message("alice@example.com", "Hello", "<p>body</p>")

	headerEnd := strings.Index(msg, "\r\n\r\n")
	if headerEnd < 0 {
		t.Fatal("message missing header/body separator")
	}
	headers := msg[:headerEnd]

	for _, want := range []string{
		"From: TripMate <noreply@tripmate.example>",
		"To: alice@example.com",
		"Subject: Hello",
		"Content-Type: text/html",
	} {
		if !strings.Contains(headers, want) {
			t.Errorf("headers missing %q:\n%s", want, headers)
		}
	}
	if !strings.Contains(msg[headerEnd:], "<p>body</p>") {
		t.Fatal("message body missing")
	}
}
