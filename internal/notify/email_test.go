package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gopkg.in/gomail.v2"

	"github.com/erazemk/gegenstand/internal/model"
)

type fakeSender struct {
	messages []*gomail.Message
	err      error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.messages = append(f.messages, m...)
	return f.err
}

var (
	testOwner = &model.User{ID: 1, Name: "Erika", Email: "erika@example.com"}
	testItem  = &model.Item{ID: 7, Name: "Lampe", Location: "Keller"}
)

func TestEmailNotifierSkipsWithoutConfig(t *testing.T) {
	sender := &fakeSender{}
	n := &EmailNotifier{sender: sender}

	if err := n.Send(context.Background(), testOwner, testItem, "msg"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(sender.messages) != 0 {
		t.Error("expected no mail without smtp config")
	}
}

func TestEmailNotifierSends(t *testing.T) {
	sender := &fakeSender{}
	n := &EmailNotifier{cfg: SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com"}, sender: sender}

	if err := n.Send(context.Background(), testOwner, testItem, `Reminder: "Lampe" can be discarded or sold from 2026-10-01.`); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(sender.messages) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(sender.messages))
	}
	m := sender.messages[0]
	if got := m.GetHeader("To"); len(got) != 1 || got[0] != "erika@example.com" {
		t.Errorf("unexpected recipient %v", got)
	}
	if got := m.GetHeader("Subject"); len(got) != 1 || !strings.Contains(got[0], "Lampe") {
		t.Errorf("unexpected subject %v", got)
	}
}

func TestEmailNotifierSkipsEmptyRecipient(t *testing.T) {
	sender := &fakeSender{}
	n := &EmailNotifier{cfg: SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com"}, sender: sender}

	if err := n.Send(context.Background(), &model.User{Name: "x"}, testItem, "msg"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(sender.messages) != 0 {
		t.Error("expected no mail for empty recipient")
	}
}

func TestEmailNotifierWrapsSendError(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	n := &EmailNotifier{cfg: SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com"}, sender: sender}

	err := n.Send(context.Background(), testOwner, testItem, "msg")
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected wrapped send error, got %v", err)
	}
}

func TestBuildHTMLBodyEscapes(t *testing.T) {
	body := buildHTMLBody(&model.User{Name: "<b>"}, &model.Item{Location: "a&b"}, "x")
	if strings.Contains(body, "<b>") || !strings.Contains(body, "a&amp;b") {
		t.Errorf("expected escaped body, got %s", body)
	}
}
