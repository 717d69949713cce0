package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"autazul-backend-go/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
)

type fakeSender struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSender) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	return &sesv2.SendEmailOutput{}, f.err
}

func TestMailerDisabledWithoutSender(t *testing.T) {
	mailer, err := NewMailer(context.Background(), "us-east-1", "", "")
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	if mailer.Enabled() {
		t.Fatal("mailer should be disabled")
	}
	if err := mailer.SendInvite(context.Background(), InviteMail{ToEmail: "p@x.com"}); err != nil {
		t.Fatalf("disabled send: %v", err)
	}
	var nilMailer *Mailer
	if nilMailer.Enabled() {
		t.Fatal("nil mailer should be disabled")
	}
}

func TestMailerSendInvite(t *testing.T) {
	sender := &fakeSender{}
	mailer := &Mailer{client: sender, fromEmail: "no-reply@autazul.app", fromName: "Autazul", enabled: true}

	err := mailer.SendInvite(context.Background(), InviteMail{
		ToEmail:     "p@x.com",
		ToName:      "Dr. <Prof>",
		InviterName: "Parent A",
		ChildName:   "Ana",
		Kind:        models.InviteProfessional,
		URL:         "https://autazul.app/invite/abc",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(sender.inputs) != 1 {
		t.Fatalf("sent %d emails", len(sender.inputs))
	}
	input := sender.inputs[0]
	if *input.FromEmailAddress != "Autazul <no-reply@autazul.app>" || input.Destination.ToAddresses[0] != "p@x.com" {
		t.Fatalf("unexpected envelope: %s -> %v", *input.FromEmailAddress, input.Destination.ToAddresses)
	}
	html := *input.Content.Simple.Body.Html.Data
	if strings.Contains(html, "<Prof>") || !strings.Contains(html, "https://autazul.app/invite/abc") {
		t.Fatalf("unexpected html body: %s", html)
	}

	sender.err = errors.New("throttled")
	if err := mailer.SendInvite(context.Background(), InviteMail{ToEmail: "p@x.com"}); err == nil {
		t.Fatal("expected send error")
	}
}
