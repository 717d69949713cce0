package services

import (
	"context"
	"fmt"
	"html"
	"log"

	"autazul-backend-go/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Mailer sends invite e-mails through Amazon SES. Without a sender address
// it is disabled and every send is a no-op.
type Mailer struct {
	client    emailSender
	fromEmail string
	fromName  string
	enabled   bool
}

func NewMailer(ctx context.Context, region, fromEmail, fromName string) (*Mailer, error) {
	if fromEmail == "" {
		log.Println("mailer disabled: SES_FROM_EMAIL not configured")
		return &Mailer{}, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	log.Printf("mailer enabled: from=%s region=%s", fromEmail, region)
	return &Mailer{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}, nil
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.enabled
}

type InviteMail struct {
	ToEmail     string
	ToName      string
	InviterName string
	ChildName   string
	Kind        models.InviteKind
	URL         string
}

func inviteSubject(kind models.InviteKind) string {
	switch kind {
	case models.InviteProfessional:
		return "You were invited to follow a child on Autazul"
	case models.InviteCoParent:
		return "You were invited as a co-parent on Autazul"
	default:
		return "A child's record was shared with you on Autazul"
	}
}

func (m *Mailer) SendInvite(ctx context.Context, msg InviteMail) error {
	if !m.Enabled() {
		return nil
	}
	subject := inviteSubject(msg.Kind)
	textBody := fmt.Sprintf("Hi %s,\n\n%s invited you to access %s's record on Autazul.\n\nOpen the link below to accept:\n%s\n",
		msg.ToName, msg.InviterName, msg.ChildName, msg.URL)
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #333;">
<p>Hi %s,</p>
<p>%s invited you to access %s's record on Autazul.</p>
<p><a href="%s">Accept the invite</a></p>
<p style="font-size: 12px; color: #666;">%s</p>
</body></html>`,
		html.EscapeString(msg.ToName), html.EscapeString(msg.InviterName), html.EscapeString(msg.ChildName),
		html.EscapeString(msg.URL), html.EscapeString(msg.URL))
	return m.send(ctx, msg.ToEmail, subject, htmlBody, textBody)
}

func (m *Mailer) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := m.fromEmail
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)
	}
	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{toEmail}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send email to %s: %w", toEmail, err)
	}
	return nil
}
