package invitations

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/keyhaven/keyhaven-api/models"
	templates "github.com/keyhaven/keyhaven-api/templates/html"
)

// go generate: mockery --name Gateway

// Gateway hands an invitation off to an external transport. The service only
// records whether the handoff succeeded; delivery itself is not our problem.
type Gateway interface {
	Send(ctx context.Context, invitation *models.Invitation, channel string) error
}

// SMSSender delivers a text message through an external provider.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, body string) error
}

// SendGridGateway sends invitation emails through SendGrid. SMS goes through
// the optional SMSSender; with none configured, sms sends fail with a
// DispatchError and the invitation stays retryable.
type SendGridGateway struct {
	BaseURL string
	SMS     SMSSender
}

// NewSendGridGateway returns a gateway that builds accept links off baseURL.
func NewSendGridGateway(baseURL string, sms SMSSender) *SendGridGateway {
	return &SendGridGateway{BaseURL: baseURL, SMS: sms}
}

// Send dispatches the invitation over the requested channel. For "both", the
// email leg runs first and any failure aborts before the sms leg.
func (g *SendGridGateway) Send(ctx context.Context, invitation *models.Invitation, channel string) error {
	switch channel {
	case models.SendViaEmail:
		return g.sendEmail(invitation)
	case models.SendViaSMS:
		return g.sendSMS(ctx, invitation)
	case models.SendViaBoth:
		if err := g.sendEmail(invitation); err != nil {
			return err
		}
		return g.sendSMS(ctx, invitation)
	}
	return &DispatchError{Channel: channel, Err: errors.New("unknown delivery channel")}
}

func (g *SendGridGateway) acceptLink(invitation *models.Invitation) string {
	return fmt.Sprintf("%s/invite/%s", g.BaseURL, invitation.InviteToken)
}

func (g *SendGridGateway) sendEmail(invitation *models.Invitation) error {
	sendgridAPIKey := os.Getenv("SENDGRID_API_KEY")
	if sendgridAPIKey == "" {
		return &DispatchError{Channel: models.SendViaEmail, Err: errors.New("SENDGRID_API_KEY not set")}
	}

	link := g.acceptLink(invitation)
	from := mail.NewEmail("KeyHaven", "no-reply@keyhaven.com")
	subject := "You're invited to join KeyHaven"
	to := mail.NewEmail(invitation.FirstName, invitation.Email)

	plainTextContent := fmt.Sprintf("You've been invited to join KeyHaven. Accept your invitation here: %s", link)
	if invitation.CustomMessage != "" {
		plainTextContent = invitation.CustomMessage + "\n\n" + plainTextContent
	}
	htmlContent := templates.RenderInvitation(invitation.FirstName, link, invitation.CustomMessage, invitation.ExpiresAt)
	if invitation.InviteCode != "" {
		plainTextContent += fmt.Sprintf("\n\nOr enter invite code %s on the sign-up page.", invitation.InviteCode)
		htmlContent = templates.RenderInviteCode(invitation.InviteCode, invitation.ExpiresAt)
	}
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	client := sendgrid.NewSendClient(sendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return &DispatchError{Channel: models.SendViaEmail, Err: err}
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &DispatchError{Channel: models.SendViaEmail, Err: fmt.Errorf("sendgrid returned status %d", response.StatusCode)}
	}

	zap.S().Infow("invitation email sent",
		"invitationId", invitation.ID.Hex(),
		"statusCode", response.StatusCode,
	)
	return nil
}

func (g *SendGridGateway) sendSMS(ctx context.Context, invitation *models.Invitation) error {
	if g.SMS == nil {
		return &DispatchError{Channel: models.SendViaSMS, Err: errors.New("sms transport not configured")}
	}
	if invitation.Phone == "" {
		return &DispatchError{Channel: models.SendViaSMS, Err: errors.New("invitation has no phone number")}
	}

	body := fmt.Sprintf("You've been invited to join KeyHaven: %s", g.acceptLink(invitation))
	if invitation.InviteCode != "" {
		body = fmt.Sprintf("Your KeyHaven invite code is %s", invitation.InviteCode)
	}
	if err := g.SMS.SendSMS(ctx, invitation.Phone, body); err != nil {
		return &DispatchError{Channel: models.SendViaSMS, Err: err}
	}

	zap.S().Infow("invitation sms sent", "invitationId", invitation.ID.Hex())
	return nil
}
