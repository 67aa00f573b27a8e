package invitations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keyhaven/keyhaven-api/invitations"
	"github.com/keyhaven/keyhaven-api/models"
)

func TestGatewayUnknownChannel(t *testing.T) {
	g := invitations.NewSendGridGateway("https://app.keyhaven.com", nil)
	err := g.Send(context.Background(), &models.Invitation{}, "carrier-pigeon")

	var derr *invitations.DispatchError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, "carrier-pigeon", derr.Channel)
}

func TestGatewayEmailWithoutAPIKey(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "")

	g := invitations.NewSendGridGateway("https://app.keyhaven.com", nil)
	err := g.Send(context.Background(), &models.Invitation{Email: "invitee@example.com"}, models.SendViaEmail)

	var derr *invitations.DispatchError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, models.SendViaEmail, derr.Channel)
}

func TestGatewaySMSWithoutTransport(t *testing.T) {
	g := invitations.NewSendGridGateway("https://app.keyhaven.com", nil)
	err := g.Send(context.Background(), &models.Invitation{Phone: "+15550100"}, models.SendViaSMS)

	var derr *invitations.DispatchError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, models.SendViaSMS, derr.Channel)
}

type fakeSMS struct {
	phone string
	body  string
	err   error
}

func (f *fakeSMS) SendSMS(ctx context.Context, phone, body string) error {
	f.phone = phone
	f.body = body
	return f.err
}

func TestGatewaySMSWithCodeSendsCode(t *testing.T) {
	sms := &fakeSMS{}
	g := invitations.NewSendGridGateway("https://app.keyhaven.com", sms)

	invitation := &models.Invitation{Phone: "+15550100", InviteCode: "BXT7QWM2"}
	err := g.Send(context.Background(), invitation, models.SendViaSMS)

	assert.NoError(t, err)
	assert.Equal(t, "+15550100", sms.phone)
	assert.Contains(t, sms.body, "BXT7QWM2")
}

func TestGatewaySMSWithoutPhone(t *testing.T) {
	sms := &fakeSMS{}
	g := invitations.NewSendGridGateway("https://app.keyhaven.com", sms)

	err := g.Send(context.Background(), &models.Invitation{}, models.SendViaSMS)

	var derr *invitations.DispatchError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, "", sms.phone)
}
