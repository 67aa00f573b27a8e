package invitations_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	mocksdb "github.com/keyhaven/keyhaven-api/databases/mocks"
	"github.com/keyhaven/keyhaven-api/invitations"
	mocksinv "github.com/keyhaven/keyhaven-api/invitations/mocks"
	"github.com/keyhaven/keyhaven-api/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService() (*invitations.Service, *mocksdb.InvitationDatabase, *mocksdb.AuditLogDatabase, *mocksinv.Provisioner, *mocksinv.Gateway) {
	inv := &mocksdb.InvitationDatabase{}
	audit := &mocksdb.AuditLogDatabase{}
	prov := &mocksinv.Provisioner{}
	gw := &mocksinv.Gateway{}

	svc := invitations.NewService(inv, audit, prov, gw, 0)
	svc.Clock = func() time.Time { return testNow }
	return svc, inv, audit, prov, gw
}

func activeInvitation(userType string) *models.Invitation {
	return &models.Invitation{
		ID:              primitive.NewObjectID(),
		InviteToken:     "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		InviteCode:      "BXT7QWM2",
		Email:           "invitee@example.com",
		FirstName:       "Jordan",
		UserType:        userType,
		InvitedByUserID: "agent-1",
		SendVia:         models.SendViaEmail,
		Status:          models.InvitationStatusSent,
		CreatedAt:       testNow.Add(-time.Hour),
		ExpiresAt:       testNow.Add(24 * time.Hour),
	}
}

func TestServiceCreate(t *testing.T) {
	svc, inv, audit, _, _ := newTestService()

	inv.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	inv.On("InsertOne", mock.Anything, mock.AnythingOfType("models.Invitation")).Return(nil, nil)
	audit.On("InsertOne", mock.Anything, mock.AnythingOfType("models.AuditLogEntry")).Return(nil, nil)

	created, err := svc.Create(context.Background(), invitations.CreateRequest{
		Email:           "  Jordan@Example.com ",
		UserType:        models.UserTypeClient,
		InvitedByUserID: "agent-1",
		WithCode:        true,
	}, invitations.Actor{UserID: "agent-1"})

	assert.NoError(t, err)
	assert.Equal(t, "jordan@example.com", created.Email)
	assert.Equal(t, models.InvitationStatusPending, created.Status)
	assert.Equal(t, models.SendViaEmail, created.SendVia)
	assert.Len(t, created.InviteToken, 64)
	assert.Len(t, created.InviteCode, 8)
	assert.Equal(t, testNow, created.CreatedAt)
	assert.Equal(t, testNow.Add(invitations.DefaultTTL), created.ExpiresAt)
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), invitations.CreateRequest{
		UserType:        models.UserTypeClient,
		InvitedByUserID: "agent-1",
	}, invitations.Actor{})

	var verr *invitations.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email", verr.Field)
}

func TestServiceCreateProfessionalTypeRequired(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), invitations.CreateRequest{
		Email:           "realtor@example.com",
		UserType:        models.UserTypeRealtor,
		InvitedByUserID: "agent-1",
	}, invitations.Actor{})

	var verr *invitations.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "ProfessionalType", verr.Field)
}

func TestServiceCreateSMSRequiresPhone(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), invitations.CreateRequest{
		Email:           "invitee@example.com",
		UserType:        models.UserTypeClient,
		InvitedByUserID: "agent-1",
		SendVia:         models.SendViaSMS,
	}, invitations.Actor{})

	var verr *invitations.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "phone", verr.Field)
}

func TestServiceCreateConflict(t *testing.T) {
	svc, inv, _, _, _ := newTestService()

	inv.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)

	_, err := svc.Create(context.Background(), invitations.CreateRequest{
		Email:           "invitee@example.com",
		UserType:        models.UserTypeClient,
		InvitedByUserID: "agent-1",
	}, invitations.Actor{})

	assert.ErrorIs(t, err, invitations.ErrConflict)
}

func TestServiceDispatch(t *testing.T) {
	svc, inv, audit, _, gw := newTestService()

	pending := activeInvitation(models.UserTypeClient)
	pending.Status = models.InvitationStatusPending
	sent := *pending
	sent.Status = models.InvitationStatusSent

	inv.On("FindOne", mock.Anything, mock.Anything).Return(pending, nil)
	gw.On("Send", mock.Anything, pending, models.SendViaEmail).Return(nil)
	inv.On("TransitionStatus", mock.Anything, pending.ID, []string{models.InvitationStatusPending}, mock.Anything).Return(&sent, nil)
	audit.On("InsertOne", mock.Anything, mock.AnythingOfType("models.AuditLogEntry")).Return(nil, nil)

	got, err := svc.Dispatch(context.Background(), pending.ID, invitations.Actor{UserID: "agent-1"})
	assert.NoError(t, err)
	assert.Equal(t, models.InvitationStatusSent, got.Status)
}

func TestServiceDispatchGatewayFailureLeavesPending(t *testing.T) {
	svc, inv, _, _, gw := newTestService()

	pending := activeInvitation(models.UserTypeClient)
	pending.Status = models.InvitationStatusPending

	inv.On("FindOne", mock.Anything, mock.Anything).Return(pending, nil)
	gw.On("Send", mock.Anything, pending, models.SendViaEmail).
		Return(&invitations.DispatchError{Channel: models.SendViaEmail, Err: errors.New("sendgrid returned status 500")})

	_, err := svc.Dispatch(context.Background(), pending.ID, invitations.Actor{})
	var derr *invitations.DispatchError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, models.SendViaEmail, derr.Channel)
	inv.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestServiceResendTerminalInvitation(t *testing.T) {
	svc, inv, _, _, _ := newTestService()

	accepted := activeInvitation(models.UserTypeClient)
	accepted.Status = models.InvitationStatusAccepted

	inv.On("FindOne", mock.Anything, mock.Anything).Return(accepted, nil)

	_, err := svc.Resend(context.Background(), accepted.ID, "", invitations.Actor{})
	assert.ErrorIs(t, err, invitations.ErrInvalidState)
}

func TestServiceResendKeepsExpiry(t *testing.T) {
	svc, inv, audit, _, gw := newTestService()

	sent := activeInvitation(models.UserTypeClient)

	inv.On("FindOne", mock.Anything, mock.Anything).Return(sent, nil)
	gw.On("Send", mock.Anything, sent, models.SendViaEmail).Return(nil)
	audit.On("InsertOne", mock.Anything, mock.AnythingOfType("models.AuditLogEntry")).Return(nil, nil)

	got, err := svc.Resend(context.Background(), sent.ID, "", invitations.Actor{})
	assert.NoError(t, err)
	assert.Equal(t, sent.ExpiresAt, got.ExpiresAt)
	inv.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestServiceCancel(t *testing.T) {
	svc, inv, audit, _, _ := newTestService()

	sent := activeInvitation(models.UserTypeClient)
	cancelled := *sent
	cancelled.Status = models.InvitationStatusCancelled

	inv.On("FindOne", mock.Anything, mock.Anything).Return(sent, nil)
	inv.On("TransitionStatus", mock.Anything, sent.ID,
		[]string{models.InvitationStatusPending, models.InvitationStatusSent}, mock.Anything).Return(&cancelled, nil)
	audit.On("InsertOne", mock.Anything, mock.AnythingOfType("models.AuditLogEntry")).Return(nil, nil)

	got, err := svc.Cancel(context.Background(), sent.ID, invitations.Actor{UserID: "agent-1"})
	assert.NoError(t, err)
	assert.Equal(t, models.InvitationStatusCancelled, got.Status)
}

func TestServiceCancelLostRace(t *testing.T) {
	svc, inv, _, _, _ := newTestService()

	sent := activeInvitation(models.UserTypeClient)

	inv.On("FindOne", mock.Anything, mock.Anything).Return(sent, nil)
	inv.On("TransitionStatus", mock.Anything, sent.ID,
		[]string{models.InvitationStatusPending, models.InvitationStatusSent}, mock.Anything).
		Return(nil, mongo.ErrNoDocuments)

	_, err := svc.Cancel(context.Background(), sent.ID, invitations.Actor{})
	assert.ErrorIs(t, err, invitations.ErrInvalidState)
}

func TestServiceValidateNotFound(t *testing.T) {
	svc, inv, _, _, _ := newTestService()

	inv.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	_, err := svc.Validate(context.Background(), "nope")
	assert.ErrorIs(t, err, invitations.ErrNotFound)
}

func TestServiceValidateActive(t *testing.T) {
	svc, inv, _, _, _ := newTestService()

	sent := activeInvitation(models.UserTypeClient)
	inv.On("FindOne", mock.Anything, mock.Anything).Return(sent, nil)

	got, err := svc.Validate(context.Background(), sent.InviteCode)
	assert.NoError(t, err)
	assert.Equal(t, sent.Email, got.Email)
}

func TestServiceValidateLazyExpiration(t *testing.T) {
	svc, inv, audit, _, _ := newTestService()

	stale := activeInvitation(models.UserTypeClient)
	stale.ExpiresAt = testNow.Add(-time.Minute)
	expired := *stale
	expired.Status = models.InvitationStatusExpired

	inv.On("FindOne", mock.Anything, mock.Anything).Return(stale, nil)
	inv.On("TransitionStatus", mock.Anything, stale.ID,
		[]string{models.InvitationStatusPending, models.InvitationStatusSent}, mock.Anything).Return(&expired, nil)
	audit.On("InsertOne", mock.Anything, mock.AnythingOfType("models.AuditLogEntry")).Return(nil, nil)

	got, err := svc.Validate(context.Background(), stale.InviteToken)
	assert.ErrorIs(t, err, invitations.ErrExpired)
	assert.Equal(t, models.InvitationStatusExpired, got.Status)
}

func TestServiceValidateCancelled(t *testing.T) {
	svc, inv, _, _, _ := newTestService()

	cancelled := activeInvitation(models.UserTypeClient)
	cancelled.Status = models.InvitationStatusCancelled
	inv.On("FindOne", mock.Anything, mock.Anything).Return(cancelled, nil)

	_, err := svc.Validate(context.Background(), cancelled.InviteToken)
	assert.ErrorIs(t, err, invitations.ErrCancelled)
}

func TestServiceAcceptNewAccount(t *testing.T) {
	svc, inv, audit, prov, _ := newTestService()

	sent := activeInvitation(models.UserTypeClient)
	accepted := *sent
	accepted.Status = models.InvitationStatusAccepted

	inv.On("FindOne", mock.Anything, mock.Anything).Return(sent, nil)
	prov.On("FindAccountByEmail", mock.Anything, sent.Email).Return(nil, nil)
	inv.On("TransitionStatus", mock.Anything, sent.ID,
		[]string{models.InvitationStatusPending, models.InvitationStatusSent}, mock.Anything).Return(&accepted, nil)
	prov.On("CreateAccount", mock.Anything, sent.Email, "s3cret-pass", "Jordan", "").Return("user-1", nil)
	prov.On("CreateOrGetUserProfile", mock.Anything, "user-1", mock.Anything).Return(nil)
	prov.On("CreateOrGetClientProfile", mock.Anything, "user-1", mock.Anything).Return(nil)
	audit.On("InsertOne", mock.Anything, mock.AnythingOfType("models.AuditLogEntry")).Return(nil, nil)

	res, err := svc.Accept(context.Background(), invitations.AcceptRequest{
		TokenOrCode: sent.InviteToken,
		Email:       sent.Email,
		Password:    "s3cret-pass",
	}, invitations.Actor{IP: "10.0.0.1"})

	assert.NoError(t, err)
	assert.True(t, res.NewAccount)
	assert.Equal(t, "user-1", res.UserID)
	assert.Equal(t, models.UserTypeClient, res.UserType)
}

func TestServiceAcceptExistingUser(t *testing.T) {
	svc, inv, audit, prov, _ := newTestService()

	sent := activeInvitation(models.UserTypeRealtor)
	sent.ProfessionalType = "realtor"
	accepted := *sent
	accepted.Status = models.InvitationStatusAccepted

	accountID := primitive.NewObjectID()
	account := &models.Account{ID: accountID, Email: sent.Email}

	inv.On("FindOne", mock.Anything, mock.Anything).Return(sent, nil)
	prov.On("FindAccountByEmail", mock.Anything, sent.Email).Return(account, nil)
	inv.On("TransitionStatus", mock.Anything, sent.ID,
		[]string{models.InvitationStatusPending, models.InvitationStatusSent}, mock.Anything).Return(&accepted, nil)
	prov.On("CreateOrGetUserProfile", mock.Anything, accountID.Hex(), mock.Anything).Return(nil)
	prov.On("CreateOrGetProfessionalProfile", mock.Anything, accountID.Hex(), mock.Anything).Return(nil)
	audit.On("InsertOne", mock.Anything, mock.AnythingOfType("models.AuditLogEntry")).Return(nil, nil)

	res, err := svc.Accept(context.Background(), invitations.AcceptRequest{
		TokenOrCode: sent.InviteToken,
		Email:       sent.Email,
	}, invitations.Actor{})

	assert.NoError(t, err)
	assert.False(t, res.NewAccount)
	assert.Equal(t, accountID.Hex(), res.UserID)
}

func TestServiceAcceptEmailMismatch(t *testing.T) {
	svc, inv, _, _, _ := newTestService()

	sent := activeInvitation(models.UserTypeClient)
	inv.On("FindOne", mock.Anything, mock.Anything).Return(sent, nil)

	_, err := svc.Accept(context.Background(), invitations.AcceptRequest{
		TokenOrCode: sent.InviteToken,
		Email:       "someoneelse@example.com",
		Password:    "s3cret-pass",
	}, invitations.Actor{})

	assert.ErrorIs(t, err, invitations.ErrForbidden)
}

func TestServiceAcceptAuthenticatedEmailMismatch(t *testing.T) {
	svc, inv, _, _, _ := newTestService()

	sent := activeInvitation(models.UserTypeClient)
	inv.On("FindOne", mock.Anything, mock.Anything).Return(sent, nil)

	_, err := svc.Accept(context.Background(), invitations.AcceptRequest{
		TokenOrCode:         sent.InviteToken,
		Email:               sent.Email,
		AuthenticatedUserID: "user-7",
		AuthenticatedEmail:  "other@example.com",
	}, invitations.Actor{})

	assert.ErrorIs(t, err, invitations.ErrForbidden)
}

func TestServiceAcceptNoPasswordNoAccount(t *testing.T) {
	svc, inv, _, prov, _ := newTestService()

	sent := activeInvitation(models.UserTypeClient)
	inv.On("FindOne", mock.Anything, mock.Anything).Return(sent, nil)
	prov.On("FindAccountByEmail", mock.Anything, sent.Email).Return(nil, nil)

	_, err := svc.Accept(context.Background(), invitations.AcceptRequest{
		TokenOrCode: sent.InviteToken,
		Email:       sent.Email,
	}, invitations.Actor{})

	assert.ErrorIs(t, err, invitations.ErrAccountNotFound)
}

func TestServiceAcceptPasswordButAccountExists(t *testing.T) {
	svc, inv, _, prov, _ := newTestService()

	sent := activeInvitation(models.UserTypeClient)
	inv.On("FindOne", mock.Anything, mock.Anything).Return(sent, nil)
	prov.On("FindAccountByEmail", mock.Anything, sent.Email).
		Return(&models.Account{ID: primitive.NewObjectID(), Email: sent.Email}, nil)

	_, err := svc.Accept(context.Background(), invitations.AcceptRequest{
		TokenOrCode: sent.InviteToken,
		Email:       sent.Email,
		Password:    "s3cret-pass",
	}, invitations.Actor{})

	assert.ErrorIs(t, err, invitations.ErrAccountExists)
}

func TestServiceAcceptLostRace(t *testing.T) {
	svc, inv, _, prov, _ := newTestService()

	sent := activeInvitation(models.UserTypeClient)
	inv.On("FindOne", mock.Anything, mock.Anything).Return(sent, nil)
	prov.On("FindAccountByEmail", mock.Anything, sent.Email).Return(nil, nil)
	inv.On("TransitionStatus", mock.Anything, sent.ID,
		[]string{models.InvitationStatusPending, models.InvitationStatusSent}, mock.Anything).
		Return(nil, mongo.ErrNoDocuments)

	_, err := svc.Accept(context.Background(), invitations.AcceptRequest{
		TokenOrCode: sent.InviteToken,
		Email:       sent.Email,
		Password:    "s3cret-pass",
	}, invitations.Actor{})

	assert.ErrorIs(t, err, invitations.ErrAlreadyAccepted)
}

func TestServiceAcceptProvisioningFailureCompensates(t *testing.T) {
	svc, inv, _, prov, _ := newTestService()

	sent := activeInvitation(models.UserTypeClient)
	accepted := *sent
	accepted.Status = models.InvitationStatusAccepted
	reverted := *sent

	inv.On("FindOne", mock.Anything, mock.Anything).Return(sent, nil)
	prov.On("FindAccountByEmail", mock.Anything, sent.Email).Return(nil, nil)
	inv.On("TransitionStatus", mock.Anything, sent.ID,
		[]string{models.InvitationStatusPending, models.InvitationStatusSent}, mock.Anything).Return(&accepted, nil)
	prov.On("CreateAccount", mock.Anything, sent.Email, "s3cret-pass", "Jordan", "").Return("user-9", nil)
	prov.On("CreateOrGetUserProfile", mock.Anything, "user-9", mock.Anything).Return(errors.New("profiles collection unavailable"))
	prov.On("DeleteAccount", mock.Anything, "user-9").Return(nil)
	inv.On("TransitionStatus", mock.Anything, sent.ID,
		[]string{models.InvitationStatusAccepted}, mock.Anything).Return(&reverted, nil)

	_, err := svc.Accept(context.Background(), invitations.AcceptRequest{
		TokenOrCode: sent.InviteToken,
		Email:       sent.Email,
		Password:    "s3cret-pass",
	}, invitations.Actor{})

	var perr *invitations.ProvisioningError
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, "userProfile", perr.Step)
	assert.True(t, perr.Compensated)
	prov.AssertCalled(t, "DeleteAccount", mock.Anything, "user-9")
	inv.AssertCalled(t, "TransitionStatus", mock.Anything, sent.ID,
		[]string{models.InvitationStatusAccepted}, mock.Anything)
}

func TestServiceExpireStale(t *testing.T) {
	svc, inv, audit, _, _ := newTestService()

	first := activeInvitation(models.UserTypeClient)
	first.ExpiresAt = testNow.Add(-time.Hour)
	second := activeInvitation(models.UserTypeRealtor)
	second.ExpiresAt = testNow.Add(-2 * time.Hour)

	expiredFirst := *first
	expiredFirst.Status = models.InvitationStatusExpired
	expiredSecond := *second
	expiredSecond.Status = models.InvitationStatusExpired

	inv.On("Find", mock.Anything, mock.Anything).Return([]models.Invitation{*first, *second}, nil)
	inv.On("TransitionStatus", mock.Anything, first.ID,
		[]string{models.InvitationStatusPending, models.InvitationStatusSent}, mock.Anything).Return(&expiredFirst, nil)
	inv.On("TransitionStatus", mock.Anything, second.ID,
		[]string{models.InvitationStatusPending, models.InvitationStatusSent}, mock.Anything).Return(&expiredSecond, nil)
	audit.On("InsertOne", mock.Anything, mock.AnythingOfType("models.AuditLogEntry")).Return(nil, nil)

	count, err := svc.ExpireStale(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestServiceExpireStaleSkipsLostRaces(t *testing.T) {
	svc, inv, _, _, _ := newTestService()

	first := activeInvitation(models.UserTypeClient)
	first.ExpiresAt = testNow.Add(-time.Hour)

	inv.On("Find", mock.Anything, mock.Anything).Return([]models.Invitation{*first}, nil)
	inv.On("TransitionStatus", mock.Anything, first.ID,
		[]string{models.InvitationStatusPending, models.InvitationStatusSent}, mock.Anything).
		Return(nil, mongo.ErrNoDocuments)

	count, err := svc.ExpireStale(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
}
