package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/keyhaven/keyhaven-api/api/handlers"
	"github.com/keyhaven/keyhaven-api/databases"
	mocksdb "github.com/keyhaven/keyhaven-api/databases/mocks"
	"github.com/keyhaven/keyhaven-api/invitations"
	mocksinv "github.com/keyhaven/keyhaven-api/invitations/mocks"
	"github.com/keyhaven/keyhaven-api/models"
)

func newHandlerService(inv *mocksdb.InvitationDatabase, audit *mocksdb.AuditLogDatabase) *invitations.Service {
	return invitations.NewService(inv, audit, &mocksinv.Provisioner{}, &mocksinv.Gateway{}, 0)
}

func sentInvitation() *models.Invitation {
	return &models.Invitation{
		ID:              primitive.NewObjectID(),
		InviteToken:     "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		Email:           "invitee@example.com",
		FirstName:       "Jordan",
		UserType:        models.UserTypeClient,
		InvitedByUserID: "agent-1",
		SendVia:         models.SendViaEmail,
		Status:          models.InvitationStatusSent,
		CreatedAt:       time.Now().Add(-time.Hour),
		ExpiresAt:       time.Now().Add(24 * time.Hour),
	}
}

func TestInvitation_InvitationByIDHandlerBadID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/invitation/1234", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"invitation_id": "1234"})

	i := handlers.Invitation{}
	rr := httptest.NewRecorder()
	http.HandlerFunc(i.InvitationByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to get objectID from Hex")
}

func TestInvitation_InvitationByIDHandler(t *testing.T) {
	invitation := sentInvitation()

	req, err := http.NewRequest("GET", "/api/v1/invitation/"+invitation.ID.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"invitation_id": invitation.ID.Hex()})

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Invitation)
		**arg = *invitation
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "invitations").Return(conn)

	i := handlers.Invitation{DB: databases.NewInvitationDatabase(db)}
	rr := httptest.NewRecorder()
	http.HandlerFunc(i.InvitationByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), invitation.Email)
	// the bearer secret never shows up in detail responses
	assert.NotContains(t, rr.Body.String(), invitation.InviteToken)
}

func TestInvitation_InvitationsByUserIDHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/invitations/user/agent-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "agent-1"})

	invDB := &mocksdb.InvitationDatabase{}
	invDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Invitation{*sentInvitation()}, nil)

	i := handlers.Invitation{DB: invDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(i.InvitationsByUserIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "invitee@example.com")
}

func TestInvitation_InvitationAuditHandler(t *testing.T) {
	invitation := sentInvitation()

	req, err := http.NewRequest("GET", "/api/v1/invitation/"+invitation.ID.Hex()+"/audit", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"invitation_id": invitation.ID.Hex()})

	auditDB := &mocksdb.AuditLogDatabase{}
	auditDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.AuditLogEntry{
			{ID: primitive.NewObjectID(), InvitationID: invitation.ID, Action: models.AuditActionCreated, Timestamp: time.Now()},
			{ID: primitive.NewObjectID(), InvitationID: invitation.ID, Action: models.AuditActionSent, Timestamp: time.Now()},
		}, nil)

	i := handlers.Invitation{ADB: auditDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(i.InvitationAuditHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), models.AuditActionCreated)
	assert.Contains(t, rr.Body.String(), models.AuditActionSent)
}

func TestInvitation_InvitationValidateHandlerNotFound(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/invitations/validate/UNKNOWN1", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"token_or_code": "UNKNOWN1"})

	invDB := &mocksdb.InvitationDatabase{}
	invDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	i := handlers.Invitation{Service: newHandlerService(invDB, &mocksdb.AuditLogDatabase{})}
	rr := httptest.NewRecorder()
	http.HandlerFunc(i.InvitationValidateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var body models.ErrorResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "not_found", body.Code)
}

func TestInvitation_InvitationValidateHandler(t *testing.T) {
	invitation := sentInvitation()

	req, err := http.NewRequest("GET", "/api/v1/invitations/validate/"+invitation.InviteToken, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"token_or_code": invitation.InviteToken})

	invDB := &mocksdb.InvitationDatabase{}
	invDB.On("FindOne", mock.Anything, mock.Anything).Return(invitation, nil)

	i := handlers.Invitation{Service: newHandlerService(invDB, &mocksdb.AuditLogDatabase{})}
	rr := httptest.NewRecorder()
	http.HandlerFunc(i.InvitationValidateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), invitation.Email)
	assert.Contains(t, rr.Body.String(), invitation.UserType)
	assert.NotContains(t, rr.Body.String(), invitation.InviteToken)
}

func TestInvitation_InvitationValidateHandlerCancelled(t *testing.T) {
	invitation := sentInvitation()
	invitation.Status = models.InvitationStatusCancelled

	req, err := http.NewRequest("GET", "/api/v1/invitations/validate/"+invitation.InviteToken, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"token_or_code": invitation.InviteToken})

	invDB := &mocksdb.InvitationDatabase{}
	invDB.On("FindOne", mock.Anything, mock.Anything).Return(invitation, nil)

	i := handlers.Invitation{Service: newHandlerService(invDB, &mocksdb.AuditLogDatabase{})}
	rr := httptest.NewRecorder()
	http.HandlerFunc(i.InvitationValidateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)

	var body models.ErrorResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "cancelled", body.Code)
}

func TestInvitation_InvitationAcceptHandlerBadBody(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/invitations/accept", bytes.NewBufferString("{not json"))
	if err != nil {
		t.Fatal(err)
	}

	i := handlers.Invitation{}
	rr := httptest.NewRecorder()
	http.HandlerFunc(i.InvitationAcceptHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestInvitation_InvitationAcceptHandlerForbidden(t *testing.T) {
	invitation := sentInvitation()

	payload, _ := json.Marshal(map[string]string{
		"tokenOrCode": invitation.InviteToken,
		"email":       "intruder@example.com",
		"password":    "s3cret-pass",
	})
	req, err := http.NewRequest("POST", "/api/v1/invitations/accept", bytes.NewBuffer(payload))
	if err != nil {
		t.Fatal(err)
	}

	invDB := &mocksdb.InvitationDatabase{}
	invDB.On("FindOne", mock.Anything, mock.Anything).Return(invitation, nil)

	i := handlers.Invitation{Service: newHandlerService(invDB, &mocksdb.AuditLogDatabase{})}
	rr := httptest.NewRecorder()
	http.HandlerFunc(i.InvitationAcceptHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)

	var body models.ErrorResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "forbidden", body.Code)
}

func TestInvitation_InvitationResendHandlerInvalidState(t *testing.T) {
	invitation := sentInvitation()
	invitation.Status = models.InvitationStatusRevoked

	req, err := http.NewRequest("POST", "/api/v1/invitation/"+invitation.ID.Hex()+"/resend", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"invitation_id": invitation.ID.Hex()})

	invDB := &mocksdb.InvitationDatabase{}
	invDB.On("FindOne", mock.Anything, mock.Anything).Return(invitation, nil)

	i := handlers.Invitation{Service: newHandlerService(invDB, &mocksdb.AuditLogDatabase{})}
	rr := httptest.NewRecorder()
	http.HandlerFunc(i.InvitationResendHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)

	var body models.ErrorResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "invalid_state", body.Code)
}
