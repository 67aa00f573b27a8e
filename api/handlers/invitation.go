package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/keyhaven/keyhaven-api/api"
	"github.com/keyhaven/keyhaven-api/config"
	"github.com/keyhaven/keyhaven-api/databases"
	"github.com/keyhaven/keyhaven-api/invitations"
	"github.com/keyhaven/keyhaven-api/models"
)

// Invitation exported for testing purposes
type Invitation struct {
	Service *invitations.Service
	DB      databases.InvitationDatabase
	ADB     databases.AuditLogDatabase
}

// actorFromRequest builds the audit actor for this request. The user id comes
// from the verified session when one exists, never from the body.
func actorFromRequest(r *http.Request) invitations.Actor {
	actor := invitations.Actor{
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		actor.IP = forwarded
	}
	if user := api.AuthenticatedUser(r); user != nil {
		actor.UserID = user.ID()
	}
	return actor
}

// writeInvitationError maps the lifecycle error taxonomy onto HTTP statuses
// with a stable machine-readable code in the body.
func writeInvitationError(w http.ResponseWriter, err error) {
	var verr *invitations.ValidationError
	var derr *invitations.DispatchError
	var perr *invitations.ProvisioningError

	status := http.StatusInternalServerError
	code := "internal_error"

	switch {
	case errors.As(err, &verr):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, invitations.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, invitations.ErrAccountNotFound):
		status, code = http.StatusNotFound, "account_not_found"
	case errors.Is(err, invitations.ErrExpired):
		status, code = http.StatusGone, "expired"
	case errors.Is(err, invitations.ErrAlreadyAccepted):
		status, code = http.StatusConflict, "already_accepted"
	case errors.Is(err, invitations.ErrCancelled):
		status, code = http.StatusConflict, "cancelled"
	case errors.Is(err, invitations.ErrRevoked):
		status, code = http.StatusConflict, "revoked"
	case errors.Is(err, invitations.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, invitations.ErrAccountExists):
		status, code = http.StatusConflict, "account_exists"
	case errors.Is(err, invitations.ErrInvalidState):
		status, code = http.StatusConflict, "invalid_state"
	case errors.Is(err, invitations.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.As(err, &derr):
		status, code = http.StatusBadGateway, "dispatch_error"
	case errors.As(err, &perr):
		status, code = http.StatusInternalServerError, "provisioning_error"
	}

	if status >= http.StatusInternalServerError {
		zap.S().With(err).Error("invitation request failed")
	}

	w.WriteHeader(status)
	b, _ := json.Marshal(models.ErrorResponse{
		Success: false,
		Error:   err.Error(),
		Code:    code,
	})
	w.Write(b)
}

// InvitationCreateHandler creates an invitation and dispatches it. The invite
// token is returned here and in validate responses only.
func (i Invitation) InvitationCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req invitations.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	actor := actorFromRequest(r)
	invitation, err := i.Service.Create(ctx, req, actor)
	if err != nil {
		writeInvitationError(w, err)
		return
	}

	dispatched := true
	if _, err := i.Service.Dispatch(ctx, invitation.ID, actor); err != nil {
		// The invitation exists and stays pending; the caller can resend.
		dispatched = false
		zap.S().Warnw("created invitation but dispatch failed",
			"invitationId", invitation.ID.Hex(),
			"error", err,
		)
	}

	b, err := json.Marshal(map[string]interface{}{
		"invitation":  invitation,
		"inviteToken": invitation.InviteToken,
		"inviteCode":  invitation.InviteCode,
		"dispatched":  dispatched,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// InvitationsByUserIDHandler returns all invitations issued by a user, newest
// first.
func (i Invitation) InvitationsByUserIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	zap.S().Debugf("user_id: %v", userID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	dbResp, err := i.DB.Find(ctx, bson.M{"invitedByUserId": userID}, opts)
	if err != nil {
		config.ErrorStatus("failed to get invitations by user id", http.StatusNotFound, w, err)
		return
	}
	if dbResp == nil {
		dbResp = []models.Invitation{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// InvitationByIDHandler returns an invitation by ID
func (i Invitation) InvitationByIDHandler(w http.ResponseWriter, r *http.Request) {
	invitationID := mux.Vars(r)["invitation_id"]

	iID, err := primitive.ObjectIDFromHex(invitationID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := i.DB.FindOne(ctx, bson.M{"_id": iID})
	if err != nil {
		config.ErrorStatus("failed to get invitation by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// InvitationAuditHandler returns the audit trail for an invitation, oldest
// entry first.
func (i Invitation) InvitationAuditHandler(w http.ResponseWriter, r *http.Request) {
	invitationID := mux.Vars(r)["invitation_id"]

	iID, err := primitive.ObjectIDFromHex(invitationID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().SetSort(bson.M{"timestamp": 1})
	dbResp, err := i.ADB.Find(ctx, bson.M{"invitationId": iID}, opts)
	if err != nil {
		config.ErrorStatus("failed to get audit log for invitation", http.StatusNotFound, w, err)
		return
	}
	if dbResp == nil {
		dbResp = []models.AuditLogEntry{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// InvitationResendHandler re-dispatches a pending or sent invitation,
// optionally over a different channel.
func (i Invitation) InvitationResendHandler(w http.ResponseWriter, r *http.Request) {
	invitationID := mux.Vars(r)["invitation_id"]

	iID, err := primitive.ObjectIDFromHex(invitationID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var body struct {
		SendVia string `json:"sendVia"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
			return
		}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	invitation, err := i.Service.Resend(ctx, iID, body.SendVia, actorFromRequest(r))
	if err != nil {
		writeInvitationError(w, err)
		return
	}

	b, err := json.Marshal(invitation)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// InvitationCancelHandler withdraws an invitation on behalf of its inviter.
func (i Invitation) InvitationCancelHandler(w http.ResponseWriter, r *http.Request) {
	invitationID := mux.Vars(r)["invitation_id"]

	iID, err := primitive.ObjectIDFromHex(invitationID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	invitation, err := i.Service.Cancel(ctx, iID, actorFromRequest(r))
	if err != nil {
		writeInvitationError(w, err)
		return
	}

	b, err := json.Marshal(invitation)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// invitationSummary is the pruned view handed to unauthenticated validate
// callers. No token, phone or internal ids beyond the inviter reference.
type invitationSummary struct {
	Email            string    `json:"email"`
	FirstName        string    `json:"firstName,omitempty"`
	LastName         string    `json:"lastName,omitempty"`
	UserType         string    `json:"userType"`
	ProfessionalType string    `json:"professionalType,omitempty"`
	CompanyName      string    `json:"companyName,omitempty"`
	InvitedByUserID  string    `json:"invitedByUserId"`
	CustomMessage    string    `json:"customMessage,omitempty"`
	Status           string    `json:"status"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// InvitationValidateHandler resolves a token or code without consuming it, so
// the signup page can prefill the form before the user commits.
func (i Invitation) InvitationValidateHandler(w http.ResponseWriter, r *http.Request) {
	tokenOrCode := mux.Vars(r)["token_or_code"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	invitation, err := i.Service.Validate(ctx, tokenOrCode)
	if err != nil {
		writeInvitationError(w, err)
		return
	}

	b, err := json.Marshal(invitationSummary{
		Email:            invitation.Email,
		FirstName:        invitation.FirstName,
		LastName:         invitation.LastName,
		UserType:         invitation.UserType,
		ProfessionalType: invitation.ProfessionalType,
		CompanyName:      invitation.CompanyName,
		InvitedByUserID:  invitation.InvitedByUserID,
		CustomMessage:    invitation.CustomMessage,
		Status:           invitation.Status,
		ExpiresAt:        invitation.ExpiresAt,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// InvitationAcceptHandler redeems an invitation. Anonymous callers either
// supply a password to open a new account or get routed to sign in; callers
// with a valid session accept in place.
func (i Invitation) InvitationAcceptHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TokenOrCode string `json:"tokenOrCode"`
		Token       string `json:"token"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		FirstName   string `json:"firstName"`
		LastName    string `json:"lastName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.TokenOrCode == "" {
		body.TokenOrCode = body.Token
	}

	req := invitations.AcceptRequest{
		TokenOrCode: body.TokenOrCode,
		Email:       body.Email,
		Password:    body.Password,
		FirstName:   body.FirstName,
		LastName:    body.LastName,
	}
	if user := api.AuthenticatedUser(r); user != nil {
		req.AuthenticatedUserID = user.ID()
		req.AuthenticatedEmail = user.UserName()
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	result, err := i.Service.Accept(ctx, req, actorFromRequest(r))
	if err != nil {
		writeInvitationError(w, err)
		return
	}

	b, err := json.Marshal(result)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
