package invitations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/keyhaven/keyhaven-api/databases"
	"github.com/keyhaven/keyhaven-api/models"
)

// DefaultTTL is how long an invitation stays redeemable unless configured
// otherwise. expiresAt is fixed at creation and never moves, not even on
// resend.
const DefaultTTL = 7 * 24 * time.Hour

const codeAttempts = 5

var validate = validator.New()

// Actor identifies who performed a lifecycle action, for the audit trail.
type Actor struct {
	UserID    string
	IP        string
	UserAgent string
	System    bool
}

// CreateRequest carries the fields to issue a new invitation.
type CreateRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone,omitempty"`
	FirstName        string `json:"firstName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
	UserType         string `json:"userType" validate:"required,oneof=client realtor mortgage_professional"`
	ProfessionalType string `json:"professionalType,omitempty" validate:"required_unless=UserType client"`
	CompanyName      string `json:"companyName,omitempty"`
	LicenseNumber    string `json:"licenseNumber,omitempty"`
	RequiresApproval bool   `json:"requiresApproval,omitempty"`
	SendVia          string `json:"sendVia,omitempty" validate:"omitempty,oneof=email sms both"`
	InvitedByUserID  string `json:"invitedByUserId" validate:"required"`
	CustomMessage    string `json:"customMessage,omitempty"`
	WithCode         bool   `json:"withCode,omitempty"`
}

// AcceptRequest carries one acceptance attempt. AuthenticatedUserID/Email are
// filled from the caller's verified session when one exists; they are never
// taken from the request body.
type AcceptRequest struct {
	TokenOrCode         string
	Email               string
	Password            string
	FirstName           string
	LastName            string
	AuthenticatedUserID string
	AuthenticatedEmail  string
}

// AcceptResult tells the caller where to route the accepted user.
type AcceptResult struct {
	UserID     string `json:"userId"`
	UserType   string `json:"userType"`
	NewAccount bool   `json:"newAccount"`
}

// Acceptance paths recorded in the audit trail.
const (
	acceptPathExistingUser = "existing_user"
	acceptPathNewAccount   = "new_account"
)

// Service orchestrates the invitation lifecycle. It is the only place that
// applies status transitions; everything else reads.
type Service struct {
	Invitations databases.InvitationDatabase
	Audit       databases.AuditLogDatabase
	Provisioner Provisioner
	Gateway     Gateway
	TTL         time.Duration
	Clock       func() time.Time
}

// NewService wires a service over its collaborators. A non-positive ttl falls
// back to DefaultTTL.
func NewService(invitations databases.InvitationDatabase, audit databases.AuditLogDatabase,
	provisioner Provisioner, gateway Gateway, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		Invitations: invitations,
		Audit:       audit,
		Provisioner: provisioner,
		Gateway:     gateway,
		TTL:         ttl,
		Clock:       time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// NormalizeEmail lowercases and trims an email for comparisons and storage.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

var activeStatuses = []string{models.InvitationStatusPending, models.InvitationStatusSent}

// Create validates the request, generates the token (and code when asked for)
// and stores the invitation as pending. A still-active invitation for the same
// email is rejected with ErrConflict; the caller must cancel or resend the
// existing one.
func (s *Service) Create(ctx context.Context, req CreateRequest, actor Actor) (*models.Invitation, error) {
	req.Email = NormalizeEmail(req.Email)
	if req.SendVia == "" {
		req.SendVia = models.SendViaEmail
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, &ValidationError{Field: verrs[0].Field(), Reason: verrs[0].Tag()}
		}
		return nil, &ValidationError{Field: "request", Reason: err.Error()}
	}
	if (req.SendVia == models.SendViaSMS || req.SendVia == models.SendViaBoth) && req.Phone == "" {
		return nil, &ValidationError{Field: "phone", Reason: "required for sms delivery"}
	}

	now := s.now()
	activeFilter := bson.M{
		"email":     req.Email,
		"status":    bson.M{"$in": activeStatuses},
		"expiresAt": bson.M{"$gt": now},
	}
	count, err := s.Invitations.CountDocuments(ctx, activeFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to check for active invitations: %w", err)
	}
	if count > 0 {
		return nil, ErrConflict
	}

	token, err := NewInviteToken()
	if err != nil {
		return nil, err
	}
	code := ""
	if req.WithCode {
		code, err = s.uniqueInviteCode(ctx, now)
		if err != nil {
			return nil, err
		}
	}

	invitation := models.Invitation{
		ID:               primitive.NewObjectID(),
		InviteToken:      token,
		InviteCode:       code,
		Email:            req.Email,
		Phone:            req.Phone,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		UserType:         req.UserType,
		ProfessionalType: req.ProfessionalType,
		CompanyName:      req.CompanyName,
		LicenseNumber:    req.LicenseNumber,
		RequiresApproval: req.RequiresApproval,
		SendVia:          req.SendVia,
		InvitedByUserID:  req.InvitedByUserID,
		CustomMessage:    req.CustomMessage,
		Status:           models.InvitationStatusPending,
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.TTL),
	}
	if _, err := s.Invitations.InsertOne(ctx, invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.audit(ctx, invitation.ID, models.AuditActionCreated, actor, bson.M{
		"email":    invitation.Email,
		"userType": invitation.UserType,
		"sendVia":  invitation.SendVia,
	})
	return &invitation, nil
}

// uniqueInviteCode retries until the generated code collides with no active
// invitation. Expired and terminal rows don't count; their codes are free to
// reuse.
func (s *Service) uniqueInviteCode(ctx context.Context, now time.Time) (string, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := NewInviteCode()
		if err != nil {
			return "", err
		}
		count, err := s.Invitations.CountDocuments(ctx, bson.M{
			"inviteCode": code,
			"status":     bson.M{"$in": activeStatuses},
			"expiresAt":  bson.M{"$gt": now},
		})
		if err != nil {
			return "", fmt.Errorf("failed to check invite code for collisions: %w", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique invite code after %d attempts", codeAttempts)
}

// Dispatch hands the invitation to the gateway and moves pending to sent. A
// gateway failure leaves the invitation pending; resend retries it.
func (s *Service) Dispatch(ctx context.Context, id primitive.ObjectID, actor Actor) (*models.Invitation, error) {
	invitation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	invitation = s.effective(ctx, invitation)
	if invitation.Status != models.InvitationStatusPending {
		return invitation, fmt.Errorf("%w: invitation is %s", ErrInvalidState, invitation.Status)
	}

	if err := s.Gateway.Send(ctx, invitation, invitation.SendVia); err != nil {
		zap.S().Warnw("invitation dispatch failed",
			"invitationId", invitation.ID.Hex(),
			"channel", invitation.SendVia,
			"error", err,
		)
		return invitation, wrapDispatchErr(invitation.SendVia, err)
	}

	updated, err := s.Invitations.TransitionStatus(ctx, invitation.ID,
		[]string{models.InvitationStatusPending},
		bson.M{"$set": bson.M{"status": models.InvitationStatusSent}})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return invitation, fmt.Errorf("%w: invitation was transitioned concurrently", ErrInvalidState)
		}
		return invitation, fmt.Errorf("failed to mark invitation sent: %w", err)
	}

	s.audit(ctx, invitation.ID, models.AuditActionSent, actor, bson.M{"channel": invitation.SendVia})
	return updated, nil
}

// Resend re-invokes the gateway for a pending or sent invitation. expiresAt is
// untouched; a resend buys no extra time.
func (s *Service) Resend(ctx context.Context, id primitive.ObjectID, sendVia string, actor Actor) (*models.Invitation, error) {
	invitation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	invitation = s.effective(ctx, invitation)
	if invitation.Status != models.InvitationStatusPending && invitation.Status != models.InvitationStatusSent {
		return invitation, fmt.Errorf("%w: invitation is %s", ErrInvalidState, invitation.Status)
	}

	channel := sendVia
	if channel == "" {
		channel = invitation.SendVia
	}
	switch channel {
	case models.SendViaEmail, models.SendViaSMS, models.SendViaBoth:
	default:
		return invitation, &ValidationError{Field: "sendVia", Reason: "must be email, sms or both"}
	}

	if err := s.Gateway.Send(ctx, invitation, channel); err != nil {
		zap.S().Warnw("invitation resend failed",
			"invitationId", invitation.ID.Hex(),
			"channel", channel,
			"error", err,
		)
		return invitation, wrapDispatchErr(channel, err)
	}

	if invitation.Status == models.InvitationStatusPending {
		updated, err := s.Invitations.TransitionStatus(ctx, invitation.ID,
			[]string{models.InvitationStatusPending},
			bson.M{"$set": bson.M{"status": models.InvitationStatusSent}})
		if err == nil {
			invitation = updated
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return invitation, fmt.Errorf("failed to mark invitation sent: %w", err)
		}
	}

	s.audit(ctx, invitation.ID, models.AuditActionResent, actor, bson.M{"channel": channel})
	return invitation, nil
}

// Cancel is the inviter-initiated withdrawal.
func (s *Service) Cancel(ctx context.Context, id primitive.ObjectID, actor Actor) (*models.Invitation, error) {
	return s.withdraw(ctx, id, models.InvitationStatusCancelled, models.AuditActionCancelled, actor)
}

// Revoke is the administrative withdrawal. Same transition as Cancel, distinct
// audit action so the trail shows who pulled the invitation.
func (s *Service) Revoke(ctx context.Context, id primitive.ObjectID, actor Actor) (*models.Invitation, error) {
	return s.withdraw(ctx, id, models.InvitationStatusRevoked, models.AuditActionRevoked, actor)
}

func (s *Service) withdraw(ctx context.Context, id primitive.ObjectID, toStatus, action string, actor Actor) (*models.Invitation, error) {
	invitation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	invitation = s.effective(ctx, invitation)
	if invitation.Status != models.InvitationStatusPending && invitation.Status != models.InvitationStatusSent {
		return invitation, fmt.Errorf("%w: invitation is %s", ErrInvalidState, invitation.Status)
	}

	updated, err := s.Invitations.TransitionStatus(ctx, id, activeStatuses,
		bson.M{"$set": bson.M{"status": toStatus}})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return invitation, fmt.Errorf("%w: invitation was transitioned concurrently", ErrInvalidState)
		}
		return invitation, fmt.Errorf("failed to withdraw invitation: %w", err)
	}

	s.audit(ctx, id, action, actor, nil)
	return updated, nil
}

// Validate resolves a token or code read-only and reports why the invitation
// cannot be redeemed, if it can't. The caller UI branches on the typed error,
// e.g. offering sign-in on ErrAlreadyAccepted.
func (s *Service) Validate(ctx context.Context, tokenOrCode string) (*models.Invitation, error) {
	if tokenOrCode == "" {
		return nil, &ValidationError{Field: "token", Reason: "required"}
	}

	// A token and a code are two lookup keys into the same record; every
	// acceptance still goes through the same conditional status update.
	filter := bson.M{"$or": []bson.M{
		{"inviteToken": tokenOrCode},
		{"inviteCode": strings.ToUpper(tokenOrCode)},
	}}
	invitation, err := s.Invitations.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up invitation: %w", err)
	}

	invitation = s.effective(ctx, invitation)
	switch invitation.Status {
	case models.InvitationStatusPending, models.InvitationStatusSent:
		return invitation, nil
	case models.InvitationStatusAccepted:
		return invitation, ErrAlreadyAccepted
	case models.InvitationStatusCancelled:
		return invitation, ErrCancelled
	case models.InvitationStatusRevoked:
		return invitation, ErrRevoked
	case models.InvitationStatusExpired:
		return invitation, ErrExpired
	}
	return invitation, fmt.Errorf("%w: invitation is %s", ErrInvalidState, invitation.Status)
}

// Accept redeems the invitation. The conditional update to accepted picks a
// single winner under concurrent attempts; only the winner provisions. On a
// provisioning failure the transition is reverted (and a just-created account
// deleted) so a retry can complete the missing rows.
func (s *Service) Accept(ctx context.Context, req AcceptRequest, actor Actor) (*AcceptResult, error) {
	invitation, err := s.Validate(ctx, req.TokenOrCode)
	if err != nil {
		return nil, err
	}

	email := NormalizeEmail(req.Email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Reason: "required"}
	}
	if email != invitation.Email {
		return nil, ErrForbidden
	}

	var userID, path string
	newAccount := false
	switch {
	case req.AuthenticatedUserID != "":
		if NormalizeEmail(req.AuthenticatedEmail) != invitation.Email {
			return nil, ErrForbidden
		}
		userID = req.AuthenticatedUserID
		path = acceptPathExistingUser
	case req.Password == "":
		account, err := s.Provisioner.FindAccountByEmail(ctx, invitation.Email)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}
		userID = account.ID.Hex()
		path = acceptPathExistingUser
	default:
		account, err := s.Provisioner.FindAccountByEmail(ctx, invitation.Email)
		if err != nil {
			return nil, err
		}
		if account != nil {
			return nil, ErrAccountExists
		}
		path = acceptPathNewAccount
		newAccount = true
	}

	prevStatus := invitation.Status
	now := s.now()
	if _, err := s.Invitations.TransitionStatus(ctx, invitation.ID, activeStatuses,
		bson.M{"$set": bson.M{"status": models.InvitationStatusAccepted, "acceptedAt": now}}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAlreadyAccepted
		}
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	if newAccount {
		firstName, lastName := req.FirstName, req.LastName
		if firstName == "" {
			firstName = invitation.FirstName
		}
		if lastName == "" {
			lastName = invitation.LastName
		}
		userID, err = s.Provisioner.CreateAccount(ctx, invitation.Email, req.Password, firstName, lastName)
		if err != nil {
			s.revertAccept(ctx, invitation.ID, prevStatus)
			return nil, &ProvisioningError{Step: "account", Err: err}
		}
	}

	if perr := s.provisionProfiles(ctx, userID, invitation); perr != nil {
		if newAccount {
			if derr := s.Provisioner.DeleteAccount(ctx, userID); derr != nil {
				zap.S().Errorw("failed to roll back orphaned account",
					"invitationId", invitation.ID.Hex(),
					"userId", userID,
					"error", derr,
				)
			} else {
				perr.Compensated = true
				zap.S().Infow("rolled back orphaned account after provisioning failure",
					"invitationId", invitation.ID.Hex(),
					"userId", userID,
				)
			}
		}
		s.revertAccept(ctx, invitation.ID, prevStatus)
		return nil, perr
	}

	s.audit(ctx, invitation.ID, models.AuditActionAccepted, actor, bson.M{
		"path":   path,
		"userId": userID,
	})
	return &AcceptResult{UserID: userID, UserType: invitation.UserType, NewAccount: newAccount}, nil
}

func (s *Service) provisionProfiles(ctx context.Context, userID string, invitation *models.Invitation) *ProvisioningError {
	if err := s.Provisioner.CreateOrGetUserProfile(ctx, userID, invitation); err != nil {
		return &ProvisioningError{Step: "userProfile", Err: err}
	}
	if invitation.UserType == models.UserTypeClient {
		if err := s.Provisioner.CreateOrGetClientProfile(ctx, userID, invitation); err != nil {
			return &ProvisioningError{Step: "clientProfile", Err: err}
		}
		return nil
	}
	if err := s.Provisioner.CreateOrGetProfessionalProfile(ctx, userID, invitation); err != nil {
		return &ProvisioningError{Step: "professionalProfile", Err: err}
	}
	return nil
}

// revertAccept undoes a won transition after provisioning failed, so a retried
// accept can run the idempotent provisioning again and fill in the missing
// rows.
func (s *Service) revertAccept(ctx context.Context, id primitive.ObjectID, prevStatus string) {
	update := bson.M{
		"$set":   bson.M{"status": prevStatus},
		"$unset": bson.M{"acceptedAt": ""},
	}
	if _, err := s.Invitations.TransitionStatus(ctx, id, []string{models.InvitationStatusAccepted}, update); err != nil {
		zap.S().Errorw("failed to revert invitation after provisioning failure",
			"invitationId", id.Hex(),
			"error", err,
		)
	}
}

// ExpireStale flips pending/sent invitations past expiresAt to expired and
// audits each one. Read paths already treat them as expired; this keeps the
// stored status and reports honest. Safe to run from multiple instances, each
// row transition is conditional.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	now := s.now()
	stale, err := s.Invitations.Find(ctx, bson.M{
		"status":    bson.M{"$in": activeStatuses},
		"expiresAt": bson.M{"$lt": now},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list stale invitations: %w", err)
	}

	expired := 0
	for i := range stale {
		invitation := stale[i]
		if _, err := s.Invitations.TransitionStatus(ctx, invitation.ID, activeStatuses,
			bson.M{"$set": bson.M{"status": models.InvitationStatusExpired}}); err != nil {
			if !errors.Is(err, mongo.ErrNoDocuments) {
				zap.S().Errorw("failed to expire invitation",
					"invitationId", invitation.ID.Hex(),
					"error", err,
				)
			}
			continue
		}
		s.audit(ctx, invitation.ID, models.AuditActionExpired, Actor{System: true}, bson.M{"expiresAt": invitation.ExpiresAt})
		expired++
	}
	return expired, nil
}

func (s *Service) load(ctx context.Context, id primitive.ObjectID) (*models.Invitation, error) {
	invitation, err := s.Invitations.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load invitation: %w", err)
	}
	return invitation, nil
}

// effective applies lazy expiration: a pending/sent row past expiresAt is
// flipped to expired (with an audit entry) the first time it's read.
func (s *Service) effective(ctx context.Context, invitation *models.Invitation) *models.Invitation {
	if invitation.IsTerminal() || !invitation.IsExpired(s.now()) {
		return invitation
	}
	return s.markExpired(ctx, invitation)
}

func (s *Service) markExpired(ctx context.Context, invitation *models.Invitation) *models.Invitation {
	updated, err := s.Invitations.TransitionStatus(ctx, invitation.ID, activeStatuses,
		bson.M{"$set": bson.M{"status": models.InvitationStatusExpired}})
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			zap.S().Errorw("failed to mark invitation expired",
				"invitationId", invitation.ID.Hex(),
				"error", err,
			)
		}
		expired := *invitation
		expired.Status = models.InvitationStatusExpired
		return &expired
	}

	s.audit(ctx, invitation.ID, models.AuditActionExpired, Actor{System: true}, bson.M{"expiresAt": invitation.ExpiresAt})
	return updated
}

// audit appends a lifecycle entry. Failures are logged, never propagated; an
// audit outage must not block the lifecycle itself.
func (s *Service) audit(ctx context.Context, invitationID primitive.ObjectID, action string, actor Actor, details bson.M) {
	entry := models.AuditLogEntry{
		ID:           primitive.NewObjectID(),
		InvitationID: invitationID,
		Action:       action,
		ActorDetails: models.ActorDetails{
			UserID:    actor.UserID,
			IP:        actor.IP,
			UserAgent: actor.UserAgent,
			System:    actor.System,
		},
		Details:   details,
		Timestamp: s.now(),
	}
	if _, err := s.Audit.InsertOne(ctx, entry); err != nil {
		zap.S().Errorw("failed to append audit entry",
			"invitationId", invitationID.Hex(),
			"action", action,
			"error", err,
		)
	}
}

func wrapDispatchErr(channel string, err error) error {
	var derr *DispatchError
	if errors.As(err, &derr) {
		return err
	}
	return &DispatchError{Channel: channel, Err: err}
}
