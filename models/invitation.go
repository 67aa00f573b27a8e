package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invitation statuses. Status only moves through
// databases.InvitationDatabase.TransitionStatus, which guards every write with the
// set of statuses the transition is allowed to start from.
const (
	InvitationStatusPending   = "pending"
	InvitationStatusSent      = "sent"
	InvitationStatusAccepted  = "accepted"
	InvitationStatusExpired   = "expired"
	InvitationStatusCancelled = "cancelled"
	InvitationStatusRevoked   = "revoked"
)

// User types an invitation can onboard.
const (
	UserTypeClient               = "client"
	UserTypeRealtor              = "realtor"
	UserTypeMortgageProfessional = "mortgage_professional"
)

// Delivery channels for invitation dispatch.
const (
	SendViaEmail = "email"
	SendViaSMS   = "sms"
	SendViaBoth  = "both"
)

// Invitation holds the structure for the invitations collection in mongo.
// The invite token never leaves the API in list/detail responses; create and
// validate responses expose it explicitly where the flow requires it.
type Invitation struct {
	ID               primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	InviteToken      string             `json:"-" bson:"inviteToken"`
	InviteCode       string             `json:"inviteCode,omitempty" bson:"inviteCode,omitempty"`
	Email            string             `json:"email" bson:"email"`
	Phone            string             `json:"phone,omitempty" bson:"phone,omitempty"`
	FirstName        string             `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName         string             `json:"lastName,omitempty" bson:"lastName,omitempty"`
	UserType         string             `json:"userType" bson:"userType"`
	ProfessionalType string             `json:"professionalType,omitempty" bson:"professionalType,omitempty"`
	CompanyName      string             `json:"companyName,omitempty" bson:"companyName,omitempty"`
	LicenseNumber    string             `json:"licenseNumber,omitempty" bson:"licenseNumber,omitempty"`
	RequiresApproval bool               `json:"requiresApproval" bson:"requiresApproval"`
	SendVia          string             `json:"sendVia" bson:"sendVia"`
	InvitedByUserID  string             `json:"invitedByUserId" bson:"invitedByUserId"`
	CustomMessage    string             `json:"customMessage,omitempty" bson:"customMessage,omitempty"`
	Status           string             `json:"status" bson:"status"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	ExpiresAt        time.Time          `json:"expiresAt" bson:"expiresAt"`
	AcceptedAt       *time.Time         `json:"acceptedAt,omitempty" bson:"acceptedAt,omitempty"`
}

// IsTerminal reports whether the stored status permits no further transition.
func (i *Invitation) IsTerminal() bool {
	switch i.Status {
	case InvitationStatusAccepted, InvitationStatusCancelled, InvitationStatusRevoked, InvitationStatusExpired:
		return true
	}
	return false
}

// IsExpired reports logical expiration: a row past expiresAt is expired no matter
// what status is stored.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsProfessionalType reports whether the invited user type gets a professional
// profile on acceptance.
func IsProfessionalType(userType string) bool {
	return userType == UserTypeRealtor || userType == UserTypeMortgageProfessional
}
