package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Professional profile statuses. Invitations flagged requiresApproval land the
// professional in pendingApproval until an admin activates them.
const (
	ProfessionalStatusActive          = "active"
	ProfessionalStatusPendingApproval = "pendingApproval"
)

// ProfessionalProfile holds the structure for the professionalProfiles
// collection in mongo, used for realtor and mortgage professional accounts.
type ProfessionalProfile struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID           string             `bson:"userId" json:"userId"`
	ProfessionalType string             `bson:"professionalType,omitempty" json:"professionalType,omitempty"`
	CompanyName      string             `bson:"companyName,omitempty" json:"companyName,omitempty"`
	LicenseNumber    string             `bson:"licenseNumber,omitempty" json:"licenseNumber,omitempty"`
	Status           string             `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
