package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientProfile holds the structure for the clientProfiles collection in mongo.
// ProfessionalUserID is the inviting professional, who owns the client
// relationship in the CRM.
type ClientProfile struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID             string             `bson:"userId" json:"userId"`
	ProfessionalUserID string             `bson:"professionalUserId,omitempty" json:"professionalUserId,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
}
