package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account holds the structure for the accounts collection in mongo. Accounts are
// the login identity; profile rows carry the CRM-facing data.
type Account struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	FirstName string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
