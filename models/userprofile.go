package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserProfile holds the structure for the userProfiles collection in mongo,
// one row per account regardless of user type.
type UserProfile struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    string             `bson:"userId" json:"userId"`
	Email     string             `bson:"email" json:"email"`
	FirstName string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	UserType  string             `bson:"userType" json:"userType"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
