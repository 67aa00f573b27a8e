package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit actions recorded against an invitation. The expired action is written
// either by the read path, the first time a stale row is looked at, or by the
// background sweeper.
const (
	AuditActionCreated   = "created"
	AuditActionSent      = "sent"
	AuditActionResent    = "resent"
	AuditActionCancelled = "cancelled"
	AuditActionRevoked   = "revoked"
	AuditActionAccepted  = "accepted"
	AuditActionExpired   = "expired"
)

// ActorDetails captures who (or what) performed a lifecycle action.
type ActorDetails struct {
	UserID    string `bson:"userId,omitempty" json:"userId,omitempty"`
	IP        string `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	System    bool   `bson:"system,omitempty" json:"system,omitempty"`
}

// AuditLogEntry holds the structure for the invitationAuditLog collection in
// mongo. Entries are append-only; nothing in this codebase updates or deletes
// them.
type AuditLogEntry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	InvitationID primitive.ObjectID `bson:"invitationId" json:"invitationId"`
	Action       string             `bson:"action" json:"action"`
	ActorDetails ActorDetails       `bson:"actorDetails" json:"actorDetails"`
	Details      bson.M             `bson:"details,omitempty" json:"details,omitempty"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
}
