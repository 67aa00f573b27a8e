package databases

// go generate: mockery --name AuditLogDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/keyhaven/keyhaven-api/models"
)

const auditLogCollectionName = "invitationAuditLog"

// AuditLogDatabase contains the methods to use with the invitation audit log
// database. The collection is append-only, so only insert and read methods
// exist here.
type AuditLogDatabase interface {
	InsertOne(ctx context.Context, entry models.AuditLogEntry, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AuditLogEntry, error)
}

type auditLogDatabase struct {
	db DatabaseHelper
}

// NewAuditLogDatabase initializes a new instance of audit log database with the provided db connection
func NewAuditLogDatabase(db DatabaseHelper) AuditLogDatabase {
	return &auditLogDatabase{
		db: db,
	}
}

func (c *auditLogDatabase) InsertOne(ctx context.Context, entry models.AuditLogEntry, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(auditLogCollectionName).InsertOne(ctx, entry, opts...)
}

func (c *auditLogDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	cur := c.db.Collection(auditLogCollectionName).Find(ctx, filter, opts...)
	err := cur.Decode(&entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
