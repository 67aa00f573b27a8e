package databases

// go generate: mockery --name ClientProfileDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/keyhaven/keyhaven-api/models"
)

const clientProfileCollectionName = "clientProfiles"

// ClientProfileDatabase contains the methods to use with the client profile database
type ClientProfileDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ClientProfile, error)
	UpsertOne(ctx context.Context, filter interface{}, profile models.ClientProfile) error
}

type clientProfileDatabase struct {
	db DatabaseHelper
}

// NewClientProfileDatabase initializes a new instance of client profile database with the provided db connection
func NewClientProfileDatabase(db DatabaseHelper) ClientProfileDatabase {
	return &clientProfileDatabase{
		db: db,
	}
}

func (c *clientProfileDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ClientProfile, error) {
	profile := &models.ClientProfile{}
	err := c.db.Collection(clientProfileCollectionName).FindOne(ctx, filter, opts...).Decode(&profile)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (c *clientProfileDatabase) UpsertOne(ctx context.Context, filter interface{}, profile models.ClientProfile) error {
	update := map[string]interface{}{"$setOnInsert": profile}
	return c.db.Collection(clientProfileCollectionName).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
}
