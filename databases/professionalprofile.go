package databases

// go generate: mockery --name ProfessionalProfileDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/keyhaven/keyhaven-api/models"
)

const professionalProfileCollectionName = "professionalProfiles"

// ProfessionalProfileDatabase contains the methods to use with the professional profile database
type ProfessionalProfileDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ProfessionalProfile, error)
	UpsertOne(ctx context.Context, filter interface{}, profile models.ProfessionalProfile) error
}

type professionalProfileDatabase struct {
	db DatabaseHelper
}

// NewProfessionalProfileDatabase initializes a new instance of professional profile database with the provided db connection
func NewProfessionalProfileDatabase(db DatabaseHelper) ProfessionalProfileDatabase {
	return &professionalProfileDatabase{
		db: db,
	}
}

func (c *professionalProfileDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ProfessionalProfile, error) {
	profile := &models.ProfessionalProfile{}
	err := c.db.Collection(professionalProfileCollectionName).FindOne(ctx, filter, opts...).Decode(&profile)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (c *professionalProfileDatabase) UpsertOne(ctx context.Context, filter interface{}, profile models.ProfessionalProfile) error {
	update := map[string]interface{}{"$setOnInsert": profile}
	return c.db.Collection(professionalProfileCollectionName).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
}
