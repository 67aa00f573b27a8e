package databases

// go generate: mockery --name UserProfileDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/keyhaven/keyhaven-api/models"
)

const userProfileCollectionName = "userProfiles"

// UserProfileDatabase contains the methods to use with the user profile
// database. UpsertOne is insert-if-absent so re-running a provisioning step
// never duplicates a row.
type UserProfileDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.UserProfile, error)
	UpsertOne(ctx context.Context, filter interface{}, profile models.UserProfile) error
}

type userProfileDatabase struct {
	db DatabaseHelper
}

// NewUserProfileDatabase initializes a new instance of user profile database with the provided db connection
func NewUserProfileDatabase(db DatabaseHelper) UserProfileDatabase {
	return &userProfileDatabase{
		db: db,
	}
}

func (c *userProfileDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.UserProfile, error) {
	profile := &models.UserProfile{}
	err := c.db.Collection(userProfileCollectionName).FindOne(ctx, filter, opts...).Decode(&profile)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (c *userProfileDatabase) UpsertOne(ctx context.Context, filter interface{}, profile models.UserProfile) error {
	update := map[string]interface{}{"$setOnInsert": profile}
	return c.db.Collection(userProfileCollectionName).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
}
