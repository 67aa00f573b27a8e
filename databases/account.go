package databases

// go generate: mockery --name AccountDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/keyhaven/keyhaven-api/models"
)

const accountCollectionName = "accounts"

// AccountDatabase contains the methods to use with the account database.
// DeleteOne exists for the compensating rollback when profile provisioning
// fails after a new account was created.
type AccountDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Account, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Account, error)
	InsertOne(ctx context.Context, account models.Account, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error
}

type accountDatabase struct {
	db DatabaseHelper
}

// NewAccountDatabase initializes a new instance of account database with the provided db connection
func NewAccountDatabase(db DatabaseHelper) AccountDatabase {
	return &accountDatabase{
		db: db,
	}
}

func (c *accountDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Account, error) {
	account := &models.Account{}
	err := c.db.Collection(accountCollectionName).FindOne(ctx, filter, opts...).Decode(&account)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (c *accountDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Account, error) {
	var accounts []models.Account
	cur := c.db.Collection(accountCollectionName).Find(ctx, filter, opts...)
	err := cur.Decode(&accounts)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *accountDatabase) InsertOne(ctx context.Context, account models.Account, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(accountCollectionName).InsertOne(ctx, account, opts...)
}

func (c *accountDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(accountCollectionName).DeleteOne(ctx, filter, opts...)
}
