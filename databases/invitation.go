package databases

// go generate: mockery --name InvitationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/keyhaven/keyhaven-api/models"
)

const invitationCollectionName = "invitations"

// InvitationDatabase contains the methods to use with the invitation database.
// TransitionStatus is the only way a status is ever written: the guard set makes
// the transition a compare-and-set so concurrent writers cannot both win, no
// matter how many API instances run.
type InvitationDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Invitation, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Invitation, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, invitation models.Invitation, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	TransitionStatus(ctx context.Context, id primitive.ObjectID, fromStatuses []string, update interface{}) (*models.Invitation, error)
}

type invitationDatabase struct {
	db DatabaseHelper
}

// NewInvitationDatabase initializes a new instance of invitation database with the provided db connection
func NewInvitationDatabase(db DatabaseHelper) InvitationDatabase {
	return &invitationDatabase{
		db: db,
	}
}

func (c *invitationDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Invitation, error) {
	invitation := &models.Invitation{}
	err := c.db.Collection(invitationCollectionName).FindOne(ctx, filter, opts...).Decode(&invitation)
	if err != nil {
		return nil, err
	}
	return invitation, nil
}

func (c *invitationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Invitation, error) {
	var invitations []models.Invitation
	cur := c.db.Collection(invitationCollectionName).Find(ctx, filter, opts...)
	err := cur.Decode(&invitations)
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

func (c *invitationDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(invitationCollectionName).CountDocuments(ctx, filter, opts...)
}

func (c *invitationDatabase) InsertOne(ctx context.Context, invitation models.Invitation, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(invitationCollectionName).InsertOne(ctx, invitation, opts...)
}

// TransitionStatus applies update to the invitation only while its status is one
// of fromStatuses, and returns the post-update document. A concurrent transition
// that got there first surfaces as mongo.ErrNoDocuments.
func (c *invitationDatabase) TransitionStatus(ctx context.Context, id primitive.ObjectID, fromStatuses []string, update interface{}) (*models.Invitation, error) {
	filter := bson.M{"_id": id, "status": bson.M{"$in": fromStatuses}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	invitation := &models.Invitation{}
	err := c.db.Collection(invitationCollectionName).FindOneAndUpdate(ctx, filter, update, opts).Decode(&invitation)
	if err != nil {
		return nil, err
	}
	return invitation, nil
}
