package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/keyhaven/keyhaven-api/databases"
	"github.com/keyhaven/keyhaven-api/databases/mocks"
	"github.com/keyhaven/keyhaven-api/models"
)

func TestInvitationDatabase_FindOne(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Invitation)
		(*arg).Email = "invitee@example.com"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "invitations").Return(collectionHelper)

	invitationDba := databases.NewInvitationDatabase(dbHelper)

	invitation, err := invitationDba.FindOne(context.Background(), bson.M{"error": true})

	assert.Empty(t, invitation)
	assert.EqualError(t, err, "mocked-error")

	invitation, err = invitationDba.FindOne(context.Background(), bson.M{"error": false})

	assert.Equal(t, "invitee@example.com", invitation.Email)
	assert.NoError(t, err)
}

func TestInvitationDatabase_Find(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var curHelperErr databases.CursorHelper
	var curHelperCorrect databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	curHelperErr = &mocks.CursorHelper{}
	curHelperCorrect = &mocks.CursorHelper{}

	curHelperErr.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	curHelperCorrect.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Invitation)
		*arg = []models.Invitation{{Email: "invitee@example.com"}}
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": true}).
		Return(curHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": false}).
		Return(curHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "invitations").Return(collectionHelper)

	invitationDba := databases.NewInvitationDatabase(dbHelper)

	invitations, err := invitationDba.Find(context.Background(), bson.M{"error": true})

	assert.Empty(t, invitations)
	assert.EqualError(t, err, "mocked-error")

	invitations, err = invitationDba.Find(context.Background(), bson.M{"error": false})

	assert.Len(t, invitations, 1)
	assert.NoError(t, err)
}

func TestInvitationDatabase_TransitionStatus(t *testing.T) {

	id := primitive.NewObjectID()
	update := bson.M{"$set": bson.M{"status": models.InvitationStatusSent}}

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	srHelper := &mocks.SingleResultHelper{}

	srHelper.On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Invitation)
		(*arg).ID = id
		(*arg).Status = models.InvitationStatusSent
	})

	// the filter must carry the status guard or the write is not a compare-and-set
	collectionHelper.On("FindOneAndUpdate", mock.Anything,
		bson.M{"_id": id, "status": bson.M{"$in": []string{models.InvitationStatusPending}}},
		update, mock.Anything).
		Return(srHelper)

	dbHelper.On("Collection", "invitations").Return(collectionHelper)

	invitationDba := databases.NewInvitationDatabase(dbHelper)

	invitation, err := invitationDba.TransitionStatus(context.Background(), id,
		[]string{models.InvitationStatusPending}, update)

	assert.NoError(t, err)
	assert.Equal(t, models.InvitationStatusSent, invitation.Status)
}

func TestInvitationDatabase_TransitionStatusLostRace(t *testing.T) {

	id := primitive.NewObjectID()

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	srHelper := &mocks.SingleResultHelper{}

	srHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)

	collectionHelper.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(srHelper)

	dbHelper.On("Collection", "invitations").Return(collectionHelper)

	invitationDba := databases.NewInvitationDatabase(dbHelper)

	invitation, err := invitationDba.TransitionStatus(context.Background(), id,
		[]string{models.InvitationStatusPending, models.InvitationStatusSent}, bson.M{})

	assert.Nil(t, invitation)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestClientProfileDatabase_UpsertOne(t *testing.T) {

	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	profile := models.ClientProfile{UserID: "user-1", ProfessionalUserID: "agent-1"}

	var update interface{}
	collectionHelper.On("UpdateOne", mock.Anything, bson.M{"userId": "user-1"}, mock.Anything, mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		update = args.Get(2)
	})

	dbHelper.On("Collection", "clientProfiles").Return(collectionHelper)

	clientDba := databases.NewClientProfileDatabase(dbHelper)

	err := clientDba.UpsertOne(context.Background(), bson.M{"userId": "user-1"}, profile)

	assert.NoError(t, err)
	m, ok := update.(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, profile, m["$setOnInsert"])
}
