package invitations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/keyhaven/keyhaven-api/databases"
	"github.com/keyhaven/keyhaven-api/models"
)

// go generate: mockery --name Provisioner

// Provisioner creates or reuses the account and profile rows an accepted
// invitation needs. Every CreateOrGet method is insert-if-absent, so the
// service can re-run acceptance after a partial failure and only the missing
// rows get created.
type Provisioner interface {
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	CreateAccount(ctx context.Context, email, password, firstName, lastName string) (string, error)
	DeleteAccount(ctx context.Context, userID string) error
	CreateOrGetUserProfile(ctx context.Context, userID string, invitation *models.Invitation) error
	CreateOrGetClientProfile(ctx context.Context, userID string, invitation *models.Invitation) error
	CreateOrGetProfessionalProfile(ctx context.Context, userID string, invitation *models.Invitation) error
}

// MongoProvisioner implements Provisioner over the account and profile
// collections.
type MongoProvisioner struct {
	Accounts             databases.AccountDatabase
	UserProfiles         databases.UserProfileDatabase
	ClientProfiles       databases.ClientProfileDatabase
	ProfessionalProfiles databases.ProfessionalProfileDatabase
}

// NewMongoProvisioner initializes a provisioner over the provided databases
func NewMongoProvisioner(accounts databases.AccountDatabase, userProfiles databases.UserProfileDatabase,
	clientProfiles databases.ClientProfileDatabase, professionalProfiles databases.ProfessionalProfileDatabase) *MongoProvisioner {
	return &MongoProvisioner{
		Accounts:             accounts,
		UserProfiles:         userProfiles,
		ClientProfiles:       clientProfiles,
		ProfessionalProfiles: professionalProfiles,
	}
}

// FindAccountByEmail returns (nil, nil) when no account exists, so callers can
// tell absence apart from a database failure.
func (p *MongoProvisioner) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	account, err := p.Accounts.FindOne(ctx, bson.M{"email": NormalizeEmail(email)})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up account by email: %w", err)
	}
	return account, nil
}

// CreateAccount provisions a login identity and returns its id.
func (p *MongoProvisioner) CreateAccount(ctx context.Context, email, password, firstName, lastName string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	account := models.Account{
		ID:        primitive.NewObjectID(),
		Email:     NormalizeEmail(email),
		Password:  string(hashed),
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: time.Now(),
	}
	if _, err := p.Accounts.InsertOne(ctx, account); err != nil {
		return "", fmt.Errorf("failed to create account: %w", err)
	}
	return account.ID.Hex(), nil
}

// DeleteAccount is the compensating action for a provisioning failure after a
// new account was created.
func (p *MongoProvisioner) DeleteAccount(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid account id %q: %w", userID, err)
	}
	return p.Accounts.DeleteOne(ctx, bson.M{"_id": oid})
}

// CreateOrGetUserProfile upserts the base profile row keyed on the account id.
func (p *MongoProvisioner) CreateOrGetUserProfile(ctx context.Context, userID string, invitation *models.Invitation) error {
	profile := models.UserProfile{
		UserID:    userID,
		Email:     invitation.Email,
		FirstName: invitation.FirstName,
		LastName:  invitation.LastName,
		Phone:     invitation.Phone,
		UserType:  invitation.UserType,
		CreatedAt: time.Now(),
	}
	return p.UserProfiles.UpsertOne(ctx, bson.M{"userId": userID}, profile)
}

// CreateOrGetClientProfile upserts the client row; the inviting professional
// becomes the owner of the client relationship.
func (p *MongoProvisioner) CreateOrGetClientProfile(ctx context.Context, userID string, invitation *models.Invitation) error {
	profile := models.ClientProfile{
		UserID:             userID,
		ProfessionalUserID: invitation.InvitedByUserID,
		CreatedAt:          time.Now(),
	}
	return p.ClientProfiles.UpsertOne(ctx, bson.M{"userId": userID}, profile)
}

// CreateOrGetProfessionalProfile upserts the professional row. Invitations
// flagged requiresApproval land the professional in pendingApproval.
func (p *MongoProvisioner) CreateOrGetProfessionalProfile(ctx context.Context, userID string, invitation *models.Invitation) error {
	status := models.ProfessionalStatusActive
	if invitation.RequiresApproval {
		status = models.ProfessionalStatusPendingApproval
	}
	profile := models.ProfessionalProfile{
		UserID:           userID,
		ProfessionalType: invitation.ProfessionalType,
		CompanyName:      invitation.CompanyName,
		LicenseNumber:    invitation.LicenseNumber,
		Status:           status,
		CreatedAt:        time.Now(),
	}
	return p.ProfessionalProfiles.UpsertOne(ctx, bson.M{"userId": userID}, profile)
}
