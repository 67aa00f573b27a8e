package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/keyhaven/keyhaven-api/api"
	"github.com/keyhaven/keyhaven-api/config"
	"github.com/keyhaven/keyhaven-api/databases"
	"github.com/keyhaven/keyhaven-api/invitations"
)

const adminTokenTTL = 12 * time.Hour

// Admin exported for testing purposes
type Admin struct {
	DB      databases.AdminDatabase
	Service *invitations.Service
}

type adminContextKey struct{}

type adminClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// AdminLoginHandler exchanges admin credentials for a signed JWT.
func (a Admin) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	admin, err := a.DB.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(body.Email))})
	if err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, err)
		return
	}
	if !admin.Active {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(body.Password)); err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, err)
		return
	}

	now := time.Now()
	claims := adminClaims{
		Email: admin.Email,
		Roles: admin.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(adminTokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
	if err != nil {
		config.ErrorStatus("failed to sign token", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]interface{}{
		"token":     token,
		"expiresAt": now.Add(adminTokenTTL),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AdminOnly guards a route behind a valid admin JWT.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		header := r.Header.Get("Authorization")
		parts := strings.Split(header, "Bearer ")
		if len(parts) < 2 {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}

		claims := &adminClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			return jwtSecret(), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			zap.S().Warnw("rejected admin token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}

		ctx := context.WithValue(r.Context(), adminContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func adminFromContext(ctx context.Context) *adminClaims {
	claims, _ := ctx.Value(adminContextKey{}).(*adminClaims)
	return claims
}

// RevokeInvitationHandler withdraws an invitation administratively. Runs
// behind AdminOnly, so the claims are always present here.
func (a Admin) RevokeInvitationHandler(w http.ResponseWriter, r *http.Request) {
	invitationID := mux.Vars(r)["invitation_id"]

	iID, err := primitive.ObjectIDFromHex(invitationID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	actor := invitations.Actor{
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
	if claims := adminFromContext(r.Context()); claims != nil {
		actor.UserID = claims.Subject
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	invitation, err := a.Service.Revoke(ctx, iID, actor)
	if err != nil {
		writeInvitationError(w, err)
		return
	}

	b, err := json.Marshal(invitation)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MetricsSummaryHandler exposes the in-memory request metrics to admins.
func MetricsSummaryHandler(w http.ResponseWriter, r *http.Request) {
	b, err := json.Marshal(map[string]interface{}{
		"summary": api.GetMetrics().GetSummary(),
		"routes":  api.GetMetrics().GetRouteMetrics(),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
