package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/keyhaven/keyhaven-api/api"
	"github.com/keyhaven/keyhaven-api/api/scheduler"
	"github.com/keyhaven/keyhaven-api/config"
	"github.com/keyhaven/keyhaven-api/databases"
	"github.com/keyhaven/keyhaven-api/invitations"
	"github.com/keyhaven/keyhaven-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
	service   *invitations.Service
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewAccountDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	i := Invitation{
		Service: a.service,
		DB:      databases.NewInvitationDatabase(a.dbHelper),
		ADB:     databases.NewAuditLogDatabase(a.dbHelper),
	}
	admin := Admin{DB: databases.NewAdminDatabase(a.dbHelper), Service: a.service}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/invitations", api.Middleware(http.HandlerFunc(i.InvitationCreateHandler))).Methods("POST")
	apiCreate.Handle("/invitations/user/{user_id}", api.Middleware(http.HandlerFunc(i.InvitationsByUserIDHandler))).Methods("GET")
	apiCreate.Handle("/invitation/{invitation_id}", api.Middleware(http.HandlerFunc(i.InvitationByIDHandler))).Methods("GET")
	apiCreate.Handle("/invitation/{invitation_id}/audit", api.Middleware(http.HandlerFunc(i.InvitationAuditHandler))).Methods("GET")
	apiCreate.Handle("/invitation/{invitation_id}/resend", api.Middleware(http.HandlerFunc(i.InvitationResendHandler))).Methods("POST")
	apiCreate.Handle("/invitation/{invitation_id}/cancel", api.Middleware(http.HandlerFunc(i.InvitationCancelHandler))).Methods("POST")
	apiCreate.Handle("/invitation/{invitation_id}/revoke", AdminOnly(http.HandlerFunc(admin.RevokeInvitationHandler))).Methods("POST")

	// The validate and accept flows run before the invited user has any
	// credentials, so these two routes stay open. Accept picks up a session
	// when the caller carries one.
	apiCreate.Handle("/invitations/validate/{token_or_code}", http.HandlerFunc(i.InvitationValidateHandler)).Methods("GET")
	apiCreate.Handle("/invitations/accept", http.HandlerFunc(i.InvitationAcceptHandler)).Methods("POST")

	apiCreate.Handle("/admin/login", http.HandlerFunc(admin.AdminLoginHandler)).Methods("POST")
	apiCreate.Handle("/admin/metrics", AdminOnly(http.HandlerFunc(MetricsSummaryHandler))).Methods("GET")

	r.Use(api.MetricsMiddleware)
	r.Use(api.TimeoutMiddleware(30 * time.Second))

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("keyhaven-api has connected to the database")

	provisioner := invitations.NewMongoProvisioner(
		databases.NewAccountDatabase(a.dbHelper),
		databases.NewUserProfileDatabase(a.dbHelper),
		databases.NewClientProfileDatabase(a.dbHelper),
		databases.NewProfessionalProfileDatabase(a.dbHelper),
	)
	gateway := invitations.NewSendGridGateway(a.Config.BaseURL, nil)
	ttl := time.Duration(a.Config.InviteTTLDays) * 24 * time.Hour
	a.service = invitations.NewService(
		databases.NewInvitationDatabase(a.dbHelper),
		databases.NewAuditLogDatabase(a.dbHelper),
		provisioner,
		gateway,
		ttl,
	)

	a.Scheduler = scheduler.NewScheduler(a.service)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
