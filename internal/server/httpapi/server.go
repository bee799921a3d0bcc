// Package httpapi exposes the public HTTP surface: account lifecycle,
// credit purchases, and the contact form. Handlers translate between JSON
// bodies and the service layer; business rules live in the services.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/imagifine/internal/logging"
	"github.com/dmitrijs2005/imagifine/internal/server/config"
	"github.com/dmitrijs2005/imagifine/internal/server/models"
	"github.com/dmitrijs2005/imagifine/internal/server/services"
)

// UserService is the account-lifecycle surface the handlers need.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*services.RegisterResult, error)
	VerifyOTP(ctx context.Context, userID, code string) (*services.AuthResult, error)
	ResendOTP(ctx context.Context, userID string) error
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// CreditService is the purchase-workflow surface the handlers need.
type CreditService interface {
	CreateOrder(ctx context.Context, userID, planID string) (*services.OrderResult, error)
	VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (*services.VerifyResult, error)
	ListTransactions(ctx context.Context, userID string) ([]*models.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*services.TransactionDetail, error)
	OverwriteCredits(ctx context.Context, userID string, credits int64) (int64, error)
}

// ContactService is the contact-form surface the handlers need.
type ContactService interface {
	Submit(ctx context.Context, firstName, lastName, email, query string) (*models.Contact, error)
	List(ctx context.Context) ([]*models.Contact, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Contact, error)
}

type Server struct {
	address   string
	logger    logging.Logger
	users     UserService
	credits   CreditService
	contacts  ContactService
	jwtSecret []byte

	corsOrigins []string
	limiter     *ipRateLimiter
}

func NewServer(cfg *config.Config, l logging.Logger, us UserService, cs CreditService, ct ContactService) *Server {
	return &Server{
		address:     cfg.EndpointAddr,
		logger:      l.With("module", "http_server"),
		users:       us,
		credits:     cs,
		contacts:    ct,
		jwtSecret:   []byte(cfg.SecretKey),
		corsOrigins: cfg.CORSAllowedOrigins,
		limiter:     newIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
}

// Router builds the full route table with middleware applied.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(s.corsMiddleware, s.rateLimitMiddleware, s.loggingMiddleware)

	r.HandleFunc("/", s.handleLiveness).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify-otp", s.handleVerifyOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/resend-otp", s.handleResendOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.Handle("/auth/user", s.authenticated(s.handleGetUser)).Methods(http.MethodGet)

	api.Handle("/credits/create-order", s.authenticated(s.handleCreateOrder)).Methods(http.MethodPost)
	api.Handle("/credits/verify-payment", s.authenticated(s.handleVerifyPayment)).Methods(http.MethodPost)
	api.Handle("/credits/transactions", s.authenticated(s.handleListTransactions)).Methods(http.MethodGet)
	api.Handle("/credits/transaction/{id}", s.authenticated(s.handleGetTransaction)).Methods(http.MethodGet)
	api.Handle("/credits/update", s.authenticated(s.adminOnly(s.handleOverwriteCredits))).Methods(http.MethodPut)

	api.HandleFunc("/contact/submit", s.handleContactSubmit).Methods(http.MethodPost)
	api.Handle("/contact/all", s.authenticated(s.adminOnly(s.handleContactList))).Methods(http.MethodGet)
	api.Handle("/contact/{id}/status", s.authenticated(s.adminOnly(s.handleContactStatus))).Methods(http.MethodPatch)

	// preflight for any API path
	api.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodOptions)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "API is running"})
}
