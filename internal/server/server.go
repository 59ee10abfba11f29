//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=mock_server
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/service"
)

type ReturnService interface {
	GetReturn(ctx context.Context, actor service.Actor, id int64) (*domain.Return, error)
	ListReturns(ctx context.Context, actor service.Actor, q service.ListQuery) (*service.ReturnPage, error)
	CheckEligibility(ctx context.Context, actor service.Actor, orderID string) (*domain.Eligibility, error)
	CreateReturn(ctx context.Context, actor service.Actor, in service.CreateReturnInput) (*domain.Return, error)
	CancelReturn(ctx context.Context, actor service.Actor, id int64, note string) (*domain.Return, error)
	UpdateStatus(ctx context.Context, actor service.Actor, id int64, target domain.Status, note string) (*service.Result, error)
	SchedulePickup(ctx context.Context, actor service.Actor, id int64, note string) (*service.Result, error)
	CancelPickup(ctx context.Context, actor service.Actor, id int64, note string) (*service.Result, error)
	SettleRefund(ctx context.Context, actor service.Actor, id int64, note string) (*service.Result, error)
	ValidNextStatuses(ctx context.Context, actor service.Actor, id int64) (*service.Transitions, error)
	AddMessage(ctx context.Context, actor service.Actor, id int64, text string) (*domain.Return, error)
}

type UserRepo interface {
	Authenticate(ctx context.Context, username, password string) (*repository.User, error)
}

type Server struct {
	service      ReturnService
	userRepo     UserRepo
	server       *http.Server
	validate     *validator.Validate
	logger       *zap.Logger
	AuditManager *AuditManager
}

func New(svc ReturnService, userRepo UserRepo, logger *zap.Logger) *Server {
	return &Server{
		service:      svc,
		userRepo:     userRepo,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       logger,
		AuditManager: NewAuditManager(DefaultAuditConfig, logger),
	}
}

// Run serves until Shutdown is called. The audit manager is started first so
// no request goes unrecorded.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.setupRoutes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.AuditManager.Start(ctx)

	s.logger.Info("HTTP server starting", zap.String("addr", addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.logger.Info("HTTP server shutdown completed")

	s.AuditManager.Shutdown(ctx)
	return nil
}

func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(s.auditLogMiddleware, s.basicAuthMiddleware)

	api.HandleFunc("/orders/{orderID}/return-eligibility", s.handleCheckEligibility).Methods(http.MethodGet).Name("handleCheckEligibility")
	api.HandleFunc("/returns", s.handleCreateReturn).Methods(http.MethodPost).Name("handleCreateReturn")
	api.HandleFunc("/returns", s.handleListReturns).Methods(http.MethodGet).Name("handleListReturns")
	api.HandleFunc("/returns/{id:[0-9]+}", s.handleGetReturn).Methods(http.MethodGet).Name("handleGetReturn")
	api.HandleFunc("/returns/{id:[0-9]+}/transitions", s.handleTransitions).Methods(http.MethodGet).Name("handleTransitions")
	api.HandleFunc("/returns/{id:[0-9]+}/cancel", s.handleCancelReturn).Methods(http.MethodPost).Name("handleCancelReturn")
	api.HandleFunc("/returns/{id:[0-9]+}/messages", s.handleAddMessage).Methods(http.MethodPost).Name("handleAddMessage")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(requireAdmin)
	admin.HandleFunc("/returns/{id:[0-9]+}/status", s.handleUpdateStatus).Methods(http.MethodPut).Name("handleUpdateStatus")
	admin.HandleFunc("/returns/{id:[0-9]+}/pickup", s.handleSchedulePickup).Methods(http.MethodPost).Name("handleSchedulePickup")
	admin.HandleFunc("/returns/{id:[0-9]+}/pickup/cancel", s.handleCancelPickup).Methods(http.MethodPost).Name("handleCancelPickup")
	admin.HandleFunc("/returns/{id:[0-9]+}/refund", s.handleSettleRefund).Methods(http.MethodPost).Name("handleSettleRefund")

	return router
}

type actorKey struct{}

func withActor(ctx context.Context, a service.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func actorFrom(ctx context.Context) service.Actor {
	a, _ := ctx.Value(actorKey{}).(service.Actor)
	return a
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			unauthorized(w)
			return
		}

		user, err := s.userRepo.Authenticate(r.Context(), username, password)
		if err != nil {
			s.logger.Debug("Authentication failed", zap.String("username", username), zap.Error(err))
			unauthorized(w)
			return
		}

		role := user.Role
		if role == "" {
			role = service.RoleCustomer
		}
		next.ServeHTTP(w, r.WithContext(withActor(r.Context(), service.Actor{ID: user.Username, Role: role})))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !actorFrom(r.Context()).IsAdmin() {
			respondError(w, domain.Forbidden("admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
	respondJSON(w, http.StatusUnauthorized, response{Success: false, Error: &errorBody{Kind: "Unauthorized", Message: "Unauthorized"}})
}
