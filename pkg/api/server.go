package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/hemanth5544/Order-Execution-Engine/pkg/broadcast"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/core"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/queue"
	"github.com/hemanth5544/Order-Execution-Engine/pkg/storage"
)

// Server handles REST API and WebSocket connections. It is a thin boundary:
// validation here, everything else delegated to the store, scheduler and
// broadcast hub.
type Server struct {
	store     storage.OrderStore
	scheduler *queue.Scheduler
	hub       *broadcast.Hub
	router    *mux.Router
	orderLog  storage.EventLog
	logger    *zap.SugaredLogger
}

func NewServer(store storage.OrderStore, scheduler *queue.Scheduler, hub *broadcast.Hub, orderLog storage.EventLog, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if orderLog == nil {
		orderLog = storage.NewNopLog()
	}
	s := &Server{
		store:     store,
		scheduler: scheduler,
		hub:       hub,
		router:    mux.NewRouter(),
		orderLog:  orderLog,
		logger:    logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/orders", s.handleSubmitOrder).Methods("POST")
	api.HandleFunc("/orders/{id}", s.handleGetOrder).Methods("GET")
	api.HandleFunc("/orders/{id}/quotes", s.handleGetQuotes).Methods("GET")
	api.HandleFunc("/queue/metrics", s.handleGetMetrics).Methods("GET")

	// WebSocket status stream, one order per connection
	s.router.HandleFunc("/ws/orders/{id}", s.handleOrderSocket)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the full middleware-wrapped handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
	})
	return c.Handler(s.router)
}

// Start starts the API server
func (s *Server) Start(addr string) error {
	s.logger.Infow("api_server_starting", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	slippage, err := req.Validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	now := time.Now().UTC()
	order := &core.Order{
		OrderID:           uuid.NewString(),
		UserID:            req.UserID,
		OrderType:         core.OrderType(req.OrderType),
		TokenIn:           req.TokenIn,
		TokenOut:          req.TokenOut,
		AmountIn:          req.AmountIn,
		SlippageTolerance: slippage,
		Status:            core.StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.CreateOrder(order); err != nil {
		s.logger.Errorw("order_create_failed", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to create order", "")
		return
	}

	s.orderLog.Append(fmt.Sprintf("%s submit order_id=%s user=%s %s->%s amount=%g",
		now.Format(time.RFC3339), order.OrderID, order.UserID, order.TokenIn, order.TokenOut, order.AmountIn))

	if _, err := s.scheduler.Submit(queue.Job{
		OrderID:           order.OrderID,
		UserID:            order.UserID,
		OrderType:         order.OrderType,
		TokenIn:           order.TokenIn,
		TokenOut:          order.TokenOut,
		AmountIn:          order.AmountIn,
		SlippageTolerance: order.SlippageTolerance,
	}); err != nil {
		if errors.Is(err, queue.ErrSchedulerClosed) {
			respondError(w, http.StatusServiceUnavailable, "engine is shutting down", "")
			return
		}
		s.logger.Errorw("job_submit_failed", "order_id", order.OrderID, "err", err)
		respondError(w, http.StatusInternalServerError, "failed to queue order", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(SubmitOrderResponse{OrderID: order.OrderID, Status: string(core.StatusPending)})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	order, err := s.store.GetOrder(orderID)
	if err != nil {
		s.logger.Errorw("order_load_failed", "order_id", orderID, "err", err)
		respondError(w, http.StatusInternalServerError, "failed to load order", "")
		return
	}
	if order == nil {
		respondError(w, http.StatusNotFound, "order not found", "")
		return
	}
	respondJSON(w, order)
}

func (s *Server) handleGetQuotes(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	quotes, err := s.store.ListQuotes(orderID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load quotes", "")
		return
	}
	if quotes == nil {
		quotes = []core.Quote{}
	}
	respondJSON(w, quotes)
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.scheduler.Metrics())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]any{
		"status":      "ok",
		"subscribers": s.hub.ActiveCountAll(),
	})
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}

func respondError(w http.ResponseWriter, status int, msg, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: msg, Details: details})
}
