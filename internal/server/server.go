// Package server exposes the evaluation pipeline over HTTP. The API mirrors
// the collaborator boundary: authentication in front, persistence behind,
// and the pipeline's always-complete EvaluationResult in the middle.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"pharmascout/internal/auth"
	"pharmascout/internal/model"
	"pharmascout/internal/store"
)

// Evaluator is the pipeline capability the server needs
type Evaluator interface {
	Evaluate(ctx context.Context, query string) *model.EvaluationResult
}

// Server is the HTTP API
type Server struct {
	evaluator Evaluator
	auth      *auth.Service
	store     *store.Store
	addr      string
}

// New creates a server
func New(addr string, evaluator Evaluator, authSvc *auth.Service, st *store.Store) *Server {
	return &Server{
		evaluator: evaluator,
		auth:      authSvc,
		store:     st,
		addr:      addr,
	}
}

// Handler builds the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /token", s.handleToken)
	mux.HandleFunc("GET /users/me", s.requireAuth(s.handleMe))
	mux.HandleFunc("POST /evaluate", s.requireAuth(s.handleEvaluate))
	mux.HandleFunc("GET /users/me/reports", s.requireAuth(s.handleReports))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// ListenAndServe runs the server until the listener fails
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if _, err := s.auth.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user registered successfully"})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	token, err := s.auth.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, ident *auth.Identity) {
	user, err := s.store.UserByID(r.Context(), ident.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":         user.ID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

type evaluateRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request, ident *auth.Identity) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	result := s.evaluator.Evaluate(r.Context(), query)

	if err := s.store.SaveReport(r.Context(), ident.UserID, result); err != nil {
		// The evaluation itself succeeded; failed persistence should not
		// hide the result from the caller.
		fmt.Fprintf(os.Stderr, "Warning: failed to persist report %s: %v\n", result.JobID, err)
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request, ident *auth.Identity) {
	reports, err := s.store.ReportsByUser(r.Context(), ident.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load reports")
		return
	}
	if reports == nil {
		reports = []*model.EvaluationResult{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type authedHandler func(http.ResponseWriter, *http.Request, *auth.Identity)

// requireAuth validates the bearer token and passes the caller identity on
func (s *Server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		ident, err := s.auth.ValidateToken(token)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r, ident)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
