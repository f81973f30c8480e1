package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/blinkedin/backend/internal/models"
)

type RegisterRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	Profession string  `json:"profession"`
	City       string  `json:"city"`
	Phone      string  `json:"phone"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	acc, err := h.svc.Register(r.Context(), RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		Role:       models.Role(req.Role),
		Profession: req.Profession,
		City:       req.City,
		Phone:      req.Phone,
		Lat:        req.Lat,
		Lng:        req.Lng,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			http.Error(w, `{"error":"email already registered"}`, http.StatusConflict)
		case errors.Is(err, ErrInvalidSignup):
			http.Error(w, `{"error":"invalid signup"}`, http.StatusBadRequest)
		default:
			h.log.Error("register", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
			return
		}
		h.log.Error("login", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
