package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/petalmart/storefront/internal/auth"
	"github.com/petalmart/storefront/internal/domain"
	"github.com/petalmart/storefront/internal/repository"
)

type CustomerStore interface {
	CreateCustomer(ctx context.Context, name, email, passwordHash string) (*domain.Customer, error)
	GetCredentialsByEmail(ctx context.Context, email string) (int64, string, error)
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, name, email, phone, address string) (*domain.Customer, error)
}

// TokenIssuer mints bearer tokens for authenticated customers.
type TokenIssuer interface {
	Generate(userID int64, email string) (string, error)
}

type AuthHandler struct {
	customers CustomerStore
	tokens    TokenIssuer
	timeout   time.Duration
}

func NewAuthHandler(customers CustomerStore, tokens TokenIssuer, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		customers: customers,
		tokens:    tokens,
		timeout:   timeout,
	}
}

type RegisterRequestDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponseDTO struct {
	User  *domain.Customer `json:"user"`
	Token string           `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "name, email and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	customer, err := h.customers.CreateCustomer(ctx, req.Name, req.Email, hash)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	token, err := h.tokens.Generate(customer.ID, customer.Email)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, AuthResponseDTO{User: customer, Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	userID, hash, err := h.customers.GetCredentialsByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrCustomerNotFound) || (err == nil && !auth.CheckPassword(hash, req.Password)) {
		respondError(w, http.StatusBadRequest, "invalid_credentials", "invalid email or password")
		return
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	token, err := h.tokens.Generate(userID, req.Email)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	profile, err := h.customers.GetProfile(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, AuthResponseDTO{User: &profile.Customer, Token: token})
}

// Logout is a stateless acknowledgement; tokens expire on their own.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
