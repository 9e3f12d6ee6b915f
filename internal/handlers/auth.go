package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/invoiceo/invoiceo/internal/auth"
	"github.com/invoiceo/invoiceo/internal/httpx"
	"github.com/invoiceo/invoiceo/internal/i18n"
	"github.com/invoiceo/invoiceo/internal/models"
	"github.com/invoiceo/invoiceo/internal/validation"
)

type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

// Register wires the auth routes onto the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/signup", h.Signup)
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("POST /api/logout", h.Logout)
	mux.Handle("GET /api/me", auth.RequireAuth(http.HandlerFunc(h.Me)))
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Language string `json:"language"`
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONErrorMsg(w, http.StatusBadRequest, "invalid_json", i18n.T(lang(r), "invalid_json"), nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	validation.Required("email", input.Email, v)
	if !strings.Contains(input.Email, "@") {
		v["email"] = "invalid_email"
	}
	if len(input.Password) < 8 {
		v["password"] = "too_short"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if input.Language == "" {
		input.Language = "en"
	}
	if input.Currency == "" || !models.ValidCurrency(input.Currency) {
		input.Currency = "EUR"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "hash_failed", nil)
		return
	}
	user := models.User{
		Name:     input.Name,
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: string(hash),
		Role:     models.RoleUser,
		Plan:     models.PlanFree,
		Language: input.Language,
		Currency: input.Currency,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusConflict, "email_taken", nil)
		return
	}
	auth.CreateSession(w, auth.Identity{ID: user.ID})
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONErrorMsg(w, http.StatusBadRequest, "invalid_json", i18n.T(lang(r), "invalid_json"), nil)
		return
	}
	var user models.User
	err := h.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "login_failed", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	// The role is resolved into the session once, here; everything downstream
	// reads it from the identity, never from a global.
	auth.CreateSession(w, auth.Identity{ID: user.ID, Admin: user.Role == models.RoleAdmin})
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	var user models.User
	if err := h.DB.First(&user, id.ID).Error; err != nil {
		httpx.JSONErrorMsg(w, http.StatusNotFound, "not_found", i18n.T(lang(r), "not_found"), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
