package handler

import (
	"net/http"
	"strings"

	"github.com/roberto3101/sistema-control/internal/model"
	"github.com/roberto3101/sistema-control/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login выполняет аутентификацию пользователя, выдаёт токен и устанавливает cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.writeJSON(w, http.StatusBadRequest, "email and password are required", nil)
		return
	}

	u, err := h.svc.Accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.authMiddleware.IssueToken(u.ID, u.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.authMiddleware.SetAuthCookie(w, token)

	h.writeJSON(w, http.StatusOK, "login ok", map[string]any{
		"token": token,
		"user":  newUserResponse(u),
	})
}

// Me возвращает текущего пользователя.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	u, err := h.svc.Accounts.GetUser(r.Context(), p.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, "", map[string]any{"user": newUserResponse(u)})
}

type registerRequest struct {
	FullName string     `json:"nombre_completo"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"rol"`
}

// CreateUser регистрирует пользователя. Доступно администратору.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, err := h.svc.Accounts.Register(r.Context(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, "user created", map[string]int64{"id_usuario": id})
}
