package authservice

import (
	"inventory/models"
	"inventory/providers"
	"inventory/utils"
	"net/http"
	"time"
)

type AuthHandler struct {
	Service        AuthService
	AuthMiddleware providers.AuthMiddlewareService
	Logger         providers.ZapLoggerProvider
}

func NewAuthHandler(service AuthService, auth providers.AuthMiddlewareService, logger providers.ZapLoggerProvider) *AuthHandler {
	return &AuthHandler{
		Service:        service,
		AuthMiddleware: auth,
		Logger:         logger,
	}
}

func toSessionRes(s models.Session) SessionRes {
	return SessionRes{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
		User:      s.User,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterReq
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "invalid request body")
		return
	}
	session, err := h.Service.Register(r.Context(), req)
	if err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "registration failed")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, toSessionRes(session))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "invalid request body")
		return
	}
	session, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "login failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, toSessionRes(session))
}

func (h *AuthHandler) LoginWithIDToken(w http.ResponseWriter, r *http.Request) {
	var req IDTokenLoginReq
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "id_token is required")
		return
	}
	session, err := h.Service.LoginWithIDToken(r.Context(), req.IDToken)
	if err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "login failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, toSessionRes(session))
}

// CurrentSession runs behind the session middleware.
func (h *AuthHandler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.AuthMiddleware.GetSessionFromContext(r)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, err, "unauthorized")
		return
	}
	utils.RespondJSON(w, http.StatusOK, toSessionRes(session))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Logout(r.Context(), r.Header.Get("Authorization")); err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "logout failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
