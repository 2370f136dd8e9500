package sheetsservice

import (
	"inventory/providers"
	assetservice "inventory/services/asset"
	"inventory/utils"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SheetsHandler struct {
	Service        SyncService
	Assets         assetservice.AssetService
	AuthMiddleware providers.AuthMiddlewareService
	Logger         providers.ZapLoggerProvider
}

func NewSheetsHandler(service SyncService, assets assetservice.AssetService, auth providers.AuthMiddlewareService, logger providers.ZapLoggerProvider) *SheetsHandler {
	return &SheetsHandler{
		Service:        service,
		Assets:         assets,
		AuthMiddleware: auth,
		Logger:         logger,
	}
}

func (h *SheetsHandler) actor(r *http.Request) zap.Field {
	session, err := h.AuthMiddleware.GetSessionFromContext(r)
	if err != nil {
		return zap.Skip()
	}
	return zap.String("user", session.User.Email)
}

func (h *SheetsHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	status, err := h.Service.Status(r.Context())
	if err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "failed to read sheets config")
		return
	}
	utils.RespondJSON(w, http.StatusOK, status)
}

func (h *SheetsHandler) Configure(w http.ResponseWriter, r *http.Request) {
	var req ConfigureReq
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "spreadsheet and api_key are required")
		return
	}
	status, err := h.Service.Configure(r.Context(), req.Spreadsheet, req.APIKey)
	if err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "failed to configure sheets")
		return
	}
	h.Logger.GetLogger().Info("sheets config updated", h.actor(r))
	utils.RespondJSON(w, http.StatusOK, status)
}

func (h *SheetsHandler) ClearConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ClearConfig(r.Context()); err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "failed to clear sheets config")
		return
	}
	h.Logger.GetLogger().Info("sheets config cleared", h.actor(r))
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "sheets config cleared"})
}

// TestConnection checks the spreadsheet is reachable and has the inventory tab.
func (h *SheetsHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.EnsureSheet(r.Context()); err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "sheets connection failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "connection ok"})
}

func (h *SheetsHandler) Push(w http.ResponseWriter, r *http.Request) {
	assets := h.Assets.List(r.Context())
	if err := h.Service.Push(r.Context(), assets); err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "failed to push inventory")
		return
	}
	h.Logger.GetLogger().Info("sheets push", h.actor(r), zap.Int("assets", len(assets)))
	utils.RespondJSON(w, http.StatusOK, PushRes{Pushed: len(assets)})
}

// Pull replaces the local inventory with the remote rows.
func (h *SheetsHandler) Pull(w http.ResponseWriter, r *http.Request) {
	assets, err := h.Service.Pull(r.Context())
	if err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "failed to pull inventory")
		return
	}
	if err := h.Assets.ReplaceAll(r.Context(), assets); err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "failed to replace inventory")
		return
	}
	h.Logger.GetLogger().Info("sheets pull", h.actor(r), zap.Int("assets", len(assets)))
	utils.RespondJSON(w, http.StatusOK, PullRes{Pulled: len(assets)})
}

func (h *SheetsHandler) AppendAsset(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "invalid asset id")
		return
	}
	asset, err := h.Assets.Find(r.Context(), id)
	if err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "asset not found")
		return
	}
	if err := h.Service.AppendOne(r.Context(), asset); err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "failed to append asset")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "asset appended"})
}
