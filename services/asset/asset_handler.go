package assetservice

import (
	"bytes"
	"fmt"
	"inventory/models"
	"inventory/providers"
	"inventory/utils"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20

type AssetHandler struct {
	Service        AssetService
	AuthMiddleware providers.AuthMiddlewareService
	Logger         providers.ZapLoggerProvider
}

func NewAssetHandler(service AssetService, auth providers.AuthMiddlewareService, logger providers.ZapLoggerProvider) *AssetHandler {
	return &AssetHandler{
		Service:        service,
		AuthMiddleware: auth,
		Logger:         logger,
	}
}

// actor names the logged in user for audit log lines.
func (h *AssetHandler) actor(r *http.Request) zap.Field {
	session, err := h.AuthMiddleware.GetSessionFromContext(r)
	if err != nil {
		return zap.Skip()
	}
	return zap.String("user", session.User.Email)
}

func parseAssetID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "invalid asset id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.AssetFilter{
		SearchText: q.Get("search"),
		Sector:     q.Get("sector"),
		Status:     models.ParseAssetStatus(q.Get("status")),
	}
	utils.RespondJSON(w, http.StatusOK, h.Service.Filter(r.Context(), filter))
}

func (h *AssetHandler) AddAsset(w http.ResponseWriter, r *http.Request) {
	var req models.AssetReq
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "invalid asset input")
		return
	}

	asset, err := h.Service.Add(r.Context(), req)
	if err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "failed to add asset")
		return
	}
	h.Logger.GetLogger().Info("asset created", zap.String("tag", asset.Tag), h.actor(r))
	utils.RespondJSON(w, http.StatusCreated, asset)
}

func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAssetID(w, r)
	if !ok {
		return
	}
	asset, err := h.Service.Find(r.Context(), id)
	if err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "asset not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) GetAssetByTag(w http.ResponseWriter, r *http.Request) {
	asset, err := h.Service.FindByTag(r.Context(), chi.URLParam(r, "tag"))
	if err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "asset not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAssetID(w, r)
	if !ok {
		return
	}
	var req models.AssetReq
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "invalid asset input")
		return
	}

	asset, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "failed to update asset")
		return
	}
	h.Logger.GetLogger().Info("asset edited", zap.String("tag", asset.Tag), h.actor(r))
	utils.RespondJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAssetID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Remove(r.Context(), id); err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "failed to delete asset")
		return
	}
	h.Logger.GetLogger().Info("asset deleted", zap.String("id", id.String()), h.actor(r))
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "asset deleted successfully"})
}

func (h *AssetHandler) GetAssetQRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAssetID(w, r)
	if !ok {
		return
	}
	size := DefaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > 2048 {
			utils.RespondError(w, http.StatusBadRequest, err, "size must be between 64 and 2048")
			return
		}
		size = n
	}

	png, err := h.Service.QRCode(r.Context(), id, size)
	if err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "failed to generate qr code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="qrcode_ativo.png"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *AssetHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.Service.Statistics(r.Context()))
}

func (h *AssetHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.Service.ExportCSV(r.Context(), &buf); err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "failed to export inventory")
		return
	}
	filename := fmt.Sprintf("inventario_cee_%s.csv", time.Now().Format(models.DateLayout))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// uploadBody returns the "file" part of a multipart form, or the raw body.
func uploadBody(w http.ResponseWriter, r *http.Request) (io.Reader, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err == nil {
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, func() {}, err
		}
		return f, func() { _ = f.Close() }, nil
	} else if !errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, err
	}
	return r.Body, func() {}, nil
}

func (h *AssetHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	body, closeFn, err := uploadBody(w, r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "invalid upload")
		return
	}
	defer closeFn()

	result, err := h.Service.ImportCSV(r.Context(), body)
	if err != nil && result.Imported == 0 && result.Failed == 0 {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "failed to import csv")
		return
	}
	resp := map[string]interface{}{"result": result}
	if err != nil {
		resp["errors"] = err.Error()
	}
	h.Logger.GetLogger().Info("csv imported", zap.Int("imported", result.Imported), h.actor(r))
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *AssetHandler) Backup(w http.ResponseWriter, r *http.Request) {
	backup := h.Service.Backup(r.Context())
	filename := fmt.Sprintf("backup_inventario_cee_%s.json", backup.Timestamp.Format(models.DateLayout))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	utils.RespondJSON(w, http.StatusOK, backup)
}

func (h *AssetHandler) Restore(w http.ResponseWriter, r *http.Request) {
	body, closeFn, err := uploadBody(w, r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "invalid upload")
		return
	}
	defer closeFn()

	raw, err := io.ReadAll(body)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "failed to read backup")
		return
	}
	n, err := h.Service.Restore(r.Context(), raw)
	if err != nil {
		utils.RespondServiceError(w, h.Logger.GetLogger(), err, "failed to restore backup")
		return
	}
	h.Logger.GetLogger().Info("backup restored", zap.Int("assets", n), h.actor(r))
	utils.RespondJSON(w, http.StatusOK, RestoreResult{Restored: n})
}
