package sheetsservice

import (
	"context"
	"inventory/models"
	"inventory/providers"
	storeprovider "inventory/providers/storeProvider"
	assetservice "inventory/services/asset"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSheetsRouter(t *testing.T) (http.Handler, assetservice.AssetService, *fakeSheets) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := providers.NewMockZapLoggerProvider(ctrl)
	mockLogger.EXPECT().GetLogger().Return(zap.NewNop()).AnyTimes()
	mockAuth := providers.NewMockAuthMiddlewareService(ctrl)
	mockAuth.EXPECT().GetSessionFromContext(gomock.Any()).
		Return(models.Session{User: models.PublicUser{Email: "ana@sed.sc.gov.br"}}, nil).AnyTimes()

	assets, err := assetservice.NewAssetService(context.Background(),
		assetservice.NewAssetRepository(storeprovider.NewMemoryStore()), mockLogger)
	require.NoError(t, err)

	svc, fake := newTestSync(t)
	h := NewSheetsHandler(svc, assets, mockAuth, mockLogger)

	r := chi.NewRouter()
	r.Get("/sheets/config", h.GetConfig)
	r.Put("/sheets/config", h.Configure)
	r.Delete("/sheets/config", h.ClearConfig)
	r.Post("/sheets/test", h.TestConnection)
	r.Post("/sheets/push", h.Push)
	r.Post("/sheets/pull", h.Pull)
	r.Post("/sheets/append/{id}", h.AppendAsset)
	return r, assets, fake
}

func request(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestSheetsHandlerConfig(t *testing.T) {
	router, _, _ := newSheetsRouter(t)

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"push before configure", http.MethodPost, "", http.StatusPreconditionFailed},
		{"missing key", http.MethodPut, `{"spreadsheet":"` + testID + `"}`, http.StatusBadRequest},
		{"bad url", http.MethodPut, `{"spreadsheet":"https://example.com/x","api_key":"k"}`, http.StatusBadRequest},
		{"configure", http.MethodPut, `{"spreadsheet":"https://docs.google.com/spreadsheets/d/` + testID + `/edit","api_key":"` + testAPIKey + `"}`, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := "/sheets/config"
			if tc.method == http.MethodPost {
				path = "/sheets/push"
			}
			rec := request(router, tc.method, path, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}

	rec := request(router, http.MethodGet, "/sheets/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_configured":true`)

	rec = request(router, http.MethodPost, "/sheets/test", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = request(router, http.MethodDelete, "/sheets/config", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = request(router, http.MethodGet, "/sheets/config", "")
	assert.Contains(t, rec.Body.String(), `"is_configured":false`)
}

func TestSheetsHandlerPushPull(t *testing.T) {
	ctx := context.Background()
	router, assets, fake := newSheetsRouter(t)

	rec := request(router, http.MethodPut, "/sheets/config", `{"spreadsheet":"`+testID+`","api_key":"`+testAPIKey+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	seeded, err := assets.SeedSampleData(ctx)
	require.NoError(t, err)
	require.True(t, seeded)

	rec = request(router, http.MethodPost, "/sheets/push", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"pushed":2}`, rec.Body.String())

	// the remote copy gains a row that was never added locally
	fake.mu.Lock()
	fake.rows = append(fake.rows, []string{"CEE050", "", "", "CEE-PC050"})
	fake.mu.Unlock()

	rec = request(router, http.MethodPost, "/sheets/pull", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"pulled":3}`, rec.Body.String())

	local := assets.List(ctx)
	require.Len(t, local, 3)
	got, err := assets.FindByTag(ctx, "CEE050")
	require.NoError(t, err)
	assert.Equal(t, "CEE-PC050", got.Hostname)
	assert.Equal(t, models.StatusActive, got.Status)

	t.Run("append one asset", func(t *testing.T) {
		rec := request(router, http.MethodPost, "/sheets/append/"+got.ID.String(), "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		rows, _ := fake.snapshot()
		assert.Equal(t, "CEE050", rows[len(rows)-1][0])

		rec = request(router, http.MethodPost, "/sheets/append/nope", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("pull with an invalid remote row keeps the local set", func(t *testing.T) {
		rows, _ := fake.snapshot()
		defer func() {
			fake.mu.Lock()
			fake.rows = rows
			fake.mu.Unlock()
		}()

		for _, bad := range []struct {
			col   int
			value string
		}{{20, "Broken"}, {19, "tomorrow"}} {
			row := make([]string, len(models.AssetColumns))
			row[0] = "CEE060"
			row[bad.col] = bad.value
			fake.mu.Lock()
			fake.rows = append(append([][]string(nil), rows...), row)
			fake.mu.Unlock()

			rec := request(router, http.MethodPost, "/sheets/pull", "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, local, assets.List(ctx))
		}
	})

	t.Run("pull with duplicate remote tags keeps the local set", func(t *testing.T) {
		fake.mu.Lock()
		fake.rows = append(fake.rows, []string{"CEE050"})
		fake.mu.Unlock()

		rec := request(router, http.MethodPost, "/sheets/pull", "")
		assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
		assert.Len(t, assets.List(ctx), 3)
	})

	t.Run("remote failure", func(t *testing.T) {
		fake.mu.Lock()
		fake.failWith = http.StatusServiceUnavailable
		fake.mu.Unlock()

		rec := request(router, http.MethodPost, "/sheets/push", "")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
