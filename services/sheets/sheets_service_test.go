package sheetsservice

import (
	"context"
	"fmt"
	"inventory/models"
	"inventory/providers"
	storeprovider "inventory/providers/storeProvider"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/sheets/v4"
)

const (
	testSheet  = "Inventário"
	testID     = "1AbC-d_9"
	testAPIKey = "key-123"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// fakeSheets is an in-memory stand-in for the Sheets v4 REST API holding a
// single spreadsheet. Value writes only overwrite the cells they cover.
type fakeSheets struct {
	mu        sync.Mutex
	tabs      map[string]int64
	nextTab   int64
	rows      [][]string
	formatted int
	failWith  int
	calls     []string
	// number of requests of a kind ("append", "addSheet", "get") that are
	// applied and then answered with 503
	flaky map[string]int
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{
		tabs:    map[string]int64{"Sheet1": 0},
		nextTab: 100,
		flaky:   map[string]int{},
	}
}

func toRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, cells := range values {
		rows[i] = make([]string, len(cells))
		for j, c := range cells {
			rows[i][j] = fmt.Sprint(c)
		}
	}
	return rows
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	if f.failWith != 0 {
		http.Error(w, `{"error":{"message":"backend unavailable"}}`, f.failWith)
		return
	}
	if r.URL.Query().Get("key") != testAPIKey {
		http.Error(w, `{"error":{"message":"API key not valid"}}`, http.StatusForbidden)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/"+testID)
	if rest == r.URL.Path {
		http.NotFound(w, r)
		return
	}

	switch {
	case rest == "" && r.Method == http.MethodGet:
		out := &sheets.Spreadsheet{SpreadsheetId: testID}
		for title, id := range f.tabs {
			out.Sheets = append(out.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: title, SheetId: id}})
		}
		f.write(w, out)

	case rest == ":batchUpdate" && r.Method == http.MethodPost:
		var req sheets.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				if _, exists := f.tabs[rq.AddSheet.Properties.Title]; exists {
					http.Error(w, `{"error":{"message":"sheet already exists"}}`, http.StatusBadRequest)
					return
				}
				f.tabs[rq.AddSheet.Properties.Title] = f.nextTab
				f.nextTab++
				if f.dropped(w, "addSheet") {
					return
				}
			}
			if rq.RepeatCell != nil && rq.RepeatCell.Range.SheetId == f.tabs[testSheet] {
				f.formatted++
			}
		}
		f.write(w, map[string]string{})

	case rest == "/values:batchClear" && r.Method == http.MethodPost:
		f.rows = nil
		f.write(w, map[string]string{})

	case strings.HasPrefix(rest, "/values/"+testSheet+"!"):
		if _, ok := f.tabs[testSheet]; !ok {
			http.Error(w, `{"error":{"message":"Unable to parse range"}}`, http.StatusBadRequest)
			return
		}
		var body sheets.ValueRange
		if r.Method != http.MethodGet {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		switch {
		case strings.HasSuffix(rest, ":append") && r.Method == http.MethodPost:
			f.rows = append(f.rows, toRows(body.Values)...)
			if f.dropped(w, "append") {
				return
			}
		case r.Method == http.MethodPut:
			for i, row := range toRows(body.Values) {
				if i < len(f.rows) {
					f.rows[i] = row
				} else {
					f.rows = append(f.rows, row)
				}
			}
		case r.Method == http.MethodGet:
			if f.dropped(w, "get") {
				return
			}
			out := &sheets.ValueRange{}
			for i, row := range f.rows {
				if i == 0 {
					continue
				}
				cells := make([]interface{}, len(row))
				for j, c := range row {
					cells[j] = c
				}
				out.Values = append(out.Values, cells)
			}
			f.write(w, out)
			return
		}
		f.write(w, map[string]string{})

	default:
		http.NotFound(w, r)
	}
}

// dropped reports whether the request of kind was applied but must be
// answered as a failure. Callers hold mu.
func (f *fakeSheets) dropped(w http.ResponseWriter, kind string) bool {
	if f.flaky[kind] == 0 {
		return false
	}
	f.flaky[kind]--
	http.Error(w, `{"error":{"message":"backend unavailable"}}`, http.StatusServiceUnavailable)
	return true
}

func (f *fakeSheets) write(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeSheets) snapshot() ([][]string, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := make([][]string, len(f.rows))
	copy(rows, f.rows)
	return rows, append([]string(nil), f.calls...)
}

func newTestSync(t *testing.T) (SyncService, *fakeSheets) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := providers.NewMockZapLoggerProvider(ctrl)
	mockLogger.EXPECT().GetLogger().Return(zap.NewNop()).AnyTimes()

	fake := newFakeSheets()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	repo := NewConfigRepository(storeprovider.NewMemoryStore())
	svc := NewSyncService(repo, NewRESTClient(srv.URL, 0, zap.NewNop()), mockLogger, testSheet,
		WithClock(func() time.Time { return fixedNow }))
	return svc, fake
}

func configured(t *testing.T) (SyncService, *fakeSheets) {
	t.Helper()
	svc, fake := newTestSync(t)
	_, err := svc.Configure(context.Background(), testID, testAPIKey)
	require.NoError(t, err)
	return svc, fake
}

func sampleAssets(tags ...string) []models.Asset {
	assets := make([]models.Asset, 0, len(tags))
	for i, tag := range tags {
		assets = append(assets, models.Asset{
			Tag:       tag,
			Hostname:  "CEE-" + tag,
			Owner:     "Maria Santos",
			Sector:    "TI",
			RAMGB:     8 * (i + 1),
			Status:    models.StatusActive,
			CreatedAt: time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC),
		})
	}
	return assets
}

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		err   error
	}{
		{"full url", "https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0", "1AbC-d_9", nil},
		{"bare id", " 1AbC-d_9 ", "1AbC-d_9", nil},
		{"unrelated url", "https://example.com/sheet", "", models.ErrInvalidSpreadsheetURL},
		{"empty", "", "", models.ErrInvalidSpreadsheetURL},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractSpreadsheetID(tc.input)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestConfigure(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestSync(t)

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.IsConfigured)
	assert.Empty(t, status.SpreadsheetURL)

	_, err = svc.Configure(ctx, testID, "  ")
	assert.ErrorIs(t, err, models.ErrMissingField)

	status, err = svc.Configure(ctx, "https://docs.google.com/spreadsheets/d/"+testID+"/edit", testAPIKey)
	require.NoError(t, err)
	assert.Equal(t, Status{
		IsConfigured:     true,
		HasAPIKey:        true,
		HasSpreadsheetID: true,
		SheetName:        testSheet,
		SpreadsheetURL:   "https://docs.google.com/spreadsheets/d/" + testID + "/edit",
	}, status)

	url, err := svc.SpreadsheetURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, status.SpreadsheetURL, url)

	require.NoError(t, svc.ClearConfig(ctx))
	status, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.IsConfigured)
	assert.False(t, status.HasAPIKey)
}

func TestNotConfigured(t *testing.T) {
	ctx := context.Background()
	svc, fake := newTestSync(t)

	assert.ErrorIs(t, svc.Push(ctx, sampleAssets("CEE001")), models.ErrNotConfigured)
	_, err := svc.Pull(ctx)
	assert.ErrorIs(t, err, models.ErrNotConfigured)
	assert.ErrorIs(t, svc.AppendOne(ctx, sampleAssets("CEE001")[0]), models.ErrNotConfigured)
	assert.ErrorIs(t, svc.EnsureSheet(ctx), models.ErrNotConfigured)

	_, calls := fake.snapshot()
	assert.Empty(t, calls)
}

func TestEnsureSheet(t *testing.T) {
	ctx := context.Background()
	svc, fake := configured(t)

	require.NoError(t, svc.EnsureSheet(ctx))
	require.NoError(t, svc.EnsureSheet(ctx))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, int64(100), fake.tabs[testSheet])
	assert.Equal(t, int64(101), fake.nextTab, "tab is created only once")
}

func TestPushPullRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, fake := configured(t)
	pushed := sampleAssets("CEE001", "CEE002")

	require.NoError(t, svc.Push(ctx, pushed))

	rows, _ := fake.snapshot()
	require.Len(t, rows, 3)
	assert.Equal(t, models.AssetColumns, rows[0])
	assert.Equal(t, "CEE001", rows[1][0])
	assert.Equal(t, "8", rows[1][9])
	assert.Equal(t, fixedNow.Format(time.RFC3339Nano), rows[1][24])
	assert.Equal(t, 1, fake.formatted)

	pulled, err := svc.Pull(ctx)
	require.NoError(t, err)
	require.Len(t, pulled, 2)
	for i := range pulled {
		assert.NotEqual(t, pushed[i].ID, pulled[i].ID, "pull assigns fresh ids")
		assert.Equal(t, pushed[i].Tag, pulled[i].Tag)
		assert.Equal(t, pushed[i].RAMGB, pulled[i].RAMGB)
		assert.Equal(t, pushed[i].Status, pulled[i].Status)
		assert.True(t, pushed[i].CreatedAt.Equal(pulled[i].CreatedAt))
	}

	t.Run("every field except the id survives", func(t *testing.T) {
		full := []models.Asset{
			{
				ID: uuid.New(), Tag: "CEE020", PatrimonyID: "PAT020", SerialNumber: " SN-20 ",
				Hostname: "CEE-PC020", Owner: "João Silva", Sector: "Presidência", Location: "Sala 101, 1º andar",
				Model: " Dell OptiPlex ", CPU: "Intel Core i7-10700", RAMGB: 16, StorageGB: 512,
				StorageType: "SSD", OS: "Windows 11 Pro", OSBuild: "22H2", OfficeVersion: "Microsoft 365",
				Antivirus: "Windows Defender", IPAddress: "192.168.1.20", MACAddress: "00:1B:44:11:3A:20",
				AcquiredOn: "2023-01-15", WarrantyEnd: "2026-01-15", Status: models.StatusMaintenance,
				LastMaintenance: "2024-01-10", Notes: "  line one\nline two, with a comma\n",
				CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			},
			{
				ID: uuid.New(), Tag: "CEE021", Status: models.StatusDiscarded, Notes: "\t",
				CreatedAt: time.Date(2024, 2, 1, 8, 0, 0, 123000000, time.UTC),
			},
		}
		require.NoError(t, svc.Push(ctx, full))

		pulled, err := svc.Pull(ctx)
		require.NoError(t, err)
		require.Len(t, pulled, len(full))
		for i := range full {
			want := full[i]
			want.ID = uuid.Nil
			got := pulled[i]
			got.ID = uuid.Nil
			assert.Equal(t, want, got)
		}
	})

	t.Run("a smaller push replaces everything", func(t *testing.T) {
		require.NoError(t, svc.Push(ctx, sampleAssets("CEE009")))
		pulled, err := svc.Pull(ctx)
		require.NoError(t, err)
		require.Len(t, pulled, 1)
		assert.Equal(t, "CEE009", pulled[0].Tag)
	})

	t.Run("empty inventory leaves only the header", func(t *testing.T) {
		require.NoError(t, svc.Push(ctx, nil))
		rows, _ := fake.snapshot()
		assert.Len(t, rows, 1)
		pulled, err := svc.Pull(ctx)
		require.NoError(t, err)
		assert.Empty(t, pulled)
	})
}

func TestPullLooseRows(t *testing.T) {
	ctx := context.Background()
	svc, fake := configured(t)
	require.NoError(t, svc.EnsureSheet(ctx))

	fake.mu.Lock()
	fake.rows = [][]string{
		models.AssetColumns,
		{"CEE010", "P-77"},
		{"", "orphan"},
		{"CEE011", "", "", "", "", "", "", "", "", "16 GB", "", "", "", "", "", "", "", "", "", "", "Manutenção"},
	}
	fake.mu.Unlock()

	pulled, err := svc.Pull(ctx)
	require.NoError(t, err)
	require.Len(t, pulled, 2)

	assert.Equal(t, "CEE010", pulled[0].Tag)
	assert.Equal(t, "P-77", pulled[0].PatrimonyID)
	assert.Empty(t, pulled[0].Hostname)
	assert.Equal(t, fixedNow, pulled[0].CreatedAt)

	assert.Equal(t, 16, pulled[1].RAMGB)
	assert.Equal(t, models.StatusMaintenance, pulled[1].Status)
	assert.NotEqual(t, pulled[0].ID, pulled[1].ID)
}

func TestAppendOne(t *testing.T) {
	ctx := context.Background()
	svc, fake := configured(t)

	require.NoError(t, svc.Push(ctx, sampleAssets("CEE001")))
	require.NoError(t, svc.AppendOne(ctx, sampleAssets("CEE001", "CEE002")[1]))

	rows, _ := fake.snapshot()
	require.Len(t, rows, 3)
	assert.Equal(t, "CEE002", rows[2][0])
}

func TestRemoteErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("server failure", func(t *testing.T) {
		svc, fake := configured(t)
		fake.mu.Lock()
		fake.failWith = http.StatusInternalServerError
		fake.mu.Unlock()

		err := svc.Push(ctx, sampleAssets("CEE001"))
		assert.ErrorIs(t, err, models.ErrRemoteError)
		assert.Contains(t, err.Error(), "500")

		_, err = svc.Pull(ctx)
		assert.ErrorIs(t, err, models.ErrRemoteError)
	})

	t.Run("rejected key", func(t *testing.T) {
		svc, _ := newTestSync(t)
		_, err := svc.Configure(ctx, testID, "wrong")
		require.NoError(t, err)

		err = svc.EnsureSheet(ctx)
		assert.ErrorIs(t, err, models.ErrRemoteError)
		assert.Contains(t, err.Error(), "API key not valid")
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockLogger := providers.NewMockZapLoggerProvider(ctrl)
		mockLogger.EXPECT().GetLogger().Return(zap.NewNop()).AnyTimes()

		srv := httptest.NewServer(http.NotFoundHandler())
		endpoint := srv.URL
		srv.Close()

		repo := NewConfigRepository(storeprovider.NewMemoryStore())
		require.NoError(t, repo.Save(ctx, Config{APIKey: testAPIKey, SpreadsheetID: testID}))
		svc := NewSyncService(repo, NewRESTClient(endpoint, 0, zap.NewNop()), mockLogger, testSheet)

		_, err := svc.Pull(ctx)
		assert.ErrorIs(t, err, models.ErrRemoteError)
	})
}

func TestRetryPolicy(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	mockLogger := providers.NewMockZapLoggerProvider(ctrl)
	mockLogger.EXPECT().GetLogger().Return(zap.NewNop()).AnyTimes()

	fake := newFakeSheets()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	repo := NewConfigRepository(storeprovider.NewMemoryStore())
	require.NoError(t, repo.Save(ctx, Config{APIKey: testAPIKey, SpreadsheetID: testID}))
	svc := NewSyncService(repo, NewRESTClient(srv.URL, 3, zap.NewNop()), mockLogger, testSheet,
		WithClock(func() time.Time { return fixedNow }))

	t.Run("addSheet is sent once", func(t *testing.T) {
		fake.mu.Lock()
		fake.flaky["addSheet"] = 1
		fake.mu.Unlock()

		err := svc.EnsureSheet(ctx)
		assert.ErrorIs(t, err, models.ErrRemoteError)
		assert.Contains(t, err.Error(), "503")

		_, calls := fake.snapshot()
		var adds int
		for _, c := range calls {
			if strings.HasSuffix(c, ":batchUpdate") {
				adds++
			}
		}
		assert.Equal(t, 1, adds)

		// the tab exists now, so the next call finds it
		require.NoError(t, svc.EnsureSheet(ctx))
	})

	t.Run("append is sent once", func(t *testing.T) {
		fake.mu.Lock()
		fake.rows = [][]string{models.AssetColumns}
		fake.flaky["append"] = 1
		fake.mu.Unlock()

		err := svc.AppendOne(ctx, sampleAssets("CEE001")[0])
		assert.ErrorIs(t, err, models.ErrRemoteError)

		rows, _ := fake.snapshot()
		require.Len(t, rows, 2, "the row is appended exactly once")
		assert.Equal(t, "CEE001", rows[1][0])
	})

	t.Run("reads are retried", func(t *testing.T) {
		fake.mu.Lock()
		fake.flaky["get"] = 1
		fake.mu.Unlock()

		pulled, err := svc.Pull(ctx)
		require.NoError(t, err)
		require.Len(t, pulled, 1)
		assert.Equal(t, "CEE001", pulled[0].Tag)
	})
}

// Two pushes racing on the same tab are not coordinated. Every data row ends
// up belonging to one of the two inventories and the header survives, but
// which push wins is decided by request order.
func TestConcurrentPushesRace(t *testing.T) {
	ctx := context.Background()
	svc, fake := configured(t)
	require.NoError(t, svc.EnsureSheet(ctx))

	first := sampleAssets("A-1", "A-2")
	second := sampleAssets("B-1", "B-2")

	var wg sync.WaitGroup
	for _, set := range [][]models.Asset{first, second} {
		wg.Add(1)
		go func(assets []models.Asset) {
			defer wg.Done()
			assert.NoError(t, svc.Push(ctx, assets))
		}(set)
	}
	wg.Wait()

	rows, _ := fake.snapshot()
	require.Len(t, rows, 3)
	assert.Equal(t, models.AssetColumns, rows[0])
	for _, row := range rows[1:] {
		assert.Contains(t, []string{"A-1", "A-2", "B-1", "B-2"}, row[0])
	}
}
