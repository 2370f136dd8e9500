package sheetsservice

import (
	"bytes"
	"context"
	"fmt"
	"inventory/models"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/sheets/v4"
)

const (
	requestTimeout = 30 * time.Second
	retryWaitMin   = 500 * time.Millisecond
	// cap on error bodies copied into returned errors
	maxErrorBody = 512
)

// SheetsClient is the subset of the Sheets v4 REST API the sync uses. Every
// call is authorised with the API key from cfg.
type SheetsClient interface {
	GetSpreadsheet(ctx context.Context, cfg Config) (*sheets.Spreadsheet, error)
	BatchUpdate(ctx context.Context, cfg Config, req *sheets.BatchUpdateSpreadsheetRequest) error
	BatchClear(ctx context.Context, cfg Config, ranges ...string) error
	UpdateValues(ctx context.Context, cfg Config, rng string, values *sheets.ValueRange) error
	GetValues(ctx context.Context, cfg Config, rng string) (*sheets.ValueRange, error)
	AppendValues(ctx context.Context, cfg Config, rng string, values *sheets.ValueRange) error
}

type RESTClient struct {
	endpoint string
	client   *retryablehttp.Client
}

// NewRESTClient talks to endpoint (normally https://sheets.googleapis.com).
// Transient failures are retried up to retryMax times.
func NewRESTClient(endpoint string, retryMax int, logger *zap.Logger) SheetsClient {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = retryWaitMin
	client.HTTPClient.Timeout = requestTimeout
	// hand the last response back instead of a generic "giving up" error
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.CheckRetry = checkRetry
	if logger != nil && logger.Core().Enabled(zap.DebugLevel) {
		client.Logger = &leveledLogger{logger: logger.Sugar()}
	} else {
		client.Logger = nil
	}

	return &RESTClient{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   client,
	}
}

type noRetryKey struct{}

// checkRetry keeps the default policy except for calls marked with noRetryKey.
// An append or addSheet the server applied before failing must not be sent
// twice.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if once, _ := ctx.Value(noRetryKey{}).(bool); once {
		return false, ctx.Err()
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func (c *RESTClient) spreadsheetURL(cfg Config, suffix string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", cfg.APIKey)
	return c.endpoint + "/v4/spreadsheets/" + url.PathEscape(cfg.SpreadsheetID) + suffix + "?" + query.Encode()
}

func valuesPath(rng string) string {
	return "/values/" + url.PathEscape(rng)
}

func (c *RESTClient) do(ctx context.Context, method, target string, body, out interface{}) error {
	if method == http.MethodPost && (strings.Contains(target, ":append?") || strings.Contains(target, ":batchUpdate?")) {
		ctx = context.WithValue(ctx, noRetryKey{}, true)
	}

	var payload io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode sheets request")
		}
		payload = bytes.NewReader(raw)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return errors.Wrap(err, "failed to build sheets request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrRemoteError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s %s", models.ErrRemoteError, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", models.ErrRemoteError, err)
	}
	return nil
}

func (c *RESTClient) GetSpreadsheet(ctx context.Context, cfg Config) (*sheets.Spreadsheet, error) {
	var out sheets.Spreadsheet
	if err := c.do(ctx, http.MethodGet, c.spreadsheetURL(cfg, "", nil), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) BatchUpdate(ctx context.Context, cfg Config, req *sheets.BatchUpdateSpreadsheetRequest) error {
	return c.do(ctx, http.MethodPost, c.spreadsheetURL(cfg, ":batchUpdate", nil), req, nil)
}

func (c *RESTClient) BatchClear(ctx context.Context, cfg Config, ranges ...string) error {
	req := &sheets.BatchClearValuesRequest{Ranges: ranges}
	return c.do(ctx, http.MethodPost, c.spreadsheetURL(cfg, "/values:batchClear", nil), req, nil)
}

func (c *RESTClient) UpdateValues(ctx context.Context, cfg Config, rng string, values *sheets.ValueRange) error {
	query := url.Values{"valueInputOption": {"RAW"}}
	return c.do(ctx, http.MethodPut, c.spreadsheetURL(cfg, valuesPath(rng), query), values, nil)
}

func (c *RESTClient) GetValues(ctx context.Context, cfg Config, rng string) (*sheets.ValueRange, error) {
	var out sheets.ValueRange
	if err := c.do(ctx, http.MethodGet, c.spreadsheetURL(cfg, valuesPath(rng), nil), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) AppendValues(ctx context.Context, cfg Config, rng string, values *sheets.ValueRange) error {
	query := url.Values{"valueInputOption": {"RAW"}}
	return c.do(ctx, http.MethodPost, c.spreadsheetURL(cfg, valuesPath(rng)+":append", query), values, nil)
}

// leveledLogger adapts zap to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger *zap.SugaredLogger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, keysAndValues...)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Infow(msg, keysAndValues...)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warnw(msg, keysAndValues...)
}
