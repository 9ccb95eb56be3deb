// Package google is the Table backend over a Google Sheets workbook, one
// worksheet tab per table kind.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/store"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var errClosed = errors.New("sheets client closed")

// Config describes the workbook and how to authenticate against it.
type Config struct {
	SpreadsheetID string
	// Sheets maps each kind to its tab title. Missing entries use
	// DefaultSheetNames.
	Sheets map[core.Kind]string
	// CredentialsJSON or CredentialsFile hold a service account key.
	CredentialsJSON []byte
	CredentialsFile string
	// HTTPClient replaces the authenticated transport; credentials are then
	// not required. Tests point it at a fake endpoint.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// DefaultSheetNames returns the default tab title of every kind.
func DefaultSheetNames() map[core.Kind]string {
	return map[core.Kind]string{
		core.KindIncome:        "Income",
		core.KindExpense:       "Expenses",
		core.KindCategory:      "Categories",
		core.KindPaymentMethod: "PaymentMethods",
		core.KindCard:          "Cards",
	}
}

type Client struct {
	mu            sync.RWMutex
	svc           *gsheet.Service
	httpClient    *http.Client
	spreadsheetID string
	sheets        map[core.Kind]string
	logger        *slog.Logger
}

var _ store.Table = (*Client)(nil)

// Open builds the Sheets service. It does not contact the API; use Ping to
// check access.
func Open(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	names := DefaultSheetNames()
	for k, v := range cfg.Sheets {
		if v = strings.TrimSpace(v); v != "" {
			names[k] = v
		}
	}

	svcOpts, err := clientOptions(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx, append(svcOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", spreadsheetID)
	return &Client{
		svc:           svc,
		httpClient:    cfg.HTTPClient,
		spreadsheetID: spreadsheetID,
		sheets:        names,
		logger:        logger,
	}, nil
}

// clientOptions resolves service account credentials: inline JSON first,
// then a key file.
func clientOptions(ctx context.Context, cfg Config, logger *slog.Logger) ([]goption.ClientOption, error) {
	if cfg.HTTPClient != nil {
		return []goption.ClientOption{goption.WithHTTPClient(cfg.HTTPClient)}, nil
	}

	var credentialsJSON []byte
	switch {
	case len(cfg.CredentialsJSON) > 0:
		logger.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = cfg.CredentialsJSON
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		logger.InfoContext(ctx, "Reading credentials from file", "path", cfg.CredentialsFile)
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	return []goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, nil
}

// SheetName returns the tab title used for kind.
func (c *Client) SheetName(kind core.Kind) string {
	return c.sheets[kind]
}

func (c *Client) service() (*gsheet.Service, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.svc == nil {
		return nil, errClosed
	}
	return c.svc, nil
}

// ReadRows reads the whole tab of kind, header included, as displayed in
// the sheet.
func (c *Client) ReadRows(ctx context.Context, kind core.Kind) ([][]string, error) {
	svc, err := c.service()
	if err != nil {
		return nil, err
	}
	rng, err := c.columnsRange(kind)
	if err != nil {
		return nil, err
	}
	resp, err := svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		out = append(out, toStrings(row))
	}
	c.logger.DebugContext(ctx, "Read sheet rows", "range", rng, "rows", len(out))
	return out, nil
}

// AppendRow appends one row after the last non-empty row of the tab.
// Values are stored as given, without locale parsing.
func (c *Client) AppendRow(ctx context.Context, kind core.Kind, row []any) error {
	svc, err := c.service()
	if err != nil {
		return err
	}
	name, ok := c.sheets[kind]
	if !ok {
		return fmt.Errorf("unknown table %q", kind)
	}
	rng := quoteSheet(name) + "!A1"
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", rng, err)
	}
	if resp.Updates != nil {
		c.logger.DebugContext(ctx, "Appended sheet row", "range", resp.Updates.UpdatedRange)
	}
	return nil
}

// Ping checks the spreadsheet is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	svc, err := c.service()
	if err != nil {
		return err
	}
	if _, err := svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
		return fmt.Errorf("get spreadsheet %s: %w", c.spreadsheetID, err)
	}
	return nil
}

// Close releases idle connections. Later calls fail.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.svc = nil
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}

func (c *Client) columnsRange(kind core.Kind) (string, error) {
	name, ok := c.sheets[kind]
	if !ok {
		return "", fmt.Errorf("unknown table %q", kind)
	}
	return fmt.Sprintf("%s!A:%s", quoteSheet(name), store.SchemaFor(kind).LastColumn()), nil
}

// quoteSheet quotes a tab title for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}
