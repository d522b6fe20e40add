package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/4rinababan/chatfinance/internal/core"
	"github.com/4rinababan/chatfinance/internal/ledger"
)

// Column layout of the ledger sheet: A created_at (RFC3339), B type,
// C amount, D local transaction ID (empty when the sheet is the primary store).
const ledgerColumns = "A:D"

var (
	_ ledger.Store  = (*Client)(nil)
	_ ledger.Pinger = (*Client)(nil)
)

type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Ledger"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// NewFromEnv reads GOOGLE_SPREADSHEET_ID, GOOGLE_SHEET_NAME and the
// service account variables from the environment.
func NewFromEnv(ctx context.Context) (*Client, error) {
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return New(ctx, Config{
		SpreadsheetID:   strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
		CredentialsFile: file,
	})
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var (
		credentialsJSON []byte
		err             error
	)

	switch {
	case cfg.CredentialsJSON != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		slog.DebugContext(ctx, "Reading service account credentials", "path", cfg.CredentialsFile)
		credentialsJSON, err = os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Append adds one row and returns the updated A1 range.
func (c *Client) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!%s", c.sheetName, ledgerColumns)
	vr := &gsheet.ValueRange{Values: [][]interface{}{formatLedgerRow(tx)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// Sum reads every ledger row and totals the matching ones.
func (c *Client) Sum(ctx context.Context, t core.TransactionType, p core.Period) (int64, error) {
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!%s", c.sheetName, ledgerColumns)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}

	total, err := core.SumAmounts(parseLedgerRows(resp.Values), t, p)
	if err != nil {
		return 0, fmt.Errorf("sum %s rows: %w", t, err)
	}
	return total, nil
}

// Ping checks that the spreadsheet is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	return nil
}

func formatLedgerRow(tx core.Transaction) []interface{} {
	id := ""
	if tx.ID > 0 {
		id = strconv.FormatInt(tx.ID, 10)
	}
	return []interface{}{
		tx.CreatedAt.UTC().Format(time.RFC3339),
		string(tx.Type),
		tx.Amount,
		id,
	}
}

// parseLedgerRows converts sheet values into transactions. Header rows and
// rows that fail validation are skipped.
func parseLedgerRows(values [][]interface{}) []core.Transaction {
	out := make([]core.Transaction, 0, len(values))
	for _, row := range values {
		cols := toStrings(row)
		if len(cols) < 3 {
			continue
		}
		createdAt, err := time.Parse(time.RFC3339, cols[0])
		if err != nil {
			continue
		}
		amount, ok := parseAmount(cols[2])
		if !ok {
			continue
		}
		tx := core.Transaction{
			Type:      core.TransactionType(strings.ToLower(cols[1])),
			Amount:    amount,
			CreatedAt: createdAt.UTC(),
		}
		if len(cols) > 3 && cols[3] != "" {
			tx.ID, _ = strconv.ParseInt(cols[3], 10, 64)
		}
		if tx.Validate() != nil {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// parseAmount accepts plain integers and the thousands-separated form a
// sheet may render them in ("50,000" or "50.000").
func parseAmount(s string) (int64, bool) {
	s = strings.NewReplacer(",", "", ".", "", " ", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
