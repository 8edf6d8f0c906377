// Package sheets exports monthly financial summaries to a Google
// spreadsheet. The export is append-only; each refresh adds a row rather
// than editing history.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"plutus/internal/config"
	"plutus/internal/core"
	"plutus/internal/storage"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// ErrDisabled is returned by NewFromConfig when no spreadsheet is
// configured. Callers run without an exporter in that case.
var ErrDisabled = errors.New("sheets export not configured")

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string

	now func() time.Time
}

// NewFromConfig builds a client from the Google OAuth settings. The token
// comes from cmd/oauth-init; either inline JSON or file paths are accepted.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, ErrDisabled
	}

	clientJSON, err := readCredential(cfg.GoogleOAuthClientJSON, cfg.GoogleOAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("load oauth client: %w", err)
	}
	tokenJSON, err := readCredential(cfg.GoogleOAuthTokenJSON, cfg.GoogleOAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("load oauth token: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(oauthCfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "sheets export enabled",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
		now:           time.Now,
	}, nil
}

func readCredential(inline, file string) ([]byte, error) {
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		return data, nil
	default:
		return nil, errors.New("no credential provided")
	}
}

// ExportMonthlySummary appends one summary row:
// exported-at, owner, year, month (1-based for the sheet), income,
// expenses, net savings, remainder, status.
func (c *Client) ExportMonthlySummary(ctx context.Context, owner storage.User, year, month int, summary core.MonthlySummary) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row := []any{
		c.now().UTC().Format(time.RFC3339),
		owner.DisplayName,
		year,
		month + 1,
		summary.TotalIncome.String(),
		summary.TotalExpenses.String(),
		summary.TotalSavings.String(),
		summary.Remainder.String(),
		summary.Status,
	}

	rng := fmt.Sprintf("%s!A:I", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append summary row to %s: %w", c.sheetName, err)
	}

	slog.InfoContext(ctx, "exported monthly summary",
		"owner_id", owner.ID,
		"year", year,
		"month", month)
	return nil
}
