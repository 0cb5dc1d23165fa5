package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"finance/internal/core"
	"finance/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Row layout written for each transaction.
var header = []any{"Date", "Type", "Category", "Amount", "Note", "ID"}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ sheets.TransactionExporter = (*Client)(nil)

// Options selects the spreadsheet and the credentials used to reach it.
// An OAuth user client wins over a service account.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string

	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenJSON  string
	OAuthTokenFile  string
}

// NewFromEnv creates a client from GOOGLE_SPREADSHEET_ID, GOOGLE_SHEET_NAME
// (default "Transactions") and either the GOOGLE_OAUTH_* user credentials
// or the GOOGLE_SERVICE_ACCOUNT_* service account.
func NewFromEnv(ctx context.Context) (*Client, error) {
	env := func(key string) string { return strings.TrimSpace(os.Getenv(key)) }
	opts := Options{
		SpreadsheetID:   env("GOOGLE_SPREADSHEET_ID"),
		SheetName:       env("GOOGLE_SHEET_NAME"),
		CredentialsJSON: env("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: env("GOOGLE_SERVICE_ACCOUNT_FILE"),
		OAuthClientJSON: env("GOOGLE_OAUTH_CLIENT_JSON"),
		OAuthClientFile: env("GOOGLE_OAUTH_CLIENT_FILE"),
		OAuthTokenJSON:  env("GOOGLE_OAUTH_TOKEN_JSON"),
		OAuthTokenFile:  env("GOOGLE_OAUTH_TOKEN_FILE"),
	}
	return New(ctx, opts)
}

// New creates a client. Without explicit credentials the Google client
// falls back to application default credentials; extra options are
// applied last.
func New(ctx context.Context, opts Options, extra ...goption.ClientOption) (*Client, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if opts.SheetName == "" {
		opts.SheetName = "Transactions"
	}

	clientOpts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}
	userAuth, err := oauthOption(ctx, opts)
	if err != nil {
		return nil, err
	}
	if userAuth != nil {
		clientOpts = append(clientOpts, userAuth)
	} else {
		creds, err := inlineOrFile(opts.CredentialsJSON, opts.CredentialsFile, "service account")
		if err != nil {
			return nil, err
		}
		if creds != nil {
			clientOpts = append(clientOpts, goption.WithCredentialsJSON(creds))
		}
	}
	clientOpts = append(clientOpts, extra...)

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets export enabled", "sheet", opts.SheetName)

	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     opts.SheetName,
	}, nil
}

// EnsureHeader writes the column titles when the sheet's first row is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:F1", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheetName, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{header}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheetName, err)
	}
	return nil
}

// ExportTransaction appends [date, type, category, amount, note, id] and
// returns the range the row landed in.
func (c *Client) ExportTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row := []any{t.Date.String(), string(t.Type), t.Category, t.Amount, t.Note, t.ID}
	rng := fmt.Sprintf("%s!A:F", c.sheetName)

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append transaction %d to %s: %w", t.ID, c.sheetName, err)
	}

	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}
