package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"showroom/internal/config"
	"showroom/internal/logging"

	"github.com/rs/zerolog"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var (
	ErrSpreadsheetNotFound = errors.New("spreadsheet not found")
	ErrWorksheetNotFound   = errors.New("worksheet not found")
)

// Scopes requested for the service account: read/write on sheets and
// read-only Drive access to resolve spreadsheets by name.
var Scopes = []string{sheets.SpreadsheetsScope, drive.DriveReadonlyScope}

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// Client is an authorized handle to the Sheets and Drive APIs.
type Client struct {
	sheets *sheets.Service
	drive  *drive.Service
	retry  RetryPolicy
	email  string
	logger *zerolog.Logger
}

// NewClient builds a client from a service-account key file.
func NewClient(ctx context.Context, cfg config.GoogleConfig, logger *zerolog.Logger) (*Client, error) {
	path := cfg.CredentialsFile
	if path == "" {
		path = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if path == "" {
		return nil, errors.New("google credentials file is not configured")
	}

	credentialsJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	creds, err := googleoauth.CredentialsFromJSON(ctx, credentialsJSON, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client, err := NewClientWithOptions(ctx, RetryPolicyFromConfig(cfg.Retry), logger, option.WithCredentials(creds))
	if err != nil {
		return nil, err
	}

	if email, err := ServiceAccountEmail(credentialsJSON); err == nil {
		client.email = email
	}
	return client, nil
}

// NewClientWithOptions builds a client from raw API options.
func NewClientWithOptions(ctx context.Context, retry RetryPolicy, logger *zerolog.Logger, opts ...option.ClientOption) (*Client, error) {
	sheetsSrv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	driveSrv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive service: %w", err)
	}

	return &Client{
		sheets: sheetsSrv,
		drive:  driveSrv,
		retry:  retry,
		logger: logging.Component(logger, "google"),
	}, nil
}

// Email returns the service account address the spreadsheet must be shared with.
func (c *Client) Email() string {
	return c.email
}

// ServiceAccountEmail extracts client_email from a service-account key.
func ServiceAccountEmail(credentialsJSON []byte) (string, error) {
	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(credentialsJSON, &creds); err != nil {
		return "", err
	}
	if creds.ClientEmail == "" {
		return "", errors.New("client_email missing from credentials")
	}
	return creds.ClientEmail, nil
}

// OpenWorksheet locates a worksheet by title. When spreadsheetID is empty the
// spreadsheet is looked up by name through Drive.
func (c *Client) OpenWorksheet(ctx context.Context, spreadsheetID, spreadsheetName, title string) (*Worksheet, error) {
	if spreadsheetID == "" {
		id, err := c.resolveSpreadsheetID(ctx, spreadsheetName)
		if err != nil {
			return nil, err
		}
		spreadsheetID = id
	}

	var ss *sheets.Spreadsheet
	err := c.retry.Do(ctx, func() error {
		var err error
		ss, err = c.sheets.Spreadsheets.Get(spreadsheetID).
			Fields("sheets.properties(sheetId,title)").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", spreadsheetID, err)
	}

	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			c.logger.Info().
				Str("spreadsheet_id", spreadsheetID).
				Str("worksheet", title).
				Int64("sheet_id", sh.Properties.SheetId).
				Msg("Worksheet opened")
			return &Worksheet{
				service:       c.sheets,
				spreadsheetID: spreadsheetID,
				title:         title,
				retry:         c.retry,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q in spreadsheet %s", ErrWorksheetNotFound, title, spreadsheetID)
}

func (c *Client) resolveSpreadsheetID(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: no spreadsheet id or name given", ErrSpreadsheetNotFound)
	}

	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), spreadsheetMimeType)

	var list *drive.FileList
	err := c.retry.Do(ctx, func() error {
		var err error
		list, err = c.drive.Files.List().
			Q(query).
			Fields("files(id,name)").
			PageSize(1).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("search spreadsheet %q: %w", name, err)
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("%w: %q", ErrSpreadsheetNotFound, name)
	}

	c.logger.Debug().Str("name", name).Str("spreadsheet_id", list.Files[0].Id).Msg("Spreadsheet resolved by name")
	return list.Files[0].Id, nil
}
