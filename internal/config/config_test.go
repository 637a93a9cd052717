package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SHOWROOM_SHEET_ID", "sheet-from-env")

	yamlContent := `
app:
  name: "showroom"
  timezone: "Asia/Kolkata"
google:
  credentials_file: "credentials.json"
  spreadsheet_id: "${SHOWROOM_SHEET_ID}"
  retry:
    max_retries: 3
    initial_delay: 500ms
api:
  enabled: true
  quota:
    limit: 100
  auth:
    api_keys:
      - key: "k1"
        extra: "e1"
        name: "agent"
        permissions: ["read:bookings"]
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "sheet-from-env", cfg.Google.SpreadsheetID)
	assert.Equal(t, "Booking", cfg.Google.WorksheetName)
	assert.Equal(t, 3, cfg.Google.Retry.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Google.Retry.InitialDelay)
	assert.True(t, cfg.API.HTTP.Enabled)
	assert.Equal(t, 8080, cfg.API.HTTP.Port)
	assert.Equal(t, 8081, cfg.API.GRPC.Port)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, time.Minute, cfg.API.Quota.Window)
	assert.Equal(t, "showroom:bookings:audit", cfg.Redis.AuditKey)
	assert.Equal(t, "Asia/Kolkata", cfg.App.Location().String())
	require.Len(t, cfg.API.Auth.APIKeys, 1)
	assert.Equal(t, []string{"read:bookings"}, cfg.API.Auth.APIKeys[0].Permissions)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid by id",
			cfg: Config{
				Google: GoogleConfig{CredentialsFile: "c.json", SpreadsheetID: "id"},
			},
		},
		{
			name: "valid by name",
			cfg: Config{
				Google: GoogleConfig{CredentialsFile: "c.json", SpreadsheetName: "Vivah Showroom DB"},
			},
		},
		{
			name:    "missing credentials",
			cfg:     Config{Google: GoogleConfig{SpreadsheetID: "id"}},
			wantErr: true,
		},
		{
			name:    "missing spreadsheet",
			cfg:     Config{Google: GoogleConfig{CredentialsFile: "c.json"}},
			wantErr: true,
		},
		{
			name: "bad timezone",
			cfg: Config{
				App:    AppConfig{Timezone: "Mars/Olympus"},
				Google: GoogleConfig{CredentialsFile: "c.json", SpreadsheetID: "id"},
			},
			wantErr: true,
		},
		{
			name: "duplicate api key",
			cfg: Config{
				Google: GoogleConfig{CredentialsFile: "c.json", SpreadsheetID: "id"},
				API: APIConfig{Auth: APIAuthConfig{APIKeys: []APIClientKey{
					{Key: "k", Name: "a"},
					{Key: "k", Name: "b"},
				}}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLocationFallback(t *testing.T) {
	assert.Equal(t, time.Local, AppConfig{}.Location())
	assert.Equal(t, time.Local, AppConfig{Timezone: "Nowhere/Invalid"}.Location())
}
