package sheetsync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
default_credentials: '{"type":"service_account"}'
configs:
  - name: film-companies
    spreadsheet_id: spread-1
    sheet_title: Companies
    roles: [company]
    auto_sync_push: true
    sync_interval: five_minutes
    fields:
      - field: user_email
        column: Email
      - field: user_login
        column: Username
      - field: company
        column: Company
  - name: editors
    spreadsheet_id: spread-2
    credentials: '{"type":"service_account","project_id":"own"}'
    roles: [editor]
    pull_role_filter: false
    fields:
      - field: user_email
        column: Email
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	var path = filepath.Join(t.TempDir(), "sheets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigs(t *testing.T) {
	configs, err := LoadConfigs(writeConfigFile(t, testConfigYAML))
	require.NoError(t, err)
	require.Len(t, configs, 2)

	var first = configs[0]
	assert.Equal(t, "film-companies", first.Name)
	assert.Equal(t, "Companies", first.SheetTitle)
	assert.Equal(t, IntervalFiveMinutes, first.Interval)
	assert.True(t, first.AutoSyncPush)
	assert.True(t, first.PullRoleFilter, "filtering is the default")
	assert.Equal(t, `{"type":"service_account"}`, first.Credentials, "default credentials are inherited")
	// mapping order is preserved
	assert.Equal(t, FieldMapping{
		{Key: FieldEmail, Label: "Email"},
		{Key: FieldLogin, Label: "Username"},
		{Key: "company", Label: "Company"},
	}, first.Fields)
	assert.True(t, first.Valid())

	var second = configs[1]
	assert.Equal(t, "Sheet1", second.SheetTitle, "title defaults")
	assert.Equal(t, IntervalHourly, second.Interval, "interval defaults")
	assert.False(t, second.PullRoleFilter)
	assert.Contains(t, second.Credentials, "own", "explicit credentials win over the default")
}

func TestLoadConfigsRejectsMalformedYAML(t *testing.T) {
	_, err := LoadConfigs(writeConfigFile(t, "configs: [an unclosed: ["))
	assert.Error(t, err)
}

func TestLoadConfigsMissingFile(t *testing.T) {
	_, err := LoadConfigs(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
