package sheetsync

import (
	"fmt"
	"strings"
	"time"
)

// SyncInterval is the auto-sync cadence a configuration opts into.
type SyncInterval string

const (
	IntervalFiveMinutes SyncInterval = "five_minutes"
	IntervalHourly      SyncInterval = "hourly"
	IntervalDaily       SyncInterval = "daily"
)

func (i SyncInterval) Duration() time.Duration {
	switch i {
	case IntervalFiveMinutes:
		return 5 * time.Minute
	case IntervalDaily:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

// Sync directions, used for last-run bookkeeping.
const (
	DirectionPush = "push"
	DirectionPull = "pull"
)

// FieldEntry maps a directory field key to a sheet column label.
type FieldEntry struct {
	Key   string `yaml:"field"`
	Label string `yaml:"column"`
}

// FieldMapping is an ordered field-key -> column-label mapping. Order defines
// the default column order when the header is created.
type FieldMapping []FieldEntry

func (fm FieldMapping) Label(key string) (label string, ok bool) {
	for _, e := range fm {
		if e.Key == key {
			return e.Label, true
		}
	}
	return
}

func (fm FieldMapping) Labels() (labels []string) {
	for _, e := range fm {
		labels = append(labels, e.Label)
	}
	return
}

// Built-in identity field keys. Everything else in a FieldMapping is
// free-form metadata.
const (
	FieldLogin     = "user_login"
	FieldEmail     = "user_email"
	FieldRole      = "role"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
)

// Default column labels used when a built-in field has no configured mapping
// but the sheet carries the conventional header.
const (
	DefaultLoginLabel     = "Username"
	DefaultEmailLabel     = "Email"
	DefaultRoleLabel      = "User Role"
	DefaultFirstNameLabel = "First Name"
	DefaultLastNameLabel  = "Last Name"
)

// Config is one sheet synchronization, immutable for the duration of a run.
type Config struct {
	Name          string       `yaml:"name"`
	SpreadsheetID string       `yaml:"spreadsheet_id"`
	SheetTitle    string       `yaml:"sheet_title"`
	Fields        FieldMapping `yaml:"fields"`
	Roles         []string     `yaml:"roles"`
	Credentials   string       `yaml:"credentials"`
	AutoSyncPush  bool         `yaml:"auto_sync_push"`
	AutoSyncPull  bool         `yaml:"auto_sync_pull"`
	Interval      SyncInterval `yaml:"sync_interval"`
	// PullRoleFilter skips sheet rows whose role is outside Roles before any
	// directory lookup. When false every row is processed and an invalid
	// role falls back to the first configured role on create. Defaults to
	// true in both config loaders.
	PullRoleFilter bool `yaml:"-"`
}

// Valid reports whether the configuration can drive a sync at all. An
// invalid configuration makes the engine inert rather than failing loudly.
func (c *Config) Valid() bool {
	return len(c.SpreadsheetID) > 0 && len(c.Fields) > 0 && len(c.Roles) > 0
}

// FallbackRole is assigned on create when a row carries no acceptable role.
// Normalized like every other role comparison so a padded or mixed-case
// configured role still passes the gate on the next pull.
func (c *Config) FallbackRole() string {
	if len(c.Roles) > 0 {
		return strings.ToLower(strings.TrimSpace(c.Roles[0]))
	}
	return ""
}

// UserRecord is the directory's view of one account.
type UserRecord struct {
	ID        int64
	Login     string
	Email     string
	FirstName string
	LastName  string
	Roles     []string
	Meta      map[string]string
}

// UserUpdate carries the identity attributes an update writes back to the
// directory. First/last name are only applied when the sheet maps them.
type UserUpdate struct {
	Login        string
	Email        string
	FirstName    string
	LastName     string
	HasFirstName bool
	HasLastName  bool
}

// SyncResult accumulates the outcome of one directional pass. Row-level
// failures land in Errors; they never abort the pass.
type SyncResult struct {
	Created int
	Updated int
	Skipped int
	Errors  []string
}

func (r *SyncResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// SheetInfo describes one sheet inside a spreadsheet.
type SheetInfo struct {
	Title   string
	SheetID int64
}

// ITabularStore is the remote spreadsheet-like grid store. Implementations
// own transport and auth; row/column semantics live in the engine.
type ITabularStore interface {
	GetValues(spreadsheetID string, a1Range string) ([][]string, error)
	UpdateRow(spreadsheetID string, a1Range string, values []string) error
	AppendRow(spreadsheetID string, sheetTitle string, values []string) error
	DeleteRows(spreadsheetID string, sheetID int64, startIndex int64, endIndex int64) error
	Sheets(spreadsheetID string) ([]SheetInfo, error)
	CreateSheet(spreadsheetID string, title string, rowCount int64, columnCount int64) error
}

// IDirectory is the external user-identity store.
type IDirectory interface {
	UserByID(id int64) (*UserRecord, error)
	UserByEmail(email string) (*UserRecord, error)
	Users() ([]*UserRecord, error)
	CreateUser(user *UserRecord, password string) (int64, error)
	UpdateUser(id int64, update UserUpdate) error
	SetRole(id int64, role string) error
	SetMeta(id int64, key string, value string) error
}

// SheetGrid is one resolved snapshot of a sheet: raw rows, the header, and
// the derived column map (trimmed label -> zero-based index).
type SheetGrid struct {
	Rows    [][]string
	Header  []string
	Columns map[string]int
}

// IGridCache caches resolved grids and sheet ids between remote reads within
// a run. Implementations are injected so tests can use an in-memory fake.
type IGridCache interface {
	GetGrid(spreadsheetID, sheetTitle string) (*SheetGrid, bool)
	PutGrid(spreadsheetID, sheetTitle string, grid *SheetGrid, ttl time.Duration)
	InvalidateGrid(spreadsheetID, sheetTitle string)
	GetSheetID(spreadsheetID, sheetTitle string) (int64, bool)
	PutSheetID(spreadsheetID, sheetTitle string, sheetID int64, ttl time.Duration)
	InvalidateSheetID(spreadsheetID, sheetTitle string)
}

// ISheetSync is the synchronization engine: both directional passes plus the
// single-record entry points the directory's lifecycle events feed into.
type ISheetSync interface {
	Config() *Config
	PushRecord(user *UserRecord) error
	RemoveRecord(user *UserRecord) error
	PushAll() *SyncResult
	Pull() *SyncResult
}
