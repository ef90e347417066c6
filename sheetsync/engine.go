package sheetsync

import (
	"fmt"
	"log"
	"strconv"
)

const generatedPasswordLength = 16

// syncEngine drives both sync directions for a single configuration. One
// instance serves one run (or one event-driven record push); it holds no
// durable state beyond the injected cache.
type syncEngine struct {
	cfg      Config
	store    ITabularStore
	dir      IDirectory
	cache    IGridCache
	roles    Set[string]
	disabled bool
	// inPull suppresses push triggers fired by pull's own directory
	// mutations, so the two directions cannot feed back into each other
	// within one run.
	inPull bool
}

// NewSheetSync builds the engine for one configuration. An incomplete
// configuration (missing spreadsheet id, fields, or roles) yields an inert
// engine whose operations are silent no-ops, matching the contract that
// configuration failures disable rather than raise.
func NewSheetSync(cfg Config, store ITabularStore, dir IDirectory, cache IGridCache) ISheetSync {
	var e = &syncEngine{
		cfg:   cfg,
		store: store,
		dir:   dir,
		cache: cache,
		roles: normalizeRoles(cfg.Roles),
	}
	if !cfg.Valid() || store == nil || dir == nil {
		log.Printf("sheetsync: invalid configuration %q: missing spreadsheet id, fields, or roles", cfg.Name)
		e.disabled = true
		return e
	}
	if cache == nil {
		e.cache = NewMemoryGridCache()
	}
	if !e.ensureSheetExists() {
		log.Printf("sheetsync: could not ensure sheet %q exists in spreadsheet %s", cfg.SheetTitle, cfg.SpreadsheetID)
	}
	return e
}

func (e *syncEngine) Config() *Config {
	return &e.cfg
}

func (e *syncEngine) roleIntersects(roles []string) bool {
	for r := range normalizeRoles(roles) {
		if e.roles.Has(r) {
			return true
		}
	}
	return false
}

/* ---------------- directory -> sheet ---------------- */

// PushRecord mirrors one directory record into the sheet: overwrite the
// matching row in place, or append a new one. Records outside the configured
// role set are ignored. Invoked directly and from directory lifecycle events.
func (e *syncEngine) PushRecord(user *UserRecord) (err error) {
	if e.disabled || e.inPull || user == nil {
		return
	}
	if !e.roleIntersects(user.Roles) {
		return
	}
	_, err = e.pushRecord(user)
	return
}

// pushRecord reports whether the record was appended (true) or overwritten.
func (e *syncEngine) pushRecord(user *UserRecord) (created bool, err error) {
	var grid *SheetGrid
	if grid, err = e.resolveColumns(); err != nil {
		return
	}
	var row = recordToRow(user, grid.Header, grid.Columns, e.cfg.Fields)
	defer e.cache.InvalidateGrid(e.cfg.SpreadsheetID, e.cfg.SheetTitle)
	if idx, ok := findRowForRecord(grid.Rows, grid.Columns, e.cfg.Fields, user.ID, user.Email); ok {
		err = e.store.UpdateRow(e.cfg.SpreadsheetID, e.rowRange(idx+1), row)
		return
	}
	err = e.store.AppendRow(e.cfg.SpreadsheetID, e.cfg.SheetTitle, row)
	created = err == nil
	return
}

// PushAll runs the bulk push: every directory record with a qualifying role,
// one row write each. Per-record failures are accumulated, never fatal.
func (e *syncEngine) PushAll() (result *SyncResult) {
	result = new(SyncResult)
	if e.disabled || e.inPull {
		return
	}
	users, err := e.dir.Users()
	if err != nil {
		result.errorf("list users: %v", err)
		return
	}
	for _, user := range users {
		if !e.roleIntersects(user.Roles) {
			result.Skipped++
			continue
		}
		created, err := e.pushRecord(user)
		switch {
		case err != nil:
			result.errorf("push user %d (%s): %v", user.ID, user.Email, err)
		case created:
			result.Created++
		default:
			result.Updated++
		}
	}
	return
}

// RemoveRecord deletes the row mirroring a directory record that was removed.
// The deletion is structural: following rows shift up.
func (e *syncEngine) RemoveRecord(user *UserRecord) (err error) {
	if e.disabled || e.inPull || user == nil {
		return
	}
	if !e.roleIntersects(user.Roles) {
		return
	}
	var grid *SheetGrid
	if grid, err = e.resolveColumns(); err != nil {
		return
	}
	idx, ok := findRowForRecord(grid.Rows, grid.Columns, e.cfg.Fields, user.ID, user.Email)
	if !ok {
		return
	}
	var sheetID int64
	if sheetID, err = e.sheetID(); err != nil {
		return
	}
	if err = e.store.DeleteRows(e.cfg.SpreadsheetID, sheetID, int64(idx), int64(idx+1)); err != nil {
		return
	}
	e.cache.InvalidateGrid(e.cfg.SpreadsheetID, e.cfg.SheetTitle)
	return
}

/* ---------------- sheet -> directory ---------------- */

// Pull walks the sheet's data rows and upserts directory records. Row-level
// failures are recorded and the pass continues; only a structural failure
// (unreachable grid, no email column) aborts.
func (e *syncEngine) Pull() (result *SyncResult) {
	result = new(SyncResult)
	if e.disabled {
		return
	}
	e.inPull = true
	defer func() { e.inPull = false }()

	grid, err := e.resolveColumns()
	if err != nil {
		result.errorf("resolve sheet %q: %v", e.cfg.SheetTitle, err)
		return
	}
	defer e.cache.InvalidateGrid(e.cfg.SpreadsheetID, e.cfg.SheetTitle)
	if len(grid.Rows) <= 1 {
		return
	}

	if _, ok := e.fieldColumn(grid.Columns, FieldEmail, DefaultEmailLabel); !ok {
		result.errorf("sheet %q has no email column; cannot match rows to users", e.cfg.SheetTitle)
		return
	}

	for i := 1; i < len(grid.Rows); i++ {
		var rowNum = i + 1 // 1-based sheet row
		var patch = rowToRecordPatch(grid.Rows[i], grid.Columns, e.cfg.Fields)

		if e.cfg.PullRoleFilter && !e.roles.Has(patch.Role) {
			result.Skipped++
			continue
		}
		if patch.ID == "" && patch.Email == "" {
			result.Skipped++
			continue
		}

		var existing *UserRecord
		if existing, err = findRecordForRow(e.dir, patch); err != nil {
			result.errorf("row %d: look up user: %v", rowNum, err)
			continue
		}

		var login = patch.Login
		if login == "" && patch.Email != "" {
			login = loginFromEmail(patch.Email)
		}

		var update = UserUpdate{
			Login:        login,
			Email:        patch.Email,
			FirstName:    patch.FirstName,
			LastName:     patch.LastName,
			HasFirstName: patch.HasFirstName,
			HasLastName:  patch.HasLastName,
		}

		if existing != nil {
			if err = e.dir.UpdateUser(existing.ID, update); err != nil {
				result.errorf("row %d: update user %d: %v", rowNum, existing.ID, err)
				continue
			}
			if e.roles.Has(patch.Role) {
				if err = e.dir.SetRole(existing.ID, patch.Role); err != nil {
					result.errorf("row %d: set role for user %d: %v", rowNum, existing.ID, err)
				}
			}
			e.writeMetaFields(existing.ID, patch.Meta, result, rowNum)
			result.Updated++
			continue
		}

		// New directory record. Both email and a resolvable login are
		// required; a row failing that is skipped without an error.
		if patch.Email == "" || login == "" {
			result.Skipped++
			continue
		}
		var createRole = patch.Role
		if !e.roles.Has(createRole) {
			createRole = e.cfg.FallbackRole()
		}
		var user = &UserRecord{
			Login:     login,
			Email:     patch.Email,
			FirstName: patch.FirstName,
			LastName:  patch.LastName,
			Roles:     []string{createRole},
		}
		newID, err := e.dir.CreateUser(user, generatePassword(generatedPasswordLength))
		if err != nil {
			result.errorf("row %d: create user %s: %v", rowNum, patch.Email, err)
			continue
		}
		e.writeMetaFields(newID, patch.Meta, result, rowNum)
		// Write the fresh id back into column A so the next pass matches
		// this row by id.
		if err = e.store.UpdateRow(e.cfg.SpreadsheetID, e.rowRange(rowNum), []string{strconv.FormatInt(newID, 10)}); err != nil {
			result.errorf("row %d: write back id %d: %v", rowNum, newID, err)
		}
		result.Created++
	}
	return
}

// writeMetaFields copies the decoded non-identity fields onto the user's
// metadata, verbatim. Mapping order keeps the writes deterministic.
func (e *syncEngine) writeMetaFields(userID int64, meta map[string]string, result *SyncResult, rowNum int) {
	for _, entry := range e.cfg.Fields {
		value, ok := meta[entry.Key]
		if !ok {
			continue
		}
		if err := e.dir.SetMeta(userID, entry.Key, value); err != nil {
			result.errorf("row %d: set %s for user %d: %v", rowNum, entry.Key, userID, err)
		}
	}
}

// fieldColumn resolves a built-in field's column: the configured label when
// mapped, else the conventional default label if the sheet happens to carry it.
func (e *syncEngine) fieldColumn(columns map[string]int, key, defaultLabel string) (idx int, ok bool) {
	if label, mapped := e.cfg.Fields.Label(key); mapped {
		if idx, ok = columns[label]; ok {
			return
		}
	}
	idx, ok = columns[defaultLabel]
	return
}

func (e *syncEngine) rowRange(rowNum int) string {
	return fmt.Sprintf("%s!A%d", e.cfg.SheetTitle, rowNum)
}
