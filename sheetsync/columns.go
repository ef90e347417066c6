package sheetsync

import (
	"fmt"
	"log"
	"strings"

	"golang.org/x/text/cases"
)

// Default grid size for sheets this sync creates.
const (
	defaultRowCount    = 1000
	defaultColumnCount = 26
)

// headerMarker is the literal required in the header's first cell. Its
// absence means the sheet is not owned by this sync yet and the header gets
// regenerated.
const headerMarker = "ID"

var titleFolder = cases.Fold()

// expectedHeader is ["ID"] followed by the configured column labels in
// mapping order.
func expectedHeader(fields FieldMapping) []string {
	return append([]string{headerMarker}, fields.Labels()...)
}

// columnMap derives the trimmed label -> zero-based index map from a header
// row. Later duplicate labels overwrite earlier ones.
func columnMap(header []string) map[string]int {
	var m = make(map[string]int, len(header))
	for i, label := range header {
		m[strings.TrimSpace(label)] = i
	}
	return m
}

func headerOwned(header []string) bool {
	return len(header) > 0 && strings.EqualFold(strings.TrimSpace(header[0]), headerMarker)
}

// resolveColumns reads the sheet grid and guarantees a usable header,
// rewriting row 0 with the expected header when the sheet is unowned. Data
// rows are never touched. Results are cached for a few minutes; every row
// mutation invalidates the entry.
func (e *syncEngine) resolveColumns() (grid *SheetGrid, err error) {
	if grid, _ = e.cache.GetGrid(e.cfg.SpreadsheetID, e.cfg.SheetTitle); grid != nil {
		return
	}
	var rows [][]string
	if rows, err = e.store.GetValues(e.cfg.SpreadsheetID, e.cfg.SheetTitle); err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", e.cfg.SheetTitle, err)
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	if !headerOwned(header) {
		header = expectedHeader(e.cfg.Fields)
		if err = e.store.UpdateRow(e.cfg.SpreadsheetID, e.cfg.SheetTitle+"!A1", header); err != nil {
			return nil, fmt.Errorf("write header to sheet %q: %w", e.cfg.SheetTitle, err)
		}
		log.Printf("sheetsync: regenerated header of sheet %q in spreadsheet %s", e.cfg.SheetTitle, e.cfg.SpreadsheetID)
		if rows, err = e.store.GetValues(e.cfg.SpreadsheetID, e.cfg.SheetTitle); err != nil {
			return nil, fmt.Errorf("re-read sheet %q: %w", e.cfg.SheetTitle, err)
		}
		if len(rows) == 0 {
			rows = [][]string{header}
		} else {
			rows[0] = header
		}
	}

	grid = &SheetGrid{Rows: rows, Header: header, Columns: columnMap(header)}
	e.cache.PutGrid(e.cfg.SpreadsheetID, e.cfg.SheetTitle, grid, gridCacheTTL)
	return
}

// sheetID resolves the numeric sheet id for the configured title,
// case-insensitively, through the hour-scale id cache.
func (e *syncEngine) sheetID() (sheetID int64, err error) {
	if id, ok := e.cache.GetSheetID(e.cfg.SpreadsheetID, e.cfg.SheetTitle); ok {
		return id, nil
	}
	var sheets []SheetInfo
	if sheets, err = e.store.Sheets(e.cfg.SpreadsheetID); err != nil {
		return 0, fmt.Errorf("get spreadsheet %s metadata: %w", e.cfg.SpreadsheetID, err)
	}
	var want = titleFolder.String(e.cfg.SheetTitle)
	for _, s := range sheets {
		if titleFolder.String(s.Title) == want {
			e.cache.PutSheetID(e.cfg.SpreadsheetID, e.cfg.SheetTitle, s.SheetID, sheetIDCacheTTL)
			return s.SheetID, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet %s", e.cfg.SheetTitle, e.cfg.SpreadsheetID)
}

// ensureSheetExists creates the configured sheet when the spreadsheet lacks
// it. Returns false when the id still cannot be resolved after creation,
// which aborts any run depending on it.
func (e *syncEngine) ensureSheetExists() bool {
	if _, err := e.sheetID(); err == nil {
		return true
	}
	if err := e.store.CreateSheet(e.cfg.SpreadsheetID, e.cfg.SheetTitle, defaultRowCount, defaultColumnCount); err != nil {
		log.Printf("sheetsync: create sheet %q in spreadsheet %s: %v", e.cfg.SheetTitle, e.cfg.SpreadsheetID, err)
		return false
	}
	e.cache.InvalidateSheetID(e.cfg.SpreadsheetID, e.cfg.SheetTitle)
	if _, err := e.sheetID(); err != nil {
		log.Printf("sheetsync: sheet id unresolved after creating %q in spreadsheet %s: %v", e.cfg.SheetTitle, e.cfg.SpreadsheetID, err)
		return false
	}
	return true
}
