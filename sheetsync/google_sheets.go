package sheetsync

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type googleSheetsStore struct {
	service *sheets.Service
}

// NewGoogleSheetsStore creates an ITabularStore backed by the Google Sheets
// API.
// credentials: GCP service account JWT credentials (the per-configuration
// blob, or the process-wide default when the configuration carries none).
func NewGoogleSheetsStore(ctx context.Context, credentials []byte) (ITabularStore, error) {
	params := google.CredentialsParams{
		Scopes: []string{sheets.SpreadsheetsScope},
	}
	cred, err := google.CredentialsFromJSONWithParams(ctx, credentials, params)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	service, err := sheets.NewService(ctx, option.WithCredentials(cred))
	if err != nil {
		return nil, fmt.Errorf("google sheets API: %w", err)
	}
	return &googleSheetsStore{service: service}, nil
}

func (gs *googleSheetsStore) GetValues(spreadsheetID string, a1Range string) (rows [][]string, err error) {
	var resp *sheets.ValueRange
	if resp, err = gs.service.Spreadsheets.Values.Get(spreadsheetID, a1Range).Do(); err != nil {
		return
	}
	for _, r := range resp.Values {
		var row = make([]string, len(r))
		for i, v := range r {
			if s, ok := toString(v); ok {
				row[i] = s
			} else if v != nil {
				row[i] = fmt.Sprint(v)
			}
		}
		rows = append(rows, row)
	}
	return
}

func (gs *googleSheetsStore) UpdateRow(spreadsheetID string, a1Range string, values []string) (err error) {
	_, err = gs.service.Spreadsheets.Values.
		Update(spreadsheetID, a1Range, singleRowValueRange(values)).
		ValueInputOption("RAW").Do()
	return
}

func (gs *googleSheetsStore) AppendRow(spreadsheetID string, sheetTitle string, values []string) (err error) {
	_, err = gs.service.Spreadsheets.Values.
		Append(spreadsheetID, sheetTitle, singleRowValueRange(values)).
		ValueInputOption("RAW").Do()
	return
}

func (gs *googleSheetsStore) DeleteRows(spreadsheetID string, sheetID int64, startIndex int64, endIndex int64) (err error) {
	var request = &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: startIndex,
					EndIndex:   endIndex,
				},
			},
		}},
	}
	_, err = gs.service.Spreadsheets.BatchUpdate(spreadsheetID, request).Do()
	return
}

func (gs *googleSheetsStore) Sheets(spreadsheetID string) (infos []SheetInfo, err error) {
	var ss *sheets.Spreadsheet
	if ss, err = gs.service.Spreadsheets.Get(spreadsheetID).Do(); err != nil {
		return
	}
	for _, sheet := range ss.Sheets {
		if sheet.Properties == nil {
			continue
		}
		infos = append(infos, SheetInfo{Title: sheet.Properties.Title, SheetID: sheet.Properties.SheetId})
	}
	return
}

func (gs *googleSheetsStore) CreateSheet(spreadsheetID string, title string, rowCount int64, columnCount int64) (err error) {
	var request = &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: title,
					GridProperties: &sheets.GridProperties{
						RowCount:    rowCount,
						ColumnCount: columnCount,
					},
				},
			},
		}},
	}
	_, err = gs.service.Spreadsheets.BatchUpdate(spreadsheetID, request).Do()
	return
}

func singleRowValueRange(values []string) *sheets.ValueRange {
	var row = make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return &sheets.ValueRange{Values: [][]interface{}{row}}
}
