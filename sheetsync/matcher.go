package sheetsync

import "strconv"

// findRowForRecord locates the data row mirroring a directory record. Rows
// are scanned top to bottom and the first id or email match wins. When no
// email column is mapped the matcher fails closed: identity cannot be
// resolved reliably, so no row is ever returned.
func findRowForRecord(rows [][]string, columns map[string]int, fields FieldMapping, id int64, email string) (rowIndex int, ok bool) {
	var emailLabel = DefaultEmailLabel
	if label, mapped := fields.Label(FieldEmail); mapped {
		emailLabel = label
	}
	emailIdx, hasEmail := columns[emailLabel]
	if !hasEmail {
		return 0, false
	}

	var idStr string
	if id != 0 {
		idStr = strconv.FormatInt(id, 10)
	}
	for i := 1; i < len(rows); i++ {
		if idStr != "" && cell(rows[i], 0) == idStr {
			return i, true
		}
		if email != "" && cell(rows[i], emailIdx) == email {
			return i, true
		}
	}
	return 0, false
}

// findRecordForRow resolves the directory record a row refers to: numeric id
// first, then email. A nil record with nil error means no match.
func findRecordForRow(dir IDirectory, patch RowPatch) (user *UserRecord, err error) {
	if numericID, ok := toInt64(patch.ID); ok && patch.ID != "" {
		if user, err = dir.UserByID(numericID); err != nil || user != nil {
			return
		}
	}
	if patch.Email != "" {
		user, err = dir.UserByEmail(patch.Email)
	}
	return
}
