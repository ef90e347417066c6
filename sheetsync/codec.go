package sheetsync

import (
	"strconv"
	"strings"
)

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// recordToRow encodes one directory record as a sheet row ordered by the
// column map. Cells without a mapped value stay empty; the row is always as
// wide as the header. Login and email are force-written from the canonical
// record so a stale mapping cannot desynchronize the identity columns.
func recordToRow(user *UserRecord, header []string, columns map[string]int, fields FieldMapping) []string {
	var row = make([]string, len(header))
	if len(row) == 0 {
		row = []string{""}
	}
	row[0] = strconv.FormatInt(user.ID, 10)

	for _, entry := range fields {
		idx, ok := columns[entry.Label]
		if !ok {
			continue
		}
		switch entry.Key {
		case FieldRole:
			row[idx] = strings.Join(user.Roles, ",")
		case FieldLogin:
			row[idx] = user.Login
		case FieldEmail:
			row[idx] = user.Email
		case FieldFirstName:
			row[idx] = user.FirstName
		case FieldLastName:
			row[idx] = user.LastName
		default:
			row[idx] = user.Meta[entry.Key]
		}
	}

	// Canonical identity cells win over whatever the mapping produced.
	if label, ok := fields.Label(FieldEmail); ok {
		if idx, ok := columns[label]; ok {
			row[idx] = user.Email
		}
	}
	if label, ok := fields.Label(FieldLogin); ok {
		if idx, ok := columns[label]; ok {
			row[idx] = user.Login
		}
	}
	return row
}

// RowPatch is the partial user record a sheet row decodes into. First/last
// name carry presence flags because an unmapped column must not blank the
// directory value.
type RowPatch struct {
	ID           string
	Email        string
	Login        string
	Role         string
	FirstName    string
	LastName     string
	HasFirstName bool
	HasLastName  bool
	Meta         map[string]string
}

// rowToRecordPatch decodes one sheet row through the column map. Identity
// fields fall back to their conventional labels when unmapped; every other
// configured field is copied verbatim as string metadata.
func rowToRecordPatch(row []string, columns map[string]int, fields FieldMapping) (patch RowPatch) {
	patch.ID = strings.TrimSpace(cell(row, 0))
	patch.Meta = make(map[string]string)

	var lookup = func(key, defaultLabel string) (int, bool) {
		if label, ok := fields.Label(key); ok {
			if idx, ok := columns[label]; ok {
				return idx, true
			}
		}
		idx, ok := columns[defaultLabel]
		return idx, ok
	}

	if idx, ok := lookup(FieldEmail, DefaultEmailLabel); ok {
		patch.Email = strings.TrimSpace(cell(row, idx))
	}
	if idx, ok := lookup(FieldLogin, DefaultLoginLabel); ok {
		patch.Login = strings.TrimSpace(cell(row, idx))
	}
	if idx, ok := lookup(FieldRole, DefaultRoleLabel); ok {
		patch.Role = strings.ToLower(strings.TrimSpace(cell(row, idx)))
	}
	if idx, ok := lookup(FieldFirstName, DefaultFirstNameLabel); ok {
		patch.FirstName = strings.TrimSpace(cell(row, idx))
		patch.HasFirstName = true
	}
	if idx, ok := lookup(FieldLastName, DefaultLastNameLabel); ok {
		patch.LastName = strings.TrimSpace(cell(row, idx))
		patch.HasLastName = true
	}

	for _, entry := range fields {
		switch entry.Key {
		case FieldLogin, FieldEmail, FieldRole, FieldFirstName, FieldLastName:
			continue
		}
		if idx, ok := columns[entry.Label]; ok {
			patch.Meta[entry.Key] = cell(row, idx)
		}
	}
	return
}
