package sheetsync

import (
	"errors"
	"fmt"
	"strings"

	ksm "github.com/keeper-security/secrets-manager-go/core"
)

// SyncParameters is everything one deployed sync run needs: the engine
// configuration plus the credentials for both external collaborators.
type SyncParameters struct {
	Config         Config
	Credentials    []byte
	DirectoryUrl   string
	DirectoryToken string
}

// LoadSyncParametersFromRecord reads sync parameters from a Keeper record:
// the service-account blob from the "credentials.json" attachment, the
// directory endpoint from the url field and password, and the sheet
// configuration from custom fields.
func LoadSyncParametersFromRecord(record *ksm.Record) (params *SyncParameters, err error) {
	var files = record.FindFiles("credentials.json")
	if len(files) == 0 {
		err = errors.New("record has no \"credentials.json\" attachment")
		return
	}

	params = &SyncParameters{
		Credentials:    files[0].GetFileData(),
		DirectoryUrl:   record.GetFieldValueByType("url"),
		DirectoryToken: record.Password(),
	}

	var cfg = Config{
		Name:           firstCustomFieldValue(record, "Name"),
		SheetTitle:     "Sheet1",
		Interval:       IntervalHourly,
		PullRoleFilter: true,
	}

	cfg.SpreadsheetID = firstCustomFieldValue(record, "Spreadsheet ID")
	if len(cfg.SpreadsheetID) == 0 {
		err = errors.New("\"Spreadsheet ID\" custom field is missing or empty")
		return
	}
	if title := firstCustomFieldValue(record, "Sheet Title"); len(title) > 0 {
		cfg.SheetTitle = title
	}
	if len(cfg.Name) == 0 {
		cfg.Name = cfg.SpreadsheetID
	}

	cfg.Roles = customFieldValues(record, "Roles")
	if len(cfg.Roles) == 0 {
		err = errors.New("\"Roles\" custom field is missing or does not contain any value")
		return
	}

	if mapping := customFieldValues(record, "Fields"); len(mapping) > 0 {
		if cfg.Fields, err = ParseFieldMapping(mapping); err != nil {
			err = fmt.Errorf("\"Fields\" custom field: %w", err)
			return
		}
	} else {
		cfg.Fields = DefaultFieldMapping(defaultCollaboratorGroups)
	}

	if interval := firstCustomFieldValue(record, "Sync Interval"); len(interval) > 0 {
		switch SyncInterval(interval) {
		case IntervalFiveMinutes, IntervalHourly, IntervalDaily:
			cfg.Interval = SyncInterval(interval)
		}
	}
	if fields := record.GetCustomFieldsByLabel("Pull Role Filter"); len(fields) > 0 {
		if bv, ok := toBoolean(fields[0]["value"]); ok {
			cfg.PullRoleFilter = bv
		}
	}

	params.Config = cfg
	return
}

// customFieldValues flattens a custom field's values, splitting multi-line
// and comma-separated entries.
func customFieldValues(record *ksm.Record, label string) (values []string) {
	for _, field := range record.GetCustomFieldsByLabel(label) {
		var v, ok = field["value"]
		if !ok || v == nil {
			continue
		}
		switch vt := v.(type) {
		case []any:
			for _, item := range vt {
				if s, ok := toString(item); ok {
					values = append(values, splitListValue(s)...)
				}
			}
		case string:
			values = append(values, splitListValue(vt)...)
		}
	}
	return
}

func firstCustomFieldValue(record *ksm.Record, label string) string {
	var values = customFieldValues(record, label)
	if len(values) > 0 {
		return values[0]
	}
	return ""
}

func splitListValue(raw string) (items []string) {
	for _, line := range strings.Split(raw, "\n") {
		for _, item := range strings.Split(line, ",") {
			item = strings.TrimSpace(item)
			if len(item) > 0 {
				items = append(items, item)
			}
		}
	}
	return
}

// ParseFieldMapping parses "field_key = Column Label" entries into an
// ordered mapping. A later duplicate key replaces the earlier entry's label.
func ParseFieldMapping(entries []string) (mapping FieldMapping, err error) {
	for _, entry := range entries {
		key, label, found := strings.Cut(entry, "=")
		if !found {
			err = fmt.Errorf("malformed mapping entry %q, want \"field = Column\"", entry)
			return
		}
		key = strings.TrimSpace(key)
		label = strings.TrimSpace(label)
		if key == "" || label == "" {
			err = fmt.Errorf("malformed mapping entry %q, want \"field = Column\"", entry)
			return
		}
		var replaced bool
		for i := range mapping {
			if mapping[i].Key == key {
				mapping[i].Label = label
				replaced = true
				break
			}
		}
		if !replaced {
			mapping = append(mapping, FieldEntry{Key: key, Label: label})
		}
	}
	return
}

func toBoolean(intf any) (result bool, ok bool) {
	if intf == nil {
		return
	}
	var supportedValue any
	switch fv := intf.(type) {
	case bool, string:
		supportedValue = fv
	case []any:
		if len(fv) > 0 {
			switch fv[0].(type) {
			case bool, string:
				supportedValue = fv[0]
			}
		}
	}
	if supportedValue != nil {
		switch fv := supportedValue.(type) {
		case bool:
			result = fv
			ok = true
		case string:
			switch strings.ToLower(fv) {
			case "1", "true", "ok":
				result = true
				ok = true
			case "0", "false":
				result = false
				ok = true
			}
		}
	}
	return
}
