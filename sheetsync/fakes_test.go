package sheetsync

import (
	"fmt"
	"strconv"
	"strings"
)

// fakeStore is an in-memory ITabularStore holding a single spreadsheet.
type fakeStore struct {
	rows       map[string][][]string
	sheets     []SheetInfo
	nextID     int64
	updates    []string
	appends    int
	failGet    bool
	failCreate bool
}

func newFakeStore(title string, rows [][]string) *fakeStore {
	return &fakeStore{
		rows:   map[string][][]string{title: rows},
		sheets: []SheetInfo{{Title: title, SheetID: 100}},
		nextID: 101,
	}
}

func splitRange(a1Range string) (title string, rowNum int) {
	title = a1Range
	rowNum = 0
	if bang := strings.IndexByte(a1Range, '!'); bang >= 0 {
		title = a1Range[:bang]
		if n, err := strconv.Atoi(strings.TrimPrefix(a1Range[bang+1:], "A")); err == nil {
			rowNum = n
		}
	}
	return
}

func (fs *fakeStore) GetValues(spreadsheetID string, a1Range string) ([][]string, error) {
	if fs.failGet {
		return nil, fmt.Errorf("transport failure")
	}
	title, _ := splitRange(a1Range)
	rows, ok := fs.rows[title]
	if !ok {
		return nil, nil
	}
	var out = make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (fs *fakeStore) UpdateRow(spreadsheetID string, a1Range string, values []string) error {
	title, rowNum := splitRange(a1Range)
	if rowNum == 0 {
		return fmt.Errorf("bad range %q", a1Range)
	}
	fs.updates = append(fs.updates, a1Range)
	var rows = fs.rows[title]
	for len(rows) < rowNum {
		rows = append(rows, nil)
	}
	var row = rows[rowNum-1]
	for len(row) < len(values) {
		row = append(row, "")
	}
	copy(row, values)
	rows[rowNum-1] = row
	fs.rows[title] = rows
	return nil
}

func (fs *fakeStore) AppendRow(spreadsheetID string, sheetTitle string, values []string) error {
	fs.appends++
	fs.rows[sheetTitle] = append(fs.rows[sheetTitle], append([]string(nil), values...))
	return nil
}

func (fs *fakeStore) DeleteRows(spreadsheetID string, sheetID int64, startIndex int64, endIndex int64) error {
	for _, info := range fs.sheets {
		if info.SheetID != sheetID {
			continue
		}
		var rows = fs.rows[info.Title]
		fs.rows[info.Title] = append(rows[:startIndex], rows[endIndex:]...)
		return nil
	}
	return fmt.Errorf("no sheet with id %d", sheetID)
}

func (fs *fakeStore) Sheets(spreadsheetID string) ([]SheetInfo, error) {
	return fs.sheets, nil
}

func (fs *fakeStore) CreateSheet(spreadsheetID string, title string, rowCount int64, columnCount int64) error {
	if fs.failCreate {
		return fmt.Errorf("permission denied")
	}
	fs.sheets = append(fs.sheets, SheetInfo{Title: title, SheetID: fs.nextID})
	fs.nextID++
	if _, ok := fs.rows[title]; !ok {
		fs.rows[title] = nil
	}
	return nil
}

// fakeDirectory is an in-memory IDirectory. onUpdate simulates the
// directory's lifecycle events firing push triggers mid-run.
type fakeDirectory struct {
	nextID     int64
	users      map[int64]*UserRecord
	failUpdate map[int64]bool
	failCreate map[string]bool
	onUpdate   func(*UserRecord)
	metaWrites int
}

func newFakeDirectory(users ...*UserRecord) *fakeDirectory {
	var d = &fakeDirectory{
		nextID:     1,
		users:      make(map[int64]*UserRecord),
		failUpdate: make(map[int64]bool),
		failCreate: make(map[string]bool),
	}
	for _, u := range users {
		d.users[u.ID] = u
		if u.ID >= d.nextID {
			d.nextID = u.ID + 1
		}
	}
	return d
}

func (d *fakeDirectory) UserByID(id int64) (*UserRecord, error) {
	return d.users[id], nil
}

func (d *fakeDirectory) UserByEmail(email string) (*UserRecord, error) {
	for _, u := range d.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) Users() (users []*UserRecord, err error) {
	for id := int64(0); id < d.nextID; id++ {
		if u, ok := d.users[id]; ok {
			users = append(users, u)
		}
	}
	return
}

func (d *fakeDirectory) CreateUser(user *UserRecord, password string) (int64, error) {
	if d.failCreate[user.Email] {
		return 0, fmt.Errorf("directory rejected %s", user.Email)
	}
	if password == "" {
		return 0, fmt.Errorf("password required")
	}
	var u = *user
	u.ID = d.nextID
	u.Meta = map[string]string{}
	d.nextID++
	d.users[u.ID] = &u
	return u.ID, nil
}

func (d *fakeDirectory) UpdateUser(id int64, update UserUpdate) error {
	if d.failUpdate[id] {
		return fmt.Errorf("directory rejected update of %d", id)
	}
	u, ok := d.users[id]
	if !ok {
		return fmt.Errorf("no user %d", id)
	}
	u.Login = update.Login
	u.Email = update.Email
	if update.HasFirstName {
		u.FirstName = update.FirstName
	}
	if update.HasLastName {
		u.LastName = update.LastName
	}
	if d.onUpdate != nil {
		d.onUpdate(u)
	}
	return nil
}

func (d *fakeDirectory) SetRole(id int64, role string) error {
	u, ok := d.users[id]
	if !ok {
		return fmt.Errorf("no user %d", id)
	}
	u.Roles = []string{role}
	return nil
}

func (d *fakeDirectory) SetMeta(id int64, key string, value string) error {
	u, ok := d.users[id]
	if !ok {
		return fmt.Errorf("no user %d", id)
	}
	if u.Meta == nil {
		u.Meta = map[string]string{}
	}
	u.Meta[key] = value
	d.metaWrites++
	return nil
}
