// Package customer implements the Customer Directory (CD): a phone-number
// to address lookup loaded from a CSV export and reloaded when the file
// changes on disk, following the teacher's mutex-guarded lazy-reload style
// used by internal/database's query logger for shared in-process state.
package customer

import (
	"encoding/csv"
	"os"
	"strings"
	"sync"
	"time"
)

// Record is spec.md §3's CustomerRecord entity.
type Record struct {
	Phone       string
	Mobile      string
	Street      string
	HouseNumber string
	Postcode    string
	FirstName   string
	LastName    string
}

// Directory is the CD component. It lazily loads the CSV on first lookup
// and reloads it whenever the file's mtime advances.
type Directory struct {
	path string

	mu      sync.RWMutex
	loaded  bool
	modTime time.Time
	byPhone map[string]Record
	byLast8 map[string]Record
}

// New creates a Directory backed by the CSV file at path. Loading is
// deferred to the first Lookup call.
func New(path string) *Directory {
	return &Directory{path: path}
}

// Lookup finds a customer by phone number. It first tries an exact digit
// match, then falls back to matching the last 8 digits, per spec.md §4.7.
func (d *Directory) Lookup(phone string) (Record, bool) {
	if err := d.ensureLoaded(); err != nil {
		return Record{}, false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	digits := onlyDigits(phone)
	if rec, ok := d.byPhone[digits]; ok {
		return rec, true
	}
	if len(digits) >= 8 {
		last8 := digits[len(digits)-8:]
		if rec, ok := d.byLast8[last8]; ok {
			return rec, true
		}
	}
	return Record{}, false
}

func (d *Directory) ensureLoaded() error {
	info, err := os.Stat(d.path)
	if err != nil {
		return err
	}

	d.mu.RLock()
	current := d.loaded && !info.ModTime().After(d.modTime)
	d.mu.RUnlock()
	if current {
		return nil
	}

	byPhone, byLast8, err := loadCSV(d.path)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.byPhone = byPhone
	d.byLast8 = byLast8
	d.modTime = info.ModTime()
	d.loaded = true
	d.mu.Unlock()
	return nil
}

// loadCSV parses the customer export. Header row (case-insensitive,
// order-independent) per spec.md §6: phone, mobile, postcode, street1,
// house_number, and optionally fname, iname. Both phone and mobile columns
// are indexed so Lookup can match on either.
func loadCSV(path string) (map[string]Record, map[string]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	byPhone := make(map[string]Record)
	byLast8 := make(map[string]Record)
	if len(rows) == 0 {
		return byPhone, byLast8, nil
	}

	col := make(map[string]int)
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	get := func(row []string, key string) string {
		idx, ok := col[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	for _, row := range rows[1:] {
		phone := onlyDigits(get(row, "phone"))
		mobile := onlyDigits(get(row, "mobile"))
		if phone == "" && mobile == "" {
			continue
		}
		rec := Record{
			Phone:       phone,
			Mobile:      mobile,
			Street:      get(row, "street1"),
			HouseNumber: get(row, "house_number"),
			Postcode:    get(row, "postcode"),
			FirstName:   get(row, "fname"),
			LastName:    get(row, "iname"),
		}
		for _, digits := range []string{phone, mobile} {
			if digits == "" {
				continue
			}
			byPhone[digits] = rec
			if len(digits) >= 8 {
				byLast8[digits[len(digits)-8:]] = rec
			}
		}
	}
	return byPhone, byLast8, nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
