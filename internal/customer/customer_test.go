package customer

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "customers.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLookup_ExactPhoneMatch(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "phone,mobile,postcode,street1,house_number\n0612345678,,1871AB,Kerkstraat,12\n")

	d := New(path)
	rec, ok := d.Lookup("0612345678")
	if !ok {
		t.Fatal("expected exact phone match")
	}
	if rec.Street != "Kerkstraat" {
		t.Errorf("Street = %q, want Kerkstraat", rec.Street)
	}
}

func TestLookup_MobileColumnMatch(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "phone,mobile,postcode,street1,house_number\n,0687654321,1871AB,Kerkstraat,12\n")

	d := New(path)
	rec, ok := d.Lookup("0687654321")
	if !ok {
		t.Fatal("expected mobile-column match")
	}
	if rec.Street != "Kerkstraat" {
		t.Errorf("Street = %q, want Kerkstraat", rec.Street)
	}
}

func TestLookup_Last8DigitsFallback(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "phone,mobile,postcode,street1,house_number\n0031612345678,,1871AB,Kerkstraat,12\n")

	d := New(path)
	rec, ok := d.Lookup("+31612345678")
	if !ok {
		t.Fatal("expected last-8-digit fallback match")
	}
	if rec.Street != "Kerkstraat" {
		t.Errorf("Street = %q, want Kerkstraat", rec.Street)
	}
}

func TestLookup_Unknown(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "phone,mobile,postcode,street1,house_number\n0612345678,,1871AB,Kerkstraat,12\n")

	d := New(path)
	_, ok := d.Lookup("0699999999")
	if ok {
		t.Error("expected unknown phone to miss")
	}
}

func TestLookup_ReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "phone,mobile,postcode,street1,house_number\n0612345678,,1871AB,Old,1\n")

	d := New(path)
	rec, _ := d.Lookup("0612345678")
	if rec.Street != "Old" {
		t.Fatalf("Street = %q, want Old", rec.Street)
	}

	writeCSV(t, dir, "phone,mobile,postcode,street1,house_number\n0612345678,,1871AB,New,1\n")
	rec, ok := d.Lookup("0612345678")
	if !ok || rec.Street != "New" {
		t.Errorf("expected reload to pick up new Street, got %q, ok=%v", rec.Street, ok)
	}
}
