package config

import (
	"bytes"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type lookupRow struct {
	ID   uint
	Name string
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: newGormLogger(&buf)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.AutoMigrate(&lookupRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var row lookupRow
	err = db.First(&row, "name = ?", "Nobody").Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("record-not-found lookups must not be logged, got %q", buf.String())
	}

	if err := db.Exec("SELECT * FROM missing_table").Error; err == nil {
		t.Fatal("expected an error for a missing table")
	}
	if buf.Len() == 0 {
		t.Error("real query errors should still be logged")
	}
}
