package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.ReadDir(FS, ".")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no migrations embedded")
	}

	for _, f := range files {
		body, err := fs.ReadFile(FS, f.Name())
		if err != nil {
			t.Fatal(err)
		}
		src := string(body)
		if !strings.Contains(src, "-- +goose Up") || !strings.Contains(src, "-- +goose Down") {
			t.Errorf("%s lacks goose annotations", f.Name())
		}
	}
}

func TestTicketSeatIsUnique(t *testing.T) {
	body, err := fs.ReadFile(FS, "00001_init.sql")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "UNIQUE (journey_id, cargo, seat)") {
		t.Fatal("tickets must be unique per (journey, cargo, seat)")
	}
}
