package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLocalPutGet(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx := context.Background()

	if err := l.Put(ctx, "case-files/a.txt", strings.NewReader("hello"), 5, "text/plain"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rc, err := l.Get(ctx, "case-files/a.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "hello" {
		t.Errorf("Get = %q", b)
	}
}

func TestLocalRejectsEscapes(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx := context.Background()

	tests := []string{"../outside.txt", "case-files/../../outside.txt", ".", "case-files", "case-files/none.txt"}
	for _, key := range tests {
		if _, err := l.Get(ctx, key); !errors.Is(err, ErrNotExist) {
			t.Errorf("Get(%q) error = %v, want ErrNotExist", key, err)
		}
	}
	if err := l.Put(ctx, "../outside.txt", strings.NewReader("x"), 1, ""); !errors.Is(err, ErrNotExist) {
		t.Errorf("Put outside root error = %v", err)
	}
}
