package utils

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"  spaced   out\twords\nhere ", 4},
	}
	for _, tt := range tests {
		if got := CountWords(tt.in); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":          "report.pdf",
		"my report (v2).docx": "my_report__v2_.docx",
		"../etc/passwd":       ".._etc_passwd",
		"bảng-giá.txt":        "b_ng-gi_.txt",
	}
	for in, want := range tests {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNullable(t *testing.T) {
	var body struct {
		A Nullable[string] `json:"a"`
		B Nullable[string] `json:"b"`
		C Nullable[int]    `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":null,"c":7}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	updates := map[string]interface{}{}
	body.A.Apply(updates, "a")
	body.B.Apply(updates, "b")
	body.C.Apply(updates, "c")

	if v, ok := updates["a"]; !ok || v != nil {
		t.Errorf("explicit null should set nil, got %v (%v)", v, ok)
	}
	if _, ok := updates["b"]; ok {
		t.Error("absent field must not be applied")
	}
	if updates["c"] != 7 {
		t.Errorf("c = %v", updates["c"])
	}
}

func TestTokenManager(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	tok, err := m.Generate("u1", "ADMIN", "sess-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	claims, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != "ADMIN" || claims.ID != "sess-1" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	if _, err := NewTokenManager("other", time.Hour).Verify(tok); err == nil {
		t.Error("token signed with another secret must fail")
	}
	expired, _ := NewTokenManager("secret", -time.Minute).Generate("u1", "ADMIN", "s")
	if _, err := m.Verify(expired); err == nil {
		t.Error("expired token must fail")
	}
	if _, err := NewTokenManager("", time.Hour).Generate("u1", "ADMIN", "s"); err == nil {
		t.Error("empty secret must fail")
	}
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("student123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(h, "student123") || CheckPassword(h, "student124") {
		t.Error("CheckPassword mismatch")
	}
}
