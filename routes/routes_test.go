package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/bizsim-server/config"
	"github.com/vnkhanh/bizsim-server/controllers"
	"github.com/vnkhanh/bizsim-server/metrics"
	"github.com/vnkhanh/bizsim-server/middleware"
	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/services"
	"github.com/vnkhanh/bizsim-server/sessionstore"
	"github.com/vnkhanh/bizsim-server/storage"
	"github.com/vnkhanh/bizsim-server/store"
	"github.com/vnkhanh/bizsim-server/utils"
)

type apiEnv struct {
	t      *testing.T
	router *gin.Engine
	svc    *services.Services
	repo   store.Repository
}

func newAPI(t *testing.T, d Deps) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	files, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := store.New(db)
	svc := services.New(services.Deps{
		Repo:           repo,
		Sessions:       sessionstore.NewMemoryStore(),
		Tokens:         utils.NewTokenManager("test-secret", time.Hour),
		Storage:        files,
		Metrics:        d.Metrics,
		Log:            log,
		MaxUploadBytes: 1 << 20,
	})
	h := controllers.New(svc, log, controllers.Options{SessionTTL: time.Hour})

	r := gin.New()
	d.Auth = svc.Auth
	SetupRoutes(r, h, d)
	return &apiEnv{t: t, router: r, svc: svc, repo: repo}
}

func (a *apiEnv) user(email string, role models.Role) *models.User {
	a.t.Helper()
	hash, err := utils.HashPassword("secret123")
	if err != nil {
		a.t.Fatalf("hash: %v", err)
	}
	u := &models.User{Name: email, Email: email, Password: hash, Role: role, IsActive: true}
	if err := a.repo.CreateUser(context.Background(), u); err != nil {
		a.t.Fatalf("create user: %v", err)
	}
	return u
}

func (a *apiEnv) login(email string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/login", "", `{"email":"`+email+`","password":"secret123"}`)
	if w.Code != http.StatusOK {
		a.t.Fatalf("login %s: %d %s", email, w.Code, w.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	return body.Token
}

func (a *apiEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %s", w.Body.String())
	}
	msg, _ := body["error"].(string)
	return msg
}

func TestAuthGuards(t *testing.T) {
	a := newAPI(t, Deps{})
	a.user("admin@example.com", models.RoleAdmin)
	a.user("student@example.com", models.RoleStudent)
	student := a.login("student@example.com")
	admin := a.login("admin@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
		errMsg string
	}{
		{"no token", http.MethodGet, "/api/game-sessions", "", http.StatusUnauthorized, "Unauthorized"},
		{"bad token", http.MethodGet, "/api/game-sessions", "garbage", http.StatusUnauthorized, "Unauthorized"},
		{"student reads sessions", http.MethodGet, "/api/game-sessions", student, http.StatusOK, ""},
		{"student lists users", http.MethodGet, "/api/users", student, http.StatusForbidden, "Admin access required"},
		{"student exports", http.MethodGet, "/api/export/users", student, http.StatusForbidden, "Admin access required"},
		{"admin lists users", http.MethodGet, "/api/users", admin, http.StatusOK, ""},
		{"missing session", http.MethodGet, "/api/game-sessions/nope", admin, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(tt.method, tt.path, tt.token, "")
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
			if tt.errMsg != "" && errorOf(t, w) != tt.errMsg {
				t.Errorf("error = %q, want %q", errorOf(t, w), tt.errMsg)
			}
		})
	}
}

func TestLoginSetsCookieAndLogoutRevokes(t *testing.T) {
	a := newAPI(t, Deps{})
	a.user("student@example.com", models.RoleStudent)

	w := a.do(http.MethodPost, "/api/auth/login", "", `{"email":"student@example.com","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d", w.Code)
	}
	w = a.do(http.MethodPost, "/api/auth/login", "", `{"email":""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty body: status %d", w.Code)
	}

	w = a.do(http.MethodPost, "/api/auth/login", "", `{"email":"student@example.com","password":"secret123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("session cookie missing or not httpOnly: %+v", cookie)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Error("login response leaks the password hash")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("/me with cookie: %d", rec.Code)
	}

	if w := a.do(http.MethodPost, "/api/auth/logout", cookie.Value, ""); w.Code != http.StatusOK {
		t.Fatalf("logout: %d", w.Code)
	}
	if w := a.do(http.MethodGet, "/api/auth/me", cookie.Value, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("token should be revoked after logout, got %d", w.Code)
	}
}

func TestSubmissionAcceptsSingleOptionID(t *testing.T) {
	a := newAPI(t, Deps{})
	ctx := context.Background()
	a.user("student@example.com", models.RoleStudent)
	token := a.login("student@example.com")

	gs, _ := a.svc.Games.CreateSession(ctx, services.CreateGameSessionInput{Name: "Sim"})
	r, _ := a.svc.Games.CreateRound(ctx, services.CreateRoundInput{GameSessionID: gs.ID, RoundNumber: 1, Type: "INDIVIDUAL", Title: "R1"})
	pts, minWords := 30, 3
	q, err := a.svc.Questions.Create(ctx, services.CreateQuestionInput{
		RoundID:           r.ID,
		Title:             "Pricing",
		Description:       "Pick one",
		MinReasoningWords: &minWords,
		Options:           []services.OptionInput{{Text: "Premium", Points: &pts}},
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	body := `{"questionId":"` + q.ID + `","selectedOptions":"` + q.Options[0].ID + `","reasoning":"premium pricing suits the brand"}`
	w := a.do(http.MethodPost, "/api/submissions", token, body)
	if w.Code != http.StatusBadRequest || errorOf(t, w) != "Round is not active" {
		t.Fatalf("inactive round: %d %s", w.Code, w.Body.String())
	}

	if _, err := a.svc.Games.ActivateRound(ctx, r.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	w = a.do(http.MethodPost, "/api/submissions", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}
	var sub struct {
		Points          int      `json:"points"`
		SelectedOptions []string `json:"selectedOptions"`
	}
	json.Unmarshal(w.Body.Bytes(), &sub)
	if sub.Points != 30 || len(sub.SelectedOptions) != 1 {
		t.Errorf("unexpected submission: %+v", sub)
	}

	w = a.do(http.MethodPost, "/api/submissions", token, `{"questionId":"`+q.ID+`","selectedOptions":42}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("numeric selectedOptions should be rejected, got %d", w.Code)
	}
}

func TestImportAndExportEndpoints(t *testing.T) {
	a := newAPI(t, Deps{})
	a.user("admin@example.com", models.RoleAdmin)
	admin := a.login("admin@example.com")

	w := a.do(http.MethodPost, "/api/import/users", admin, `{"users":{"email":"x@example.com"}}`)
	if w.Code != http.StatusBadRequest || errorOf(t, w) != "Users data must be an array" {
		t.Fatalf("non-array users: %d %s", w.Code, w.Body.String())
	}

	w = a.do(http.MethodPost, "/api/import/users", admin,
		`{"users":[{"name":"A","email":"a@example.com","password":"pw"},42],"options":{"updateExisting":false}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("import: %d %s", w.Code, w.Body.String())
	}
	var res services.ImportResult
	json.Unmarshal(w.Body.Bytes(), &res)
	if res.Processed != 1 || res.Failed != 1 {
		t.Errorf("unexpected import result: %+v", res)
	}

	w = a.do(http.MethodGet, "/api/export/users?format=csv", admin, "")
	if w.Code != http.StatusOK {
		t.Fatalf("csv export: %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv") ||
		!strings.Contains(w.Header().Get("Content-Disposition"), "users_export_") {
		t.Errorf("unexpected headers: %v", w.Header())
	}
	if lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n"); len(lines) != 3 {
		t.Errorf("expected header + 2 users, got %d lines", len(lines))
	}

	w = a.do(http.MethodGet, "/api/export/users", admin, "")
	var exp struct {
		Success bool `json:"success"`
		Meta    struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	json.Unmarshal(w.Body.Bytes(), &exp)
	if !exp.Success || exp.Meta.Total != 2 {
		t.Errorf("unexpected json export: %s", w.Body.String())
	}

	if w := a.do(http.MethodGet, "/api/export/users?format=pdf", admin, ""); w.Code != http.StatusBadRequest {
		t.Errorf("unknown format: %d", w.Code)
	}
}

func TestUploadAndServeCaseFile(t *testing.T) {
	a := newAPI(t, Deps{})
	a.user("admin@example.com", models.RoleAdmin)
	admin := a.login("admin@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "brief.pdf")
	fw.Write([]byte("%PDF-1.4\nbrief\n"))
	mw.WriteField("description", "Round 1 brief")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload/case-file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+admin)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", w.Code, w.Body.String())
	}
	var out struct {
		CaseFile models.CaseFile `json:"caseFile"`
	}
	json.Unmarshal(w.Body.Bytes(), &out)
	if out.CaseFile.MimeType != "application/pdf" {
		t.Errorf("mime type = %q", out.CaseFile.MimeType)
	}

	w = a.do(http.MethodGet, out.CaseFile.URL, "", "")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatalf("serve: %d", w.Code)
	}
	if w.Header().Get("Cache-Control") != "public, max-age=31536000" {
		t.Errorf("cache header = %q", w.Header().Get("Cache-Control"))
	}

	if w := a.do(http.MethodGet, "/api/files/case-files/missing.pdf", "", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing file: %d", w.Code)
	}
}

func TestLoginRateLimitAndMetrics(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(1, 2, time.Minute)
	defer limiter.Close()
	a := newAPI(t, Deps{Metrics: metrics.New(), LoginLimiter: limiter})

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = a.do(http.MethodPost, "/api/auth/login", "", `{"email":"x@example.com","password":"pw"}`).Code
	}
	if codes[0] != http.StatusUnauthorized || codes[1] != http.StatusUnauthorized || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [401 401 429]", codes)
	}

	w := a.do(http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "bizsim_login_attempts_total") {
		t.Errorf("metrics endpoint missing login counter")
	}
}
