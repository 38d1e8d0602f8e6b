package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/vnkhanh/bizsim-server/config"
	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/sessionstore"
	"github.com/vnkhanh/bizsim-server/storage"
	"github.com/vnkhanh/bizsim-server/store"
	"github.com/vnkhanh/bizsim-server/utils"
)

type testEnv struct {
	svc  *Services
	repo store.Repository
	ctx  context.Context
	t    *testing.T
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
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

	repo := store.New(db)
	svc := New(Deps{
		Repo:           repo,
		Sessions:       sessionstore.NewMemoryStore(),
		Tokens:         utils.NewTokenManager("test-secret", time.Hour),
		Storage:        files,
		Log:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxUploadBytes: 1 << 20,
	})
	return &testEnv{svc: svc, repo: repo, ctx: context.Background(), t: t}
}

func (e *testEnv) user(name, email string, role models.Role, teamID *string, leader bool) *models.User {
	e.t.Helper()
	u := &models.User{
		Name:          name,
		Email:         email,
		Password:      mustHash(e.t, "secret123"),
		Role:          role,
		TeamID:        teamID,
		IsGroupLeader: leader,
		IsActive:      true,
	}
	if err := e.repo.CreateUser(e.ctx, u); err != nil {
		e.t.Fatalf("create user %s: %v", email, err)
	}
	got, err := e.repo.GetUser(e.ctx, u.ID)
	if err != nil {
		e.t.Fatalf("reload user: %v", err)
	}
	return got
}

func (e *testEnv) team(name string) *models.Team {
	e.t.Helper()
	t, err := e.svc.Teams.Create(e.ctx, CreateTeamInput{Name: name})
	if err != nil {
		e.t.Fatalf("create team %s: %v", name, err)
	}
	return t
}

func (e *testEnv) session(name string) *models.GameSession {
	e.t.Helper()
	gs, err := e.svc.Games.CreateSession(e.ctx, CreateGameSessionInput{Name: name})
	if err != nil {
		e.t.Fatalf("create session: %v", err)
	}
	return gs
}

func (e *testEnv) round(sessionID string, number int, typ models.RoundType) *models.Round {
	e.t.Helper()
	r, err := e.svc.Games.CreateRound(e.ctx, CreateRoundInput{
		GameSessionID: sessionID,
		RoundNumber:   number,
		Type:          string(typ),
		Title:         "Round",
	})
	if err != nil {
		e.t.Fatalf("create round %d: %v", number, err)
	}
	return r
}

// question tạo câu hỏi với các phương án 15/25/10/20 điểm.
func (e *testEnv) question(roundID string, minWords int) *models.Question {
	e.t.Helper()
	q, err := e.svc.Questions.Create(e.ctx, CreateQuestionInput{
		RoundID:           roundID,
		Title:             "Market entry",
		Description:       "Pick a strategy",
		MinReasoningWords: intPtr(minWords),
		Options: []OptionInput{
			{Text: "Direct investment", Points: intPtr(15)},
			{Text: "Joint venture", Points: intPtr(25), IsCorrect: boolPtr(true)},
			{Text: "Licensing", Points: intPtr(10)},
			{Text: "Export", Points: intPtr(20)},
		},
	})
	if err != nil {
		e.t.Fatalf("create question: %v", err)
	}
	return q
}

// activeRound dựng session + round 1 đang active + một câu hỏi.
func (e *testEnv) activeRound(typ models.RoundType, minWords int) (*models.Round, *models.Question) {
	e.t.Helper()
	gs := e.session("Sim")
	r := e.round(gs.ID, 1, typ)
	q := e.question(r.ID, minWords)
	if _, err := e.svc.Games.ActivateRound(e.ctx, r.ID); err != nil {
		e.t.Fatalf("activate round: %v", err)
	}
	return r, q
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := utils.HashPassword(pw)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return h
}

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func wantKind(t *testing.T, err error, kind Kind, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", msg)
	}
	if KindOf(err) != kind {
		t.Fatalf("expected kind %d, got %d (%v)", kind, KindOf(err), err)
	}
	if msg != "" && err.Error() != msg {
		t.Fatalf("expected message %q, got %q", msg, err.Error())
	}
}
