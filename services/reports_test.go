package services

import (
	"testing"
	"time"

	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/utils"
)

func TestLeaderboard(t *testing.T) {
	e := newTestEnv(t)
	alpha := e.team("Alpha")
	beta := e.team("Beta")
	if _, err := e.svc.Teams.Update(e.ctx, beta.ID, UpdateTeamInput{TotalScore: intPtr(90)}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	scores := map[string]int{"a@example.com": 10, "b@example.com": 30, "c@example.com": 20}
	for email, score := range scores {
		u := e.user(email, email, models.RoleStudent, &alpha.ID, false)
		if err := e.repo.AddIndividualScore(e.ctx, u.ID, score); err != nil {
			t.Fatalf("AddIndividualScore: %v", err)
		}
	}
	inactive := e.user("gone", "gone@example.com", models.RoleStudent, &alpha.ID, false)
	e.repo.AddIndividualScore(e.ctx, inactive.ID, 100)
	e.svc.Users.Deactivate(e.ctx, inactive.ID)
	e.user("admin", "admin@example.com", models.RoleAdmin, nil, false)

	_, err := e.svc.Reports.Leaderboard(e.ctx, "weekly")
	wantKind(t, err, KindValidation, "")

	lb, err := e.svc.Reports.Leaderboard(e.ctx, "")
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if lb.Individual == nil || lb.Team == nil {
		t.Fatal("default leaderboard should include both boards")
	}
	ind := *lb.Individual
	if len(ind) != 3 {
		t.Fatalf("expected 3 active students, got %d", len(ind))
	}
	if ind[0].IndividualScore != 30 || ind[1].IndividualScore != 20 || ind[2].IndividualScore != 10 {
		t.Errorf("individual board not sorted desc: %d %d %d", ind[0].IndividualScore, ind[1].IndividualScore, ind[2].IndividualScore)
	}

	teams := *lb.Team
	if len(teams) != 2 || teams[0].ID != beta.ID {
		t.Fatalf("team board not sorted by totalScore")
	}
	if teams[1].MemberCount == nil || *teams[1].MemberCount != 3 {
		t.Errorf("alpha memberCount should count active members only")
	}

	only, err := e.svc.Reports.Leaderboard(e.ctx, "team")
	if err != nil {
		t.Fatalf("Leaderboard(team): %v", err)
	}
	if only.Individual != nil {
		t.Error("team board should omit individual ranking")
	}
}

func TestDashboardCategoryHistogram(t *testing.T) {
	e := newTestEnv(t)
	gs := e.session("Sim")
	r := e.round(gs.ID, 1, models.RoundIndividual)
	strategy, _ := e.svc.Questions.CreateCategory(e.ctx, CreateCategoryInput{Name: "Strategy", Color: "#111111"})
	retired, _ := e.svc.Questions.CreateCategory(e.ctx, CreateCategoryInput{Name: "Retired"})

	q1 := e.question(r.ID, 0)
	q2 := e.question(r.ID, 0)
	e.question(r.ID, 0)
	q4 := e.question(r.ID, 0)
	e.svc.Questions.Update(e.ctx, q1.ID, UpdateQuestionInput{CategoryID: utils.Value(strategy.ID)})
	e.svc.Questions.Update(e.ctx, q2.ID, UpdateQuestionInput{CategoryID: utils.Value(retired.ID)})
	e.svc.Questions.Deactivate(e.ctx, q4.ID)
	e.svc.Questions.DeactivateCategory(e.ctx, retired.ID)

	d, err := e.svc.Reports.Dashboard(e.ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	want := map[string]int64{"Strategy": 1, models.UncategorizedCategoryName: 2}
	if len(d.QuestionsByCategory) != len(want) {
		t.Fatalf("expected %d buckets, got %+v", len(want), d.QuestionsByCategory)
	}
	for _, b := range d.QuestionsByCategory {
		if want[b.Category] != b.Count {
			t.Errorf("bucket %s = %d, want %d", b.Category, b.Count, want[b.Category])
		}
		if b.Category == models.UncategorizedCategoryName && b.Color != models.UncategorizedColor {
			t.Errorf("uncategorized color = %s", b.Color)
		}
	}
	if d.Overview.TotalQuestions != 3 || d.Overview.TotalGameSessions != 1 {
		t.Errorf("overview counts wrong: %+v", d.Overview)
	}
	if d.SubmissionActivity == nil || d.TopTeams == nil {
		t.Error("empty lists must serialize as []")
	}
}

func TestDailyBuckets(t *testing.T) {
	hcm := time.FixedZone("ICT", 7*3600)
	times := []time.Time{
		time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 2, 5, 0, 0, 0, hcm), // 2024-03-01 22:00 UTC
		time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	got := DailyBuckets(times)
	want := []DailySubmissions{{"2024-03-01", 2}, {"2024-03-02", 2}}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bucket %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if len(DailyBuckets(nil)) != 0 {
		t.Error("no submissions should give no buckets")
	}
}
