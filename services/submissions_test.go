package services

import (
	"testing"

	"github.com/vnkhanh/bizsim-server/models"
)

const reasoning = "we expect the partner to share local market knowledge quickly"

func TestSubmitScoresSelectedOptions(t *testing.T) {
	e := newTestEnv(t)
	_, q := e.activeRound(models.RoundIndividual, 5)
	student := e.user("Alice", "alice@example.com", models.RoleStudent, nil, false)

	sub, err := e.svc.Submissions.Submit(e.ctx, student, SubmitInput{
		QuestionID:      q.ID,
		SelectedOptions: []string{q.Options[1].ID},
		Reasoning:       reasoning,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.Points != 25 {
		t.Errorf("expected 25 points, got %d", sub.Points)
	}

	u, _ := e.repo.GetUser(e.ctx, student.ID)
	if u.IndividualScore != 25 {
		t.Errorf("expected individual score 25, got %d", u.IndividualScore)
	}
}

func TestSubmitIgnoresUnknownOptionIDs(t *testing.T) {
	e := newTestEnv(t)
	_, q := e.activeRound(models.RoundIndividual, 0)
	student := e.user("Bob", "bob@example.com", models.RoleStudent, nil, false)

	sub, err := e.svc.Submissions.Submit(e.ctx, student, SubmitInput{
		QuestionID:      q.ID,
		SelectedOptions: []string{"bogus", q.Options[2].ID},
		Reasoning:       "ok",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.Points != 10 {
		t.Errorf("expected 10 points, got %d", sub.Points)
	}
}

func TestSubmitValidationOrder(t *testing.T) {
	e := newTestEnv(t)
	_, q := e.activeRound(models.RoundIndividual, 5)
	student := e.user("Carol", "carol@example.com", models.RoleStudent, nil, false)

	cases := []struct {
		name string
		in   SubmitInput
		kind Kind
		msg  string
	}{
		{"missing question", SubmitInput{SelectedOptions: []string{"x"}, Reasoning: reasoning}, KindValidation, "Missing required fields"},
		{"missing options", SubmitInput{QuestionID: q.ID, Reasoning: reasoning}, KindValidation, "Missing required fields"},
		{"empty reasoning", SubmitInput{QuestionID: q.ID, SelectedOptions: []string{"x"}}, KindValidation, "Missing required fields"},
		{"blank reasoning", SubmitInput{QuestionID: q.ID, SelectedOptions: []string{"x"}, Reasoning: "  "}, KindValidation, "Reasoning must be at least 5 words"},
		{"unknown question", SubmitInput{QuestionID: "nope", SelectedOptions: []string{"x"}, Reasoning: reasoning}, KindNotFound, "Question not found"},
		{"short reasoning", SubmitInput{QuestionID: q.ID, SelectedOptions: []string{"x"}, Reasoning: "too short here"}, KindValidation, "Reasoning must be at least 5 words"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.Submissions.Submit(e.ctx, student, tc.in)
			wantKind(t, err, tc.kind, tc.msg)
		})
	}

	subs, err := e.svc.Submissions.List(e.ctx, student, SubmissionFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("rejected submissions must not be stored, got %d", len(subs))
	}
	u, err := e.repo.GetUser(e.ctx, student.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.IndividualScore != 0 {
		t.Errorf("rejected submissions must not change the score, got %d", u.IndividualScore)
	}
}

func TestZeroMinReasoningWordsIsKept(t *testing.T) {
	e := newTestEnv(t)
	_, q := e.activeRound(models.RoundIndividual, 0)
	student := e.user("Zoe", "zoe@example.com", models.RoleStudent, nil, false)

	stored, err := e.repo.GetQuestion(e.ctx, q.ID)
	if err != nil {
		t.Fatalf("GetQuestion: %v", err)
	}
	if stored.MinReasoningWords != 0 {
		t.Fatalf("minReasoningWords = %d, want 0", stored.MinReasoningWords)
	}

	for _, r := range []string{"two words", "   "} {
		if _, err := e.svc.Submissions.Submit(e.ctx, student, SubmitInput{
			QuestionID:      q.ID,
			SelectedOptions: []string{q.Options[0].ID},
			Reasoning:       r,
		}); err != nil {
			t.Errorf("Submit(%q): %v", r, err)
		}
	}

	// mặc định vẫn là 15 khi không gửi
	def, err := e.svc.Questions.Create(e.ctx, CreateQuestionInput{RoundID: q.RoundID, Title: "T", Description: "D"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if def.MinReasoningWords != models.DefaultMinReasoningWords {
		t.Errorf("default minReasoningWords = %d", def.MinReasoningWords)
	}
}

func TestSubmitRejectsInactiveRound(t *testing.T) {
	e := newTestEnv(t)
	gs := e.session("Sim")
	r := e.round(gs.ID, 1, models.RoundIndividual)
	q := e.question(r.ID, 0)
	student := e.user("Dan", "dan@example.com", models.RoleStudent, nil, false)

	_, err := e.svc.Submissions.Submit(e.ctx, student, SubmitInput{
		QuestionID:      q.ID,
		SelectedOptions: []string{q.Options[0].ID},
		Reasoning:       "fine",
	})
	wantKind(t, err, KindValidation, "Round is not active")
}

func TestGroupSubmissionPermissions(t *testing.T) {
	e := newTestEnv(t)
	_, q := e.activeRound(models.RoundGroup, 0)
	team := e.team("Alpha")
	member := e.user("Eva", "eva@example.com", models.RoleStudent, &team.ID, false)
	leader := e.user("Grace", "grace@example.com", models.RoleStudent, &team.ID, true)

	_, err := e.svc.Submissions.Submit(e.ctx, member, SubmitInput{
		QuestionID:        q.ID,
		SelectedOptions:   []string{q.Options[1].ID},
		Reasoning:         "team answer",
		IsGroupSubmission: true,
	})
	wantKind(t, err, KindForbidden, "Only group leaders can submit for group rounds")

	if _, err := e.svc.Submissions.Submit(e.ctx, leader, SubmitInput{
		QuestionID:        q.ID,
		SelectedOptions:   []string{q.Options[1].ID, q.Options[3].ID},
		Reasoning:         "team answer",
		IsGroupSubmission: true,
	}); err != nil {
		t.Fatalf("leader Submit: %v", err)
	}

	got, _ := e.repo.GetTeam(e.ctx, team.ID)
	if got.TotalScore != 45 {
		t.Errorf("expected team score 45, got %d", got.TotalScore)
	}
	u, _ := e.repo.GetUser(e.ctx, leader.ID)
	if u.IndividualScore != 0 {
		t.Errorf("group submission must not touch individual score, got %d", u.IndividualScore)
	}

	// thành viên thường vẫn được nộp bài cá nhân trong round nhóm
	if _, err := e.svc.Submissions.Submit(e.ctx, member, SubmitInput{
		QuestionID:      q.ID,
		SelectedOptions: []string{q.Options[0].ID},
		Reasoning:       "my view",
	}); err != nil {
		t.Fatalf("member individual Submit: %v", err)
	}
}

func TestResubmissionStacksPoints(t *testing.T) {
	e := newTestEnv(t)
	_, q := e.activeRound(models.RoundIndividual, 0)
	student := e.user("Henry", "henry@example.com", models.RoleStudent, nil, false)

	for i := 0; i < 2; i++ {
		if _, err := e.svc.Submissions.Submit(e.ctx, student, SubmitInput{
			QuestionID:      q.ID,
			SelectedOptions: []string{q.Options[3].ID},
			Reasoning:       "again",
		}); err != nil {
			t.Fatalf("Submit #%d: %v", i+1, err)
		}
	}

	u, _ := e.repo.GetUser(e.ctx, student.ID)
	if u.IndividualScore != 40 {
		t.Errorf("expected 40 after two submissions, got %d", u.IndividualScore)
	}
}

func TestListSubmissionsScopesNonAdmins(t *testing.T) {
	e := newTestEnv(t)
	_, q := e.activeRound(models.RoundIndividual, 0)
	a := e.user("Ivy", "ivy@example.com", models.RoleStudent, nil, false)
	b := e.user("Jack", "jack@example.com", models.RoleStudent, nil, false)
	admin := e.user("Admin", "admin@example.com", models.RoleAdmin, nil, false)

	for _, u := range []*models.User{a, b} {
		if _, err := e.svc.Submissions.Submit(e.ctx, u, SubmitInput{
			QuestionID:      q.ID,
			SelectedOptions: []string{q.Options[0].ID},
			Reasoning:       "answer",
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	own, err := e.svc.Submissions.List(e.ctx, a, SubmissionFilter{UserID: b.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(own) != 1 || own[0].UserID != a.ID {
		t.Errorf("student should only see own submission, got %+v", own)
	}

	all, err := e.svc.Submissions.List(e.ctx, admin, SubmissionFilter{QuestionID: q.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin should see 2 submissions, got %d", len(all))
	}
}

func TestScore(t *testing.T) {
	opts := []models.QuestionOption{
		{ID: "a", Points: 20},
		{ID: "b", Points: -10},
		{ID: "c", Points: 15},
	}
	cases := []struct {
		name     string
		selected []string
		want     int
	}{
		{"single", []string{"a"}, 20},
		{"penalty", []string{"a", "b"}, 10},
		{"unknown ids", []string{"zzz"}, 0},
		{"duplicate id counted once", []string{"c", "c"}, 15},
		{"empty", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(opts, tc.selected); got != tc.want {
				t.Errorf("Score(%v) = %d, want %d", tc.selected, got, tc.want)
			}
		})
	}
}
