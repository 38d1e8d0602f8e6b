// Command seed xoá dữ liệu game và nạp bộ dữ liệu demo (admin, 3 team, 1 phiên 3 round).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/vnkhanh/bizsim-server/config"
	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/utils"
)

type seedMember struct {
	name, email string
	leader      bool
	score       int
}

type seedTeam struct {
	name    string
	total   int
	members []seedMember
}

type seedOption struct {
	text    string
	points  int
	correct bool
}

type seedRound struct {
	number      int
	typ         models.RoundType
	title       string
	description string
	timeLimit   int

	qTitle, qDescription, caseFileURL string
	qType                             models.QuestionType
	minWords                          int
	options                           []seedOption
}

var teams = []seedTeam{
	{name: "Alpha Team", total: 255, members: []seedMember{
		{"Alice Johnson", "alice@example.com", true, 85},
		{"Bob Smith", "bob@example.com", false, 78},
		{"Carol Wilson", "carol@example.com", false, 92},
	}},
	{name: "Beta Team", total: 245, members: []seedMember{
		{"David Brown", "david@example.com", true, 88},
		{"Eva Davis", "eva@example.com", false, 81},
		{"Frank Miller", "frank@example.com", false, 76},
	}},
	{name: "Gamma Team", total: 261, members: []seedMember{
		{"Grace Taylor", "grace@example.com", true, 90},
		{"Henry Clark", "henry@example.com", false, 84},
		{"Ivy Rodriguez", "ivy@example.com", false, 87},
	}},
}

var rounds = []seedRound{
	{
		number: 1, typ: models.RoundIndividual, timeLimit: 30,
		title:        "Market Entry Strategy",
		description:  "Analyze market conditions and choose the best entry strategy for your company.",
		qTitle:       "Market Entry Decision",
		qDescription: "Your company is considering entering a new market. Based on the market analysis provided in the case study, which entry strategy would be most appropriate?",
		caseFileURL:  "/case-files/market-analysis-q1.pdf",
		qType:        models.MultipleChoice, minWords: 20,
		options: []seedOption{
			{"Direct investment with full subsidiary", 15, false},
			{"Joint venture with local partner", 25, true},
			{"Licensing agreement", 10, false},
			{"Export through distributors", 20, false},
		},
	},
	{
		number: 2, typ: models.RoundGroup, timeLimit: 45,
		title:        "Crisis Management",
		description:  "Work as a team to navigate through a major business crisis.",
		qTitle:       "Crisis Response Strategy",
		qDescription: "Your company faces a major PR crisis due to a product recall. How should your team respond to minimize damage and restore trust?",
		caseFileURL:  "/case-files/crisis-scenario.pdf",
		qType:        models.MultiSelect, minWords: 30,
		options: []seedOption{
			{"Issue immediate public apology", 20, true},
			{"Launch comprehensive investigation", 25, true},
			{"Offer full refunds and compensation", 20, true},
			{"Deny responsibility initially", -10, false},
			{"Implement new quality assurance measures", 15, true},
		},
	},
	{
		number: 3, typ: models.RoundMix, timeLimit: 60,
		title:        "Strategic Partnership",
		description:  "First decide individually, then discuss as a team to reach a consensus on strategic partnerships.",
		qTitle:       "Partnership Selection",
		qDescription: "Your company has the opportunity to form a strategic partnership. Which partner would provide the most value for long-term growth?",
		caseFileURL:  "/case-files/partnership-options.pdf",
		qType:        models.MultipleChoice, minWords: 25,
		options: []seedOption{
			{"Technology startup with innovative solutions", 30, true},
			{"Established competitor in adjacent market", 20, false},
			{"Supplier with strong distribution network", 25, false},
			{"Government agency for regulatory support", 15, false},
		},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg, os.Stdout)

	db, err := config.ConnectDB(cfg, log)
	if err != nil {
		log.Error("connect database", "error", err)
		os.Exit(1)
	}

	if err := db.Transaction(seed); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}

	log.Info("database seeded",
		"admin", "admin@business-sim.com / admin123",
		"test_admin", "john@doe.com / johndoe123",
		"students", "alice@example.com, bob@example.com, ... / student123")
}

func seed(tx *gorm.DB) error {
	all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, m := range []interface{}{
		&models.Submission{}, &models.QuestionOption{}, &models.Question{},
		&models.Round{}, &models.GameSession{}, &models.User{}, &models.Team{},
	} {
		if err := all.Delete(m).Error; err != nil {
			return fmt.Errorf("wipe %T: %w", m, err)
		}
	}
	if err := tx.Exec("DELETE FROM question_tag_relations").Error; err != nil {
		return fmt.Errorf("wipe question tags: %w", err)
	}

	for _, a := range []struct{ name, email, password string }{
		{"Admin User", "admin@business-sim.com", "admin123"},
		{"John Doe", "john@doe.com", "johndoe123"},
	} {
		if err := createUser(tx, a.name, a.email, a.password, models.RoleAdmin, nil, false, 0); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	desc := "A comprehensive simulation focusing on strategic decision-making in competitive markets."
	gs := models.GameSession{
		Name:        "Q1 2024 Business Strategy Simulation",
		Description: &desc,
		MaxRounds:   3,
		IsActive:    true,
		StartedAt:   &now,
	}
	if err := tx.Create(&gs).Error; err != nil {
		return fmt.Errorf("create game session: %w", err)
	}

	for _, st := range teams {
		t := models.Team{Name: st.name, GameSessionID: &gs.ID, TotalScore: st.total, IsActive: true}
		if err := tx.Create(&t).Error; err != nil {
			return fmt.Errorf("create team %s: %w", st.name, err)
		}
		for _, m := range st.members {
			if err := createUser(tx, m.name, m.email, "student123", models.RoleStudent, &t.ID, m.leader, m.score); err != nil {
				return err
			}
		}
	}

	var firstRoundID string
	for _, sr := range rounds {
		rd, tl := sr.description, sr.timeLimit
		r := models.Round{
			GameSessionID: gs.ID,
			RoundNumber:   sr.number,
			Type:          sr.typ,
			Title:         sr.title,
			Description:   &rd,
			TimeLimit:     &tl,
		}
		if sr.number == 1 {
			r.IsActive = true
			r.StartedAt = &now
		}
		if err := tx.Create(&r).Error; err != nil {
			return fmt.Errorf("create round %d: %w", sr.number, err)
		}
		if sr.number == 1 {
			firstRoundID = r.ID
		}

		url := sr.caseFileURL
		q := models.Question{
			RoundID:           r.ID,
			Title:             sr.qTitle,
			Description:       sr.qDescription,
			CaseFileURL:       &url,
			QuestionType:      sr.qType,
			MinReasoningWords: sr.minWords,
			Order:             1,
			IsActive:          true,
		}
		for i, o := range sr.options {
			q.Options = append(q.Options, models.QuestionOption{
				Text:      o.text,
				Points:    o.points,
				IsCorrect: o.correct,
				Order:     i + 1,
			})
		}
		if err := tx.Create(&q).Error; err != nil {
			return fmt.Errorf("create question for round %d: %w", sr.number, err)
		}
	}

	return tx.Model(&models.GameSession{}).Where("id = ?", gs.ID).
		Update("current_round_id", firstRoundID).Error
}

func createUser(tx *gorm.DB, name, email, password string, role models.Role, teamID *string, leader bool, score int) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	u := models.User{
		Name:            name,
		Email:           email,
		Password:        hash,
		Role:            role,
		TeamID:          teamID,
		IsGroupLeader:   leader,
		IndividualScore: score,
		IsActive:        true,
	}
	if err := tx.Create(&u).Error; err != nil {
		return fmt.Errorf("create user %s: %w", email, err)
	}
	return nil
}
