package services

import (
	"context"
	"sort"
	"time"

	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/store"
)

const (
	individualBoardSize = 50
	teamBoardSize       = 20
	dashboardTopTeams   = 5
	recentActivityDays  = 7
	activityChartDays   = 30
)

type ReportService struct {
	*core
}

type Leaderboard struct {
	Individual *[]models.User `json:"individual,omitempty"`
	Team       *[]models.Team `json:"team,omitempty"`
}

type RecentActivity struct {
	NewUsers       int64 `json:"newUsers"`
	NewTeams       int64 `json:"newTeams"`
	NewSubmissions int64 `json:"newSubmissions"`
}

type CategoryBucket struct {
	Category string `json:"category"`
	Color    string `json:"color"`
	Count    int64  `json:"count"`
}

type DailySubmissions struct {
	Date        string `json:"date"`
	Submissions int    `json:"submissions"`
}

type Dashboard struct {
	Overview            store.Overview     `json:"overview"`
	RecentActivity      RecentActivity     `json:"recentActivity"`
	TopTeams            []models.Team      `json:"topTeams"`
	QuestionsByCategory []CategoryBucket   `json:"questionsByCategory"`
	SubmissionActivity  []DailySubmissions `json:"submissionActivity"`
}

// Leaderboard: kind là individual, team hoặc both (mặc định).
func (s *ReportService) Leaderboard(ctx context.Context, kind string) (*Leaderboard, error) {
	if kind == "" {
		kind = "both"
	}
	if kind != "individual" && kind != "team" && kind != "both" {
		return nil, ErrValidation("type must be individual, team or both")
	}

	res := &Leaderboard{}
	if kind == "individual" || kind == "both" {
		users, err := s.repo.ListStudentRanking(ctx, individualBoardSize)
		if err != nil {
			return nil, err
		}
		users = nonNil(users)
		res.Individual = &users
	}
	if kind == "team" || kind == "both" {
		teams, err := s.repo.ListTeamRanking(ctx, teamBoardSize)
		if err != nil {
			return nil, err
		}
		for i := range teams {
			n := len(teams[i].Members)
			teams[i].MemberCount = &n
		}
		teams = nonNil(teams)
		res.Team = &teams
	}
	return res, nil
}

// Dashboard tính lại toàn bộ số liệu ở mỗi lần gọi.
func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()

	overview, err := s.repo.Overview(ctx, now.AddDate(0, 0, -recentActivityDays))
	if err != nil {
		return nil, err
	}

	topTeams, err := s.repo.ListTeamRanking(ctx, dashboardTopTeams)
	if err != nil {
		return nil, err
	}

	buckets, err := s.categoryHistogram(ctx)
	if err != nil {
		return nil, err
	}

	times, err := s.repo.SubmissionTimesSince(ctx, now.AddDate(0, 0, -activityChartDays))
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Overview: *overview,
		RecentActivity: RecentActivity{
			NewUsers:       overview.NewUsers,
			NewTeams:       overview.NewTeams,
			NewSubmissions: overview.NewSubmissions,
		},
		TopTeams:            nonNil(topTeams),
		QuestionsByCategory: buckets,
		SubmissionActivity:  DailyBuckets(times),
	}, nil
}

// categoryHistogram gom câu hỏi không có category hoặc category đã tắt vào một bucket "Uncategorized".
func (s *ReportService) categoryHistogram(ctx context.Context) ([]CategoryBucket, error) {
	counts, err := s.repo.ActiveQuestionsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]int64, len(counts))
	var uncategorized int64
	active := make(map[string]bool, len(cats))
	for _, c := range cats {
		active[c.ID] = true
	}
	for _, c := range counts {
		if c.CategoryID == nil || !active[*c.CategoryID] {
			uncategorized += c.Count
			continue
		}
		byCategory[*c.CategoryID] += c.Count
	}

	out := []CategoryBucket{}
	for _, c := range cats {
		if n := byCategory[c.ID]; n > 0 {
			out = append(out, CategoryBucket{Category: c.Name, Color: c.Color, Count: n})
		}
	}
	if uncategorized > 0 {
		out = append(out, CategoryBucket{
			Category: models.UncategorizedCategoryName,
			Color:    models.UncategorizedColor,
			Count:    uncategorized,
		})
	}
	return out, nil
}

// DailyBuckets đếm submission theo ngày UTC (YYYY-MM-DD), tăng dần, chỉ ngày có dữ liệu.
func DailyBuckets(times []time.Time) []DailySubmissions {
	counts := map[string]int{}
	for _, t := range times {
		counts[t.UTC().Format("2006-01-02")]++
	}
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]DailySubmissions, 0, len(days))
	for _, d := range days {
		out = append(out, DailySubmissions{Date: d, Submissions: counts[d]})
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
