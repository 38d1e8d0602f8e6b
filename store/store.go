// Package store là lớp truy cập dữ liệu. Service chỉ phụ thuộc vào Repository,
// bản cài đặt dùng gorm (postgres, mysql hoặc sqlite).
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vnkhanh/bizsim-server/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserDetail(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, id string, updates map[string]interface{}) error
	AddIndividualScore(ctx context.Context, userID string, delta int) error
	ListStudentRanking(ctx context.Context, limit int) ([]models.User, error)
	ListUsersForExport(ctx context.Context, includeInactive bool) ([]models.User, error)
}

type TeamRepository interface {
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	GetTeamDetail(ctx context.Context, id string) (*models.Team, error)
	FindTeamByName(ctx context.Context, name string) (*models.Team, error)
	CreateTeam(ctx context.Context, t *models.Team) error
	UpdateTeam(ctx context.Context, id string, updates map[string]interface{}) error
	AddTeamScore(ctx context.Context, teamID string, delta int) error
	UnlinkTeamMembers(ctx context.Context, teamID string) error
	DeleteTeam(ctx context.Context, id string) error
	ListTeamRanking(ctx context.Context, limit int) ([]models.Team, error)
}

type GameRepository interface {
	ListGameSessions(ctx context.Context) ([]models.GameSession, error)
	GetGameSession(ctx context.Context, id string) (*models.GameSession, error)
	GetGameSessionDetail(ctx context.Context, id string) (*models.GameSession, error)
	// LockGameSession đọc session với SELECT ... FOR UPDATE (chỉ có nghĩa trong transaction).
	LockGameSession(ctx context.Context, id string) (*models.GameSession, error)
	CreateGameSession(ctx context.Context, s *models.GameSession) error
	UpdateGameSession(ctx context.Context, id string, updates map[string]interface{}) error

	ListRounds(ctx context.Context, f RoundFilter) ([]models.Round, error)
	GetRound(ctx context.Context, id string) (*models.Round, error)
	FindRoundByNumber(ctx context.Context, gameSessionID string, number int) (*models.Round, error)
	CreateRound(ctx context.Context, r *models.Round) error
	UpdateRound(ctx context.Context, id string, updates map[string]interface{}) error
	// DeactivateOtherRounds tắt mọi round đang active của session trừ exceptID, đóng dấu endedAt.
	DeactivateOtherRounds(ctx context.Context, gameSessionID, exceptID string, at time.Time) error
}

type QuestionRepository interface {
	ListQuestions(ctx context.Context, f QuestionFilter) ([]models.Question, error)
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	CreateQuestion(ctx context.Context, q *models.Question) error
	UpdateQuestion(ctx context.Context, id string, updates map[string]interface{}) error
	ReplaceQuestionTags(ctx context.Context, questionID string, tagIDs []string) error

	ListOptions(ctx context.Context, questionID string) ([]models.QuestionOption, error)
	CreateOption(ctx context.Context, o *models.QuestionOption) error
	UpdateOption(ctx context.Context, id string, updates map[string]interface{}) error
	DeleteOptions(ctx context.Context, questionID string, ids []string) error
}

type CatalogRepository interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]models.QuestionCategory, error)
	GetCategory(ctx context.Context, id string) (*models.QuestionCategory, error)
	FindCategoryByName(ctx context.Context, name string) (*models.QuestionCategory, error)
	CreateCategory(ctx context.Context, c *models.QuestionCategory) error
	UpdateCategory(ctx context.Context, id string, updates map[string]interface{}) error

	ListTags(ctx context.Context) ([]models.QuestionTag, error)
	FindTagByName(ctx context.Context, name string) (*models.QuestionTag, error)
	CreateTag(ctx context.Context, t *models.QuestionTag) error

	ListCaseFiles(ctx context.Context) ([]models.CaseFile, error)
	GetCaseFile(ctx context.Context, id string) (*models.CaseFile, error)
	CreateCaseFile(ctx context.Context, f *models.CaseFile) error
	UpdateCaseFile(ctx context.Context, id string, updates map[string]interface{}) error
}

type SubmissionRepository interface {
	ListSubmissions(ctx context.Context, f SubmissionFilter) ([]models.Submission, error)
	CreateSubmission(ctx context.Context, s *models.Submission) error
	SubmissionTotals(ctx context.Context) (map[string]SubmissionTotal, error)
	SubmissionTimesSince(ctx context.Context, since time.Time) ([]time.Time, error)
}

type BulkRepository interface {
	ListBulkOperations(ctx context.Context, f BulkFilter) ([]models.BulkOperation, error)
	GetBulkOperation(ctx context.Context, id string) (*models.BulkOperation, error)
	CreateBulkOperation(ctx context.Context, op *models.BulkOperation) error
	UpdateBulkOperation(ctx context.Context, id string, updates map[string]interface{}) error
}

type StatsRepository interface {
	Overview(ctx context.Context, since time.Time) (*Overview, error)
	ActiveQuestionsByCategory(ctx context.Context) ([]CategoryCount, error)
}

type Repository interface {
	UserRepository
	TeamRepository
	GameRepository
	QuestionRepository
	CatalogRepository
	SubmissionRepository
	BulkRepository
	StatsRepository

	// Transaction chạy fn trong một transaction; fn chỉ được dùng repo truyền vào.
	Transaction(ctx context.Context, fn func(repo Repository) error) error
	Ping(ctx context.Context) error
}

type RoundFilter struct {
	GameSessionID string
}

type QuestionFilter struct {
	RoundID         string
	IncludeInactive bool
}

type SubmissionFilter struct {
	QuestionID string
	RoundID    string
	UserID     string
	TeamID     string
}

type BulkFilter struct {
	Type   string
	Status string
	Limit  int
}

type SubmissionTotal struct {
	UserID string
	Points int
	Count  int
}

type CategoryCount struct {
	CategoryID *string
	Count      int64
}

type Overview struct {
	TotalUsers         int64 `json:"totalUsers"`
	ActiveUsers        int64 `json:"activeUsers"`
	TotalTeams         int64 `json:"totalTeams"`
	ActiveTeams        int64 `json:"activeTeams"`
	TotalGameSessions  int64 `json:"totalGameSessions"`
	ActiveGameSessions int64 `json:"activeGameSessions"`
	TotalQuestions     int64 `json:"totalQuestions"`
	TotalSubmissions   int64 `json:"totalSubmissions"`

	NewUsers       int64 `json:"-"`
	NewTeams       int64 `json:"-"`
	NewSubmissions int64 `json:"-"`
}

type gormRepo struct {
	db *gorm.DB
}

// New bọc *gorm.DB thành Repository.
func New(db *gorm.DB) Repository {
	return &gormRepo{db: db}
}

func (r *gormRepo) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *gormRepo) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepo{db: tx})
	})
}

func (r *gormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate chuẩn hoá lỗi gorm về lỗi của package.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

type idCount struct {
	ID    *string
	Count int64
}

func countsByID(rows []idCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		if r.ID != nil {
			out[*r.ID] = r.Count
		}
	}
	return out
}

func byOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

func byRoundNumber(db *gorm.DB) *gorm.DB {
	return db.Order("round_number ASC")
}
