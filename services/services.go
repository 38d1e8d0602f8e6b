// Package services chứa nghiệp vụ: phiên chơi, round, câu hỏi, chấm điểm,
// bảng xếp hạng, import/export. Mọi truy cập dữ liệu đi qua store.Repository.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vnkhanh/bizsim-server/events"
	"github.com/vnkhanh/bizsim-server/metrics"
	"github.com/vnkhanh/bizsim-server/sessionstore"
	"github.com/vnkhanh/bizsim-server/storage"
	"github.com/vnkhanh/bizsim-server/store"
	"github.com/vnkhanh/bizsim-server/utils"
)

type Deps struct {
	Repo     store.Repository
	Sessions sessionstore.Store
	Tokens   *utils.TokenManager
	Storage  storage.Backend
	Events   events.Publisher
	Metrics  *metrics.Metrics
	Google   GoogleVerifier
	Log      *slog.Logger
	// MaxUploadBytes <= 0: không giới hạn
	MaxUploadBytes int64
	// Now mặc định time.Now().UTC()
	Now func() time.Time
}

type Services struct {
	Auth        *AuthService
	Users       *UserService
	Teams       *TeamService
	Games       *GameService
	Questions   *QuestionService
	CaseFiles   *CaseFileService
	Submissions *SubmissionService
	Reports     *ReportService
	Bulk        *BulkService
}

func New(d Deps) *Services {
	c := &core{
		repo:    d.Repo,
		events:  d.Events,
		metrics: d.Metrics,
		log:     d.Log,
		now:     d.Now,
	}
	if c.events == nil {
		c.events = events.Noop{}
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.now == nil {
		c.now = func() time.Time { return time.Now().UTC() }
	}

	return &Services{
		Auth:        &AuthService{core: c, sessions: d.Sessions, tokens: d.Tokens, google: d.Google},
		Users:       &UserService{core: c},
		Teams:       &TeamService{core: c},
		Games:       &GameService{core: c},
		Questions:   &QuestionService{core: c},
		CaseFiles:   &CaseFileService{core: c, storage: d.Storage, maxBytes: d.MaxUploadBytes},
		Submissions: &SubmissionService{core: c},
		Reports:     &ReportService{core: c},
		Bulk:        &BulkService{core: c},
	}
}

// core là phần dùng chung của mọi service.
type core struct {
	repo    store.Repository
	events  events.Publisher
	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time
}

// publish gửi event sau khi commit; lỗi chỉ được log.
func (c *core) publish(ctx context.Context, routingKey string, data interface{}) {
	if err := c.events.Publish(ctx, routingKey, data); err != nil {
		c.log.Warn("publish event failed", "routing_key", routingKey, "error", err)
	}
}

// notFound đổi store.ErrNotFound thành lỗi NotFound với msg.
func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound(msg)
	}
	return err
}

// conflict đổi store.ErrDuplicate thành lỗi Conflict với msg.
func conflict(err error, msg string) error {
	if errors.Is(err, store.ErrDuplicate) {
		return ErrConflict(msg)
	}
	return err
}
