package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/bizsim-server/models"
)

func questionRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Round").
		Preload("Round.GameSession").
		Preload("Category").
		Preload("CaseFile").
		Preload("Options", byOrder).
		Preload("Tags")
}

func (r *gormRepo) ListQuestions(ctx context.Context, f QuestionFilter) ([]models.Question, error) {
	var questions []models.Question
	q := questionRelations(r.conn(ctx))
	if f.RoundID != "" {
		q = q.Where("round_id = ?", f.RoundID)
	}
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("sort_order ASC").Find(&questions).Error; err != nil {
		return nil, translate(err)
	}

	if len(questions) == 0 {
		return questions, nil
	}
	ids := make([]string, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
	}
	var rows []idCount
	err := r.conn(ctx).Model(&models.Submission{}).
		Select("question_id AS id, COUNT(*) AS count").
		Where("question_id IN ?", ids).
		Group("question_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	counts := countsByID(rows)
	for i := range questions {
		n := counts[questions[i].ID]
		questions[i].SubmissionCount = &n
	}
	return questions, nil
}

func (r *gormRepo) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	var q models.Question
	if err := questionRelations(r.conn(ctx)).First(&q, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	var n int64
	if err := r.conn(ctx).Model(&models.Submission{}).Where("question_id = ?", id).Count(&n).Error; err != nil {
		return nil, translate(err)
	}
	q.SubmissionCount = &n
	return &q, nil
}

// CreateQuestion tạo câu hỏi cùng options; tags gắn riêng qua ReplaceQuestionTags.
func (r *gormRepo) CreateQuestion(ctx context.Context, q *models.Question) error {
	return translate(r.conn(ctx).Omit("Round", "Category", "CaseFile", "Tags").Create(q).Error)
}

func (r *gormRepo) UpdateQuestion(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return translate(r.conn(ctx).Model(&models.Question{}).Where("id = ?", id).Updates(updates).Error)
}

func (r *gormRepo) ReplaceQuestionTags(ctx context.Context, questionID string, tagIDs []string) error {
	assoc := r.conn(ctx).Model(&models.Question{ID: questionID}).Association("Tags")
	if len(tagIDs) == 0 {
		return translate(assoc.Clear())
	}
	var tags []models.QuestionTag
	if err := r.conn(ctx).Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return translate(err)
	}
	if len(tags) == 0 {
		return translate(assoc.Clear())
	}
	return translate(assoc.Replace(&tags))
}

func (r *gormRepo) ListOptions(ctx context.Context, questionID string) ([]models.QuestionOption, error) {
	var opts []models.QuestionOption
	err := r.conn(ctx).Where("question_id = ?", questionID).Order("sort_order ASC").Find(&opts).Error
	return opts, translate(err)
}

func (r *gormRepo) CreateOption(ctx context.Context, o *models.QuestionOption) error {
	return translate(r.conn(ctx).Create(o).Error)
}

func (r *gormRepo) UpdateOption(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return translate(r.conn(ctx).Model(&models.QuestionOption{}).Where("id = ?", id).Updates(updates).Error)
}

func (r *gormRepo) DeleteOptions(ctx context.Context, questionID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.conn(ctx).
		Where("question_id = ? AND id IN ?", questionID, ids).
		Delete(&models.QuestionOption{}).Error
	return translate(err)
}

// ====== category / tag / case file ======

func (r *gormRepo) ListCategories(ctx context.Context, activeOnly bool) ([]models.QuestionCategory, error) {
	var cats []models.QuestionCategory
	q := r.conn(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("name ASC").Find(&cats).Error; err != nil {
		return nil, translate(err)
	}

	var rows []idCount
	err := r.conn(ctx).Model(&models.Question{}).
		Select("category_id AS id, COUNT(*) AS count").
		Where("category_id IS NOT NULL").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	counts := countsByID(rows)
	for i := range cats {
		n := counts[cats[i].ID]
		cats[i].QuestionCount = &n
	}
	return cats, nil
}

func (r *gormRepo) GetCategory(ctx context.Context, id string) (*models.QuestionCategory, error) {
	var c models.QuestionCategory
	if err := r.conn(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *gormRepo) FindCategoryByName(ctx context.Context, name string) (*models.QuestionCategory, error) {
	var c models.QuestionCategory
	if err := r.conn(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *gormRepo) CreateCategory(ctx context.Context, c *models.QuestionCategory) error {
	return translate(r.conn(ctx).Create(c).Error)
}

func (r *gormRepo) UpdateCategory(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return translate(r.conn(ctx).Model(&models.QuestionCategory{}).Where("id = ?", id).Updates(updates).Error)
}

func (r *gormRepo) ListTags(ctx context.Context) ([]models.QuestionTag, error) {
	var tags []models.QuestionTag
	if err := r.conn(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, translate(err)
	}

	var rows []idCount
	err := r.conn(ctx).Table("question_tag_relations").
		Select("question_tag_id AS id, COUNT(*) AS count").
		Group("question_tag_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	counts := countsByID(rows)
	for i := range tags {
		n := counts[tags[i].ID]
		tags[i].QuestionCount = &n
	}
	return tags, nil
}

func (r *gormRepo) FindTagByName(ctx context.Context, name string) (*models.QuestionTag, error) {
	var t models.QuestionTag
	if err := r.conn(ctx).Where("name = ?", name).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *gormRepo) CreateTag(ctx context.Context, t *models.QuestionTag) error {
	return translate(r.conn(ctx).Create(t).Error)
}

func (r *gormRepo) ListCaseFiles(ctx context.Context) ([]models.CaseFile, error) {
	var files []models.CaseFile
	err := r.conn(ctx).
		Preload("Uploader").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, translate(err)
	}

	var rows []idCount
	err = r.conn(ctx).Model(&models.Question{}).
		Select("case_file_id AS id, COUNT(*) AS count").
		Where("case_file_id IS NOT NULL").
		Group("case_file_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	counts := countsByID(rows)
	for i := range files {
		n := counts[files[i].ID]
		files[i].QuestionCount = &n
	}
	return files, nil
}

func (r *gormRepo) GetCaseFile(ctx context.Context, id string) (*models.CaseFile, error) {
	var f models.CaseFile
	if err := r.conn(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func (r *gormRepo) CreateCaseFile(ctx context.Context, f *models.CaseFile) error {
	return translate(r.conn(ctx).Omit(clause.Associations).Create(f).Error)
}

func (r *gormRepo) UpdateCaseFile(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return translate(r.conn(ctx).Model(&models.CaseFile{}).Where("id = ?", id).Updates(updates).Error)
}
