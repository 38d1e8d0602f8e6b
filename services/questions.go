package services

import (
	"context"
	"errors"
	"strings"

	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/store"
	"github.com/vnkhanh/bizsim-server/utils"
)

// QuestionService quản lý câu hỏi, phương án, danh mục và tag.
type QuestionService struct {
	*core
}

type OptionInput struct {
	// ID của phương án đã có; trống nghĩa là phương án mới.
	ID        *string `json:"id"`
	Text      string  `json:"text"`
	Points    *int    `json:"points"`
	IsCorrect *bool   `json:"isCorrect"`
	Order     *int    `json:"order"`
}

type CreateQuestionInput struct {
	RoundID           string        `json:"roundId"`
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	CaseFileURL       *string       `json:"caseFileUrl"`
	CaseFileID        *string       `json:"caseFileId"`
	CategoryID        *string       `json:"categoryId"`
	QuestionType      string        `json:"questionType"`
	MinReasoningWords *int          `json:"minReasoningWords"`
	Order             *int          `json:"order"`
	Options           []OptionInput `json:"options"`
	TagIDs            []string      `json:"tagIds"`
}

type UpdateQuestionInput struct {
	Title             *string                `json:"title"`
	Description       *string                `json:"description"`
	CaseFileURL       utils.Nullable[string] `json:"caseFileUrl"`
	CaseFileID        utils.Nullable[string] `json:"caseFileId"`
	CategoryID        utils.Nullable[string] `json:"categoryId"`
	QuestionType      *string                `json:"questionType"`
	MinReasoningWords *int                   `json:"minReasoningWords"`
	Order             *int                   `json:"order"`
	IsActive          *bool                  `json:"isActive"`
	// Options nil: giữ nguyên; khác nil: áp dụng như một diff theo id.
	Options *[]OptionInput `json:"options"`
	// TagIDs nil: giữ nguyên; khác nil: thay toàn bộ tag.
	TagIDs *[]string `json:"tagIds"`
}

type CreateCategoryInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
}

type UpdateCategoryInput struct {
	Name        *string                `json:"name"`
	Description utils.Nullable[string] `json:"description"`
	Color       *string                `json:"color"`
	IsActive    *bool                  `json:"isActive"`
}

type CreateTagInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
}

// ====== question ======

func (s *QuestionService) List(ctx context.Context, roundID string, includeInactive bool) ([]models.Question, error) {
	return s.repo.ListQuestions(ctx, store.QuestionFilter{RoundID: roundID, IncludeInactive: includeInactive})
}

func (s *QuestionService) Get(ctx context.Context, id string) (*models.Question, error) {
	q, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return nil, notFound(err, "Question not found")
	}
	return q, nil
}

func (s *QuestionService) Create(ctx context.Context, in CreateQuestionInput) (*models.Question, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.RoundID == "" || in.Title == "" || strings.TrimSpace(in.Description) == "" {
		return nil, ErrValidation("Missing required fields")
	}

	qt := models.MultipleChoice
	if in.QuestionType != "" {
		qt = models.QuestionType(in.QuestionType)
		if !qt.Valid() {
			return nil, ErrValidation("Invalid question type")
		}
	}
	minWords := models.DefaultMinReasoningWords
	if in.MinReasoningWords != nil {
		if *in.MinReasoningWords < 0 {
			return nil, ErrValidation("minReasoningWords cannot be negative")
		}
		minWords = *in.MinReasoningWords
	}
	order := 0
	if in.Order != nil {
		order = *in.Order
	}

	opts := make([]models.QuestionOption, 0, len(in.Options))
	for i, o := range in.Options {
		if strings.TrimSpace(o.Text) == "" {
			return nil, ErrValidation("Option text is required")
		}
		opts = append(opts, newOption("", i, o))
	}

	q := &models.Question{
		RoundID:           in.RoundID,
		Title:             in.Title,
		Description:       in.Description,
		CaseFileURL:       blankToNil(in.CaseFileURL),
		CaseFileID:        blankToNil(in.CaseFileID),
		CategoryID:        blankToNil(in.CategoryID),
		QuestionType:      qt,
		MinReasoningWords: minWords,
		Order:             order,
		IsActive:          true,
		Options:           opts,
	}

	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		if _, err := tx.GetRound(ctx, q.RoundID); err != nil {
			return notFound(err, "Round not found")
		}
		if err := checkQuestionRefs(ctx, tx, q.CategoryID, q.CaseFileID); err != nil {
			return err
		}
		if err := tx.CreateQuestion(ctx, q); err != nil {
			return err
		}
		if len(in.TagIDs) > 0 {
			return tx.ReplaceQuestionTags(ctx, q.ID, in.TagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("question created", "question_id", q.ID, "round_id", q.RoundID, "options", len(opts))
	return s.repo.GetQuestion(ctx, q.ID)
}

// Update áp dụng các field được gửi. Options được đối chiếu theo id: phương án có id
// thuộc câu hỏi được sửa tại chỗ, phương án không id được thêm mới, phương án cũ
// không còn trong danh sách bị xoá.
func (s *QuestionService) Update(ctx context.Context, id string, in UpdateQuestionInput) (*models.Question, error) {
	updates := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrValidation("Question title is required")
		}
		updates["title"] = title
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, ErrValidation("Question description is required")
		}
		updates["description"] = *in.Description
	}
	in.CaseFileURL.Apply(updates, "case_file_url")
	if in.CaseFileID.Value != nil && *in.CaseFileID.Value == "" {
		in.CaseFileID = utils.Null[string]()
	}
	in.CaseFileID.Apply(updates, "case_file_id")
	if in.CategoryID.Value != nil && *in.CategoryID.Value == "" {
		in.CategoryID = utils.Null[string]()
	}
	in.CategoryID.Apply(updates, "category_id")
	if in.QuestionType != nil {
		if !models.QuestionType(*in.QuestionType).Valid() {
			return nil, ErrValidation("Invalid question type")
		}
		updates["question_type"] = *in.QuestionType
	}
	if in.MinReasoningWords != nil {
		if *in.MinReasoningWords < 0 {
			return nil, ErrValidation("minReasoningWords cannot be negative")
		}
		updates["min_reasoning_words"] = *in.MinReasoningWords
	}
	if in.Order != nil {
		updates["sort_order"] = *in.Order
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.Options != nil {
		for _, o := range *in.Options {
			if strings.TrimSpace(o.Text) == "" {
				return nil, ErrValidation("Option text is required")
			}
		}
	}

	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		if _, err := tx.GetQuestion(ctx, id); err != nil {
			return notFound(err, "Question not found")
		}
		if err := checkQuestionRefs(ctx, tx, in.CategoryID.Value, in.CaseFileID.Value); err != nil {
			return err
		}
		if err := tx.UpdateQuestion(ctx, id, updates); err != nil {
			return err
		}
		if in.Options != nil {
			if err := applyOptionDiff(ctx, tx, id, *in.Options); err != nil {
				return err
			}
		}
		if in.TagIDs != nil {
			return tx.ReplaceQuestionTags(ctx, id, *in.TagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetQuestion(ctx, id)
}

func (s *QuestionService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.GetQuestion(ctx, id); err != nil {
		return notFound(err, "Question not found")
	}
	return s.repo.UpdateQuestion(ctx, id, map[string]interface{}{"is_active": false})
}

func applyOptionDiff(ctx context.Context, tx store.Repository, questionID string, inputs []OptionInput) error {
	existing, err := tx.ListOptions(ctx, questionID)
	if err != nil {
		return err
	}
	current := make(map[string]bool, len(existing))
	for _, o := range existing {
		current[o.ID] = true
	}

	kept := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		if in.ID != nil && current[*in.ID] && !kept[*in.ID] {
			kept[*in.ID] = true
			updates := map[string]interface{}{
				"text":       in.Text,
				"sort_order": optionOrder(i, in),
			}
			if in.Points != nil {
				updates["points"] = *in.Points
			}
			if in.IsCorrect != nil {
				updates["is_correct"] = *in.IsCorrect
			}
			if err := tx.UpdateOption(ctx, *in.ID, updates); err != nil {
				return err
			}
			continue
		}

		o := newOption(questionID, i, in)
		if err := tx.CreateOption(ctx, &o); err != nil {
			return err
		}
	}

	var removed []string
	for _, o := range existing {
		if !kept[o.ID] {
			removed = append(removed, o.ID)
		}
	}
	return tx.DeleteOptions(ctx, questionID, removed)
}

func newOption(questionID string, index int, in OptionInput) models.QuestionOption {
	o := models.QuestionOption{
		QuestionID: questionID,
		Text:       in.Text,
		Order:      optionOrder(index, in),
	}
	if in.Points != nil {
		o.Points = *in.Points
	}
	if in.IsCorrect != nil {
		o.IsCorrect = *in.IsCorrect
	}
	return o
}

func optionOrder(index int, in OptionInput) int {
	if in.Order != nil {
		return *in.Order
	}
	return index
}

func checkQuestionRefs(ctx context.Context, repo store.Repository, categoryID, caseFileID *string) error {
	if categoryID != nil && *categoryID != "" {
		if _, err := repo.GetCategory(ctx, *categoryID); err != nil {
			return notFound(err, "Category not found")
		}
	}
	if caseFileID != nil && *caseFileID != "" {
		if _, err := repo.GetCaseFile(ctx, *caseFileID); err != nil {
			return notFound(err, "Case file not found")
		}
	}
	return nil
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// ====== category ======

func (s *QuestionService) ListCategories(ctx context.Context) ([]models.QuestionCategory, error) {
	return s.repo.ListCategories(ctx, true)
}

func (s *QuestionService) CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.QuestionCategory, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrValidation("Category name is required")
	}
	if err := s.checkCategoryName(ctx, name, ""); err != nil {
		return nil, err
	}
	color := in.Color
	if color == "" {
		color = models.DefaultCategoryColor
	}

	c := &models.QuestionCategory{Name: name, Description: in.Description, Color: color, IsActive: true}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, conflict(err, "Category name already exists")
	}
	return c, nil
}

func (s *QuestionService) UpdateCategory(ctx context.Context, id string, in UpdateCategoryInput) (*models.QuestionCategory, error) {
	if _, err := s.repo.GetCategory(ctx, id); err != nil {
		return nil, notFound(err, "Category not found")
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrValidation("Category name is required")
		}
		if err := s.checkCategoryName(ctx, name, id); err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	in.Description.Apply(updates, "description")
	if in.Color != nil && *in.Color != "" {
		updates["color"] = *in.Color
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	if err := s.repo.UpdateCategory(ctx, id, updates); err != nil {
		return nil, conflict(err, "Category name already exists")
	}
	return s.repo.GetCategory(ctx, id)
}

// DeactivateCategory không gỡ category_id khỏi câu hỏi; thống kê coi chúng là chưa phân loại.
func (s *QuestionService) DeactivateCategory(ctx context.Context, id string) error {
	if _, err := s.repo.GetCategory(ctx, id); err != nil {
		return notFound(err, "Category not found")
	}
	return s.repo.UpdateCategory(ctx, id, map[string]interface{}{"is_active": false})
}

func (s *QuestionService) checkCategoryName(ctx context.Context, name, selfID string) error {
	other, err := s.repo.FindCategoryByName(ctx, name)
	switch {
	case err == nil && other.ID != selfID:
		return ErrConflict("Category name already exists")
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return err
	}
	return nil
}

// ====== tag ======

func (s *QuestionService) ListTags(ctx context.Context) ([]models.QuestionTag, error) {
	return s.repo.ListTags(ctx)
}

func (s *QuestionService) CreateTag(ctx context.Context, in CreateTagInput) (*models.QuestionTag, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrValidation("Tag name is required")
	}
	if _, err := s.repo.FindTagByName(ctx, name); err == nil {
		return nil, ErrConflict("Tag name already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	color := in.Color
	if color == "" {
		color = models.DefaultTagColor
	}

	t := &models.QuestionTag{Name: name, Description: in.Description, Color: color}
	if err := s.repo.CreateTag(ctx, t); err != nil {
		return nil, conflict(err, "Tag name already exists")
	}
	return t, nil
}
