package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/vnkhanh/bizsim-server/events"
	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/store"
	"github.com/vnkhanh/bizsim-server/utils"
)

const (
	bulkListLimit      = 50
	importErrorPreview = 10
)

// BulkService: nhật ký thao tác hàng loạt, import và export user.
type BulkService struct {
	*core
}

type CreateBulkOperationInput struct {
	Type       string  `json:"type"`
	TotalItems int     `json:"totalItems"`
	Filename   *string `json:"filename"`
}

type UpdateBulkOperationInput struct {
	Status         *string         `json:"status"`
	ProcessedItems *int            `json:"processedItems"`
	FailedItems    *int            `json:"failedItems"`
	ResultData     json.RawMessage `json:"resultData"`
}

type ImportRecord struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN STUDENT"`
	TeamName string `json:"teamName"`
}

type ImportOptions struct {
	UpdateExisting bool `json:"updateExisting"`
}

type ImportError struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

type ImportResult struct {
	Success     bool          `json:"success"`
	Processed   int           `json:"processed"`
	Failed      int           `json:"failed"`
	Errors      []ImportError `json:"errors"`
	OperationID string        `json:"operationId"`
}

var importValidator = validator.New()

// ====== bulk operation ======

func (s *BulkService) List(ctx context.Context, opType, status string) ([]models.BulkOperation, error) {
	return s.repo.ListBulkOperations(ctx, store.BulkFilter{Type: opType, Status: status, Limit: bulkListLimit})
}

func (s *BulkService) Create(ctx context.Context, initiator *models.User, in CreateBulkOperationInput) (*models.BulkOperation, error) {
	if strings.TrimSpace(in.Type) == "" {
		return nil, ErrValidation("Operation type is required")
	}
	if in.TotalItems < 0 {
		return nil, ErrValidation("totalItems cannot be negative")
	}
	op := &models.BulkOperation{
		Type:        strings.TrimSpace(in.Type),
		Status:      models.BulkPending,
		TotalItems:  in.TotalItems,
		Filename:    in.Filename,
		InitiatedBy: initiator.ID,
		StartedAt:   s.now(),
	}
	if err := s.repo.CreateBulkOperation(ctx, op); err != nil {
		return nil, err
	}
	return op, nil
}

// Update: chuyển sang COMPLETED/FAILED thì đóng dấu completedAt.
func (s *BulkService) Update(ctx context.Context, id string, in UpdateBulkOperationInput) (*models.BulkOperation, error) {
	if _, err := s.repo.GetBulkOperation(ctx, id); err != nil {
		return nil, notFound(err, "Operation not found")
	}

	updates := map[string]interface{}{}
	if in.Status != nil {
		st := models.BulkStatus(*in.Status)
		if !st.Valid() {
			return nil, ErrValidation("Invalid status")
		}
		updates["status"] = st
		if st.Terminal() {
			updates["completed_at"] = s.now()
		}
	}
	if in.ProcessedItems != nil {
		updates["processed_items"] = *in.ProcessedItems
	}
	if in.FailedItems != nil {
		updates["failed_items"] = *in.FailedItems
	}
	if len(in.ResultData) > 0 && string(in.ResultData) != "null" {
		updates["result_data"] = datatypes.JSON(in.ResultData)
	}

	if err := s.repo.UpdateBulkOperation(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.GetBulkOperation(ctx, id)
}

// ====== import ======

// ImportUsers xử lý từng bản ghi độc lập; lỗi của một bản ghi không dừng cả lô.
// Trạng thái cuối là FAILED khi mọi bản ghi đều lỗi (kể cả danh sách rỗng).
func (s *BulkService) ImportUsers(ctx context.Context, initiator *models.User, records []ImportRecord, opts ImportOptions, filename *string) (*ImportResult, error) {
	op := &models.BulkOperation{
		Type:        models.BulkImportUsers,
		Status:      models.BulkProcessing,
		TotalItems:  len(records),
		Filename:    filename,
		InitiatedBy: initiator.ID,
		StartedAt:   s.now(),
	}
	if err := s.repo.CreateBulkOperation(ctx, op); err != nil {
		return nil, err
	}

	teams := map[string]*string{}
	var processed int
	importErrors := []ImportError{}
	for _, rec := range records {
		if err := s.importOne(ctx, rec, opts, teams); err != nil {
			email := strings.TrimSpace(rec.Email)
			if email == "" {
				email = "missing"
			}
			importErrors = append(importErrors, ImportError{Email: email, Error: err.Error()})
			continue
		}
		processed++
	}
	failed := len(importErrors)

	status := models.BulkCompleted
	if failed == len(records) {
		status = models.BulkFailed
	}
	result, err := json.Marshal(map[string]interface{}{"errors": importErrors})
	if err != nil {
		return nil, err
	}
	err = s.repo.UpdateBulkOperation(ctx, op.ID, map[string]interface{}{
		"status":          status,
		"processed_items": processed,
		"failed_items":    failed,
		"result_data":     datatypes.JSON(result),
		"completed_at":    s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user import finished",
		"operation_id", op.ID,
		"total", len(records),
		"processed", processed,
		"failed", failed,
		"status", status,
	)
	s.metrics.UsersImported(processed, failed)
	s.publish(ctx, events.UsersImported, map[string]interface{}{
		"operationId": op.ID,
		"processed":   processed,
		"failed":      failed,
		"status":      status,
	})

	preview := importErrors
	if len(preview) > importErrorPreview {
		preview = preview[:importErrorPreview]
	}
	return &ImportResult{
		Success:     true,
		Processed:   processed,
		Failed:      failed,
		Errors:      preview,
		OperationID: op.ID,
	}, nil
}

func (s *BulkService) importOne(ctx context.Context, rec ImportRecord, opts ImportOptions, teams map[string]*string) error {
	rec.Email = strings.TrimSpace(rec.Email)
	rec.Name = strings.TrimSpace(rec.Name)
	rec.Role = strings.ToUpper(strings.TrimSpace(rec.Role))
	rec.TeamName = strings.TrimSpace(rec.TeamName)
	if rec.Email == "" || rec.Password == "" {
		return errors.New("Email and password are required")
	}
	if err := importValidator.Struct(rec); err != nil {
		return describeValidation(err)
	}

	existing, err := s.repo.FindUserByEmail(ctx, rec.Email)
	switch {
	case err == nil && !opts.UpdateExisting:
		return errors.New("User already exists")
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return err
	}

	var teamID *string
	if rec.TeamName != "" {
		id, ok := teams[rec.TeamName]
		if !ok {
			t, err := s.repo.FindTeamByName(ctx, rec.TeamName)
			switch {
			case err == nil:
				id = &t.ID
			case errors.Is(err, store.ErrNotFound):
				id = nil
			default:
				return err
			}
			teams[rec.TeamName] = id
		}
		teamID = id
	}

	role := models.RoleStudent
	if rec.Role != "" {
		role = models.Role(rec.Role)
	}
	hash, err := utils.HashPassword(rec.Password)
	if err != nil {
		return err
	}

	if existing != nil {
		updates := map[string]interface{}{
			"password": hash,
			"role":     role,
			"team_id":  teamID,
		}
		if rec.Name != "" {
			updates["name"] = rec.Name
		}
		return s.repo.UpdateUser(ctx, existing.ID, updates)
	}

	err = s.repo.CreateUser(ctx, &models.User{
		Name:     rec.Name,
		Email:    rec.Email,
		Password: hash,
		Role:     role,
		TeamID:   teamID,
		IsActive: true,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return errors.New("User already exists")
	}
	return err
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	switch verrs[0].Field() {
	case "Email":
		return errors.New("Invalid email address")
	case "Role":
		return errors.New("Role must be ADMIN or STUDENT")
	}
	return fmt.Errorf("%s is invalid", verrs[0].Field())
}

// ParseImportFile đọc CSV hoặc XLSX có dòng tiêu đề (name,email,password,role,teamName).
func ParseImportFile(filename string, r io.Reader) ([]ImportRecord, error) {
	var rows [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		all, err := cr.ReadAll()
		if err != nil {
			return nil, ErrValidation("Invalid CSV file: " + err.Error())
		}
		rows = all
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, ErrValidation("Invalid XLSX file")
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrValidation("XLSX file has no sheets")
		}
		rows, err = f.GetRows(sheets[0])
		if err != nil {
			return nil, ErrValidation("Invalid XLSX file")
		}
	default:
		return nil, ErrValidation("Unsupported file type; upload a .csv or .xlsx file")
	}

	if len(rows) == 0 {
		return []ImportRecord{}, nil
	}
	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["email"]; !ok {
		return nil, ErrValidation("Header row must contain an email column")
	}
	cell := func(row []string, names ...string) string {
		for _, n := range names {
			if i, ok := cols[n]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}

	records := make([]ImportRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		records = append(records, ImportRecord{
			Name:     cell(row, "name"),
			Email:    cell(row, "email"),
			Password: cell(row, "password"),
			Role:     cell(row, "role"),
			TeamName: cell(row, "teamname", "team_name", "team"),
		})
	}
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
