package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/vnkhanh/bizsim-server/models"
)

const (
	ExportJSON = "json"
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"

	exportSheet = "Users"
)

type ExportUser struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	Role                  string `json:"role"`
	TeamName              string `json:"teamName"`
	IsGroupLeader         bool   `json:"isGroupLeader"`
	IndividualScore       int    `json:"individualScore"`
	TotalSubmissionPoints int    `json:"totalSubmissionPoints"`
	SubmissionCount       int    `json:"submissionCount"`
	IsActive              bool   `json:"isActive"`
	CreatedAt             string `json:"createdAt"`
	UpdatedAt             string `json:"updatedAt"`
}

var exportHeader = []string{
	"id", "name", "email", "role", "teamName", "isGroupLeader", "individualScore",
	"totalSubmissionPoints", "submissionCount", "isActive", "createdAt", "updatedAt",
}

func (u ExportUser) row() []string {
	return []string{
		u.ID,
		u.Name,
		u.Email,
		u.Role,
		u.TeamName,
		strconv.FormatBool(u.IsGroupLeader),
		strconv.Itoa(u.IndividualScore),
		strconv.Itoa(u.TotalSubmissionPoints),
		strconv.Itoa(u.SubmissionCount),
		strconv.FormatBool(u.IsActive),
		u.CreatedAt,
		u.UpdatedAt,
	}
}

type UserExport struct {
	Format          string
	Users           []ExportUser
	ExportedAt      time.Time
	IncludeInactive bool
	OperationID     string
}

// Filename theo dạng users_export_YYYY-MM-DD.<format>.
func (e *UserExport) Filename() string {
	return fmt.Sprintf("users_export_%s.%s", e.ExportedAt.Format("2006-01-02"), e.Format)
}

func (e *UserExport) ContentType() string {
	switch e.Format {
	case ExportCSV:
		return "text/csv"
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json"
}

// WriteCSV ghi CSV chuẩn RFC 4180 (dấu phẩy, ngoặc kép, xuống dòng đều được escape).
func (e *UserExport) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, u := range e.Users {
		if err := cw.Write(u.row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (e *UserExport) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, u := range e.Users {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			u.ID, u.Name, u.Email, u.Role, u.TeamName, u.IsGroupLeader, u.IndividualScore,
			u.TotalSubmissionPoints, u.SubmissionCount, u.IsActive, u.CreatedAt, u.UpdatedAt,
		}
		if err := sw.SetRow(cellRef, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

// ExportUsers lấy user (chỉ active nếu includeInactive=false), sắp theo role rồi tên,
// và ghi một BulkOperation EXPORT_USERS đã hoàn tất.
func (s *BulkService) ExportUsers(ctx context.Context, initiator *models.User, format string, includeInactive bool) (*UserExport, error) {
	if format == "" {
		format = ExportJSON
	}
	if format != ExportJSON && format != ExportCSV && format != ExportXLSX {
		return nil, ErrValidation("format must be json, csv or xlsx")
	}

	users, err := s.repo.ListUsersForExport(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.SubmissionTotals(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]ExportUser, 0, len(users))
	for _, u := range users {
		teamName := ""
		if u.Team != nil {
			teamName = u.Team.Name
		}
		t := totals[u.ID]
		rows = append(rows, ExportUser{
			ID:                    u.ID,
			Name:                  u.Name,
			Email:                 u.Email,
			Role:                  string(u.Role),
			TeamName:              teamName,
			IsGroupLeader:         u.IsGroupLeader,
			IndividualScore:       u.IndividualScore,
			TotalSubmissionPoints: t.Points,
			SubmissionCount:       t.Count,
			IsActive:              u.IsActive,
			CreatedAt:             u.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:             u.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	now := s.now()
	exp := &UserExport{
		Format:          format,
		Users:           rows,
		ExportedAt:      now,
		IncludeInactive: includeInactive,
	}

	filename := exp.Filename()
	result, err := json.Marshal(map[string]interface{}{"format": format, "includeInactive": includeInactive})
	if err != nil {
		return nil, err
	}
	op := &models.BulkOperation{
		Type:           models.BulkExportUsers,
		Status:         models.BulkCompleted,
		TotalItems:     len(rows),
		ProcessedItems: len(rows),
		Filename:       &filename,
		ResultData:     datatypes.JSON(result),
		InitiatedBy:    initiator.ID,
		StartedAt:      now,
		CompletedAt:    &now,
	}
	if err := s.repo.CreateBulkOperation(ctx, op); err != nil {
		return nil, err
	}
	exp.OperationID = op.ID

	s.log.Info("users exported", "format", format, "count", len(rows), "include_inactive", includeInactive)
	return exp, nil
}
