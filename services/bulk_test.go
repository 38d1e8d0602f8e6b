package services

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/bizsim-server/models"
)

func TestImportUsersSummary(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("Admin", "admin@example.com", models.RoleAdmin, nil, false)
	alpha := e.team("Alpha")
	e.user("Existing", "taken@example.com", models.RoleStudent, nil, false)

	records := []ImportRecord{
		{Name: "New One", Email: "one@example.com", Password: "pw1", TeamName: "Alpha"},
		{Name: "New Two", Email: "two@example.com", Password: "pw2", Role: "admin", TeamName: "Nowhere"},
		{Name: "Dup", Email: "taken@example.com", Password: "pw"},
		{Name: "No Password", Email: "nopw@example.com"},
		{Name: "Bad Email", Email: "not-an-email", Password: "pw"},
		{Name: "Bad Role", Email: "role@example.com", Password: "pw", Role: "OWNER"},
		{},
	}

	res, err := e.svc.Bulk.ImportUsers(e.ctx, admin, records, ImportOptions{}, nil)
	if err != nil {
		t.Fatalf("ImportUsers: %v", err)
	}
	if !res.Success || res.Processed != 2 || res.Failed != 5 || len(res.Errors) != 5 {
		t.Fatalf("unexpected summary: %+v", res)
	}
	if res.Errors[0].Email != "taken@example.com" || res.Errors[0].Error != "User already exists" {
		t.Errorf("first error = %+v", res.Errors[0])
	}
	if res.Errors[1].Error != "Email and password are required" {
		t.Errorf("second error = %+v", res.Errors[1])
	}
	if res.Errors[4].Email != "missing" {
		t.Errorf("blank record should report email 'missing', got %q", res.Errors[4].Email)
	}

	one, err := e.repo.FindUserByEmail(e.ctx, "one@example.com")
	if err != nil {
		t.Fatalf("imported user missing: %v", err)
	}
	if one.TeamID == nil || *one.TeamID != alpha.ID || one.Role != models.RoleStudent {
		t.Errorf("team/role not resolved: %+v", one)
	}
	two, _ := e.repo.FindUserByEmail(e.ctx, "two@example.com")
	if two.TeamID != nil || two.Role != models.RoleAdmin {
		t.Errorf("unknown team should give no team, role should be ADMIN: %+v", two)
	}

	op, err := e.repo.GetBulkOperation(e.ctx, res.OperationID)
	if err != nil {
		t.Fatalf("GetBulkOperation: %v", err)
	}
	if op.Status != models.BulkCompleted || op.ProcessedItems != 2 || op.FailedItems != 5 || op.TotalItems != 7 {
		t.Errorf("operation not finalised: %+v", op)
	}
	if op.CompletedAt == nil {
		t.Error("completedAt should be stamped")
	}
}

func TestImportUsersUpdateExistingAndAllFailed(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("Admin", "admin@example.com", models.RoleAdmin, nil, false)
	e.user("Old Name", "taken@example.com", models.RoleStudent, nil, false)

	res, err := e.svc.Bulk.ImportUsers(e.ctx, admin, []ImportRecord{
		{Name: "New Name", Email: "taken@example.com", Password: "changed"},
	}, ImportOptions{UpdateExisting: true}, nil)
	if err != nil {
		t.Fatalf("ImportUsers: %v", err)
	}
	if res.Processed != 1 || res.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", res)
	}
	u, _ := e.repo.FindUserByEmail(e.ctx, "taken@example.com")
	if u.Name != "New Name" {
		t.Errorf("name not updated: %q", u.Name)
	}
	if _, err := e.svc.Auth.Login(e.ctx, "taken@example.com", "changed", LoginMeta{}); err != nil {
		t.Errorf("new password should work: %v", err)
	}

	res, err = e.svc.Bulk.ImportUsers(e.ctx, admin, []ImportRecord{{Email: "x@example.com"}}, ImportOptions{}, nil)
	if err != nil {
		t.Fatalf("ImportUsers: %v", err)
	}
	op, _ := e.repo.GetBulkOperation(e.ctx, res.OperationID)
	if op.Status != models.BulkFailed {
		t.Errorf("all-failed import should be FAILED, got %s", op.Status)
	}

	res, _ = e.svc.Bulk.ImportUsers(e.ctx, admin, nil, ImportOptions{}, nil)
	op, _ = e.repo.GetBulkOperation(e.ctx, res.OperationID)
	if op.Status != models.BulkFailed {
		t.Errorf("empty import should be FAILED, got %s", op.Status)
	}
}

func TestImportErrorsPreviewIsCapped(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("Admin", "admin@example.com", models.RoleAdmin, nil, false)

	records := make([]ImportRecord, 12)
	res, err := e.svc.Bulk.ImportUsers(e.ctx, admin, records, ImportOptions{}, nil)
	if err != nil {
		t.Fatalf("ImportUsers: %v", err)
	}
	if res.Failed != 12 || len(res.Errors) != 10 {
		t.Errorf("expected 12 failures with 10 previewed, got %d/%d", res.Failed, len(res.Errors))
	}
}

func TestExportUsersCSVMatchesJSON(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("Admin", "admin@example.com", models.RoleAdmin, nil, false)
	alpha := e.team("Alpha")
	e.user("Quote \"Q\", Jr.", "q@example.com", models.RoleStudent, &alpha.ID, true)
	gone := e.user("Gone", "gone@example.com", models.RoleStudent, nil, false)
	e.svc.Users.Deactivate(e.ctx, gone.ID)

	exp, err := e.svc.Bulk.ExportUsers(e.ctx, admin, "csv", false)
	if err != nil {
		t.Fatalf("ExportUsers: %v", err)
	}
	if len(exp.Users) != 2 {
		t.Fatalf("inactive users must be excluded, got %d", len(exp.Users))
	}
	if exp.Users[0].Role != "ADMIN" {
		t.Errorf("export should be ordered by role asc")
	}
	if !strings.HasPrefix(exp.Filename(), "users_export_") || !strings.HasSuffix(exp.Filename(), ".csv") {
		t.Errorf("filename = %s", exp.Filename())
	}

	var buf bytes.Buffer
	if err := exp.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("exported CSV does not parse: %v", err)
	}
	if len(rows) != 3 || len(rows[0]) != 12 {
		t.Fatalf("expected header + 2 rows of 12 columns, got %d rows", len(rows))
	}
	student := rows[2]
	if student[1] != "Quote \"Q\", Jr." || student[4] != "Alpha" || student[5] != "true" {
		t.Errorf("CSV row does not match JSON data: %v", student)
	}

	all, err := e.svc.Bulk.ExportUsers(e.ctx, admin, "json", true)
	if err != nil {
		t.Fatalf("ExportUsers: %v", err)
	}
	if len(all.Users) != 3 {
		t.Errorf("includeInactive should return 3 users, got %d", len(all.Users))
	}

	_, err = e.svc.Bulk.ExportUsers(e.ctx, admin, "pdf", false)
	wantKind(t, err, KindValidation, "")

	ops, err := e.svc.Bulk.List(e.ctx, models.BulkExportUsers, string(models.BulkCompleted))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ops) != 2 {
		t.Errorf("each export should log a COMPLETED operation, got %d", len(ops))
	}
}

func TestExportUsersXLSX(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("Admin", "admin@example.com", models.RoleAdmin, nil, false)

	exp, err := e.svc.Bulk.ExportUsers(e.ctx, admin, "xlsx", false)
	if err != nil {
		t.Fatalf("ExportUsers: %v", err)
	}
	var buf bytes.Buffer
	if err := exp.WriteXLSX(&buf); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Users")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 || rows[0][2] != "email" || rows[1][2] != "admin@example.com" {
		t.Errorf("unexpected sheet contents: %v", rows)
	}
}

func TestBulkOperationUpdate(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("Admin", "admin@example.com", models.RoleAdmin, nil, false)

	_, err := e.svc.Bulk.Create(e.ctx, admin, CreateBulkOperationInput{})
	wantKind(t, err, KindValidation, "Operation type is required")

	op, err := e.svc.Bulk.Create(e.ctx, admin, CreateBulkOperationInput{Type: "RESET_SCORES"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if op.Status != models.BulkPending {
		t.Errorf("new operation should be PENDING, got %s", op.Status)
	}

	_, err = e.svc.Bulk.Update(e.ctx, op.ID, UpdateBulkOperationInput{Status: strPtr("DONE")})
	wantKind(t, err, KindValidation, "Invalid status")
	_, err = e.svc.Bulk.Update(e.ctx, "missing", UpdateBulkOperationInput{})
	wantKind(t, err, KindNotFound, "Operation not found")

	got, err := e.svc.Bulk.Update(e.ctx, op.ID, UpdateBulkOperationInput{
		Status:         strPtr("COMPLETED"),
		ProcessedItems: intPtr(4),
		ResultData:     []byte(`{"ok":true}`),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.CompletedAt == nil || got.ProcessedItems != 4 {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestParseImportFile(t *testing.T) {
	csvBody := "Name,Email,Password,Role,TeamName\n" +
		"Alice,alice@example.com,pw,STUDENT,Alpha\n" +
		",,,,\n" +
		"Bob,bob@example.com,pw2\n"
	recs, err := ParseImportFile("users.csv", strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("ParseImportFile(csv): %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records (blank row skipped), got %d", len(recs))
	}
	if recs[0].TeamName != "Alpha" || recs[1].Email != "bob@example.com" || recs[1].Role != "" {
		t.Errorf("unexpected records: %+v", recs)
	}

	f := excelize.NewFile()
	f.SetSheetRow("Sheet1", "A1", &[]interface{}{"email", "password", "team"})
	f.SetSheetRow("Sheet1", "A2", &[]interface{}{"carol@example.com", "pw", "Beta"})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	recs, err = ParseImportFile("users.XLSX", &buf)
	if err != nil {
		t.Fatalf("ParseImportFile(xlsx): %v", err)
	}
	if len(recs) != 1 || recs[0].Email != "carol@example.com" || recs[0].TeamName != "Beta" {
		t.Errorf("unexpected xlsx records: %+v", recs)
	}

	_, err = ParseImportFile("users.txt", strings.NewReader("x"))
	wantKind(t, err, KindValidation, "")
	_, err = ParseImportFile("users.csv", strings.NewReader("name,password\nA,pw\n"))
	wantKind(t, err, KindValidation, "Header row must contain an email column")
}
