package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/storage"
	"github.com/vnkhanh/bizsim-server/utils"
)

const (
	caseFileFolder = "case-files"
	filesURLPrefix = "/api/files/"
	sniffBytes     = 3072
)

var allowedCaseFileTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
	"text/html":  true,
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
}

type CaseFileService struct {
	*core
	storage  storage.Backend
	maxBytes int64
}

type RegisterCaseFileInput struct {
	Filename     string  `json:"filename"`
	OriginalName string  `json:"originalName"`
	Filepath     string  `json:"filepath"`
	Filesize     int64   `json:"filesize"`
	MimeType     string  `json:"mimeType"`
	URL          string  `json:"url"`
	Description  *string `json:"description"`
}

type UpdateCaseFileInput struct {
	Description utils.Nullable[string] `json:"description"`
	IsActive    *bool                  `json:"isActive"`
}

type UploadInput struct {
	Filename    string
	Size        int64
	ContentType string
	Body        io.Reader
	Description *string
}

type StoredFile struct {
	Key         string `json:"-"`
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"type"`
}

func (s *CaseFileService) List(ctx context.Context) ([]models.CaseFile, error) {
	return s.repo.ListCaseFiles(ctx)
}

// Register ghi metadata cho một file đã nằm sẵn trong storage.
func (s *CaseFileService) Register(ctx context.Context, uploader *models.User, in RegisterCaseFileInput) (*models.CaseFile, error) {
	if in.Filename == "" || in.OriginalName == "" || in.Filepath == "" || in.URL == "" {
		return nil, ErrValidation("Missing required file information")
	}
	if in.Filesize < 0 {
		return nil, ErrValidation("filesize cannot be negative")
	}
	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	f := &models.CaseFile{
		Filename:     in.Filename,
		OriginalName: in.OriginalName,
		Filepath:     in.Filepath,
		Filesize:     in.Filesize,
		MimeType:     mimeType,
		URL:          in.URL,
		Description:  in.Description,
		UploadedBy:   uploader.ID,
		IsActive:     true,
	}
	if err := s.repo.CreateCaseFile(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *CaseFileService) Update(ctx context.Context, id string, in UpdateCaseFileInput) (*models.CaseFile, error) {
	if _, err := s.repo.GetCaseFile(ctx, id); err != nil {
		return nil, notFound(err, "Case file not found")
	}
	updates := map[string]interface{}{}
	in.Description.Apply(updates, "description")
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if err := s.repo.UpdateCaseFile(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.GetCaseFile(ctx, id)
}

func (s *CaseFileService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.GetCaseFile(ctx, id); err != nil {
		return notFound(err, "Case file not found")
	}
	return s.repo.UpdateCaseFile(ctx, id, map[string]interface{}{"is_active": false})
}

// UploadCaseFile kiểm tra loại file theo allow-list, lưu vào storage và ghi CaseFile.
func (s *CaseFileService) UploadCaseFile(ctx context.Context, uploader *models.User, in UploadInput) (*models.CaseFile, error) {
	if err := s.checkSize(in.Size); err != nil {
		return nil, err
	}
	body, contentType, err := resolveContentType(in.Body, in.ContentType)
	if err != nil {
		return nil, err
	}
	if !allowedCaseFileTypes[contentType] {
		return nil, ErrValidation("File type not allowed. Please upload PDF, DOC, DOCX, TXT, HTML, or image files.")
	}
	in.Body = body
	in.ContentType = contentType

	stored, err := s.put(ctx, in)
	if err != nil {
		return nil, err
	}

	f := &models.CaseFile{
		Filename:     stored.Filename,
		OriginalName: in.Filename,
		Filepath:     stored.Key,
		Filesize:     in.Size,
		MimeType:     contentType,
		URL:          stored.URL,
		Description:  blankToNil(in.Description),
		UploadedBy:   uploader.ID,
		IsActive:     true,
	}
	if err := s.repo.CreateCaseFile(ctx, f); err != nil {
		s.log.Error("case file stored but not recorded", "key", stored.Key, "error", err)
		return nil, err
	}
	s.log.Info("case file uploaded", "case_file_id", f.ID, "key", stored.Key, "size", in.Size, "type", contentType)
	return f, nil
}

// Upload lưu file không qua allow-list và không ghi CaseFile.
func (s *CaseFileService) Upload(ctx context.Context, in UploadInput) (*StoredFile, error) {
	if err := s.checkSize(in.Size); err != nil {
		return nil, err
	}
	body, contentType, err := resolveContentType(in.Body, in.ContentType)
	if err != nil {
		return nil, err
	}
	in.Body = body
	in.ContentType = contentType
	return s.put(ctx, in)
}

func (s *CaseFileService) put(ctx context.Context, in UploadInput) (*StoredFile, error) {
	if strings.TrimSpace(in.Filename) == "" {
		return nil, ErrValidation("No file uploaded")
	}
	name := fmt.Sprintf("%d_%s", s.now().UnixMilli(), utils.SanitizeFilename(filepath.Base(in.Filename)))
	key := caseFileFolder + "/" + name
	if err := s.storage.Put(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}
	return &StoredFile{
		Key:         key,
		Filename:    name,
		URL:         filesURLPrefix + key,
		Size:        in.Size,
		ContentType: in.ContentType,
	}, nil
}

func (s *CaseFileService) checkSize(size int64) error {
	if s.maxBytes > 0 && size > s.maxBytes {
		return ErrValidation(fmt.Sprintf("File exceeds the %d MB limit", s.maxBytes>>20))
	}
	return nil
}

// Open mở file đã lưu theo đường dẫn tương đối; trả về content type suy ra từ phần mở rộng.
func (s *CaseFileService) Open(ctx context.Context, p string) (io.ReadCloser, string, error) {
	p = strings.TrimPrefix(p, "/")
	if p == "" || hasDotDot(p) {
		return nil, "", ErrNotFound("File not found")
	}
	clean := path.Clean(p)

	rc, err := s.storage.Get(ctx, clean)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, "", ErrNotFound("File not found")
	}
	if err != nil {
		return nil, "", err
	}

	contentType := mime.TypeByExtension(strings.ToLower(path.Ext(clean)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return rc, contentType, nil
}

func hasDotDot(p string) bool {
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// resolveContentType lấy content type khai báo; nếu trống hoặc octet-stream thì đoán từ nội dung.
// Reader trả về vẫn đọc được toàn bộ file.
func resolveContentType(body io.Reader, declared string) (io.Reader, string, error) {
	declared = baseMediaType(declared)
	if declared != "" && declared != "application/octet-stream" {
		return body, declared, nil
	}

	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", err
	}
	head = head[:n]
	sniffed := baseMediaType(mimetype.Detect(head).String())
	return io.MultiReader(bytes.NewReader(head), body), sniffed, nil
}

func baseMediaType(v string) string {
	if v == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(v, ";")[0]))
	}
	return mt
}
