package storage

import (
	"bytes"
	"context"
	"io"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// Supabase lưu file vào một bucket của Supabase Storage.
type Supabase struct {
	client *storage_go.Client
	bucket string
}

func NewSupabase(url, key, bucket string) *Supabase {
	return &Supabase{
		client: storage_go.NewClient(strings.TrimRight(url, "/")+"/storage/v1", key, nil),
		bucket: bucket,
	}
}

func (s *Supabase) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	upsert := true
	options := storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	_, err := s.client.UploadFile(s.bucket, key, r, options)
	return err
}

func (s *Supabase) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if strings.Contains(key, "..") {
		return nil, ErrNotExist
	}
	data, err := s.client.DownloadFile(s.bucket, key)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "not found") || strings.Contains(msg, "404") {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
