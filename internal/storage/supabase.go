package storage

import (
	"fmt"
	"os"
	"path"

	storage_go "github.com/supabase-community/storage-go"
	supa "github.com/supabase-community/supabase-go"
)

// SupabaseBackend stores files in a Supabase storage bucket. Enable with
// USE_SUPABASE=true; the bucket must already exist and allow public reads.
type SupabaseBackend struct {
	client *supa.Client
	bucket string
}

func NewSupabaseBackend(supabaseURL, serviceKey, bucket string) (*SupabaseBackend, error) {
	if supabaseURL == "" || serviceKey == "" {
		return nil, fmt.Errorf("supabase storage requires SUPABASE_URL and SUPABASE_SERVICE_KEY")
	}
	client, err := supa.NewClient(supabaseURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("init supabase client: %w", err)
	}
	return &SupabaseBackend{client: client, bucket: bucket}, nil
}

func (b *SupabaseBackend) Upload(localPath, remoteKey string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := path.Clean(remoteKey)
	_, err = b.client.Storage.UploadFile(b.bucket, key, f)
	if err != nil {
		return "", fmt.Errorf("upload %s to bucket %s: %w", key, b.bucket, err)
	}
	return b.PublicURL(key), nil
}

func (b *SupabaseBackend) Exists(remoteKey string) bool {
	key := path.Clean(remoteKey)
	dir, name := path.Split(key)
	files, err := b.client.Storage.ListFiles(b.bucket, path.Clean(dir), storage_go.FileSearchOptions{})
	if err != nil {
		return false
	}
	for _, f := range files {
		if f.Name == name {
			return true
		}
	}
	return false
}

func (b *SupabaseBackend) Delete(remoteKey string) bool {
	_, err := b.client.Storage.RemoveFile(b.bucket, []string{path.Clean(remoteKey)})
	return err == nil
}

func (b *SupabaseBackend) PublicURL(remoteKey string) string {
	return b.client.Storage.GetPublicUrl(b.bucket, path.Clean(remoteKey)).SignedURL
}

var _ Backend = (*SupabaseBackend)(nil)
