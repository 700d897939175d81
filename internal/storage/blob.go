package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/google/uuid"
)

// UploadedImage describes a blob written to storage.
type UploadedImage struct {
	URL         string    `json:"url"`
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Timestamp   time.Time `json:"timestamp"`
}

// BlobStore writes compressed plant images to blob storage.
type BlobStore interface {
	Upload(ctx context.Context, img *CompressedImage) (*UploadedImage, error)
}

type azureBlobStore struct {
	client    *azblob.Client
	account   string
	container string
}

// NewAzureBlobStore creates a blob store backed by an Azure storage account.
func NewAzureBlobStore(accountName, accountKey, containerName string) (BlobStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid storage credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &azureBlobStore{client: client, account: accountName, container: containerName}, nil
}

// Upload writes the compressed image under a generated name. The name carries
// a timestamp and a random token so concurrent uploads cannot collide.
func (s *azureBlobStore) Upload(ctx context.Context, img *CompressedImage) (*UploadedImage, error) {
	now := time.Now().UTC()
	name := fmt.Sprintf("plants/%d-%s.jpg", now.UnixNano(), uuid.NewString()[:8])

	contentType := img.ContentType
	_, err := s.client.UploadBuffer(ctx, s.container, name, img.Data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload blob %s: %w", name, err)
	}

	return &UploadedImage{
		URL:         fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", s.account, s.container, name),
		Path:        name,
		Size:        int64(len(img.Data)),
		ContentType: contentType,
		Timestamp:   now,
	}, nil
}
