package blobstore

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// azBlobStore backs the AzBlob tag (spec.md §6).
type azBlobStore struct {
	client    *azblob.Client
	container string
}

func newAzBlobStore(c BackendConfig) (*azBlobStore, error) {
	cred, err := azblob.NewSharedKeyCredential(c.AccountName, c.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("blobstore: azblob credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", c.AccountName)

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("blobstore: azblob client: %w", err)
	}

	return &azBlobStore{client: client, container: c.Container}, nil
}

func (s *azBlobStore) Write(ctx context.Context, key string, data []byte) error {
	_, err := s.client.UploadBuffer(ctx, s.container, key, data, nil)
	if err != nil {
		return &StoreError{Backend: "azblob", Key: key, Err: err}
	}

	return nil
}

func (s *azBlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, &StoreError{Backend: "azblob", Key: key, Err: ErrNotFound}
		}

		return nil, &StoreError{Backend: "azblob", Key: key, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &StoreError{Backend: "azblob", Key: key, Err: err}
	}

	return data, nil
}

func (s *azBlobStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	var entries []Entry

	pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{
		Prefix: to.Ptr(prefix),
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, &StoreError{Backend: "azblob", Key: prefix, Err: err}
		}

		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				entries = append(entries, Entry{Path: *item.Name})
			}
		}
	}

	return entries, nil
}

func (s *azBlobStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, key, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return &StoreError{Backend: "azblob", Key: key, Err: err}
	}

	return nil
}

func (s *azBlobStore) Stat(ctx context.Context, key string) (Stat, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(key)

	props, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return Stat{}, &StoreError{Backend: "azblob", Key: key, Err: ErrNotFound}
		}

		return Stat{}, &StoreError{Backend: "azblob", Key: key, Err: err}
	}

	var size int64
	if props.ContentLength != nil {
		size = *props.ContentLength
	}

	return Stat{ContentLength: size}, nil
}
