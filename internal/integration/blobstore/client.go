// Package blobstore stores uploaded images in Azure Blob Storage.
package blobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// ErrNotFound is returned when deleting a blob or container that does not exist.
var ErrNotFound = errors.New("blob not found")

// Client wraps an Azure Blob Storage account.
type Client struct {
	client *azblob.Client
}

// NewClient connects using an Azure Storage connection string.
func NewClient(connectionString string) (*Client, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}
	return &Client{client: client}, nil
}

// Upload writes data as a block blob and returns its URL.
func (c *Client) Upload(ctx context.Context, container, name, contentType string, data []byte) (string, error) {
	_, err := c.client.UploadBuffer(ctx, container, name, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return "", fmt.Errorf("upload blob %s/%s: %w", container, name, err)
	}

	return c.client.ServiceClient().NewContainerClient(container).NewBlobClient(name).URL(), nil
}

// Delete removes a blob.
func (c *Client) Delete(ctx context.Context, container, name string) error {
	_, err := c.client.DeleteBlob(ctx, container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s/%s: %w", container, name, err)
	}
	return nil
}
