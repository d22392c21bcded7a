package rest

import (
	"context"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/gateway"
)

type objectStore struct {
	client *Client
}

// NewObjectStore returns the storage-endpoint implementation of the
// object store.
func NewObjectStore(client *Client) gateway.ObjectStore {
	return &objectStore{client: client}
}

// Upload writes the blob under the configured bucket and returns its
// public URL. The caller builds the object path with
// gateway.AttachmentPath so uploads stay namespaced per user.
func (s *objectStore) Upload(ctx context.Context, objectPath string, content []byte, contentType string) (string, error) {
	if objectPath == "" || len(content) == 0 {
		return "", domain.ErrInvalidPayload
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	path := "/storage/v1/object/" + s.client.cfg.Bucket + "/" + objectPath
	if err := s.client.do(ctx, fasthttp.MethodPost, path, "", content, contentType, nil); err != nil {
		return "", domain.WrapError(domain.ErrCodeUnavailable, "attachment upload failed", err)
	}
	return s.PublicURL(objectPath), nil
}

// PublicURL derives the public object URL from the gateway endpoint.
func (s *objectStore) PublicURL(objectPath string) string {
	base := strings.TrimRight(s.client.cfg.URL, "/")
	return base + "/storage/v1/object/public/" + s.client.cfg.Bucket + "/" + objectPath
}
