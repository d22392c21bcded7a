package gateway

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
)

// ObjectStore uploads binary blobs to the platform's object storage and
// returns a public URL for the stored object.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath string, content []byte, contentType string) (string, error)
}

// AttachmentPath namespaces an upload under the owning user with a
// generated unique suffix so concurrent uploads of the same filename
// never collide.
func AttachmentPath(userID, filename string) string {
	name := path.Base(filename)
	if name == "." || name == "/" || name == "" {
		name = "attachment"
	}
	return fmt.Sprintf("%s/%s-%s", userID, uuid.NewString(), name)
}
