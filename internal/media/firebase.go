package media

import (
	"context"
	"fmt"
	"io"

	"firebase.google.com/go/v4/storage"
	"github.com/pkg/errors"
)

// FirebaseUploader writes objects to a Firebase Storage bucket.
type FirebaseUploader struct {
	client *storage.Client
	bucket string
}

// NewFirebaseUploader creates a FirebaseUploader on the named bucket.
func NewFirebaseUploader(client *storage.Client, bucket string) *FirebaseUploader {
	return &FirebaseUploader{client: client, bucket: bucket}
}

// Upload streams r into the bucket and returns the object's public URL.
// name is used as-is and must be URL safe; see ObjectName.
func (u *FirebaseUploader) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	handle, err := u.client.Bucket(u.bucket)
	if err != nil {
		return "", errors.Wrap(err, "open bucket")
	}

	w := handle.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err = io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrap(err, "write object")
	}
	if err = w.Close(); err != nil {
		return "", errors.Wrap(err, "finalize object")
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, name), nil
}
