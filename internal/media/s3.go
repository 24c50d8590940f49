package media

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

// s3API is the part of s3manager.Uploader used here.
type s3API interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// S3Uploader writes objects to an S3 bucket with the multipart upload manager.
type S3Uploader struct {
	uploader s3API
	bucket   string
}

// NewS3Uploader creates an S3Uploader using the default AWS credential chain.
func NewS3Uploader(region, bucket string) (*S3Uploader, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, errors.Wrap(err, "create AWS session")
	}
	return &S3Uploader{uploader: s3manager.NewUploader(sess), bucket: bucket}, nil
}

// Upload streams r into the bucket and returns the object location.
func (u *S3Uploader) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	out, err := u.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(name),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrap(err, "upload to s3")
	}
	return out.Location, nil
}
