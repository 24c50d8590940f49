package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/codecircle/backend/internal/apperror"
)

func TestCheckImage(t *testing.T) {
	assert.NoError(t, CheckImage("image/png", 1024, 5<<20))
	assert.NoError(t, CheckImage("IMAGE/JPEG", 5<<20, 5<<20))
	assert.True(t, apperror.Is(CheckImage("application/pdf", 10, 5<<20), apperror.InvalidArgument))
	assert.True(t, apperror.Is(CheckImage("image/png", 5<<20+1, 5<<20), apperror.InvalidArgument))
}

func TestObjectName(t *testing.T) {
	name := ObjectName("Cat.PNG", "image/png")
	assert.True(t, strings.HasPrefix(name, "posts/"))
	assert.True(t, strings.HasSuffix(name, ".png"))

	assert.True(t, strings.HasSuffix(ObjectName("blob", "image/webp"), ".webp"))
	assert.NotEqual(t, ObjectName("a.png", ""), ObjectName("a.png", ""))
}

func TestNopUploader(t *testing.T) {
	_, err := NopUploader{}.Upload(context.Background(), "x", "image/png", strings.NewReader(""))
	assert.True(t, apperror.Is(err, apperror.UpstreamFailure))
}

type fakeS3 struct {
	input *s3manager.UploadInput
	body  string
	err   error
}

func (f *fakeS3) UploadWithContext(_ aws.Context, input *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.input, f.body = input, string(b)
	return &s3manager.UploadOutput{Location: "https://media.s3.amazonaws.com/" + aws.StringValue(input.Key)}, nil
}

func TestS3Uploader(t *testing.T) {
	fake := &fakeS3{}
	u := &S3Uploader{uploader: fake, bucket: "media"}

	url, err := u.Upload(context.Background(), "posts/a.png", "image/png", strings.NewReader("bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://media.s3.amazonaws.com/posts/a.png", url)
	assert.Equal(t, "media", aws.StringValue(fake.input.Bucket))
	assert.Equal(t, "image/png", aws.StringValue(fake.input.ContentType))
	assert.Equal(t, "bytes", fake.body)

	fake.err = errors.New("denied")
	_, err = u.Upload(context.Background(), "posts/b.png", "image/png", strings.NewReader("bytes"))
	assert.Error(t, err)
}
