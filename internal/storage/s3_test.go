package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects in a map keyed by bucket/key.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	puts    []*s3.PutObjectInput
	headErr error
	getErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]string)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(v))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = string(data)
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func TestS3Storage_RoundTrip(t *testing.T) {
	fake := newFakeS3()
	s := NewS3StorageWithClient(fake, "catalog", "test/")
	ctx := context.Background()

	_, err := s.Get(ctx, "items")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "items", `[{"id":"1"}]`))
	v, err := s.Get(ctx, "items")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, v)

	require.Len(t, fake.puts, 1)
	assert.Equal(t, "test/items", aws.ToString(fake.puts[0].Key))
	assert.Equal(t, int64(len(`[{"id":"1"}]`)), aws.ToInt64(fake.puts[0].ContentLength))

	require.NoError(t, s.Remove(ctx, "items"))
	require.NoError(t, s.Remove(ctx, "items"), "removing a missing key is not an error")
	_, err = s.Get(ctx, "items")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Storage_Errors(t *testing.T) {
	fake := newFakeS3()
	s := NewS3StorageWithClient(fake, "catalog", "")
	ctx := context.Background()

	fake.getErr = &smithy.GenericAPIError{Code: "NotFound"}
	_, err := s.Get(ctx, "items")
	assert.ErrorIs(t, err, ErrNotFound, "bare NotFound code counts as a missing key")

	fake.getErr = &smithy.GenericAPIError{Code: "AccessDenied"}
	_, err = s.Get(ctx, "items")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	assert.NoError(t, s.Ping(ctx))
	fake.headErr = errors.New("no route to host")
	assert.Error(t, s.Ping(ctx))
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), S3Options{Region: "us-east-1"})
	assert.Error(t, err)
}
