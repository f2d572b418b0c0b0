package storage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wayfarer/internal/storage"
)

const baseURL = "https://cdn.wayfarer.test/images"

type mockS3 struct {
	calls []*s3.DeleteObjectsInput
	fn    func(in *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error)
}

func (m *mockS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	m.calls = append(m.calls, in)
	if m.fn != nil {
		return m.fn(in)
	}
	return &s3.DeleteObjectsOutput{}, nil
}

var _ storage.S3API = (*mockS3)(nil)

func keys(in *s3.DeleteObjectsInput) []string {
	out := make([]string, len(in.Delete.Objects))
	for i, o := range in.Delete.Objects {
		out[i] = aws.ToString(o.Key)
	}
	return out
}

func TestS3Cleaner_KeyFor(t *testing.T) {
	c := storage.NewS3CleanerWithClient(&mockS3{}, "bucket", baseURL+"/", nil)

	cases := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{baseURL + "/lists/1/a.jpg", "lists/1/a.jpg", true},
		{baseURL + "/a.jpg?v=2", "a.jpg", true},
		{"https://elsewhere.test/images/a.jpg", "", false},
		{baseURL + "/", "", false},
		{baseURL + "/../secrets", "", false},
		{baseURL + "x/a.jpg", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			got, ok := c.KeyFor(tc.url)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestS3Cleaner_DeleteImages_skipsForeignURLs(t *testing.T) {
	client := &mockS3{}
	c := storage.NewS3CleanerWithClient(client, "photos", baseURL, nil)

	err := c.DeleteImages(context.Background(), []string{
		baseURL + "/a.jpg",
		"https://elsewhere.test/b.jpg",
		baseURL + "/c.jpg",
	})

	require.NoError(t, err)
	require.Len(t, client.calls, 1)
	assert.Equal(t, "photos", aws.ToString(client.calls[0].Bucket))
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, keys(client.calls[0]))
}

func TestS3Cleaner_DeleteImages_nothingToDelete(t *testing.T) {
	client := &mockS3{}
	c := storage.NewS3CleanerWithClient(client, "photos", baseURL, nil)

	require.NoError(t, c.DeleteImages(context.Background(), []string{"https://elsewhere.test/b.jpg"}))
	assert.Empty(t, client.calls)
}

func TestS3Cleaner_DeleteImages_batches(t *testing.T) {
	client := &mockS3{}
	c := storage.NewS3CleanerWithClient(client, "photos", baseURL, nil)
	urls := make([]string, 2500)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/%d.jpg", baseURL, i)
	}

	require.NoError(t, c.DeleteImages(context.Background(), urls))

	require.Len(t, client.calls, 3)
	assert.Len(t, client.calls[0].Delete.Objects, 1000)
	assert.Len(t, client.calls[1].Delete.Objects, 1000)
	assert.Len(t, client.calls[2].Delete.Objects, 500)
}

func TestS3Cleaner_DeleteImages_errors(t *testing.T) {
	t.Run("request failure", func(t *testing.T) {
		boom := errors.New("access denied")
		client := &mockS3{fn: func(*s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) { return nil, boom }}
		c := storage.NewS3CleanerWithClient(client, "photos", baseURL, nil)

		err := c.DeleteImages(context.Background(), []string{baseURL + "/a.jpg"})

		assert.ErrorIs(t, err, boom)
	})

	t.Run("per-key failure", func(t *testing.T) {
		client := &mockS3{fn: func(*s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
			return &s3.DeleteObjectsOutput{Errors: []types.Error{{Key: aws.String("a.jpg"), Code: aws.String("AccessDenied")}}}, nil
		}}
		c := storage.NewS3CleanerWithClient(client, "photos", baseURL, nil)

		err := c.DeleteImages(context.Background(), []string{baseURL + "/a.jpg", baseURL + "/b.jpg"})

		assert.ErrorIs(t, err, storage.ErrPartialDelete)
		assert.Contains(t, err.Error(), "1 of 2")
	})
}
