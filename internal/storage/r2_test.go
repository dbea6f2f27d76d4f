package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (p *recordingPutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	p.input = in
	p.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, p.err
}

func TestPutJSON(t *testing.T) {
	putter := &recordingPutter{}
	client := &R2Client{client: putter, bucket: "receipts"}

	err := client.PutJSON(context.Background(), "receipts/h1/o1.json", map[string]int{"items_added": 3})
	require.NoError(t, err)

	assert.Equal(t, "receipts", *putter.input.Bucket)
	assert.Equal(t, "receipts/h1/o1.json", *putter.input.Key)
	assert.Equal(t, "application/json", *putter.input.ContentType)

	var got map[string]int
	require.NoError(t, json.Unmarshal(putter.body, &got))
	assert.Equal(t, 3, got["items_added"])
}

func TestPutJSONWrapsErrors(t *testing.T) {
	client := &R2Client{client: &recordingPutter{err: errors.New("denied")}, bucket: "b"}

	err := client.PutJSON(context.Background(), "k", struct{}{})
	assert.ErrorContains(t, err, "put k")
}

func TestNewR2ClientRequiresBucket(t *testing.T) {
	_, err := NewR2Client(context.Background(), R2Config{Endpoint: "https://example.r2.cloudflarestorage.com"})
	assert.Error(t, err)
}
