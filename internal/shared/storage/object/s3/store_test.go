package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resume-matcher/internal/shared/storage/object"
)

type fakeS3 struct {
	objects map[string][]byte
	lastPut *s3.PutObjectInput
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.lastPut = in
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "charts/a.png", want: "charts/a.png"},
		{name: "simple prefix", prefix: "root", key: "charts/a.png", want: "root/charts/a.png"},
		{name: "prefix trailing slash", prefix: "root/", key: "charts/a.png", want: "root/charts/a.png"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/charts/a.png", want: "root/charts/a.png"},
		{name: "nested prefix", prefix: "root/sub", key: "charts/a.png", want: "root/sub/charts/a.png"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestSaveWithKeyAndOpen(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store := &Store{client: fake, bucket: "bucket", prefix: "matcher"}
	ctx := context.Background()

	n, err := store.SaveWithKey(ctx, "charts/a.png", "image/png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("SaveWithKey: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 bytes, got %d", n)
	}
	if aws.ToString(fake.lastPut.Key) != "matcher/charts/a.png" {
		t.Fatalf("unexpected key %s", aws.ToString(fake.lastPut.Key))
	}
	if fake.lastPut.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256 encryption, got %s", fake.lastPut.ServerSideEncryption)
	}

	rc, err := store.Open(ctx, "charts/a.png")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "png" {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestOpenMissingMapsToNotFound(t *testing.T) {
	store := &Store{client: &fakeS3{objects: map[string][]byte{}}, bucket: "bucket"}
	_, err := store.Open(context.Background(), "charts/none.png")
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
