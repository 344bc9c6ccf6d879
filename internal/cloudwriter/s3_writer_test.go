package cloudwriter

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePutter struct {
	bucket, key string
	body        []byte
	err         error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3WriterUploadsOnClose(t *testing.T) {
	putter := &fakePutter{}
	w, err := NewS3WriterFactoryWithClient(putter).NewWriter(context.Background(), "spins", "exports/a.parquet")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.Write([]byte("PAR1"))
	_, _ = w.Write([]byte("data"))
	if putter.body != nil {
		t.Fatal("uploaded before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if putter.bucket != "spins" || putter.key != "exports/a.parquet" || string(putter.body) != "PAR1data" {
		t.Errorf("uploaded %s/%s = %q", putter.bucket, putter.key, putter.body)
	}
	if _, err := w.Write([]byte("x")); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("Write after Close error = %v", err)
	}
	if err := w.Close(); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("second Close error = %v", err)
	}
}

func TestS3WriterErrors(t *testing.T) {
	f := NewS3WriterFactoryWithClient(&fakePutter{err: errors.New("access denied")})
	if _, err := f.NewWriter(context.Background(), "", "k"); err == nil {
		t.Error("NewWriter without bucket succeeded")
	}
	w, _ := f.NewWriter(context.Background(), "b", "k")
	if err := w.Close(); err == nil {
		t.Error("Close should surface the upload error")
	}
}
