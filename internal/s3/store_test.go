package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// MockUploader мок для s3manager.Uploader
type MockUploader struct {
	uploadFunc func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error)
}

func (m *MockUploader) UploadWithContext(ctx context.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return m.uploadFunc(input)
}

// MockClient мок для S3 клиента
type MockClient struct {
	headFunc func(input *s3.HeadObjectInput) (*s3.HeadObjectOutput, error)
}

func (m *MockClient) HeadObjectWithContext(ctx context.Context, input *s3.HeadObjectInput, opts ...request.Option) (*s3.HeadObjectOutput, error) {
	return m.headFunc(input)
}

func testConfig() Config {
	return Config{
		Region:     "us-east-1",
		AccessKey:  "test-access-key",
		SecretKey:  "test-secret-key",
		Endpoint:   "https://s3.example.com",
		BucketName: "test-bucket",
	}
}

func TestUpload(t *testing.T) {
	uploader := &MockUploader{
		uploadFunc: func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
			if aws.StringValue(input.Bucket) != "test-bucket" {
				t.Errorf("Ожидался bucket: test-bucket, получено: %s", aws.StringValue(input.Bucket))
			}
			if aws.StringValue(input.Key) != "tracks/1/song.mp3" {
				t.Errorf("Неверный ключ: %s", aws.StringValue(input.Key))
			}
			if aws.StringValue(input.ContentType) != "audio/mpeg" {
				t.Errorf("Неверный тип содержимого: %s", aws.StringValue(input.ContentType))
			}
			body, _ := io.ReadAll(input.Body)
			if string(body) != "test content" {
				t.Errorf("Ожидалось содержимое: test content, получено: %s", body)
			}
			return &s3manager.UploadOutput{Location: "https://s3.example.com/test-bucket/tracks/1/song.mp3"}, nil
		},
	}

	store := newStore(testConfig(), uploader, &MockClient{})
	location, err := store.Upload(context.Background(), strings.NewReader("test content"), "tracks/1/song.mp3", "audio/mpeg")
	if err != nil {
		t.Fatalf("Неожиданная ошибка при загрузке: %v", err)
	}
	if location != "https://s3.example.com/test-bucket/tracks/1/song.mp3" {
		t.Errorf("Неверный адрес: %s", location)
	}
}

func TestUploadLocationFallback(t *testing.T) {
	uploader := &MockUploader{
		uploadFunc: func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
			if input.ContentType != nil {
				t.Error("Пустой тип содержимого не передается")
			}
			return &s3manager.UploadOutput{}, nil
		},
	}

	store := newStore(testConfig(), uploader, &MockClient{})
	location, err := store.Upload(context.Background(), strings.NewReader("x"), "a.mp3", "")
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if location != "https://s3.example.com/test-bucket/a.mp3" {
		t.Errorf("Неверный адрес: %s", location)
	}
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"InvalidCredentials", awserr.New("InvalidAccessKeyId", "The AWS Access Key Id you provided does not exist in our records.", nil)},
		{"NetworkError", awserr.New("RequestTimeout", "Request timeout", nil)},
		{"BucketAccessError", awserr.New("AccessDenied", "Access Denied", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := &MockUploader{
				uploadFunc: func(input *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
					return nil, tt.err
				},
			}

			store := newStore(testConfig(), uploader, &MockClient{})
			_, err := store.Upload(context.Background(), strings.NewReader("x"), "a.mp3", "")
			if err == nil {
				t.Fatal("Ожидалась ошибка загрузки")
			}
			if !strings.Contains(err.Error(), "ошибка загрузки a.mp3") {
				t.Errorf("Неожиданное сообщение об ошибке: %v", err)
			}
		})
	}
}

func TestExists(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    bool
		wantErr bool
	}{
		{"found", nil, true, false},
		{"not found status", awserr.NewRequestFailure(awserr.New("NotFound", "Not Found", nil), 404, "req-1"), false, false},
		{"no such key", awserr.New(s3.ErrCodeNoSuchKey, "missing", nil), false, false},
		{"forbidden", awserr.NewRequestFailure(awserr.New("Forbidden", "Forbidden", nil), 403, "req-2"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &MockClient{
				headFunc: func(input *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
					if aws.StringValue(input.Key) != "tracks/1/a.mp3" {
						t.Errorf("Неверный ключ: %s", aws.StringValue(input.Key))
					}
					return &s3.HeadObjectOutput{}, tt.err
				},
			}

			store := newStore(testConfig(), &MockUploader{}, client)
			exists, err := store.Exists(context.Background(), "tracks/1/a.mp3")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Неожиданная ошибка: %v", err)
			}
			if exists != tt.want {
				t.Errorf("Ожидалось %v, получено %v", tt.want, exists)
			}
		})
	}
}

func TestNewStore(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		config := testConfig()
		config.Endpoint = ""

		store, err := NewStore(config)
		if err != nil {
			t.Fatalf("Неожиданная ошибка при создании хранилища: %v", err)
		}
		if store.config.BucketName != "test-bucket" {
			t.Error("Конфигурация должна быть сохранена")
		}
	})

	t.Run("ConfigWithEndpoint", func(t *testing.T) {
		if _, err := NewStore(testConfig()); err != nil {
			t.Errorf("Неожиданная ошибка при создании хранилища с endpoint: %v", err)
		}
	})

	t.Run("MissingBucket", func(t *testing.T) {
		config := testConfig()
		config.BucketName = ""
		if _, err := NewStore(config); err == nil {
			t.Error("Ожидалась ошибка без bucket")
		}
	})
}
