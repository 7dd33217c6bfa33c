// Package s3 предоставляет хранилище архивных копий аудиофайлов в Amazon S3
// или совместимом сервисе
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// Config содержит настройки для S3
type Config struct {
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	BucketName string
}

// objectUploader часть s3manager.Uploader, которой пользуется Store
type objectUploader interface {
	UploadWithContext(ctx context.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// objectClient часть s3.S3, которой пользуется Store
type objectClient interface {
	HeadObjectWithContext(ctx context.Context, input *s3.HeadObjectInput, opts ...request.Option) (*s3.HeadObjectOutput, error)
}

// Store загружает объекты в один bucket
type Store struct {
	uploader objectUploader
	client   objectClient
	config   Config
}

// NewStore создает хранилище по настройкам
func NewStore(config Config) (*Store, error) {
	if config.BucketName == "" {
		return nil, errors.New("не указан bucket S3")
	}

	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
	}

	// Совместимые сервисы (MinIO, Yandex Object Storage) требуют path-style адресов
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AWS сессии: %w", err)
	}

	return newStore(config, s3manager.NewUploader(sess), s3.New(sess)), nil
}

func newStore(config Config, uploader objectUploader, client objectClient) *Store {
	return &Store{uploader: uploader, client: client, config: config}
}

// Upload загружает содержимое reader под ключом key и возвращает адрес объекта
func (s *Store) Upload(ctx context.Context, reader io.Reader, key, contentType string) (string, error) {
	input := &s3manager.UploadInput{
		Bucket: aws.String(s.config.BucketName),
		Key:    aws.String(key),
		Body:   reader,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	out, err := s.uploader.UploadWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки %s: %w", key, err)
	}

	if out != nil && out.Location != "" {
		return out.Location, nil
	}
	return fmt.Sprintf("%s/%s/%s", s.config.Endpoint, s.config.BucketName, key), nil
}

// Exists проверяет, есть ли объект с ключом key
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.config.BucketName),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	var aErr awserr.Error
	if errors.As(err, &aErr) && (aErr.Code() == "NotFound" || aErr.Code() == s3.ErrCodeNoSuchKey) {
		return false, nil
	}
	return false, fmt.Errorf("ошибка проверки объекта %s: %w", key, err)
}
