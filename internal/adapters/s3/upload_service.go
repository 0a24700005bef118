package s3_adapter

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"unicode"

	"property-publishing-service/internal/contextkeys"
	"property-publishing-service/internal/core/domain"
	"property-publishing-service/internal/core/port"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Config - параметры бакета для документов собственников.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string // MinIO/LocalStack; пусто для AWS
	PublicBaseURL   string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
}

// objectPutter - часть *s3.Client, которую использует адаптер.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3UploadService реализует port.UploadServicePort.
type S3UploadService struct {
	client objectPutter
	cfg    Config
	newID  func() string
}

// NewS3Client собирает клиент S3 из стандартной цепочки AWS или из статических ключей.
func NewS3Client(ctx context.Context, cfg Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

func NewS3UploadService(client objectPutter, cfg Config) (*S3UploadService, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client cannot be nil")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket cannot be empty")
	}
	return &S3UploadService{client: client, cfg: cfg, newID: uuid.NewString}, nil
}

// Upload кладет файл по ключу uploads/<id>/<тип документа>/<uuid>_<имя файла>.
func (s *S3UploadService) Upload(ctx context.Context, ownerOrPropertyID string, docType domain.DocumentType, file domain.PendingFile) (domain.StoredFile, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	uploadLogger := logger.WithFields(port.Fields{
		"component":     "S3UploadService",
		"bucket":        s.cfg.Bucket,
		"owner_id":      ownerOrPropertyID,
		"document_type": docType,
	})

	if len(file.Content) == 0 {
		return domain.StoredFile{}, domain.ErrEmptyFile
	}

	key := domain.DocumentObjectKey(ownerOrPropertyID, docType, s.newID()+"_"+sanitizeFileName(file.FileName))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file.Content),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(file.Content))),
	})
	if err != nil {
		uploadLogger.Error("Failed to put object", err, port.Fields{"key": key})
		return domain.StoredFile{}, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	uploadLogger.Info("Document uploaded.", port.Fields{"key": key, "size": len(file.Content)})
	return domain.StoredFile{URL: s.objectURL(key), Path: key}, nil
}

// Owns сообщает, что файл лежит в бакете сервиса: URL совпадает с адресом, который дает Upload для этого ключа.
func (s *S3UploadService) Owns(file domain.StoredFile) bool {
	return file.Path != "" && file.URL == s.objectURL(file.Path)
}

func (s *S3UploadService) objectURL(key string) string {
	switch {
	case s.cfg.PublicBaseURL != "":
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	case s.cfg.Endpoint != "" && s.cfg.UsePathStyle:
		return strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	}
}

// sanitizeFileName оставляет в имени буквы, цифры, точку, дефис и подчеркивание.
func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "document"
	}
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_') {
			return r
		}
		return '_'
	}, name)
}
