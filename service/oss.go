package service

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"ScriptMaster-server/config"
	"ScriptMaster-server/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArtifactStorage 保存导出文件并返回可下载的地址
type ArtifactStorage interface {
	Upload(ctx context.Context, objectName, contentType string, data []byte, downloadName string) (string, error)
}

type MinioStorage struct {
	client *minio.Client
	bucket string
	expiry time.Duration
	log    *logger.Logger
}

// NewMinioStorage 初始化连接，在 main.go 中调用
func NewMinioStorage(cfg *config.Config, log *logger.Logger) (*MinioStorage, error) {
	c := cfg.MinIO
	client, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("MinIO 初始化失败: %w", err)
	}
	return &MinioStorage{
		client: client,
		bucket: c.Bucket,
		expiry: time.Duration(c.PresignHours) * time.Hour,
		log:    log,
	}, nil
}

func (s *MinioStorage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("检查 Bucket 失败: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("创建 Bucket 失败: %w", err)
	}
	s.log.Info("bucket created", "bucket", s.bucket)
	return nil
}

// Upload 上传后生成预签名 URL；downloadName 非空时强制以该文件名下载
func (s *MinioStorage) Upload(ctx context.Context, objectName, contentType string, data []byte, downloadName string) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传到 MinIO 失败: %w", err)
	}

	reqParams := make(url.Values)
	if downloadName != "" {
		reqParams.Set("response-content-disposition", ContentDisposition(downloadName))
	}
	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, s.expiry, reqParams)
	if err != nil {
		return "", fmt.Errorf("生成签名 URL 失败: %w", err)
	}

	s.log.Info("artifact uploaded", "object", objectName, "size", len(data))
	return presignedURL.String(), nil
}

// ContentDisposition 附件头，文件名按 RFC 5987 编码以支持中文
func ContentDisposition(fileName string) string {
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s",
		asciiFallback(fileName), url.PathEscape(fileName))
}

func asciiFallback(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r == '"' || r == '\\':
			out = append(out, '_')
		case r < 0x20 || r > 0x7e:
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
