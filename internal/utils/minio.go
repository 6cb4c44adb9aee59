package utils

import (
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"senseact/internal/config"
)

// NewMinioClient builds the object-storage client the worker streams video
// segments from.
func NewMinioClient(conf config.S3Config) (*minio.Client, error) {
	cli, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKeyID, conf.SecretAccessKey, ""),
		Secure: conf.UseSSL,
		Region: conf.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client failed: %w", err)
	}
	return cli, nil
}
