package storage

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"

	"csdept/internal/logger"
)

func offlineClient() *s3.Client {
	return s3.New(s3.Options{
		Region:       "ap-northeast-1",
		Credentials:  credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		BaseEndpoint: aws.String("http://minio.local:9000"),
		UsePathStyle: true,
	})
}

func TestS3_URLWithPublicBase(t *testing.T) {
	store := newS3(offlineClient(), "cs-dept", "https://cdn.cs.example.edu/", time.Hour, logger.Discard())

	assert.Equal(t, "https://cdn.cs.example.edu/attachments/post/3/a.png", store.URL("attachments/post/3/a.png"))
}

func TestS3_URLPresigned(t *testing.T) {
	store := newS3(offlineClient(), "cs-dept", "", time.Hour, logger.Discard())

	url := store.URL("attachments/post/3/a.png")
	assert.Contains(t, url, "http://minio.local:9000/cs-dept/attachments/post/3/a.png")
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=3600")
}
