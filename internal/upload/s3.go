package upload

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type S3 struct {
	client        s3iface.S3API
	bucket        string
	region        string
	cloudFrontURL string
}

func NewS3(bucket, region, cloudFrontURL string) (*S3, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket is not configured")
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return NewS3WithClient(s3.New(sess), bucket, region, cloudFrontURL), nil
}

func NewS3WithClient(client s3iface.S3API, bucket, region, cloudFrontURL string) *S3 {
	return &S3{client: client, bucket: bucket, region: region, cloudFrontURL: cloudFrontURL}
}

func (s *S3) Mode() string { return "s3" }

func (s *S3) Upload(ctx context.Context, folder, filename, contentType string, data []byte) (string, error) {
	folder, err := cleanFolder(folder)
	if err != nil {
		return "", err
	}
	now := time.Now()
	key := now.Format("2006/01") + "/" + objectName(filename, now)
	if folder != "" {
		key = folder + "/" + key
	}

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	if s.cloudFrontURL != "" {
		return s.cloudFrontURL + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
