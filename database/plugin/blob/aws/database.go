// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/blinklabs-io/ballot/database/plugin/blob/objectstore"
	"github.com/prometheus/client_golang/prometheus"
)

// BlobStoreS3 stores data in an AWS S3 bucket
type BlobStoreS3 struct {
	*objectstore.Store
	promRegistry prometheus.Registerer
	logger       *slog.Logger
	client       *s3.Client
	bucket       string
	prefix       string
	region       string
	endpoint     string
	timeout      time.Duration
}

// New creates a new S3-backed blob store. dataDir must be "s3://bucket" or
// "s3://bucket/prefix".
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*BlobStoreS3, error) {
	const prefix = "s3://"
	path, ok := strings.CutPrefix(dataDir, prefix)
	if !ok {
		return nil, errors.New(
			"s3 blob: expected dataDir='s3://<bucket>[/prefix]'",
		)
	}
	bucket, keyPrefix, _ := strings.Cut(path, "/")
	if bucket == "" {
		return nil, errors.New("s3 blob: invalid S3 path (missing bucket)")
	}
	return NewWithOptions(
		WithBucket(bucket),
		WithPrefix(keyPrefix),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

// NewWithOptions creates a new S3-backed blob store using options. No
// connection is made until Start() is called.
func NewWithOptions(opts ...BlobStoreS3OptionFunc) (*BlobStoreS3, error) {
	d := &BlobStoreS3{}
	for _, opt := range opts {
		opt(d)
	}
	if d.prefix != "" {
		d.prefix = strings.TrimSuffix(d.prefix, "/") + "/"
	}
	d.Store = objectstore.New(objectstore.Config{
		Backend:      "s3",
		Logger:       d.logger,
		PromRegistry: d.promRegistry,
		Prefix:       d.prefix,
		Timeout:      d.timeout,
	})
	return d, nil
}

// Start implements the plugin.Plugin interface
func (d *BlobStoreS3) Start() error {
	if d.bucket == "" {
		return errors.New("s3 blob: bucket not set")
	}
	timeout := d.timeout
	if timeout == 0 {
		timeout = objectstore.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("s3 blob: load default AWS config: %w", err)
	}
	if d.region != "" {
		awsCfg.Region = d.region
	}
	d.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if d.endpoint != "" {
			// Custom endpoints (minio and friends) generally want path-style URLs
			o.BaseEndpoint = aws.String(d.endpoint)
			o.UsePathStyle = true
		}
	})
	d.SetClient(&s3Client{client: d.client, bucket: d.bucket})
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreS3) Stop() error {
	return d.Close()
}

// Close implements the BlobStore interface. The S3 client needs no cleanup.
func (d *BlobStoreS3) Close() error {
	return nil
}

// Client returns the S3 client
func (d *BlobStoreS3) Client() *s3.Client {
	return d.client
}

// Bucket returns the bucket name
func (d *BlobStoreS3) Bucket() string {
	return d.bucket
}

// s3Client adapts the S3 API to objectstore.Client
type s3Client struct {
	client *s3.Client
	bucket string
}

func (c *s3Client) Get(ctx context.Context, name string) ([]byte, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, objectstore.ErrObjectNotFound
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (c *s3Client) Put(ctx context.Context, name string, data []byte) error {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(name),
		Body:   bytes.NewReader(data),
	})
	return err
}

func (c *s3Client) Delete(ctx context.Context, name string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(name),
	})
	if err != nil && !isS3NotFound(err) {
		return err
	}
	return nil
}

func (c *s3Client) List(ctx context.Context, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	paginator := s3.NewListObjectsV2Paginator(c.client, input)
	var ret []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			ret = append(ret, aws.ToString(obj.Key))
		}
	}
	return ret, nil
}

func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
		return true
	}
	var noSuchKey *s3types.NoSuchKey
	return errors.As(err, &noSuchKey)
}
