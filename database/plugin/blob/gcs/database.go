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

package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/blinklabs-io/ballot/database/plugin/blob/objectstore"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// BlobStoreGCS stores data in a Google Cloud Storage bucket
type BlobStoreGCS struct {
	*objectstore.Store
	promRegistry    prometheus.Registerer
	logger          *slog.Logger
	client          *storage.Client
	bucket          *storage.BucketHandle
	bucketName      string
	prefix          string
	credentialsFile string
	timeout         time.Duration
}

// New creates a new GCS-backed blob store. dataDir must be "gcs://bucket"
// or "gcs://bucket/prefix".
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*BlobStoreGCS, error) {
	path, ok := strings.CutPrefix(dataDir, "gcs://")
	bucketName, prefix, _ := strings.Cut(path, "/")
	if !ok || bucketName == "" {
		return nil, errors.New(
			"gcs blob: bucket not set (expected dataDir='gcs://<bucket>[/prefix]')",
		)
	}
	return NewWithOptions(
		WithBucket(bucketName),
		WithPrefix(prefix),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

// NewWithOptions creates a new GCS-backed blob store using options. No
// connection is made until Start() is called.
func NewWithOptions(opts ...BlobStoreGCSOptionFunc) (*BlobStoreGCS, error) {
	d := &BlobStoreGCS{}
	for _, opt := range opts {
		opt(d)
	}
	if d.prefix != "" {
		d.prefix = strings.TrimSuffix(d.prefix, "/") + "/"
	}
	d.Store = objectstore.New(objectstore.Config{
		Backend:      "gcs",
		Logger:       d.logger,
		PromRegistry: d.promRegistry,
		Prefix:       d.prefix,
		Timeout:      d.timeout,
	})
	return d, nil
}

// validateCredentials checks that a configured credentials file exists
func validateCredentials(credentialsFile string) error {
	if credentialsFile == "" {
		return nil
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf(
				"GCS credentials file does not exist: %s",
				credentialsFile,
			)
		}
		return fmt.Errorf("GCS credentials file: %w", err)
	}
	return nil
}

// Start implements the plugin.Plugin interface
func (d *BlobStoreGCS) Start() error {
	if d.bucketName == "" {
		return errors.New("gcs blob: bucket not set")
	}
	if err := validateCredentials(d.credentialsFile); err != nil {
		return err
	}
	clientOpts := []option.ClientOption{
		storage.WithDisabledClientMetrics(),
	}
	if d.credentialsFile != "" {
		clientOpts = append(
			clientOpts,
			option.WithCredentialsFile(d.credentialsFile),
		)
	}
	client, err := storage.NewClient(context.Background(), clientOpts...)
	if err != nil {
		return fmt.Errorf("gcs blob: failed in creating storage client: %w", err)
	}
	d.client = client
	d.bucket = client.Bucket(d.bucketName)
	d.SetClient(&gcsClient{bucket: d.bucket})
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreGCS) Stop() error {
	return d.Close()
}

// Close closes the GCS client
func (d *BlobStoreGCS) Close() error {
	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	d.SetClient(nil)
	return err
}

// Client returns the GCS client
func (d *BlobStoreGCS) Client() *storage.Client {
	return d.client
}

// Bucket returns the bucket handle
func (d *BlobStoreGCS) Bucket() *storage.BucketHandle {
	return d.bucket
}

// gcsClient adapts a GCS bucket to objectstore.Client
type gcsClient struct {
	bucket *storage.BucketHandle
}

func (c *gcsClient) Get(ctx context.Context, name string) ([]byte, error) {
	r, err := c.bucket.Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, objectstore.ErrObjectNotFound
		}
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (c *gcsClient) Put(ctx context.Context, name string, data []byte) error {
	w := c.bucket.Object(name).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (c *gcsClient) Delete(ctx context.Context, name string) error {
	err := c.bucket.Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}

func (c *gcsClient) List(ctx context.Context, prefix string) ([]string, error) {
	it := c.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	var ret []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		ret = append(ret, attrs.Name)
	}
	return ret, nil
}
