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
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type BlobStoreGCSOptionFunc func(*BlobStoreGCS)

func WithLogger(logger *slog.Logger) BlobStoreGCSOptionFunc {
	return func(b *BlobStoreGCS) {
		b.logger = logger
	}
}

func WithPromRegistry(
	registry prometheus.Registerer,
) BlobStoreGCSOptionFunc {
	return func(b *BlobStoreGCS) {
		b.promRegistry = registry
	}
}

func WithBucket(bucket string) BlobStoreGCSOptionFunc {
	return func(b *BlobStoreGCS) {
		b.bucketName = bucket
	}
}

// WithPrefix specifies a prefix for all object names
func WithPrefix(prefix string) BlobStoreGCSOptionFunc {
	return func(b *BlobStoreGCS) {
		b.prefix = prefix
	}
}

// WithCredentialsFile specifies a service account credentials file. When
// unset, application default credentials are used.
func WithCredentialsFile(path string) BlobStoreGCSOptionFunc {
	return func(b *BlobStoreGCS) {
		b.credentialsFile = path
	}
}

// WithTimeout specifies the timeout for each GCS operation
func WithTimeout(timeout time.Duration) BlobStoreGCSOptionFunc {
	return func(b *BlobStoreGCS) {
		b.timeout = timeout
	}
}
