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


// Package objectstore implements the blob store on top of a flat object
// storage bucket. Keys are hex-encoded into object names, which keeps the
// names printable and preserves byte ordering for listings.
//
// Writes are buffered in the transaction and applied on commit. Object
// stores have no multi-object transactions, so a failed commit may leave
// some of the writes applied.
package objectstore

import (
	"context"
	"errors"
)

// ErrObjectNotFound must be returned by Client.Get when the object does not
// exist
var ErrObjectNotFound = errors.New("object not found")

// Client is the minimal set of bucket operations needed by Store
type Client interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the names of all objects starting with prefix
	List(ctx context.Context, prefix string) ([]string, error)
}
