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

package node

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"connectrpc.com/grpcreflect"
	"github.com/blinklabs-io/ballot"
)

// LedgerServiceName is the service name reported by the health check while
// the node is producing blocks
const LedgerServiceName = "ballot.v1.Ledger"

type nodeChecker struct {
	node *ballot.Node
}

func (c *nodeChecker) Check(
	_ context.Context,
	req *grpchealth.CheckRequest,
) (*grpchealth.CheckResponse, error) {
	switch req.Service {
	// An empty service name asks about the server as a whole
	case "", LedgerServiceName:
	default:
		return nil, connect.NewError(
			connect.CodeNotFound,
			fmt.Errorf("unknown service: %s", req.Service),
		)
	}
	if c.node.Running() {
		return &grpchealth.CheckResponse{Status: grpchealth.StatusServing}, nil
	}
	return &grpchealth.CheckResponse{Status: grpchealth.StatusNotServing}, nil
}

// registerHealth adds the gRPC health and reflection handlers to the mux
func registerHealth(mux *http.ServeMux, n *ballot.Node) {
	compress1KB := connect.WithCompressMinBytes(1024)
	mux.Handle(
		grpchealth.NewHandler(
			&nodeChecker{node: n},
			compress1KB,
		),
	)
	mux.Handle(
		grpcreflect.NewHandlerV1(
			grpcreflect.NewStaticReflector(grpchealth.HealthV1ServiceName),
			compress1KB,
		),
	)
	mux.Handle(
		grpcreflect.NewHandlerV1Alpha(
			grpcreflect.NewStaticReflector(grpchealth.HealthV1ServiceName),
			compress1KB,
		),
	)
}
