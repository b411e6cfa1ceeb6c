// Copyright 2024 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

package otel

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	"google.golang.org/protobuf/proto"
)

// exportRequest is one OTLP/HTTP logs request received by the collector.
type exportRequest struct {
	path   string
	header http.Header
	body   *collogspb.ExportLogsServiceRequest
}

// collector is a minimal OTLP/HTTP logs endpoint.
type collector struct {
	*httptest.Server

	mu       sync.Mutex
	requests []exportRequest
	status   int
}

func newCollector(t *testing.T) *collector {
	c := &collector{status: http.StatusOK}
	c.Server = httptest.NewServer(http.HandlerFunc(c.handle))
	t.Cleanup(c.Close)
	return c
}

func (c *collector) handle(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	req := new(collogspb.ExportLogsServiceRequest)
	if err := proto.Unmarshal(data, req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	c.mu.Lock()
	c.requests = append(c.requests, exportRequest{
		path:   r.URL.Path,
		header: r.Header.Clone(),
		body:   req,
	})
	status := c.status
	c.mu.Unlock()

	w.WriteHeader(status)
}

func (c *collector) received() []exportRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]exportRequest(nil), c.requests...)
}

// logRecords flattens every record the collector received.
func (c *collector) logRecords() []*logspb.LogRecord {
	var records []*logspb.LogRecord
	for _, req := range c.received() {
		for _, rl := range req.body.GetResourceLogs() {
			for _, sl := range rl.GetScopeLogs() {
				records = append(records, sl.GetLogRecords()...)
			}
		}
	}
	return records
}
