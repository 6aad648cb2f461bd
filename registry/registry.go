// Copyright (c) 2023 The KBase Project and its Contributors
// Copyright (c) 2023 Cohere Consulting, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package registry provides access to IRIDA, the registry of record for
// samples and the sequencing files that belong to them.
package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// A Session performs authenticated GET requests against the registry. The
// core never interprets HTTP semantics beyond the returned status code.
type Session interface {
	// fetches the resource at the given URL, returning the HTTP status code
	// and the response body
	Get(ctx context.Context, url string) (int, []byte, error)
}

// A Client is a Session backed by an (already authenticated) HTTP client.
type Client struct {
	Http *http.Client
}

// creates a registry session that uses the given authenticated HTTP client
func NewClient(httpClient *http.Client) *Client {
	return &Client{Http: httpClient}
}

func (c *Client) Get(ctx context.Context, url string) (int, []byte, error) {
	slog.Debug(fmt.Sprintf("GET: %s", url))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.Http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}
