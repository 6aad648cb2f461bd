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

// Package api implements the galaxy capability interfaces against the Galaxy
// REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/phac-nml/irida-galaxy-import/clients"
	"github.com/phac-nml/irida-galaxy-import/galaxy"
)

// A Client talks to a Galaxy server using an API key. When the key belongs to
// a Galaxy administrator, a Client satisfies both galaxy.ObjectsClient and
// galaxy.AdminClient.
type Client struct {
	// base URL of the Galaxy server
	URL *url.URL
	// API key sent with every request
	Key string
	// HTTP client used for requests
	Http http.Client
}

// creates a client for the Galaxy server at the given URL using the given
// API key
func NewClient(galaxyURL, key string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(galaxyURL)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &Client{
		URL:  u,
		Key:  key,
		Http: clients.SecureHttpClient(timeout),
	}, nil
}

//-------------------
// galaxy.ObjectsClient
//-------------------

func (c *Client) Libraries(ctx context.Context, name string) ([]galaxy.Library, error) {
	var all []galaxy.Library
	err := c.get(ctx, "api/libraries", nil, &all)
	if err != nil {
		return nil, err
	}
	libraries := make([]galaxy.Library, 0)
	for _, library := range all {
		if library.Name == name {
			libraries = append(libraries, library)
		}
	}
	return libraries, nil
}

func (c *Client) CreateLibrary(ctx context.Context, name string) (galaxy.Library, error) {
	var library galaxy.Library
	err := c.post(ctx, "api/libraries", map[string]any{"name": name}, &library)
	return library, err
}

func (c *Client) ContentInfos(ctx context.Context, libraryId string) ([]galaxy.ContentInfo, error) {
	var contents []galaxy.ContentInfo
	err := c.get(ctx, fmt.Sprintf("api/libraries/%s/contents", libraryId), nil, &contents)
	return contents, err
}

func (c *Client) Datasets(ctx context.Context, libraryId, name string) ([]galaxy.Dataset, error) {
	contents, err := c.ContentInfos(ctx, libraryId)
	if err != nil {
		return nil, err
	}
	datasets := make([]galaxy.Dataset, 0)
	for _, content := range contents {
		if content.Type != galaxy.ContentTypeFile || content.Name != name {
			continue
		}
		// the listing carries no sizes, so each match is fetched in full
		var dataset galaxy.Dataset
		err = c.get(ctx, fmt.Sprintf("api/libraries/%s/contents/%s", libraryId, content.Id),
			nil, &dataset)
		if err != nil {
			return nil, err
		}
		dataset.Name = content.Name
		datasets = append(datasets, dataset)
	}
	return datasets, nil
}

func (c *Client) CreateFolder(ctx context.Context, library galaxy.Library, name string,
	parent *galaxy.Folder) (galaxy.Folder, error) {
	parentId, parentPath := library.RootFolderId, "/"
	if parent != nil {
		parentId, parentPath = parent.Id, parent.Name
	}
	var created []galaxy.Folder
	err := c.post(ctx, fmt.Sprintf("api/libraries/%s/contents", library.Id), map[string]any{
		"create_type": "folder",
		"folder_id":   parentId,
		"name":        name,
	}, &created)
	if err != nil {
		return galaxy.Folder{}, err
	}
	if len(created) == 0 {
		return galaxy.Folder{}, fmt.Errorf("Galaxy created no folder named '%s'", name)
	}
	return galaxy.Folder{
		Id:   created[0].Id,
		Name: path.Join(parentPath, name),
	}, nil
}

//------------------
// galaxy.AdminClient
//------------------

func (c *Client) Users(ctx context.Context) ([]galaxy.User, error) {
	var users []galaxy.User
	err := c.get(ctx, "api/users", nil, &users)
	return users, err
}

func (c *Client) SetPermissions(ctx context.Context, libraryId string, userIds []string) error {
	return c.post(ctx, fmt.Sprintf("api/libraries/%s/permissions", libraryId), map[string]any{
		"LIBRARY_ACCESS_in": userIds,
		"LIBRARY_MODIFY_in": userIds,
		"LIBRARY_ADD_in":    userIds,
	}, nil)
}

func (c *Client) Folders(ctx context.Context, libraryId, name string) ([]galaxy.Folder, error) {
	contents, err := c.ContentInfos(ctx, libraryId)
	if err != nil {
		return nil, err
	}
	folders := make([]galaxy.Folder, 0)
	for _, content := range contents {
		if content.Type == galaxy.ContentTypeFolder && content.Name == name {
			folders = append(folders, galaxy.Folder{Id: content.Id, Name: content.Name})
		}
	}
	return folders, nil
}

func (c *Client) UploadAsLink(ctx context.Context, libraryId, localPath, folderId,
	fileType string) ([]galaxy.UploadedFile, error) {
	var uploaded []galaxy.UploadedFile
	err := c.post(ctx, fmt.Sprintf("api/libraries/%s/contents", libraryId), map[string]any{
		"create_type":      "file",
		"folder_id":        folderId,
		"upload_option":    "upload_paths",
		"filesystem_paths": localPath,
		"link_data_only":   "link_to_files",
		"file_type":        fileType,
	}, &uploaded)
	return uploaded, err
}

//--------------------
// Internal machinery
//--------------------

// here's how Galaxy represents errors in responses to API calls
type errorResponse struct {
	Message string `json:"err_msg"`
	Code    int    `json:"err_code"`
}

// returns the absolute URL for the given API resource
func (c *Client) resourceURL(resource string, values url.Values) string {
	u := *c.URL
	u.Path += resource
	if values != nil {
		u.RawQuery = values.Encode()
	}
	return u.String()
}

// performs a request, decoding a successful JSON response into result (if
// non-nil)
func (c *Client) do(ctx context.Context, method, resource string, values url.Values,
	body io.Reader, result any) error {
	resourceURL := c.resourceURL(resource, values)
	slog.Debug(fmt.Sprintf("%s: %s", method, resourceURL))
	req, err := http.NewRequestWithContext(ctx, method, resourceURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.Key)
	req.Header.Set("Accept", "application/json")
	if body != http.NoBody {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.Http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if !clients.IsSuccess(resp.StatusCode) {
		var errResp errorResponse
		json.Unmarshal(data, &errResp)
		return &clients.StatusError{
			Service:  "Galaxy",
			Method:   method,
			Resource: resource,
			Code:     resp.StatusCode,
			Message:  errResp.Message,
		}
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(data, result)
}

func (c *Client) get(ctx context.Context, resource string, values url.Values, result any) error {
	return c.do(ctx, http.MethodGet, resource, values, http.NoBody, result)
}

func (c *Client) post(ctx context.Context, resource string, payload any, result any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, resource, nil, bytes.NewReader(data), result)
}

var _ galaxy.ObjectsClient = (*Client)(nil)
var _ galaxy.AdminClient = (*Client)(nil)
