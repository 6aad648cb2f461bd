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

// This package contains testing utilities for the IRIDA importer.
package importtest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/phac-nml/irida-galaxy-import/galaxy"
)

// Enables DEBUG log messages for the importer's structured log (slog).
func EnableDebugLogging() {
	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelDebug)
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
}

// Creates files with the given names (and contents) in the given directory,
// returning their absolute paths in the same order.
func WriteFiles(dir string, contents map[string]string, names ...string) ([]string, error) {
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		err := os.WriteFile(paths[i], []byte(contents[name]), 0644)
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

//------------------------
// Registry Test Fixtures
//------------------------

type registryResponse struct {
	Status int
	Body   []byte
}

// This type implements a registry.Session test fixture that serves canned
// responses and counts requests.
type Registry struct {
	Responses map[string]registryResponse
	Calls     map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		Responses: make(map[string]registryResponse),
		Calls:     make(map[string]int),
	}
}

// Registers a sample file resource with the given name and local path at
// the given URL.
func (r *Registry) AddSampleFile(url, name, localPath string) {
	body, _ := json.Marshal(map[string]any{
		"resource": map[string]any{
			"fileName": name,
			"file":     localPath,
		},
	})
	r.Responses[url] = registryResponse{Status: http.StatusOK, Body: body}
}

// Registers a canned response with the given status and body at the given URL.
func (r *Registry) AddResponse(url string, status int, body string) {
	r.Responses[url] = registryResponse{Status: status, Body: []byte(body)}
}

func (r *Registry) Get(ctx context.Context, url string) (int, []byte, error) {
	r.Calls[url]++
	if resp, found := r.Responses[url]; found {
		return resp.Status, resp.Body, nil
	}
	return http.StatusNotFound, []byte(`{"message":"not found"}`), nil
}

// total number of requests made
func (r *Registry) NumCalls() int {
	n := 0
	for _, calls := range r.Calls {
		n += calls
	}
	return n
}

//----------------------
// Galaxy Test Fixtures
//----------------------

type content struct {
	Info galaxy.ContentInfo
	Size int64
}

// A record of a link-mode upload.
type Upload struct {
	LibraryId, LocalPath, FolderId, FileType string
}

// This type implements in-memory galaxy.ObjectsClient and galaxy.AdminClient
// test fixtures. Every call is counted so tests can verify exactly which
// operations were performed.
type Galaxy struct {
	LibraryList []galaxy.Library
	Contents    map[string][]content // library ID -> contents
	UserList    []galaxy.User
	Permissions map[string][]string // library ID -> user IDs

	// uploads performed, in order
	Uploads []Upload
	// errors returned by UploadAsLink, keyed by local path
	UploadErrors map[string]error

	// call counters
	LibrariesCalls, CreateLibraryCalls, ContentInfosCalls, DatasetsCalls int
	CreateFolderCalls, UsersCalls, SetPermissionsCalls, FoldersCalls  int

	nextId int
}

func NewGalaxy() *Galaxy {
	return &Galaxy{
		Contents:     make(map[string][]content),
		Permissions:  make(map[string][]string),
		UploadErrors: make(map[string]error),
	}
}

func (g *Galaxy) newId(prefix string) string {
	g.nextId++
	return fmt.Sprintf("%s%04x", prefix, g.nextId)
}

// Adds a library with the given name and deleted status, returning it.
func (g *Galaxy) AddLibrary(name string, deleted bool) galaxy.Library {
	library := galaxy.Library{
		Id:           g.newId("L"),
		Name:         name,
		Deleted:      deleted,
		RootFolderId: g.newId("F"),
	}
	g.LibraryList = append(g.LibraryList, library)
	g.Contents[library.Id] = []content{{Info: galaxy.ContentInfo{
		Id: library.RootFolderId, Type: galaxy.ContentTypeFolder, Name: "/"}}}
	return library
}

// Adds a folder with the given absolute path to the given library.
func (g *Galaxy) AddFolder(libraryId, folderPath string) galaxy.Folder {
	folder := galaxy.Folder{Id: g.newId("F"), Name: folderPath}
	g.Contents[libraryId] = append(g.Contents[libraryId], content{Info: galaxy.ContentInfo{
		Id: folder.Id, Type: galaxy.ContentTypeFolder, Name: folderPath}})
	return folder
}

// Adds a dataset with the given absolute path and size to the given library.
func (g *Galaxy) AddDataset(libraryId, datasetPath string, size int64) galaxy.Dataset {
	dataset := galaxy.Dataset{Id: g.newId("D"), Name: datasetPath, FileSize: size}
	g.Contents[libraryId] = append(g.Contents[libraryId], content{Info: galaxy.ContentInfo{
		Id: dataset.Id, Type: galaxy.ContentTypeFile, Name: datasetPath}, Size: size})
	return dataset
}

// Adds a user with the given email address and ID.
func (g *Galaxy) AddUser(email, id string) {
	g.UserList = append(g.UserList, galaxy.User{Id: id, Email: email})
}

// returns the absolute paths of all folders in the given library
func (g *Galaxy) FolderNames(libraryId string) []string {
	names := make([]string, 0)
	for _, c := range g.Contents[libraryId] {
		if c.Info.Type == galaxy.ContentTypeFolder {
			names = append(names, c.Info.Name)
		}
	}
	return names
}

func (g *Galaxy) Libraries(ctx context.Context, name string) ([]galaxy.Library, error) {
	g.LibrariesCalls++
	libraries := make([]galaxy.Library, 0)
	for _, library := range g.LibraryList {
		if library.Name == name {
			libraries = append(libraries, library)
		}
	}
	return libraries, nil
}

func (g *Galaxy) CreateLibrary(ctx context.Context, name string) (galaxy.Library, error) {
	g.CreateLibraryCalls++
	return g.AddLibrary(name, false), nil
}

func (g *Galaxy) ContentInfos(ctx context.Context, libraryId string) ([]galaxy.ContentInfo, error) {
	g.ContentInfosCalls++
	contents, found := g.Contents[libraryId]
	if !found {
		return nil, fmt.Errorf("Unknown library: %s", libraryId)
	}
	infos := make([]galaxy.ContentInfo, len(contents))
	for i, c := range contents {
		infos[i] = c.Info
	}
	return infos, nil
}

func (g *Galaxy) Datasets(ctx context.Context, libraryId, name string) ([]galaxy.Dataset, error) {
	g.DatasetsCalls++
	datasets := make([]galaxy.Dataset, 0)
	for _, c := range g.Contents[libraryId] {
		if c.Info.Type == galaxy.ContentTypeFile && c.Info.Name == name {
			datasets = append(datasets, galaxy.Dataset{Id: c.Info.Id, Name: c.Info.Name, FileSize: c.Size})
		}
	}
	return datasets, nil
}

func (g *Galaxy) CreateFolder(ctx context.Context, library galaxy.Library, name string,
	parent *galaxy.Folder) (galaxy.Folder, error) {
	g.CreateFolderCalls++
	parentPath := "/"
	if parent != nil {
		parentPath = parent.Name
	}
	return g.AddFolder(library.Id, path.Join(parentPath, name)), nil
}

func (g *Galaxy) Users(ctx context.Context) ([]galaxy.User, error) {
	g.UsersCalls++
	return g.UserList, nil
}

func (g *Galaxy) SetPermissions(ctx context.Context, libraryId string, userIds []string) error {
	g.SetPermissionsCalls++
	g.Permissions[libraryId] = userIds
	return nil
}

func (g *Galaxy) Folders(ctx context.Context, libraryId, name string) ([]galaxy.Folder, error) {
	g.FoldersCalls++
	folders := make([]galaxy.Folder, 0)
	for _, c := range g.Contents[libraryId] {
		if c.Info.Type == galaxy.ContentTypeFolder && c.Info.Name == name {
			folders = append(folders, galaxy.Folder{Id: c.Info.Id, Name: c.Info.Name})
		}
	}
	return folders, nil
}

// Links the file at the given path into the given folder. Like Galaxy, the
// new dataset is named after the file's base name and takes the file's size.
func (g *Galaxy) UploadAsLink(ctx context.Context, libraryId, localPath, folderId,
	fileType string) ([]galaxy.UploadedFile, error) {
	g.Uploads = append(g.Uploads, Upload{
		LibraryId: libraryId,
		LocalPath: localPath,
		FolderId:  folderId,
		FileType:  fileType,
	})
	if err, found := g.UploadErrors[localPath]; found {
		return nil, err
	}
	var folderPath string
	for _, c := range g.Contents[libraryId] {
		if c.Info.Id == folderId {
			folderPath = c.Info.Name
		}
	}
	if folderPath == "" {
		return nil, fmt.Errorf("Unknown folder: %s", folderId)
	}
	info, err := os.Stat(localPath)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(localPath)
	dataset := g.AddDataset(libraryId, path.Join(folderPath, name), info.Size())
	return []galaxy.UploadedFile{{
		Id:   dataset.Id,
		Name: name,
		URL:  fmt.Sprintf("/api/libraries/%s/contents/%s", libraryId, dataset.Id),
	}}, nil
}

// returns the number of uploads whose local path has the given suffix
func (g *Galaxy) UploadsMatching(suffix string) int {
	n := 0
	for _, upload := range g.Uploads {
		if strings.HasSuffix(upload.LocalPath, suffix) {
			n++
		}
	}
	return n
}

var _ galaxy.ObjectsClient = (*Galaxy)(nil)
var _ galaxy.AdminClient = (*Galaxy)(nil)
