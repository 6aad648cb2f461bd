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

// Package galaxy defines the capabilities the importer needs from a Galaxy
// server's data libraries. Two privilege levels are distinguished: an
// objects client for ordinary library operations, and an admin client for
// operations only a Galaxy administrator may perform (linking files from
// arbitrary local paths, granting permissions, listing users).
package galaxy

import (
	"context"
	"strings"
)

// content types that appear in a library's content listing
const (
	ContentTypeFolder = "folder"
	ContentTypeFile   = "file"
)

// file types passed to Galaxy along with linked files
const (
	FileTypeAuto  = "auto"
	FileTypeFastq = "fastqsanger"
)

// A Library is a top-level Galaxy data library.
type Library struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	Deleted      bool   `json:"deleted"`
	RootFolderId string `json:"root_folder_id"`
}

// A Folder is a folder within a library. Its name is its absolute path within
// the library, e.g. "/illumina_reads/sample1".
type Folder struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

// A ContentInfo describes one item (folder or file) within a library. Names
// are absolute paths within the library.
type ContentInfo struct {
	Id   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// A Dataset is a file within a library.
type Dataset struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	FileSize int64  `json:"file_size"`
}

// A User is a Galaxy user.
type User struct {
	Id    string `json:"id"`
	Email string `json:"email"`
}

// An UploadedFile refers to a dataset created by an upload.
type UploadedFile struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ObjectsClient covers library operations that need no special privileges.
type ObjectsClient interface {
	// returns all libraries with the given name, deleted or not
	Libraries(ctx context.Context, name string) ([]Library, error)
	// creates a new library with the given name
	CreateLibrary(ctx context.Context, name string) (Library, error)
	// returns a fresh listing of the folders and files in the given library
	ContentInfos(ctx context.Context, libraryId string) ([]ContentInfo, error)
	// returns the datasets in the given library with the given absolute name
	Datasets(ctx context.Context, libraryId, name string) ([]Dataset, error)
	// creates a folder with the given (leaf) name in the given library, under
	// the given parent folder or at the library's root if parent is nil
	CreateFolder(ctx context.Context, library Library, name string, parent *Folder) (Folder, error)
}

// AdminClient covers operations that require a Galaxy administrator's key.
type AdminClient interface {
	// returns all Galaxy users
	Users(ctx context.Context) ([]User, error)
	// grants the given users access, modify, and add permissions on a library
	SetPermissions(ctx context.Context, libraryId string, userIds []string) error
	// returns the folders in the given library with the given absolute name
	Folders(ctx context.Context, libraryId, name string) ([]Folder, error)
	// registers the file at the given local path as a dataset in the given
	// folder without copying it
	UploadAsLink(ctx context.Context, libraryId, localPath, folderId, fileType string) ([]UploadedFile, error)
}

// Returns the Galaxy file type to request for the file with the given path:
// FASTQ files are flagged as such and everything else is left to Galaxy's
// sniffers.
func FileTypeFor(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".fastq") {
		return FileTypeFastq
	}
	return FileTypeAuto
}
