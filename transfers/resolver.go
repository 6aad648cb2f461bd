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

package transfers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/phac-nml/irida-galaxy-import/galaxy"
)

//----------
// Resolver
//----------

// A Resolver finds or creates the destination library and its folders, and
// answers questions about what the library already contains. Every query
// fetches a fresh listing from Galaxy; nothing is cached between calls.
//
// Find-or-create operations are check-then-act and assume that nothing else
// writes to the library while an import runs.
type Resolver struct {
	Objects galaxy.ObjectsClient
	Admin   galaxy.AdminClient
	// the destination library (set by GetOrCreateLibrary)
	Library *galaxy.Library
}

// creates a resolver that uses the given Galaxy clients
func NewResolver(objects galaxy.ObjectsClient, admin galaxy.AdminClient) *Resolver {
	return &Resolver{
		Objects: objects,
		Admin:   admin,
	}
}

// Returns the first non-deleted library with the given name, creating one if
// none exists. A new library is made accessible to the Galaxy user with the
// given email address; if there is no such user, no library is created and a
// *PrincipalNotFoundError is returned.
func (r *Resolver) GetOrCreateLibrary(ctx context.Context, name, email string) (galaxy.Library, error) {
	libraries, err := r.Objects.Libraries(ctx, name)
	if err != nil {
		return galaxy.Library{}, err
	}
	for _, library := range libraries {
		if library.Name == name && !library.Deleted {
			slog.Debug(fmt.Sprintf("Using existing library '%s' (%s)", name, library.Id))
			r.Library = &library
			return library, nil
		}
	}

	// a library is only created once we know whom to give it to
	userId, err := r.principalFor(ctx, email)
	if err != nil {
		return galaxy.Library{}, err
	}
	library, err := r.Objects.CreateLibrary(ctx, name)
	if err != nil {
		return galaxy.Library{}, err
	}
	slog.Info(fmt.Sprintf("Created library '%s' (%s) for %s", name, library.Id, email))
	err = r.Admin.SetPermissions(ctx, library.Id, []string{userId})
	if err != nil {
		return galaxy.Library{}, err
	}
	r.Library = &library
	return library, nil
}

// returns the ID of the Galaxy user with the given email address
func (r *Resolver) principalFor(ctx context.Context, email string) (string, error) {
	users, err := r.Admin.Users(ctx)
	if err != nil {
		return "", err
	}
	for _, user := range users {
		if user.Email == email {
			return user.Id, nil
		}
	}
	return "", &PrincipalNotFoundError{Email: email}
}

// Returns the folder with the given absolute path (e.g. "/illumina_reads/bob")
// in the library, creating it if necessary. The folder's base folder must
// already exist unless the folder sits at the library's root; missing base
// folders are reported with an *InvalidBasePathError and never created.
func (r *Resolver) GetOrCreateFolder(ctx context.Context, folderPath string) (galaxy.Folder, error) {
	if r.Library == nil {
		return galaxy.Folder{}, &NoLibraryError{}
	}
	i := strings.LastIndex(folderPath, "/")
	if i < 0 || folderPath == "/" {
		return galaxy.Folder{}, &InvalidBasePathError{Path: folderPath}
	}
	basePath, folderName := folderPath[:i], folderPath[i+1:]
	slog.Debug(fmt.Sprintf("If necessary, making a folder named '%s' on base folder path '%s'",
		folderName, basePath))

	exists, err := r.ExistsInLibrary(ctx, galaxy.ContentTypeFolder, "name", folderPath)
	if err != nil {
		return galaxy.Folder{}, err
	}
	if exists {
		folders, err := r.Admin.Folders(ctx, r.Library.Id, folderPath)
		if err != nil {
			return galaxy.Folder{}, err
		}
		if len(folders) > 0 {
			return folders[0], nil
		}
	}

	var folder galaxy.Folder
	if basePath == "" {
		folder, err = r.Objects.CreateFolder(ctx, *r.Library, folderName, nil)
	} else {
		var baseFolders []galaxy.Folder
		baseFolders, err = r.Admin.Folders(ctx, r.Library.Id, basePath)
		if err != nil {
			return galaxy.Folder{}, err
		}
		if len(baseFolders) == 0 {
			return galaxy.Folder{}, &InvalidBasePathError{Path: folderPath, BasePath: basePath}
		}
		folder, err = r.Objects.CreateFolder(ctx, *r.Library, folderName, &baseFolders[0])
	}
	if err != nil {
		return galaxy.Folder{}, err
	}
	slog.Debug(fmt.Sprintf("Made folder with path: '%s'", folderPath))
	return folder, nil
}

// Returns true if the library contains an item of the given type ("folder"
// or "file") whose given attribute ("name" or "id") has the given value.
func (r *Resolver) ExistsInLibrary(ctx context.Context, itemType, attrName, attrValue string) (bool, error) {
	if r.Library == nil {
		return false, &NoLibraryError{}
	}
	var attr func(galaxy.ContentInfo) string
	switch attrName {
	case "name":
		attr = func(c galaxy.ContentInfo) string { return c.Name }
	case "id":
		attr = func(c galaxy.ContentInfo) string { return c.Id }
	default:
		return false, &UnknownAttributeError{Attribute: attrName}
	}
	contents, err := r.Objects.ContentInfos(ctx, r.Library.Id)
	if err != nil {
		return false, err
	}
	for _, content := range contents {
		if content.Type == itemType && attr(content) == attrValue {
			return true, nil
		}
	}
	return false, nil
}

// Returns false if the library already holds a dataset at the given path whose
// size matches that of the given local file. Galaxy sometimes appends a
// newline to uploaded text, so a dataset one byte larger also matches. Files
// are compared by name and size only: distinct files of equal size at the same
// path are treated as duplicates.
func (r *Resolver) IsFileUnique(ctx context.Context, localPath, galaxyPath string) (bool, error) {
	if r.Library == nil {
		return false, &NoLibraryError{}
	}
	slog.Debug(fmt.Sprintf("Doing a basic check for already existing sample file at: %s", galaxyPath))
	info, err := os.Stat(localPath)
	if err != nil {
		return false, err
	}
	size := info.Size()
	datasets, err := r.Objects.Datasets(ctx, r.Library.Id, galaxyPath)
	if err != nil {
		return false, err
	}
	for _, dataset := range datasets {
		if dataset.FileSize == size || dataset.FileSize == size+1 {
			return false, nil
		}
	}
	return true, nil
}
