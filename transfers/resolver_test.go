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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phac-nml/irida-galaxy-import/galaxy"
	"github.com/phac-nml/irida-galaxy-import/importtest"
)

// returns a resolver whose destination is an existing library in a new
// Galaxy fixture
func newLibraryResolver() (*Resolver, *importtest.Galaxy) {
	g := newGalaxy()
	library := g.AddLibrary(testLibrary, false)
	r := NewResolver(g, g)
	r.Library = &library
	return r, g
}

func TestCreateLibrary(t *testing.T) {
	assert := assert.New(t)
	g := newGalaxy()
	r := NewResolver(g, g)

	library, err := r.GetOrCreateLibrary(context.Background(), testLibrary, testEmail)
	assert.Nil(err)
	assert.Equal(testLibrary, library.Name)
	assert.Equal(1, g.CreateLibraryCalls)
	assert.Equal(1, g.SetPermissionsCalls)
	assert.Equal([]string{testUserId}, g.Permissions[library.Id])
	assert.Equal(library, *r.Library)
}

func TestGetExistingLibrary(t *testing.T) {
	assert := assert.New(t)
	g := newGalaxy()
	g.AddLibrary(testLibrary, true)
	existing := g.AddLibrary(testLibrary, false)
	g.AddLibrary("sallylib", false)
	r := NewResolver(g, g)

	library, err := r.GetOrCreateLibrary(context.Background(), testLibrary, testEmail)
	assert.Nil(err)
	assert.Equal(existing, library)
	assert.False(library.Deleted)
	assert.Equal(0, g.CreateLibraryCalls)
	assert.Equal(0, g.SetPermissionsCalls)
	assert.Equal(0, g.UsersCalls)
}

func TestCreateLibraryReplacesDeletedLibrary(t *testing.T) {
	assert := assert.New(t)
	g := newGalaxy()
	deleted := g.AddLibrary(testLibrary, true)
	r := NewResolver(g, g)

	library, err := r.GetOrCreateLibrary(context.Background(), testLibrary, testEmail)
	assert.Nil(err)
	assert.NotEqual(deleted.Id, library.Id)
	assert.Equal(1, g.CreateLibraryCalls)
}

func TestCreateLibraryWithoutPrincipal(t *testing.T) {
	assert := assert.New(t)
	g := newGalaxy()
	r := NewResolver(g, g)

	_, err := r.GetOrCreateLibrary(context.Background(), testLibrary, "nobody@lala.com")
	assert.NotNil(err)
	var principalErr *PrincipalNotFoundError
	assert.ErrorAs(err, &principalErr)
	assert.Equal(0, g.CreateLibraryCalls)
	assert.Nil(r.Library)
}

func TestCreateNestedFolder(t *testing.T) {
	assert := assert.New(t)
	r, g := newLibraryResolver()
	g.AddFolder(r.Library.Id, "/a")

	folder, err := r.GetOrCreateFolder(context.Background(), "/a/b")
	assert.Nil(err)
	assert.Equal("/a/b", folder.Name)
	assert.Equal(1, g.ContentInfosCalls)
	assert.Equal(1, g.FoldersCalls)
	assert.Equal(1, g.CreateFolderCalls)
}

func TestCreateRootFolder(t *testing.T) {
	assert := assert.New(t)
	r, g := newLibraryResolver()

	folder, err := r.GetOrCreateFolder(context.Background(), "/illumina_reads")
	assert.Nil(err)
	assert.Equal("/illumina_reads", folder.Name)
	assert.Equal(0, g.FoldersCalls)
	assert.Equal(1, g.CreateFolderCalls)
}

func TestGetExistingFolder(t *testing.T) {
	assert := assert.New(t)
	r, g := newLibraryResolver()
	g.AddFolder(r.Library.Id, "/a")
	existing := g.AddFolder(r.Library.Id, "/a/b")

	folder, err := r.GetOrCreateFolder(context.Background(), "/a/b")
	assert.Nil(err)
	assert.Equal(existing, folder)
	assert.Equal(0, g.CreateFolderCalls)
}

func TestCreateFolderWithoutBaseFolder(t *testing.T) {
	assert := assert.New(t)
	r, g := newLibraryResolver()

	_, err := r.GetOrCreateFolder(context.Background(), "/x/y")
	assert.NotNil(err)
	var pathErr *InvalidBasePathError
	assert.ErrorAs(err, &pathErr)
	assert.Equal("/x", pathErr.BasePath)
	assert.Equal(0, g.CreateFolderCalls)
	assert.NotContains(g.FolderNames(r.Library.Id), "/x")

	for _, folderPath := range []string{"/", "relative"} {
		_, err = r.GetOrCreateFolder(context.Background(), folderPath)
		assert.ErrorAs(err, &pathErr)
	}
	assert.Equal(0, g.CreateFolderCalls)
}

func TestResolverWithoutLibrary(t *testing.T) {
	assert := assert.New(t)
	g := newGalaxy()
	r := NewResolver(g, g)

	var noLibrary *NoLibraryError
	_, err := r.GetOrCreateFolder(context.Background(), "/a")
	assert.ErrorAs(err, &noLibrary)
	_, err = r.ExistsInLibrary(context.Background(), galaxy.ContentTypeFolder, "name", "/a")
	assert.ErrorAs(err, &noLibrary)
	_, err = r.IsFileUnique(context.Background(), "/data/file1.fasta", "/a/file1.fasta")
	assert.ErrorAs(err, &noLibrary)
}

func TestExistsInLibrary(t *testing.T) {
	assert := assert.New(t)
	r, g := newLibraryResolver()
	folder := g.AddFolder(r.Library.Id, "/a")
	g.AddDataset(r.Library.Id, "/a/file1.fasta", 10)

	exists, err := r.ExistsInLibrary(context.Background(), galaxy.ContentTypeFolder, "name", "/a")
	assert.Nil(err)
	assert.True(exists)
	exists, err = r.ExistsInLibrary(context.Background(), galaxy.ContentTypeFolder, "id", folder.Id)
	assert.Nil(err)
	assert.True(exists)
	exists, err = r.ExistsInLibrary(context.Background(), galaxy.ContentTypeFile, "name", "/a")
	assert.Nil(err)
	assert.False(exists)
	exists, err = r.ExistsInLibrary(context.Background(), galaxy.ContentTypeFile, "name", "/a/file1.fasta")
	assert.Nil(err)
	assert.True(exists)

	// every query refetches the library's contents
	assert.Equal(4, g.ContentInfosCalls)

	_, err = r.ExistsInLibrary(context.Background(), galaxy.ContentTypeFile, "size", "10")
	var attrErr *UnknownAttributeError
	assert.ErrorAs(err, &attrErr)
}

func TestIsFileUnique(t *testing.T) {
	assert := assert.New(t)
	paths, err := importtest.WriteFiles(newDir(t), map[string]string{"file1.fasta": ">seq1\nACGT\n"},
		"file1.fasta")
	assert.Nil(err)
	localPath := paths[0]
	const size = int64(len(">seq1\nACGT\n"))
	const galaxyPath = "/illumina_reads/bobname/file1.fasta"

	for _, test := range []struct {
		Name   string
		Size   int64
		Unique bool
	}{
		{galaxyPath, size, false},
		{galaxyPath, size + 1, false},
		{galaxyPath, size + 2, true},
		{galaxyPath, size - 1, true},
		{"/illumina_reads/bobname/file2.fasta", size, true},
	} {
		r, g := newLibraryResolver()
		g.AddDataset(r.Library.Id, test.Name, test.Size)
		unique, err := r.IsFileUnique(context.Background(), localPath, galaxyPath)
		assert.Nil(err)
		assert.Equal(test.Unique, unique, "dataset %s of size %d", test.Name, test.Size)
	}

	// with nothing in the library, any file is unique
	r, _ := newLibraryResolver()
	unique, err := r.IsFileUnique(context.Background(), localPath, galaxyPath)
	assert.Nil(err)
	assert.True(unique)
}
