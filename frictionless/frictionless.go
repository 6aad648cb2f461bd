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

package frictionless

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/frictionlessdata/datapackage-go/datapackage"
	"github.com/frictionlessdata/datapackage-go/validator"
)

// a Frictionless data package describing a set of related resources
// (https://specs.frictionlessdata.io/data-package/)
type DataPackage struct {
	// list of contributors to the data package
	Contributors []Contributor `json:"contributors,omitempty"`
	// a timestamp indicated when the package was created
	Created string `json:"created,omitempty"`
	// a Markdown description of the data package
	Description string `json:"description,omitempty"`
	// an array of string keywords to assist users searching for the data package
	// in catalogs
	Keywords []string `json:"keywords,omitempty"`
	// the name of the data package
	Name string `json:"name"`
	// the profile of this descriptor per the DataPackage profiles specification
	// (https://specs.frictionlessdata.io/profiles/#language)
	Profile string `json:"profile,omitempty"`
	// a list of resources that belong to the package
	Resources []DataResource `json:"resources"`
	// a title or one sentence description for the data package
	Title string `json:"title,omitempty"`
}

// a Frictionless data resource describing a sample file linked into a Galaxy
// library (https://specs.frictionlessdata.io/data-resource/)
type DataResource struct {
	// the size of the resource's file in bytes (0 if unknown)
	Bytes int64 `json:"bytes,omitempty"`
	// indicates the format of the resource's file, often used as an extension
	Format string `json:"format,omitempty"`
	// the mediatype/mimetype of the resource (optional, e.g. "test/csv")
	MediaType string `json:"media_type,omitempty"`
	// a name for the resource, unique within its package
	Name string `json:"name"`
	// the resource's path within the library, relative to its root folder
	Path string `json:"path"`
	// a list identifying the sources for this resource (optional)
	Sources []DataSource `json:"sources,omitempty"`
	// the absolute path of the resource's dataset in its Galaxy library
	GalaxyPath string `json:"galaxy_path"`
	// the location of the resource's file on the filesystem Galaxy links to
	LocalPath string `json:"local_path"`
}

// information about the source of a DataResource
type DataSource struct {
	// an email address identifying a contact associated with the source (optional)
	Email string `json:"email,omitempty"`
	// a URI or relative path pointing to the source (optional)
	Path string `json:"path,omitempty"`
	// a descriptive title for the source
	Title string `json:"title"`
}

// information about a contributor to a DataPackage
type Contributor struct {
	// the contributor's email address
	Email string `json:"email"`
	// the role of the contributor ("author", "publisher", "maintainer",
	// "wrangler", "contributor")
	Role string `json:"role"`
	// name/title of the contributor (name for person, name/title of organization)
	Title string `json:"title"`
}

// creates a data resource for the dataset at the given absolute Galaxy path,
// linked to the file at the given local path
func NewDataResource(galaxyPath, localPath string, bytes int64) DataResource {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(galaxyPath), "."))
	return DataResource{
		Bytes:      bytes,
		Format:     format,
		MediaType:  MediaType(format),
		Name:       ResourceName(galaxyPath),
		Path:       strings.TrimLeft(galaxyPath, "/"),
		GalaxyPath: galaxyPath,
		LocalPath:  localPath,
	}
}

// Returns a valid resource name for the given path. Resource names may only
// contain lowercase letters, digits, and the characters -._/
func ResourceName(path string) string {
	name := strings.ToLower(strings.TrimLeft(path, "/"))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', strings.ContainsRune("-._/", r):
			return r
		default:
			return '_'
		}
	}, name)
}

// returns the media type for sequence files of the given format
func MediaType(format string) string {
	switch format {
	case "fasta", "fa", "fna", "fastq", "fq":
		return "text/plain"
	case "gz":
		return "application/gzip"
	default:
		return "application/octet-stream"
	}
}

// Validates the data package against the Frictionless data package profile,
// returning the validated package.
func (p DataPackage) Package() (*datapackage.Package, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return datapackage.FromString(string(data), "manifest.json", validator.InMemoryLoader())
}
