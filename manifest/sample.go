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

package manifest

import (
	"fmt"
	"net/url"
	"strings"
)

// A Sample identifies one biological sample whose files are to be imported.
type Sample struct {
	// sample name, unique within a manifest; names the sample's library folder
	Name string
	// the sample's URL in the registry (informational)
	SourceRef string
	// the sample's files, in the order the registry enumerated them
	Files []SampleFile
}

// A SampleFile identifies one physical file belonging to a Sample.
type SampleFile struct {
	// file name, used as the leaf of the file's library path
	Name string
	// local filesystem path or file:// URI, as given by the registry
	Path string
	// the ID of the library dataset created for this file (empty until the
	// file has been imported)
	DatasetId string
}

// Returns true if the two sample files refer to the same local file,
// regardless of their names.
func (f SampleFile) Equal(other SampleFile) bool {
	return f.Path == other.Path
}

// Returns the file's location on the local filesystem, converting file://
// URIs to plain paths.
func (f SampleFile) LocalPath() string {
	if !strings.HasPrefix(f.Path, "file://") {
		return f.Path
	}
	u, err := url.Parse(f.Path)
	if err != nil || u.Path == "" {
		return strings.TrimPrefix(f.Path, "file://")
	}
	return u.Path
}

// Records the ID of the library dataset created for this file. A dataset ID
// can be assigned only once.
func (f *SampleFile) SetDatasetId(id string) error {
	if f.DatasetId != "" {
		return &DatasetAlreadyAssignedError{
			Path:      f.Path,
			DatasetId: f.DatasetId,
		}
	}
	f.DatasetId = id
	return nil
}

func (f SampleFile) String() string {
	return fmt.Sprintf("%s @ %s", f.Name, f.Path)
}
