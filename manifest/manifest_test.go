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
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phac-nml/irida-galaxy-import/importtest"
	"github.com/phac-nml/irida-galaxy-import/registry"
)

// launch manifest with one sample and two sample files
const testManifest = `{
  "_embedded": {
    "library": {"name": "boblib"},
    "user": {"email": "bob@lala.com"},
    "oauth2": {
      "code": "4Xz9rK",
      "redirect": "http://localhost:8888/galaxy/auth_code"
    },
    "samples": [
      {
        "name": "bobname",
        "_links": {"self": {"href": "http://localhost:8080/api/projects/3/samples/1"}},
        "_embedded": {
          "sample_files": [
            {"_links": {"self": {"href": "http://localhost:8080/api/projects/3/samples/1/sequenceFiles/1"}}},
            {"_links": {"self": {"href": "http://localhost:8080/api/projects/3/samples/1/sequenceFiles/2"}}}
          ]
        }
      },
      {
        "name": "sallyname",
        "_links": {"self": {"href": "http://localhost:8080/api/projects/3/samples/2"}},
        "_embedded": {
          "sample_files": [
            {"_links": {"self": {"href": "http://localhost:8080/api/projects/3/samples/2/sequenceFiles/3"}}}
          ]
        }
      }
    ]
  }
}`

// temporary testing directory
var TestDir string

func setup() {
	importtest.EnableDebugLogging()
	var err error
	TestDir, err = os.MkdirTemp(os.TempDir(), "irida-import-manifest-tests-")
	if err != nil {
		log.Panicf("Couldn't create testing directory: %s", err.Error())
	}
}

func breakdown() {
	if TestDir != "" {
		os.RemoveAll(TestDir)
	}
}

func TestMain(m *testing.M) {
	setup()
	status := m.Run()
	breakdown()
	os.Exit(status)
}

// returns a registry fixture that knows all files in testManifest
func newRegistry() *importtest.Registry {
	reg := importtest.NewRegistry()
	reg.AddSampleFile("http://localhost:8080/api/projects/3/samples/1/sequenceFiles/1",
		"file1.fasta", "/data/bobname/file1.fasta")
	reg.AddSampleFile("http://localhost:8080/api/projects/3/samples/1/sequenceFiles/2",
		"file2.fasta", "file:///data/bobname/file2.fasta")
	reg.AddSampleFile("http://localhost:8080/api/projects/3/samples/2/sequenceFiles/3",
		"file3.fastq", "/data/sallyname/file3.fastq")
	return reg
}

func TestParse(t *testing.T) {
	assert := assert.New(t)
	m, err := Parse([]byte(testManifest))
	assert.Nil(err)
	assert.Equal("bob@lala.com", m.Email())
	assert.Equal("boblib", m.LibraryName())
	assert.Equal("4Xz9rK", m.OAuth2().Code)
	assert.Equal("http://localhost:8888/galaxy/auth_code", m.OAuth2().Redirect)
	assert.Equal(2, len(m.Samples()))
	assert.Equal(2, len(m.Samples()[0].Embedded.SampleFiles))
}

func TestParseRejectsIncompleteManifests(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse([]byte(`{"_embedded": {"library": {"name": "boblib"}}}`))
	assert.IsType(&InvalidManifestError{}, err, "manifest without email accepted")

	_, err = Parse([]byte(`{"_embedded": {"user": {"email": "bob@lala.com"}}}`))
	assert.IsType(&InvalidManifestError{}, err, "manifest without library accepted")

	_, err = Parse([]byte(`{"_embedded": {"user": {"email": "bob@lala.com"},
	  "library": {"name": "boblib"}, "samples": [{"name": "a"}, {"name": "a"}]}}`))
	assert.IsType(&InvalidManifestError{}, err, "manifest with duplicate samples accepted")

	_, err = Parse([]byte(`{"_embedded": [`))
	assert.IsType(&InvalidManifestError{}, err, "malformed manifest accepted")
}

func TestReadParameterFile(t *testing.T) {
	assert := assert.New(t)
	data, _ := json.Marshal(map[string]any{
		"param_dict": map[string]any{
			"json_params": testManifest,
		},
	})
	path := filepath.Join(TestDir, "params.json")
	assert.Nil(os.WriteFile(path, data, 0644))

	m, err := ReadParameterFile(path)
	assert.Nil(err)
	assert.Equal("boblib", m.LibraryName())
	assert.Equal(2, len(m.Samples()))

	emptyPath := filepath.Join(TestDir, "empty.json")
	assert.Nil(os.WriteFile(emptyPath, []byte(`{"param_dict": {}}`), 0644))
	_, err = ReadParameterFile(emptyPath)
	assert.IsType(&InvalidManifestError{}, err)

	_, err = ReadParameterFile(filepath.Join(TestDir, "nonexistent.json"))
	assert.NotNil(err)
}

// N sample entries with M file references yield N samples and M lookups,
// one per file
func TestSamples(t *testing.T) {
	assert := assert.New(t)
	m, _ := Parse([]byte(testManifest))
	reg := newRegistry()
	parser := Parser{Session: reg}

	samples, err := parser.Samples(context.Background(), m.Samples())
	assert.Nil(err)
	assert.Equal(2, len(samples))
	assert.Equal(3, reg.NumCalls())
	for url, calls := range reg.Calls {
		assert.Equal(1, calls, "sample file %s was fetched more than once", url)
	}

	assert.Equal("bobname", samples[0].Name)
	assert.Equal("http://localhost:8080/api/projects/3/samples/1", samples[0].SourceRef)
	assert.Equal(2, len(samples[0].Files))
	assert.Equal("file1.fasta", samples[0].Files[0].Name)
	assert.Equal("/data/bobname/file1.fasta", samples[0].Files[0].Path)
	assert.Equal("file2.fasta", samples[0].Files[1].Name)
	assert.Equal("/data/bobname/file2.fasta", samples[0].Files[1].LocalPath())
	assert.Equal("", samples[0].Files[0].DatasetId)

	assert.Equal("sallyname", samples[1].Name)
	assert.Equal(1, len(samples[1].Files))
	assert.Equal("file3.fastq", samples[1].Files[0].Name)
}

// a single bad file reference ends parsing
func TestSamplesFailFast(t *testing.T) {
	assert := assert.New(t)
	m, _ := Parse([]byte(testManifest))
	reg := newRegistry()
	reg.AddResponse("http://localhost:8080/api/projects/3/samples/1/sequenceFiles/2",
		http.StatusForbidden, `{"message":"forbidden"}`)
	parser := Parser{Session: reg}

	samples, err := parser.Samples(context.Background(), m.Samples())
	assert.Nil(samples)
	var lookupErr *registry.LookupError
	assert.ErrorAs(err, &lookupErr)
	assert.Equal(http.StatusForbidden, lookupErr.Status)
	assert.Equal(2, reg.NumCalls(), "parsing continued past a bad file reference")
}

func TestSampleFileMalformedBody(t *testing.T) {
	assert := assert.New(t)
	reg := importtest.NewRegistry()
	reg.AddResponse("http://irida/api/file/1", http.StatusOK, `{"resource": [`)
	reg.AddResponse("http://irida/api/file/2", http.StatusOK, `{"resource": {"fileName": "x"}}`)
	reg.AddResponse("http://irida/api/file/3", http.StatusOK, `{}`)
	parser := Parser{Session: reg}

	for _, url := range []string{"http://irida/api/file/1", "http://irida/api/file/2",
		"http://irida/api/file/3", "http://irida/api/file/4", ""} {
		_, err := parser.SampleFile(context.Background(), url)
		var lookupErr *registry.LookupError
		assert.ErrorAs(err, &lookupErr, "no lookup error for %s", url)
	}
}

func TestSampleFileEquality(t *testing.T) {
	assert := assert.New(t)
	a := SampleFile{Name: "file1.fasta", Path: "/data/file1.fasta"}
	b := SampleFile{Name: "renamed.fasta", Path: "/data/file1.fasta"}
	c := SampleFile{Name: "file1.fasta", Path: "/data/other/file1.fasta"}
	assert.True(a.Equal(b))
	assert.False(a.Equal(c))
	assert.Equal("file1.fasta @ /data/file1.fasta", a.String())
}

func TestSampleFileDatasetIdAssignedOnce(t *testing.T) {
	assert := assert.New(t)
	f := SampleFile{Name: "file1.fasta", Path: "/data/file1.fasta"}
	assert.Nil(f.SetDatasetId("d1"))
	assert.Equal("d1", f.DatasetId)
	err := f.SetDatasetId("d2")
	assert.IsType(&DatasetAlreadyAssignedError{}, err)
	assert.Equal("d1", f.DatasetId)
}

func TestLocalPath(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("/data/a.fastq", SampleFile{Path: "/data/a.fastq"}.LocalPath())
	assert.Equal("/data/a.fastq", SampleFile{Path: "file:///data/a.fastq"}.LocalPath())
	assert.Equal("/data/my file.fastq", SampleFile{Path: "file:///data/my%20file.fastq"}.LocalPath())
}
