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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDataResource(t *testing.T) {
	assert := assert.New(t)
	res := NewDataResource("/illumina_reads/Bob Name/reads_R1.FASTQ", "/data/reads_R1.FASTQ", 1024)
	assert.Equal("illumina_reads/bob_name/reads_r1.fastq", res.Name)
	assert.Equal("illumina_reads/Bob Name/reads_R1.FASTQ", res.Path)
	assert.Equal("fastq", res.Format)
	assert.Equal("text/plain", res.MediaType)
	assert.Equal(int64(1024), res.Bytes)
	assert.Equal("/data/reads_R1.FASTQ", res.LocalPath)
}

func TestPackage(t *testing.T) {
	assert := assert.New(t)
	p := DataPackage{
		Name:     "manifest",
		Profile:  "data-package",
		Keywords: []string{"irida", "galaxy", "import"},
		Contributors: []Contributor{
			{Title: "bob@lala.com", Email: "bob@lala.com", Role: "author"},
		},
		Resources: []DataResource{
			NewDataResource("/illumina_reads/bobname/file1.fasta", "/data/file1.fasta", 17),
			NewDataResource("/illumina_reads/bobname/file2.fasta", "/data/file2.fasta", 16),
		},
	}
	pkg, err := p.Package()
	assert.Nil(err)
	assert.Equal([]string{"illumina_reads/bobname/file1.fasta", "illumina_reads/bobname/file2.fasta"},
		pkg.ResourceNames())

	// a data package needs at least one resource
	p.Resources = nil
	_, err = p.Package()
	assert.NotNil(err)
}
