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

// Package manifest decodes the launch manifest that Galaxy hands the importer
// when IRIDA sends a user back from a project's cart, resolving each sample
// file it references against the registry.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/phac-nml/irida-galaxy-import/clients"
	"github.com/phac-nml/irida-galaxy-import/registry"
)

// a link to a registry resource
type link struct {
	Href string `json:"href"`
}

type links struct {
	Self link `json:"self"`
}

// a sample entry in the launch manifest
type SampleEntry struct {
	Name     string `json:"name"`
	Links    links  `json:"_links"`
	Embedded struct {
		SampleFiles []struct {
			Links links `json:"_links"`
		} `json:"sample_files"`
	} `json:"_embedded"`
}

// OAuth2 parameters IRIDA passes along for the registry session
type OAuth2 struct {
	Redirect string `json:"redirect"`
	Code     string `json:"code"`
}

// The decoded launch manifest: which samples to import, for whom, and into
// which library.
type Manifest struct {
	Embedded struct {
		Samples []SampleEntry `json:"samples"`
		User    struct {
			Email string `json:"email"`
		} `json:"user"`
		Library struct {
			Name string `json:"name"`
		} `json:"library"`
		OAuth2 OAuth2 `json:"oauth2"`
	} `json:"_embedded"`
}

// the sample entries to import
func (m Manifest) Samples() []SampleEntry { return m.Embedded.Samples }

// the email address of the Galaxy user who owns the import
func (m Manifest) Email() string { return m.Embedded.User.Email }

// the name of the destination library
func (m Manifest) LibraryName() string { return m.Embedded.Library.Name }

// the OAuth2 parameters for the registry session
func (m Manifest) OAuth2() OAuth2 { return m.Embedded.OAuth2 }

// Galaxy writes tool parameters to a JSON file whose param_dict holds the
// manifest as a JSON-encoded string.
type parameterFile struct {
	ParamDict struct {
		JsonParams string `json:"json_params"`
	} `json:"param_dict"`
}

// Reads the launch manifest from the JSON parameter file Galaxy writes for
// the importer.
func ReadParameterFile(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var params parameterFile
	err = json.Unmarshal(data, &params)
	if err != nil {
		return Manifest{}, &InvalidManifestError{
			Message: fmt.Sprintf("couldn't decode parameter file %s: %s", path, err.Error()),
		}
	}
	if params.ParamDict.JsonParams == "" {
		return Manifest{}, &InvalidManifestError{
			Message: fmt.Sprintf("parameter file %s has no param_dict.json_params", path),
		}
	}
	slog.Debug(fmt.Sprintf("The JSON parameters from IRIDA are:\n%s", params.ParamDict.JsonParams))
	return Parse([]byte(params.ParamDict.JsonParams))
}

// Decodes and validates a launch manifest.
func Parse(data []byte) (Manifest, error) {
	var m Manifest
	err := json.Unmarshal(data, &m)
	if err != nil {
		return m, &InvalidManifestError{Message: err.Error()}
	}
	if m.Email() == "" {
		return m, &InvalidManifestError{Message: "no user email was given"}
	}
	if m.LibraryName() == "" {
		return m, &InvalidManifestError{Message: "no library name was given"}
	}
	names := make(map[string]bool)
	for i, entry := range m.Samples() {
		if entry.Name == "" {
			return m, &InvalidManifestError{
				Message: fmt.Sprintf("sample %d has no name", i),
			}
		}
		if names[entry.Name] {
			return m, &InvalidManifestError{
				Message: fmt.Sprintf("sample name '%s' appears more than once", entry.Name),
			}
		}
		names[entry.Name] = true
	}
	return m, nil
}

// A Parser turns manifest sample entries into Samples, looking up each of
// their files in the registry.
type Parser struct {
	Session registry.Session
}

// Resolves the given sample entries into samples, in order. Each sample file
// reference is fetched from the registry exactly once. The first failed
// lookup ends parsing and is returned as a *registry.LookupError.
func (p Parser) Samples(ctx context.Context, entries []SampleEntry) ([]Sample, error) {
	samples := make([]Sample, 0, len(entries))
	for _, entry := range entries {
		sample := Sample{
			Name:      entry.Name,
			SourceRef: entry.Links.Self.Href,
		}
		for _, ref := range entry.Embedded.SampleFiles {
			file, err := p.SampleFile(ctx, ref.Links.Self.Href)
			if err != nil {
				return nil, err
			}
			sample.Files = append(sample.Files, file)
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// the registry's representation of a sample file
type sampleFileResponse struct {
	Resource *struct {
		FileName string `json:"fileName"`
		File     string `json:"file"`
	} `json:"resource"`
}

// Fetches the sample file at the given registry URL.
func (p Parser) SampleFile(ctx context.Context, url string) (SampleFile, error) {
	if url == "" {
		return SampleFile{}, &registry.LookupError{
			URL:     url,
			Message: "sample file reference has no self link",
		}
	}
	status, body, err := p.Session.Get(ctx, url)
	if err != nil {
		return SampleFile{}, &registry.LookupError{
			URL:     url,
			Message: err.Error(),
		}
	}
	if !clients.IsSuccess(status) {
		return SampleFile{}, &registry.LookupError{
			URL:     url,
			Status:  status,
			Message: "unsuccessful response",
		}
	}

	var response sampleFileResponse
	err = json.Unmarshal(body, &response)
	if err != nil {
		return SampleFile{}, &registry.LookupError{
			URL:     url,
			Status:  status,
			Message: fmt.Sprintf("malformed body: %s", err.Error()),
		}
	}
	if response.Resource == nil || response.Resource.FileName == "" ||
		response.Resource.File == "" {
		return SampleFile{}, &registry.LookupError{
			URL:     url,
			Status:  status,
			Message: "response has no resource.fileName or resource.file",
		}
	}
	slog.Debug(fmt.Sprintf("Sample file %s is at %s", response.Resource.FileName,
		response.Resource.File))
	return SampleFile{
		Name: response.Resource.FileName,
		Path: response.Resource.File,
	}, nil
}
