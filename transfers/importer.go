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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phac-nml/irida-galaxy-import/config"
	"github.com/phac-nml/irida-galaxy-import/galaxy"
	"github.com/phac-nml/irida-galaxy-import/manifest"
	"github.com/phac-nml/irida-galaxy-import/registry"
)

// A SessionFunc establishes an authenticated registry session using the
// OAuth2 parameters carried by a manifest.
type SessionFunc func(ctx context.Context, params manifest.OAuth2) (registry.Session, error)

//----------
// Importer
//----------

// An Importer runs one import: it resolves a manifest's samples against the
// registry and links their files into a Galaxy library for the requesting
// user. Runs are strictly sequential and never retried.
type Importer struct {
	Objects galaxy.ObjectsClient
	Admin   galaxy.AdminClient
	// establishes the registry session for a run
	Connect SessionFunc
	// standing folders at the root of every destination library
	ReadsPath, ReferencesPath string
	// missing local file policy (config.MissingFilesRecord/Abort)
	MissingFiles string
}

// creates an importer that uses the given Galaxy clients and registry session
// factory, configured from the config package's import section
func NewImporter(objects galaxy.ObjectsClient, admin galaxy.AdminClient,
	connect SessionFunc) *Importer {
	return &Importer{
		Objects:        objects,
		Admin:          admin,
		Connect:        connect,
		ReadsPath:      config.Import.ReadsPath,
		ReferencesPath: config.Import.ReferencesPath,
		MissingFiles:   config.Import.MissingFiles,
	}
}

// Runs an import for the given (parsed) manifest, returning a RunContext
// describing the outcome. The summary of the run is emitted to the log
// whether or not the run succeeds; if it fails, the error that stopped it is
// returned along with the context holding whatever was accumulated up to
// that point.
func (imp *Importer) Run(ctx context.Context, m manifest.Manifest) (rc *RunContext, err error) {
	rc = NewRunContext(m.LibraryName(), m.Email())
	slog.Info(fmt.Sprintf("Importing %d sample(s) into library '%s' for %s (run %s)",
		len(m.Samples()), rc.LibraryName, rc.Email, rc.Id.String()))

	defer func() {
		rc.LogSummary()
		rc.setState(StateSummarized)
		rc.StopTime = time.Now()
		if err != nil {
			slog.Error(fmt.Sprintf("Import %s failed: %s", rc.Id.String(), err.Error()))
			rc.setState(StateFailed)
		} else {
			rc.setState(StateDone)
		}
	}()

	if imp.Connect == nil {
		return rc, errors.New("No registry session factory was provided")
	}
	session, err := imp.Connect(ctx, m.OAuth2())
	if err != nil {
		return rc, err
	}
	rc.setState(StateAuthenticated)

	parser := manifest.Parser{Session: session}
	samples, err := parser.Samples(ctx, m.Samples())
	if err != nil {
		return rc, err
	}

	resolver := NewResolver(imp.Objects, imp.Admin)
	rc.Library, err = resolver.GetOrCreateLibrary(ctx, rc.LibraryName, rc.Email)
	if err != nil {
		return rc, err
	}
	for _, folderPath := range []string{imp.ReadsPath, imp.ReferencesPath} {
		_, err = resolver.GetOrCreateFolder(ctx, folderPath)
		if err != nil {
			return rc, err
		}
	}
	rc.setState(StateDestinationReady)

	executor := Executor{
		Resolver:     resolver,
		ReadsPath:    imp.ReadsPath,
		MissingFiles: imp.MissingFiles,
	}
	for i := range samples {
		sample := &samples[i]
		_, err = resolver.GetOrCreateFolder(ctx, executor.SampleFolderPath(*sample))
		if err != nil {
			return rc, err
		}
		rc.setState(StateFolderReady)

		_, err = executor.AddSampleIfNeeded(ctx, rc, sample)
		if err != nil {
			return rc, err
		}
		rc.setState(StateFilesTransferred)
	}
	return rc, nil
}
