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

	"github.com/dustin/go-humanize"

	"github.com/phac-nml/irida-galaxy-import/config"
	"github.com/phac-nml/irida-galaxy-import/galaxy"
	"github.com/phac-nml/irida-galaxy-import/manifest"
)

//----------
// Executor
//----------

// An Executor links a sample's files into the destination library, recording
// the outcome for each file in a RunContext.
type Executor struct {
	Resolver *Resolver
	// library folder holding one subfolder per sample
	ReadsPath string
	// what to do about files missing from the local filesystem
	// (config.MissingFilesRecord or config.MissingFilesAbort)
	MissingFiles string
}

// returns the absolute path of the given sample's folder in the library
func (e *Executor) SampleFolderPath(sample manifest.Sample) string {
	return e.ReadsPath + "/" + sample.Name
}

// Links those of the sample's files that aren't already in the library into
// the sample's folder, which must already exist. Each file ends up in exactly
// one of the run's audit logs:
//   - files missing from the local filesystem are recorded as missing; under
//     the "abort" policy a *LocalFileMissingError is also returned
//   - files already present (same name, matching size) are recorded as skipped
//   - everything else is linked and recorded as imported
//
// If Galaxy fails to link a file, the file is recorded as failed and a
// *TransferError is returned without touching the sample's remaining files.
// The datasets created are returned in either case, and each imported file's
// DatasetId is set.
func (e *Executor) AddSampleIfNeeded(ctx context.Context, rc *RunContext,
	sample *manifest.Sample) ([]galaxy.UploadedFile, error) {
	added := make([]galaxy.UploadedFile, 0)
	folderPath := e.SampleFolderPath(*sample)
	for i := range sample.Files {
		file := &sample.Files[i]
		localPath := file.LocalPath()
		galaxyPath := folderPath + "/" + file.Name

		info, err := os.Stat(localPath)
		if err != nil || !info.Mode().IsRegular() {
			slog.Error(fmt.Sprintf("File not found: %s", localPath))
			rc.recordMissingOrFailed(localPath, galaxyPath, "not found")
			if e.MissingFiles == config.MissingFilesAbort {
				return added, &LocalFileMissingError{LocalPath: localPath, GalaxyPath: galaxyPath}
			}
			continue
		}

		unique, err := e.Resolver.IsFileUnique(ctx, localPath, galaxyPath)
		if err != nil {
			rc.recordMissingOrFailed(localPath, galaxyPath, err.Error())
			return added, &TransferError{LocalPath: localPath, GalaxyPath: galaxyPath, Err: err}
		}
		if !unique {
			rc.recordSkipped(localPath, galaxyPath)
			slog.Warn(fmt.Sprintf("Skipped importing: %s", galaxyPath))
			continue
		}

		slog.Debug(fmt.Sprintf("Sample file does not exist so linking it (%s)",
			humanize.Bytes(uint64(info.Size()))))
		linked, err := e.LinkOrUpload(ctx, *file, folderPath)
		if err != nil {
			rc.recordMissingOrFailed(localPath, galaxyPath, err.Error())
			return added, &TransferError{LocalPath: localPath, GalaxyPath: galaxyPath, Err: err}
		}
		if len(linked) > 0 {
			if err := file.SetDatasetId(linked[0].Id); err != nil {
				slog.Warn(err.Error())
			}
		}
		added = append(added, linked...)
		rc.recordImported(localPath, galaxyPath, linked)
		slog.Info(fmt.Sprintf("Imported: %s", galaxyPath))
	}
	return added, nil
}

// Registers the given sample file as a dataset in the library folder with
// the given absolute path. The file is linked, not copied: it must remain
// on a filesystem Galaxy can read.
func (e *Executor) LinkOrUpload(ctx context.Context, file manifest.SampleFile,
	folderPath string) ([]galaxy.UploadedFile, error) {
	r := e.Resolver
	if r.Library == nil {
		return nil, &NoLibraryError{}
	}
	localPath := file.LocalPath()
	slog.Debug(fmt.Sprintf("Sample file's local path is %s", localPath))

	folders, err := r.Admin.Folders(ctx, r.Library.Id, folderPath)
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		return nil, fmt.Errorf("Library folder '%s' not found", folderPath)
	}
	return r.Admin.UploadAsLink(ctx, r.Library.Id, localPath, folders[0].Id,
		galaxy.FileTypeFor(localPath))
}
