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
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phac-nml/irida-galaxy-import/galaxy"
)

// This "enum" type identifies how far an import has progressed.
type State int

const (
	StateStart            State = iota // nothing done yet
	StateAuthenticated                 // registry session established
	StateDestinationReady              // library and standing folders exist
	StateFolderReady                   // current sample's folder exists
	StateFilesTransferred              // current sample's files handled
	StateSummarized                    // summary emitted
	StateDone                          // import succeeded
	StateFailed                        // import failed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateAuthenticated:
		return "authenticated"
	case StateDestinationReady:
		return "destination ready"
	case StateFolderReady:
		return "folder ready"
	case StateFilesTransferred:
		return "files transferred"
	case StateSummarized:
		return "summarized"
	case StateDone:
		return "done"
	default:
		return "failed"
	}
}

// A FileRecord is an audit log entry for one sample file.
type FileRecord struct {
	// the file's location on the local filesystem
	LocalPath string
	// the file's absolute path within the destination library
	GalaxyPath string
	// why the file was skipped or not imported (empty for imported files)
	Reason string
}

//------------
// RunContext
//------------

// A RunContext accumulates the outcome of one import. It is owned by the
// Importer for the duration of a run and handed to the Executor, which
// appends to its audit logs. The three logs are disjoint: each sample file
// handled appears in exactly one of them.
type RunContext struct {
	// run identifier
	Id uuid.UUID
	// the destination library and the user for whom it is populated
	LibraryName, Email string
	Library            galaxy.Library
	// times at which the run started and stopped
	StartTime, StopTime time.Time
	// current state of the run
	State State
	// files linked into the library
	Imported []FileRecord
	// files already present in the library
	Skipped []FileRecord
	// files missing from the local filesystem, or that Galaxy failed to
	// register
	MissingOrFailed []FileRecord
	// datasets created during the run
	Uploaded []galaxy.UploadedFile
}

// creates a new run context for populating the named library for the user
// with the given email address
func NewRunContext(libraryName, email string) *RunContext {
	return &RunContext{
		Id:          uuid.New(),
		LibraryName: libraryName,
		Email:       email,
		StartTime:   time.Now(),
		State:       StateStart,
	}
}

func (rc *RunContext) setState(state State) {
	slog.Debug(fmt.Sprintf("Import %s: %s -> %s", rc.Id.String(), rc.State, state))
	rc.State = state
}

func (rc *RunContext) recordImported(localPath, galaxyPath string, added []galaxy.UploadedFile) {
	rc.Imported = append(rc.Imported, FileRecord{LocalPath: localPath, GalaxyPath: galaxyPath})
	rc.Uploaded = append(rc.Uploaded, added...)
}

func (rc *RunContext) recordSkipped(localPath, galaxyPath string) {
	rc.Skipped = append(rc.Skipped, FileRecord{
		LocalPath:  localPath,
		GalaxyPath: galaxyPath,
		Reason:     "not unique",
	})
}

func (rc *RunContext) recordMissingOrFailed(localPath, galaxyPath, reason string) {
	rc.MissingOrFailed = append(rc.MissingOrFailed, FileRecord{
		LocalPath:  localPath,
		GalaxyPath: galaxyPath,
		Reason:     reason,
	})
}

// Returns true if the run finished successfully.
func (rc *RunContext) Succeeded() bool {
	return rc.State == StateDone
}

// returns the headline counts of the run
func (rc *RunContext) countsLine() string {
	return fmt.Sprintf("%d file(s) imported and %d file(s) skipped.",
		len(rc.Imported), len(rc.Skipped))
}

type summarySection struct {
	Heading string
	Records []FileRecord
}

func (rc *RunContext) summarySections() []summarySection {
	return []summarySection{
		{"Files imported:", rc.Imported},
		{"Some files couldn't be imported because they don't exist or failed to transfer:",
			rc.MissingOrFailed},
		{"Some files were skipped because they were not unique:", rc.Skipped},
	}
}

// Returns a human-readable summary of the run: the number of files imported
// and skipped, followed by itemized lists of imported, missing or failed,
// and skipped files. Empty lists are omitted.
func (rc *RunContext) Summary() string {
	var b strings.Builder
	b.WriteString("Final summary:\n")
	b.WriteString(rc.countsLine())
	b.WriteString("\n")
	for _, section := range rc.summarySections() {
		if len(section.Records) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", section.Heading)
		for _, record := range section.Records {
			fmt.Fprintf(&b, "File with local path: %s\n and Galaxy path: %s\n",
				record.LocalPath, record.GalaxyPath)
			if record.Reason != "" && record.Reason != "not unique" {
				fmt.Fprintf(&b, " (%s)\n", record.Reason)
			}
		}
	}
	return b.String()
}

// Emits the summary to the structured log.
func (rc *RunContext) LogSummary() {
	slog.Warn("Final summary:")
	slog.Info(rc.countsLine())
	for _, section := range rc.summarySections() {
		if len(section.Records) == 0 {
			continue
		}
		slog.Warn(section.Heading)
		for _, record := range section.Records {
			slog.Warn(fmt.Sprintf("File with local path: %s and Galaxy path: %s",
				record.LocalPath, record.GalaxyPath), "reason", record.Reason)
		}
	}
}
