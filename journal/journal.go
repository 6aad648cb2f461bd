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

package journal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/frictionlessdata/datapackage-go/datapackage"
	"github.com/frictionlessdata/datapackage-go/validator"
	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/phac-nml/irida-galaxy-import/frictionless"
	"github.com/phac-nml/irida-galaxy-import/transfers"
)

// This is the importer's run journal, which logs every import. The journal is
// a SQLite database with a table of run records (one per import) and a table
// of manifests listing the files each import linked into Galaxy.

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// a record storing all information relevant to an import
type Record struct {
	// UUID associated with the import
	Id uuid.UUID `json:"id"`
	// the destination library and the user for whom it was populated
	Library string `json:"library"`
	Email   string `json:"email"`
	// times at which the import started and stopped
	StartTime time.Time `json:"start_time"`
	StopTime  time.Time `json:"stop_time"`
	// status of the import ("succeeded" or "failed")
	Status string `json:"status"`
	// numbers of files imported, skipped, and missing or failed
	NumImported        int `json:"num_imported"`
	NumSkipped         int `json:"num_skipped"`
	NumMissingOrFailed int `json:"num_missing_or_failed"`
	// manifest listing the files linked by the import (stored separate from
	// record, absent if nothing was imported)
	Manifest *datapackage.Package `json:"-"`
}

// creates a journal record for the given (finished) import
func NewRecord(rc *transfers.RunContext) (Record, error) {
	record := Record{
		Id:                 rc.Id,
		Library:            rc.LibraryName,
		Email:              rc.Email,
		StartTime:          rc.StartTime,
		StopTime:           rc.StopTime,
		Status:             StatusFailed,
		NumImported:        len(rc.Imported),
		NumSkipped:         len(rc.Skipped),
		NumMissingOrFailed: len(rc.MissingOrFailed),
	}
	if rc.Succeeded() {
		record.Status = StatusSucceeded
	}
	if len(rc.Imported) > 0 {
		var err error
		record.Manifest, err = NewManifest(rc)
		if err != nil {
			return record, &NewRecordError{Id: rc.Id, Message: err.Error()}
		}
	}
	return record, nil
}

// Creates a Frictionless data package listing the files imported by the
// given run. Resource paths are Galaxy paths relative to the library root.
func NewManifest(rc *transfers.RunContext) (*datapackage.Package, error) {
	descriptor := frictionless.DataPackage{
		Name:     "manifest",
		Profile:  "data-package",
		Created:  rc.StartTime.UTC().Format(time.RFC3339),
		Keywords: []string{"irida", "galaxy", "import"},
		Contributors: []frictionless.Contributor{
			{Title: rc.Email, Email: rc.Email, Role: "author"},
		},
		Resources: make([]frictionless.DataResource, len(rc.Imported)),
	}
	for i, file := range rc.Imported {
		var size int64
		if info, err := os.Stat(file.LocalPath); err == nil {
			size = info.Size()
		}
		descriptor.Resources[i] = frictionless.NewDataResource(file.GalaxyPath, file.LocalPath, size)
	}
	return descriptor.Package()
}

//-----------
// Internals
//-----------

// the journal's database connection (nil if closed)
var conn_ *sqlite.Conn
var mutex_ sync.Mutex

// timestamps are stored as fixed-width UTC strings so they sort lexically
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  library TEXT NOT NULL,
  email TEXT NOT NULL,
  start_time TEXT NOT NULL,
  stop_time TEXT NOT NULL,
  status TEXT NOT NULL,
  num_imported INTEGER NOT NULL,
  num_skipped INTEGER NOT NULL,
  num_missing_or_failed INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_by_start_time ON runs (start_time);
CREATE TABLE IF NOT EXISTS manifests (
  id TEXT PRIMARY KEY REFERENCES runs (id),
  descriptor TEXT NOT NULL
);
`

const recordColumns = `id, library, email, start_time, stop_time, status,
  num_imported, num_skipped, num_missing_or_failed`

// opens (creating if necessary) the journal database at the given path
func Init(path string) error {
	mutex_.Lock()
	defer mutex_.Unlock()
	if conn_ != nil {
		return nil
	}
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	if err != nil {
		return &CantOpenError{Path: path, Message: err.Error()}
	}
	err = sqlitex.ExecuteScript(conn, schema, nil)
	if err != nil {
		conn.Close()
		return &CantOpenError{Path: path, Message: err.Error()}
	}
	slog.Debug(fmt.Sprintf("Opened import journal at %s", path))
	conn_ = conn
	return nil
}

// closes the journal (if it's been opened)
func Finalize() error {
	mutex_.Lock()
	defer mutex_.Unlock()
	if conn_ == nil {
		return nil
	}
	err := conn_.Close()
	conn_ = nil
	if err != nil {
		return &CantCloseError{Message: err.Error()}
	}
	return nil
}

// returns true if the journal is open for writing, false if not
func IsOpen() bool {
	mutex_.Lock()
	defer mutex_.Unlock()
	return conn_ != nil
}

// records a finished import
func RecordRun(record Record) (err error) {
	switch record.Status {
	case StatusSucceeded, StatusFailed:
	default:
		return &NewRecordError{
			Id:      record.Id,
			Message: fmt.Sprintf("Invalid status: %s", record.Status),
		}
	}

	mutex_.Lock()
	defer mutex_.Unlock()
	if conn_ == nil {
		return &NotOpenError{}
	}

	defer sqlitex.Save(conn_)(&err)
	err = sqlitex.Execute(conn_,
		`INSERT INTO runs (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				record.Id.String(),
				record.Library,
				record.Email,
				record.StartTime.UTC().Format(timeFormat),
				record.StopTime.UTC().Format(timeFormat),
				record.Status,
				record.NumImported,
				record.NumSkipped,
				record.NumMissingOrFailed,
			},
		})
	if err != nil {
		return &NewRecordError{Id: record.Id, Message: err.Error()}
	}

	if record.Manifest != nil {
		descriptor, err := json.Marshal(record.Manifest.Descriptor())
		if err != nil {
			return &NewRecordError{Id: record.Id, Message: err.Error()}
		}
		err = sqlitex.Execute(conn_, `INSERT INTO manifests (id, descriptor) VALUES (?, ?)`,
			&sqlitex.ExecOptions{Args: []any{record.Id.String(), string(descriptor)}})
		if err != nil {
			return &NewRecordError{Id: record.Id, Message: err.Error()}
		}
	}
	return nil
}

// retrieves the record for the import with the given ID
func RunRecord(id uuid.UUID) (Record, error) {
	mutex_.Lock()
	defer mutex_.Unlock()
	if conn_ == nil {
		return Record{}, &NotOpenError{}
	}
	records, err := fetchRecords(`SELECT `+recordColumns+` FROM runs WHERE id = ?`, id.String())
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, &RecordNotFoundError{Id: id}
	}
	return records[0], nil
}

// retrieves records for imports that started and finished within the time
// range with the given (inclusive) bounds, ordered by start time
func Records(start, stop time.Time) ([]Record, error) {
	mutex_.Lock()
	defer mutex_.Unlock()
	if conn_ == nil {
		return nil, &NotOpenError{}
	}
	return fetchRecords(`SELECT `+recordColumns+` FROM runs
  WHERE start_time >= ? AND stop_time <= ? ORDER BY start_time`,
		start.UTC().Format(timeFormat), stop.UTC().Format(timeFormat))
}

func fetchRecords(query string, args ...any) ([]Record, error) {
	records := make([]Record, 0)
	err := sqlitex.Execute(conn_, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			record, err := scanRecord(stmt)
			if err != nil {
				return err
			}
			records = append(records, record)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	// attach manifests
	for i := range records {
		found := false
		err := sqlitex.Execute(conn_, `SELECT descriptor FROM manifests WHERE id = ?`,
			&sqlitex.ExecOptions{
				Args: []any{records[i].Id.String()},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					found = true
					var err error
					records[i].Manifest, err = datapackage.FromString(stmt.ColumnText(0),
						"manifest.json", validator.InMemoryLoader())
					return err
				},
			})
		if err != nil {
			return nil, &InvalidRecordError{Id: records[i].Id, Message: err.Error()}
		}
		if !found && records[i].NumImported > 0 {
			return nil, &InvalidRecordError{
				Id:      records[i].Id,
				Message: "unable to retrieve manifest for an import that linked files",
			}
		}
	}
	return records, nil
}

func scanRecord(stmt *sqlite.Stmt) (Record, error) {
	id, err := uuid.Parse(stmt.ColumnText(0))
	if err != nil {
		return Record{}, err
	}
	record := Record{
		Id:                 id,
		Library:            stmt.ColumnText(1),
		Email:              stmt.ColumnText(2),
		Status:             stmt.ColumnText(5),
		NumImported:        stmt.ColumnInt(6),
		NumSkipped:         stmt.ColumnInt(7),
		NumMissingOrFailed: stmt.ColumnInt(8),
	}
	record.StartTime, err = time.Parse(timeFormat, stmt.ColumnText(3))
	if err != nil {
		return record, &InvalidRecordError{Id: id, Message: err.Error()}
	}
	record.StopTime, err = time.Parse(timeFormat, stmt.ColumnText(4))
	if err != nil {
		return record, &InvalidRecordError{Id: id, Message: err.Error()}
	}
	return record, nil
}
