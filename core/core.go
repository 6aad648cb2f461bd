// Package core wires the importer's components together from the
// configuration.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phac-nml/irida-galaxy-import/auth"
	"github.com/phac-nml/irida-galaxy-import/config"
	"github.com/phac-nml/irida-galaxy-import/galaxy/api"
	"github.com/phac-nml/irida-galaxy-import/journal"
	"github.com/phac-nml/irida-galaxy-import/manifest"
	"github.com/phac-nml/irida-galaxy-import/metrics"
	"github.com/phac-nml/irida-galaxy-import/registry"
	"github.com/phac-nml/irida-galaxy-import/transfers"
)

// Version numbers
var MajorVersion = 2
var MinorVersion = 0
var PatchVersion = 0

// Version string
var Version = fmt.Sprintf("%d.%d.%d", MajorVersion, MinorVersion, PatchVersion)

// Indicates whether core.Init() has been called
var initialized = false

// The time the application started.
var startTime time.Time

// Initializes application utilities.
func Init(yamlConfig []byte) error {

	if !initialized {
		startTime = time.Now()
		initialized = true
	}
	return config.Init(yamlConfig)
}

// Returns the application's uptime in seconds.
func Uptime() float64 {
	return time.Since(startTime).Seconds()
}

// Creates an importer that populates libraries on the configured Galaxy
// server with files resolved against the configured registry. If accessToken
// is non-empty, it is used for the registry session in place of the OAuth2
// parameters in the launch manifest.
func NewImporter(accessToken string) (*transfers.Importer, error) {
	if !initialized {
		return nil, errors.New("core.Init() must be called before creating an importer")
	}
	client, err := api.NewClient(config.Galaxy.URL, config.Galaxy.AdminKey,
		time.Duration(config.Galaxy.Timeout)*time.Second)
	if err != nil {
		return nil, err
	}
	return transfers.NewImporter(client, client, RegistrySession(accessToken)), nil
}

// Returns a function that establishes a registry session, using the given
// access token if it's non-empty.
func RegistrySession(accessToken string) transfers.SessionFunc {
	return func(ctx context.Context, params manifest.OAuth2) (registry.Session, error) {
		httpClient, source, err := auth.NewRegistryClient(ctx, auth.OAuth2Parameters{
			Redirect: params.Redirect,
			Code:     params.Code,
		}, accessToken)
		if err != nil {
			return nil, err
		}
		slog.Info(fmt.Sprintf("Connected to IRIDA at %s (token from %s)", config.Registry.URL, source))
		return registry.NewClient(httpClient), nil
	}
}

// Records the given finished import in the journal and the metrics textfile,
// for whichever of these is configured.
func Record(rc *transfers.RunContext) error {
	if config.Import.Journal != "" {
		err := recordInJournal(rc)
		if err != nil {
			return err
		}
	}
	if config.Import.MetricsFile != "" {
		m := metrics.New()
		m.Observe(rc)
		err := m.WriteTextfile(config.Import.MetricsFile)
		if err != nil {
			return err
		}
	}
	return nil
}

func recordInJournal(rc *transfers.RunContext) error {
	err := journal.Init(config.Import.Journal)
	if err != nil {
		return err
	}
	defer journal.Finalize()

	record, err := journal.NewRecord(rc)
	if err != nil {
		return err
	}
	err = journal.RecordRun(record)
	if err != nil {
		return err
	}
	slog.Debug(fmt.Sprintf("Journaled import %s (%s)", rc.Id.String(), record.Status))
	return nil
}
