package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/subcommands"

	"github.com/phac-nml/irida-galaxy-import/config"
	"github.com/phac-nml/irida-galaxy-import/core"
	"github.com/phac-nml/irida-galaxy-import/manifest"
	"github.com/phac-nml/irida-galaxy-import/tooldesc"
)

const defaultConfigFile = "irida_import.yaml"

// reads the configuration file and initializes the importer's configuration
func initConfig(configFile string) error {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("Couldn't read configuration from %s: %w", configFile, err)
	}
	err = core.Init(b)
	if err != nil {
		return fmt.Errorf("Couldn't initialize the configuration: %w", err)
	}
	return nil
}

// import subcommand
type importCmd struct {
	configFile string
	paramFile  string
	logFile    string
	token      string
}

const importUsage = "irida-import import [-config=irida_import.yaml] [-log_file=log_irida_import] [-token=T] -json_parameter_file=<params.json>\n"

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "Import IRIDA sample files into a Galaxy library" }
func (*importCmd) Usage() string    { return importUsage }
func (p *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.configFile, "config", defaultConfigFile, "importer configuration file")
	f.StringVar(&p.paramFile, "json_parameter_file", "", "JSON parameter file written by Galaxy, holding the IRIDA manifest")
	f.StringVar(&p.paramFile, "p", "", "An alias for json_parameter_file")
	f.StringVar(&p.logFile, "log_file", "log_irida_import", "file receiving detailed log output")
	f.StringVar(&p.token, "token", "", "pre-issued IRIDA access token (bypasses the OAuth2 code exchange)")
}

func (p *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.paramFile == "" {
		fmt.Fprint(os.Stderr, importUsage)
		return subcommands.ExitUsageError
	}
	logFile, err := setupLogging(p.logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Couldn't open log file: %s\n", err)
		return subcommands.ExitFailure
	}
	defer logFile.Close()
	slog.Info(fmt.Sprintf("irida-import %s: logging detailed output to %s", core.Version, p.logFile))

	err = initConfig(p.configFile)
	if err != nil {
		slog.Error(err.Error())
		return subcommands.ExitFailure
	}
	m, err := manifest.ReadParameterFile(p.paramFile)
	if err != nil {
		slog.Error(err.Error())
		return subcommands.ExitFailure
	}
	importer, err := core.NewImporter(p.token)
	if err != nil {
		slog.Error(err.Error())
		return subcommands.ExitFailure
	}

	rc, runErr := importer.Run(ctx, m)
	err = core.Record(rc)
	if err != nil {
		slog.Error(fmt.Sprintf("Couldn't record import %s: %s", rc.Id.String(), err.Error()))
	}
	if runErr != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// configure subcommand
type configureCmd struct {
	configFile string
	xmlFile    string
}

const configureUsage = "irida-import configure [-config=irida_import.yaml] [-xml=irida_import.xml]\n"

func (*configureCmd) Name() string { return "configure" }
func (*configureCmd) Synopsis() string {
	return "Point the Galaxy tool descriptor at the configured IRIDA and Galaxy servers"
}
func (*configureCmd) Usage() string { return configureUsage }
func (p *configureCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.configFile, "config", defaultConfigFile, "importer configuration file")
	f.StringVar(&p.xmlFile, "xml", "", "tool descriptor to patch (default: tool.xml_path from the configuration)")
}

func (p *configureCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	err := initConfig(p.configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	xmlFile := p.xmlFile
	if xmlFile == "" {
		xmlFile = config.Tool.XMLPath
	}
	if xmlFile == "" {
		fmt.Fprint(os.Stderr, "No tool descriptor given (use -xml or set tool.xml_path)\n")
		return subcommands.ExitUsageError
	}
	err = tooldesc.PatchFile(xmlFile, tooldesc.SettingsFromConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// get the version
type versionCmd struct {
}

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "get the version" }
func (*versionCmd) Usage() string            { return "get the irida-import version\n" }
func (p *versionCmd) SetFlags(f *flag.FlagSet) {}
func (p *versionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println(core.Version)
	return subcommands.ExitSuccess
}

// The CLI is a thin wrapper around the core package
func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&importCmd{}, "")
	subcommands.Register(&configureCmd{}, "")
	subcommands.Register(&versionCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
