package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// global config variables
var Registry registryConfig
var Galaxy galaxyConfig
var Import importConfig
var Tool toolConfig

// This struct performs the unmarshalling from the YAML config file and then
// copies its fields to the globals above.
type configFile struct {
	Registry registryConfig `yaml:"registry"`
	Galaxy   galaxyConfig   `yaml:"galaxy"`
	Import   importConfig   `yaml:"import"`
	Tool     toolConfig     `yaml:"tool"`
}

// This helper reads configuration data, returning an error indicating success
// or failure. All environment variables of the form ${ENV_VAR} are expanded.
func readConfig(bytes []byte) error {
	// Before we do anything else, expand any provided environment variables.
	bytes = []byte(os.ExpandEnv(string(bytes)))

	var conf configFile
	conf.Registry.ClientId = DefaultClientId
	conf.Registry.Timeout = 30
	conf.Galaxy.Timeout = 60
	conf.Import.ReadsPath = DefaultReadsPath
	conf.Import.ReferencesPath = DefaultReferencesPath
	conf.Import.MissingFiles = MissingFilesRecord
	conf.Tool.ToolId = DefaultToolId
	err := yaml.Unmarshal(bytes, &conf)
	if err != nil {
		slog.Error(fmt.Sprintf("Couldn't parse configuration data: %s", err))
		return err
	}

	// the token endpoint lives on the registry unless told otherwise
	if conf.Registry.TokenEndpoint == "" && conf.Registry.URL != "" {
		conf.Registry.TokenEndpoint = strings.TrimSuffix(conf.Registry.URL, "/") +
			"/api/oauth/token"
	}

	// copy the config data into place
	Registry = conf.Registry
	Galaxy = conf.Galaxy
	Import = conf.Import
	Tool = conf.Tool

	return err
}

// returns an error if the given string isn't an absolute http(s) URL
func validateURL(name, value string) error {
	if value == "" {
		return fmt.Errorf("No %s URL was provided!", name)
	}
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("Invalid %s URL '%s': %s", name, value, err.Error())
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("Invalid %s URL '%s' (must be http or https)", name, value)
	}
	return nil
}

// This helper validates the given registry parameters.
func validateRegistryParameters(params registryConfig) error {
	if err := validateURL("registry", params.URL); err != nil {
		return err
	}
	if err := validateURL("registry token endpoint", params.TokenEndpoint); err != nil {
		return err
	}
	if params.ClientId == "" {
		return fmt.Errorf("No registry client_id was provided!")
	}
	if params.Timeout <= 0 {
		return fmt.Errorf("Invalid registry timeout: %d (must be positive)", params.Timeout)
	}
	return nil
}

// This helper validates the given Galaxy parameters.
func validateGalaxyParameters(params galaxyConfig) error {
	if err := validateURL("galaxy", params.URL); err != nil {
		return err
	}
	if params.AdminKey == "" {
		return fmt.Errorf("No Galaxy admin_key was provided!")
	}
	if params.Timeout <= 0 {
		return fmt.Errorf("Invalid Galaxy timeout: %d (must be positive)", params.Timeout)
	}
	return nil
}

// This helper validates the given import parameters.
func validateImportParameters(params importConfig) error {
	for _, folder := range []string{params.ReadsPath, params.ReferencesPath} {
		if !strings.HasPrefix(folder, "/") || folder == "/" {
			return fmt.Errorf("Invalid library folder path '%s' (must be absolute)", folder)
		}
		if path.Clean(folder) != folder {
			return fmt.Errorf("Invalid library folder path '%s' (must be clean)", folder)
		}
	}
	if params.ReadsPath == params.ReferencesPath {
		return fmt.Errorf("The reads and references folders must differ (both are '%s')",
			params.ReadsPath)
	}
	switch params.MissingFiles {
	case MissingFilesRecord, MissingFilesAbort:
	default:
		return fmt.Errorf("Invalid missing_files policy: '%s' (must be '%s' or '%s')",
			params.MissingFiles, MissingFilesRecord, MissingFilesAbort)
	}
	return nil
}

// This helper validates the configuration, returning an error that indicates
// success or failure.
func validateConfig() error {
	err := validateRegistryParameters(Registry)
	if err != nil {
		return err
	}
	err = validateGalaxyParameters(Galaxy)
	if err != nil {
		return err
	}
	return validateImportParameters(Import)
}

// Initializes the importer configuration using the given YAML byte data.
func Init(yamlData []byte) error {

	// Read the configuration from our YAML file.
	err := readConfig(yamlData)
	if err != nil {
		return err
	}

	// Validate the configuration.
	err = validateConfig()
	return err
}
