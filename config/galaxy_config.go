package config

// the Galaxy instance into whose data libraries files are imported
type galaxyConfig struct {
	// base URL of the Galaxy instance
	URL string `yaml:"url"`
	// API key of a Galaxy administrator, required for linking files from
	// arbitrary local paths and for setting library permissions
	// DO NOT STORE THIS IN A CONFIG FILE! Use an environment variable instead
	AdminKey string `yaml:"admin_key"`
	// request timeout (seconds)
	Timeout int `yaml:"timeout"`
}
