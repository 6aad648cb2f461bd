package config

// the OAuth2 client registered with IRIDA for Galaxy
const DefaultClientId = "webClient"

// IRIDA, the registry that holds sample and sample file metadata
type registryConfig struct {
	// base URL of the IRIDA instance
	URL string `yaml:"url"`
	// OAuth2 token endpoint (default: <url>/api/oauth/token)
	TokenEndpoint string `yaml:"token_endpoint"`
	// the OAuth2 client ID registered for Galaxy
	ClientId string `yaml:"client_id"`
	// the client secret used to exchange authorization codes for tokens
	// DO NOT STORE THIS IN A CONFIG FILE! Use an environment variable instead
	ClientSecret string `yaml:"client_secret"`
	// path to a fernet-encrypted file holding a pre-issued access token
	TokenFile string `yaml:"token_file,omitempty"`
	// fernet key used to decrypt the token file (use an environment variable)
	TokenKey string `yaml:"token_key,omitempty"`
	// request timeout (seconds)
	Timeout int `yaml:"timeout"`
}
