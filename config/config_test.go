package config

// These tests verify that we can properly configure the importer with YAML
// input.
import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// a valid registry config entry
const VALID_REGISTRY string = `
registry:
  url: http://localhost:8080
  client_secret: ${IRIDA_TEST_CLIENT_SECRET}
`

// a valid galaxy config entry
const VALID_GALAXY string = `
galaxy:
  url: http://localhost:8888/
  admin_key: ${GALAXY_TEST_ADMIN_KEY}
`

// a valid import config entry
const VALID_IMPORT string = `
import:
  reads_path: /illumina_reads
  references_path: /references
  missing_files: abort
`

// tests whether config.Init reports an error for blank input
func TestInitRejectsBlankInput(t *testing.T) {
	b := []byte("")
	err := Init(b)
	assert.NotNil(t, err, "Blank config didn't trigger an error.")
}

// tests whether config.Init reports an error for malformed YAML
func TestInitRejectsMalformedInput(t *testing.T) {
	b := []byte("registry: [url: nope")
	err := Init(b)
	assert.NotNil(t, err, "Malformed config didn't trigger an error.")
}

// tests whether config.Init rejects a configuration with no Galaxy section
func TestInitRejectsNoGalaxy(t *testing.T) {
	b := []byte(VALID_REGISTRY)
	err := Init(b)
	assert.NotNil(t, err, "Config with no Galaxy didn't trigger an error.")
}

// tests whether config.Init rejects a configuration with no registry section
func TestInitRejectsNoRegistry(t *testing.T) {
	b := []byte(VALID_GALAXY)
	err := Init(b)
	assert.NotNil(t, err, "Config with no registry didn't trigger an error.")
}

// tests whether config.Init rejects non-HTTP URLs
func TestInitRejectsBadURLs(t *testing.T) {
	yaml := "registry:\n  url: ftp://irida.example.com\n" + VALID_GALAXY
	err := Init([]byte(yaml))
	assert.NotNil(t, err, "Config with bad registry URL didn't trigger an error.")

	yaml = VALID_REGISTRY + "galaxy:\n  url: hahahahahaha\n  admin_key: abc\n"
	err = Init([]byte(yaml))
	assert.NotNil(t, err, "Config with bad Galaxy URL didn't trigger an error.")
}

// tests whether config.Init rejects a Galaxy without an admin key
func TestInitRejectsMissingAdminKey(t *testing.T) {
	yaml := VALID_REGISTRY + "galaxy:\n  url: http://localhost:8888\n"
	err := Init([]byte(yaml))
	assert.NotNil(t, err, "Config with no admin key didn't trigger an error.")
}

// tests whether config.Init rejects bad timeouts
func TestInitRejectsBadTimeouts(t *testing.T) {
	yaml := VALID_REGISTRY + VALID_GALAXY + "  timeout: 0\n"
	err := Init([]byte(yaml))
	assert.NotNil(t, err, "Config with zero Galaxy timeout didn't trigger an error.")
}

// tests whether config.Init rejects relative or duplicate folder paths
func TestInitRejectsBadFolders(t *testing.T) {
	yaml := VALID_REGISTRY + VALID_GALAXY + "import:\n  reads_path: illumina_reads\n"
	err := Init([]byte(yaml))
	assert.NotNil(t, err, "Config with relative reads path didn't trigger an error.")

	yaml = VALID_REGISTRY + VALID_GALAXY + "import:\n  reads_path: /references\n"
	err = Init([]byte(yaml))
	assert.NotNil(t, err, "Config with duplicate folders didn't trigger an error.")

	yaml = VALID_REGISTRY + VALID_GALAXY + "import:\n  reads_path: /reads/\n"
	err = Init([]byte(yaml))
	assert.NotNil(t, err, "Config with unclean reads path didn't trigger an error.")
}

// tests whether config.Init rejects an unknown missing file policy
func TestInitRejectsBadMissingFilesPolicy(t *testing.T) {
	yaml := VALID_REGISTRY + VALID_GALAXY + "import:\n  missing_files: shrug\n"
	err := Init([]byte(yaml))
	assert.NotNil(t, err, "Config with bad missing_files policy didn't trigger an error.")
}

// Tests whether config.Init returns no error for a configuration that is
// (ostensibly) valid.
func TestInitAcceptsValidInput(t *testing.T) {
	yaml := VALID_REGISTRY + VALID_GALAXY + VALID_IMPORT
	b := []byte(yaml)
	err := Init(b)
	assert.Nil(t, err, fmt.Sprintf("Valid YAML input produced an error: %s", err))
}

// Tests whether config.Init properly initializes its globals for valid input.
func TestInitProperlySetsGlobals(t *testing.T) {
	assert := assert.New(t)
	yaml := VALID_REGISTRY + VALID_GALAXY + VALID_IMPORT
	b := []byte(yaml)
	err := Init(b)
	assert.Nil(err, fmt.Sprintf("Valid YAML input produced an error: %s", err))

	assert.Equal("http://localhost:8080", Registry.URL)
	assert.Equal("http://localhost:8080/api/oauth/token", Registry.TokenEndpoint)
	assert.Equal(DefaultClientId, Registry.ClientId)
	assert.Equal("webClientSecret", Registry.ClientSecret)
	assert.Equal(30, Registry.Timeout)
	assert.Equal("http://localhost:8888/", Galaxy.URL)
	assert.Equal("09008eb345c9d5a166b0d8f301b1e72c", Galaxy.AdminKey)
	assert.Equal(60, Galaxy.Timeout)
	assert.Equal("/illumina_reads", Import.ReadsPath)
	assert.Equal("/references", Import.ReferencesPath)
	assert.Equal(MissingFilesAbort, Import.MissingFiles)
	assert.Equal(DefaultToolId, Tool.ToolId)
}

// Tests whether defaults are applied to omitted import parameters.
func TestInitAppliesDefaults(t *testing.T) {
	assert := assert.New(t)
	err := Init([]byte(VALID_REGISTRY + VALID_GALAXY))
	assert.Nil(err)
	assert.Equal(DefaultReadsPath, Import.ReadsPath)
	assert.Equal(DefaultReferencesPath, Import.ReferencesPath)
	assert.Equal(MissingFilesRecord, Import.MissingFiles)
	assert.Equal("", Import.Journal)
}

// this function gets called at the begіnning of a test session
func setup() {
	os.Setenv("IRIDA_TEST_CLIENT_SECRET", "webClientSecret")
	os.Setenv("GALAXY_TEST_ADMIN_KEY", "09008eb345c9d5a166b0d8f301b1e72c")
}

// this function gets called after all tests have been run
func breakdown() {
}

// This runs setup, runs all tests, and does breakdown.
func TestMain(m *testing.M) {
	var status int
	setup()
	status = m.Run()
	breakdown()
	os.Exit(status)
}
