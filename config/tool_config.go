package config

const DefaultToolId = "irida_import"

// the Galaxy tool descriptor that launches the importer
type toolConfig struct {
	// path to the tool's XML descriptor
	XMLPath string `yaml:"xml_path"`
	// the tool's ID within Galaxy
	ToolId string `yaml:"tool_id"`
}
