package config

const (
	DefaultReadsPath      = "/illumina_reads"
	DefaultReferencesPath = "/references"
)

// policies for sample files that can't be found on the local filesystem
const (
	MissingFilesRecord = "record" // record the file and move on
	MissingFilesAbort  = "abort"  // stop the import
)

// parameters that govern how samples are imported into a library
type importConfig struct {
	// library folder that holds one subfolder of reads per sample
	ReadsPath string `yaml:"reads_path"`
	// library folder reserved for reference files
	ReferencesPath string `yaml:"references_path"`
	// what to do about sample files missing from the local filesystem
	MissingFiles string `yaml:"missing_files"`
	// path to a SQLite database in which each run is journaled (optional)
	Journal string `yaml:"journal,omitempty"`
	// path to a Prometheus textfile to which run metrics are written (optional)
	MetricsFile string `yaml:"metrics_file,omitempty"`
}
