package constants

import "os"

const (
	DataHomeEnv = "BEATDEX_DATA_HOME"
	DatasetEnv  = "BEATDEX_DATASET"
	AddrEnv     = "BEATDEX_ADDR"

	DefaultConfigFile = "beatdex.yaml"
	DefaultDataHome   = "./mir_datasets/RWC-Classical"
	DefaultDataset    = "RWC-Classical"
	DefaultAddr       = ":8080"
)

// GetDataHome returns $BEATDEX_DATA_HOME, or fallback when it is unset.
func GetDataHome(fallback string) string {
	path := os.Getenv(DataHomeEnv)
	if path != "" {
		return path
	}
	return fallback
}
