package compiler

import (
	"encoding/json"
	"os"
)

// BuildReport is the machine-readable record of one native build,
// written by `compile --json PATH`.
type BuildReport struct {
	SourceFile        string  `json:"source_file"`
	BinaryPath        string  `json:"binary_path"`
	OptimizationLevel string  `json:"optimization_level"`
	BinarySize        int64   `json:"binary_size"`
	CompileTimeMs     int64   `json:"compile_time_ms"`
	OptimizationFlags FlagSet `json:"optimization_flags"`
}

// Marshal renders the report as JSON.
func (r *BuildReport) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteFile writes the report to path.
func (r *BuildReport) WriteFile(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
