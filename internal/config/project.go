package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Project is the optional per-repository settings file, `.ruchy.yml`.
// The CLI's REPL reads it for the session file; the compiler driver
// and the module loader do not read it.
type Project struct {
	Name        string            `yaml:"name"`
	EntryPoint  string            `yaml:"entry_point"`
	Optimize    string            `yaml:"optimize"`
	VMMode      string            `yaml:"vm_mode"`
	SessionFile string            `yaml:"session_file"`
	Env         map[string]string `yaml:"env"`
}

// LoadProject reads a `.ruchy.yml` file. A missing file is not an error;
// it simply yields a zero-value Project so callers can apply defaults.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Project{}, nil
		}
		return nil, err
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
