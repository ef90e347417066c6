package sheetsync

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configFile is the on-disk shape: a list of sheet configurations plus the
// path of the process-wide default service-account JSON, used by
// configurations that carry no credentials path of their own.
type configFile struct {
	DefaultCredentials string        `yaml:"default_credentials"`
	Configs            []configEntry `yaml:"configs"`
}

// configEntry wraps Config so an absent pull_role_filter key defaults to
// filtering, matching the role-gated pull variant.
type configEntry struct {
	Config         `yaml:",inline"`
	PullRoleFilter *bool `yaml:"pull_role_filter"`
}

// LoadConfigs loads sheet configurations from a YAML file. Configurations
// without explicit credentials inherit the file's default credentials; a
// configuration left without any is still returned and will construct an
// inert engine.
func LoadConfigs(configPath string) ([]Config, error) {
	filename, err := filepath.Abs(configPath)
	if err != nil {
		return nil, err
	}

	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var file configFile
	if err = yaml.Unmarshal(yamlFile, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	var configs []Config
	for _, entry := range file.Configs {
		var c = entry.Config
		c.PullRoleFilter = entry.PullRoleFilter == nil || *entry.PullRoleFilter
		if c.Credentials == "" {
			c.Credentials = file.DefaultCredentials
		}
		if c.SheetTitle == "" {
			c.SheetTitle = "Sheet1"
		}
		if c.Interval == "" {
			c.Interval = IntervalHourly
		}
		if c.Name == "" {
			c.Name = c.SpreadsheetID
		}
		configs = append(configs, c)
	}
	return configs, nil
}
