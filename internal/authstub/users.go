package authstub

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UserFile is the on-disk user table.
//
//	users:
//	  alice: secret
//	  bob: hunter2
type UserFile struct {
	Users map[string]string `yaml:"users"`
}

// LoadUsers reads a YAML user table.
func LoadUsers(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read user file: %w", err)
	}

	var uf UserFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return nil, fmt.Errorf("parse user file %s: %w", path, err)
	}
	if len(uf.Users) == 0 {
		return nil, fmt.Errorf("user file %s defines no users", path)
	}
	return uf.Users, nil
}
