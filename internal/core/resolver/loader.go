package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// familyFile is the on-disk YAML shape: one family and the services it serves.
type familyFile struct {
	Family   string   `yaml:"family"`
	Services []string `yaml:"services"`
}

// LoadMapping reads *.yaml / *.yml files from dir and layers them over DefaultMapping.
// A missing directory yields the defaults. A service listed in two files, or a file
// naming an unknown family, is an error.
func LoadMapping(dir string) (map[string]string, error) {
	mapping := DefaultMapping()
	if dir == "" {
		return mapping, nil
	}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return mapping, nil
	}
	if err != nil {
		return nil, fmt.Errorf("strategy dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("strategy path %q is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading strategy dir: %w", err)
	}

	fromFile := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading strategy file %s: %w", path, err)
		}

		var raw familyFile
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing strategy file %s: %w", path, err)
		}
		if raw.Family == "" && len(raw.Services) == 0 {
			continue // empty / comment-only file
		}
		if !ValidFamily(raw.Family) {
			return nil, fmt.Errorf("strategy file %s: unknown family %q", path, raw.Family)
		}

		for _, svc := range raw.Services {
			if svc == "" {
				return nil, fmt.Errorf("strategy file %s: empty service name", path)
			}
			if prev, dup := fromFile[svc]; dup {
				return nil, fmt.Errorf("service %q assigned twice (%s and %s)", svc, prev, raw.Family)
			}
			fromFile[svc] = raw.Family
		}
	}

	for svc, fam := range fromFile {
		mapping[svc] = fam
	}
	return mapping, nil
}
