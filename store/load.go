package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Session is everything found in a results directory, grouped by
// category. Slices are sorted by filename so report output is stable.
type Session struct {
	System     *SystemInfo
	Versions   *VersionsFile
	Microbench []MicrobenchFile
	HTTP       []HTTPFile
	ColdStart  []ColdStartFile
	Memory     []MemoryFile
}

// Load reads all recognized result files from dir. Unrecognized JSON
// files are skipped, not errors; a directory with no recognized files
// yields an empty session.
func Load(dir string) (*Session, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read results dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)

	session := &Session{}

	for _, name := range names {
		path := filepath.Join(dir, name)

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		switch {
		case name == "system_info.json":
			var info SystemInfo
			if err := json.Unmarshal(data, &info); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}

			session.System = &info

		case name == "versions.json":
			var f VersionsFile
			if err := json.Unmarshal(data, &f); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}

			session.Versions = &f

		case strings.HasPrefix(name, "microbench_"):
			var f MicrobenchFile
			if err := json.Unmarshal(data, &f); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}

			session.Microbench = append(session.Microbench, f)

		case strings.HasPrefix(name, "http_"):
			var f HTTPFile
			if err := json.Unmarshal(data, &f); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}

			session.HTTP = append(session.HTTP, f)

		case strings.HasPrefix(name, "coldstart_"):
			var f ColdStartFile
			if err := json.Unmarshal(data, &f); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}

			session.ColdStart = append(session.ColdStart, f)

		case strings.HasPrefix(name, "memory_"):
			var f MemoryFile
			if err := json.Unmarshal(data, &f); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}

			session.Memory = append(session.Memory, f)
		}
	}

	return session, nil
}
