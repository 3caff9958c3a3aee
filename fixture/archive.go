package fixture

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/txtar"
)

// ParseArchive reads a txtar archive in which every file is a fixture. Cases
// run under the name of the file that holds them, so stage globs apply.
func ParseArchive(data []byte) []Case {
	ar := txtar.Parse(data)
	var cases []Case
	for _, f := range ar.Files {
		cases = append(cases, parse(string(f.Data), f.Name)...)
	}
	return cases
}

// Load reads a fixture file. Files ending in .txtar are read as archives.
func Load(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	if filepath.Ext(path) == ".txtar" {
		return ParseArchive(data), nil
	}
	return parse(string(data), DefaultFilename), nil
}
