package generator

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nkoval/virtualcampus/backend/internal/store"
)

// WriteDataset serializes the dataset to a YAML file the store can load.
func WriteDataset(dataset store.Dataset, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(dataset); err != nil {
		return fmt.Errorf("encode yaml for %s: %w", path, err)
	}
	return encoder.Close()
}
