package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/heicready/heicready/pkg/atomicio"
)

// Load reads and decodes a JSON configuration file at path. Fields absent
// from the file retain their spec.md §6 defaults. A missing file is treated
// as an entirely-default configuration, mirroring the external loader's
// first-run behavior.
func Load(path string) (Config, error) {
	result := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return Config{}, errors.Wrap(err, "unable to read configuration file")
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return Config{}, errors.Wrap(err, "unable to parse configuration file")
	}

	return result, nil
}

// Save encodes c as JSON and writes it atomically to path.
func Save(path string, c Config) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "unable to encode configuration")
	}
	return atomicio.WriteAtomic(path, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}
