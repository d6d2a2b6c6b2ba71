package content

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Load reads the baseline CV data from a YAML or JSON file.
func Load(path string) (data Data, err error) {
	// Read file
	var fileData []byte
	fileData, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read baseline file: %s", path)
		return data, err
	}

	// Parse by extension, YAML being the default
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(fileData, &data)
	default:
		err = yaml.Unmarshal(fileData, &data)
	}
	if err != nil {
		err = errors.Wrapf(err, "failed to parse baseline file: %s", path)
		return data, err
	}

	// Validate data
	err = data.Validate()
	if err != nil {
		err = errors.Wrap(err, "baseline validation failed")
		return data, err
	}

	return data, err
}

// Validate checks that the baseline data is well-formed. The baseline must be
// fully populated since every variant falls back to it.
func (d *Data) Validate() (err error) {
	if d.Person.Name == "" {
		err = errors.New("person name is required")
		return err
	}

	if d.Content.Tagline == "" {
		err = errors.New("content tagline is required")
		return err
	}

	if d.Content.Profile == "" {
		err = errors.New("content profile is required")
		return err
	}

	err = ValidateExperience(d.Content.WorkExperience)
	if err != nil {
		return err
	}

	for i, ref := range d.References {
		if ref.Name == "" {
			err = errors.Errorf("reference at index %d missing name", i)
			return err
		}
	}

	return err
}

// ValidateExperience checks that every entry names its company and role.
func ValidateExperience(entries []ExperienceEntry) (err error) {
	for i, entry := range entries {
		if entry.Company == "" {
			err = errors.Errorf("experience entry at index %d missing company", i)
			return err
		}
		if entry.Role == "" {
			err = errors.Errorf("experience entry %s missing role", entry.Company)
			return err
		}
	}
	return err
}
