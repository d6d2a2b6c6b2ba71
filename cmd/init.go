package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/config"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file and a sample baseline CV",
	Long: `Create a default config file and, next to it, a sample baseline CV in
YAML. Edit both before rendering: the access token in particular must be
changed from its placeholder.

Example:
  cv init
  cv init --config ./cv/config.json`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	path := getConfigFile()
	if path == "" {
		var dir string
		dir, err = config.DefaultDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.json")
	}

	err = config.InitConfig(path)
	if err != nil {
		return err
	}
	fmt.Printf("Config written to: %s\n", path)

	baselinePath := filepath.Join(filepath.Dir(path), "cv.yaml")
	_, err = os.Stat(baselinePath)
	if err == nil {
		fmt.Printf("Keeping existing baseline: %s\n", baselinePath)
		return nil
	}

	err = writeSampleBaseline(baselinePath)
	if err != nil {
		return err
	}
	fmt.Printf("Sample baseline written to: %s\n", baselinePath)

	return err
}

func writeSampleBaseline(path string) (err error) {
	sample := content.Data{
		Person: content.Person{
			Name:     "Your Name",
			Title:    "Software Engineer",
			Email:    "you@example.com",
			Location: "City, Country",
			Website:  "https://example.com",
		},
		Languages: []content.Language{{Name: "English", Level: "Native"}},
		Content: content.Bundle{
			Tagline: "One line about what you do",
			Profile: "A short paragraph about your experience and focus.",
			WorkExperience: []content.ExperienceEntry{
				{
					Company:      "Example Corp",
					Role:         "Software Engineer",
					Period:       "2020 - present",
					Description:  "What the team did.",
					Achievements: []string{"Something you shipped"},
				},
			},
			SkillCategories: []content.SkillCategory{{Category: "Languages", Skills: []string{"Go"}}},
			KeyAchievements: []string{"Your best result"},
			Education:       "Your degree",
		},
	}

	var data []byte
	data, err = yaml.Marshal(sample)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal sample baseline")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write sample baseline: %s", path)
		return err
	}

	return err
}
