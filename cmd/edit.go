package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/editor"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/versions"
)

//nolint:gochecknoglobals // Cobra boilerplate
var editVariant string

//nolint:gochecknoglobals // Cobra boilerplate
var editNew string

//nolint:gochecknoglobals // Cobra boilerplate
var editSets []string

//nolint:gochecknoglobals // Cobra boilerplate
var editDryRun bool

//nolint:gochecknoglobals // Cobra boilerplate
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit fields of a CV variant",
	Long: `Edit fields of a variant. Each --set takes field=value. Text fields take
the value as is; list fields and the motivation letter take YAML or JSON.
An empty value clears the field in the variant without falling back to the
baseline.

Fields: tagline, profile, slogan, workExperience, skillCategories,
keyAchievements, education, motivationLetter.

Example:
  cv edit --variant 3f2a --set tagline="Platform engineer"
  cv edit --set 'keyAchievements=["Cut costs by 40%", "Led migration"]'
  cv edit --new "Startup pitch" --set slogan="Ship it" --dry-run`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVar(&editVariant, "variant", "", "Variant id to edit (default: the default variant)")
	editCmd.Flags().StringVar(&editNew, "new", "", "Create a new empty variant with this name and edit it")
	editCmd.Flags().StringArrayVar(&editSets, "set", nil, "field=value assignment, repeatable")
	editCmd.Flags().BoolVar(&editDryRun, "dry-run", false, "Show the result without saving")
}

func runEdit(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if editVariant != "" && editNew != "" {
		err = errors.New("--variant and --new are mutually exclusive")
		return err
	}

	partials := make([]content.Overrides, 0, len(editSets))
	for _, expr := range editSets {
		var partial content.Overrides
		partial, err = parseAssignment(expr)
		if err != nil {
			return err
		}
		partials = append(partials, partial)
	}

	var ws *workspace
	ws, err = openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	err = selectForEdit(ctx, ws)
	if err != nil {
		return err
	}

	session := editor.NewSession(ws.dir, ws.data.Content, editor.WithLogger(ws.logger))

	err = session.Start()
	if err != nil {
		return err
	}

	for _, partial := range partials {
		err = session.UpdateField(partial)
		if err != nil {
			return err
		}
	}

	modified := session.ModifiedFields()
	if len(modified) == 0 {
		fmt.Println("No changes.")
		err = session.Cancel()
		return err
	}

	names := make([]string, len(modified))
	for i, f := range modified {
		names[i] = string(f)
	}
	fmt.Printf("Modified: %s\n", strings.Join(names, ", "))

	if editDryRun {
		err = printBundle(session.Resolve())
		if err != nil {
			return err
		}
		err = session.Cancel()
		return err
	}

	err = session.Save(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to save variant")
		return err
	}

	fmt.Printf("✓ Saved variant %s\n", session.VariantID())
	return err
}

// selectForEdit makes the variant to edit active on the directory.
func selectForEdit(ctx context.Context, ws *workspace) (err error) {
	switch {
	case editNew != "":
		var id string
		id, err = ws.dir.Create(ctx, editNew, content.Overrides{}, nil)
		if err != nil {
			err = errors.Wrap(err, "failed to create variant")
			return err
		}
		ws.dir.Select(id)
		fmt.Printf("Created variant %q (%s)\n", editNew, id)

	case editVariant != "":
		var v versions.Variant
		v, err = ws.findVariant(editVariant)
		if err != nil {
			return err
		}
		ws.dir.Select(v.ID)
	}

	if ws.dir.Active() == nil {
		err = errors.New("no variant to edit: pass --variant or --new, or set a default with 'cv versions default'")
		return err
	}
	return err
}

// parseAssignment turns field=value into a single-field partial.
func parseAssignment(expr string) (partial content.Overrides, err error) {
	key, value, ok := strings.Cut(expr, "=")
	if !ok {
		err = errors.Errorf("invalid assignment %q: expected field=value", expr)
		return partial, err
	}

	field := content.Field(strings.TrimSpace(key))
	switch field {
	case content.FieldTagline:
		partial.Tagline = content.String(value)
	case content.FieldProfile:
		partial.Profile = content.String(value)
	case content.FieldSlogan:
		partial.Slogan = content.String(value)
	case content.FieldEducation:
		partial.Education = content.String(value)
	case content.FieldWorkExperience:
		partial.WorkExperience, err = decodeList[content.ExperienceEntry](value)
		if err == nil {
			err = content.ValidateExperience(partial.WorkExperience)
		}
	case content.FieldSkillCategories:
		partial.SkillCategories, err = decodeList[content.SkillCategory](value)
	case content.FieldKeyAchievements:
		partial.KeyAchievements, err = decodeList[string](value)
	case content.FieldMotivationLetter:
		letter := content.MotivationLetter{}
		if strings.TrimSpace(value) != "" {
			err = yaml.Unmarshal([]byte(value), &letter)
		}
		partial.MotivationLetter = &letter
	default:
		err = errors.Errorf("unknown field %q", key)
		return partial, err
	}

	if err != nil {
		err = errors.Wrapf(err, "invalid value for %s", field)
		return partial, err
	}
	return partial, err
}

// decodeList parses a YAML or JSON list. An empty value is a cleared list,
// never nil, so it does not fall back to the baseline.
func decodeList[T any](value string) (list []T, err error) {
	list = []T{}
	if strings.TrimSpace(value) == "" {
		return list, err
	}

	err = yaml.Unmarshal([]byte(value), &list)
	if list == nil {
		list = []T{}
	}
	return list, err
}
