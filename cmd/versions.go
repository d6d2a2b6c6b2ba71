package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/scorer"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/versions"
)

//nolint:gochecknoglobals // Cobra boilerplate
var versionsCmd = &cobra.Command{
	Use:     "versions",
	Aliases: []string{"variants"},
	Short:   "List and manage CV variants",
}

//nolint:gochecknoglobals // Cobra boilerplate
var versionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List variants, newest last",
	Args:  cobra.NoArgs,
	RunE:  runVersionsList,
}

//nolint:gochecknoglobals // Cobra boilerplate
var versionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a variant's overrides and how it differs from the baseline",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsShow,
}

//nolint:gochecknoglobals // Cobra boilerplate
var versionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a variant",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsDelete,
}

//nolint:gochecknoglobals // Cobra boilerplate
var versionsDefaultCmd = &cobra.Command{
	Use:   "default <id>",
	Short: "Make a variant the default",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsDefault,
}

//nolint:gochecknoglobals // Cobra boilerplate
var versionsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a variant",
	Args:  cobra.ExactArgs(2),
	RunE:  runVersionsRename,
}

//nolint:gochecknoglobals // Cobra boilerplate
var versionsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the variant list whenever it changes",
	Long: `Print the variant list whenever it changes, including changes made by
other cv processes sharing the same database. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runVersionsWatch,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(versionsCmd)
	versionsCmd.AddCommand(versionsListCmd, versionsShowCmd, versionsDeleteCmd, versionsDefaultCmd, versionsRenameCmd, versionsWatchCmd)
}

func runVersionsList(cmd *cobra.Command, args []string) (err error) {
	var ws *workspace
	ws, err = openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	printVariants(ws.dir.Variants())
	return err
}

func printVariants(variants []versions.Variant) {
	if len(variants) == 0 {
		fmt.Println("No variants yet. Create one with 'cv generate' or 'cv edit'.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDEFAULT\tCREATED")
	for _, v := range variants {
		def := ""
		if v.IsDefault {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.ID, v.Name, def, v.CreatedAt.Local().Format(time.DateTime))
	}
	_ = w.Flush()
}

// variantView is what 'versions show' prints.
type variantView struct {
	ID        string               `yaml:"id"`
	Name      string               `yaml:"name"`
	IsDefault bool                 `yaml:"default"`
	Created   string               `yaml:"created"`
	Job       *versions.JobContext `yaml:"job,omitempty"`
	Modified  []content.Field      `yaml:"modified"`
	Score     int                  `yaml:"fabrication_score"`
	Issues    []scorer.Violation   `yaml:"issues,omitempty"`
	Content   content.Bundle       `yaml:"content"`
}

func runVersionsShow(cmd *cobra.Command, args []string) (err error) {
	var ws *workspace
	ws, err = openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	var v versions.Variant
	v, err = ws.findVariant(args[0])
	if err != nil {
		return err
	}

	resolver := content.Resolver{Baseline: ws.data.Content, Active: &v.Content}
	resolved := resolver.Resolve()
	report := scorer.NewScorer(ws.data.Content).Audit(resolved)

	view := variantView{
		ID:        v.ID,
		Name:      v.Name,
		IsDefault: v.IsDefault,
		Created:   v.CreatedAt.Local().Format(time.DateTime),
		Job:       v.JobContext,
		Modified:  modifiedAgainstBaseline(ws.data.Content, v.Content),
		Score:     report.Score,
		Issues:    report.Violations,
		Content:   resolved,
	}
	if view.Job != nil {
		job := *view.Job
		job.PostingText = ""
		view.Job = &job
	}

	var out []byte
	out, err = yaml.Marshal(view)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal variant")
		return err
	}
	fmt.Print(string(out))

	return err
}

// modifiedAgainstBaseline lists the fields whose resolved value differs from
// the baseline. The overrides are treated as an edit on top of the baseline.
func modifiedAgainstBaseline(baseline content.Bundle, o content.Overrides) (fields []content.Field) {
	fields = content.Resolver{Baseline: baseline, Edit: &o}.ModifiedFields()
	return fields
}

func runVersionsDelete(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var ws *workspace
	ws, err = openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	var v versions.Variant
	v, err = ws.findVariant(args[0])
	if err != nil {
		return err
	}

	err = ws.dir.Delete(ctx, v.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Deleted variant %q (%s)\n", v.Name, v.ID)
	return err
}

func runVersionsDefault(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var ws *workspace
	ws, err = openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	var v versions.Variant
	v, err = ws.findVariant(args[0])
	if err != nil {
		return err
	}

	err = ws.dir.SetDefault(ctx, v.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Variant %q (%s) is now the default\n", v.Name, v.ID)
	return err
}

func runVersionsRename(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var ws *workspace
	ws, err = openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	var v versions.Variant
	v, err = ws.findVariant(args[0])
	if err != nil {
		return err
	}

	name := args[1]
	err = ws.dir.Update(ctx, v.ID, versions.Patch{Name: &name})
	if err != nil {
		return err
	}

	fmt.Printf("Renamed variant %s to %q\n", v.ID, name)
	return err
}

func runVersionsWatch(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ws *workspace
	ws, err = openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	// Watch is a no-op when store.watch already enabled it
	if s, ok := ws.store.(*versions.SQLiteStore); ok {
		err = s.Watch()
		if err != nil {
			err = errors.Wrap(err, "failed to watch variant database")
			return err
		}
	}

	for snapshot := range versions.Watch(ctx, ws.store) {
		fmt.Printf("--- %s\n", time.Now().Format(time.TimeOnly))
		printVariants(snapshot)
	}

	return err
}
