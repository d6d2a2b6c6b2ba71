package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/share"
)

//nolint:gochecknoglobals // Cobra boilerplate
var linkFlags optionFlags

//nolint:gochecknoglobals // Cobra boilerplate
var linkBaseURL string

//nolint:gochecknoglobals // Cobra boilerplate
var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Print a share link for a rendering configuration",
	Long: `Print a share link that reproduces the given options. Options left at
their defaults are omitted from the link.

Example:
  cv link --privacy personal --version 3f2a...
  cv link --base-url https://cv.example.com --photo=false`,
	Args: cobra.NoArgs,
	RunE: runLink,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(linkCmd)
	linkFlags.register(linkCmd)
	linkCmd.Flags().StringVar(&linkBaseURL, "base-url", "", "URL to prefix the query with")
}

func runLink(cmd *cobra.Command, args []string) (err error) {
	var opts share.Options
	var warnings []string
	opts, warnings, err = linkFlags.options(cmd)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	query := opts.String()
	switch {
	case linkBaseURL == "":
		fmt.Println("?" + query)
	case query == "":
		fmt.Println(linkBaseURL)
	default:
		fmt.Println(strings.TrimSuffix(linkBaseURL, "?") + "?" + query)
	}

	return err
}
