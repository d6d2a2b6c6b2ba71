package cmd

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/privacy"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/share"
)

// optionFlags are the rendering options shared by render and link. Explicit
// flags win over values taken from --link.
type optionFlags struct {
	link        string
	privacy     string
	photo       bool
	experience  bool
	attachments bool
	version     string
}

func (f *optionFlags) register(cmd *cobra.Command) {
	d := share.Defaults()
	cmd.Flags().StringVar(&f.link, "link", "", "Share link or query string to start from")
	cmd.Flags().StringVar(&f.privacy, "privacy", string(d.Privacy), "Privacy level: none, personal or full")
	cmd.Flags().BoolVar(&f.photo, "photo", d.ShowPhoto, "Show the photo")
	cmd.Flags().BoolVar(&f.experience, "experience", d.ShowExperience, "Show work experience")
	cmd.Flags().BoolVar(&f.attachments, "attachments", d.ShowAttachments, "Show attachments")
	cmd.Flags().StringVar(&f.version, "version", "", "Variant id to render")
}

// options returns the resolved options. A malformed --link parameter falls
// back to its default and is reported in warnings; the remaining parameters
// still apply. Only an invalid explicit flag is an error.
func (f *optionFlags) options(cmd *cobra.Command) (opts share.Options, warnings []string, err error) {
	query := f.link
	if idx := strings.Index(query, "?"); idx >= 0 {
		query = query[idx+1:]
	}

	var linkErr error
	opts, linkErr = share.ParseQuery(query)
	for _, e := range multierr.Errors(linkErr) {
		warnings = append(warnings, "ignoring --link "+e.Error())
	}

	if cmd.Flags().Changed("privacy") {
		var level privacy.Level
		level, err = privacy.ParseLevel(f.privacy)
		if err != nil {
			err = errors.Wrap(err, "invalid --privacy")
			return opts, warnings, err
		}
		opts.Privacy = level
	}
	if cmd.Flags().Changed("photo") {
		opts.ShowPhoto = f.photo
	}
	if cmd.Flags().Changed("experience") {
		opts.ShowExperience = f.experience
	}
	if cmd.Flags().Changed("attachments") {
		opts.ShowAttachments = f.attachments
	}
	if cmd.Flags().Changed("version") {
		opts.VersionID = f.version
	}

	return opts, warnings, err
}
