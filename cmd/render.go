package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/document"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/layout"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/renderer"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/share"
)

//nolint:gochecknoglobals // Cobra boilerplate
var renderFlags optionFlags

//nolint:gochecknoglobals // Cobra boilerplate
var renderOutputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var renderPDF bool

//nolint:gochecknoglobals // Cobra boilerplate
var renderKeepMarkdown bool

//nolint:gochecknoglobals // Cobra boilerplate
var renderStdout bool

//nolint:gochecknoglobals // Cobra boilerplate
var renderLayoutFile string

//nolint:gochecknoglobals // Cobra boilerplate
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the CV as markdown or PDF",
	Long: `Render the CV: the baseline, the default variant, or the variant named by
--version or a share link.

Contact details are shown according to --privacy, but only to an operator
whose CV_ACCESS_TOKEN matches a token in the config. Without one, the CV is
rendered with privacy 'none' whatever was requested.

Example:
  cv render
  cv render --version 3f2a --privacy personal --pdf
  cv render --link 'https://cv.example.com/?privacy=full&photo=false' --stdout`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(renderCmd)
	renderFlags.register(renderCmd)
	renderCmd.Flags().StringVar(&renderOutputDir, "output-dir", "", "Output directory (default from config)")
	renderCmd.Flags().BoolVar(&renderPDF, "pdf", false, "Also render a PDF with pandoc")
	renderCmd.Flags().BoolVar(&renderKeepMarkdown, "keep-markdown", true, "Keep markdown files after PDF generation")
	renderCmd.Flags().BoolVar(&renderStdout, "stdout", false, "Print markdown to stdout instead of writing files")
	renderCmd.Flags().StringVar(&renderLayoutFile, "layout", "", "JSON file with page templates (default built-in layout)")
}

func runRender(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	var opts share.Options
	var linkWarnings []string
	opts, linkWarnings, err = renderFlags.options(cmd)
	if err != nil {
		return err
	}

	var templates []layout.PageTemplate
	templates, err = loadTemplates(renderLayoutFile)
	if err != nil {
		return err
	}

	var ws *workspace
	ws, err = openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	var warnings []string
	warnings, err = document.SelectVariant(ctx, ws.dir, opts, ws.logger)
	if err != nil {
		err = errors.Wrap(err, "failed to load variant")
		return err
	}

	doc := document.Build(document.Input{
		Data:      ws.data,
		Source:    ws.dir.Resolver(ws.data.Content),
		Viewer:    ws.cfg.CurrentViewer(),
		Options:   opts,
		Templates: templates,
		Warnings:  append(linkWarnings, warnings...),
	})

	for _, w := range doc.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	ws.logger.Debug("document built",
		zap.String("privacy", string(doc.Visibility.Level)),
		zap.Int("pages", len(doc.Pages)),
	)

	md := renderer.Markdown(doc)
	if renderStdout {
		fmt.Print(md)
		return err
	}

	outDir := getOutputDir(renderOutputDir, ws.cfg.Defaults.OutputDir)

	variantName := ""
	if active := ws.dir.Active(); active != nil {
		variantName = active.Name
	}
	mdPath, pdfPath := buildRenderFilenames(outDir, ws.data.Person.Name, variantName)

	err = renderer.WriteMarkdown(md, mdPath)
	if err != nil {
		err = errors.Wrap(err, "failed to write CV markdown")
		return err
	}
	fmt.Printf("CV markdown saved at: %s\n", mdPath)

	if !renderPDF {
		return err
	}

	err = renderAndCleanup(ctx, ws, mdPath, pdfPath)
	return err
}

func renderAndCleanup(ctx context.Context, ws *workspace, mdPath, pdfPath string) (err error) {
	pdfOpts := renderer.PDFOptions{TemplatePath: ws.cfg.Pandoc.TemplatePath}
	if pdfOpts.TemplatePath != "" {
		_, statErr := os.Stat(pdfOpts.TemplatePath)
		if statErr != nil {
			ws.logger.Warn("pandoc template not found, using pandoc's default", zap.String("path", pdfOpts.TemplatePath))
			pdfOpts.TemplatePath = ""
		}
	}

	err = renderer.RenderPDF(ctx, mdPath, pdfPath, pdfOpts)
	if err != nil {
		fmt.Printf("Warning: Failed to render CV PDF: %v\n", err)
		fmt.Printf("CV markdown saved at: %s\n", mdPath)
		return nil
	}
	fmt.Printf("CV PDF saved at: %s\n", pdfPath)

	if !renderKeepMarkdown {
		err = renderer.CleanupMarkdown(mdPath)
		if err != nil {
			fmt.Printf("Warning: Failed to clean up markdown files: %v\n", err)
			err = nil
		}
	}

	return err
}

// loadTemplates reads and validates a page layout file. An empty path gives
// the built-in layout.
func loadTemplates(path string) (templates []layout.PageTemplate, err error) {
	templates = layout.DefaultTemplates()
	if path != "" {
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			err = errors.Wrapf(err, "failed to read layout file: %s", path)
			return templates, err
		}

		templates = nil
		err = json.Unmarshal(data, &templates)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse layout file: %s", path)
			return templates, err
		}
	}

	err = layout.Validate(templates)
	if err != nil {
		err = errors.Wrap(err, "layout is invalid")
		return templates, err
	}

	return templates, err
}

func getOutputDir(flagValue, configValue string) (outDir string) {
	outDir = flagValue
	if outDir == "" {
		outDir = configValue
	}
	return outDir
}

func buildRenderFilenames(outDir, name, variant string) (mdPath, pdfPath string) {
	base := sanitizeFilename(name) + "-cv"
	if variant != "" {
		base += "-" + sanitizeFilename(variant)
	}
	mdPath = filepath.Join(outDir, base+".md")
	pdfPath = filepath.Join(outDir, base+".pdf")
	return mdPath, pdfPath
}
