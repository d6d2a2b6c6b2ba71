// Package renderer turns a composed document into markdown and, through
// pandoc, into PDF.
package renderer

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
)

// PDFOptions controls the pandoc invocation.
type PDFOptions struct {
	// TemplatePath is an optional LaTeX template. Its directory is added to
	// TEXINPUTS so a sibling .cls file is found.
	TemplatePath string
	// Engine overrides pandoc's default PDF engine.
	Engine string
}

// RenderPDF converts a markdown file to PDF with pandoc.
func RenderPDF(ctx context.Context, markdownPath, outputPath string, opts PDFOptions) (err error) {
	err = checkPandocExists(ctx)
	if err != nil {
		return err
	}

	required := []string{markdownPath}
	if opts.TemplatePath != "" {
		required = append(required, opts.TemplatePath)
	}

	err = validateFiles(required...)
	if err != nil {
		return err
	}

	outputDir := filepath.Dir(outputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	cmd := exec.CommandContext(ctx, "pandoc", pandocArgs(markdownPath, outputPath, opts)...)
	cmd.Env = os.Environ()
	if opts.TemplatePath != "" {
		texinputs := filepath.Dir(opts.TemplatePath) + ":" + os.Getenv("TEXINPUTS")
		cmd.Env = append(cmd.Env, "TEXINPUTS="+texinputs)
	}

	var output []byte
	output, err = cmd.CombinedOutput()
	if err != nil {
		err = errors.Wrapf(err, "pandoc failed: %s", string(output))
		return err
	}

	return err
}

func pandocArgs(markdownPath, outputPath string, opts PDFOptions) (args []string) {
	args = []string{
		"-f", "markdown",
		"-o", outputPath,
	}
	if opts.TemplatePath != "" {
		args = append(args, "--template", opts.TemplatePath)
	}
	if opts.Engine != "" {
		args = append(args, "--pdf-engine", opts.Engine)
	}
	args = append(args, markdownPath)
	return args
}

// checkPandocExists verifies pandoc is installed.
func checkPandocExists(ctx context.Context) (err error) {
	cmd := exec.CommandContext(ctx, "pandoc", "--version")
	err = cmd.Run()
	if err != nil {
		err = errors.New("pandoc not found in PATH (install pandoc to generate PDFs)")
		return err
	}
	return err
}

// validateFiles checks that required files exist.
func validateFiles(paths ...string) (err error) {
	for _, path := range paths {
		_, err = os.Stat(path)
		if os.IsNotExist(err) {
			err = errors.Errorf("file not found: %s", path)
			return err
		}
	}
	return err
}

// WriteMarkdown writes rendered markdown to a file, creating its directory.
func WriteMarkdown(md, outputPath string) (err error) {
	outputDir := filepath.Dir(outputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	err = os.WriteFile(outputPath, []byte(md), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write markdown file: %s", outputPath)
		return err
	}

	return err
}

// CleanupMarkdown removes intermediate markdown files after PDF generation.
func CleanupMarkdown(paths ...string) (err error) {
	for _, path := range paths {
		err = os.Remove(path)
		if err != nil {
			err = errors.Wrapf(err, "failed to remove markdown file: %s", path)
			return err
		}
	}
	return err
}
