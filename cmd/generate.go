package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/jd"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/llm"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/scorer"
	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/versions"
)

//nolint:gochecknoglobals // Cobra boilerplate
var company string

//nolint:gochecknoglobals // Cobra boilerplate
var role string

//nolint:gochecknoglobals // Cobra boilerplate
var variantName string

//nolint:gochecknoglobals // Cobra boilerplate
var sources []string

//nolint:gochecknoglobals // Cobra boilerplate
var instructions string

//nolint:gochecknoglobals // Cobra boilerplate
var dryRun bool

//nolint:gochecknoglobals // Cobra boilerplate
var makeDefault bool

//nolint:gochecknoglobals // Cobra boilerplate
var noRetry bool

//nolint:gochecknoglobals // Cobra boilerplate
var generateCmd = &cobra.Command{
	Use:   "generate <posting-file-or-url>",
	Short: "Generate a CV variant tailored to a job posting",
	Long: `Generate a CV variant tailored to a job posting and save it.

The posting can be provided as:
- A file path (e.g., posting.txt)
- A URL (e.g., https://example.com/jobs/123)

Only the sections selected with --sources are rewritten; everything else keeps
the baseline content. The result is checked against the baseline for invented
numbers, skills and employment details. A variant that fails the check is
regenerated once with the findings as extra instructions.

Example:
  cv generate posting.txt
  cv generate https://example.com/jobs/123 --sources profile,skills
  cv generate posting.txt --company "Acme" --role "SRE" --name "Acme SRE" --default`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&company, "company", "", "Company name (extracted from the posting if not provided)")
	generateCmd.Flags().StringVar(&role, "role", "", "Role title (extracted from the posting if not provided)")
	generateCmd.Flags().StringVar(&variantName, "name", "", "Variant name (default \"<company> - <role>\")")
	generateCmd.Flags().StringSliceVar(&sources, "sources", []string{"all"}, "Sections to tailor: profile, experience, skills, achievements, education, motivation or all")
	generateCmd.Flags().StringVar(&instructions, "instructions", "", "Additional instructions for the model")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the generated content instead of saving it")
	generateCmd.Flags().BoolVar(&makeDefault, "default", false, "Make the new variant the default")
	generateCmd.Flags().BoolVar(&noRetry, "no-retry", false, "Do not regenerate a variant that fails the fabrication check")
}

func runGenerate(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	selected, unknown := llm.ParseDataSources(sources)
	if len(unknown) > 0 {
		err = errors.Errorf("unknown sources: %s", strings.Join(unknown, ", "))
		return err
	}

	var ws *workspace
	ws, err = openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	err = ws.cfg.RequireAPIKey()
	if err != nil {
		return err
	}

	var posting jd.JobPosting
	posting, err = fetchAndLogPosting(args[0])
	if err != nil {
		return err
	}

	client := llm.NewClient(ws.cfg.AnthropicAPIKey, ws.cfg.GetGenerationModel())

	// Phase 1: Research
	var research llm.ResearchResponse
	research, err = runResearchPhase(ctx, client, posting.Text)
	if err != nil {
		return err
	}

	finalCompany, finalRole := extractCompanyAndRole(company, role, research)

	req := llm.VariantRequest{
		JobPosting:   posting.Text,
		Company:      finalCompany,
		Role:         finalRole,
		Research:     research,
		Sources:      selected,
		Baseline:     ws.data,
		Instructions: instructions,
	}

	// Phase 2: Generate and check
	var resp llm.VariantResponse
	var report scorer.Report
	resp, report, err = runGenerationPhase(ctx, client, req, ws.logger)
	if err != nil {
		return err
	}

	if dryRun {
		err = printBundle(resp.Content)
		return err
	}

	name := variantName
	if name == "" {
		name = fmt.Sprintf("%s - %s", resp.Company, resp.Role)
	}

	jc := &versions.JobContext{
		Company:     resp.Company,
		Role:        resp.Role,
		PostingURL:  posting.URL,
		PostingText: posting.Text,
		Research:    research.Summary(),
	}

	var id string
	id, err = ws.dir.Create(ctx, name, content.FromBundle(resp.Content), jc)
	if err != nil {
		err = errors.Wrap(err, "failed to save variant")
		return err
	}

	if makeDefault {
		err = ws.dir.SetDefault(ctx, id)
		if err != nil {
			err = errors.Wrap(err, "failed to make variant the default")
			return err
		}
	}

	fmt.Printf("\n✓ Saved variant %q (%s), fabrication score %d/100\n", name, id, report.Score)
	fmt.Printf("  Render it with: cv render --version %s\n", id)

	return err
}

func runResearchPhase(ctx context.Context, client *llm.Client, posting string) (research llm.ResearchResponse, err error) {
	var researchSpinner *spinner
	if !getVerbose() {
		researchSpinner = newSpinner("Researching job posting with Claude API...")
		researchSpinner.start()
	} else {
		fmt.Println("Researching job posting with Claude API...")
	}

	research, err = client.Research(ctx, posting)

	if researchSpinner != nil {
		researchSpinner.stopSpinner()
	}

	if err != nil {
		err = errors.Wrap(err, "Claude API research failed")
		return research, err
	}

	if !getVerbose() {
		fmt.Println("✓ Research complete")
	}

	logResearchResults(research)

	return research, err
}

// runGenerationPhase generates a variant and audits it. A variant that fails
// the audit is regenerated once with the findings as instructions; the better
// of the two attempts is returned.
func runGenerationPhase(ctx context.Context, client *llm.Client, req llm.VariantRequest, logger *zap.Logger) (resp llm.VariantResponse, report scorer.Report, err error) {
	audit := scorer.NewScorer(req.Baseline.Content)

	resp, err = generateWithSpinner(ctx, client, req, "Generating tailored variant...")
	if err != nil {
		return resp, report, err
	}
	report = audit.Audit(resp.Content)
	logAudit(report, resp.Fixes, logger)

	if report.Passed() || noRetry {
		return resp, report, err
	}

	lessons := scorer.ExtractLessons(report)
	fmt.Printf("Found %d issues (score %d/100), regenerating...\n", len(report.Violations), report.Score)

	retry := req
	retry.Instructions = strings.TrimSpace(req.Instructions + "\n\nA previous attempt was rejected for inventing facts. Avoid these:\n- " + strings.Join(lessons, "\n- "))

	retryResp, retryErr := generateWithSpinner(ctx, client, retry, "Regenerating variant...")
	if retryErr != nil {
		logger.Warn("regeneration failed, keeping first attempt", zap.Error(retryErr))
		return resp, report, err
	}

	retryReport := audit.Audit(retryResp.Content)
	logAudit(retryReport, retryResp.Fixes, logger)
	if retryReport.Score >= report.Score {
		resp, report = retryResp, retryReport
	}

	if !report.Passed() {
		fmt.Printf("⚠ Warning: %d issues remain after regeneration (score %d/100)\n", len(report.Violations), report.Score)
		for _, v := range report.Violations {
			fmt.Printf("  [%s] %s: %s\n", v.Rule, v.Location, v.Fabricated)
		}
	}

	return resp, report, err
}

func generateWithSpinner(ctx context.Context, client *llm.Client, req llm.VariantRequest, message string) (resp llm.VariantResponse, err error) {
	var genSpinner *spinner
	if !getVerbose() {
		genSpinner = newSpinner(message)
		genSpinner.start()
	} else {
		fmt.Println(message)
	}

	resp, err = client.GenerateVariant(ctx, req)

	if genSpinner != nil {
		genSpinner.stopSpinner()
	}

	if err != nil {
		err = errors.Wrap(err, "Claude API generation failed")
		return resp, err
	}

	if !getVerbose() {
		fmt.Println("✓ Generation complete")
	}

	return resp, err
}

func logAudit(report scorer.Report, fixes []string, logger *zap.Logger) {
	for _, fix := range fixes {
		logger.Debug("applied fix", zap.String("fix", fix))
	}
	for _, v := range report.Violations {
		logger.Debug("audit violation",
			zap.String("rule", v.Rule),
			zap.String("location", v.Location),
			zap.String("value", v.Fabricated),
		)
	}
}

func printBundle(b content.Bundle) (err error) {
	var out []byte
	out, err = yaml.Marshal(b)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal content")
		return err
	}
	fmt.Print(string(out))
	return err
}

func fetchAndLogPosting(input string) (posting jd.JobPosting, err error) {
	if getVerbose() {
		fmt.Printf("Loading job posting from: %s\n", input)
	}

	posting, err = jd.Fetch(input)
	if err != nil {
		// JavaScript-rendered pages often come back empty; accept a paste instead
		fmt.Printf("\nWarning: Failed to fetch job posting: %v\n", err)
		fmt.Println("This often happens with JavaScript-rendered pages (Lever, Workable, etc.)")
		fmt.Println("\nPlease paste the job posting text below.")
		fmt.Println("When finished, press Ctrl+D (Unix/Mac) or Ctrl+Z then Enter (Windows):")
		fmt.Println()

		var text string
		text, err = readStdin()
		if err != nil {
			return posting, err
		}

		posting = jd.JobPosting{Source: input, Text: text}
		fmt.Printf("\nJob posting received (%d characters)\n", len(text))
		return posting, err
	}

	if getVerbose() {
		fmt.Printf("Job posting loaded (%d characters)\n", len(posting.Text))
	}

	return posting, err
}

func readStdin() (text string, err error) {
	scanner := bufio.NewScanner(os.Stdin)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if scanner.Err() != nil {
		err = errors.Wrap(scanner.Err(), "failed to read job posting from stdin")
		return text, err
	}

	text = strings.TrimSpace(strings.Join(lines, "\n"))
	if text == "" {
		err = errors.New("no job posting provided")
		return text, err
	}

	return text, err
}

func logResearchResults(research llm.ResearchResponse) {
	if !getVerbose() {
		return
	}

	fmt.Printf("Research complete. Top requirements:\n")
	for _, req := range research.KeyRequirements {
		fmt.Printf("  - %s\n", req)
	}
	fmt.Printf("Role focus: %s\n", research.RoleFocus)
}

func extractCompanyAndRole(company, role string, research llm.ResearchResponse) (finalCompany, finalRole string) {
	finalCompany = company
	if finalCompany == "" {
		finalCompany = research.CompanyName
		if getVerbose() && finalCompany != "" {
			fmt.Printf("Extracted company from posting: %s\n", finalCompany)
		}
	}

	if finalCompany == "" {
		finalCompany = promptForInput("Company name")
	}

	finalRole = role
	if finalRole == "" {
		finalRole = research.RoleTitle
		if getVerbose() && finalRole != "" {
			fmt.Printf("Extracted role from posting: %s\n", finalRole)
		}
	}

	if finalRole == "" {
		finalRole = promptForInput("Role title")
	}

	return finalCompany, finalRole
}

func promptForInput(fieldName string) (input string) {
	fmt.Printf("%s could not be extracted from the job posting.\n", fieldName)
	fmt.Printf("Please enter %s: ", strings.ToLower(fieldName))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		input = strings.TrimSpace(scanner.Text())
	}

	return input
}

// spinner provides a simple text-based progress indicator.
type spinner struct {
	message string
	stop    chan bool
	done    chan bool
	mu      sync.Mutex
	active  bool
}

func newSpinner(message string) (s *spinner) {
	s = &spinner{
		message: message,
		stop:    make(chan bool),
		done:    make(chan bool),
	}
	return s
}

func (s *spinner) start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	go func() {
		chars := []string{"|", "/", "-", "\\"}
		i := 0
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		fmt.Printf("%s ", s.message)
		for {
			select {
			case <-s.stop:
				fmt.Printf("\r%s\r", strings.Repeat(" ", len(s.message)+2))
				s.done <- true
				return
			case <-ticker.C:
				fmt.Printf("\r%s %s", s.message, chars[i%len(chars)])
				i++
			}
		}
	}()
}

func (s *spinner) stopSpinner() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.stop <- true
	<-s.done

	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}
