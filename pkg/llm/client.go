package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/content"
)

const (
	// ClaudeAPIEndpoint is the Anthropic API endpoint.
	ClaudeAPIEndpoint = "https://api.anthropic.com/v1/messages"
	// ClaudeModel is the model to use.
	ClaudeModel = "claude-sonnet-4-20250514"
	// ClaudeAPIVersion is the API version.
	ClaudeAPIVersion = "2023-06-01"
)

// Client represents a Claude API client.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	endpoint   string
	fixer      *Fixer
}

// NewClient creates a new Claude API client.
func NewClient(apiKey, model string) (client *Client) {
	if model == "" {
		model = ClaudeModel
	}
	client = &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: ClaudeAPIEndpoint,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		fixer: NewFixer(),
	}
	return client
}

// Research performs Phase 1: extract what the posting asks for.
func (c *Client) Research(ctx context.Context, posting string) (response ResearchResponse, err error) {
	prompt := buildResearchPrompt(posting)

	var responseText string
	responseText, err = c.sendRequest(ctx, prompt, 2048)
	if err != nil {
		err = errors.Wrap(err, "research request failed")
		return response, err
	}

	cleanedText := stripMarkdownCodeFences(responseText)

	err = json.Unmarshal([]byte(cleanedText), &response)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse research response: %s", responseText)
		return response, err
	}

	return response, err
}

// GenerateVariant performs Phase 2: rewrite the selected baseline sections
// for the posting. Fields that were not selected keep their baseline values,
// so the returned bundle is always fully populated. Output that fails schema
// validation gets one repair round trip before the request fails.
func (c *Client) GenerateVariant(ctx context.Context, req VariantRequest) (response VariantResponse, err error) {
	if req.Sources == 0 {
		err = errors.New("at least one data source must be selected")
		return response, err
	}

	prompt := buildVariantPrompt(req)

	var responseText string
	responseText, err = c.sendRequest(ctx, prompt, 8192)
	if err != nil {
		err = errors.Wrap(err, "variant generation request failed")
		return response, err
	}

	var overrides content.Overrides
	var envelope variantEnvelope
	envelope, overrides, err = decodeVariant(responseText)
	if err != nil {
		repairText, repairErr := c.sendRequest(ctx, buildRepairPrompt(stripMarkdownCodeFences(responseText), err), 8192)
		if repairErr != nil {
			err = errors.Wrap(repairErr, "variant repair request failed")
			return response, err
		}
		envelope, overrides, err = decodeVariant(repairText)
		if err != nil {
			err = errors.Wrap(err, "generated variant is invalid after repair")
			return response, err
		}
	}

	overrides = restrictToSources(overrides, req.Sources)

	response.Content = content.Apply(req.Baseline.Content, &overrides)
	response.Content, response.Fixes = c.fixer.ApplyFixes(response.Content)

	err = content.ValidateExperience(response.Content.WorkExperience)
	if err != nil {
		err = errors.Wrap(err, "generated work experience is invalid")
		return response, err
	}

	response.Company = firstNonEmpty(envelope.Company, req.Company, req.Research.CompanyName)
	response.Role = firstNonEmpty(envelope.Role, req.Role, req.Research.RoleTitle)
	response.Research = req.Research

	return response, err
}

// decodeVariant parses and validates a model reply.
func decodeVariant(responseText string) (envelope variantEnvelope, overrides content.Overrides, err error) {
	cleanedText := stripMarkdownCodeFences(responseText)

	err = json.Unmarshal([]byte(cleanedText), &envelope)
	if err != nil {
		err = errors.Wrap(err, "failed to parse variant response")
		return envelope, overrides, err
	}

	if len(envelope.Content) == 0 {
		err = errors.New("variant response has no content")
		return envelope, overrides, err
	}

	err = content.ValidateOverridesJSON(envelope.Content)
	if err != nil {
		return envelope, overrides, err
	}

	err = json.Unmarshal(envelope.Content, &overrides)
	if err != nil {
		err = errors.Wrap(err, "failed to decode variant content")
		return envelope, overrides, err
	}

	return envelope, overrides, err
}

// restrictToSources drops fields the model was not asked to write.
func restrictToSources(o content.Overrides, sources DataSource) (out content.Overrides) {
	if sources.Has(SourceProfile) {
		out.Tagline = o.Tagline
		out.Profile = o.Profile
		out.Slogan = o.Slogan
	}
	if sources.Has(SourceExperience) {
		out.WorkExperience = o.WorkExperience
	}
	if sources.Has(SourceSkills) {
		out.SkillCategories = o.SkillCategories
	}
	if sources.Has(SourceAchievements) {
		out.KeyAchievements = o.KeyAchievements
	}
	if sources.Has(SourceEducation) {
		out.Education = o.Education
	}
	if sources.Has(SourceMotivation) {
		out.MotivationLetter = o.MotivationLetter
	}
	return out
}

// sendRequest sends a request to Claude API.
func (c *Client) sendRequest(ctx context.Context, prompt string, maxTokens int) (responseText string, err error) {
	claudeReq := ClaudeRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	var reqBody []byte
	reqBody, err = json.Marshal(claudeReq)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal request")
		return responseText, err
	}

	var httpReq *http.Request
	httpReq, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return responseText, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", ClaudeAPIVersion)

	var resp *http.Response
	resp, err = c.httpClient.Do(httpReq)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return responseText, err
	}
	defer resp.Body.Close()

	var respBody []byte
	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return responseText, err
	}

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
		return responseText, err
	}

	var claudeResp ClaudeResponse
	err = json.Unmarshal(respBody, &claudeResp)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse Claude response: %s", string(respBody))
		return responseText, err
	}

	if len(claudeResp.Content) == 0 {
		err = errors.New("no content in Claude response")
		return responseText, err
	}

	responseText = claudeResp.Content[0].Text

	return responseText, err
}

// stripMarkdownCodeFences removes markdown code fences from JSON responses.
func stripMarkdownCodeFences(text string) (cleaned string) {
	cleaned = text

	if len(cleaned) > 7 && cleaned[:7] == "```json" {
		start := 7
		for start < len(cleaned) && cleaned[start] != '\n' {
			start++
		}
		start++

		end := len(cleaned)
		if end > 3 && cleaned[end-3:] == "```" {
			end -= 3
		}

		for end > 0 && (cleaned[end-1] == '\n' || cleaned[end-1] == ' ' || cleaned[end-1] == '\r') {
			end--
		}

		if start > end {
			start = end
		}
		cleaned = cleaned[start:end]
	}

	return cleaned
}

func firstNonEmpty(values ...string) (out string) {
	for _, v := range values {
		if v != "" {
			out = v
			return out
		}
	}
	return out
}
