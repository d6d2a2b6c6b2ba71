// Package jd loads job postings from files or URLs.
package jd

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// maxBodyBytes caps how much of a posting page is read.
const maxBodyBytes = 4 << 20

var (
	multiNewline = regexp.MustCompile(`\n{3,}`)
	multiSpace   = regexp.MustCompile(`[ \t]+`)
)

// JobPosting is a fetched posting.
type JobPosting struct {
	// Source is the file path or URL the posting came from.
	Source string
	// URL is set when the posting was fetched over HTTP.
	URL  string
	Text string
}

// Fetch retrieves a job posting from file or URL.
func Fetch(input string) (posting JobPosting, err error) {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	posting, err = FetchWithContext(ctx, input)
	return posting, err
}

// FetchWithContext retrieves a job posting with context.
func FetchWithContext(ctx context.Context, input string) (posting JobPosting, err error) {
	posting.Source = input

	parsedURL, urlErr := url.Parse(input)
	if urlErr == nil && (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") {
		posting.URL = input
		posting.Text, err = fetchFromURL(ctx, input)
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch posting from URL: %s", input)
			return posting, err
		}
		return posting, err
	}

	posting.Text, err = fetchFromFile(input)
	if err != nil {
		err = errors.Wrapf(err, "failed to fetch posting from file: %s", input)
		return posting, err
	}

	return posting, err
}

// fetchFromFile reads a posting from a file.
func fetchFromFile(path string) (text string, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read file: %s", path)
		return text, err
	}

	text = strings.TrimSpace(string(data))
	if text == "" {
		err = errors.New("file is empty")
		return text, err
	}

	return text, err
}

// fetchFromURL retrieves a posting page and reduces it to text.
func fetchFromURL(ctx context.Context, urlStr string) (text string, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return text, err
	}

	req.Header.Set("User-Agent", "cv-variants/1.0")

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	var resp *http.Response
	resp, err = client.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return text, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("HTTP request failed with status: %d", resp.StatusCode)
		return text, err
	}

	var bodyBytes []byte
	bodyBytes, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return text, err
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "text/plain") {
		text = strings.TrimSpace(string(bodyBytes))
	} else {
		text, err = htmlToText(string(bodyBytes))
		if err != nil {
			err = errors.Wrap(err, "failed to parse HTML")
			return text, err
		}
	}

	if text == "" {
		err = errors.New("fetched content is empty after processing")
		return text, err
	}

	return text, err
}

// htmlToText extracts the readable text of a page, one block per paragraph.
func htmlToText(page string) (text string, err error) {
	var doc *html.Node
	doc, err = html.Parse(strings.NewReader(page))
	if err != nil {
		return text, err
	}

	var sb strings.Builder
	extractText(doc, &sb, 0)

	text = cleanText(sb.String())
	return text, err
}

func extractText(n *html.Node, sb *strings.Builder, depth int) {
	if depth > 100 {
		return
	}

	switch n.Type {
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			sb.WriteString(t)
			sb.WriteString(" ")
		}
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "iframe", "svg", "nav", "footer", "header", "form":
			return
		case "p", "div", "section", "article", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "table", "tr":
			sb.WriteString("\n\n")
		case "br":
			sb.WriteString("\n")
		case "li":
			sb.WriteString("\n- ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, sb, depth+1)
	}
}

// cleanText collapses runs of blanks and blank lines.
func cleanText(s string) (out string) {
	s = multiSpace.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = multiNewline.ReplaceAllString(s, "\n\n")

	out = strings.TrimSpace(s)
	return out
}
