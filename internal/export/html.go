package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML renders the report as a standalone HTML page.
func RenderHTML(ctx context.Context, company, report string) (string, error) {
	if strings.TrimSpace(report) == "" {
		return "", ErrEmptyReport
	}
	var body bytes.Buffer
	if err := markdown.Convert([]byte(report), &body); err != nil {
		return "", fmt.Errorf("convert report markdown: %w", err)
	}
	var builder strings.Builder
	if err := ReportPage(company, body.String()).Render(ctx, &builder); err != nil {
		return "", fmt.Errorf("render report page: %w", err)
	}
	return builder.String(), nil
}

// WriteHTML renders the report and writes it to dir.
func WriteHTML(ctx context.Context, dir, company, report string) (string, error) {
	html, err := RenderHTML(ctx, company, report)
	if err != nil {
		return "", err
	}
	return writeFile(dir, Filename(company, "html"), []byte(html), report)
}

// reportTitle names the page after the researched company.
func reportTitle(company string) string {
	if company = strings.TrimSpace(company); company != "" {
		return company + " research report"
	}
	return "Research report"
}
