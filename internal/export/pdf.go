package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PDF is a generated report document.
type PDF struct {
	Filename string
	Data     []byte
}

// PDFClient asks the research service to render a report as PDF.
type PDFClient struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *zap.Logger
}

// NewPDFClient builds a client with a request timeout.
func NewPDFClient(baseURL string, timeout time.Duration, logger *zap.Logger) *PDFClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &PDFClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

// Generate posts the report to /generate-pdf.
func (c *PDFClient) Generate(ctx context.Context, company, report string) (PDF, error) {
	if strings.TrimSpace(report) == "" {
		return PDF{}, ErrEmptyReport
	}
	payload := struct {
		ReportContent string `json:"report_content"`
		CompanyName   string `json:"company_name,omitempty"`
	}{ReportContent: report, CompanyName: company}
	body, err := json.Marshal(payload)
	if err != nil {
		return PDF{}, fmt.Errorf("marshal pdf request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/generate-pdf", bytes.NewReader(body))
	if err != nil {
		return PDF{}, fmt.Errorf("build pdf request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient(c.HTTP).Do(req)
	if err != nil {
		return PDF{}, fmt.Errorf("generate pdf: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return PDF{}, fmt.Errorf("read pdf: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return PDF{}, fmt.Errorf("generate pdf: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	name := attachmentName(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = Filename(company, "pdf")
	}
	if c.Logger != nil {
		c.Logger.Info("pdf generated", zap.String("filename", name), zap.Int("bytes", len(data)))
	}
	return PDF{Filename: name, Data: data}, nil
}

// WritePDF generates the PDF and writes it to dir.
func (c *PDFClient) WritePDF(ctx context.Context, dir, company, report string) (string, error) {
	pdf, err := c.Generate(ctx, company, report)
	if err != nil {
		return "", err
	}
	return writeFile(dir, pdf.Filename, pdf.Data, report)
}

func attachmentName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := params["filename"]
	if name == "" || strings.ContainsAny(name, `/\`) {
		return ""
	}
	return name
}

func httpClient(client *http.Client) *http.Client {
	if client == nil {
		return http.DefaultClient
	}
	return client
}
