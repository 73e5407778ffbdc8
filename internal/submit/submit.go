package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tone selects the writing style of the final report.
type Tone string

const (
	ToneObjective  Tone = "Objective"
	ToneFormal     Tone = "Formal"
	ToneAnalytical Tone = "Analytical"
	TonePersuasive Tone = "Persuasive"
	ToneInformal   Tone = "Informal"
	ToneCritical   Tone = "Critical"
)

// Tones lists every accepted tone.
var Tones = []Tone{ToneObjective, ToneFormal, ToneAnalytical, TonePersuasive, ToneInformal, ToneCritical}

// ParseTone matches a tone name case-insensitively. Empty input selects Objective.
func ParseTone(value string) (Tone, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ToneObjective, nil
	}
	for _, tone := range Tones {
		if strings.EqualFold(trimmed, string(tone)) {
			return tone, nil
		}
	}
	return "", fmt.Errorf("invalid tone %q (expected one of %s)", value, toneList())
}

func toneList() string {
	names := make([]string, 0, len(Tones))
	for _, tone := range Tones {
		names = append(names, string(tone))
	}
	return strings.Join(names, ", ")
}

// Request describes a research job.
type Request struct {
	Company     string   `json:"company"`
	CompanyURL  string   `json:"company_url,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	HQLocation  string   `json:"hq_location,omitempty"`
	Competitors []string `json:"competitors,omitempty"`
	Tone        Tone     `json:"tone"`
}

// Response is the accepted-job acknowledgement.
type Response struct {
	Status  string `json:"status"`
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// ErrCompanyRequired is returned when the request has no company name.
var ErrCompanyRequired = errors.New("submit: company name is required")

// SubmitError reports a rejected or unusable submission.
type SubmitError struct {
	StatusCode int
	Detail     string
}

func (e *SubmitError) Error() string {
	if e.StatusCode == 0 {
		return "submit research: " + e.Detail
	}
	return fmt.Sprintf("submit research: status %d: %s", e.StatusCode, e.Detail)
}

// Client submits research jobs over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *zap.Logger
}

// NewClient builds a client with a request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

// Normalize trims fields, drops empty competitors and defaults the tone.
func Normalize(req Request) Request {
	req.Company = strings.TrimSpace(req.Company)
	req.CompanyURL = strings.TrimSpace(req.CompanyURL)
	req.Industry = strings.TrimSpace(req.Industry)
	req.HQLocation = strings.TrimSpace(req.HQLocation)
	competitors := make([]string, 0, len(req.Competitors))
	for _, c := range req.Competitors {
		if c = strings.TrimSpace(c); c != "" {
			competitors = append(competitors, c)
		}
	}
	req.Competitors = competitors
	if req.Tone == "" {
		req.Tone = ToneObjective
	}
	return req
}

// Submit posts the request and returns the accepted job.
func (c *Client) Submit(ctx context.Context, req Request) (Response, error) {
	req = Normalize(req)
	if req.Company == "" {
		return Response{}, ErrCompanyRequired
	}
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("marshal research request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/research", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build research request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	c.logger().Info("submitting research", zap.String("company", req.Company), zap.String("request_id", requestID))
	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("submit research: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Response{}, fmt.Errorf("read research response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &SubmitError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}
	var out Response
	if err := json.Unmarshal(data, &out); err != nil {
		return Response{}, fmt.Errorf("decode research response: %w", err)
	}
	if out.JobID == "" {
		return Response{}, &SubmitError{Detail: "response did not include a job id"}
	}
	c.logger().Info("research accepted", zap.String("job_id", out.JobID), zap.String("request_id", requestID))
	return out, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// errorDetail extracts a FastAPI-style {"detail": ...} message when present.
func errorDetail(data []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Detail != nil {
		if text, ok := payload.Detail.(string); ok {
			return text
		}
		encoded, _ := json.Marshal(payload.Detail)
		return string(encoded)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "empty response"
	}
	return text
}
