package event

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON []byte

const maxPayloadPreview = 120

// DecodeError reports a stream message that could not be decoded.
type DecodeError struct {
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode event %q: %v", e.Payload, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// wireEvent mirrors the JSON emitted by the research backend.
type wireEvent struct {
	Type          string `json:"type"`
	Step          string `json:"step"`
	Message       string `json:"message"`
	Category      string `json:"category"`
	Query         string `json:"query"`
	QueryNumber   *int   `json:"query_number"`
	Company       string `json:"company"`
	URL           string `json:"url"`
	Total         *int   `json:"total"`
	Enriched      *int   `json:"enriched"`
	TotalDocs     *int   `json:"total_docs"`
	ContentLength *int   `json:"content_length"`
	Chunk         string `json:"chunk"`
	Report        string `json:"report"`
	Error         string `json:"error"`
}

// Decoder validates and decodes stream payloads. It is safe for concurrent use.
type Decoder struct {
	schema *jsonschema.Schema
}

// NewDecoder compiles the embedded payload schema.
func NewDecoder() (*Decoder, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal event schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("event.json", doc); err != nil {
		return nil, fmt.Errorf("add event schema: %w", err)
	}
	schema, err := compiler.Compile("event.json")
	if err != nil {
		return nil, fmt.Errorf("compile event schema: %w", err)
	}
	return &Decoder{schema: schema}, nil
}

// Decode turns one raw payload into a typed Event. Failures are returned as
// *DecodeError and never affect later payloads.
func (d *Decoder) Decode(payload []byte) (Event, error) {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return nil, decodeError(payload, err)
	}
	if err := d.schema.Validate(instance); err != nil {
		return nil, decodeError(payload, err)
	}
	var wire wireEvent
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, decodeError(payload, err)
	}
	return fromWire(wire), nil
}

func decodeError(payload []byte, err error) *DecodeError {
	preview := string(payload)
	if len(preview) > maxPayloadPreview {
		preview = preview[:maxPayloadPreview] + "..."
	}
	return &DecodeError{Payload: preview, Err: err}
}

// fromWire selects the variant for the wire discriminator.
func fromWire(wire wireEvent) Event {
	switch Kind(wire.Type) {
	case KindProgress:
		return Progress{Step: wire.Step}
	case KindQueryGenerating:
		return QueryGenerating{Category: wire.Category, Number: intOr(wire.QueryNumber, 0), Query: wire.Query}
	case KindQueryGenerated:
		return QueryGenerated{Category: wire.Category, Number: intOr(wire.QueryNumber, 0), Query: wire.Query}
	case KindResearchInit:
		return ResearchInit{Company: wire.Company, Message: wire.Message, Step: wire.Step}
	case KindCrawlStart:
		return CrawlStart{URL: wire.URL, Message: wire.Message, Step: wire.Step}
	case KindCuration:
		return Curation{Category: wire.Category, Total: wire.Total, Message: wire.Message}
	case KindEnrichment:
		return Enrichment{Category: wire.Category, Enriched: wire.Enriched, Total: wire.Total, Message: wire.Message}
	case KindBriefingStart:
		return BriefingStart{Category: wire.Category, TotalDocs: intOr(wire.TotalDocs, 0), Step: wire.Step}
	case KindBriefingComplete:
		return BriefingComplete{Category: wire.Category, ContentLength: intOr(wire.ContentLength, 0), Step: wire.Step}
	case KindReportCompilation:
		return ReportCompilation{Message: wire.Message}
	case KindReportChunk:
		return ReportChunk{Chunk: wire.Chunk, Step: wire.Step}
	case KindComplete:
		return Complete{Report: wire.Report}
	case KindError:
		return Error{Message: wire.Error, Category: wire.Category, Step: wire.Step}
	default:
		return Unknown{Type: wire.Type, Step: wire.Step, Message: wire.Message}
	}
}

func intOr(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}
