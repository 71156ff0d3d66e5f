// Package parser turns raw backend output into validated schema records.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"repodoctor/internal/doctor"
	"repodoctor/internal/logging"
	"repodoctor/internal/schemas"
)

// Dumper persists raw text for later debugging.
type Dumper interface {
	DumpRaw(kind logging.DumpKind, name, content string) (string, error)
}

// Parser parses and validates backend output.
type Parser struct {
	log    *zap.Logger
	dumper Dumper
}

// New returns a Parser logging through l. A nil l discards logs and dumps.
func New(l *logging.Logger) *Parser {
	if l == nil {
		l = logging.Nop()
	}
	return &Parser{log: l.Category(logging.CategoryParser), dumper: l}
}

// ParseJSON extracts and decodes the JSON payload of raw.
func (p *Parser) ParseJSON(raw string) (any, error) {
	payload := ExtractJSON(raw)

	data, err := decodeStrict(payload)
	if err != nil {
		p.log.Error("Failed to parse JSON", zap.Error(err))
		if path, dumpErr := p.dumper.DumpRaw(logging.DumpError, "parse_error", raw); dumpErr == nil && path != "" {
			p.log.Debug("Unparseable output saved", zap.String("path", path))
		}
		return nil, doctor.OutputParse(fmt.Sprintf("Failed to parse output as JSON: %v", err), raw, err)
	}

	p.log.Debug("Successfully parsed JSON output", zap.Int("payload_bytes", len(payload)))
	return data, nil
}

// Validate checks data against target's schema and fills target.
func (p *Parser) Validate(data any, target any) error {
	if err := schemas.Decode(data, target); err != nil {
		p.log.Error("Schema validation failed", zap.String("schema", schemas.Name(target)), zap.Error(err))
		return err
	}
	p.log.Debug("Successfully validated", zap.String("schema", schemas.Name(target)))
	return nil
}

// ParseAndValidate parses raw and validates it into target in one step.
func (p *Parser) ParseAndValidate(raw string, target any) error {
	data, err := p.ParseJSON(raw)
	if err != nil {
		return err
	}
	return p.Validate(data, target)
}

// TryParseAndValidate is ParseAndValidate reporting success as a bool.
func (p *Parser) TryParseAndValidate(raw string, target any) bool {
	if err := p.ParseAndValidate(raw, target); err != nil {
		p.log.Warn("Parse/validation failed", zap.Error(err))
		return false
	}
	return true
}

func decodeStrict(payload string) (any, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, ErrEmptyPayload
	}
	decoder := json.NewDecoder(strings.NewReader(payload))
	decoder.UseNumber()

	var data any
	if err := decoder.Decode(&data); err != nil {
		return nil, err
	}
	if err := ensureEOF(decoder); err != nil {
		return nil, err
	}
	return data, nil
}

// ErrEmptyPayload is returned when there is nothing to decode.
var ErrEmptyPayload = errors.New("empty response")

func ensureEOF(decoder *json.Decoder) error {
	var extra interface{}
	if err := decoder.Decode(&extra); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return errors.New("unexpected trailing JSON content")
}
