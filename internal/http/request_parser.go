// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// entry form bodies (form encoded or JSON) and the admin filter query.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"tractorlog/internal/aggregate"
	"tractorlog/internal/core"
	"tractorlog/internal/services"
)

const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, up to 64 KiB, and stores it for
// subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// Submission maps the entry form fields.
func (p *RequestBodyParser) Submission() services.Submission {
	return services.Submission{
		Date:     p.Get("date"),
		Customer: p.Get("customer"),
		Location: p.Get("location"),
		Tractor:  p.Get("tractor"),
		Acres:    p.Get("acres"),
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// FilterQuery is the admin filter as carried in the query string.
type FilterQuery struct {
	Spec aggregate.FilterSpec
	Page int
}

// ParseFilterQuery reads the admin filter. Unparseable dates and pages are
// ignored rather than rejected.
func ParseFilterQuery(q url.Values) FilterQuery {
	fq := FilterQuery{
		Spec: aggregate.FilterSpec{
			Employee:  sanitizeInput(q.Get("employee")),
			Customers: cleanValues(q["customer"]),
			Locations: cleanValues(q["location"]),
			Tractors:  cleanValues(q["tractor"]),
		},
		Page: 1,
	}
	if fq.Spec.Employee == aggregate.AllEmployees {
		fq.Spec.Employee = ""
	}
	if d, err := core.ParseDate(q.Get("from")); err == nil {
		fq.Spec.From = d
	}
	if d, err := core.ParseDate(q.Get("to")); err == nil {
		fq.Spec.To = d
	}
	if p, err := strconv.Atoi(strings.TrimSpace(q.Get("page"))); err == nil {
		fq.Page = p
	}
	return fq
}

// Encode writes the filter back as query parameters, without the page.
func (fq FilterQuery) Encode() string {
	v := url.Values{}
	if fq.Spec.Employee != "" {
		v.Set("employee", fq.Spec.Employee)
	}
	for _, c := range fq.Spec.Customers {
		v.Add("customer", c)
	}
	for _, l := range fq.Spec.Locations {
		v.Add("location", l)
	}
	for _, t := range fq.Spec.Tractors {
		v.Add("tractor", t)
	}
	if !fq.Spec.From.IsZero() {
		v.Set("from", fq.Spec.From.String())
	}
	if !fq.Spec.To.IsZero() {
		v.Set("to", fq.Spec.To.String())
	}
	return v.Encode()
}

func cleanValues(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = sanitizeInput(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseFormOrFail parses the request form and returns an error response on failure.
func ParseFormOrFail(r *http.Request) *Reply {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
