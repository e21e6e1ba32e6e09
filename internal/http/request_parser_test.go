package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tractorlog/internal/aggregate"
	"tractorlog/internal/core"
	"tractorlog/internal/services"
)

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"date": "2025-08-09", "customer": "Rao", "location": "North", "tractor": "JD 5050", "acres": 2.5}`
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	want := services.Submission{Date: "2025-08-09", Customer: "Rao", Location: "North", Tractor: "JD 5050", Acres: "2.5"}
	if diff := cmp.Diff(want, parser.Submission()); diff != "" {
		t.Errorf("Submission mismatch (-want +got):\n%s", diff)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "customer=Rao+%26+Sons&location=%20North%0A&acres=2%2C5"
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	if got := parser.Get("customer"); got != "Rao & Sons" {
		t.Errorf("Get('customer') = %q", got)
	}
	if got := parser.Get("location"); got != "North" {
		t.Errorf("Get('location') = %q, control characters should be stripped", got)
	}
	if got := parser.Get("acres"); got != "2,5" {
		t.Errorf("Get('acres') = %q", got)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(`{"date":`))

	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestParseFilterQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  FilterQuery
	}{
		{
			name:  "empty",
			query: "",
			want:  FilterQuery{Page: 1},
		},
		{
			name:  "all employees is no filter",
			query: "employee=All&page=3",
			want:  FilterQuery{Page: 3},
		},
		{
			name:  "full filter",
			query: "employee=employee1&customer=Rao&customer=Singh&customer=Rao&location=North&tractor=JD+5050&from=2025-07-01&to=2025-07-31&page=2",
			want: FilterQuery{
				Spec: aggregate.FilterSpec{
					Employee:  "employee1",
					Customers: []string{"Rao", "Singh"},
					Locations: []string{"North"},
					Tractors:  []string{"JD 5050"},
					From:      core.NewDate(2025, 7, 1),
					To:        core.NewDate(2025, 7, 31),
				},
				Page: 2,
			},
		},
		{
			name:  "bad values are ignored",
			query: "from=yesterday&to=2025-13-01&page=x&customer=",
			want:  FilterQuery{Page: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}
			got := ParseFilterQuery(q)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseFilterQuery mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterQueryEncodeRoundTrip(t *testing.T) {
	in := FilterQuery{
		Spec: aggregate.FilterSpec{
			Employee:  "employee2",
			Customers: []string{"Rao & Sons"},
			From:      core.NewDate(2025, 7, 1),
		},
		Page: 4,
	}
	encoded := in.Encode()
	if strings.Contains(encoded, "page=") {
		t.Errorf("Encode should leave the page out: %s", encoded)
	}

	q, _ := url.ParseQuery(encoded)
	out := ParseFilterQuery(q)
	in.Page = 1
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
