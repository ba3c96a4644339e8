package sources

import (
	"net/http/httptest"
	"reflect"
	"testing"
)

func newTestFetcher(server *httptest.Server) *Fetcher {
	f := NewFetcher(server.Client())
	f.Delay = 0
	return f
}

func TestNamesDefaultOrder(t *testing.T) {
	expected := []string{"mereb", "ethiobookreview", "goodreads", "hahubooks", "gebeyaaddis", "soderestore"}
	if got := Names(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		expected []string
		wantErr  bool
	}{
		{name: "all by default", names: nil, expected: Names()},
		{name: "keeps default order", names: []string{"soderestore", "Goodreads"}, expected: []string{"goodreads", "soderestore"}},
		{name: "unknown source", names: []string{"amazon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapters, err := Build(tt.names, Options{})
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			var got []string
			for _, a := range adapters {
				got = append(got, a.Name())
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestBuildBaseURLOverride(t *testing.T) {
	adapters, err := Build([]string{"hahubooks"}, Options{BaseURLs: map[string]string{"hahubooks": "http://localhost:8080/"}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	h, ok := adapters[0].(*HahuBooks)
	if !ok {
		t.Fatalf("Expected *HahuBooks, got %T", adapters[0])
	}
	if h.BaseURL != "http://localhost:8080" {
		t.Errorf("Expected trimmed override, got %q", h.BaseURL)
	}
}

func TestStripBy(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{" በ ደመወዝ  ጎሽሜ", "ደመወዝ ጎሽሜ"},
		{"by Baalu Girma", "Baalu Girma"},
		{"በዕውቀቱ ስዩም", "በዕውቀቱ ስዩም"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := stripBy(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSplitCredit(t *testing.T) {
	tests := []struct {
		raw    string
		title  string
		author string
	}{
		{"በይነ-ዲሲፕሊናዊ የሥነ ጽሑፍ ንባብ በ ቴዎድሮስ ገብሬ", "በይነ-ዲሲፕሊናዊ የሥነ ጽሑፍ ንባብ", "ቴዎድሮስ ገብሬ"},
		{"Oromay by Baalu Girma", "Oromay", "Baalu Girma"},
		{"ፍቅር እስከ መቃብር", "ፍቅር እስከ መቃብር", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			title, author := splitCredit(tt.raw)
			if title != tt.title || author != tt.author {
				t.Errorf("Expected (%q, %q), got (%q, %q)", tt.title, tt.author, title, author)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"January 2, 1968", "1968-01-02"},
		{"Jan 2, 1968", "1968-01-02"},
		{"1968", "1968-01-01"},
		{"January 1968", "1968-01-01"},
		{"First published March 3, 1990", "1990-03-03"},
		{"circa 1970", "circa 1970"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseDate(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAbsURL(t *testing.T) {
	tests := []struct {
		base, ref, expected string
	}{
		{"https://www.hahubooks.com", "book.php?id=1", "https://www.hahubooks.com/book.php?id=1"},
		{"https://www.hahubooks.com", "/images/a.jpg", "https://www.hahubooks.com/images/a.jpg"},
		{"https://www.hahubooks.com", "https://cdn.test/a.jpg", "https://cdn.test/a.jpg"},
		{"https://www.hahubooks.com", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := absURL(tt.base, tt.ref); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
