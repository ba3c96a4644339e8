package lookup

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"
)

type scriptedSearcher struct {
	responses []error
	volume    *Volume
	calls     int
}

func (s *scriptedSearcher) Search(context.Context, Query) (*Volume, error) {
	i := s.calls
	s.calls++
	if i < len(s.responses) && s.responses[i] != nil {
		return nil, s.responses[i]
	}
	return s.volume, nil
}

func rateLimited() error {
	return &StatusError{Service: "test", StatusCode: http.StatusTooManyRequests}
}

func newTestRetrier(s Searcher) (*Retrier, *[]time.Duration) {
	var slept []time.Duration
	r := NewRetrier(s)
	r.Sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return r, &slept
}

func TestRetrierAlwaysRateLimited(t *testing.T) {
	s := &scriptedSearcher{responses: []error{rateLimited(), rateLimited(), rateLimited(), rateLimited()}}
	r, slept := newTestRetrier(s)

	vol, err := r.Search(context.Background(), Title("x"))
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Expected ErrRateLimited, got %v", err)
	}
	if vol != nil {
		t.Errorf("Expected nil volume, got %+v", vol)
	}
	if s.calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", s.calls)
	}

	// two backoffs then the polite delay
	expected := []time.Duration{2 * time.Second, 4 * time.Second, time.Second}
	if !reflect.DeepEqual(*slept, expected) {
		t.Errorf("Expected sleeps %v, got %v", expected, *slept)
	}
}

func TestRetrierRecoversAfterRateLimit(t *testing.T) {
	want := &Volume{Title: "Fikir Eske Mekabir"}
	s := &scriptedSearcher{responses: []error{rateLimited()}, volume: want}
	r, slept := newTestRetrier(s)

	var states []State
	r.OnTransition = func(_, to State) { states = append(states, to) }

	vol, err := r.Search(context.Background(), Keywords("fikir", "haddis"))
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if vol != want {
		t.Errorf("Expected %+v, got %+v", want, vol)
	}
	if s.calls != 2 {
		t.Errorf("Expected 2 attempts, got %d", s.calls)
	}

	expectedStates := []State{Requesting, Backoff, Requesting, Succeeded}
	if !reflect.DeepEqual(states, expectedStates) {
		t.Errorf("Expected states %v, got %v", expectedStates, states)
	}
	expectedSleeps := []time.Duration{2 * time.Second, time.Second}
	if !reflect.DeepEqual(*slept, expectedSleeps) {
		t.Errorf("Expected sleeps %v, got %v", expectedSleeps, *slept)
	}
}

func TestRetrierOtherErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "server error", err: &StatusError{Service: "test", StatusCode: http.StatusInternalServerError}},
		{name: "transport error", err: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &scriptedSearcher{responses: []error{tt.err}}
			r, slept := newTestRetrier(s)

			_, err := r.Search(context.Background(), ISBN("9780000000000"))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if errors.Is(err, ErrRateLimited) {
				t.Errorf("Expected a non rate-limit error, got %v", err)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("Expected wrapped %v, got %v", tt.err, err)
			}
			if s.calls != 1 {
				t.Errorf("Expected 1 attempt, got %d", s.calls)
			}
			if len(*slept) != 1 || (*slept)[0] != time.Second {
				t.Errorf("Expected only the polite delay, got %v", *slept)
			}
		})
	}
}

func TestRetrierNoResults(t *testing.T) {
	s := &scriptedSearcher{}
	r, slept := newTestRetrier(s)

	vol, err := r.Search(context.Background(), Title("nothing"))
	if err != nil || vol != nil {
		t.Errorf("Expected (nil, nil), got (%v, %v)", vol, err)
	}
	if len(*slept) != 1 {
		t.Errorf("Expected polite delay after an empty result, got %v", *slept)
	}
}

func TestRetrierCancelledDuringBackoff(t *testing.T) {
	s := &scriptedSearcher{responses: []error{rateLimited(), rateLimited(), rateLimited()}}
	r := NewRetrier(s)

	ctx, cancel := context.WithCancel(context.Background())
	r.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := r.Search(ctx, Title("x"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if s.calls != 1 {
		t.Errorf("Expected 1 attempt, got %d", s.calls)
	}
}

func TestQueryString(t *testing.T) {
	tests := []struct {
		query    Query
		expected string
	}{
		{ISBN("9789994400000"), "isbn:9789994400000"},
		{Title("Oromay"), "intitle:Oromay"},
		{Keywords("fikir eske mekabir", "haddis alemayehu"), "fikir eske mekabir haddis alemayehu"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.query.String(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestVolumeISBN(t *testing.T) {
	tests := []struct {
		name     string
		ids      []Identifier
		expected string
	}{
		{
			name:     "prefers ISBN_13",
			ids:      []Identifier{{Type: "ISBN_10", Identifier: "0000000000"}, {Type: "ISBN_13", Identifier: "9780000000000"}},
			expected: "9780000000000",
		},
		{
			name:     "falls back to ISBN_10",
			ids:      []Identifier{{Type: "OTHER", Identifier: "STANFORD:123"}, {Type: "ISBN_10", Identifier: "0000000000"}},
			expected: "0000000000",
		},
		{name: "none", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Volume{IndustryIdentifiers: tt.ids}
			if got := v.ISBN(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
