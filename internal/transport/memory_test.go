package transport

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Iron-Ham/pulse/internal/errors"
	"github.com/Iron-Ham/pulse/internal/term"
)

func testCorpus() *Corpus {
	return &Corpus{Items: []Item{
		{Title: "Debouncing bursty input", Value: 200},
		{Title: "Retrying flaky requests", Value: 3},
		{Title: "Counting views", Value: 1024},
	}}
}

func parse(t *testing.T, raw string) term.Term {
	t.Helper()
	tm, err := term.Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q): %v", raw, err)
	}
	return tm
}

func TestMemory_Invoke(t *testing.T) {
	m := NewMemory(testCorpus())

	tests := []struct {
		raw  string
		want bool
	}{
		{"bursty", true},
		{"BURSTY", true},
		{"nothing", false},
		{"retry*", true},
		{"*views", true},
		{"count?ng*", true},
		{"views*", false},
		{"2-5", true},
		{"5-100", false},
		{"1000", true},
		{"1025", false},
		{"3 3", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := m.Invoke(context.Background(), parse(t, tt.raw))
			if err != nil {
				t.Fatalf("Invoke() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Invoke(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMemory_MaxOnlyRange(t *testing.T) {
	m := NewMemory(testCorpus())
	tm, err := term.NewRange(term.Unset, term.At(10))
	if err != nil {
		t.Fatal(err)
	}
	items, err := m.Match(tm)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Value != 3 {
		t.Errorf("Match(*-10) = %v, want the item valued 3", items)
	}
}

func TestMemory_InvalidGlob(t *testing.T) {
	m := NewMemory(testCorpus())
	_, err := m.Invoke(context.Background(), parse(t, "[unclosed"))
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Invoke() error = %v, want ErrInvalidInput", err)
	}
}

func TestMemory_ZeroTerm(t *testing.T) {
	if _, err := NewMemory(nil).Match(term.Term{}); err == nil {
		t.Error("Match(zero term) should fail")
	}
}

func TestMemory_FailureInjection(t *testing.T) {
	rolls := []float64{0.1, 0.9}
	i := 0
	m := NewMemory(testCorpus(), WithFailureRate(0.5), withRoll(func() float64 {
		r := rolls[i%len(rolls)]
		i++
		return r
	}))

	_, err := m.Invoke(context.Background(), parse(t, "views"))
	if !errors.Is(err, ErrInjectedFailure) {
		t.Fatalf("first Invoke() error = %v, want injected failure", err)
	}
	found, err := m.Invoke(context.Background(), parse(t, "views"))
	if err != nil || !found {
		t.Errorf("second Invoke() = %v, %v; want true, nil", found, err)
	}
}

func TestMemory_LatencyHonoursContext(t *testing.T) {
	m := NewMemory(testCorpus(), WithLatency(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := m.Invoke(ctx, parse(t, "views"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Invoke() error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Invoke() did not return promptly after the context expired")
	}
}

func TestLoadCorpus(t *testing.T) {
	t.Run("sample", func(t *testing.T) {
		c, err := LoadCorpus("")
		if err != nil {
			t.Fatal(err)
		}
		if len(c.Items) == 0 {
			t.Error("sample corpus is empty")
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "corpus.yaml")
		data := "items:\n  - title: Alpha\n    value: 1\n  - title: Beta\n    value: 2.5\n"
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		c, err := LoadCorpus(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(c.Items) != 2 || c.Items[1].Title != "Beta" || c.Items[1].Value != 2.5 {
			t.Errorf("LoadCorpus() = %+v", c.Items)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		if _, err := ParseCorpus([]byte("items:\n  - value: 1\n")); err == nil {
			t.Error("expected error for item without title")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadCorpus(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
