package linkdex

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazyhaar/linkdex/linklist"
	"github.com/hazyhaar/linkdex/sink"
	"github.com/hazyhaar/linkdex/source"
)

const readme = `# Awesome

## Contents

## Platforms

- [Node.js](https://github.com/sindresorhus/awesome-nodejs)
- Browsers
    - [Chrome](https://github.com/ahmadnassri/awesome-chrome-devtools)

## Front-End Development

- [ES6 Tools](https://github.com/addyosmani/es6-tools)
see also [Back to top](#awesome)
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type staticSource struct {
	text  string
	err   error
	calls int
}

func (s *staticSource) Fetch(context.Context) (string, error) {
	s.calls++
	return s.text, s.err
}

type recordingSink struct {
	saves [][]linklist.Category
	runID string
	err   error
}

func (s *recordingSink) Save(ctx context.Context, c []linklist.Category) error {
	if s.err != nil {
		return s.err
	}
	s.saves = append(s.saves, c)
	s.runID = sink.RunIDFrom(ctx)
	return nil
}

func newTestService(t *testing.T, cfg *Config, opts ...Option) *Service {
	t.Helper()
	svc, err := New(cfg, quietLogger(), opts...)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestRun_FetchParseSave(t *testing.T) {
	// WHAT: A run parses the fetched document, saves it once and publishes it.
	// WHY: Core pipeline.
	sk := &recordingSink{}
	svc := newTestService(t, &Config{}, WithSource(&staticSource{text: readme}), WithSink(sk))

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sk.saves) != 1 {
		t.Fatalf("saves: got %d, want 1", len(sk.saves))
	}
	if !strings.HasPrefix(report.RunID, "run_") || sk.runID != report.RunID {
		t.Errorf("run id: report %q, sink %q", report.RunID, sk.runID)
	}

	want := linklist.Stats{Categories: 2, Subcategories: 3, Links: 4}
	if report.Stats != want {
		t.Errorf("stats: got %+v, want %+v", report.Stats, want)
	}
	if svc.Stats() != want {
		t.Errorf("snapshot stats: got %+v", svc.Stats())
	}
	if got := svc.Categories()[0].Title; got != "Platforms" {
		t.Errorf("first category: %q", got)
	}
	if svc.LastRun() != report {
		t.Error("last run not recorded")
	}
}

func TestRun_FetchErrorSkipsParseAndSave(t *testing.T) {
	// WHAT: A 404 aborts the run with ErrFetch and a FetchError; the sink is never called.
	// WHY: A failed fetch must not overwrite the previous result.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	sk := &recordingSink{}
	cfg := &Config{Source: source.Config{URL: srv.URL, URLValidator: func(string) error { return nil }}}
	svc := newTestService(t, cfg, WithSink(sk))

	_, err := svc.Run(context.Background())
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	var fe *source.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Fatalf("expected FetchError 404, got %v", err)
	}
	if len(sk.saves) != 0 {
		t.Errorf("sink called %d times", len(sk.saves))
	}
	if svc.LastRun() != nil {
		t.Error("failed run was recorded")
	}
}

func TestRun_SaveErrorKeepsSnapshot(t *testing.T) {
	src := &staticSource{text: "## One\n- a\n"}
	sk := &recordingSink{}
	svc := newTestService(t, &Config{}, WithSource(src), WithSink(sk))
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	src.text = "## Two\n## Three\n"
	sk.err = errors.New("disk full")
	_, err := svc.Run(context.Background())
	if !errors.Is(err, ErrSave) {
		t.Fatalf("expected ErrSave, got %v", err)
	}
	if cats := svc.Categories(); len(cats) != 1 || cats[0].Title != "One" {
		t.Errorf("snapshot changed: %+v", cats)
	}
}

func TestRun_FragmentBase(t *testing.T) {
	sk := &recordingSink{}
	cfg := &Config{Parser: ParserConfig{FragmentBase: "https://github.com/sindresorhus/awesome/"}}
	svc := newTestService(t, cfg, WithSource(&staticSource{text: readme}), WithSink(sk))
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	links := sk.saves[0][1].Subcategories[0].Links
	last := links[len(links)-1]
	if last.URL != "https://github.com/sindresorhus/awesome/#awesome" {
		t.Errorf("fragment not resolved: %+v", last)
	}
}

func TestRun_WritesJSONFile(t *testing.T) {
	// WHAT: With the default sink the result lands in a 4-space indented JSON file.
	// WHY: The file is the external interface of a run.
	path := filepath.Join(t.TempDir(), "awesome.json")
	cfg := &Config{Sink: sink.Config{Path: path}}
	svc := newTestService(t, cfg, WithSource(&staticSource{text: "## Foo\n- bar\n"}))
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "[\n    {\n        \"title\": \"Foo\",\n        \"subcategories\": [\n            {\n                \"title\": \"bar\",\n                \"links\": []\n            }\n        ]\n    }\n]\n"
	if string(raw) != want {
		t.Errorf("file:\n%s", raw)
	}
}

func TestRestore(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Sink: sink.Config{Format: "sqlite", Path: filepath.Join(dir, "links.db")}}

	first := newTestService(t, cfg, WithSource(&staticSource{text: readme}))
	if err := first.Restore(context.Background()); err != nil {
		t.Fatalf("restore on empty store: %v", err)
	}
	if len(first.Categories()) != 0 {
		t.Fatal("expected empty snapshot")
	}
	if _, err := first.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second := newTestService(t, &Config{Sink: cfg.Sink}, WithSource(&staticSource{err: errors.New("offline")}))
	if err := second.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := second.Stats(); got != first.Stats() {
		t.Errorf("restored stats %+v, want %+v", got, first.Stats())
	}
	if hits := second.Search("chrome", 5); len(hits) == 0 || hits[0].Title != "Chrome" {
		t.Errorf("search after restore: %+v", hits)
	}
}

func TestParse_DescriptionsOverride(t *testing.T) {
	svc := newTestService(t, &Config{}, WithSource(&staticSource{}), WithSink(&recordingSink{}))
	doc := "## Tools\n- [jq](https://jqlang.org) - JSON processor\n"

	if got := linklist.Count(svc.Parse(doc, false)); got.Links != 0 {
		t.Errorf("strict: %+v", got)
	}
	cats := svc.Parse(doc, true)
	if l := cats[0].Subcategories[0].Links[0]; l.Description != "JSON processor" {
		t.Errorf("descriptions: %+v", l)
	}
	if len(svc.Categories()) != 0 {
		t.Error("Parse must not touch the snapshot")
	}
}

func TestNew_UnknownSinkFormat(t *testing.T) {
	_, err := New(&Config{Sink: sink.Config{Format: "csv"}}, quietLogger())
	if !errors.Is(err, sink.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkdex.yaml")
	data := `log_level: debug
source:
  mode: file
  path: readme.md
  timeout: 5s
parser:
  descriptions: true
  fragment_base: https://github.com/sindresorhus/awesome
sink:
  format: sqlite
  path: out/links.db
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.defaults()
	if cfg.LogLevel != "debug" || cfg.Source.Mode != "file" || cfg.Source.Path != "readme.md" {
		t.Errorf("source: %+v", cfg)
	}
	if cfg.Source.Timeout.Seconds() != 5 {
		t.Errorf("timeout: %v", cfg.Source.Timeout)
	}
	if !cfg.Parser.Descriptions || cfg.Sink.Format != "sqlite" || cfg.Sink.Path != "out/links.db" {
		t.Errorf("parser/sink: %+v %+v", cfg.Parser, cfg.Sink)
	}
	if cfg.HTTP.Addr != ":8086" {
		t.Errorf("http addr default: %q", cfg.HTTP.Addr)
	}
}
