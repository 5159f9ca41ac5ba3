// Tracerender prints the timeline of a recorded run without a running
// service. It reads the run record and an optional logbook dump from JSON
// files.
//
//	tracerender -trace run.json -logbook logbook.json -lang de-DE
//	tracerender -trace run.json -format dot | dot -Tsvg > run.svg
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-trace/internal/describe"
	"github.com/nerrad567/gray-logic-trace/internal/graph"
	"github.com/nerrad567/gray-logic-trace/internal/i18n"
	"github.com/nerrad567/gray-logic-trace/internal/logbook"
	"github.com/nerrad567/gray-logic-trace/internal/timeline"
	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatDOT  = "dot"
)

var errTraceRequired = errors.New("-trace is required")

type options struct {
	tracePath   string
	logbookPath string
	lang        string
	timezone    string
	filter      string
	format      string
}

func main() {
	opts, err := parseOptions(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	if err := run(opts, os.Stdout); err != nil {
		log.Fatalf("tracerender: %v", err)
	}
}

func parseOptions(fs *flag.FlagSet, args []string) (options, error) {
	var opts options
	fs.StringVar(&opts.tracePath, "trace", "", "run record JSON file")
	fs.StringVar(&opts.logbookPath, "logbook", "", "logbook entries JSON file (array)")
	fs.StringVar(&opts.lang, "lang", i18n.BaseLocale, "output locale")
	fs.StringVar(&opts.timezone, "tz", "UTC", "IANA zone for absolute times")
	fs.StringVar(&opts.filter, "filter", "", "logbook filter expression")
	fs.StringVar(&opts.format, "format", formatText, "output format: text, json or dot")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.tracePath == "" {
		return options{}, errTraceRequired
	}
	switch opts.format {
	case formatText, formatJSON, formatDOT:
	default:
		return options{}, fmt.Errorf("unknown format %q", opts.format)
	}
	return opts, nil
}

func run(opts options, out io.Writer) error {
	rec, err := readTrace(opts.tracePath)
	if err != nil {
		return err
	}
	bundle, err := i18n.Load()
	if err != nil {
		return fmt.Errorf("loading message catalogs: %w", err)
	}

	if opts.format == formatDOT {
		dot, err := graph.Render(rec, describe.New(bundle.Localizer(opts.lang)).Describe)
		if err != nil {
			return fmt.Errorf("rendering graph: %w", err)
		}
		_, err = io.WriteString(out, dot)
		return err
	}

	entries, err := readLogbook(opts.logbookPath)
	if err != nil {
		return err
	}
	location, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("loading zone %q: %w", opts.timezone, err)
	}
	filter, err := logbook.CompileFilter(opts.filter)
	if err != nil {
		return err
	}

	svc, err := timeline.NewService(nil, nil, bundle, timeline.Config{
		DefaultLocale: opts.lang,
		Location:      location,
		Filter:        filter,
	})
	if err != nil {
		return err
	}
	result, err := svc.Render(rec, entries, opts.lang)
	if err != nil {
		return err
	}

	if opts.format == formatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return writeText(out, result.Entries)
}

func readTrace(path string) (*trace.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	var rec trace.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding trace %s: %w", path, err)
	}
	return &rec, nil
}

// readLogbook returns nil for an empty path.
func readLogbook(path string) ([]trace.LogEntry, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading logbook: %w", err)
	}
	var entries []trace.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding logbook %s: %w", path, err)
	}
	return entries, nil
}

// writeText prints one bullet per entry. Folded logbook lines follow an
// indented count.
func writeText(out io.Writer, entries []trace.Entry) error {
	var b strings.Builder
	for _, e := range entries {
		inline, hidden := e.Fold()
		marker := "-"
		switch {
		case e.Kind == trace.KindTimeGap:
			marker = "~"
		case e.Error || e.Kind == trace.KindPathError:
			marker = "!"
		case e.Disabled:
			marker = "x"
		}
		for i, line := range inline {
			if i == 0 {
				fmt.Fprintf(&b, "%s %s\n", marker, line)
				continue
			}
			fmt.Fprintf(&b, "  %s\n", line)
		}
		if len(hidden) > 0 {
			fmt.Fprintf(&b, "  (+%d more)\n", len(hidden))
			for _, line := range hidden {
				fmt.Fprintf(&b, "    %s\n", line)
			}
		}
	}
	_, err := io.WriteString(out, b.String())
	return err
}
