// Command guard is a thin CLI driver over the guard package (spec.md §8):
// it globs rule files and data files with doublestar, parses, decodes,
// evaluates, and prints either a single-line summary or a JSON report
// tree. Follows the teacher's cmd/cli flag-based shape; CLI plumbing is
// explicitly out of core scope (spec.md §1), so nothing here is part of
// the evaluator's correctness surface.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	guard "github.com/ritamzico/guard"
)

func main() {
	rulesGlob := flag.String("rules", "", "glob pattern for Guard rule files (required)")
	dataGlob := flag.String("data", "", "glob pattern for JSON/YAML data files (required)")
	paramsPath := flag.String("params", "", "path to a JSON/YAML file merged onto each document as InputParameters")
	format := flag.String("format", "text", "output format: text or json")
	flag.Parse()

	if *rulesGlob == "" || *dataGlob == "" {
		fmt.Fprintln(os.Stderr, "usage: guard -rules <glob> -data <glob> [-params <file>] [-format text|json]")
		os.Exit(2)
	}

	rulePaths, err := doublestar.FilepathGlob(*rulesGlob)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -rules pattern %q: %v\n", *rulesGlob, err)
		os.Exit(1)
	}
	if len(rulePaths) == 0 {
		fmt.Fprintf(os.Stderr, "no rule files matched %q\n", *rulesGlob)
		os.Exit(1)
	}

	dataPaths, err := doublestar.FilepathGlob(*dataGlob)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -data pattern %q: %v\n", *dataGlob, err)
		os.Exit(1)
	}
	if len(dataPaths) == 0 {
		fmt.Fprintf(os.Stderr, "no data files matched %q\n", *dataGlob)
		os.Exit(1)
	}

	var source strings.Builder
	for _, p := range rulePaths {
		b, err := os.ReadFile(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading %s: %v\n", p, err)
			os.Exit(1)
		}
		source.Write(b)
		source.WriteByte('\n')
	}

	rs, diags := guard.Parse(source.String())
	if len(diags) != 0 {
		for _, d := range diags {
			fmt.Fprintf(os.Stderr, "%s: %s (line %d, col %d)\n", d.Kind, d.Message, d.Pos.Line, d.Pos.Column)
		}
		os.Exit(1)
	}

	var opts []guard.EvalOptions
	if *paramsPath != "" {
		raw, err := os.ReadFile(*paramsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading %s: %v\n", *paramsPath, err)
			os.Exit(1)
		}
		params, err := guard.ParseData(raw, formatFor(*paramsPath))
		if err != nil {
			fmt.Fprintf(os.Stderr, "parsing %s: %v\n", *paramsPath, err)
			os.Exit(1)
		}
		opts = append(opts, guard.EvalOptions{InputParameters: params})
	}

	failed := false
	for _, path := range dataPaths {
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading %s: %v\n", path, err)
			failed = true
			continue
		}

		rpt, err := rs.EvaluateBytes(raw, formatFor(path), opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "evaluating %s: %v\n", path, err)
			failed = true
			continue
		}
		if rpt.Status == guard.Fail {
			failed = true
		}

		if *format == "json" {
			b, err := guard.MarshalReportJSON(rpt)
			if err != nil {
				fmt.Fprintf(os.Stderr, "marshaling report for %s: %v\n", path, err)
				failed = true
				continue
			}
			fmt.Printf("%s: %s\n", path, b)
			continue
		}

		fmt.Printf("%s: %s\n", path, rpt.Status)
		for _, r := range rpt.Rules {
			fmt.Printf("  %s: %s\n", r.Name, r.Outcome)
		}
	}

	if failed {
		os.Exit(1)
	}
}

func formatFor(path string) guard.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return guard.YAML
	default:
		return guard.JSON
	}
}
