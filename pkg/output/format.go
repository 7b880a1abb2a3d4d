// Package output provides utilities for formatting and displaying goal seek results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/adbudget/internal/solver"
	"github.com/iwvelando/adbudget/pkg/constants"
	"github.com/iwvelando/adbudget/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Entry is one solved request: the input as given and the solver's result.
type Entry struct {
	Name   string        `json:"name"`
	Input  solver.Input  `json:"input"`
	Result solver.Result `json:"result"`
}

// Write renders entries to w in the named output format.
func Write(w io.Writer, outputFormat string, entries []Entry) error {
	switch outputFormat {
	case constants.OutputFormatPretty, "":
		return PrettyFormat(w, entries)
	case constants.OutputFormatCSV:
		return CsvFormat(w, entries)
	case constants.OutputFormatJSON:
		return JSONFormat(w, entries)
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, entries []Entry) error {
	p := message.NewPrinter(language.English)
	for i, entry := range entries {
		res := entry.Result
		lines := []struct {
			label string
			value string
		}{
			{"Max budget", format.Currency(entry.Input.MaxBudget)},
			{"New ad budget", format.Currency(res.NewAdBudget)},
			{"Total spent", format.Currency(res.TotalSpent)},
			{"Headroom", format.Currency(res.Headroom)},
			{"Iterations", p.Sprintf("%d", res.Iterations)},
			{"Status", string(res.Status)},
		}

		if _, err := p.Fprintf(w, "--- Results for %s ---\n", entry.Name); err != nil {
			return err
		}
		for _, line := range lines {
			if _, err := p.Fprintf(w, "%-13s | %s\n", line.label, line.value); err != nil {
				return err
			}
		}
		if len(entries) > 1 && i < len(entries)-1 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// CsvFormat outputs in comma-separated value format. Amounts are written
// with full precision so the output can be re-checked exactly.
func CsvFormat(w io.Writer, entries []Entry) error {
	if _, err := fmt.Fprintf(w, `"name","maxBudget","newAdBudget","totalSpent","headroom","iterations","status"`+"\n"); err != nil {
		return err
	}
	for _, entry := range entries {
		res := entry.Result
		if _, err := fmt.Fprintf(w, `"%s","%s","%s","%s","%s","%d","%s"`+"\n",
			csvEscape(entry.Name),
			entry.Input.MaxBudget.String(),
			res.NewAdBudget.String(),
			res.TotalSpent.String(),
			res.Headroom.String(),
			res.Iterations,
			res.Status,
		); err != nil {
			return err
		}
	}
	return nil
}

// csvEscape doubles embedded quotes so a field stays inside its quotes.
func csvEscape(field string) string {
	return strings.ReplaceAll(field, `"`, `""`)
}

// JSONFormat outputs entries as an indented JSON array.
func JSONFormat(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}
