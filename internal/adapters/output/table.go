// internal/adapters/output/table.go
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"ingestrouter/internal/adapters/event"
	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/platform/classifier"
	"ingestrouter/internal/platform/ui"
)

// RulesTable imprime las reglas de sitio y de pipeline en orden de evaluación.
func RulesTable(w io.Writer, c *classifier.Classifier) error {
	data := pterm.TableData{{"#", "Category", "Key", "Pattern"}}
	for i, r := range c.Sites().Rules() {
		data = append(data, []string{fmt.Sprintf("%d", i+1), "site", r.Key, r.Pattern})
	}
	for i, r := range c.Kinds().Rules() {
		data = append(data, []string{fmt.Sprintf("%d", i+1), "pipeline", r.Key, r.Pattern})
	}

	return pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(data).
		WithWriter(w).
		Render()
}

// ClassificationTable imprime el resultado de clasificar cada nombre.
// Otras reglas que también hicieron match se listan entre paréntesis.
func ClassificationTable(w io.Writer, results []domain.Classification) error {
	data := pterm.TableData{{"File", "Location", "Pipeline", "Status"}}
	for _, c := range results {
		status := ui.StatusSkipped
		if c.Matched() {
			status = ui.StatusSucceeded
		}
		data = append(data, []string{
			c.Filename,
			withShadowed(string(c.Site), keys(c.SiteCandidates)),
			withShadowed(string(c.Kind), keys(c.KindCandidates)),
			matchLabel(status),
		})
	}

	return pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(data).
		WithWriter(w).
		Render()
}

// ReportsTable imprime un resumen por batch.
func ReportsTable(w io.Writer, reports []event.Report) error {
	data := pterm.TableData{{"Source", "Batch", "Pipeline", "Location", "Files", "Outcome", "Error"}}
	for _, r := range reports {
		data = append(data, []string{
			r.Source,
			shortID(r.BatchID),
			r.Pipeline,
			r.Location,
			fmt.Sprintf("%d", len(r.Files)),
			ui.ParseStatus(r.Outcome).Label(),
			truncate(r.Error, 60),
		})
	}

	if err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(data).
		WithWriter(w).
		Render(); err != nil {
		return err
	}

	counts := map[string]int{}
	for _, r := range reports {
		counts[r.Outcome]++
	}
	parts := make([]string, 0, len(counts))
	for _, o := range []string{"succeeded", "failed", "skipped", "aborted", "idle"} {
		if counts[o] > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", o, counts[o]))
		}
	}
	_, err := fmt.Fprintf(w, "\nBatches: %d (%s)\n", len(reports), strings.Join(parts, ", "))
	return err
}

func matchLabel(s ui.Status) string {
	if s == ui.StatusSucceeded {
		return s.Style().Sprint(s.Symbol() + " matched")
	}
	return s.Style().Sprint(s.Symbol() + " unmatched")
}

func withShadowed(first string, all []string) string {
	if first == "" {
		return "-"
	}
	if len(all) <= 1 {
		return first
	}
	return fmt.Sprintf("%s (%s)", first, strings.Join(all[1:], ", "))
}

func keys[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
