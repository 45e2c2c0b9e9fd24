package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/hypocal-explain/internal/application/explain"
	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
	shap "github.com/turtacn/hypocal-explain/internal/intelligence/hypocal_shap"
)

// view is a command result that renders as summary lines plus a table.
type view interface {
	Raw() interface{}
	Summary() []string
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult writes data to stdout in the requested format.
func PrintResult(cmd *cobra.Command, format string, data interface{}) error {
	w := cmd.OutOrStdout()
	raw := data
	if v, ok := data.(view); ok {
		raw = v.Raw()
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(raw)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(raw); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable:
		if v, ok := data.(view); ok && len(v.TableHeaders()) > 0 {
			_, err := io.WriteString(w, RenderTable(v.TableHeaders(), v.TableRows()))
			return err
		}
	}
	return printText(w, data)
}

func printText(w io.Writer, data interface{}) error {
	v, ok := data.(view)
	if !ok {
		_, err := fmt.Fprintf(w, "%+v\n", data)
		return err
	}
	for _, line := range v.Summary() {
		fmt.Fprintln(w, line)
	}
	if headers := v.TableHeaders(); len(headers) > 0 {
		if len(v.Summary()) > 0 {
			fmt.Fprintln(w)
		}
		_, err := io.WriteString(w, RenderTable(headers, v.TableRows()))
		return err
	}
	return nil
}

// RenderTable renders headers and rows as an aligned ASCII table.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			sb.WriteString(padRight(val, colWidths[i]))
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(headers))
	for i, w := range colWidths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

// padRight pads s with spaces to the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func pct(p float64) string { return strconv.FormatFloat(p*100, 'f', 2, 64) + "%" }

func num(x float64) string { return strconv.FormatFloat(x, 'g', 6, 64) }

func signed(x float64) string { return strconv.FormatFloat(x, 'f', 4, 64) }

func riskLine(est *shap.RiskEstimate) string {
	return fmt.Sprintf("Risk: %s (%s), 95%% CI %s to %s, variant %s",
		pct(est.Probability), est.Category, pct(est.CILower), pct(est.CIUpper), est.Variant)
}

func contributionRows(ranked []shap.FeatureContribution) [][]string {
	rows := make([][]string, 0, len(ranked))
	for i, c := range ranked {
		direction := "raises risk"
		if c.Value < 0 {
			direction = "lowers risk"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), string(c.Feature), signed(c.Value), direction})
	}
	return rows
}

var contributionHeaders = []string{"RANK", "FEATURE", "CONTRIBUTION", "DIRECTION"}

// ─────────────────────────────────────────────────────────────────────────────
// Views
// ─────────────────────────────────────────────────────────────────────────────

type riskView struct{ *shap.RiskEstimate }

func (v riskView) Raw() interface{} { return v.RiskEstimate }
func (v riskView) Summary() []string {
	return []string{
		riskLine(v.RiskEstimate),
		fmt.Sprintf("Base risk %s, log-odds %s", pct(v.BaseRisk), signed(v.LogOdds)),
	}
}
func (v riskView) TableHeaders() []string { return contributionHeaders }
func (v riskView) TableRows() [][]string  { return contributionRows(v.Contributions.Ranked()) }

type contributionsView struct {
	Ranked []shap.FeatureContribution `json:"ranked" yaml:"ranked"`
	Total  float64                    `json:"total" yaml:"total"`
}

func (v contributionsView) Raw() interface{} { return v }
func (v contributionsView) Summary() []string {
	return []string{fmt.Sprintf("Total contribution: %s", signed(v.Total))}
}
func (v contributionsView) TableHeaders() []string { return contributionHeaders }
func (v contributionsView) TableRows() [][]string  { return contributionRows(v.Ranked) }

type insightsView []shap.Insight

func (v insightsView) Raw() interface{} { return []shap.Insight(v) }
func (v insightsView) Summary() []string {
	out := make([]string, 0, len(v))
	for _, in := range v {
		out = append(out, in.Text)
	}
	return out
}
func (v insightsView) TableHeaders() []string { return nil }
func (v insightsView) TableRows() [][]string  { return nil }

type planView struct{ *shap.CounterfactualPlan }

func (v planView) Raw() interface{} { return v.CounterfactualPlan }
func (v planView) Summary() []string {
	status := "converged"
	if !v.Converged {
		status = "did not converge"
	}
	feasible := "feasible"
	if !v.Feasible {
		feasible = "not feasible"
	}
	return []string{
		fmt.Sprintf("Risk %s -> %s (target %s)", pct(v.OriginalRisk), pct(v.AchievedRisk), pct(v.TargetRisk)),
		fmt.Sprintf("Search %s after %d iterations, plan %s (total change %s)", status, v.Iterations, feasible, num(v.TotalChange)),
	}
}
func (v planView) TableHeaders() []string {
	return []string{"FEATURE", "ORIGINAL", "TARGET", "DELTA", "CHANGE"}
}
func (v planView) TableRows() [][]string {
	var rows [][]string
	for _, id := range clinical.AllFeatures() {
		ch, ok := v.Changes[id]
		if !ok {
			continue
		}
		rows = append(rows, []string{string(id), num(ch.Original), num(ch.Target), signed(ch.Delta),
			strconv.FormatFloat(ch.PercentDelta, 'f', 1, 64) + "%"})
	}
	return rows
}

type sensitivityView struct{ *shap.SensitivityReport }

func (v sensitivityView) Raw() interface{} { return v.SensitivityReport }
func (v sensitivityView) Summary() []string {
	return []string{fmt.Sprintf("Baseline risk %s, features varied by %s of their step range",
		pct(v.BaselineRisk), pct(v.RangeFraction))}
}
func (v sensitivityView) TableHeaders() []string {
	return []string{"FEATURE", "DOWN", "UP", "LOW", "HIGH", "RANGE"}
}
func (v sensitivityView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Entries))
	for _, e := range v.Entries {
		rows = append(rows, []string{string(e.Feature), num(e.DownValue), num(e.UpValue), pct(e.Low), pct(e.High), pct(e.Range)})
	}
	return rows
}

type stabilityView struct{ *shap.StabilityReport }

func (v stabilityView) Raw() interface{} { return v.StabilityReport }
func (v stabilityView) Summary() []string {
	lines := []string{fmt.Sprintf("%d samples, seed %d", v.SampleCount, v.Seed)}
	if unstable := v.UnstableFeatures(); len(unstable) > 0 {
		names := make([]string, len(unstable))
		for i, id := range unstable {
			names[i] = string(id)
		}
		lines = append(lines, "Unstable: "+strings.Join(names, ", "))
	}
	return lines
}
func (v stabilityView) TableHeaders() []string {
	return []string{"FEATURE", "MEAN", "STDDEV", "CV", "STABLE"}
}
func (v stabilityView) TableRows() [][]string {
	var rows [][]string
	for _, id := range clinical.AllFeatures() {
		s, ok := v.Features[id]
		if !ok {
			continue
		}
		rows = append(rows, []string{string(id), signed(s.Mean), signed(s.StdDev), num(s.CV), strconv.FormatBool(s.Stable)})
	}
	return rows
}

type trajectoryView struct{ *shap.Trajectory }

func (v trajectoryView) Raw() interface{} { return v.Trajectory }
func (v trajectoryView) Summary() []string {
	lines := []string{fmt.Sprintf("%d day horizon, variant %s", v.HorizonDays, v.Variant)}
	if v.Trend != nil {
		lines = append(lines, fmt.Sprintf("Trend %s per day (R² %s)", pct(v.Trend.SlopePerDay), num(v.Trend.R2)))
	}
	return lines
}
func (v trajectoryView) TableHeaders() []string {
	return []string{"DAY", "CALCIUM", "PROBABILITY", "CI", "CATEGORY"}
}
func (v trajectoryView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Points))
	for _, p := range v.Points {
		rows = append(rows, []string{strconv.Itoa(p.Day), num(p.Calcium), pct(p.Probability),
			pct(p.CILower) + " to " + pct(p.CIUpper), string(p.Category)})
	}
	return rows
}

type explanationView struct{ *explain.Explanation }

func (v explanationView) Raw() interface{} { return v.Explanation }
func (v explanationView) Summary() []string {
	lines := []string{riskLine(v.Risk)}
	for _, in := range v.Insights {
		lines = append(lines, "  "+in.Text)
	}
	if v.Counterfactual != nil {
		lines = append(lines, planView{v.Counterfactual}.Summary()...)
	}
	if v.Stability != nil {
		lines = append(lines, stabilityView{v.Stability}.Summary()...)
	}
	if v.Trajectory != nil {
		lines = append(lines, trajectoryView{v.Trajectory}.Summary()...)
	}
	return lines
}
func (v explanationView) TableHeaders() []string { return contributionHeaders }
func (v explanationView) TableRows() [][]string  { return contributionRows(v.Ranked) }

type featuresView []*clinical.FeatureSpec

func (v featuresView) Raw() interface{} {
	if len(v) == 1 {
		return v[0]
	}
	return []*clinical.FeatureSpec(v)
}
func (v featuresView) Summary() []string { return nil }
func (v featuresView) TableHeaders() []string {
	return []string{"ID", "NAME", "UNIT", "RANK", "MIN", "MAX", "DEFAULT"}
}
func (v featuresView) TableRows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, s := range v {
		rows = append(rows, []string{string(s.ID), s.Name, s.Unit, strconv.Itoa(s.Rank), num(s.Min), num(s.Max), num(s.Default)})
	}
	return rows
}

type modelView struct{ *shap.ModelCard }

func (v modelView) Raw() interface{}       { return v.ModelCard }
func (v modelView) Summary() []string      { return nil }
func (v modelView) TableHeaders() []string { return []string{"FIELD", "VALUE"} }
func (v modelView) TableRows() [][]string {
	return [][]string{
		{"variant", string(v.Variant)},
		{"base risk", pct(v.BaseRisk)},
		{"residual sd", num(v.ResidualSD)},
		{"roc auc", num(v.Performance.ROCAUC)},
		{"sensitivity", num(v.Performance.Sensitivity)},
		{"specificity", num(v.Performance.Specificity)},
		{"brier score", num(v.Performance.BrierScore)},
	}
}

type presetEntry struct {
	Name   string          `json:"name" yaml:"name"`
	Values clinical.Vector `json:"values" yaml:"values"`
}

type presetsView []presetEntry

func (v presetsView) Raw() interface{}  { return []presetEntry(v) }
func (v presetsView) Summary() []string { return nil }
func (v presetsView) TableHeaders() []string {
	headers := []string{"PRESET"}
	for _, id := range clinical.AllFeatures() {
		headers = append(headers, strings.ToUpper(string(id)))
	}
	return headers
}
func (v presetsView) TableRows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, p := range v {
		row := []string{p.Name}
		for _, id := range clinical.AllFeatures() {
			row = append(row, num(p.Values[id]))
		}
		rows = append(rows, row)
	}
	return rows
}

//Personal.AI order the ending
