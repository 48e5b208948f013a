// Package report renders the analysis result for the terminal. The core
// engine never formats anything; everything presentational lives here.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"ckd-progress/internal/progress"
)

const noData = "n/a"

// Render writes the full run report: the per-transition summary table,
// population counts and a sample of per-patient timelines.
func Render(w io.Writer, res progress.Result, sample int) error {
	if err := renderSummary(w, res); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nTotal patients with any CKD-related code: %d\n", res.PopulationCount)
	fmt.Fprintf(w, "Total patients with a defined CKD stage (1-6): %d\n", res.StagedCount)

	return renderPatients(w, res, sample)
}

func renderSummary(w io.Writer, res progress.Result) error {
	fmt.Fprintln(w, "--- CKD Stage Progression Summary ---")
	if len(res.Summaries) == 0 {
		fmt.Fprintln(w, "No transitions configured.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Transition\tMean (days)\tMedian (days)\tMode(s)\tMode Freq\tObserved")
	for _, s := range res.Summaries {
		if !s.HasData() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t0\t0\n", s.Label, noData, noData, noData)
			continue
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%s\t%d\t%d\n",
			s.Label, s.Mean, s.Median, joinModes(s.Modes), s.ModeFrequency, s.Count)
	}
	return tw.Flush()
}

func renderPatients(w io.Writer, res progress.Result, sample int) error {
	if sample <= 0 || len(res.Patients) == 0 {
		return nil
	}

	fmt.Fprintln(w, "\n--- Patient-Specific Stage Transitions (sample) ---")
	shown := 0
	for _, p := range res.Patients {
		if shown >= sample {
			break
		}
		fmt.Fprintf(w, "\nPatient %s\n", p.PatientID)
		fmt.Fprintln(w, "  Diagnosed stages (earliest dates, chronological):")
		for _, sd := range p.Chronological {
			fmt.Fprintf(w, "    %s on %s\n", sd.Stage, sd.Date.Format("2006-01-02"))
		}
		if len(p.Transitions) == 0 {
			fmt.Fprintln(w, "  No forward progressions along the configured path.")
		} else {
			fmt.Fprintln(w, "  Progression durations:")
			for _, o := range p.Transitions {
				fmt.Fprintf(w, "    %s: %d days\n", o.Label, o.Days)
			}
		}
		shown++
	}
	if remaining := len(res.Patients) - shown; remaining > 0 {
		fmt.Fprintf(w, "\n... and %d more patients with CKD stage data.\n", remaining)
	}
	return nil
}

func joinModes(modes []int) string {
	parts := make([]string, len(modes))
	for i, m := range modes {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, ", ")
}
