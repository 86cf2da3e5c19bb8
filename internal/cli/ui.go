package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/bannerforge/bannerforge/pkg/job"
)

var (
	colorCyan  = lipgloss.Color("36")  // teal, primary values
	colorGreen = lipgloss.Color("35")  // success
	colorRed   = lipgloss.Color("167") // soft red, failures
	colorDim   = lipgloss.Color("240") // muted text
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleFailure = lipgloss.NewStyle().Foreground(colorRed)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
)

// printSummary writes a human-readable batch summary to w.
func printSummary(w io.Writer, j *job.Job, outDir string) {
	fmt.Fprintln(w, styleTitle.Render("Batch render finished"))
	fmt.Fprintf(w, "  job:       %s\n", styleNumber.Render(j.ID))
	fmt.Fprintf(w, "  completed: %s\n", styleSuccess.Render(fmt.Sprintf("%d/%d", j.CompletedAssets, j.TotalAssets)))
	if j.FailedAssets > 0 {
		fmt.Fprintf(w, "  failed:    %s\n", styleFailure.Render(fmt.Sprintf("%d", j.FailedAssets)))
		for _, a := range j.Assets {
			if a.Status == job.AssetFailed {
				fmt.Fprintf(w, "    %s\n", styleDim.Render(fmt.Sprintf("row %d: %s", a.RowIndex, a.Error)))
			}
		}
	}
	fmt.Fprintf(w, "  output:    %s\n", styleDim.Render(outDir))
}
