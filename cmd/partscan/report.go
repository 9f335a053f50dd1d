package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/chazu/partscan/pkg/dfm"
	"github.com/fatih/color"
)

func writeJSON(w io.Writer, reports []partReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if reports == nil {
		reports = []partReport{}
	}
	return enc.Encode(reports)
}

// writeReport prints a human readable summary of every part.
func writeReport(w io.Writer, reports []partReport) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	if len(reports) == 0 {
		fmt.Fprintf(w, "%s\n", gray("No parts found"))
		return
	}

	for _, r := range reports {
		fmt.Fprintf(w, "\n%s %s\n", cyan("=== "+r.Name+" ==="), gray(r.File))

		if !r.OK() {
			fmt.Fprintf(w, "  %s\n", red("✗ failed"))
			for _, e := range r.Errors {
				fmt.Fprintf(w, "    %s\n", e)
			}
			continue
		}

		f := r.Features
		fmt.Fprintf(w, "  Bounding box:  %.1f × %.1f × %.1f mm\n", f.BoundingBoxX, f.BoundingBoxY, f.BoundingBoxZ)
		fmt.Fprintf(w, "  Volume:        %.1f mm³\n", f.Volume)
		fmt.Fprintf(w, "  Through holes: %d\n", f.ThroughHoleCount)
		if f.BlindHoleCount > 0 {
			fmt.Fprintf(w, "  Blind holes:   %d (depth/diameter avg %.2f, max %.2f)\n",
				f.BlindHoleCount, f.BlindHoleAvgDepthToDiameter, f.BlindHoleMaxDepthToDiameter)
		} else {
			fmt.Fprintf(w, "  Blind holes:   0\n")
		}
		if f.PocketCount > 0 {
			fmt.Fprintf(w, "  Pockets:       %d (%.1f mm³, depth avg %.1f, max %.1f mm)\n",
				f.PocketCount, f.PocketTotalVolume, f.PocketAvgDepth, f.PocketMaxDepth)
		} else {
			fmt.Fprintf(w, "  Pockets:       0\n")
		}
		if f.NonStandardHoleCount > 0 {
			fmt.Fprintf(w, "  Non-standard:  %d holes\n", f.NonStandardHoleCount)
		}

		if len(r.Issues) == 0 {
			fmt.Fprintf(w, "  %s\n", green("✓ no DFM issues"))
			continue
		}
		fmt.Fprintf(w, "  DFM issues:\n")
		for _, i := range r.Issues {
			paint := gray
			switch i.Severity {
			case dfm.SeverityCritical:
				paint = red
			case dfm.SeverityWarning:
				paint = yellow
			}
			fmt.Fprintf(w, "    %s %s\n", paint("["+string(i.Severity)+"]"), i.Message)
		}
	}
}
