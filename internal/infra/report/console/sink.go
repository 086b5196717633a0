// Package console implements the bridgescan.ReportSink interface, rendering
// scan reports as fixed-width tables on a writer.
package console

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/gabapcia/bridgewatch/internal/attribution"
	"github.com/gabapcia/bridgewatch/internal/bridgescan"
)

// sink renders reports to a writer, typically stdout.
type sink struct {
	w io.Writer
}

// Compile-time assertion that sink implements bridgescan.ReportSink.
var _ bridgescan.ReportSink = (*sink)(nil)

// New creates a console report sink writing to w.
func New(w io.Writer) *sink {
	return &sink{w: w}
}

// Emit implements the bridgescan.ReportSink interface. Rows are sorted by
// group then asset so repeated runs render deterministically.
func (s *sink) Emit(_ context.Context, report bridgescan.Report) error {
	header := fmt.Sprintf("%s report %s (%s)", report.Kind, report.RunID, report.Window)
	if report.Partial {
		header += " [PARTIAL]"
	}

	if _, err := fmt.Fprintf(s.w, "%s\nscanned=%d matched=%d\n\n", header, report.Scanned, report.Matched); err != nil {
		return err
	}

	keys := make([]attribution.Key, 0, len(report.Entries))
	for key := range report.Entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Group != keys[j].Group {
			return keys[i].Group < keys[j].Group
		}
		return keys[i].Asset < keys[j].Asset
	})

	tw := tabwriter.NewWriter(s.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tASSET\tAMOUNT\tUSD VALUE\n", report.GroupLabel)

	for _, key := range keys {
		entry := report.Entries[key]
		fmt.Fprintf(tw, "%s\t%s\t%.8f\t$%.2f\n", key.Group, key.Asset, entry.Amount, entry.USD)
	}

	fmt.Fprintf(tw, "TOTAL\t\t\t$%.2f\n", report.TotalUSD)

	return tw.Flush()
}
