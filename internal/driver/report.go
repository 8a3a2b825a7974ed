package driver

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Output formats understood by Report.Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Report aggregates the results of a run.
type Report struct {
	Results         []Result      `json:"results" yaml:"results"`
	TotalOps        int           `json:"total_ops" yaml:"total_ops"`
	Failed          int           `json:"failed" yaml:"failed"`
	MeanUtilization float64       `json:"mean_utilization" yaml:"mean_utilization"`
	Elapsed         time.Duration `json:"elapsed_ns" yaml:"elapsed"`
	OpsPerSec       float64       `json:"ops_per_sec" yaml:"ops_per_sec"`
}

// NewReport aggregates results. Failed traces count towards Failed only.
func NewReport(results []Result) *Report {
	r := &Report{Results: results}
	ok := 0
	for _, res := range results {
		if res.Error != "" {
			r.Failed++
			continue
		}
		ok++
		r.TotalOps += res.Ops
		r.MeanUtilization += res.Utilization
		r.Elapsed += res.Elapsed
	}
	if ok > 0 {
		r.MeanUtilization /= float64(ok)
	}
	if secs := r.Elapsed.Seconds(); secs > 0 {
		r.OpsPerSec = float64(r.TotalOps) / secs
	}
	return r
}

// Write renders the report in the given format. The printer localizes
// numbers in text output.
func (r *Report) Write(w io.Writer, format string, p *message.Printer) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return r.writeText(w, p)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func (r *Report) writeText(w io.Writer, p *message.Printer) error {
	p.Fprintf(w, "%-24s %10s %12s %12s %7s %14s\n", "TRACE", "OPS", "PEAK", "HEAP", "UTIL", "OPS/SEC")
	for _, res := range r.Results {
		if res.Error != "" {
			p.Fprintf(w, "%-24s FAILED: %s\n", res.Trace, res.Error)
			continue
		}
		p.Fprintf(w, "%-24s %10d %12d %12d %6.1f%% %14.0f\n",
			res.Trace, res.Ops, res.PeakPayload, res.HeapSize, res.Utilization*100, res.OpsPerSec)
	}
	_, err := p.Fprintf(w, "%-24s %10d %12s %12s %6.1f%% %14.0f\n",
		"TOTAL", r.TotalOps, "", "", r.MeanUtilization*100, r.OpsPerSec)
	if err == nil && r.Failed > 0 {
		_, err = p.Fprintf(w, "%d trace(s) failed\n", r.Failed)
	}
	return err
}
