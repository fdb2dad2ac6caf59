package breakend

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alexiswl/gridss/internal/assembly"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// WriteCalls writes one JSON object per call
func WriteCalls(w io.Writer, calls []assembly.Call) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, c := range calls {
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("failed to write call %s: %w", c.ID, err)
		}
	}
	return bw.Flush()
}

// WriteMetrics writes everything gathered by g in the Prometheus text format
func WriteMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
