package render

import (
	"github.com/KaramelBytes/sensordash-cli/internal/analysis"
	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
)

// LoadPrompt is shown instead of outputs while no file has been provided.
const LoadPrompt = "📂 Load a CSV file to begin the analysis."

// Report builds the analysis report for ds, appends the threshold
// counts of out and the measurement site.
func Report(ds *dataset.Dataset, out *Outputs, sampleRows int) (*analysis.Report, error) {
	rep, err := analysis.NewReport(ds, sampleRows)
	if err != nil {
		return nil, err
	}
	site := analysis.DefaultSite()
	rep.Site = &site
	if out == nil {
		return rep, nil
	}
	v := out.Params.FilterVariable
	rep.Filters = append(rep.Filters,
		analysis.FilterCount{Label: "above", Variable: v, Op: ">", Threshold: out.MinThreshold, Rows: out.Above.Len()},
		analysis.FilterCount{Label: "below", Variable: v, Op: "<", Threshold: out.MaxThreshold, Rows: out.Below.Len()},
	)
	return rep, nil
}
