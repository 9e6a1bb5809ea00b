package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/KaramelBytes/sensordash-cli/internal/analysis"
	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
	"github.com/KaramelBytes/sensordash-cli/internal/export"
	"github.com/KaramelBytes/sensordash-cli/internal/parser"
	"github.com/KaramelBytes/sensordash-cli/internal/render"
)

type datasetInfo struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	TimeColumn string             `json:"time_column"`
	Rows       int                `json:"rows"`
	Columns    []dataset.Variable `json:"columns"`
	Extra      []string           `json:"extra,omitempty"`
}

type renderResponse struct {
	*render.Outputs
	Dataset datasetInfo      `json:"dataset"`
	Above   []dataset.Record `json:"above"`
	Below   []dataset.Record `json:"below"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ds, out, ok := s.run(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, renderResponse{
		Outputs: out,
		Dataset: datasetInfo{
			ID:         ds.ID(),
			Name:       ds.Name(),
			TimeColumn: ds.TimeColumn(),
			Rows:       ds.Len(),
			Columns:    ds.Columns(),
			Extra:      ds.Extra(),
		},
		Above: out.Above.Records(),
		Below: out.Below.Records(),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	_, out, ok := s.run(w, r)
	if !ok {
		return
	}
	body := out.Export
	if format != export.FormatCSV {
		if body, err = export.Encode(out.Above, format); err != nil {
			s.log.Error("export %s: %v", format, err)
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	w.Header().Set("Content-Type", format.MediaType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ds, out, ok := s.run(w, r)
	if !ok {
		return
	}
	rep, err := render.Report(ds, out, analysis.DefaultSampleRows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rep.HTML())
}

// run ingests the upload and renders it. When it returns false the
// response has already been written.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, *render.Outputs, bool) {
	p, err := s.params(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opt.MaxUploadBytes)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", tooBig.Limit))
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			writeJSON(w, http.StatusOK, map[string]string{"info": render.LoadPrompt})
		default:
			writeError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		}
		return nil, nil, false
	}
	defer file.Close()

	ds, err := parser.ReadUpload(hdr.Filename, file, s.opt.Ingest).Unwrap()
	if err != nil {
		s.log.Warn("ingest %s: %v", hdr.Filename, err)
		writeError(w, http.StatusUnprocessableEntity, err)
		return nil, nil, false
	}
	s.log.With("dataset", ds.ID()).Debug("ingested %s: %d rows", ds.Name(), ds.Len())

	out, err := render.Render(ds, p)
	if err != nil {
		writeError(w, statusFor(err), err)
		return nil, nil, false
	}
	return ds, out, true
}

// params merges query parameters over the configured defaults.
func (s *Server) params(r *http.Request) (render.Params, error) {
	p := s.opt.Defaults
	q := r.URL.Query()
	if v := q.Get("variable"); v != "" {
		p.Variable = render.Selection(v)
	}
	if v := q.Get("chart"); v != "" {
		p.ChartKind = render.ChartKind(v)
	}
	if v := q.Get("stat"); v != "" {
		p.StatVariable = render.VariableLabel(v)
	}
	if v := q.Get("filter"); v != "" {
		p.FilterVariable = render.VariableLabel(v)
	}
	for _, t := range []struct {
		key string
		dst **float64
	}{{"min", &p.MinThreshold}, {"max", &p.MaxThreshold}} {
		raw := q.Get(t.key)
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, &render.ParamError{Field: t.key, Value: raw, Err: errors.New("not a number")}
		}
		*t.dst = &f
	}
	if v := q.Get("bins"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, &render.ParamError{Field: "bins", Value: v, Err: errors.New("not an integer")}
		}
		p.Bins = n
	}
	return p, p.Validate()
}

func statusFor(err error) int {
	var pe *render.ParamError
	var ie *dataset.IngestError
	switch {
	case errors.As(err, &ie):
		return http.StatusUnprocessableEntity
	case errors.As(err, &pe), errors.Is(err, dataset.ErrInvalidVariable):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b, _ = json.Marshal(map[string]string{"error": fmt.Sprintf("encode response: %v", err)})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
