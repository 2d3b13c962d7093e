package httpapi

import (
	"net/http"
	"strconv"

	"github.com/obs-infancia/sinanetl/internal/query"
)

// casesResponse is the tabular envelope the dashboard renders. Rows are
// string cells aligned with Columns; empty string means a null cell.
type casesResponse struct {
	Status  query.Status `json:"status"`
	Columns []string     `json:"columns"`
	Rows    [][]string   `json:"rows"`
}

func filterFromQuery(r *http.Request) query.Filter {
	q := r.URL.Query()
	f := query.Filter{
		UF:           q.Get("uf"),
		Municipality: q.Get("municipio"),
		ViolenceType: q.Get("tipo"),
	}
	if v, err := strconv.Atoi(q.Get("year_min")); err == nil {
		f.YearMin = v
	}
	if v, err := strconv.Atoi(q.Get("year_max")); err == nil {
		f.YearMax = v
	}
	return f
}

func (s *Server) handleCases(w http.ResponseWriter, r *http.Request) {
	res := s.adapter.FilteredCases(r.Context(), filterFromQuery(r))

	out := casesResponse{Status: res.Status, Columns: res.Columns, Rows: [][]string{}}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	for i := range res.Rows {
		row := make([]string, len(res.Columns))
		for j, col := range res.Columns {
			row[j] = res.Rows[i].Value(col)
		}
		out.Rows = append(out.Rows, row)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	years := s.adapter.Years(r.Context())
	if years == nil {
		years = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"years": years})
}

func (s *Server) handleUFs(w http.ResponseWriter, r *http.Request) {
	ufs := s.adapter.UFs(r.Context())
	if ufs == nil {
		ufs = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ufs": ufs})
}

func (s *Server) handleMunicipalities(w http.ResponseWriter, r *http.Request) {
	municipios := s.adapter.Municipalities(r.Context())
	if municipios == nil {
		municipios = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"municipios": municipios})
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	by := r.URL.Query().Get("by")
	if !query.Groupable(by) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "column cannot be aggregated: " + by})
		return
	}
	buckets, status := s.adapter.Aggregate(r.Context(), by, filterFromQuery(r))
	if buckets == nil {
		buckets = []query.Bucket{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"by":      by,
		"buckets": buckets,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"mode":   s.adapter.Mode().String(),
	})
}
