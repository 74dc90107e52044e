package monitoring

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sarchlab/eventreport/datarecording"
	"github.com/sarchlab/eventreport/tracing"
)

const maxPageSize = 1000

type page struct {
	limit, offset int
}

func parsePage(r *http.Request) (page, error) {
	p := page{limit: 100}

	var err error

	if s := r.URL.Query().Get("limit"); s != "" {
		p.limit, err = strconv.Atoi(s)
		if err != nil || p.limit <= 0 || p.limit > maxPageSize {
			return page{}, fmt.Errorf("invalid limit %q", s)
		}
	}

	if s := r.URL.Query().Get("offset"); s != "" {
		p.offset, err = strconv.Atoi(s)
		if err != nil || p.offset < 0 {
			return page{}, fmt.Errorf("invalid offset %q", s)
		}
	}

	return p, nil
}

type activitiesRsp struct {
	Total      int                    `json:"total"`
	Activities []*tracing.ActivityRow `json:"activities"`
}

func (m *Monitor) listActivities(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		m.writeError(w, http.StatusBadRequest, err)
		return
	}

	params := datarecording.QueryParams{
		OrderBy: []datarecording.Order{datarecording.Asc("StartTime")},
		Limit:   p.limit,
		Offset:  p.offset,
	}

	query := r.URL.Query()
	if name := query.Get("name"); name != "" {
		params.Filters = append(params.Filters, datarecording.Eq("Name", name))
	}

	if status := query.Get("status"); status != "" {
		params.Filters = append(params.Filters,
			datarecording.Eq("Status", status))
	}

	rows, total, err := m.reader.Query(r.Context(), tracing.ActivityTable, params)
	if err != nil {
		m.writeError(w, http.StatusInternalServerError, err)
		return
	}

	rsp := activitiesRsp{
		Total:      total,
		Activities: make([]*tracing.ActivityRow, 0, len(rows)),
	}
	for _, row := range rows {
		rsp.Activities = append(rsp.Activities, row.(*tracing.ActivityRow))
	}

	m.writeJSON(w, http.StatusOK, rsp)
}

// ActivityStats summarizes the recorded activities of one name. Durations
// are in seconds.
type ActivityStats struct {
	Name        string  `json:"name"`
	Count       int     `json:"count"`
	Finished    int     `json:"finished"`
	Unfinished  int     `json:"unfinished"`
	TotalTime   float64 `json:"total_time"`
	AverageTime float64 `json:"average_time"`
}

func (m *Monitor) activityDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	rows, _, err := m.reader.Query(r.Context(), tracing.ActivityTable,
		datarecording.QueryParams{
			Filters: []datarecording.Filter{datarecording.Eq("Name", name)},
		})
	if err != nil {
		m.writeError(w, http.StatusInternalServerError, err)
		return
	}

	stats := summarize(rows)
	if len(stats) == 0 {
		m.writeError(w, http.StatusNotFound,
			errors.New("no activity named "+name))
		return
	}

	m.writeJSON(w, http.StatusOK, stats[0])
}

func (m *Monitor) listStats(w http.ResponseWriter, r *http.Request) {
	rows, _, err := m.reader.Query(r.Context(), tracing.ActivityTable,
		datarecording.QueryParams{})
	if err != nil {
		m.writeError(w, http.StatusInternalServerError, err)
		return
	}

	m.writeJSON(w, http.StatusOK, summarize(rows))
}

func summarize(rows []any) []ActivityStats {
	byName := make(map[string]*ActivityStats)

	for _, row := range rows {
		a := row.(*tracing.ActivityRow)

		s, ok := byName[a.Name]
		if !ok {
			s = &ActivityStats{Name: a.Name}
			byName[a.Name] = s
		}

		s.Count++

		if a.Status != tracing.StatusFinished {
			s.Unfinished++
			continue
		}

		s.Finished++
		s.TotalTime += a.EndTime - a.StartTime
		s.AverageTime = s.TotalTime / float64(s.Finished)
	}

	stats := make([]ActivityStats, 0, len(byName))
	for _, s := range byName {
		stats = append(stats, *s)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Name < stats[j].Name
	})

	return stats
}

type errorsRsp struct {
	Total  int                 `json:"total"`
	Errors []*tracing.ErrorRow `json:"errors"`
}

func (m *Monitor) listErrors(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		m.writeError(w, http.StatusBadRequest, err)
		return
	}

	rows, total, err := m.reader.Query(r.Context(), tracing.ErrorTable,
		datarecording.QueryParams{
			OrderBy: []datarecording.Order{datarecording.Asc("Time")},
			Limit:   p.limit,
			Offset:  p.offset,
		})
	if err != nil {
		m.writeError(w, http.StatusInternalServerError, err)
		return
	}

	rsp := errorsRsp{
		Total:  total,
		Errors: make([]*tracing.ErrorRow, 0, len(rows)),
	}
	for _, row := range rows {
		rsp.Errors = append(rsp.Errors, row.(*tracing.ErrorRow))
	}

	m.writeJSON(w, http.StatusOK, rsp)
}

func (m *Monitor) listExecInfo(w http.ResponseWriter, r *http.Request) {
	rows, _, err := m.reader.Query(r.Context(), datarecording.ExecInfoTable,
		datarecording.QueryParams{})
	if err != nil {
		m.writeError(w, http.StatusInternalServerError, err)
		return
	}

	info := make(map[string]string, len(rows))
	for _, row := range rows {
		e := row.(*datarecording.ExecInfo)
		info[e.Property] = e.Value
	}

	m.writeJSON(w, http.StatusOK, info)
}
