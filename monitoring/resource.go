package monitoring

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"time"

	"github.com/google/pprof/profile"
	"github.com/shirou/gopsutil/process"
)

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		m.writeError(w, http.StatusInternalServerError, err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		m.writeError(w, http.StatusInternalServerError, err)
		return
	}

	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		m.writeError(w, http.StatusInternalServerError, err)
		return
	}

	m.writeJSON(w, http.StatusOK, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

type profileEntry struct {
	Function string  `json:"function"`
	Samples  int64   `json:"samples"`
	Percent  float64 `json:"percent"`
}

type profileRsp struct {
	DurationMS int64          `json:"duration_ms"`
	Samples    int64          `json:"samples"`
	Functions  []profileEntry `json:"functions"`
}

// collectProfile samples the CPU for the requested number of milliseconds,
// one second by default, and reports the leaf functions by sample count.
func (m *Monitor) collectProfile(w http.ResponseWriter, r *http.Request) {
	duration := time.Second

	if s := r.URL.Query().Get("ms"); s != "" {
		ms, err := strconv.Atoi(s)
		if err != nil || ms <= 0 || ms > 60000 {
			m.writeError(w, http.StatusBadRequest,
				fmt.Errorf("invalid duration %q", s))
			return
		}

		duration = time.Duration(ms) * time.Millisecond
	}

	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		m.writeError(w, http.StatusConflict, err)
		return
	}

	select {
	case <-time.After(duration):
	case <-r.Context().Done():
	}

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		m.writeError(w, http.StatusInternalServerError, err)
		return
	}

	m.writeJSON(w, http.StatusOK, summarizeProfile(prof, duration))
}

func summarizeProfile(prof *profile.Profile, duration time.Duration) profileRsp {
	rsp := profileRsp{DurationMS: duration.Milliseconds()}
	counts := make(map[string]int64)

	for _, s := range prof.Sample {
		if len(s.Value) == 0 || len(s.Location) == 0 {
			continue
		}

		rsp.Samples += s.Value[0]

		lines := s.Location[0].Line
		if len(lines) == 0 || lines[0].Function == nil {
			continue
		}

		counts[lines[0].Function.Name] += s.Value[0]
	}

	for name, n := range counts {
		entry := profileEntry{Function: name, Samples: n}
		if rsp.Samples > 0 {
			entry.Percent = float64(n) / float64(rsp.Samples) * 100
		}

		rsp.Functions = append(rsp.Functions, entry)
	}

	sort.Slice(rsp.Functions, func(i, j int) bool {
		a, b := rsp.Functions[i], rsp.Functions[j]
		if a.Samples != b.Samples {
			return a.Samples > b.Samples
		}

		return a.Function < b.Function
	})

	return rsp
}
