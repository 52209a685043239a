// Package progress turns Jellyseerr request details into a stable progress record.
package progress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vmunix/jellylink/pkg/jellyseerr"
)

// Jellyseerr media lifecycle codes.
var lifecycleLabels = map[int64]string{
	1: "Unknown",
	2: "Pending",
	3: "Processing",
	4: "Partially Available",
	5: "Available",
	6: "Blocklisted",
	7: "Deleted",
}

// Record is the normalized download progress of a request.
// Size and SizeLeft are bytes; zero when the download client has not reported them.
type Record struct {
	Status      string
	ETA         string
	TimeLeft    string
	HasTimeLeft bool
	Size        int64
	SizeLeft    int64
}

// downloadSlot is one entry of media.downloadStatus.
type downloadSlot struct {
	Status                  json.RawMessage `json:"status"`
	EstimatedCompletionTime json.RawMessage `json:"estimatedCompletionTime"`
	TimeLeft                json.RawMessage `json:"timeLeft"`
	Size                    json.RawMessage `json:"size"`
	SizeLeft                json.RawMessage `json:"sizeLeft"`
}

// Normalize builds a Record from a request detail. It never fails: unknown
// shapes degrade to the top-level lifecycle status with zero sizes.
func Normalize(d jellyseerr.RequestDetail) Record {
	rec := Record{Status: statusLabel(d.Media.Status)}

	slot, ok := firstSlot(d.Media.DownloadStatus)
	if !ok {
		return rec
	}

	if label := statusLabel(slot.Status); label != "" {
		rec.Status = label
	}
	rec.ETA, _ = stringOf(slot.EstimatedCompletionTime)
	rec.TimeLeft, rec.HasTimeLeft = stringOf(slot.TimeLeft)
	rec.Size = numberOf(slot.Size)
	rec.SizeLeft = numberOf(slot.SizeLeft)
	return rec
}

// Percent returns the share downloaded, rounded, in 0..100.
func (r Record) Percent() int {
	return Percent(r.Size, r.SizeLeft)
}

// Downloaded returns a human label such as "750 MB of 1.0 GB", or "" without size data.
func (r Record) Downloaded() string {
	if r.Size <= 0 {
		return ""
	}
	done := max(r.Size-r.SizeLeft, 0)
	return humanize.Bytes(uint64(done)) + " of " + humanize.Bytes(uint64(r.Size))
}

// Percent computes round((size-sizeLeft)/size*100), or 0 when size is not positive.
func Percent(size, sizeLeft int64) int {
	if size <= 0 {
		return 0
	}
	p := math.Round(float64(size-sizeLeft) / float64(size) * 100)
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return int(p)
}

// firstSlot extracts the active download slot from an object or an array.
func firstSlot(raw json.RawMessage) (downloadSlot, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return downloadSlot{}, false
	}

	switch raw[0] {
	case '[':
		var slots []json.RawMessage
		if err := json.Unmarshal(raw, &slots); err != nil || len(slots) == 0 {
			return downloadSlot{}, false
		}
		return firstSlot(slots[0])
	case '{':
		var slot downloadSlot
		if err := json.Unmarshal(raw, &slot); err != nil {
			return downloadSlot{}, false
		}
		return slot, true
	default:
		return downloadSlot{}, false
	}
}

// statusLabel renders a numeric lifecycle code or a phase label for display.
func statusLabel(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var code int64
	if err := json.Unmarshal(raw, &code); err == nil {
		if label, ok := lifecycleLabels[code]; ok {
			return label
		}
		return fmt.Sprintf("Status %d", code)
	}

	var phase string
	if err := json.Unmarshal(raw, &phase); err == nil {
		phase = strings.TrimSpace(phase)
		if n, err := strconv.ParseInt(phase, 10, 64); err == nil {
			if label, ok := lifecycleLabels[n]; ok {
				return label
			}
		}
		// Casers carry state, so one per call.
		return cases.Title(language.English).String(strings.ReplaceAll(phase, "_", " "))
	}
	return ""
}

// stringOf renders a string or number field; ok is false when it is absent or null.
func stringOf(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}

// numberOf reads a number or numeric string, defaulting to 0.
func numberOf(raw json.RawMessage) int64 {
	s, ok := stringOf(raw)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(f)
}
