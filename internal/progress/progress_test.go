package progress

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vmunix/jellylink/pkg/jellyseerr"
)

func detail(status, downloadStatus string) jellyseerr.RequestDetail {
	d := jellyseerr.RequestDetail{ID: 1}
	if status != "" {
		d.Media.Status = json.RawMessage(status)
	}
	if downloadStatus != "" {
		d.Media.DownloadStatus = json.RawMessage(downloadStatus)
	}
	return d
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name           string
		size, sizeLeft int64
		want           int
	}{
		{"quarter left", 1000, 250, 75},
		{"nothing downloaded", 500, 500, 0},
		{"complete", 500, 0, 100},
		{"zero size", 0, 250, 0},
		{"zero size zero left", 0, 0, 0},
		{"negative size", -10, 5, 0},
		{"left exceeds size", 100, 150, 0},
		{"rounds half up", 8, 7, 13},
		{"rounds down", 3, 2, 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percent(tt.size, tt.sizeLeft)
			assert.Equal(t, tt.want, got)
			assert.False(t, math.IsNaN(float64(got)))
		})
	}
}

func TestNormalize_ArrayShape(t *testing.T) {
	rec := Normalize(detail(`3`, `[
		{"status": "downloading", "estimatedCompletionTime": "2026-10-16T12:00:00Z", "timeLeft": "00:10:00", "size": 1000, "sizeLeft": 250},
		{"status": "queued", "size": 1, "sizeLeft": 1}
	]`))

	assert.Equal(t, "Downloading", rec.Status, "slot status overrides lifecycle code")
	assert.Equal(t, "2026-10-16T12:00:00Z", rec.ETA)
	assert.Equal(t, "00:10:00", rec.TimeLeft)
	assert.True(t, rec.HasTimeLeft)
	assert.Equal(t, int64(1000), rec.Size)
	assert.Equal(t, int64(250), rec.SizeLeft)
	assert.Equal(t, 75, rec.Percent())
}

func TestNormalize_ObjectShape(t *testing.T) {
	rec := Normalize(detail(`"pending"`, `{"status": "import_pending", "size": "2000", "sizeLeft": "500"}`))

	assert.Equal(t, "Import Pending", rec.Status)
	assert.False(t, rec.HasTimeLeft)
	assert.Equal(t, int64(2000), rec.Size)
	assert.Equal(t, 75, rec.Percent())
}

func TestNormalize_NoDownloadSlot(t *testing.T) {
	tests := []struct {
		name       string
		status, ds string
		wantStatus string
	}{
		{"numeric code, missing slot", `2`, ``, "Pending"},
		{"numeric code, empty array", `3`, `[]`, "Processing"},
		{"string phase, null slot", `"processing"`, `null`, "Processing"},
		{"numeric string", `"5"`, ``, "Available"},
		{"unknown code", `42`, ``, "Status 42"},
		{"no status at all", ``, ``, ""},
		{"garbage slot", `4`, `"oops"`, "Partially Available"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(detail(tt.status, tt.ds))
			assert.Equal(t, tt.wantStatus, rec.Status)
			assert.Zero(t, rec.Size)
			assert.Zero(t, rec.SizeLeft)
			assert.False(t, rec.HasTimeLeft)
			assert.Equal(t, 0, rec.Percent())
		})
	}
}

func TestNormalize_NumericTimeLeft(t *testing.T) {
	rec := Normalize(detail(`3`, `[{"status": 3, "timeLeft": 600, "estimatedCompletionTime": null}]`))

	assert.Equal(t, "Processing", rec.Status)
	assert.True(t, rec.HasTimeLeft)
	assert.Equal(t, "600", rec.TimeLeft)
	assert.Empty(t, rec.ETA)
}

func TestRecord_Downloaded(t *testing.T) {
	assert.Empty(t, Record{}.Downloaded())
	assert.Equal(t, "750 B of 1.0 kB", Record{Size: 1000, SizeLeft: 250}.Downloaded())
}
