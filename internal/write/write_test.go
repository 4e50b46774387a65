package write

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/neo-explorer/internal/models"
)

func fixtureRecords() []models.Record {
	apophis := models.NewNearEarthObject("99942", "Apophis", 0.34, true)
	nameless := models.NewNearEarthObject("2019 AA", "", math.NaN(), false)

	a1 := models.NewCloseApproach("99942", time.Date(2029, time.April, 13, 21, 46, 0, 0, time.UTC), 0.000254099, 7.42249)
	a2 := models.NewCloseApproach("2019 AA", time.Date(2019, time.January, 1, 3, 5, 0, 0, time.UTC), 0.0473, 12.75)
	a3 := models.NewCloseApproach("1036", time.Date(2020, time.June, 2, 0, 0, 0, 0, time.UTC), 0.5, 10)

	return []models.Record{
		{Approach: &a1, NEO: &apophis},
		{Approach: &a2, NEO: &nameless},
		{Approach: &a3},
	}
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	n, err := EncodeCSV(&buf, slices.Values(fixtureRecords()))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "datetime_utc,distance_au,velocity_km_s,designation,name,diameter_km,potentially_hazardous", lines[0])
	assert.Equal(t, "2029-04-13 21:46,0.000254099,7.42249,99942,Apophis,0.34,True", lines[1])
	assert.Equal(t, "2019-01-01 03:05,0.0473,12.75,2019 AA,,nan,False", lines[2])
	assert.Equal(t, "2020-06-02 00:00,0.5,10,1036,,nan,False", lines[3])
}

func TestEncodeCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	n, err := EncodeCSV(&buf, slices.Values([]models.Record(nil)))
	require.NoError(t, err)
	assert.Zero(t, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{CSVHeader}, rows)
}

func TestEncodeJSON_KeyOrderAndValues(t *testing.T) {
	var buf bytes.Buffer
	_, err := EncodeJSON(&buf, slices.Values(fixtureRecords()[:1]))
	require.NoError(t, err)

	out := buf.String()
	order := []string{`"datetime_utc"`, `"distance_au"`, `"velocity_km_s"`, `"neo"`, `"designation"`, `"name"`, `"diameter_km"`, `"potentially_hazardous"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(out, key)
		require.GreaterOrEqual(t, idx, 0, "missing key %s", key)
		assert.Greater(t, idx, last, "key %s out of order", key)
		last = idx
	}
	assert.Contains(t, out, `"datetime_utc": "2029-04-13 21:46"`)
	assert.Contains(t, out, `"potentially_hazardous": true`)
	assert.Contains(t, out, "\n  {\n")
}

func TestEncodeJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	n, err := EncodeJSON(&buf, slices.Values([]models.Record(nil)))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSONRoundTrip(t *testing.T) {
	records := fixtureRecords()

	var buf bytes.Buffer
	_, err := EncodeJSON(&buf, slices.Values(records))
	require.NoError(t, err)

	entries, err := DecodeJSON(&buf)
	require.NoError(t, err)
	require.Len(t, entries, len(records))

	for i, r := range records {
		e := entries[i]
		assert.Equal(t, r.Approach.TimeString(), e.DatetimeUTC)
		assert.Equal(t, r.Approach.Distance, e.DistanceAU)
		assert.Equal(t, r.Approach.Velocity, e.VelocityKmS)

		if r.NEO == nil {
			assert.Equal(t, r.Approach.Designation, e.NEO.Designation)
			assert.Empty(t, e.NEO.Name)
			assert.True(t, math.IsNaN(e.NEO.Diameter()))
			assert.False(t, e.NEO.PotentiallyHazardous)
			continue
		}
		assert.Equal(t, r.NEO.Designation, e.NEO.Designation)
		assert.Equal(t, r.NEO.DisplayName(), e.NEO.Name)
		assert.Equal(t, r.NEO.Hazardous, e.NEO.PotentiallyHazardous)
		if r.NEO.HasDiameter() {
			assert.Equal(t, r.NEO.Diameter, e.NEO.Diameter())
		} else {
			assert.Nil(t, e.NEO.DiameterKm)
			assert.True(t, math.IsNaN(e.NEO.Diameter()))
		}
	}
}

func TestWrite_DispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	records := fixtureRecords()

	csvPath := filepath.Join(dir, "out.CSV")
	n, err := Write(csvPath, slices.Values(records))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "datetime_utc,"))

	jsonPath := filepath.Join(dir, "out.json")
	_, err = Write(jsonPath, slices.Values(records))
	require.NoError(t, err)
	f, err := os.Open(jsonPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	entries, err := DecodeJSON(f)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	_, err = Write(filepath.Join(dir, "out.txt"), slices.Values(records))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestWrite_UnwritableDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "out.csv")
	_, err := WriteCSV(path, slices.Values(fixtureRecords()))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
