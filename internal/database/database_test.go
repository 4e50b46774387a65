package database

import (
	"io"
	"iter"
	"log/slog"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/neo-explorer/internal/filters"
	"github.com/ajitpratap0/neo-explorer/internal/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	t1 = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	t2 = time.Date(2020, time.January, 2, 6, 30, 0, 0, time.UTC)
)

// scenarioDB builds two objects and two approaches, one of which matches no object.
func scenarioDB(t *testing.T) *Database {
	t.Helper()
	neos := []models.NearEarthObject{
		models.NewNearEarthObject("2001", "Apophis", 0.34, true),
		models.NewNearEarthObject("2002", "", math.NaN(), false),
	}
	approaches := []models.CloseApproach{
		models.NewCloseApproach("2001", t1, 0.1, 5.0),
		models.NewCloseApproach("2003", t2, 0.2, 6.0),
	}
	return New(neos, approaches, quietLogger())
}

func collectTimes(seq iter.Seq[models.Record]) []time.Time {
	var out []time.Time
	for r := range seq {
		out = append(out, r.Approach.Time)
	}
	return out
}

func TestNew_LinksScenario(t *testing.T) {
	db := scenarioDB(t)

	apophis := db.GetByDesignation("2001")
	require.NotNil(t, apophis)
	approaches := db.ApproachesOf(apophis)
	require.Len(t, approaches, 1)
	assert.Equal(t, t1, approaches[0].Time)
	assert.Same(t, apophis, db.NEOOf(approaches[0]))

	unnamed := db.GetByDesignation("2002")
	require.NotNil(t, unnamed)
	assert.Empty(t, db.ApproachesOf(unnamed))

	var orphan models.Record
	for r := range db.Query(nil) {
		if r.Approach.Designation == "2003" {
			orphan = r
		}
	}
	require.NotNil(t, orphan.Approach)
	assert.Nil(t, orphan.NEO)
	assert.False(t, orphan.Approach.Linked())

	hazardous := db.Query([]filters.Filter{filters.HazardousFilter{Op: filters.OpEq, Value: true}})
	assert.Equal(t, []time.Time{t1}, collectTimes(hazardous))
}

func TestNew_LinkIsMutual(t *testing.T) {
	neos := []models.NearEarthObject{
		models.NewNearEarthObject("433", "Eros", 16.84, false),
		models.NewNearEarthObject("99942", "Apophis", 0.34, true),
	}
	approaches := []models.CloseApproach{
		models.NewCloseApproach("433", t1, 0.3, 5),
		models.NewCloseApproach("99942", t1, 0.1, 7),
		models.NewCloseApproach("433", t2, 0.4, 6),
		models.NewCloseApproach("1036", t2, 0.5, 8),
	}
	db := New(neos, approaches, quietLogger())

	for r := range db.Query(nil) {
		neo := db.GetByDesignation(r.Approach.Designation)
		if neo == nil {
			assert.Nil(t, r.NEO)
			continue
		}
		assert.Same(t, neo, r.NEO)
		assert.Contains(t, db.ApproachesOf(neo), r.Approach)
	}

	eros := db.GetByDesignation("433")
	require.NotNil(t, eros)
	assert.Len(t, eros.Approaches, 2)
}

func TestNew_DoesNotAliasInputs(t *testing.T) {
	neos := []models.NearEarthObject{models.NewNearEarthObject("433", "Eros", 16.84, false)}
	approaches := []models.CloseApproach{models.NewCloseApproach("433", t1, 0.3, 5)}
	db := New(neos, approaches, quietLogger())

	assert.Empty(t, neos[0].Approaches)
	assert.Equal(t, models.NoNEO, approaches[0].NEO)
	assert.Len(t, db.GetByDesignation("433").Approaches, 1)
}

func TestGetByDesignation(t *testing.T) {
	db := scenarioDB(t)

	assert.Nil(t, db.GetByDesignation("2003"))
	assert.Nil(t, db.GetByDesignation(""))
	assert.Nil(t, db.GetByDesignation("200"), "matching is exact")

	first := db.GetByDesignation("2001")
	second := db.GetByDesignation("2001")
	assert.Same(t, first, second)
}

func TestGetByName(t *testing.T) {
	db := scenarioDB(t)

	apophis := db.GetByName("Apophis")
	require.NotNil(t, apophis)
	assert.Equal(t, "2001", apophis.Designation)

	assert.Nil(t, db.GetByName(""))
	assert.Nil(t, db.GetByName("apophis"), "matching is case-sensitive")
	assert.Nil(t, db.GetByName("Eros"))
}

func TestNew_DuplicatesFirstWins(t *testing.T) {
	neos := []models.NearEarthObject{
		models.NewNearEarthObject("1", "Twin", 1, false),
		models.NewNearEarthObject("1", "Other", 2, true),
		models.NewNearEarthObject("2", "Twin", 3, false),
	}
	approaches := []models.CloseApproach{models.NewCloseApproach("1", t1, 0.1, 1)}
	db := New(neos, approaches, quietLogger())

	byDes := db.GetByDesignation("1")
	require.NotNil(t, byDes)
	assert.Equal(t, 1.0, byDes.Diameter)
	assert.Len(t, byDes.Approaches, 1)

	byName := db.GetByName("Twin")
	require.NotNil(t, byName)
	assert.Equal(t, "1", byName.Designation)

	assert.Equal(t, 1, db.Stats().DuplicateDesignations)
}

func TestQuery_EmptyYieldsAllInLoadOrder(t *testing.T) {
	db := scenarioDB(t)
	assert.Equal(t, []time.Time{t1, t2}, collectTimes(db.Query(nil)))
	assert.Equal(t, []time.Time{t1, t2}, collectTimes(db.Query([]filters.Filter{})))
}

func TestQuery_ConjunctionCommutes(t *testing.T) {
	var neos []models.NearEarthObject
	var approaches []models.CloseApproach
	for i := range 20 {
		des := string(rune('A' + i%5))
		if i < 5 {
			neos = append(neos, models.NewNearEarthObject(des, "", float64(i), i%2 == 0))
		}
		approaches = append(approaches, models.NewCloseApproach(des, t1.AddDate(0, 0, i), float64(i)/10, float64(20-i)))
	}
	// one approach of an unknown object
	approaches = append(approaches, models.NewCloseApproach("Z", t1, 0.5, 10))
	db := New(neos, approaches, quietLogger())

	p1 := filters.DistanceFilter{Op: filters.OpGe, Value: 0.5}
	p2 := filters.HazardousFilter{Op: filters.OpEq, Value: true}

	ids := func(fs ...filters.Filter) []models.ApproachID {
		var out []models.ApproachID
		for r := range db.Query(fs) {
			out = append(out, r.Approach.ID)
		}
		return out
	}

	only1, only2 := ids(p1), ids(p2)
	var intersection []models.ApproachID
	for _, id := range only1 {
		if slices.Contains(only2, id) {
			intersection = append(intersection, id)
		}
	}

	require.NotEmpty(t, intersection)
	assert.Equal(t, intersection, ids(p1, p2))
	assert.Equal(t, intersection, ids(p2, p1))
	assert.NotContains(t, only2, models.ApproachID(len(approaches)-1), "unlinked approach must not pass a hazard filter")
	assert.Contains(t, only1, models.ApproachID(len(approaches)-1))
}

func TestQuery_IndependentTraversals(t *testing.T) {
	db := scenarioDB(t)
	seq := db.Query(nil)

	var interleaved []string
	for a := range seq {
		for b := range seq {
			interleaved = append(interleaved, a.Approach.Designation+b.Approach.Designation)
		}
		break
	}
	assert.Equal(t, []string{"20012001", "20012003"}, interleaved)

	// partially consumed sequences do not affect later traversals
	assert.Len(t, collectTimes(seq), 2)
}

func TestQuery_WithLimit(t *testing.T) {
	db := scenarioDB(t)
	assert.Equal(t, []time.Time{t1}, collectTimes(filters.Limit(db.Query(nil), 1)))
	assert.Equal(t, []time.Time{t1, t2}, collectTimes(filters.Limit(db.Query(nil), 0)))
}

func TestNEOs(t *testing.T) {
	db := scenarioDB(t)
	var designations []string
	for neo := range db.NEOs() {
		designations = append(designations, neo.Designation)
	}
	assert.Equal(t, []string{"2001", "2002"}, designations)
}

func TestStats(t *testing.T) {
	db := scenarioDB(t)
	s := db.Stats()
	assert.Equal(t, 2, s.NEOs)
	assert.Equal(t, 1, s.NamedNEOs)
	assert.Equal(t, 1, s.HazardousNEOs)
	assert.Equal(t, 2, s.Approaches)
	assert.Equal(t, 1, s.LinkedApproaches)
	assert.Equal(t, 1, s.UnlinkedApproaches)
	assert.Equal(t, t1, s.Earliest)
	assert.Equal(t, t2, s.Latest)
}
