// Package database links near-Earth objects to their close approaches and
// answers queries over the linked set.
package database

import (
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/ajitpratap0/neo-explorer/internal/filters"
	"github.com/ajitpratap0/neo-explorer/internal/metrics"
	"github.com/ajitpratap0/neo-explorer/internal/models"
)

// Stats summarizes a linked database.
type Stats struct {
	NEOs                  int
	NamedNEOs             int
	HazardousNEOs         int
	Approaches            int
	LinkedApproaches      int
	UnlinkedApproaches    int
	DuplicateDesignations int
	Earliest              time.Time
	Latest                time.Time
}

// Database holds near-Earth objects and close approaches, each in its own
// arena, cross-referenced by arena id. It is immutable once built; values
// reached through its accessors must not be modified.
type Database struct {
	neos       []models.NearEarthObject
	approaches []models.CloseApproach

	byDesignation map[string]models.NEOID
	byName        map[string]models.NEOID

	stats  Stats
	logger *slog.Logger
}

// New takes ownership of copies of neos and approaches and links them.
//
// The inputs must be unlinked: objects without approaches and approaches
// without an object. Each approach whose designation matches a loaded object
// is attached to it; the rest stay unlinked and remain queryable. When two
// objects share a designation the first one loaded wins. Names are indexed
// only when non-empty, also first one wins.
func New(neos []models.NearEarthObject, approaches []models.CloseApproach, logger *slog.Logger) *Database {
	db := &Database{
		neos:          slices.Clone(neos),
		approaches:    slices.Clone(approaches),
		byDesignation: make(map[string]models.NEOID, len(neos)),
		byName:        make(map[string]models.NEOID),
		logger:        logger,
	}

	db.index()
	db.link()

	logger.Info("database: linked",
		"neos", db.stats.NEOs,
		"approaches", db.stats.Approaches,
		"unlinked_approaches", db.stats.UnlinkedApproaches,
		"duplicate_designations", db.stats.DuplicateDesignations,
	)
	return db
}

func (db *Database) index() {
	for i := range db.neos {
		neo := &db.neos[i]
		neo.ID = models.NEOID(i)
		neo.Approaches = nil

		if _, dup := db.byDesignation[neo.Designation]; dup {
			db.stats.DuplicateDesignations++
			metrics.Inc(metrics.DuplicateDesignations)
			db.logger.Warn("database: duplicate designation; keeping first", "designation", neo.Designation)
		} else {
			db.byDesignation[neo.Designation] = neo.ID
		}

		if neo.Name != nil && *neo.Name != "" {
			db.stats.NamedNEOs++
			if _, seen := db.byName[*neo.Name]; !seen {
				db.byName[*neo.Name] = neo.ID
			}
		}
		if neo.Hazardous {
			db.stats.HazardousNEOs++
		}
	}
	db.stats.NEOs = len(db.neos)
}

func (db *Database) link() {
	for i := range db.approaches {
		ca := &db.approaches[i]
		ca.ID = models.ApproachID(i)

		if i == 0 || ca.Time.Before(db.stats.Earliest) {
			db.stats.Earliest = ca.Time
		}
		if i == 0 || ca.Time.After(db.stats.Latest) {
			db.stats.Latest = ca.Time
		}

		id, ok := db.byDesignation[ca.Designation]
		if !ok {
			ca.NEO = models.NoNEO
			db.stats.UnlinkedApproaches++
			continue
		}
		ca.NEO = id
		db.neos[id].Approaches = append(db.neos[id].Approaches, ca.ID)
		db.stats.LinkedApproaches++
	}
	db.stats.Approaches = len(db.approaches)

	metrics.Add(metrics.ApproachesLinked, int64(db.stats.LinkedApproaches))
	metrics.Add(metrics.ApproachesUnlinked, int64(db.stats.UnlinkedApproaches))
}

// GetByDesignation returns the object with exactly this primary designation,
// or nil.
func (db *Database) GetByDesignation(designation string) *models.NearEarthObject {
	id, ok := db.byDesignation[designation]
	if !ok {
		return nil
	}
	return &db.neos[id]
}

// GetByName returns the first loaded object with exactly this name, or nil.
// No object is reachable by the empty name.
func (db *Database) GetByName(name string) *models.NearEarthObject {
	if name == "" {
		return nil
	}
	id, ok := db.byName[name]
	if !ok {
		return nil
	}
	return &db.neos[id]
}

// Query yields the records of all approaches that satisfy every filter, in
// load order. Filters run in the order given and evaluation stops at the
// first that fails. An approach whose filter needs an absent linked object
// is excluded. Each range over the result starts a fresh traversal.
func (db *Database) Query(fs []filters.Filter) iter.Seq[models.Record] {
	fs = slices.Clone(fs)
	return func(yield func(models.Record) bool) {
		metrics.Inc(metrics.QueryTotal)
		for i := range db.approaches {
			r := db.record(&db.approaches[i])
			ok, err := filters.MatchAll(fs, r)
			if err != nil {
				if filters.IsAttributeUnavailable(err) {
					metrics.Inc(metrics.QueryUnavailable)
					db.logger.Debug("database: excluding approach", "designation", r.Approach.Designation, "reason", err.Error())
				} else {
					db.logger.Warn("database: filter failed; excluding approach", "designation", r.Approach.Designation, "error", err)
				}
				continue
			}
			if !ok {
				continue
			}
			metrics.Inc(metrics.QueryMatched)
			if !yield(r) {
				return
			}
		}
	}
}

// NEOs yields every loaded object in load order, duplicates included.
func (db *Database) NEOs() iter.Seq[*models.NearEarthObject] {
	return func(yield func(*models.NearEarthObject) bool) {
		for i := range db.neos {
			if !yield(&db.neos[i]) {
				return
			}
		}
	}
}

// ApproachesOf returns the close approaches linked to neo, in load order.
// neo must belong to this database.
func (db *Database) ApproachesOf(neo *models.NearEarthObject) []*models.CloseApproach {
	if neo == nil {
		return nil
	}
	out := make([]*models.CloseApproach, 0, len(neo.Approaches))
	for _, id := range neo.Approaches {
		out = append(out, &db.approaches[id])
	}
	return out
}

// NEOOf returns the object ca is linked to, or nil.
func (db *Database) NEOOf(ca *models.CloseApproach) *models.NearEarthObject {
	if ca == nil || !ca.Linked() {
		return nil
	}
	return &db.neos[ca.NEO]
}

// Stats returns summary counts computed when the database was built.
func (db *Database) Stats() Stats {
	return db.stats
}

func (db *Database) record(ca *models.CloseApproach) models.Record {
	return models.Record{Approach: ca, NEO: db.NEOOf(ca)}
}
