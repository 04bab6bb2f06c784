package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/hakim/domainvet/internal/models"
)

// ErrRunNotFound is returned when a run ID has no stored record
var ErrRunNotFound = errors.New("run not found")

// SaveRun persists a run metadata record and indexes it by input file
func (s *Store) SaveRun(meta *models.RunMeta) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}

		runs := tx.Bucket([]byte(bucketRuns))
		if err := runs.Put([]byte(meta.ID), data); err != nil {
			return err
		}

		// Index: input file -> []run_id
		index := tx.Bucket([]byte(bucketRunIndex))
		key := []byte(meta.InputFile)

		var ids []string
		if existing := index.Get(key); existing != nil {
			if err := json.Unmarshal(existing, &ids); err != nil {
				return err
			}
		}
		for _, id := range ids {
			if id == meta.ID {
				return nil
			}
		}
		ids = append(ids, meta.ID)

		indexData, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		return index.Put(key, indexData)
	})
}

// GetRun retrieves a run metadata record by ID
func (s *Store) GetRun(id string) (*models.RunMeta, error) {
	var meta *models.RunMeta

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketRuns)).Get([]byte(id))
		if data == nil {
			return ErrRunNotFound
		}
		meta = &models.RunMeta{}
		return json.Unmarshal(data, meta)
	})
	if err != nil {
		return nil, err
	}

	return meta, nil
}

// ListRuns returns run records for an input file, newest first. An empty
// inputFile lists every run.
func (s *Store) ListRuns(inputFile string) ([]*models.RunMeta, error) {
	var runs []*models.RunMeta

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketRuns))

		if inputFile == "" {
			return bucket.ForEach(func(_, v []byte) error {
				var meta models.RunMeta
				if err := json.Unmarshal(v, &meta); err != nil {
					return err
				}
				runs = append(runs, &meta)
				return nil
			})
		}

		data := tx.Bucket([]byte(bucketRunIndex)).Get([]byte(inputFile))
		if data == nil {
			return nil
		}

		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}

		for _, id := range ids {
			raw := bucket.Get([]byte(id))
			if raw == nil {
				continue
			}
			var meta models.RunMeta
			if err := json.Unmarshal(raw, &meta); err != nil {
				return err
			}
			runs = append(runs, &meta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	return runs, nil
}

// GetLatestRun retrieves the most recent run for an input file, or nil
func (s *Store) GetLatestRun(inputFile string) (*models.RunMeta, error) {
	runs, err := s.ListRuns(inputFile)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// UpdateRunStatus updates the status of a run and sets CompletedAt on
// terminal states
func (s *Store) UpdateRunStatus(id string, status models.RunStatus) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		runs := tx.Bucket([]byte(bucketRuns))

		data := runs.Get([]byte(id))
		if data == nil {
			return ErrRunNotFound
		}

		var meta models.RunMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}

		meta.Status = status
		if (status == models.StatusComplete || status == models.StatusFailed) && meta.CompletedAt == nil {
			now := time.Now()
			meta.CompletedAt = &now
		}

		updated, err := json.Marshal(&meta)
		if err != nil {
			return err
		}
		return runs.Put([]byte(id), updated)
	})
}

// SaveResults stores the results of a run, replacing any previously saved
// set. Emission order is preserved.
func (s *Store) SaveResults(runID string, results []models.ValidationResult) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		parent := tx.Bucket([]byte(bucketRunResults))

		if parent.Bucket([]byte(runID)) != nil {
			if err := parent.DeleteBucket([]byte(runID)); err != nil {
				return err
			}
		}
		bucket, err := parent.CreateBucket([]byte(runID))
		if err != nil {
			return err
		}

		for i, r := range results {
			data, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("encoding result for %s: %w", r.Domain, err)
			}
			if err := bucket.Put([]byte(fmt.Sprintf("%08d", i)), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetResults returns the stored results of a run in emission order
func (s *Store) GetResults(runID string) ([]models.ValidationResult, error) {
	var results []models.ValidationResult

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketRunResults)).Bucket([]byte(runID))
		if bucket == nil {
			if tx.Bucket([]byte(bucketRuns)).Get([]byte(runID)) == nil {
				return ErrRunNotFound
			}
			return nil
		}

		return bucket.ForEach(func(_, v []byte) error {
			var r models.ValidationResult
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			results = append(results, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}
