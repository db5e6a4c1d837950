package store

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.etcd.io/bbolt"

	"essaysim/config"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 2

var (
	keySchemaVersion = []byte("schema_version")
	keyConfigHash    = []byte("config_hash")
)

// SchemaInfo stores schema version and configuration hash.
type SchemaInfo struct {
	Version    int    `json:"version"`
	ConfigHash string `json:"config_hash"`
}

// GetSchemaInfo retrieves the current schema info from the database.
func (s *BoltStore) GetSchemaInfo() (*SchemaInfo, error) {
	var info SchemaInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}

		if versionData := b.Get(keySchemaVersion); versionData != nil {
			if err := json.Unmarshal(versionData, &info.Version); err != nil {
				info.Version = 1
			}
		}
		if hashData := b.Get(keyConfigHash); hashData != nil {
			info.ConfigHash = string(hashData)
		}
		return nil
	})
	return &info, err
}

// SetSchemaInfo stores the schema info in the database.
func (s *BoltStore) SetSchemaInfo(info *SchemaInfo) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)

		versionData, err := json.Marshal(info.Version)
		if err != nil {
			return err
		}
		if err := b.Put(keySchemaVersion, versionData); err != nil {
			return err
		}

		return b.Put(keyConfigHash, []byte(info.ConfigHash))
	})
}

// ComputeConfigHash hashes the settings that change how responses are scored
// and banded. Recorded scores are only comparable under the same hash.
func ComputeConfigHash(cfg *config.Config) string {
	relevant := struct {
		Upper         float64 `json:"upper"`
		Lower         float64 `json:"lower"`
		Language      string  `json:"language"`
		TFIDF         bool    `json:"tfidf"`
		LSA           bool    `json:"lsa"`
		Energy        float64 `json:"energy"`
		MaxIterations int     `json:"max_iterations"`
		AssetDir      string  `json:"asset_dir"`
	}{
		Upper:         cfg.Grading.UpperCorrectness,
		Lower:         cfg.Grading.LowerCorrectness,
		Language:      cfg.Grading.Language,
		TFIDF:         cfg.Pipeline.TFIDF,
		LSA:           cfg.Pipeline.LSA,
		Energy:        cfg.Pipeline.Energy,
		MaxIterations: cfg.Pipeline.MaxSVDIterations,
		AssetDir:      cfg.Languages.AssetDir,
	}

	data, _ := json.Marshal(relevant)
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// MigrationResult describes the result of a migration check.
type MigrationResult struct {
	NeedsMigration bool
	NeedsRebuild   bool
	OldVersion     int
	NewVersion     int
	Reason         string
}

// CheckMigration reports whether the schema must be upgraded and whether the
// recorded history was scored under a different configuration.
func (s *BoltStore) CheckMigration(cfg *config.Config) (*MigrationResult, error) {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema info: %w", err)
	}

	result := &MigrationResult{
		OldVersion: info.Version,
		NewVersion: CurrentSchemaVersion,
	}

	switch {
	case info.Version == 0:
		result.NeedsMigration = true
		result.Reason = "initializing schema version"
	case info.Version < CurrentSchemaVersion:
		result.NeedsMigration = true
		result.Reason = fmt.Sprintf("schema upgrade from v%d to v%d", info.Version, CurrentSchemaVersion)
	case info.Version > CurrentSchemaVersion:
		result.NeedsRebuild = true
		result.Reason = fmt.Sprintf("database created by newer version (v%d > v%d)", info.Version, CurrentSchemaVersion)
		return result, nil
	}

	if info.ConfigHash != "" && info.ConfigHash != ComputeConfigHash(cfg) {
		result.NeedsRebuild = true
		result.Reason = "scoring configuration changed"
	}

	return result, nil
}

// Migrate performs any necessary schema migrations and records the
// configuration hash.
func (s *BoltStore) Migrate(cfg *config.Config) error {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return err
	}

	for v := info.Version; v < CurrentSchemaVersion; v++ {
		if err := s.runMigration(v, v+1); err != nil {
			return fmt.Errorf("migration from v%d to v%d failed: %w", v, v+1, err)
		}
	}

	return s.SetSchemaInfo(&SchemaInfo{
		Version:    CurrentSchemaVersion,
		ConfigHash: ComputeConfigHash(cfg),
	})
}

func (s *BoltStore) runMigration(from, to int) error {
	switch {
	case from == 1 && to == 2:
		// v1 kept attempts only; v2 adds the timeline index.
		return s.db.Update(func(tx *bbolt.Tx) error {
			timeline, err := tx.CreateBucketIfNotExists(bucketTimeline)
			if err != nil {
				return err
			}
			attempts := tx.Bucket(bucketAttempts)
			return attempts.ForEach(func(k, v []byte) error {
				var a struct {
					Seq uint64 `json:"seq"`
				}
				if err := json.Unmarshal(v, &a); err != nil || a.Seq == 0 {
					return nil
				}
				return timeline.Put(seqKey(a.Seq), append([]byte(nil), k...))
			})
		})
	default:
		return nil
	}
}

// Clear removes all attempts. Schema info is kept.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAttempts, bucketTimeline} {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return err
				}
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// NeedsRebuild reports whether recorded scores are stale for cfg.
func (s *BoltStore) NeedsRebuild(cfg *config.Config) (bool, string, error) {
	result, err := s.CheckMigration(cfg)
	if err != nil {
		return false, "", err
	}
	return result.NeedsRebuild, result.Reason, nil
}
