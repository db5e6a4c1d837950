package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"essaysim/config"
	"essaysim/internal/adapter/analyzer"
	"essaysim/internal/adapter/cache"
	"essaysim/internal/adapter/fs"
	"essaysim/internal/adapter/store"
	"essaysim/internal/similarity"
	"essaysim/internal/textstats"
	"essaysim/internal/usecase"
)

// newRegistry returns the embedded languages plus any from languages.asset_dir.
func newRegistry(cfg *config.Config) (*analyzer.Registry, error) {
	reg, err := analyzer.DefaultRegistry()
	if err != nil {
		return nil, err
	}
	if dir := cfg.Languages.AssetDir; dir != "" {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(rootDir, dir)
		}
		if err := reg.RegisterAssets(os.DirFS(dir)); err != nil {
			return nil, fmt.Errorf("load language assets from %s: %w", dir, err)
		}
	}
	return reg, nil
}

func pipelineOptions(cfg *config.Config) []similarity.Option {
	return []similarity.Option{
		similarity.WithTFIDF(cfg.Pipeline.TFIDF),
		similarity.WithLSA(cfg.Pipeline.LSA),
		similarity.WithEnergy(cfg.Pipeline.Energy),
		similarity.WithMaxIterations(cfg.Pipeline.MaxSVDIterations),
		similarity.WithMaxVocabulary(cfg.Pipeline.MaxVocabulary),
	}
}

func thresholds(cfg *config.Config) usecase.Thresholds {
	return usecase.Thresholds{
		Upper: cfg.Grading.UpperCorrectness,
		Lower: cfg.Grading.LowerCorrectness,
	}
}

// newGrader wires the grade use case. st may be nil.
func newGrader(cfg *config.Config, reg *analyzer.Registry, st *store.BoltStore) (*usecase.GradeUseCase, error) {
	opts := []usecase.GradeOption{
		usecase.WithDefaultLanguage(cfg.Grading.Language),
		usecase.WithPipelineOptions(pipelineOptions(cfg)...),
	}
	if cfg.Cache.Size > 0 {
		opts = append(opts, usecase.WithScoreCache(
			cache.NewScoreCache(cfg.Cache.Size, time.Duration(cfg.Cache.TTLSec)*time.Second)))
	}
	if st != nil {
		opts = append(opts, usecase.WithAttemptStore(st))
	}
	return usecase.NewGradeUseCase(reg, thresholds(cfg), opts...)
}

// openStore opens the attempt history below dir, migrating the schema and
// warning when recorded scores came from a different configuration.
func openStore(cfg *config.Config, dir string) (*store.BoltStore, error) {
	if err := config.EnsureDataDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", config.DataDir, err)
	}
	st, err := store.NewBoltStore(config.StoreDBPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to open attempt store: %w", err)
	}

	res, err := st.CheckMigration(cfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to check migration: %w", err)
	}
	if res.NeedsRebuild {
		log.Warn("recorded attempts are not comparable with current settings",
			zap.String("reason", res.Reason))
		return st, nil
	}
	if res.NeedsMigration {
		log.Info("running schema migration", zap.String("reason", res.Reason))
		if err := st.Migrate(cfg); err != nil {
			st.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}
	return st, nil
}

// readText returns arg itself when literal, stdin for "-", else the file.
func readText(in io.Reader, arg string, literal bool) (string, error) {
	if literal {
		return arg, nil
	}
	if arg == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return fs.ReadFile(arg)
}

func statItems(s string) ([]textstats.Item, error) {
	if s == "" {
		return textstats.ParseItems(strings.Join(cfg.Grading.StatItems, ","))
	}
	return textstats.ParseItems(s)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
