package contract

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"
)

// DefaultContracts are stored by Seed when no seed file is given.
var DefaultContracts = []Contract{
	{Type: TypeLOA, Duration: 36, Price: 350, UserID: 1},
	{Type: TypeLLD, Duration: 24, Price: 750, UserID: 2},
	{Type: TypeVAC, Duration: 36, Price: 500, UserID: 3},
}

// Seeder fills an empty repository with initial contracts.
type Seeder struct {
	repo   Repository
	path   string
	logger *zap.Logger
}

// NewSeeder creates a seeder. When path is empty the default contracts
// are used; otherwise path is a YAML (or JSON) list of contracts.
func NewSeeder(repo Repository, path string, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{repo: repo, path: path, logger: logger}
}

// Seed stores the initial contracts unless the repository already holds
// some. It returns the number of contracts stored.
func (s *Seeder) Seed(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count contracts: %w", err)
	}
	if count > 0 {
		s.logger.Debug("contract repository already seeded", zap.Int("count", count))
		return 0, nil
	}

	contracts := DefaultContracts
	if s.path != "" {
		contracts, err = LoadSeedFile(s.path)
		if err != nil {
			return 0, err
		}
	}

	for _, c := range contracts {
		if _, err := s.repo.Save(ctx, c); err != nil {
			return 0, fmt.Errorf("failed to seed contract: %w", err)
		}
	}

	s.logger.Info("contract repository seeded",
		zap.Int("count", len(contracts)),
		zap.String("source", s.sourceName()),
	)
	return len(contracts), nil
}

func (s *Seeder) sourceName() string {
	if s.path == "" {
		return "defaults"
	}
	return s.path
}

// LoadSeedFile reads a list of contracts from a YAML or JSON file.
func LoadSeedFile(path string) ([]Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var contracts []Contract
	if err := yaml.Unmarshal(data, &contracts); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	for i, c := range contracts {
		t, err := ParseType(string(c.Type))
		if err != nil {
			return nil, fmt.Errorf("seed contract %d: %w", i, err)
		}
		contracts[i].Type = t
		if c.Duration > MaxDuration {
			return nil, fmt.Errorf("seed contract %d: duration %d exceeds %d months", i, c.Duration, MaxDuration)
		}
	}
	return contracts, nil
}
