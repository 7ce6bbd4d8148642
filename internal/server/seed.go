package server

import (
	"context"
	"fmt"
	"log/slog"
)

type demoPack struct {
	names     map[string]string
	questions int
}

var (
	demoPlayers = []string{"Ana", "Bruno", "Carla", "Diego", "Elena", "Fabio"}

	demoPacks = []demoPack{
		{names: map[string]string{"en": "Warm-up", "es": "Calentamiento"}, questions: 12},
		{names: map[string]string{"en": "Spicy", "es": "Picante"}, questions: 30},
		{names: map[string]string{"en": "Quick round", "es": "Ronda rápida"}, questions: 5},
	}
)

// SeedDemo fills an empty roster with calibrated demo players and a few
// question packs. It does nothing once any player exists.
func SeedDemo(ctx context.Context, logger *slog.Logger, store Store) error {
	n, err := store.CountPlayers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	for i, name := range demoPlayers {
		// The last demo player is left uncalibrated so the roster filter is visible.
		if _, err := store.CreatePlayer(ctx, name, i < len(demoPlayers)-1); err != nil {
			return fmt.Errorf("seeding player %s: %w", name, err)
		}
	}

	for _, p := range demoPacks {
		questions := make([]string, p.questions)
		for i := range questions {
			questions[i] = fmt.Sprintf("%s question %d", p.names["en"], i+1)
		}
		if _, err := store.CreatePack(ctx, p.names, questions); err != nil {
			return fmt.Errorf("seeding pack %s: %w", p.names["en"], err)
		}
	}

	logger.Info("demo roster and packs seeded", "players", len(demoPlayers), "packs", len(demoPacks))
	return nil
}

// EnsureAdmin creates the configured admin account unless it already exists.
func EnsureAdmin(ctx context.Context, logger *slog.Logger, admin AdminStore, email, passwordHash string) error {
	if err := admin.EnsureAdmin(ctx, email, passwordHash); err != nil {
		return fmt.Errorf("ensuring admin %s: %w", email, err)
	}
	logger.Debug("admin account ready", "email", email)
	return nil
}
