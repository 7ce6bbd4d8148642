package server

import (
	"context"

	"github.com/playperu/hotseat/internal/hotseat"
	"github.com/playperu/hotseat/internal/selector"
	"github.com/playperu/hotseat/internal/setupflow"
)

// Store backs the setup flow collaborators and the catalog admin API.
type Store interface {
	setupflow.Roster
	setupflow.Catalog
	setupflow.SessionFactory
	selector.QuestionSource

	GetPack(ctx context.Context, id string) (hotseat.QuestionPack, error)
	PackQuestions(ctx context.Context, packID string) ([]hotseat.Question, error)
	GetSession(ctx context.Context, id string) (hotseat.Session, error)
	CompleteSession(ctx context.Context, id string) (hotseat.Session, error)

	CreatePlayer(ctx context.Context, name string, calibrated bool) (hotseat.Player, error)
	SetCalibrated(ctx context.Context, id string, calibrated bool) (hotseat.Player, error)
	CountPlayers(ctx context.Context) (int, error)
	CreatePack(ctx context.Context, names map[string]string, questions []string) (hotseat.QuestionPack, error)
	DeletePack(ctx context.Context, id string) error
}

type AdminStore interface {
	EnsureAdmin(ctx context.Context, email, passwordHash string) error
	AdminByEmail(ctx context.Context, email string) (adminID, passwordHash string, err error)
	CreateAdminSession(ctx context.Context, adminID string) (sessionID string, err error)
	DeleteAdminSession(ctx context.Context, sessionID string) error
	AdminFromSession(ctx context.Context, sessionID string) (adminSession, error)
}
