package groups

import (
	"context"
	"log/slog"

	"github.com/bizdir/bizdir/internal/shared"
)

// RepositoryPort defines data access methods for groups.
type RepositoryPort interface {
	ListGroups(ctx context.Context) ([]Group, error)
	Grant(ctx context.Context, name string, userID int64) error
	Revoke(ctx context.Context, name string, userID int64) error
}

// Service handles membership changes and records them in the audit trail.
type Service struct {
	repo   RepositoryPort
	audit  shared.AuditRecorder
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// ListGroups returns all groups.
func (s *Service) ListGroups(ctx context.Context) ([]Group, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []Group{}
	}
	return groups, nil
}

// Grant adds a member on behalf of actor.
func (s *Service) Grant(ctx context.Context, actor *shared.Identity, name string, userID int64) error {
	if err := s.repo.Grant(ctx, name, userID); err != nil {
		return err
	}
	s.record(ctx, actor, "grant", name, userID)
	return nil
}

// Revoke removes a member on behalf of actor.
func (s *Service) Revoke(ctx context.Context, actor *shared.Identity, name string, userID int64) error {
	if err := s.repo.Revoke(ctx, name, userID); err != nil {
		return err
	}
	s.record(ctx, actor, "revoke", name, userID)
	return nil
}

func (s *Service) record(ctx context.Context, actor *shared.Identity, action, name string, userID int64) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "group",
		EntityID: name,
		Meta:     map[string]any{"user": userID},
	})
	if err != nil {
		s.logger.Warn("audit record failed", slog.String("group", name), slog.Any("error", err))
	}
}
