package users

import (
	"context"
	"fmt"

	"github.com/angelmondragon/warehousepos-backend/pkg/config"
	"github.com/angelmondragon/warehousepos-backend/pkg/db"
	"github.com/angelmondragon/warehousepos-backend/pkg/db/models"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehousepos-backend/pkg/errors"
	"github.com/angelmondragon/warehousepos-backend/pkg/logger"
	"github.com/google/uuid"
)

type userStore interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

// Service manages staff accounts.
type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (*UserDTO, error)
	List(ctx context.Context) ([]UserDTO, error)
	SetActive(ctx context.Context, actorID, userID uuid.UUID, active bool) (*UserDTO, error)
	EnsureBootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig) (bool, error)
}

type ServiceParams struct {
	Repo   userStore
	Hasher passwordHasher
	Logger *logger.Logger
}

type service struct {
	repo   userStore
	hasher passwordHasher
	logg   *logger.Logger
}

// NewService builds the staff account service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	return &service{repo: params.Repo, hasher: params.Hasher, logg: params.Logger}, nil
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (*UserDTO, error) {
	username := NormalizeUsername(req.Username)
	if username == "" {
		return nil, pkgerrors.Invalid("username", "username is required")
	}
	role, err := enums.ParseUserRole(req.Role)
	if err != nil {
		return nil, pkgerrors.Invalid("role", "role must be admin or cashier")
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}

	user, err := s.repo.Create(ctx, CreateUserDTO{
		Username:     username,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) SetActive(ctx context.Context, actorID, userID uuid.UUID, active bool) (*UserDTO, error) {
	if !active && actorID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cannot deactivate your own account")
	}
	if err := s.repo.SetActive(ctx, userID, active); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload user")
	}
	return FromModel(user), nil
}

// EnsureBootstrapAdmin creates the configured admin when no user exists yet.
// It reports whether an account was created.
func (s *service) EnsureBootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig) (bool, error) {
	if !cfg.Enabled() {
		return false, nil
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}
	if total > 0 {
		return false, nil
	}

	_, err = s.Create(ctx, CreateUserRequest{
		Username: cfg.AdminUsername,
		Name:     cfg.AdminName,
		Password: cfg.AdminPassword,
		Role:     string(enums.UserRoleAdmin),
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			return false, nil
		}
		return false, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "username", NormalizeUsername(cfg.AdminUsername)), "bootstrap admin created")
	}
	return true, nil
}
