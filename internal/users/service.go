package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homegoods-vn/homegoods-backend/pkg/enums"
	pkgerrors "github.com/homegoods-vn/homegoods-backend/pkg/errors"
	"github.com/homegoods-vn/homegoods-backend/pkg/pagination"
)

// MaxActiveAdmins caps how many active administrator accounts may exist.
const MaxActiveAdmins = 2

// Service defines the behavior needed by the users controllers.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, params pagination.Params) ([]UserDTO, pagination.Page, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*UserDTO, error)
	UpdateRole(ctx context.Context, id uuid.UUID, req UpdateRoleRequest) (*UserDTO, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo UserRepository
	tx   txRunner
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo UserRepository
	Tx   txRunner
}

// NewService constructs the users service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: params.Repo, tx: params.Tx}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]UserDTO, pagination.Page, error) {
	params = params.Normalize()
	list, total, err := s.repo.List(ctx, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	dtos := make([]UserDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *FromModel(&list[i]))
	}
	return dtos, pagination.NewPage(params, total), nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*UserDTO, error) {
	if err := s.repo.UpdateDisplayName(ctx, id, req.DisplayName); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}
	return s.Get(ctx, id)
}

// UpdateRole promotes or demotes a user. Before promoting, the existing
// active admin rows are locked FOR UPDATE so concurrent promotions serialize
// on the cap check instead of both reading a stale count.
func (s *service) UpdateRole(ctx context.Context, id uuid.UUID, req UpdateRoleRequest) (*UserDTO, error) {
	role, err := enums.ParseUserRole(req.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		user, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
		}

		if role == enums.UserRoleAdmin && user.IsActive {
			others, err := txRepo.LockActiveAdmins(ctx, user.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count admins")
			}
			if others >= MaxActiveAdmins {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("at most %d active admin accounts are allowed", MaxActiveAdmins))
			}
		}

		if err := txRepo.UpdateRole(ctx, user.ID, role); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update role")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate user")
	}
	return nil
}
