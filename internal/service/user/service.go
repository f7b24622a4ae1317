package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/neomnia/content-mania-sub004/internal/auth"
	"github.com/neomnia/content-mania-sub004/internal/model"
	"github.com/neomnia/content-mania-sub004/internal/repository"
	"github.com/neomnia/content-mania-sub004/internal/util"
	"github.com/neomnia/content-mania-sub004/pkg/rbac"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	userRepo  *repository.UserRepository
	roleRepo  *repository.RoleRepository
	jwtSecret string
}

func NewService(userRepo *repository.UserRepository, roleRepo *repository.RoleRepository, jwtSecret string) *Service {
	return &Service{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		jwtSecret: jwtSecret,
	}
}

// Register creates a new user and assigns the base role.
func (s *Service) Register(ctx context.Context, email, password string, companyID int, isOwner bool) (*model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("email already exists")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		CompanyID:    companyID,
		IsOwner:      isOwner,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	if err := s.roleRepo.AssignRole(ctx, u.ID, rbac.RoleUser); err != nil {
		return nil, err
	}

	return u, nil
}

// Login checks credentials and issues a session credential.
func (s *Service) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.CreateToken(auth.Identity{
		UserID:    u.ID,
		CompanyID: u.CompanyID,
		IsOwner:   u.IsOwner,
		Email:     u.Email,
	}, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return token, u, nil
}
