package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingFields      = errors.New("missing required fields")
	ErrEmailExists        = errors.New("email already exists")
)

type Service struct {
	repo UserRepository
}

func NewService(repo UserRepository) *Service {
	return &Service{repo: repo}
}

// REGISTER: a new account always starts a new household it owns.
func (s *Service) Register(ctx context.Context, name, email, password, householdName string) (*User, error) {
	user, err := s.newUser(ctx, name, email, password, RoleOwner)
	if err != nil {
		return nil, err
	}

	if householdName == "" {
		householdName = name + "'s household"
	}
	household := &Household{Name: householdName}

	if err := s.repo.CreateHousehold(ctx, household, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ADD MEMBER: an owner invites someone into their household.
func (s *Service) AddMember(ctx context.Context, householdID, name, email, password string) (*User, error) {
	if householdID == "" {
		return nil, ErrMissingFields
	}

	user, err := s.newUser(ctx, name, email, password, RoleMember)
	if err != nil {
		return nil, err
	}
	user.HouseholdID = householdID

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) newUser(ctx context.Context, name, email, password, role string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword(
		[]byte(password),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return nil, err
	}

	return &User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
	}, nil
}

// LOGIN
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword(
		[]byte(user.Password),
		[]byte(password),
	)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
