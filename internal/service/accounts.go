package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/roberto3101/sistema-control/internal/model"
	"github.com/roberto3101/sistema-control/internal/repository"
)

// MaxFailedLogins: после стольких неудачных попыток подряд учётная запись блокируется.
const MaxFailedLogins = 3

const minPasswordLength = 8

// RegisterInput: данные нового пользователя.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Role     model.Role
}

// AccountService отвечает за вход в систему и учётные записи.
type AccountService struct {
	store      Store
	logger     *zap.Logger
	bcryptCost int
}

// NewAccountService создаёт сервис учётных записей.
func NewAccountService(store Store, logger *zap.Logger) *AccountService {
	return &AccountService{store: store, logger: logger, bcryptCost: bcrypt.DefaultCost}
}

// Register создаёт пользователя с указанной ролью.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return 0, model.Validationf("invalid email %q", in.Email)
	}
	if strings.TrimSpace(in.FullName) == "" {
		return 0, model.Validationf("full name is required")
	}
	if len(in.Password) < minPasswordLength {
		return 0, model.Validationf("password must be at least %d characters", minPasswordLength)
	}
	if !in.Role.Valid() {
		return 0, model.Validationf("unknown role %q", in.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.store.CreateUser(ctx, &model.User{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		Status:       model.UserStatusActive,
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// Authenticate проверяет email и пароль и возвращает пользователя.
// Неудачные попытки считаются; на MaxFailedLogins-й учётная запись блокируется.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var (
		user     *model.User
		loginErr error
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		u, err := tx.LockUserByEmail(ctx, email)
		if err != nil {
			if isNotFound(err) {
				loginErr = model.ErrInvalidCredentials
				return nil
			}
			return err
		}

		switch u.Status {
		case model.UserStatusLocked:
			loginErr = model.ErrAccountLocked
			return nil
		case model.UserStatusInactive:
			loginErr = model.ErrAccountInactive
			return nil
		}

		if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
			if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return fmt.Errorf("compare password: %w", err)
			}

			attempts := u.FailedAttempts + 1
			status := u.Status
			loginErr = model.ErrInvalidCredentials
			if attempts >= MaxFailedLogins {
				status = model.UserStatusLocked
				loginErr = model.ErrAccountLocked
				s.logger.Warn("account locked after failed logins", zap.Int64("user_id", u.ID))
			}
			return tx.SetLoginState(ctx, u.ID, attempts, status)
		}

		if u.FailedAttempts != 0 {
			if err := tx.SetLoginState(ctx, u.ID, 0, u.Status); err != nil {
				return err
			}
			u.FailedAttempts = 0
		}

		user = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if loginErr != nil {
		return nil, loginErr
	}

	return user, nil
}

// GetUser возвращает пользователя по идентификатору.
func (s *AccountService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.store.GetUser(ctx, id)
}
