package service

import (
	"errors"
	"strings"

	"blogit/dao"
	"blogit/internal/apperror"
	"blogit/internal/auth"
	"blogit/model"
	"blogit/utils"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// UserService implements the signup/login/identity flows on top of the
// credential store and the token issuer.
type UserService struct {
	dao *dao.UserDAO
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(dao *dao.UserDAO) *UserService {
	return &UserService{dao: dao}
}

// Signup creates a user and issues a session token. Username collides and
// email collides both map to the same Conflict outcome.
func (s *UserService) Signup(username, email, password string) (string, *model.User, *apperror.AppError) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return "", nil, apperror.NewBadRequest("All fields required")
	}

	taken, err := s.dao.ExistsByUsernameOrEmail(username, email)
	if err != nil {
		return "", nil, apperror.NewInternal("Signup failed", err)
	}
	if taken {
		return "", nil, apperror.NewConflict("User with email/username already exists")
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return "", nil, apperror.NewInternal("Signup failed", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.dao.CreateUser(user); err != nil {
		// The pre-check races with concurrent signups; the unique indexes are
		// the source of truth, so a duplicate-key failure is still a Conflict.
		if isDuplicateKey(err) {
			return "", nil, apperror.NewConflict("User with email/username already exists")
		}
		return "", nil, apperror.NewInternal("Signup failed", err)
	}

	token, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		return "", nil, apperror.NewInternal("Signup failed", err)
	}
	return token, user, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password return the identical error so accounts cannot be enumerated.
func (s *UserService) Login(email, password string) (string, *model.User, *apperror.AppError) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, apperror.NewBadRequest("All fields required")
	}

	// Usernames cannot contain '@', so an email identifier only matches the
	// email column here.
	user, err := s.dao.FindByEmailOrUsername(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperror.NewInvalidCredentials()
		}
		return "", nil, apperror.NewInternal("Login failed", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, apperror.NewInvalidCredentials()
	}

	token, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		return "", nil, apperror.NewInternal("Login failed", err)
	}
	return token, user, nil
}

// Me returns the public view of the token subject's own record. A valid token
// whose user row has since disappeared yields NotFound.
func (s *UserService) Me(userID uint64) (*model.User, *apperror.AppError) {
	user, err := s.dao.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("User not found")
		}
		return nil, apperror.NewInternal("Lookup failed", err)
	}
	return user, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
