package service

import (
	"errors"
	"time"

	dmn "github.com/beka-birhanu/gem-maze/domain"
	"github.com/beka-birhanu/gem-maze/service/i"
	"github.com/google/uuid"
)

const accessTokenTTL = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is already taken")
)

var _ i.Authenticator = &Auth{}

type Auth struct {
	userRepo  i.UserRepo
	tokenizer i.Tokenizer
}

func NewAuth(userRepo i.UserRepo, tokenizer i.Tokenizer) *Auth {
	return &Auth{
		userRepo:  userRepo,
		tokenizer: tokenizer,
	}
}

func (a *Auth) Register(username, password string) error {
	if _, err := a.userRepo.ByUsername(username); err == nil {
		return ErrUsernameTaken
	}

	userConfig := dmn.UserConfig{
		ID:            uuid.New(),
		Username:      username,
		PlainPassword: password,
	}

	user, err := dmn.NewUser(userConfig)
	if err != nil {
		return err
	}

	return a.userRepo.Save(user)
}

func (a *Auth) SignIn(username, password string) (*dmn.User, string, error) {
	user, err := a.userRepo.ByUsername(username)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !user.VerifyPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.tokenizer.Generate(map[string]any{
		"userID":   user.ID.String(),
		"username": user.Username,
	}, accessTokenTTL)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}
