package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/footstock/api-server/internals/models"
	"github.com/footstock/api-server/internals/store"
	"github.com/footstock/api-server/pkg/kvstore"
)

// OpeningBalance is the virtual cash every new account starts with.
const OpeningBalance = 100000.0

var (
	ErrMissingFields      = errors.New("user name, mail id and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

type AuthService struct {
	Store  store.Store
	KV     kvstore.KVStore
	Secret []byte
}

func New(st store.Store, kv kvstore.KVStore, secret string) *AuthService {
	return &AuthService{
		Store:  st,
		KV:     kv,
		Secret: []byte(secret),
	}
}

type LoginRequestBody struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

type SignUpRequestBody struct {
	UserName string `json:"user_name"`
	MailID   string `json:"mail_id"`
	Password string `json:"password"`
}

// SignUp registers the user and opens their trading account with the
// opening balance, both in one transaction.
func (a *AuthService) SignUp(ctx context.Context, req SignUpRequestBody) error {
	if req.UserName == "" || req.MailID == "" || req.Password == "" {
		return ErrMissingFields
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return a.Store.Atomically(ctx, func(tx store.Store) error {
		count, err := tx.CountUsersByMail(ctx, req.MailID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrUserExists
		}
		if _, err := tx.GetUserByName(ctx, req.UserName); err == nil {
			return ErrUserExists
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		user := &models.User{
			UserName:   req.UserName,
			MailID:     req.MailID,
			Password:   string(hashed),
			ProfilePic: "default.jpg",
		}
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.CreateAccount(ctx, &models.Account{
			UserID:      user.UserID,
			Balance:     OpeningBalance,
			LastUpdated: time.Now(),
		})
	})
}

// Login verifies credentials and hands out a session token. The token
// is whitelisted in the KV store per user, so multiple devices can hold
// sessions at once.
func (a *AuthService) Login(ctx context.Context, req LoginRequestBody) (string, error) {
	user, err := a.Store.GetUserByName(ctx, req.UserName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := a.GenerateToken(user.UserID)
	if err != nil {
		return "", err
	}
	if err := a.KV.RPush("session_token_"+fmt.Sprintf("%d", user.UserID), token); err != nil {
		return "", err
	}
	return token, nil
}

func (a *AuthService) GenerateToken(userID int) (string, error) {
	// jti keeps two sessions opened in the same second distinct, so
	// revoking one never touches the other.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour * 72).Unix(),
		"jti":     uuid.NewString(),
	})
	return token.SignedString(a.Secret)
}

func (a *AuthService) ValidateToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.Secret, nil
	})
	if err != nil {
		return 0, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userID, ok := claims["user_id"].(float64)
		if !ok {
			return 0, ErrInvalidToken
		}
		return int(userID), nil
	}
	return 0, ErrInvalidToken
}

// RevokeToken drops the token from the user's whitelist. Even a token
// that has not yet expired is dead after this.
func (a *AuthService) RevokeToken(userID int, tokenString string) error {
	key := "session_token_" + fmt.Sprintf("%d", userID)
	tokens, err := a.KV.LRange(key, 0, -1)
	if err != nil {
		return err
	}
	for _, t := range tokens {
		if t == tokenString {
			return a.KV.LRem(key, 1, t)
		}
	}
	return nil
}

func (a *AuthService) CheckIfTokenIsWhiteListed(userID int, tokenString string) bool {
	tokens, err := a.KV.LRange("session_token_"+fmt.Sprintf("%d", userID), 0, -1)
	if err != nil {
		return false
	}
	for _, t := range tokens {
		if t == tokenString {
			return true
		}
	}
	return false
}

func (a *AuthService) Logout(userID int, tokenString string) error {
	return a.RevokeToken(userID, tokenString)
}
