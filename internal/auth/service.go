package auth

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/blinkedin/backend/internal/catalog"
	"github.com/blinkedin/backend/internal/models"
)

// ErrDuplicateEmail is returned when registering with an email that already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrInvalidCredentials is returned on login with a bad email or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidSignup is returned when signup input fails validation.
var ErrInvalidSignup = errors.New("invalid signup")

// AccountStore is the minimal account repository interface auth needs.
type AccountStore interface {
	Create(ctx context.Context, a *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}

// RegisterInput is the signup payload. Role must be customer or pro; admin
// accounts are created only by the offline bootstrap command.
type RegisterInput struct {
	Email      string
	Password   string
	Name       string
	Role       models.Role
	Profession string
	City       string
	Phone      string
	Lat        float64
	Lng        float64
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*models.Account, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (Principal, error)
}

type service struct {
	store  AccountStore
	secret []byte
}

func NewService(store AccountStore) *service {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "blinkedin-dev-secret"
	}
	return &service{store: store, secret: []byte(secret)}
}

var _ Service = (*service)(nil)

type claims struct {
	jwt.RegisteredClaims
	Name       string `json:"name"`
	Role       string `json:"role"`
	City       string `json:"city"`
	Profession string `json:"profession,omitempty"`
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	if in.Role != models.RoleCustomer && in.Role != models.RoleProfessional {
		return nil, ErrInvalidSignup
	}
	if in.Email == "" || in.Password == "" || in.Name == "" || in.City == "" {
		return nil, ErrInvalidSignup
	}
	if in.Role == models.RoleProfessional && !catalog.Valid(in.Profession) {
		return nil, ErrInvalidSignup
	}

	// Explicit uniqueness check first so the common collision surfaces as a
	// typed error; the unique index still backstops the race.
	if _, err := s.store.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	acc := &models.Account{
		ID:            uuid.New(),
		Email:         in.Email,
		Name:          in.Name,
		PasswordHash:  string(hash),
		Role:          in.Role,
		Profession:    in.Profession,
		City:          in.City,
		Lat:           in.Lat,
		Lng:           in.Lng,
		Phone:         in.Phone,
		WalletBalance: models.DefaultWalletBalance,
	}
	if acc.Role == models.RoleCustomer {
		acc.Profession = ""
	}
	if err := s.store.Create(ctx, acc); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return acc, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	acc, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueToken(acc)
}

func (s *service) issueToken(acc *models.Account) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Name:       acc.Name,
		Role:       string(acc.Role),
		City:       acc.City,
		Profession: acc.Profession,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

func (s *service) ValidateToken(_ context.Context, token string) (Principal, error) {
	tok, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return Principal{}, err
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return Principal{}, errors.New("invalid token")
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return Principal{}, err
	}
	return Principal{
		AccountID:  id,
		Name:       c.Name,
		Role:       models.Role(c.Role),
		City:       c.City,
		Profession: c.Profession,
	}, nil
}
