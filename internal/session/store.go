package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "calc_session"

const secretSize = 32

// Session is a client's identity and gate state as carried between requests.
type Session struct {
	ClientID string
	State    State
}

// New returns a Fresh session with a new client ID.
func New() Session {
	return Session{ClientID: uuid.NewString(), State: Fresh}
}

type claims struct {
	jwt.RegisteredClaims
	Unlocked bool `json:"unlocked"`
}

// StoreConfig configures a CookieStore.
type StoreConfig struct {
	Secret []byte
	TTL    time.Duration
	Secure bool
	Now    func() time.Time
}

// CookieStore keeps the session on the client in an HS256-signed JWT cookie,
// so the server holds no per-client state.
type CookieStore struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewCookieStore returns a store signing with cfg.Secret. An empty secret is
// replaced by a random one, which invalidates sessions on restart.
func NewCookieStore(cfg StoreConfig) (*CookieStore, error) {
	secret := cfg.Secret
	if len(secret) == 0 {
		var err error
		if secret, err = GenerateSecret(); err != nil {
			return nil, err
		}
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", cfg.TTL)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &CookieStore{secret: secret, ttl: cfg.TTL, secure: cfg.Secure, now: now}, nil
}

// GenerateSecret returns a random signing secret.
func GenerateSecret() ([]byte, error) {
	b := make([]byte, secretSize)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	return b, nil
}

// Load returns the session carried by r. A missing cookie yields a new Fresh
// session with a nil error; an invalid, expired, or tampered token yields a new
// Fresh session together with the reason it was discarded.
func (s *CookieStore) Load(r *http.Request) (Session, error) {
	c, err := r.Cookie(CookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return New(), nil
	}
	if err != nil {
		return New(), fmt.Errorf("read session cookie: %w", err)
	}

	sess, err := s.Decode(c.Value)
	if err != nil {
		return New(), err
	}
	return sess, nil
}

// Save writes sess to w as a signed cookie.
func (s *CookieStore) Save(w http.ResponseWriter, sess Session) error {
	token, err := s.Encode(sess)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Encode signs sess into a token.
func (s *CookieStore) Encode(sess Session) (string, error) {
	now := s.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.ClientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Unlocked: sess.State.IsUnlocked(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Decode verifies token and returns the session it carries.
func (s *CookieStore) Decode(token string) (Session, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Session{}, fmt.Errorf("parse session token: %w", err)
	}
	if _, err := uuid.Parse(c.Subject); err != nil {
		return Session{}, fmt.Errorf("session token subject: %w", err)
	}

	state := Fresh
	if c.Unlocked {
		state = Unlocked
	}
	return Session{ClientID: c.Subject, State: state}, nil
}
