package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"booking-portal/internal/gateway"
	"booking-portal/internal/status"
	"booking-portal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Session is the portal-local view of an authenticated user: the
// platform token plus a snapshot of the user record it was issued for.
type Session struct {
	ID        string      `json:"id"`
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
}

func (s *Session) Authenticated() bool { return s != nil && s.Token != "" }

func (s *Session) Admin() bool { return s.Authenticated() && s.User.IsAdmin() }

type SessionService struct {
	Redis *redis.Client
	gw    *gateway.Client
	ttl   time.Duration
	log   *zap.Logger
}

func NewSessionService(redisClient *redis.Client, gw *gateway.Client, ttl time.Duration, log *zap.Logger) *SessionService {
	return &SessionService{
		Redis: redisClient,
		gw:    gw,
		ttl:   ttl,
		log:   log,
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Login exchanges credentials for a platform token and opens a session.
func (s *SessionService) Login(ctx context.Context, email, password string) (*Session, error) {
	reply, err := s.gw.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("Login: %w", err)
	}
	return s.create(ctx, reply)
}

// Register creates a platform account and opens a session for it.
func (s *SessionService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	reply, err := s.gw.Register(ctx, name, email, password)
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}
	return s.create(ctx, reply)
}

func (s *SessionService) create(ctx context.Context, reply *gateway.AuthReply) (*Session, error) {
	session := &Session{
		ID:        uuid.NewString(),
		Token:     reply.Token,
		User:      reply.User,
		CreatedAt: time.Now().UTC(),
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("create session: json.Marshal: %w", err)
	}
	if err := s.Redis.Set(ctx, sessionKey(session.ID), raw, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("create session: redis.Set: %w", err)
	}

	s.log.Info("session opened",
		zap.String("user_id", session.User.ID),
		zap.String("role", string(session.User.Role)),
	)
	return session, nil
}

// Load resolves a session ID back to a session. Expired platform
// tokens drop the session so the user is sent through login again.
func (s *SessionService) Load(ctx context.Context, id string) (*Session, error) {
	raw, err := s.Redis.Get(ctx, sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, status.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("Load: redis.Get: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("Load: json.Unmarshal: %w", err)
	}

	if tokenExpired(session.Token) {
		_ = s.Redis.Del(ctx, sessionKey(id)).Err()
		return nil, status.ErrSessionExpired
	}
	return &session, nil
}

// Logout invalidates the platform token and closes the session.
func (s *SessionService) Logout(ctx context.Context, session *Session) error {
	if err := s.gw.Logout(ctx, session.Token); err != nil {
		// The local session is cleared regardless; the token will
		// age out on the platform side.
		s.log.Warn("platform logout failed", zap.Error(err))
	}
	if err := s.Redis.Del(ctx, sessionKey(session.ID)).Err(); err != nil {
		return fmt.Errorf("Logout: redis.Del: %w", err)
	}
	return nil
}

// tokenExpired checks the exp claim locally to avoid a doomed round
// trip. Opaque (non-JWT) tokens pass through unchecked.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
