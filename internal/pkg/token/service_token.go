package token

import (
	"sync"
	"time"
)

// ServiceTokenSource signs the token one service presents to another. The
// token is reused until the last fifth of its lifetime.
type ServiceTokenSource struct {
	maker Maker
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	token     string
	expiredAt time.Time
}

func NewServiceTokenSource(maker Maker, ttl time.Duration) *ServiceTokenSource {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ServiceTokenSource{maker: maker, ttl: ttl, now: time.Now}
}

func (s *ServiceTokenSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Add(s.ttl/5).Before(s.expiredAt) {
		return s.token, nil
	}
	token, payload, err := s.maker.CreateToken(ServiceUPN, 0, s.ttl)
	if err != nil {
		return "", err
	}
	s.token, s.expiredAt = token, payload.ExpiredAt
	return token, nil
}
