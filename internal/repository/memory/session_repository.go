package memory

import (
	"time"

	"cardionote-be/pkg/session"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Refresh sessions live for 7 days; expired items are purged hourly.
	c := cache.New(7*24*time.Hour, 1*time.Hour)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(s *session.Session) {
	r.cache.Set(s.Token, s, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(token string) (*session.Session, bool) {
	if x, found := r.cache.Get(token); found {
		return x.(*session.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(token string) {
	r.cache.Delete(token)
}
