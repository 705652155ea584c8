package service

import (
	"context"
	"errors"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/gem-maze/domain"
	"github.com/google/uuid"
)

type fakeLogger struct {
	sync.Mutex
	infos    []string
	warnings []string
	errors   []string
}

func (l *fakeLogger) Info(msg string) {
	l.Lock()
	defer l.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *fakeLogger) Warning(msg string) {
	l.Lock()
	defer l.Unlock()
	l.warnings = append(l.warnings, msg)
}

func (l *fakeLogger) Error(msg string) {
	l.Lock()
	defer l.Unlock()
	l.errors = append(l.errors, msg)
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
	lockErr error
	gets    int
	sets    int
	locks   int
	unlocks int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	payload, ok := c.entries[key]
	return payload, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = payload
	return nil
}

func (c *fakeCache) Lock(_ context.Context, _ string) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lockErr != nil {
		return nil, c.lockErr
	}
	c.locks++
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.unlocks++
	}, nil
}

var errUserNotFound = errors.New("user not found")

type fakeUserRepo struct {
	users map[string]*dmn.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*dmn.User)}
}

func (r *fakeUserRepo) Save(user *dmn.User) error {
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserRepo) ByID(id uuid.UUID) (*dmn.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errUserNotFound
}

func (r *fakeUserRepo) ByUsername(username string) (*dmn.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, errUserNotFound
	}
	return u, nil
}

type fakeTokenizer struct {
	claims map[string]any
	ttl    time.Duration
}

func (t *fakeTokenizer) Generate(claims map[string]any, ttl time.Duration) (string, error) {
	t.claims = claims
	t.ttl = ttl
	return "signed-token", nil
}

func (t *fakeTokenizer) Decode(string) (map[string]any, error) {
	return t.claims, nil
}
