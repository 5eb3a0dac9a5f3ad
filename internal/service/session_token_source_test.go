package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"clinic-calendar/internal/domain/entity"
)

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]entity.Session
}

func (m *memorySessions) Save(ctx context.Context, s *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *memorySessions) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.New("session not found")
	}
	return &s, nil
}

func (m *memorySessions) UpdateTokens(ctx context.Context, id string, tokens entity.TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[id]
	s.Tokens = tokens
	m.sessions[id] = s
	return nil
}

func (m *memorySessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memorySessions) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok, nil
}

type slowAuth struct {
	calls   atomic.Int32
	release chan struct{}
}

func (a *slowAuth) Login(ctx context.Context, email, password string) (*entity.LoginPayload, error) {
	return nil, errors.New("not used")
}

func (a *slowAuth) Refresh(ctx context.Context, refreshToken string) (*entity.TokenPair, error) {
	a.calls.Add(1)
	if a.release != nil {
		<-a.release
	}
	return &entity.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
}

func TestSessionTokenSource(t *testing.T) {
	sessions := &memorySessions{sessions: map[string]entity.Session{
		"s1": {ID: "s1", Tokens: entity.TokenPair{AccessToken: "old-access", RefreshToken: "old-refresh"}},
	}}
	auth := &slowAuth{release: make(chan struct{})}
	src := NewSessionTokenSource(sessions, auth, testLogger())
	ctx := entity.WithPrincipal(context.Background(), entity.Principal{SessionID: "s1"})

	token, err := src.Token(ctx)
	if err != nil || token != "old-access" {
		t.Fatalf("unexpected token %q, %v", token, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tok, err := src.Refresh(ctx); err != nil || tok != "new-access" {
				t.Errorf("unexpected refresh result %q, %v", tok, err)
			}
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(auth.release)
	wg.Wait()

	if n := auth.calls.Load(); n != 1 {
		t.Errorf("expected one backend refresh, got %d", n)
	}
	if token, _ := src.Token(ctx); token != "new-access" {
		t.Errorf("refreshed token not persisted, got %q", token)
	}
}

func TestSessionTokenSource_NoPrincipal(t *testing.T) {
	src := NewSessionTokenSource(&memorySessions{sessions: map[string]entity.Session{}}, &slowAuth{}, testLogger())
	if _, err := src.Token(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}
