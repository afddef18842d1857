// Package session holds the authenticated identity and bearer token for the
// running client. The store is the single process-wide mutable resource: the
// HTTP client reads the token from it on every request, navigation reads the
// role from it on every command, and both observe clears immediately.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Semester   int    `json:"semester"`
}

type Session struct {
	User  User
	Token string
}

const (
	tokenFile = "token"
	userFile  = "user.json"
)

// Store keeps the current session in memory and mirrors it to two files under
// dir so a restart reconstructs the same session without re-authenticating.
// The two files are written and removed together; a half-present pair is
// treated as no session.
type Store struct {
	dir string

	mu   sync.Mutex
	sess Session
	ok   bool
	subs []func(Session, bool)
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load reconstructs the session from disk. A missing or unreadable pair is
// not an error: the store just starts unauthenticated and removes whatever
// half-written state was left behind.
func (s *Store) Load() error {
	tokenBytes, tokenErr := os.ReadFile(filepath.Join(s.dir, tokenFile))
	userBytes, userErr := os.ReadFile(filepath.Join(s.dir, userFile))
	if tokenErr != nil || userErr != nil {
		s.removeFiles()
		return nil
	}

	token := strings.TrimSpace(string(tokenBytes))
	var user User
	if token == "" || json.Unmarshal(userBytes, &user) != nil {
		s.removeFiles()
		return nil
	}

	s.mu.Lock()
	s.sess = Session{User: user, Token: token}
	s.ok = true
	subs, sess := s.subs, s.sess
	s.mu.Unlock()

	notify(subs, sess, true)
	return nil
}

// Set replaces the session and persists it. Subscribers are notified before
// Set returns, so every dependent sees the new session before the next
// request or navigation is processed.
func (s *Store) Set(user User, token string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	userBytes, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, userFile), userBytes, 0o600); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(token), 0o600); err != nil {
		s.removeFiles()
		return err
	}

	s.mu.Lock()
	s.sess = Session{User: user, Token: token}
	s.ok = true
	subs, sess := s.subs, s.sess
	s.mu.Unlock()

	notify(subs, sess, true)
	return nil
}

// Clear removes the session and both durable files. Safe to call when no
// session exists.
func (s *Store) Clear() error {
	s.removeFiles()

	s.mu.Lock()
	wasSet := s.ok
	s.sess = Session{}
	s.ok = false
	subs := s.subs
	s.mu.Unlock()

	if wasSet {
		notify(subs, Session{}, false)
	}
	return nil
}

// Current returns the session and whether one exists. It never fails.
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess, s.ok
}

// Token returns the current bearer token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Token
}

// Subscribe registers fn to run synchronously on every Set and Clear.
func (s *Store) Subscribe(fn func(Session, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) removeFiles() {
	_ = os.Remove(filepath.Join(s.dir, tokenFile))
	_ = os.Remove(filepath.Join(s.dir, userFile))
}

func notify(subs []func(Session, bool), sess Session, ok bool) {
	for _, fn := range subs {
		fn(sess, ok)
	}
}
