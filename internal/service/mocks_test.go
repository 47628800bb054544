package service

// In-memory store fakes shared by the service tests. They implement the store
// interfaces faithfully enough to exercise the credential state machine
// without a database: replacement, attempt counting and single-use
// consumption all behave like the SQL they stand in for.

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rahul3988/updnefol-backend/internal/models"
	"github.com/rahul3988/updnefol-backend/internal/repository"
)

// ==============================================
// USER STORE
// ==============================================

type memUserStore struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*models.User

	passwordWrites []string // hashes written via UpdatePassword, in order
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[int]*models.User)}
}

func (s *memUserStore) add(user *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	s.users[user.ID] = user
	return user
}

func (s *memUserStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Phone == user.Phone || existing.Email == user.Email {
			return repository.ErrUserAlreadyExists
		}
	}
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	s.users[user.ID] = user
	return nil
}

func (s *memUserStore) GetUserByID(_ context.Context, userID int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *memUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUserStore) GetUserByPhone(_ context.Context, phone string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Phone == phone {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUserStore) UpdatePassword(_ context.Context, userID int, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	s.passwordWrites = append(s.passwordWrites, passwordHash)
	return nil
}

func (s *memUserStore) UpdateLastLogin(_ context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.LastLoginAt = sql.NullTime{Time: time.Now(), Valid: true}
	user.FailedLoginAttempts = 0
	return nil
}

func (s *memUserStore) IncrementFailedLogins(_ context.Context, userID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return 0, repository.ErrUserNotFound
	}
	user.FailedLoginAttempts++
	return user.FailedLoginAttempts, nil
}

func (s *memUserStore) LockAccount(_ context.Context, userID int, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.LockedUntil = sql.NullTime{Time: until, Valid: true}
	return nil
}

func (s *memUserStore) UnlockAccount(_ context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.LockedUntil = sql.NullTime{}
	user.FailedLoginAttempts = 0
	return nil
}

func (s *memUserStore) get(userID int) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *s.users[userID]
	return &copied
}

// ==============================================
// CREDENTIAL STORE
// ==============================================

type memCredentialStore struct {
	mu     sync.Mutex
	nextID int64
	creds  map[int64]*models.Credential
	users  *memUserStore // for ConsumeAndSetPassword
}

func newMemCredentialStore(users *memUserStore) *memCredentialStore {
	return &memCredentialStore{creds: make(map[int64]*models.Credential), users: users}
}

func (s *memCredentialStore) Replace(_ context.Context, cred *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.creds {
		if existing.Subject == cred.Subject && existing.Purpose == cred.Purpose {
			delete(s.creds, id)
		}
	}
	s.nextID++
	cred.ID = s.nextID
	cred.CreatedAt = time.Now()
	copied := *cred
	s.creds[cred.ID] = &copied
	return nil
}

func (s *memCredentialStore) GetActive(_ context.Context, subject, purpose string) (*models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.Credential
	for _, cred := range s.creds {
		if cred.Subject != subject || cred.Purpose != purpose || cred.IsConsumed() {
			continue
		}
		if latest == nil || cred.CreatedAt.After(latest.CreatedAt) {
			latest = cred
		}
	}
	if latest == nil {
		return nil, repository.ErrCredentialNotFound
	}
	copied := *latest
	return &copied, nil
}

func (s *memCredentialStore) IncrementAttempts(_ context.Context, credID int64) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[credID]
	if !ok {
		return 0, repository.ErrCredentialNotFound
	}
	cred.Attempts++
	return cred.Attempts, nil
}

func (s *memCredentialStore) Consume(_ context.Context, credID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[credID]
	if !ok || cred.IsConsumed() {
		return false, nil
	}
	cred.ConsumedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	return true, nil
}

func (s *memCredentialStore) ConsumeAndSetPassword(_ context.Context, credID int64, userID int, passwordHash string) error {
	s.mu.Lock()
	cred, ok := s.creds[credID]
	if !ok || cred.IsConsumed() {
		s.mu.Unlock()
		return repository.ErrCredentialNotFound
	}
	cred.ConsumedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	s.mu.Unlock()
	return s.users.UpdatePassword(context.Background(), userID, passwordHash)
}

func (s *memCredentialStore) Delete(_ context.Context, credID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, credID)
	return nil
}

func (s *memCredentialStore) DeleteExpired(_ context.Context, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, cred := range s.creds {
		if cred.IsExpired() {
			delete(s.creds, id)
			n++
		}
	}
	return n, nil
}

func (s *memCredentialStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.creds)
}

func (s *memCredentialStore) seed(cred *models.Credential) *models.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	cred.ID = s.nextID
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now()
	}
	s.creds[cred.ID] = cred
	return cred
}

// ==============================================
// NOTIFIER AND LIMITER
// ==============================================

type enqueuedMessage struct {
	channel   string
	recipient string
	fallback  string
	subject   string
	body      string
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []enqueuedMessage
	err      error
}

func (n *recordingNotifier) EnqueueEmail(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.messages = append(n.messages, enqueuedMessage{
		channel:   models.NotificationChannelEmail,
		recipient: to,
		subject:   subject,
		body:      body,
	})
	return nil
}

func (n *recordingNotifier) EnqueueWhatsApp(_ context.Context, toPhone, fallbackEmail, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.messages = append(n.messages, enqueuedMessage{
		channel:   models.NotificationChannelWhatsApp,
		recipient: toPhone,
		fallback:  fallbackEmail,
		body:      body,
	})
	return nil
}

func (n *recordingNotifier) all() []enqueuedMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]enqueuedMessage(nil), n.messages...)
}

type stubLimiter struct {
	err error
}

func (l *stubLimiter) Allow(context.Context, string) error {
	return l.err
}
