package tripauth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type sentMail struct {
	To   string
	Code string
}

// captureMailer records outbound messages and can be told to fail the next
// send.
type captureMailer struct {
	mu            sync.Mutex
	verifications []sentMail
	resets        []sentMail
	failNext      error
}

func (m *captureMailer) SendVerificationCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}
	m.verifications = append(m.verifications, sentMail{To: to, Code: code})
	return nil
}

func (m *captureMailer) SendResetCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}
	m.resets = append(m.resets, sentMail{To: to, Code: code})
	return nil
}

func (m *captureMailer) lastVerification(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.verifications) == 0 {
		t.Fatal("no verification email was sent")
	}
	return m.verifications[len(m.verifications)-1]
}

func (m *captureMailer) lastReset(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.resets) == 0 {
		t.Fatal("no reset email was sent")
	}
	return m.resets[len(m.resets)-1]
}

func (m *captureMailer) failNextSend(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// mockUserStore is an in-memory UserStore with copy-on-read semantics so
// engine-side mutations only land through Update, like a real database.
type mockUserStore struct {
	mu         sync.Mutex
	byEmail    map[string]*Account
	resetCodes map[string]string
	createErr  error
	updateErr  error
	updates    int
	resetSeq   int
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		byEmail:    make(map[string]*Account),
		resetCodes: make(map[string]string),
	}
}

func copyAccount(a *Account) *Account {
	out := *a
	out.Roles = append([]string(nil), a.Roles...)
	out.RefreshTokens = make([]RefreshToken, len(a.RefreshTokens))
	for i, rt := range a.RefreshTokens {
		out.RefreshTokens[i] = rt
		if rt.RevokedAt != nil {
			revoked := *rt.RevokedAt
			out.RefreshTokens[i].RevokedAt = &revoked
		}
	}
	return &out
}

func mockHash(plain string) string {
	return "hash:" + plain
}

func (s *mockUserStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.byEmail[email]; ok {
		return copyAccount(a), nil
	}
	return nil, ErrUserNotFound
}

func (s *mockUserStore) FindByUsername(_ context.Context, username string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.byEmail {
		if a.UserName == username {
			return copyAccount(a), nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *mockUserStore) FindByRefreshToken(_ context.Context, token string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.byEmail {
		for _, rt := range a.RefreshTokens {
			if rt.Token == token {
				return copyAccount(a), nil
			}
		}
	}
	return nil, ErrUserNotFound
}

func (s *mockUserStore) VerifyPassword(_ context.Context, account *Account, plain string) (bool, error) {
	return account.PasswordHash == mockHash(plain), nil
}

func (s *mockUserStore) Create(_ context.Context, account *Account, plainPassword string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	if _, ok := s.byEmail[account.Email]; ok {
		return nil, fmt.Errorf("duplicate email %q", account.Email)
	}
	stored := copyAccount(account)
	stored.ID = uuid.NewString()
	stored.PasswordHash = mockHash(plainPassword)
	s.byEmail[stored.Email] = stored
	return copyAccount(stored), nil
}

func (s *mockUserStore) Update(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	current, ok := s.byEmail[account.Email]
	if !ok {
		return ErrUserNotFound
	}
	if account.Version != current.Version {
		return ErrVersionConflict
	}
	stored := copyAccount(account)
	stored.Version++
	s.byEmail[account.Email] = stored
	s.updates++
	return nil
}

func (s *mockUserStore) GeneratePasswordResetToken(_ context.Context, account *Account) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetSeq++
	code := fmt.Sprintf("RESET-%d", s.resetSeq)
	s.resetCodes[account.ID] = code
	return code, nil
}

func (s *mockUserStore) ConsumePasswordResetToken(_ context.Context, account *Account, token, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.resetCodes[account.ID]
	if !ok || stored != token {
		return fmt.Errorf("reset code mismatch")
	}
	delete(s.resetCodes, account.ID)
	current, ok := s.byEmail[account.Email]
	if !ok {
		return ErrUserNotFound
	}
	current.PasswordHash = mockHash(newPassword)
	return nil
}

// account returns the stored record, bypassing copy semantics, for
// assertions.
func (s *mockUserStore) account(t *testing.T, email string) *Account {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byEmail[email]
	if !ok {
		t.Fatalf("no stored account for %q", email)
	}
	return copyAccount(a)
}

func (s *mockUserStore) seed(a *Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.byEmail[a.Email] = a
}

type testEngine struct {
	engine *Engine
	store  *mockUserStore
	mailer *captureMailer
	mr     *miniredis.Miniredis
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.Secret = []byte("test-signing-secret")
	cfg.JWT.Issuer = "tripmate"
	return cfg
}

func newTestEngine(t *testing.T, mutate func(*Config)) testEngine {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	store := newMockUserStore()
	mailer := &captureMailer{}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserStore(store).
		WithMailer(mailer).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return testEngine{engine: engine, store: store, mailer: mailer, mr: mr}
}

func registerAndVerify(t *testing.T, te testEngine, req RegisterRequest) *TokenResponse {
	t.Helper()
	ctx := context.Background()

	if _, err := te.engine.Register(ctx, req); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	code := te.mailer.lastVerification(t).Code
	tokens, err := te.engine.VerifyEmail(ctx, req.Email, code)
	if err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}
	return tokens
}

func aliceRequest() RegisterRequest {
	return RegisterRequest{
		Username:        "alice",
		Email:           "alice@x.com",
		Phone:           "+201000000000",
		Password:        "Abcdef1!",
		ConfirmPassword: "Abcdef1!",
		Country:         "Egypt",
	}
}

func assertUppercaseHex(t *testing.T, code string) {
	t.Helper()
	if len(code) != 6 {
		t.Fatalf("expected 6-char code, got %q", code)
	}
	if strings.ToUpper(code) != code {
		t.Fatalf("code %q is not uppercase", code)
	}
	for _, c := range code {
		if !strings.ContainsRune("0123456789ABCDEF", c) {
			t.Fatalf("code %q contains non-hex character %q", code, c)
		}
	}
}

func advancePending(t *testing.T, te testEngine, email string, by time.Duration) {
	t.Helper()
	// Shift the staged record's timestamps backwards so cool-down and TTL
	// math behave as if the given duration had elapsed.
	ctx := context.Background()
	var pending pendingRegistration
	found, err := te.engine.cache.Get(ctx, pendingKey(email), &pending)
	if err != nil || !found {
		t.Fatalf("no pending record for %q (found=%v err=%v)", email, found, err)
	}
	pending.CreatedAt = pending.CreatedAt.Add(-by)
	pending.ExpiresAt = pending.ExpiresAt.Add(-by)
	if err := te.engine.cache.Set(ctx, pendingKey(email), pending, time.Until(pending.ExpiresAt)); err != nil {
		t.Fatalf("rewrite pending record: %v", err)
	}
}
