// Command tripauth-loadtest drives login and refresh traffic through a local
// engine to measure flow latency under concurrency.
//
// The user store is an in-memory map with plain-text password comparison so
// the benchmark measures the engine and cache paths, not Argon2.
//
//	go run ./cmd/tripauth-loadtest -accounts 10000 -concurrency 256 -ops 100000
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tripmate/tripauth"
)

const seedPassword = "load-test-password"

type accountState struct {
	email   string
	refresh string
	mu      sync.Mutex
}

func main() {
	var (
		accounts    = flag.Int("accounts", 10000, "number of accounts to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase (login + refresh)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *accounts <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "accounts, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  *redis.Client
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	store := newLoadStore()

	cfg := tripauth.Config{}
	cfg.JWT.Secret = []byte("loadtest-signing-secret")
	cfg.JWT.AccessTTL = time.Hour
	cfg.Registration.PendingTTL = 24 * time.Hour
	cfg.Registration.ResendCooldown = 5 * time.Minute
	cfg.Refresh.TTL = 7 * 24 * time.Hour
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	engine, err := tripauth.New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserStore(store).
		WithMailer(noopMailer{}).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Printf("seeding %d accounts...\n", *accounts)
	startSeed := time.Now()
	states := make([]accountState, *accounts)
	for i := 0; i < *accounts; i++ {
		email := fmt.Sprintf("user-%d@load.test", i)
		store.seed(email, fmt.Sprintf("user%d", i), seedPassword)

		tokens, err := engine.Login(ctx, email, seedPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed login failed: %v\n", err)
			os.Exit(1)
		}
		states[i] = accountState{email: email, refresh: tokens.RefreshToken}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	loginStats := runLoginPhase(ctx, engine, states, *ops, *concurrency)
	refreshStats := runRefreshPhase(ctx, engine, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("login", loginStats)
	printStats("refresh", refreshStats)
}

func runLoginPhase(ctx context.Context, engine *tripauth.Engine, states []accountState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				t0 := time.Now()
				_, err := engine.Login(ctx, states[idx].email, seedPassword)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runRefreshPhase(ctx context.Context, engine *tripauth.Engine, states []accountState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				state := &states[idx]

				state.mu.Lock()
				t0 := time.Now()
				tokens, err := engine.Refresh(ctx, state.refresh)
				d := time.Since(t0)
				if err == nil {
					state.refresh = tokens.RefreshToken
				} else {
					atomic.AddInt64(&failures, 1)
				}
				state.mu.Unlock()

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

// ---------------------------------------------------------------------------
// In-memory UserStore with plain-text password comparison.
// ---------------------------------------------------------------------------

type loadStore struct {
	mu      sync.RWMutex
	byEmail map[string]*tripauth.Account
	byToken map[string]string
}

type noopMailer struct{}

func (noopMailer) SendVerificationCode(context.Context, string, string) error { return nil }
func (noopMailer) SendResetCode(context.Context, string, string) error        { return nil }

func newLoadStore() *loadStore {
	return &loadStore{
		byEmail: make(map[string]*tripauth.Account),
		byToken: make(map[string]string),
	}
}

func (s *loadStore) seed(email, username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byEmail[email] = &tripauth.Account{
		ID:             email,
		Email:          email,
		UserName:       username,
		PasswordHash:   "plain:" + password,
		EmailConfirmed: true,
		Active:         true,
		Roles:          []string{tripauth.RoleUser},
		Version:        1,
	}
}

func (s *loadStore) FindByEmail(_ context.Context, email string) (*tripauth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.byEmail[email]
	if !ok {
		return nil, tripauth.ErrUserNotFound
	}
	return cloneAccount(acct), nil
}

func (s *loadStore) FindByUsername(_ context.Context, username string) (*tripauth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acct := range s.byEmail {
		if acct.UserName == username {
			return cloneAccount(acct), nil
		}
	}
	return nil, tripauth.ErrUserNotFound
}

func (s *loadStore) FindByRefreshToken(_ context.Context, token string) (*tripauth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email, ok := s.byToken[token]
	if !ok {
		return nil, tripauth.ErrUserNotFound
	}
	acct, ok := s.byEmail[email]
	if !ok {
		return nil, tripauth.ErrUserNotFound
	}
	return cloneAccount(acct), nil
}

func (s *loadStore) VerifyPassword(_ context.Context, account *tripauth.Account, plain string) (bool, error) {
	return strings.TrimPrefix(account.PasswordHash, "plain:") == plain, nil
}

func (s *loadStore) Create(_ context.Context, account *tripauth.Account, _ string) (*tripauth.Account, error) {
	return nil, errors.New("loadtest store is seed-only")
}

func (s *loadStore) Update(_ context.Context, account *tripauth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byEmail[account.Email]
	if !ok {
		return tripauth.ErrUserNotFound
	}
	if current.Version != account.Version {
		return tripauth.ErrVersionConflict
	}

	next := cloneAccount(account)
	next.Version++
	s.byEmail[account.Email] = next
	for i := range next.RefreshTokens {
		s.byToken[next.RefreshTokens[i].Token] = account.Email
	}
	account.Version = next.Version
	return nil
}

func (s *loadStore) GeneratePasswordResetToken(context.Context, *tripauth.Account) (string, error) {
	return "", errors.New("loadtest store does not support resets")
}

func (s *loadStore) ConsumePasswordResetToken(context.Context, *tripauth.Account, string, string) error {
	return errors.New("loadtest store does not support resets")
}

func cloneAccount(a *tripauth.Account) *tripauth.Account {
	clone := *a
	clone.Roles = append([]string(nil), a.Roles...)
	clone.RefreshTokens = append([]tripauth.RefreshToken(nil), a.RefreshTokens...)
	return &clone
}
