package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	bruteForceCleanup    = 60 * time.Second
	bruteForceMaxRecords = 10000
)

// LoginPolicy bounds failed sign-ins per account email.
type LoginPolicy struct {
	// MaxAttempts failures inside Window lock the email for Lockout.
	MaxAttempts int
	Window      time.Duration
	Lockout     time.Duration
}

// DefaultLoginPolicy allows five failures per 15 minutes, then locks for 5.
var DefaultLoginPolicy = LoginPolicy{MaxAttempts: 5, Window: 15 * time.Minute, Lockout: 5 * time.Minute}

func (p LoginPolicy) withDefaults() LoginPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultLoginPolicy.MaxAttempts
	}

	if p.Window <= 0 {
		p.Window = DefaultLoginPolicy.Window
	}

	if p.Lockout <= 0 {
		p.Lockout = DefaultLoginPolicy.Lockout
	}

	return p
}

type failureRecord struct {
	attempts  int
	firstFail time.Time
	lockedAt  time.Time
}

// BruteForceGuard counts failed operator sign-ins per email. Emails are kept
// only as SHA-256 digests so the table never holds addresses in clear.
type BruteForceGuard struct {
	mu      sync.Mutex
	records map[string]*failureRecord
	policy  LoginPolicy
	log     *logrus.Logger
	now     func() time.Time
}

// NewBruteForceGuard creates a guard. A background sweep drops stale entries
// until ctx is cancelled.
func NewBruteForceGuard(ctx context.Context, log *logrus.Logger, policy LoginPolicy) *BruteForceGuard {
	g := &BruteForceGuard{
		records: make(map[string]*failureRecord),
		policy:  policy.withDefaults(),
		log:     log,
		now:     time.Now,
	}
	go g.cleanupLoop(ctx)

	return g
}

func emailKey(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// LockedFor returns how long email stays locked out, or 0 if it may sign in.
func (g *BruteForceGuard) LockedFor(email string) time.Duration {
	key := emailKey(email)

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[key]
	if !ok || rec.lockedAt.IsZero() {
		return 0
	}

	return max(rec.lockedAt.Add(g.policy.Lockout).Sub(g.now()), 0)
}

// RecordFailure counts a failed sign-in for email and locks it once the
// policy's attempt limit is reached inside the window.
func (g *BruteForceGuard) RecordFailure(email string) {
	key := emailKey(email)
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[key]
	if !ok || now.Sub(rec.firstFail) > g.policy.Window {
		rec = &failureRecord{firstFail: now}
		g.records[key] = rec
	}

	rec.attempts++
	if rec.attempts >= g.policy.MaxAttempts && rec.lockedAt.IsZero() {
		rec.lockedAt = now
		g.log.WithFields(logrus.Fields{
			"email_hash": key[:16],
			"attempts":   rec.attempts,
			"lockout":    g.policy.Lockout.String(),
		}).Warn("operator sign-in locked after repeated failures")
	}
}

// Reset forgets email's failures. Call it after a successful sign-in.
func (g *BruteForceGuard) Reset(email string) {
	key := emailKey(email)

	g.mu.Lock()
	delete(g.records, key)
	g.mu.Unlock()
}

func (g *BruteForceGuard) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(bruteForceCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

// sweep drops expired lockouts and stale windows, then enforces the record cap.
func (g *BruteForceGuard) sweep() {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	for k, rec := range g.records {
		if rec.lockedAt.IsZero() {
			if now.Sub(rec.firstFail) >= g.policy.Window {
				delete(g.records, k)
			}

			continue
		}

		if now.Sub(rec.lockedAt) >= g.policy.Lockout {
			delete(g.records, k)
		}
	}

	if extra := len(g.records) - bruteForceMaxRecords; extra > 0 {
		g.evictOldest(extra)
	}
}

// evictOldest drops the n records whose first failure is oldest. Caller holds g.mu.
func (g *BruteForceGuard) evictOldest(n int) {
	keys := make([]string, 0, len(g.records))
	for k := range g.records {
		keys = append(keys, k)
	}

	slices.SortFunc(keys, func(a, b string) int {
		return g.records[a].firstFail.Compare(g.records[b].firstFail)
	})

	for _, k := range keys[:n] {
		delete(g.records, k)
	}
}
