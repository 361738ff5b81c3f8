// Package session manages the ephemeral Coles storefront session. Coles
// serves its search API under a Next.js build id that rotates with each
// deploy, so the id and the accompanying cookies are scraped from the
// landing page and cached for a short TTL.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cartcompare/backend/internal/domain"
	"github.com/cartcompare/backend/internal/infrastructure/httpclient"
)

const (
	DefaultTTL = 5 * time.Minute

	landingURL = "https://www.coles.com.au/"

	// single key: there is only one Coles session to share
	flightKey = "coles"
)

var buildIDRe = regexp.MustCompile(`"buildId"\s*:\s*"([^"]+)"`)

// Session is a complete cookie/build-id pair. It is always replaced as a
// whole; readers never see a half-refreshed session.
type Session struct {
	Cookies     string
	BuildID     string
	RefreshedAt time.Time
}

// HTMLFetcher is the part of the fetch client the manager needs.
type HTMLFetcher interface {
	GetHTML(ctx context.Context, rawURL string, opts httpclient.Options) (string, []*http.Cookie, error)
}

// Manager lazily acquires and TTL-caches the Coles session. Concurrent
// callers hitting an expired session share a single upstream refresh.
type Manager struct {
	fetcher HTMLFetcher
	ttl     time.Duration
	logger  *zap.Logger

	mu      sync.RWMutex
	current *Session

	flight singleflight.Group
}

// NewManager creates a session manager. A non-positive ttl falls back to
// the 5 minute default.
func NewManager(fetcher HTMLFetcher, ttl time.Duration, logger *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{fetcher: fetcher, ttl: ttl, logger: logger}
}

// EnsureSession returns a valid session, refreshing it first if unset or
// stale. Under N concurrent callers with an expired session exactly one
// landing-page fetch occurs; every caller gets that refresh's outcome.
func (m *Manager) EnsureSession(ctx context.Context) (Session, error) {
	if s, ok := m.fresh(); ok {
		return s, nil
	}
	v, err, _ := m.flight.Do(flightKey, func() (any, error) {
		// A refresh that completed while we queued counts.
		if s, ok := m.fresh(); ok {
			return s, nil
		}
		return m.refresh(ctx)
	})
	if err != nil {
		return Session{}, err
	}
	return v.(Session), nil
}

func (m *Manager) fresh() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.current.BuildID == "" {
		return Session{}, false
	}
	if time.Since(m.current.RefreshedAt) > m.ttl {
		return Session{}, false
	}
	return *m.current, true
}

func (m *Manager) refresh(ctx context.Context) (Session, error) {
	html, cookies, err := m.fetcher.GetHTML(ctx, landingURL, httpclient.Options{
		Store:   domain.StoreColes,
		Headers: map[string]string{"Accept": "text/html"},
	})
	if err != nil {
		return Session{}, fmt.Errorf("session refresh: %w", err)
	}

	buildID := extractBuildID(html)
	if buildID == "" {
		return Session{}, fmt.Errorf("%w: marker not found on landing page", domain.ErrSessionExtract)
	}

	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}

	s := Session{
		Cookies:     strings.Join(pairs, "; "),
		BuildID:     buildID,
		RefreshedAt: time.Now(),
	}
	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()

	m.logger.Debug("coles session refreshed", zap.String("buildId", buildID))
	return s, nil
}

// extractBuildID pulls the Next.js build id out of the landing page. The
// id normally lives in the __NEXT_DATA__ script blob; a raw scan of the
// page covers layouts where that script is missing or renamed.
func extractBuildID(html string) string {
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		blob := doc.Find("script#__NEXT_DATA__").First().Text()
		if blob != "" {
			var payload struct {
				BuildID string `json:"buildId"`
			}
			if err := json.Unmarshal([]byte(blob), &payload); err == nil && payload.BuildID != "" {
				return payload.BuildID
			}
		}
	}
	if m := buildIDRe.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}
