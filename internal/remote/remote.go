// Package remote fetches agent files addressed by URL, with a local cache
// and trust-on-first-use domain checking.
package remote

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdflow-ai/mdflow/internal/fetch"
	"github.com/mdflow-ai/mdflow/internal/logging"
	"github.com/mdflow-ai/mdflow/pkg/types"
)

// Store resolves remote agent URLs to cached local files.
type Store struct {
	Home    string
	Fetcher *fetch.Fetcher

	// Trust is given the domain; nil means non-interactive. Accepting
	// records the domain in known_hosts.
	Trust func(domain string) (bool, error)
	// TrustFlag bypasses the prompt (--_trust).
	TrustFlag bool
	// NoCache forces a refetch (--_no-cache).
	NoCache bool
}

// IsURL reports whether the agent argument addresses a remote file.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Resolve checks domain trust, then returns a local path holding the agent
// body, fetching and caching as needed.
func (s *Store) Resolve(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "", types.NewError(types.KindConfigurationError, "invalid agent URL %q", rawURL)
	}

	if err := s.checkTrust(parsed.Host); err != nil {
		return "", err
	}

	cacheDir := filepath.Join(s.Home, ".mdflow", "cache")
	sum := sha256.Sum256([]byte(rawURL))
	cachePath := filepath.Join(cacheDir, hex.EncodeToString(sum[:8])+".md")

	if !s.NoCache {
		if _, err := os.Stat(cachePath); err == nil {
			logging.Debug().Str("url", rawURL).Str("cache", cachePath).Msg("using cached remote agent")
			return cachePath, nil
		}
	}

	body, err := s.Fetcher.Text(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", types.WrapError(types.KindImportError, err, "creating cache directory")
	}
	if err := os.WriteFile(cachePath, []byte(body), 0o644); err != nil {
		return "", types.WrapError(types.KindImportError, err, "writing cache file")
	}
	return cachePath, nil
}

func (s *Store) checkTrust(domain string) error {
	if s.trusted(domain) {
		return nil
	}
	if s.TrustFlag {
		s.record(domain)
		return nil
	}
	if s.Trust == nil {
		return types.NewError(types.KindSecurityError,
			"domain %s is not trusted; rerun with --_trust or on a terminal", domain)
	}
	ok, err := s.Trust(domain)
	if err != nil {
		return err
	}
	if !ok {
		return types.NewError(types.KindUserCancelled, "declined to trust %s", domain)
	}
	s.record(domain)
	return nil
}

func (s *Store) knownHostsPath() string {
	return filepath.Join(s.Home, ".mdflow", "known_hosts")
}

func (s *Store) trusted(domain string) bool {
	data, err := os.ReadFile(s.knownHostsPath())
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == domain {
			return true
		}
	}
	return false
}

func (s *Store) record(domain string) {
	path := s.knownHostsPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(domain + "\n")
}
