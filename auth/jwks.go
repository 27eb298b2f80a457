package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// KeyResolverConfig configures the JWKS key resolver.
type KeyResolverConfig struct {
	// URL is the issuer's JWKS endpoint.
	URL string

	// TTL is how long a fetched key set stays valid.
	// Default: 1 hour
	TTL time.Duration

	// HTTPClient is the HTTP client used for fetches.
	// If nil, a default client with a 10s timeout is used.
	HTTPClient *http.Client
}

// KeyResolver resolves RSA public keys from a JWKS endpoint by key id.
//
// The full key set is cached per resolver. Within the TTL a resolution is a
// pure read-locked lookup. A miss (TTL expiry, or an unknown kid after key
// rotation) triggers a refetch; concurrent callers coalesce into a single
// in-flight fetch and all wait on its result.
type KeyResolver struct {
	url    string
	ttl    time.Duration
	client *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time

	group singleflight.Group
}

// NewKeyResolver creates a resolver for one JWKS endpoint.
func NewKeyResolver(cfg KeyResolverConfig) *KeyResolver {
	if cfg.TTL == 0 {
		cfg.TTL = time.Hour
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &KeyResolver{
		url:    cfg.URL,
		ttl:    cfg.TTL,
		client: cfg.HTTPClient,
		keys:   make(map[string]*rsa.PublicKey),
	}
}

// Resolve returns the public key for the given key id.
//
// An unknown kid while the cached set is still fresh causes exactly one
// refetch (tolerates rotation); if the refetched set still lacks the kid the
// result is ErrKeyNotFound. Endpoint or decoding failures surface as
// ErrFetchFailure.
func (r *KeyResolver) Resolve(ctx context.Context, keyID string) (*rsa.PublicKey, error) {
	r.mu.RLock()
	fresh := time.Since(r.fetchedAt) < r.ttl
	key := r.lookupLocked(keyID)
	r.mu.RUnlock()

	if fresh && key != nil {
		return key, nil
	}

	// Coalesce concurrent refreshes into one fetch. The winner re-checks the
	// cache under the flight so a caller arriving just after a completed
	// refresh does not pay for another round-trip.
	if _, err, _ := r.group.Do("refresh", func() (any, error) {
		r.mu.RLock()
		fresh := time.Since(r.fetchedAt) < r.ttl
		key := r.lookupLocked(keyID)
		r.mu.RUnlock()
		if fresh && key != nil {
			return nil, nil
		}
		return nil, r.refresh(ctx)
	}); err != nil {
		return nil, err
	}

	r.mu.RLock()
	key = r.lookupLocked(keyID)
	r.mu.RUnlock()

	if key == nil {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

// lookupLocked finds a key by id. Caller must hold at least RLock.
// An empty keyID resolves only when the set holds exactly one key.
func (r *KeyResolver) lookupLocked(keyID string) *rsa.PublicKey {
	if keyID == "" {
		if len(r.keys) == 1 {
			for _, key := range r.keys {
				return key
			}
		}
		return nil
	}
	return r.keys[keyID]
}

// refresh fetches the key set and replaces the cache.
func (r *KeyResolver) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrFetchFailure, resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrFetchFailure, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, jwk := range doc.Keys {
		if jwk.Kty != "RSA" {
			continue
		}
		pub, err := parseRSAPublicKey(jwk)
		if err != nil {
			continue // skip unusable keys, keep the rest of the set
		}
		keys[jwk.Kid] = pub
	}

	r.mu.Lock()
	r.keys = keys
	r.fetchedAt = time.Now()
	r.mu.Unlock()

	return nil
}

// jwksDocument is the JWKS endpoint response format (RFC 7517).
type jwksDocument struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// parseRSAPublicKey converts a JWK to an RSA public key.
func parseRSAPublicKey(jwk jwkKey) (*rsa.PublicKey, error) {
	if jwk.N == "" || jwk.E == "" {
		return nil, fmt.Errorf("missing modulus or exponent")
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("decode n: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("decode e: %w", err)
	}

	e := new(big.Int).SetBytes(eBytes)
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(e.Int64()),
	}, nil
}
