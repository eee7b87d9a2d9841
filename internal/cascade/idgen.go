package cascade

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/geolog-mcp/pkg/types"
)

// Prefix is the leading tag of a generated record identifier
type Prefix string

const (
	PrefixCore          Prefix = "CORE"
	PrefixStrength      Prefix = "STR"
	PrefixDiscontinuity Prefix = "DISC"
	PrefixCondition     Prefix = "COND"
	PrefixSample        Prefix = "SAMP"
	PrefixHydraulic     Prefix = "HYD"
	PrefixSoil          Prefix = "SOIL"
	PrefixPiezometer    Prefix = "PIEZO"
	PrefixWater         Prefix = "WTR"
	PrefixMethod        Prefix = "MTH"
)

const (
	suffixLen = 6

	// DefaultIssuedCacheSize bounds the memory of identifiers handed out by this process
	DefaultIssuedCacheSize = 4096
)

// existsFunc reports whether id is already stored
type existsFunc func(ctx context.Context, id string) (bool, error)

// IDGenerator builds PREFIX-XXXXXX identifiers from the millisecond clock
// and retries on collision.
type IDGenerator struct {
	retry  RetryConfig
	now    func() time.Time
	issued *lru.Cache[string, struct{}]
	mu     sync.Mutex

	// onCollision is called for every rejected candidate
	onCollision func(prefix Prefix)
}

// NewIDGenerator creates a generator; cacheSize <= 0 uses DefaultIssuedCacheSize
func NewIDGenerator(retry RetryConfig, cacheSize int) (*IDGenerator, error) {
	if retry.MaxRetries <= 0 {
		return nil, fmt.Errorf("id generation needs at least one attempt, got %d", retry.MaxRetries)
	}
	if cacheSize <= 0 {
		cacheSize = DefaultIssuedCacheSize
	}
	cache, err := lru.New[string, struct{}](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create id cache: %w", err)
	}
	return &IDGenerator{retry: retry, now: time.Now, issued: cache}, nil
}

// candidate encodes the clock as the last six base-36 digits
func (g *IDGenerator) candidate(prefix Prefix) string {
	enc := strings.ToUpper(strconv.FormatInt(g.now().UnixMilli(), 36))
	if len(enc) > suffixLen {
		enc = enc[len(enc)-suffixLen:]
	}
	return string(prefix) + "-" + enc
}

// Next returns an identifier that neither exists in the store nor was issued
// earlier by this generator. It fails with types.ErrIdGenerationExhausted once
// the attempt bound is reached.
func (g *IDGenerator) Next(ctx context.Context, prefix Prefix, exists existsFunc) (string, error) {
	id, attempts, err := retryWithBackoff(ctx, g.retry, func() (string, error) {
		id := g.candidate(prefix)

		g.mu.Lock()
		seen := g.issued.Contains(id)
		g.mu.Unlock()
		if !seen {
			taken, err := exists(ctx, id)
			if err != nil {
				return "", err
			}
			seen = taken
		}
		if seen {
			if g.onCollision != nil {
				g.onCollision(prefix)
			}
			return "", errRetry
		}

		g.mu.Lock()
		g.issued.Add(id, struct{}{})
		g.mu.Unlock()
		return id, nil
	})
	if errors.Is(err, errRetry) {
		return "", fmt.Errorf("%w: no free %s identifier after %d attempts", types.ErrIdGenerationExhausted, prefix, attempts)
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
