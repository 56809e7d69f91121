package matrix

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Oslicek/Sazinka-sub005/planning"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const (
	// CacheKeyPrefix namespaces matrix entries in redis.
	CacheKeyPrefix = "matrix:table:"
	// DefaultCacheTTL keeps estimates fresh enough for day planning.
	DefaultCacheTTL = 30 * time.Minute

	// coordinates are rounded before keying so nearby lookups hit
	coordPrecision = "%.5f,%.5f"
)

// CachedProvider wraps any MatrixProvider with a redis cache keyed on
// the full origin/destination set. A cache outage degrades to the
// upstream provider, never to an error.
type CachedProvider struct {
	upstream planning.MatrixProvider
	client   *redis.Client
	ttl      time.Duration
}

// NewCachedProvider connects to redis and wraps the upstream provider.
func NewCachedProvider(upstream planning.MatrixProvider, redisAddr, redisPassword string, ttl time.Duration) (*CachedProvider, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedProvider{upstream: upstream, client: client, ttl: ttl}, nil
}

// Matrix serves the query from cache when possible.
func (p *CachedProvider) Matrix(ctx context.Context, origins, destinations []planning.Location) ([][]planning.Leg, error) {
	key := cacheKey(origins, destinations)

	data, err := p.client.Get(ctx, key).Bytes()
	if err == nil {
		var legs [][]planning.Leg
		if err := json.Unmarshal(data, &legs); err == nil {
			return legs, nil
		}
		// corrupted entry, fall through to the upstream
	} else if err != redis.Nil {
		log.Warn().Err(err).Msg("matrix cache read failed")
	}

	legs, err := p.upstream.Matrix(ctx, origins, destinations)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(legs); err == nil {
		if err := p.client.Set(ctx, key, data, p.ttl).Err(); err != nil {
			log.Warn().Err(err).Msg("matrix cache write failed")
		}
	}

	return legs, nil
}

// cacheKey builds a deterministic key from rounded coordinates.
func cacheKey(origins, destinations []planning.Location) string {
	var sb strings.Builder
	sb.WriteString(CacheKeyPrefix)
	for i, loc := range origins {
		if i > 0 {
			sb.WriteByte(';')
		}
		fmt.Fprintf(&sb, coordPrecision, loc.Lat, loc.Lng)
	}
	sb.WriteByte('|')
	for i, loc := range destinations {
		if i > 0 {
			sb.WriteByte(';')
		}
		fmt.Fprintf(&sb, coordPrecision, loc.Lat, loc.Lng)
	}
	return sb.String()
}

var _ planning.MatrixProvider = (*CachedProvider)(nil)
