package matrix

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Oslicek/Sazinka-sub005/planning"
)

func TestCacheKey(t *testing.T) {
	a := planning.Location{Lat: 49.19510, Lng: 16.60680}
	b := planning.Location{Lat: 50.07550, Lng: 14.43780}
	c := planning.Location{Lat: 49.27720, Lng: 16.99880}

	key := cacheKey([]planning.Location{a, b}, []planning.Location{c})
	require.True(t, strings.HasPrefix(key, CacheKeyPrefix))
	require.Equal(t, "matrix:table:49.19510,16.60680;50.07550,14.43780|49.27720,16.99880", key)

	// deterministic
	require.Equal(t, key, cacheKey([]planning.Location{a, b}, []planning.Location{c}))

	// direction matters
	require.NotEqual(t, key, cacheKey([]planning.Location{c}, []planning.Location{a, b}))

	// order within a side matters
	require.NotEqual(t, key, cacheKey([]planning.Location{b, a}, []planning.Location{c}))
}

func TestCacheKeyRoundsCoordinates(t *testing.T) {
	exact := planning.Location{Lat: 49.195100, Lng: 16.606800}
	nearby := planning.Location{Lat: 49.1951004, Lng: 16.6068004}
	dest := planning.Location{Lat: 50, Lng: 14}

	require.Equal(t,
		cacheKey([]planning.Location{exact}, []planning.Location{dest}),
		cacheKey([]planning.Location{nearby}, []planning.Location{dest}))
}
