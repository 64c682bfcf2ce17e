package mysql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOptionsWithDefaults(t *testing.T) {
	got := Options{}.withDefaults()
	require.Equal(t, 10, got.MaxIdleConns)
	require.Equal(t, 50, got.MaxOpenConns)
	require.Equal(t, time.Hour, got.ConnMaxLifetime)
}

func TestOptionsExplicitValuesKept(t *testing.T) {
	in := Options{MaxIdleConns: 3, MaxOpenConns: 7, ConnMaxLifetime: 5 * time.Minute}
	require.Equal(t, in, in.withDefaults())
}
