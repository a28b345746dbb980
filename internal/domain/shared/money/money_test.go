package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiply(t *testing.T) {
	m, err := Must(12000, "eur").Multiply(4)
	require.NoError(t, err)
	assert.Equal(t, Must(48000, "EUR"), m)

	_, err = Must(5_000_000_000_000_000_000, "EUR").Multiply(2)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Must(math.MinInt64, "EUR").Multiply(-1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestAdd(t *testing.T) {
	sum, err := Must(100, "EUR").Add(Must(50, "EUR"))
	require.NoError(t, err)
	assert.Equal(t, int64(150), sum.Amount)

	_, err = Must(100, "EUR").Add(Must(50, "USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = Must(math.MaxInt64, "EUR").Add(Must(1, "EUR"))
	assert.ErrorIs(t, err, ErrOverflow)
}
