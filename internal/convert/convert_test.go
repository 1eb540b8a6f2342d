package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorToMicro(t *testing.T) {
	assert.Equal(t, int64(0), MinorToMicro(0))
	assert.Equal(t, int64(10_000), MinorToMicro(1))
	assert.Equal(t, int64(1_000_000), MinorToMicro(100))
	assert.Equal(t, int64(52_500_000), MinorToMicro(5250))
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"2024-03-01", "2024-03-01"},
		{"2024-03-01T10:30:00Z", "2024-03-01"},
		{"2024-03-01T10:30:00", "2024-03-01"},
		{"2024-03-01T23:30:00-02:00", "2024-03-01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FormatDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FormatDate("next tuesday")
	assert.Error(t, err)
}

func TestFormatDateTime(t *testing.T) {
	got, err := FormatDateTime("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T00:00:00Z", got)

	got, err = FormatDateTime("2024-03-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T10:30:00+02:00", got)

	got, err = FormatDateTime("")
	require.NoError(t, err)
	assert.Empty(t, got)
}
