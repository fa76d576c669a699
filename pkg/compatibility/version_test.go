package compatibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{input: "1.2.3", want: Version{Major: 1, Minor: 2, Patch: 3}},
		{input: "v1.2.3", want: Version{Major: 1, Minor: 2, Patch: 3}},
		{input: "0.0.0", want: Version{}},
		{input: "1.2.3-alpha.1", want: Version{Major: 1, Minor: 2, Patch: 3, Pre: "alpha.1"}},
		{input: "1.2.3+build.5", want: Version{Major: 1, Minor: 2, Patch: 3}},
		{input: "10.20.30", want: Version{Major: 10, Minor: 20, Patch: 30}},
		{input: "1.2", wantErr: true},
		{input: "1", wantErr: true},
		{input: "", wantErr: true},
		{input: "1.2.x", wantErr: true},
		{input: "latest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidVersion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.1.0", "1.0.9", 1},
		{"2.0.0", "1.99.99", 1},
		{"1.0.0-alpha", "1.0.0", -1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"1.0.0-alpha.1", "1.0.0-alpha", 1},
		{"1.0.0-1", "1.0.0-alpha", -1},
		{"1.0.0-alpha.2", "1.0.0-alpha.10", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			a, err := ParseVersion(tt.a)
			require.NoError(t, err)
			b, err := ParseVersion(tt.b)
			require.NoError(t, err)

			assert.Equal(t, tt.want, a.Compare(b))
			assert.Equal(t, -tt.want, b.Compare(a))
		})
	}
}

func TestHasNewer(t *testing.T) {
	newer, err := HasNewer("1.0.0", "1.1.0")
	require.NoError(t, err)
	assert.True(t, newer)

	newer, err = HasNewer("1.1.0", "1.0.0")
	require.NoError(t, err)
	assert.False(t, newer)

	// Equal versions are not an update.
	newer, err = HasNewer("1.0.0", "1.0.0")
	require.NoError(t, err)
	assert.False(t, newer)

	_, err = HasNewer("garbage", "1.0.0")
	assert.ErrorIs(t, err, ErrInvalidVersion)

	_, err = HasNewer("1.0.0", "garbage")
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestVersionString(t *testing.T) {
	v, err := ParseVersion("1.2.3-rc.1")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3-rc.1", v.String())
}
