package optkit

import (
	"testing"

	"github.com/blang/semver/v4"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	assert := require.New(t)

	parsed, err := semver.ParseTolerant(Version.String())
	assert.NoError(err)
	assert.Equal(Version, parsed)
}

func TestBackends(t *testing.T) {
	assert := require.New(t)

	r := NewRegistry()
	for _, name := range Backends() {
		_, err := r.Factory(name)
		assert.NoError(err, "backend %s must be registered", name)
	}
}
