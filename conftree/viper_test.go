package conftree

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperSnapshotsSettings(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader("server:\n  host: localhost\n  port: 8080\n")))

	s := FromViper(v)

	host, err := s.String("server.host")
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)

	port, err := s.Int("server.port")
	require.NoError(t, err)
	assert.Equal(t, 8080, port)
}

func TestFromViperLaterChangesAreNotReflected(t *testing.T) {
	v := viper.New()
	v.Set("key", "before")

	s := FromViper(v)
	v.Set("key", "after")

	value, err := s.String("key")
	require.NoError(t, err)
	assert.Equal(t, "before", value)
}

func TestFromViperNil(t *testing.T) {
	s := FromViper(nil)
	assert.True(t, s.IsEmpty())
}
