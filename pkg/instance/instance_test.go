package instance

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDPrefersEnvironment(t *testing.T) {
	t.Setenv(envInstanceID, "  worker-7 ")
	assert.Equal(t, "worker-7", ID())
}

func TestIDFallsBackToHostname(t *testing.T) {
	t.Setenv(envInstanceID, "")
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = fallbackID
	}
	assert.Equal(t, host, ID())
}
