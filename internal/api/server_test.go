package api

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer(gin.New(), "9090")

	assert.Equal(t, ":9090", srv.http.Addr)
	assert.NotNil(t, srv.http.Handler)
	assert.Equal(t, readHeaderTimeout, srv.http.ReadHeaderTimeout)

	// shutting down a server that never started is a no-op
	require.NoError(t, srv.Shutdown(time.Second))
}
