package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultIDRoundTrip(t *testing.T) {
	resultID := ResultID("report-abc", "file-1:file-2")
	assert.Equal(t, "report-abc/file-1:file-2", resultID)

	reportID, pairID, ok := SplitResultID(resultID)
	require.True(t, ok)
	assert.Equal(t, "report-abc", reportID)
	assert.Equal(t, "file-1:file-2", pairID)
}

func TestSplitResultID_Malformed(t *testing.T) {
	_, _, ok := SplitResultID("no-separator")
	assert.False(t, ok)
}
