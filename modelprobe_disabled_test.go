//go:build !cgo || (!ORT && !ALL)

package modelprobe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestORTSessionDisabled(t *testing.T) {
	_, err := NewORTSession()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-tags ORT")

	_, err = NewSession("ORT")
	assert.Error(t, err)
}
