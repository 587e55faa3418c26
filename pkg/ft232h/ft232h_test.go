package ft232h

import (
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yunginnanet/ft232h"
)

func TestDescriptor(t *testing.T) {
	t.Run("ByIndex", func(t *testing.T) {
		assert.NoError(t, ByIndex(0).Validate())
		assert.ErrorIs(t, ByIndex(-1).Validate(), ErrBadDescriptor)
	})
	t.Run("BySerial", func(t *testing.T) {
		assert.NoError(t, BySerial("123456").Validate())
		assert.ErrorIs(t, BySerial("").Validate(), ErrBadDescriptor)
	})
	t.Run("ByMask", func(t *testing.T) {
		mask := &ft232h.Mask{Index: "0"}
		assert.NoError(t, ByMask(mask).Validate())
		assert.ErrorIs(t, ByMask(nil).Validate(), ErrBadDescriptor)
	})
	t.Run("Mask", func(t *testing.T) {
		assert.Equal(t, "5", ByIndex(5).Mask().Index)
		assert.Equal(t, "5", BySerial("5").Mask().Serial)

		orig := &ft232h.Mask{Desc: "nirscan"}
		m := ByMask(orig).Mask()
		m.Serial = "x"
		assert.Equal(t, "nirscan", m.Desc)
		assert.Empty(t, orig.Serial, "Mask must not alias the caller's mask")
	})
	t.Run("FromConfig", func(t *testing.T) {
		d, ok := FromConfig("FT1234", 2)
		assert.True(t, ok)
		assert.Equal(t, "FT1234", d.Serial)

		d, ok = FromConfig("", 2)
		assert.True(t, ok)
		assert.Equal(t, 2, d.Index)

		_, ok = FromConfig("", -1)
		assert.False(t, ok)
	})
}

func hardwareDescriptor(t *testing.T) []Descriptor {
	t.Helper()
	if s := strings.TrimSpace(os.Getenv("TEST_FT232H_SERIAL")); s != "" {
		return []Descriptor{BySerial(s)}
	}
	if v := os.Getenv("TEST_FT232H_INDEX"); v != "" {
		idx, err := strconv.Atoi(strings.TrimSpace(v))
		require.NoError(t, err, "bad 'TEST_FT232H_INDEX' environment variable")
		return []Descriptor{ByIndex(idx)}
	}
	return nil
}

func TestConnect(t *testing.T) {
	if os.Getenv("TEST_FT232H") == "" {
		t.Skip("set 'TEST_FT232H' in environment to run this test")
	}

	ft, err := Connect(hardwareDescriptor(t)...)
	require.NoError(t, err)
	t.Logf("connected: %s", ft.Info())

	_, err = ft.Output(8)
	assert.ErrorIs(t, err, ErrBadPin)

	pins, err := ft.Outputs(0, 1)
	require.NoError(t, err)
	for _, p := range pins {
		require.NoError(t, p.Set(true))
		time.Sleep(50 * time.Millisecond)
		require.NoError(t, p.Set(false))
	}

	assert.NoError(t, ft.Close())
}
