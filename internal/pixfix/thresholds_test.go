package pixfix

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewThresholds(t *testing.T) {
	tests := []struct {
		name         string
		black, white int
		wantErr      bool
	}{
		{name: "defaults", black: 1, white: 254},
		{name: "full range", black: 0, white: 255},
		{name: "equal", black: 10, white: 10, wantErr: true},
		{name: "inverted", black: 200, white: 100, wantErr: true},
		{name: "negative black", black: -1, white: 100, wantErr: true},
		{name: "white above 255", black: 1, white: 256, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := NewThresholds(tt.black, tt.white)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidArgument))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint8(tt.black), th.Black)
			assert.Equal(t, uint8(tt.white), th.White)
		})
	}
}

func TestThresholdsClassify(t *testing.T) {
	th := Thresholds{Black: 1, White: 254}

	for _, v := range []uint8{0, 1, 254, 255} {
		assert.True(t, th.IsDefective(v), "value %d", v)
		assert.False(t, th.IsValid(v), "value %d", v)
	}
	for _, v := range []uint8{2, 128, 253} {
		assert.False(t, th.IsDefective(v), "value %d", v)
		assert.True(t, th.IsValid(v), "value %d", v)
	}
}

func TestThresholdsValidateMessage(t *testing.T) {
	err := Thresholds{Black: 50, White: 20}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "black threshold 50")
	assert.Contains(t, err.Error(), "white threshold 20")
}
