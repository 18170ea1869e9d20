package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain", input: "set 1 value abc", want: "set 1 value abc"},
		{name: "keeps tabs", input: "n\tsum", want: "n\tsum"},
		{name: "strips escapes", input: "set 1 value \x1b[31mred\x1b[0m", want: "set 1 value [31mred[0m"},
		{name: "strips carriage return", input: "ls\r", want: "ls"},
		{name: "invalid utf8", input: "n \xff", wantErr: ErrInvalidUTF8},
		{name: "too long", input: strings.Repeat("a", DefaultMaxLineSize+1), wantErr: ErrLineTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeLine(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeLine_EnvLimit(t *testing.T) {
	t.Setenv(EnvMaxLineSize, "8")
	_, err := SanitizeLine("set 1 value long")
	assert.ErrorIs(t, err, ErrLineTooLong)

	t.Setenv(EnvMaxLineSize, "nonsense")
	_, err = SanitizeLine("set 1 value long")
	assert.NoError(t, err)
}
