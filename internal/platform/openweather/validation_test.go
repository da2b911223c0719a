package openweather_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/openweather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     string
		wantErr  bool
	}{
		{name: "simple", location: "Tokyo", want: "Tokyo"},
		{name: "trimmed", location: "  New York  ", want: "New York"},
		{name: "hyphen and comma", location: "Saint-Denis, FR", want: "Saint-Denis, FR"},
		{name: "japanese", location: "東京都", want: "東京都"},
		{name: "exactly 100 characters", location: strings.Repeat("あ", 100), want: strings.Repeat("あ", 100)},
		{name: "empty", location: "", wantErr: true},
		{name: "blank", location: "   ", wantErr: true},
		{name: "too long", location: strings.Repeat("a", 101), wantErr: true},
		{name: "script tag", location: "<script>alert(1)</script>", wantErr: true},
		{name: "double quote", location: `To"kyo`, wantErr: true},
		{name: "single quote", location: "O'Fallon", wantErr: true},
		{name: "backslash", location: `C:\Tokyo`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := openweather.ValidateLocation(tt.location)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, openweather.ErrInvalidLocation))
				assert.True(t, errors.Is(err, domain.ErrValidation))

				var validationErr *domain.ValidationError
				require.True(t, errors.As(err, &validationErr))
				assert.Equal(t, "location", validationErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
