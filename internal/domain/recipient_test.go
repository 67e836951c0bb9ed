package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRecipient(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		wantError bool
	}{
		{
			name:  "bare eleven digit number",
			input: "15551234567",
			want:  "15551234567@s.whatsapp.net",
		},
		{
			name:  "formatted number with punctuation",
			input: "+1 (555) 123-4567",
			want:  "15551234567@s.whatsapp.net",
		},
		{
			name:  "ten digit national number gets country code",
			input: "5551234567",
			want:  "15551234567@s.whatsapp.net",
		},
		{
			name:  "international number",
			input: "+91 98765 43210",
			want:  "919876543210@s.whatsapp.net",
		},
		{
			name:  "full jid passes through",
			input: "15551234567@s.whatsapp.net",
			want:  "15551234567@s.whatsapp.net",
		},
		{
			name:  "group jid passes through",
			input: "120363040123456789@g.us",
			want:  "120363040123456789@g.us",
		},
		{
			name:  "surrounding whitespace",
			input: "  15551234567  ",
			want:  "15551234567@s.whatsapp.net",
		},
		{
			name:      "empty recipient",
			input:     "",
			wantError: true,
		},
		{
			name:      "no digits at all",
			input:     "not-a-number",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeRecipient(tt.input)
			if tt.wantError {
				require.Error(t, err)
				var valErr *ValidationError
				assert.ErrorAs(t, err, &valErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRecipientIsIdempotent(t *testing.T) {
	inputs := []string{
		"15551234567",
		"+1 (555) 123-4567",
		"5551234567",
		"919876543210",
		"120363040123456789@g.us",
	}

	for _, input := range inputs {
		once, err := NormalizeRecipient(input)
		require.NoError(t, err)

		twice, err := NormalizeRecipient(once)
		require.NoError(t, err)

		assert.Equal(t, once, twice, "normalizing %q twice must be stable", input)
	}
}

func TestNormalizeRecipientEquivalentFormats(t *testing.T) {
	a, err := NormalizeRecipient("+1 (555) 123-4567")
	require.NoError(t, err)

	b, err := NormalizeRecipient("5551234567")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
