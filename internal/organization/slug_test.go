package organization_test

import (
	"testing"

	"github.com/frahmantamala/beacon/internal/organization"
	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Acme Corp", "acme-corp"},
		{"punctuation runs collapse", "Acme,  Inc. & Co.", "acme-inc-co"},
		{"leading and trailing separators", "  --Beacon--  ", "beacon"},
		{"diacritics fold", "Café Réunion", "cafe-reunion"},
		{"digits kept", "Studio 54", "studio-54"},
		{"only symbols", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, organization.Slugify(tt.in))
		})
	}
}
