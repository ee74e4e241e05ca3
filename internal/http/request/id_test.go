package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{id: "3f0e7a4c-9b1d-4c55-8a2e-6f1d2b7c9e10", want: true},
		{id: "3F0E7A4C-9B1D-4C55-8A2E-6F1D2B7C9E10", want: true},
		{id: "", want: false},
		{id: "p1", want: false},
		{id: "3f0e7a4c9b1d4c558a2e6f1d2b7c9e10", want: false},
		{id: "urn:uuid:3f0e7a4c-9b1d-4c55-8a2e-6f1d2b7c9e10", want: false},
		{id: "3f0e7a4c-9b1d-4c55-8a2e-6f1d2b7c9e1z", want: false},
		{id: "' OR 1=1 --", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidID(tt.id))
		})
	}
}
