package ipn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTID(t *testing.T) {
	tests := []struct {
		name  string
		id    int64
		first string
		last  string
		want  string
	}{
		{"plain names", 42, "John", "Smith", "42-smith-john"},
		{"diacritics and spaces collapse", 7, "Anna Maria", "Müller", "7-m-ller-anna-maria"},
		{"empty names", 13, "", "", "13--"},
		{
			"truncated to 32 characters",
			123456,
			"Maximiliane",
			"Freiherr von und zu Guttenberg",
			"123456-freiherr-von-und-zu-gutte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &MemoryOrder{OrderID: tt.id, FirstName: tt.first, LastName: tt.last}
			got := GenerateTID(order)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 32)
		})
	}
}

func TestGenerateTID_Stable(t *testing.T) {
	order := &MemoryOrder{OrderID: 42, FirstName: "John", LastName: "Smith"}
	assert.Equal(t, GenerateTID(order), GenerateTID(order))
}
