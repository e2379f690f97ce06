package services

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestComputeInitials(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Marie Dupont", "MD"},
		{"plato", "P"},
		{"  Anne Marie Claire ", "AC"},
		{"Émile Zola", "ÉZ"},
		{"émile", "É"},
		{"øyvind åsen", "ØÅ"},
		{"", "?"},
		{"   ", "?"},
	}
	for _, tc := range cases {
		got := computeInitials(tc.name)
		require.Equal(t, tc.want, got, "name %q", tc.name)
		require.True(t, utf8.ValidString(got), "name %q", tc.name)
	}
}
