package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultRosterOrder(t *testing.T) {
	roster := Default()
	require.Equal(t, []string{"coto", "carrefour", "dia", "jumbo", "masonline"}, roster.Keys())
	require.Equal(t, "MAS ONLINE", roster[4].Name)
	require.Equal(t, "masonline", roster[4].Slug)
}

func TestParseRoster(t *testing.T) {
	roster, err := ParseRoster(" coto:COTO , dia , mas-online:Mas Online ")
	require.NoError(t, err)
	require.Len(t, roster, 3)
	require.Equal(t, Store{Key: "dia", Name: "DIA", Slug: "dia"}, roster[1])
	require.Equal(t, "masonline", roster[2].Slug)

	s, ok := roster.Lookup("COTO")
	require.True(t, ok)
	require.Equal(t, "coto", s.Key)
	_, ok = roster.Lookup("jumbo")
	require.False(t, ok)
}

func TestParseRosterEmptyUsesDefault(t *testing.T) {
	roster, err := ParseRoster("  ")
	require.NoError(t, err)
	require.Equal(t, Default(), roster)
}

func TestParseRosterRejectsDuplicates(t *testing.T) {
	_, err := ParseRoster("coto:COTO,COTO:Coto Digital")
	require.True(t, errors.Is(err, ErrInvalidRoster))

	_, err = ParseRoster(":Nameless")
	require.True(t, errors.Is(err, ErrInvalidRoster))

	_, err = ParseRoster(",,")
	require.True(t, errors.Is(err, ErrInvalidRoster))
}
