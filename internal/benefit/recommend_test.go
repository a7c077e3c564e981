package benefit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecommendOwnedAndUpsell(t *testing.T) {
	benefits := []Benefit{
		{StoreName: "COTO", EntityName: "Banco Nacion", Rate: 0.2},
		{StoreName: "COTO", EntityName: "MercadoPago", Rate: 0.1, ReferralLink: "https://mp.example/ref"},
		{StoreName: "COTO", EntityName: "Galicia", Rate: 0.3, ReferralLink: "https://galicia.example/ref"},
		{StoreName: "COTO", EntityName: "Modo", Rate: 0.35},
		{StoreName: "COTO", EntityName: "visa", Rate: 0.25, ReferralLink: "https://visa.example"},
	}
	memberships := []Membership{
		{Slug: "banco nacion", Type: "bank"},
		{Slug: "amex", Type: "VISA"},
	}

	advice := Recommend(benefits, memberships)
	require.NotNil(t, advice)
	require.NotNil(t, advice.Owned)
	require.Equal(t, "visa", advice.Owned.EntityName)
	require.NotNil(t, advice.Recommend)
	require.Equal(t, "Galicia", advice.Recommend.EntityName)
}

func TestRecommendNeverSuggestsCoveredOrLinkless(t *testing.T) {
	benefits := []Benefit{
		{StoreName: "DIA", EntityName: "Uala", Rate: 0.5, ReferralLink: "https://uala.example"},
		{StoreName: "DIA", EntityName: "Naranja", Rate: 0.4, ReferralLink: "   "},
	}
	advice := Recommend(benefits, []Membership{{Slug: "UALA"}})
	require.NotNil(t, advice)
	require.Equal(t, "Uala", advice.Owned.EntityName)
	require.Nil(t, advice.Recommend)

	advice = Recommend(benefits[1:], nil)
	require.NotNil(t, advice)
	require.Nil(t, advice.Owned)
	require.Nil(t, advice.Recommend)
}

func TestRecommendTiesKeepFirstSeen(t *testing.T) {
	benefits := []Benefit{
		{StoreName: "JUMBO", EntityName: "A", Rate: 0.2, ReferralLink: "https://a.example"},
		{StoreName: "JUMBO", EntityName: "B", Rate: 0.2, ReferralLink: "https://b.example"},
		{StoreName: "JUMBO", EntityName: "C", Rate: 0.1},
		{StoreName: "JUMBO", EntityName: "D", Rate: 0.1},
	}
	advice := Recommend(benefits, []Membership{{Slug: "c"}, {Type: "d"}})
	require.Equal(t, "A", advice.Recommend.EntityName)
	require.Equal(t, "C", advice.Owned.EntityName)
}

func TestRecommendEmpty(t *testing.T) {
	require.Nil(t, Recommend(nil, []Membership{{Slug: "x"}}))
}

func TestForStore(t *testing.T) {
	benefits := []Benefit{
		{StoreName: "Coto", EntityName: "A"},
		{StoreName: "MAS ONLINE", EntityName: "B"},
		{StoreName: "COTO DIGITAL", EntityName: "C"},
	}
	require.Len(t, ForStore(benefits, "COTO"), 1)
	require.Equal(t, "B", ForStore(benefits, "mas online")[0].EntityName)
	require.Empty(t, ForStore(benefits, "DIA"))
}

func TestCoversIgnoresBlankEntity(t *testing.T) {
	require.False(t, Covers(Membership{Slug: ""}, Benefit{EntityName: " "}))
	require.True(t, Covers(Membership{Type: "Credit "}, Benefit{EntityName: "credit"}))
}
