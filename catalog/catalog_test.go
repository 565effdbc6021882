package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"serenity_back/catalog"
)

func TestLookupResolvesByIDNameAndKeyword(t *testing.T) {
	t.Parallel()

	cat := catalog.Default()

	byID := cat.Lookup("sleep")
	require.NotNil(t, byID)
	require.Equal(t, "sleep", byID.ID)

	byName := cat.Lookup("睡眠冥想")
	require.NotNil(t, byName)
	require.Equal(t, "sleep", byName.ID)

	byEnglishName := cat.Lookup("sleep meditation")
	require.NotNil(t, byEnglishName)
	require.Equal(t, "sleep", byEnglishName.ID)

	byKeyword := cat.Lookup("insomnia")
	require.NotNil(t, byKeyword)
	require.Equal(t, "sleep", byKeyword.ID)

	require.Nil(t, cat.Lookup("no-such-topic"))
	require.Nil(t, cat.Lookup("   "))
}

func TestLookupOnNilCatalog(t *testing.T) {
	t.Parallel()

	var cat *catalog.Catalog
	require.Nil(t, cat.Lookup("sleep"))
	require.Nil(t, cat.Search([]string{"sleep"}, "zh"))
	require.Nil(t, cat.Topics())
}

func TestNewDropsBlankAndDuplicateIDs(t *testing.T) {
	t.Parallel()

	cat := catalog.New([]catalog.Descriptor{
		{ID: "  Calm  ", Name: map[string]string{"en": "First Calm"}},
		{ID: "calm", Name: map[string]string{"en": "Second Calm"}},
		{ID: "   "},
	})

	topics := cat.Topics()
	require.Len(t, topics, 1)
	require.Equal(t, "calm", topics[0].ID)
	require.Equal(t, "First Calm", topics[0].Name["en"])
}

func TestSearchOrdersByRelevance(t *testing.T) {
	t.Parallel()

	cat := catalog.Default()

	results := cat.Search([]string{"sleep"}, "en")
	require.NotEmpty(t, results)
	require.Equal(t, "sleep", results[0].ID)

	require.Nil(t, cat.Search(nil, "en"))
	require.Nil(t, cat.Search([]string{"  ", ""}, "en"))
	require.Empty(t, cat.Search([]string{"zzzznothing"}, "en"))
}

func TestSupportedTopicsIncludesIDsAndLocalizedNames(t *testing.T) {
	t.Parallel()

	supported := catalog.Default().SupportedTopics("zh")
	require.Contains(t, supported, "sleep")
	require.Contains(t, supported, "睡眠冥想")
}

func TestLocalizedNameFallsBack(t *testing.T) {
	t.Parallel()

	topic := catalog.Descriptor{ID: "demo", Name: map[string]string{"en": "Demo"}}
	require.Equal(t, "Demo", topic.LocalizedName("zh"))

	bare := catalog.Descriptor{ID: "bare"}
	require.Equal(t, "bare", bare.LocalizedName("zh"))
}
