package lang

import (
	"sort"
	"sync"

	"aoe2-overlay/internal/api"
	"aoe2-overlay/internal/domain"
)

// String-table categories, matching the keys of the stats API strings
// endpoint.
const (
	CategoryAge         = "age"
	CategoryCiv         = "civ"
	CategoryGameType    = "game_type"
	CategoryLeaderboard = "leaderboard"
	CategoryMapSize     = "map_size"
	CategoryMapType     = "map_type"
	CategoryRatingType  = "rating_type"
)

// Supported is the fixed set of language codes the stats API serves.
var Supported = []string{
	"en", "de", "el", "es", "es-MX", "fr", "hi", "it", "ja",
	"ko", "ms", "nl", "pt", "ru", "tr", "vi", "zh", "zh-TW",
}

func IsSupported(code string) bool {
	for _, s := range Supported {
		if s == code {
			return true
		}
	}
	return false
}

// Table is the localized string set of one language, indexed per category
// for O(1) code lookups.
type Table struct {
	categories map[string]map[int]string
}

func NewTable(resp *api.StringsResponse) *Table {
	t := &Table{categories: make(map[string]map[int]string)}
	for category, entries := range map[string][]api.StringEntry{
		CategoryAge:         resp.Age,
		CategoryCiv:         resp.Civ,
		CategoryGameType:    resp.GameType,
		CategoryLeaderboard: resp.Leaderboard,
		CategoryMapSize:     resp.MapSize,
		CategoryMapType:     resp.MapType,
		CategoryRatingType:  resp.RatingType,
	} {
		m := make(map[int]string, len(entries))
		for _, e := range entries {
			m[e.ID] = e.String
		}
		t.categories[category] = m
	}
	return t
}

func (t *Table) Lookup(category string, code int) (string, bool) {
	s, ok := t.categories[category][code]
	return s, ok
}

// Cache maps language code to string table. Each language is written
// independently by the refresh scheduler; readers take a stable per-key
// snapshot, so a sync.Map replaces a globally locked map.
type Cache struct {
	tables          sync.Map
	defaultLanguage string
}

func NewCache(defaultLanguage string) *Cache {
	return &Cache{defaultLanguage: defaultLanguage}
}

func (c *Cache) Store(language string, t *Table) {
	c.tables.Store(language, t)
}

func (c *Cache) Table(language string) (*Table, bool) {
	v, ok := c.tables.Load(language)
	if !ok {
		return nil, false
	}
	return v.(*Table), true
}

// Resolve translates a numeric code in the requested language, falling
// back to the default language. When neither table has the string the
// error is a domain.TranslationError and the caller keeps the raw code.
func (c *Cache) Resolve(language, category string, code int) (string, error) {
	for _, lang := range []string{language, c.defaultLanguage} {
		if table, ok := c.Table(lang); ok {
			if s, ok := table.Lookup(category, code); ok {
				return s, nil
			}
		}
	}
	return "", &domain.TranslationError{Key: category, Index: code}
}

// Languages lists the cached language codes, sorted for stable output.
func (c *Cache) Languages() []string {
	var out []string
	c.tables.Range(func(key, _ any) bool {
		out = append(out, key.(string))
		return true
	})
	sort.Strings(out)
	return out
}
