// Package catalog is the read-mostly title catalog the schedule engine resolves
// title ids against. Lookups by id are cached; name search is diacritic and case
// insensitive and tolerates small typos.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/amaumene/watchweek/internal/models"
)

// ErrInvalidTitle is returned when a title fails validation on insert
var ErrInvalidTitle = errors.New("invalid title")

type titleStore interface {
	CreateTitle(ctx context.Context, title *models.Title) error
	GetTitleByID(ctx context.Context, id uint64) (*models.Title, error)
	ListTitles(ctx context.Context) ([]*models.Title, error)
}

// Catalog resolves and searches titles
type Catalog struct {
	store  titleStore
	cache  *cache.Cache
	logger zerolog.Logger
}

// New creates a catalog caching id lookups for ttl
func New(store titleStore, ttl time.Duration, logger zerolog.Logger) *Catalog {
	return &Catalog{
		store:  store,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// GetTitle returns the title with the given id, or models.ErrNotFound
func (c *Catalog) GetTitle(ctx context.Context, id uint64) (*models.Title, error) {
	key := strconv.FormatUint(id, 10)
	if cached, ok := c.cache.Get(key); ok {
		title := *cached.(*models.Title)
		return &title, nil
	}

	title, err := c.store.GetTitleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stored := *title
	c.cache.SetDefault(key, &stored)
	return title, nil
}

// AddTitle validates and inserts a new title
func (c *Catalog) AddTitle(ctx context.Context, name string, kind models.Kind) (*models.Title, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidTitle)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidTitle, kind)
	}

	title := &models.Title{Name: name, Kind: kind}
	if err := c.store.CreateTitle(ctx, title); err != nil {
		return nil, fmt.Errorf("failed to create title: %w", err)
	}

	c.logger.Info().
		Uint64("title_id", title.ID).
		Str("name", title.Name).
		Str("kind", string(title.Kind)).
		Msg("Added title to catalog")

	return title, nil
}

type match struct {
	title *models.Title
	score int
}

// Search returns titles whose name matches query, best matches first.
// An empty query lists the catalog. limit <= 0 means no limit.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]*models.Title, error) {
	titles, err := c.store.ListTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list titles: %w", err)
	}

	q := Normalize(query)
	var matches []match
	for _, title := range titles {
		if score, ok := scoreName(q, Normalize(title.Name)); ok {
			matches = append(matches, match{title: title, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score < matches[j].score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	result := make([]*models.Title, len(matches))
	for i, m := range matches {
		result[i] = m.title
	}
	return result, nil
}

// scoreName ranks a normalized name against a normalized query. Lower is better:
// 0 exact, 1 prefix, 2 substring, then 3+distance to the closest word.
func scoreName(query, name string) (int, bool) {
	switch {
	case query == "" || query == name:
		return 0, true
	case strings.HasPrefix(name, query):
		return 1, true
	case strings.Contains(name, query):
		return 2, true
	}

	// Allow roughly one typo per four characters
	maxDistance := len([]rune(query)) / 4
	if maxDistance < 1 {
		maxDistance = 1
	}

	best := -1
	for _, word := range strings.Fields(name) {
		if d := levenshtein.ComputeDistance(query, word); best < 0 || d < best {
			best = d
		}
	}
	if whole := levenshtein.ComputeDistance(query, name); best < 0 || whole < best {
		best = whole
	}

	if best > maxDistance {
		return 0, false
	}
	return 3 + best, true
}

// Normalize folds case, strips diacritics and punctuation, and collapses whitespace
func Normalize(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	folded := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return ' '
		}
		return r
	}, cases.Fold().String(stripped))
	return strings.Join(strings.Fields(folded), " ")
}
