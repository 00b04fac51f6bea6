// Package challenge holds the decoding puzzles players solve for points.
package challenge

import (
	"fmt"
	"sort"
	"strings"

	"decryptzone/service"
)

// DefaultPoints is awarded for a solve when no other value is configured
const DefaultPoints int64 = 100

// Challenge is one encoded word to decode
type Challenge struct {
	ID      int
	Encoded string
	Hint    string
	Answer  string
	Points  int64
}

// PublicChallenge is the part of a challenge safe to show to players
type PublicChallenge struct {
	ID      int    `json:"id"`
	Encoded string `json:"encoded"`
	Hint    string `json:"hint"`
	Points  int64  `json:"points"`
}

// Public strips the answer
func (c Challenge) Public() PublicChallenge {
	return PublicChallenge{
		ID:      c.ID,
		Encoded: c.Encoded,
		Hint:    c.Hint,
		Points:  c.Points,
	}
}

var builtin = []Challenge{
	{ID: 1, Encoded: "U1lTVEVN", Hint: "Base64", Answer: "SYSTEM"},
	{ID: 2, Encoded: "TmV4dEpT", Hint: "Base64", Answer: "NEXTJS"},
	{ID: 3, Encoded: "Q1JZUFRP", Hint: "Base64", Answer: "CRYPTO"},
	{ID: 4, Encoded: "U0VSVkVS", Hint: "Base64", Answer: "SERVER"},
	{ID: 5, Encoded: "REVCVUc=", Hint: "Base64", Answer: "DEBUG"},
	{ID: 6, Encoded: "V0VCMw==", Hint: "Base64", Answer: "WEB3"},
	{ID: 7, Encoded: "QkxPQ0s=", Hint: "Base64", Answer: "BLOCK"},
	{ID: 8, Encoded: "Q0hBSU4=", Hint: "Base64", Answer: "CHAIN"},
	{ID: 9, Encoded: "VE9LRU4=", Hint: "Base64", Answer: "TOKEN"},
	{ID: 10, Encoded: "REVQTE9Z", Hint: "Base64", Answer: "DEPLOY"},
	{ID: 11, Encoded: "TElOVVg=", Hint: "Base64", Answer: "LINUX"},
	{ID: 12, Encoded: "UkVBQ1Q=", Hint: "Base64", Answer: "REACT"},
	{ID: 13, Encoded: "R2l0SHVi", Hint: "Base64", Answer: "GITHUB"},
	{ID: 14, Encoded: "VmVyY2Vs", Hint: "Base64", Answer: "VERCEL"},
	{ID: 15, Encoded: "UHl0aG9u", Hint: "Base64", Answer: "PYTHON"},
	{ID: 16, Encoded: "U29sYW5h", Hint: "Base64", Answer: "SOLANA"},
	{ID: 17, Encoded: "Q29kZXI=", Hint: "Base64", Answer: "CODER"},
	{ID: 18, Encoded: "VGFpbHdpbmQ=", Hint: "Base64", Answer: "TAILWIND"},
	{ID: 19, Encoded: "VHlwZVNjcmlwdA==", Hint: "Base64", Answer: "TYPESCRIPT"},
	{ID: 20, Encoded: "TUxTQQ==", Hint: "Base64", Answer: "MLSA"},
}

// Catalog is an immutable set of challenges keyed by id
type Catalog struct {
	byID map[int]Challenge
	ids  []int
}

// NewCatalog builds the built-in catalog with every challenge worth points.
// A non-positive value falls back to DefaultPoints.
func NewCatalog(points int64) *Catalog {
	if points <= 0 {
		points = DefaultPoints
	}
	challenges := make([]Challenge, len(builtin))
	for i, c := range builtin {
		c.Points = points
		challenges[i] = c
	}
	return NewCatalogFrom(challenges)
}

// NewCatalogFrom builds a catalog from an explicit list; later duplicates win
func NewCatalogFrom(challenges []Challenge) *Catalog {
	c := &Catalog{byID: make(map[int]Challenge, len(challenges))}
	for _, ch := range challenges {
		if _, exists := c.byID[ch.ID]; !exists {
			c.ids = append(c.ids, ch.ID)
		}
		c.byID[ch.ID] = ch
	}
	sort.Ints(c.ids)
	return c
}

// Get looks up a challenge by id
func (c *Catalog) Get(id int) (Challenge, bool) {
	ch, ok := c.byID[id]
	return ch, ok
}

// All returns the challenges ordered by id
func (c *Catalog) All() []Challenge {
	out := make([]Challenge, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

// Public returns the answer-free view of every challenge
func (c *Catalog) Public() []PublicChallenge {
	out := make([]PublicChallenge, 0, len(c.ids))
	for _, ch := range c.All() {
		out = append(out, ch.Public())
	}
	return out
}

// Len returns the number of challenges
func (c *Catalog) Len() int {
	return len(c.ids)
}

// Check reports whether answer decodes challenge id. Surrounding whitespace and
// letter case are ignored.
func (c *Catalog) Check(id int, answer string) (bool, error) {
	ch, ok := c.byID[id]
	if !ok {
		return false, fmt.Errorf("challenge %d: %w", id, service.ErrUnknownChallenge)
	}
	return strings.EqualFold(strings.TrimSpace(answer), ch.Answer), nil
}

// CheckPoints implements service.PointsPolicy
func (c *Catalog) CheckPoints(challengeID int, points int64) error {
	ch, ok := c.byID[challengeID]
	if !ok {
		return fmt.Errorf("challenge %d: %w", challengeID, service.ErrUnknownChallenge)
	}
	if points != ch.Points {
		return fmt.Errorf("challenge %d is worth %d, got %d: %w", challengeID, ch.Points, points, service.ErrPointsMismatch)
	}
	return nil
}

var _ service.PointsPolicy = (*Catalog)(nil)
