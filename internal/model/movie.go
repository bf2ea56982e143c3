package model

import (
	"encoding/json"
	"strings"
)

// Movie mirrors a catalog record as served by the upstream admin API.  The
// console does not own these records; every field is a snapshot fetched on
// demand.  Two wire quirks are absorbed here so nothing downstream sees
// them: older records carry a single `genre` string where newer ones carry
// a `genres` list, and `cast` appears either as a JSON list or as one
// comma-separated string.  Rating is passed through as an opaque float
// because the upstream scale is not settled (0–5 and 0–10 both exist).
type Movie struct {
	ID           string   `json:"id"`                     // upstream identifier, string or number on the wire
	Title        string   `json:"title"`                  // movie title
	Description  string   `json:"description"`            // synopsis shown in the console
	Genres       []string `json:"genres"`                 // canonical genre list (legacy `genre` folded in)
	Director     string   `json:"director"`               // director name
	Cast         []string `json:"cast"`                   // cast members
	Year         int      `json:"year"`                   // release year
	Duration     string   `json:"duration"`               // free-text runtime, e.g. "2h 14m"
	Rating       float64  `json:"rating"`                 // opaque score, scale owned upstream
	AgeRating    string   `json:"ageRating"`              // G, PG, PG-13, R or NC-17
	Language     string   `json:"language"`               // primary audio language
	ReleaseDate  string   `json:"releaseDate"`            // ISO date string as sent upstream
	Trending     bool     `json:"trending"`               // trending shelf flag
	ComingSoon   bool     `json:"comingSoon"`             // coming-soon shelf flag
	Featured     bool     `json:"featured"`               // featured shelf flag
	IsActive     bool     `json:"isActive"`               // active/inactive publication status
	Views        int64    `json:"views"`                  // upstream view counter
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"` // poster reference, may be site-relative
	VideoURL     string   `json:"videoUrl,omitempty"`     // video reference, may be site-relative
}

// movieWire is the raw decoding target.  The ambiguous fields are held as
// raw JSON and resolved in UnmarshalJSON.
type movieWire struct {
	ID           json.RawMessage `json:"id"`
	AltID        json.RawMessage `json:"_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Genre        string          `json:"genre"`
	Genres       []string        `json:"genres"`
	Director     string          `json:"director"`
	Cast         json.RawMessage `json:"cast"`
	Year         int             `json:"year"`
	Duration     string          `json:"duration"`
	Rating       float64         `json:"rating"`
	AgeRating    string          `json:"ageRating"`
	Language     string          `json:"language"`
	ReleaseDate  string          `json:"releaseDate"`
	Trending     bool            `json:"trending"`
	ComingSoon   bool            `json:"comingSoon"`
	Featured     bool            `json:"featured"`
	IsActive     bool            `json:"isActive"`
	Views        int64           `json:"views"`
	ThumbnailURL string          `json:"thumbnailUrl"`
	VideoURL     string          `json:"videoUrl"`
}

// UnmarshalJSON folds the accepted wire shapes into the canonical struct.
func (m *Movie) UnmarshalJSON(b []byte) error {
	var w movieWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	id := w.ID
	if len(id) == 0 || string(id) == "null" {
		id = w.AltID
	}
	*m = Movie{
		ID:           rawToString(id),
		Title:        w.Title,
		Description:  w.Description,
		Genres:       normalizeGenres(w.Genre, w.Genres),
		Director:     w.Director,
		Cast:         normalizeCast(w.Cast),
		Year:         w.Year,
		Duration:     w.Duration,
		Rating:       w.Rating,
		AgeRating:    w.AgeRating,
		Language:     w.Language,
		ReleaseDate:  w.ReleaseDate,
		Trending:     w.Trending,
		ComingSoon:   w.ComingSoon,
		Featured:     w.Featured,
		IsActive:     w.IsActive,
		Views:        w.Views,
		ThumbnailURL: w.ThumbnailURL,
		VideoURL:     w.VideoURL,
	}
	return nil
}

// PrimaryGenre returns the label shown on list cards: the first genre when
// any exist, otherwise "N/A".  Records predating the multi-genre schema are
// already folded into Genres by UnmarshalJSON.
func (m Movie) PrimaryGenre() string {
	if len(m.Genres) > 0 {
		return m.Genres[0]
	}
	return "N/A"
}

// normalizeGenres merges the legacy single `genre` field and the current
// `genres` list into one de-duplicated list, preserving order.
func normalizeGenres(single string, list []string) []string {
	out := make([]string, 0, len(list)+1)
	seen := make(map[string]bool, len(list)+1)
	add := func(g string) {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			return
		}
		seen[g] = true
		out = append(out, g)
	}
	for _, g := range list {
		add(g)
	}
	add(single)
	return out
}

// normalizeCast accepts either a JSON array of names or a single
// comma-separated string and returns trimmed, non-empty entries.
func normalizeCast(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return SplitList(strings.Join(list, ","))
	}
	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return SplitList(joined)
	}
	return nil
}

// rawToString renders a raw JSON scalar as a string.  Upstream identifiers
// show up both as JSON numbers and as strings.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// SplitList splits a delimited string on commas, trims each entry and
// drops empties.  Used for the cast input and anywhere else the console
// accepts comma-separated values.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MovieList is the paged envelope returned by the upstream list endpoint.
type MovieList struct {
	Data  []Movie `json:"data"`
	Total int     `json:"total"`
}

// Genres is the fixed vocabulary offered by the upload form.
var Genres = []string{"Action", "Horror", "Romance", "Sci-Fi", "Crime", "Fantasy", "Comedy", "War", "Drama", "Thriller"}

// AgeRatings is the accepted age-rating enum.
var AgeRatings = []string{"G", "PG", "PG-13", "R", "NC-17"}

// ValidAgeRating reports whether s is one of the accepted age ratings.
func ValidAgeRating(s string) bool {
	for _, r := range AgeRatings {
		if r == s {
			return true
		}
	}
	return false
}
