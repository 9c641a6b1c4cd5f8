// Package content defines the uniform model for the three help-center
// content kinds (article, section, category) and the URI codec that joins a
// content item to its document in the translation system.
package content

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ItemType identifies one of the three translatable content kinds.
type ItemType string

const (
	TypeArticle  ItemType = "article"
	TypeSection  ItemType = "section"
	TypeCategory ItemType = "category"
)

// Types lists all item types in transfer order.
var Types = []ItemType{TypeCategory, TypeSection, TypeArticle}

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	switch t {
	case TypeArticle, TypeSection, TypeCategory:
		return true
	}
	return false
}

// TranslatableFields returns the ordered field names eligible for
// translation for this item type.
func (t ItemType) TranslatableFields() []string {
	switch t {
	case TypeArticle:
		return []string{"body", "title"}
	case TypeSection, TypeCategory:
		return []string{"name", "description"}
	}
	return nil
}

// ErrMalformedURI indicates a translation-system URI that cannot be parsed
// back to an item id.
var ErrMalformedURI = errors.New("malformed uri")

// URI derives the deterministic translation-system document key for an item.
// It is pure and collision-free: distinct (type, id) pairs never share a URI.
func URI(t ItemType, id int64) string {
	return fmt.Sprintf("%s_%d.json", t, id)
}

// ParseURI inverts URI, isolating the numeric id between the type prefix and
// the ".json" suffix.
func ParseURI(t ItemType, uri string) (int64, error) {
	rest, ok := strings.CutPrefix(uri, string(t)+"_")
	if !ok {
		return 0, errors.Wrapf(ErrMalformedURI, "%q does not start with %q", uri, string(t)+"_")
	}
	rest, ok = strings.CutSuffix(rest, ".json")
	if !ok {
		return 0, errors.Wrapf(ErrMalformedURI, "%q does not end with .json", uri)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedURI, "non-numeric id in %q", uri)
	}
	return id, nil
}

// Article is the help-center representation of an article. The same JSON
// shape is uploaded to the translation system and comes back with the
// translatable fields carrying translated text.
type Article struct {
	ID        int64  `json:"id"`
	URL       string `json:"url,omitempty"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Locale    string `json:"locale,omitempty"`
	Draft     bool   `json:"draft"`
	SectionID int64  `json:"section_id,omitempty"`
	Position  int    `json:"position,omitempty"`
}

// Section groups articles inside a category.
type Section struct {
	ID          int64  `json:"id"`
	URL         string `json:"url,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Locale      string `json:"locale,omitempty"`
	CategoryID  int64  `json:"category_id,omitempty"`
	Position    int    `json:"position,omitempty"`
}

// Category is the top level of the help-center hierarchy.
type Category struct {
	ID          int64  `json:"id"`
	URL         string `json:"url,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Locale      string `json:"locale,omitempty"`
	Position    int    `json:"position,omitempty"`
}

// Attachment is an image or file belonging to an article, used only for
// link relocalization.
type Attachment struct {
	FileName   string `json:"file_name"`
	ContentURL string `json:"content_url"`
}

// ArticleTranslation is the payload upserted into the help center for a
// translated article. The source article keeps its own id; the translation
// is keyed by (article id, locale).
type ArticleTranslation struct {
	Locale string `json:"locale"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Draft  bool   `json:"draft"`
}

// ItemTranslation is the upsert payload for translated sections and
// categories.
type ItemTranslation struct {
	Locale      string `json:"locale"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
