// Package transfer implements the two reconciliation pipelines between the
// help center and the translation system: outbound (source items pushed out
// for translation) and inbound (completed translations pulled back and
// upserted as locale-specific translation records).
//
// All operations are synchronous and run to completion or abort on the first
// error that is not a documented not-found branch. Nothing already sent is
// retracted when a later item in the same batch fails.
package transfer

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/localehub/hcsync/artifact"
	"github.com/localehub/hcsync/content"
	"github.com/localehub/hcsync/lockfile"
	"github.com/localehub/hcsync/locales"
	"github.com/localehub/hcsync/tms"
)

// SourceSystem is the slice of the help-center API the pipelines consume.
type SourceSystem interface {
	ShowArticle(id int64) (*content.Article, error)
	ShowSection(id int64) (*content.Section, error)
	ShowCategory(id int64) (*content.Category, error)
	ListArticles(locale string) ([]content.Article, error)
	ListSections(locale string) ([]content.Section, error)
	ListCategories(locale string) ([]content.Category, error)
	ArticleAttachments(id int64) ([]content.Attachment, error)
	ShowTranslation(t content.ItemType, id int64, locale string) error
	CreateTranslation(t content.ItemType, id int64, translation any) error
	UpdateTranslation(t content.ItemType, id int64, locale string, translation any) error
}

// TranslationSystem is the slice of the translation-system file API the
// pipelines consume.
type TranslationSystem interface {
	Upload(uri string, doc []byte, fileType string, directives map[string]string, authorize bool) (*tms.UploadResult, error)
	Get(uri, locale string, kind tms.RetrievalKind) ([]byte, error)
	List(uriMask, locale, condition string, offset int) (*tms.ListPage, error)
}

// Pipeline holds the collaborators and policy for one run. It is built once
// in main and used for both directions.
type Pipeline struct {
	Source       SourceSystem
	TMS          TranslationSystem
	Locales      *locales.Map
	SourceLocale string

	// IncludeArticles restricts article transfers when non-empty; explicit
	// inclusion overrides the draft filter.
	IncludeArticles []int64
	// ExcludeArticles are never transferred.
	ExcludeArticles []int64

	// Authorize approves uploaded content for translation immediately.
	Authorize bool
	// Incremental skips uploads whose document is unchanged per Lock.
	Incremental bool

	Artifacts *artifact.Store    // nil disables debug dumps
	Lock      *lockfile.LockFile // nil disables incremental tracking
	Log       *zap.SugaredLogger
}

// canonicalJSON serializes an item the same way every time, so uploads and
// lockfile checksums are stable across runs.
func canonicalJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "    ")
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
