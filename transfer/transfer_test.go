package transfer

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/localehub/hcsync/content"
	"github.com/localehub/hcsync/helpcenter"
	"github.com/localehub/hcsync/locales"
	"github.com/localehub/hcsync/tms"
)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

func trKey(t content.ItemType, id int64, locale string) string {
	return fmt.Sprintf("%s_%d_%s", t, id, locale)
}

type fakeSource struct {
	articles   map[int64]content.Article
	sections   map[int64]content.Section
	categories map[int64]content.Category

	attachments    map[int64][]content.Attachment
	attachmentsErr error

	// stored holds translation records keyed by (type, id, locale).
	stored     map[string]any
	probeErr   error
	createErr  error
	updateErr  error
	sourceGone bool

	probes, creates, updates int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		articles:    map[int64]content.Article{},
		sections:    map[int64]content.Section{},
		categories:  map[int64]content.Category{},
		attachments: map[int64][]content.Attachment{},
		stored:      map[string]any{},
	}
}

func (f *fakeSource) ShowArticle(id int64) (*content.Article, error) {
	a, ok := f.articles[id]
	if !ok {
		return nil, errors.Wrapf(helpcenter.ErrNotFound, "article %d", id)
	}
	return &a, nil
}

func (f *fakeSource) ShowSection(id int64) (*content.Section, error) {
	s, ok := f.sections[id]
	if !ok {
		return nil, errors.Wrapf(helpcenter.ErrNotFound, "section %d", id)
	}
	return &s, nil
}

func (f *fakeSource) ShowCategory(id int64) (*content.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, errors.Wrapf(helpcenter.ErrNotFound, "category %d", id)
	}
	return &c, nil
}

func (f *fakeSource) ListArticles(string) ([]content.Article, error) {
	var out []content.Article
	for _, a := range f.articles {
		out = append(out, a)
	}
	sortByID(out, func(a content.Article) int64 { return a.ID })
	return out, nil
}

func (f *fakeSource) ListSections(string) ([]content.Section, error) {
	var out []content.Section
	for _, s := range f.sections {
		out = append(out, s)
	}
	sortByID(out, func(s content.Section) int64 { return s.ID })
	return out, nil
}

func (f *fakeSource) ListCategories(string) ([]content.Category, error) {
	var out []content.Category
	for _, c := range f.categories {
		out = append(out, c)
	}
	sortByID(out, func(c content.Category) int64 { return c.ID })
	return out, nil
}

func (f *fakeSource) ArticleAttachments(id int64) ([]content.Attachment, error) {
	if f.attachmentsErr != nil {
		return nil, f.attachmentsErr
	}
	return f.attachments[id], nil
}

func (f *fakeSource) ShowTranslation(t content.ItemType, id int64, locale string) error {
	f.probes++
	if f.probeErr != nil {
		return f.probeErr
	}
	if _, ok := f.stored[trKey(t, id, locale)]; ok {
		return nil
	}
	return errors.Wrapf(helpcenter.ErrNotFound, "translation %s %d %s", t, id, locale)
}

func (f *fakeSource) CreateTranslation(t content.ItemType, id int64, translation any) error {
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	if f.sourceGone {
		return errors.Wrapf(helpcenter.ErrNotFound, "%s %d", t, id)
	}
	f.stored[trKey(t, id, recordLocale(translation))] = translation
	return nil
}

func (f *fakeSource) UpdateTranslation(t content.ItemType, id int64, locale string, translation any) error {
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	f.stored[trKey(t, id, locale)] = translation
	return nil
}

func recordLocale(translation any) string {
	switch r := translation.(type) {
	case content.ArticleTranslation:
		return r.Locale
	case content.ItemTranslation:
		return r.Locale
	}
	return ""
}

func sortByID[T any](items []T, id func(T) int64) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && id(items[j]) < id(items[j-1]); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

func docKey(uri, locale string, kind tms.RetrievalKind) string {
	return uri + "|" + locale + "|" + string(kind)
}

type fakeTMS struct {
	uploads    map[string][]byte
	directives map[string]map[string]string
	authorized map[string]bool
	uploadErr  error

	// docs holds downloadable translations keyed by uri|locale|kind.
	docs map[string][]byte

	pages     map[int]*tms.ListPage
	listCalls []int
	listErr   error
}

func newFakeTMS() *fakeTMS {
	return &fakeTMS{
		uploads:    map[string][]byte{},
		directives: map[string]map[string]string{},
		authorized: map[string]bool{},
		docs:       map[string][]byte{},
		pages:      map[int]*tms.ListPage{},
	}
}

func (f *fakeTMS) Upload(uri string, doc []byte, fileType string, directives map[string]string, authorize bool) (*tms.UploadResult, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads[uri] = doc
	f.directives[uri] = directives
	f.authorized[uri] = authorize
	return &tms.UploadResult{Overwritten: false, StringCount: 2, WordCount: 10}, nil
}

func (f *fakeTMS) Get(uri, locale string, kind tms.RetrievalKind) ([]byte, error) {
	doc, ok := f.docs[docKey(uri, locale, kind)]
	if !ok {
		return nil, errors.Wrapf(tms.ErrNoContent, "%s %s", uri, locale)
	}
	return doc, nil
}

func (f *fakeTMS) List(uriMask, locale, condition string, offset int) (*tms.ListPage, error) {
	f.listCalls = append(f.listCalls, offset)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if page, ok := f.pages[offset]; ok {
		return page, nil
	}
	return &tms.ListPage{}, nil
}

func newTestPipeline(t *testing.T, src *fakeSource, tm *fakeTMS) *Pipeline {
	t.Helper()
	m, err := locales.New(map[string]string{
		"de": "de-DE",
		"fr": "fr-FR",
	})
	if err != nil {
		t.Fatalf("locales.New: %v", err)
	}
	return &Pipeline{
		Source:       src,
		TMS:          tm,
		Locales:      m,
		SourceLocale: "en-us",
		Log:          zap.NewNop().Sugar(),
	}
}

// ---------------------------------------------------------------------------
// upsert state machine
// ---------------------------------------------------------------------------

func TestUpsertCreatesWhenMissing(t *testing.T) {
	src := newFakeSource()
	p := newTestPipeline(t, src, newFakeTMS())

	rec := content.ItemTranslation{Locale: "de", Name: "Name"}
	if err := p.upsert(content.TypeSection, 7, "de", rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if src.creates != 1 || src.updates != 0 {
		t.Fatalf("creates = %d, updates = %d, want 1, 0", src.creates, src.updates)
	}
	if _, ok := src.stored[trKey(content.TypeSection, 7, "de")]; !ok {
		t.Fatal("translation not stored")
	}
}

func TestUpsertUpdatesWhenPresent(t *testing.T) {
	src := newFakeSource()
	src.stored[trKey(content.TypeSection, 7, "de")] = content.ItemTranslation{Locale: "de", Name: "Old"}
	p := newTestPipeline(t, src, newFakeTMS())

	rec := content.ItemTranslation{Locale: "de", Name: "New"}
	if err := p.upsert(content.TypeSection, 7, "de", rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if src.creates != 0 || src.updates != 1 {
		t.Fatalf("creates = %d, updates = %d, want 0, 1", src.creates, src.updates)
	}
	got := src.stored[trKey(content.TypeSection, 7, "de")].(content.ItemTranslation)
	if got.Name != "New" {
		t.Fatalf("stored name = %q, want %q", got.Name, "New")
	}
}

func TestUpsertIdempotent(t *testing.T) {
	src := newFakeSource()
	p := newTestPipeline(t, src, newFakeTMS())

	rec := content.ArticleTranslation{Locale: "fr", Title: "Titre", Body: "<p>Corps</p>"}
	for i := 0; i < 2; i++ {
		if err := p.upsert(content.TypeArticle, 3, "fr", rec); err != nil {
			t.Fatalf("upsert pass %d: %v", i+1, err)
		}
	}
	if src.creates != 1 || src.updates != 1 {
		t.Fatalf("creates = %d, updates = %d, want 1, 1", src.creates, src.updates)
	}
	got := src.stored[trKey(content.TypeArticle, 3, "fr")].(content.ArticleTranslation)
	if got != rec {
		t.Fatalf("stored record diverged: %+v", got)
	}
}

func TestUpsertAbandonedOnDoubleNotFound(t *testing.T) {
	src := newFakeSource()
	src.sourceGone = true
	p := newTestPipeline(t, src, newFakeTMS())

	rec := content.ItemTranslation{Locale: "de", Name: "Name"}
	if err := p.upsert(content.TypeCategory, 9, "de", rec); err != nil {
		t.Fatalf("upsert should absorb the double not-found: %v", err)
	}
	if len(src.stored) != 0 {
		t.Fatalf("nothing should be stored, got %v", src.stored)
	}
}

func TestUpsertPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("probe failure", func(t *testing.T) {
		src := newFakeSource()
		src.probeErr = boom
		p := newTestPipeline(t, src, newFakeTMS())
		if err := p.upsert(content.TypeSection, 1, "de", content.ItemTranslation{Locale: "de"}); !errors.Is(err, boom) {
			t.Fatalf("err = %v, want boom", err)
		}
	})

	t.Run("create failure", func(t *testing.T) {
		src := newFakeSource()
		src.createErr = boom
		p := newTestPipeline(t, src, newFakeTMS())
		if err := p.upsert(content.TypeSection, 1, "de", content.ItemTranslation{Locale: "de"}); !errors.Is(err, boom) {
			t.Fatalf("err = %v, want boom", err)
		}
	})

	t.Run("update failure", func(t *testing.T) {
		src := newFakeSource()
		src.stored[trKey(content.TypeSection, 1, "de")] = content.ItemTranslation{Locale: "de"}
		src.updateErr = boom
		p := newTestPipeline(t, src, newFakeTMS())
		if err := p.upsert(content.TypeSection, 1, "de", content.ItemTranslation{Locale: "de"}); !errors.Is(err, boom) {
			t.Fatalf("err = %v, want boom", err)
		}
	})
}
