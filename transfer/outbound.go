package transfer

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/localehub/hcsync/content"
	"github.com/localehub/hcsync/helpcenter"
)

// uploadDirectives declares to the translation system which JSON paths are
// translatable, that article bodies are HTML, and which field keys the
// translation memory should match on.
func uploadDirectives(t content.ItemType) map[string]string {
	d := map[string]string{
		"translate_paths": strings.Join(t.TranslatableFields(), ","),
		"namespace":       "helpcenter",
	}
	switch t {
	case content.TypeArticle:
		d["string_format_paths"] = "html:body"
		d["source_key_paths"] = "title"
	default:
		d["source_key_paths"] = "name"
	}
	return d
}

// PushItem transfers one item from the help center to the translation
// system. A source item that no longer exists is skipped with a warning,
// since callers frequently pass stale id lists. Any other failure propagates.
func (p *Pipeline) PushItem(t content.ItemType, id int64) error {
	p.Log.Infof("transferring %s %d to the translation system", t, id)

	item, err := p.fetchItem(t, id)
	switch {
	case errors.Is(err, helpcenter.ErrNotFound):
		p.Log.Warnf("%s %d not found, skipping", t, id)
		return nil
	case err != nil:
		return err
	}
	return p.uploadItem(t, id, item)
}

// PushItems transfers a list of items of one type.
func (p *Pipeline) PushItems(t content.ItemType, ids []int64) error {
	p.Log.Infof("transferring %d %s items for translation", len(ids), t)
	for _, id := range ids {
		if err := p.PushItem(t, id); err != nil {
			return err
		}
	}
	return nil
}

// PushAll transfers every item of a type, subject to the article filters.
// The listed items are uploaded directly without a second fetch.
func (p *Pipeline) PushAll(t content.ItemType) error {
	p.Log.Infof("transferring all %s items for translation", t)

	items, err := p.listFiltered(t)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := p.uploadItem(t, it.ID, it.Item); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) fetchItem(t content.ItemType, id int64) (any, error) {
	switch t {
	case content.TypeArticle:
		return p.Source.ShowArticle(id)
	case content.TypeSection:
		return p.Source.ShowSection(id)
	case content.TypeCategory:
		return p.Source.ShowCategory(id)
	}
	return nil, errors.Newf("invalid item type %q", t)
}

// uploadItem serializes the item and sends it to the translation system
// under its deterministic URI, superseding any prior document there.
func (p *Pipeline) uploadItem(t content.ItemType, id int64, item any) error {
	doc, err := canonicalJSON(item)
	if err != nil {
		return errors.Wrapf(err, "serializing %s %d", t, id)
	}
	uri := content.URI(t, id)

	if p.Incremental && p.Lock != nil && !p.Lock.IsChanged(uri, doc) {
		p.Log.Infof("skipping %s: unchanged since last push", uri)
		return nil
	}

	if err := p.Artifacts.WriteSource(t, id, doc); err != nil {
		return err
	}

	res, err := p.TMS.Upload(uri, doc, "json", uploadDirectives(t), p.Authorize)
	if err != nil {
		return err
	}
	p.Log.Debugf("uploaded %s: overwritten=%v, strings=%d, words=%d",
		uri, res.Overwritten, res.StringCount, res.WordCount)

	if p.Lock != nil {
		p.Lock.Update(uri, doc)
	}
	return nil
}

// pushable pairs an item with its id for batch uploads.
type pushable struct {
	ID   int64
	Item any
}

// listFiltered lists every item of a type from the help center. Articles go
// through the draft/include/exclude filter; sections and categories have no
// draft concept and are returned whole.
func (p *Pipeline) listFiltered(t content.ItemType) ([]pushable, error) {
	var out []pushable

	switch t {
	case content.TypeArticle:
		articles, err := p.Source.ListArticles(p.SourceLocale)
		if err != nil {
			return nil, err
		}
		// Drafts stay home unless a specific include list was given.
		includeDraft := len(p.IncludeArticles) > 0
		for _, a := range articles {
			if !includeDraft && a.Draft {
				p.Log.Infof("skipping draft article %d", a.ID)
				continue
			}
			if len(p.IncludeArticles) > 0 && !containsID(p.IncludeArticles, a.ID) {
				p.Log.Infof("skipping article %d due to transfer config", a.ID)
				continue
			}
			if containsID(p.ExcludeArticles, a.ID) {
				p.Log.Infof("skipping article %d due to transfer config", a.ID)
				continue
			}
			out = append(out, pushable{ID: a.ID, Item: a})
		}

	case content.TypeSection:
		sections, err := p.Source.ListSections(p.SourceLocale)
		if err != nil {
			return nil, err
		}
		for _, s := range sections {
			out = append(out, pushable{ID: s.ID, Item: s})
		}

	case content.TypeCategory:
		categories, err := p.Source.ListCategories(p.SourceLocale)
		if err != nil {
			return nil, err
		}
		for _, c := range categories {
			out = append(out, pushable{ID: c.ID, Item: c})
		}

	default:
		return nil, errors.Newf("invalid item type %q", t)
	}

	p.Log.Infof("got %d %s items", len(out), t)
	return out, nil
}
