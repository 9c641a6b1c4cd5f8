package transfer

import (
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/localehub/hcsync/content"
	"github.com/localehub/hcsync/helpcenter"
	"github.com/localehub/hcsync/relink"
	"github.com/localehub/hcsync/tms"
)

// PullItem downloads the translation of one item at one locale and upserts
// it into the help center. A translation that does not exist at the
// requested retrieval kind is a logged no-op.
func (p *Pipeline) PullItem(t content.ItemType, id int64, tmsLocale string, kind tms.RetrievalKind) error {
	uri := content.URI(t, id)
	p.Log.Infof("transferring translation %s, locale %s", uri, tmsLocale)

	doc, err := p.TMS.Get(uri, tmsLocale, kind)
	switch {
	case errors.Is(err, tms.ErrNoContent):
		p.Log.Infof("no translation for %s, locale %s, kind %s", uri, tmsLocale, kind)
		return nil
	case err != nil:
		return err
	}

	if err := p.Artifacts.WriteTranslation(t, id, tmsLocale, doc); err != nil {
		return err
	}

	hcLocale, err := p.Locales.ToSource(tmsLocale)
	if err != nil {
		return err
	}

	rec, err := p.buildRecord(t, id, hcLocale, doc)
	if err != nil {
		return err
	}
	return p.upsert(t, id, hcLocale, rec)
}

// PullItems transfers translations for a list of ids across locales. The
// (id, locale) pairs are independent; no ordering invariant exists between
// them.
func (p *Pipeline) PullItems(t content.ItemType, ids []int64, sourceLocales []string, kind tms.RetrievalKind) error {
	p.Log.Infof("transferring %s translations from the translation system", t)
	for _, id := range ids {
		for _, loc := range sourceLocales {
			tmsLocale, err := p.Locales.ToTranslation(loc)
			if err != nil {
				return err
			}
			if err := p.PullItem(t, id, tmsLocale, kind); err != nil {
				return err
			}
		}
	}
	return nil
}

// PullAll transfers every fully translated item of a type for the given
// locales. The help-center listing is taken first to filter what gets
// pulled; a new source revision uploaded between that listing and the
// completion scan can yield a partially translated pull. Known limitation.
func (p *Pipeline) PullAll(t content.ItemType, sourceLocales []string, kind tms.RetrievalKind) error {
	p.Log.Infof("transferring all %s translations from the translation system", t)

	items, err := p.listFiltered(t)
	if err != nil {
		return err
	}
	wanted := make(map[int64]bool, len(items))
	for _, it := range items {
		wanted[it.ID] = true
	}

	for _, loc := range sourceLocales {
		tmsLocale, err := p.Locales.ToTranslation(loc)
		if err != nil {
			return err
		}
		completed, err := p.ListCompletedIDs(t, tmsLocale)
		if err != nil {
			return err
		}
		for _, id := range completed {
			if !wanted[id] {
				continue
			}
			if err := p.PullItem(t, id, tmsLocale, kind); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildRecord shapes a downloaded translation document into the help-center
// upsert payload for its type. Article bodies go through the link
// relocalizer.
func (p *Pipeline) buildRecord(t content.ItemType, id int64, hcLocale string, doc []byte) (any, error) {
	switch t {
	case content.TypeArticle:
		var a content.Article
		if err := json.Unmarshal(doc, &a); err != nil {
			return nil, errors.Wrapf(err, "decoding translated article %d", id)
		}
		body, err := p.fixArticleBody(id, a.Body, hcLocale)
		if err != nil {
			return nil, err
		}
		return content.ArticleTranslation{
			Locale: hcLocale,
			Title:  a.Title,
			Body:   body,
			Draft:  a.Draft,
		}, nil

	case content.TypeSection:
		var s content.Section
		if err := json.Unmarshal(doc, &s); err != nil {
			return nil, errors.Wrapf(err, "decoding translated section %d", id)
		}
		return content.ItemTranslation{Locale: hcLocale, Name: s.Name, Description: s.Description}, nil

	case content.TypeCategory:
		var c content.Category
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, errors.Wrapf(err, "decoding translated category %d", id)
		}
		return content.ItemTranslation{Locale: hcLocale, Name: c.Name, Description: c.Description}, nil
	}
	return nil, errors.Newf("invalid item type %q", t)
}

// fixArticleBody rewrites the translated body's links against the source
// article's attachment list. A source article deleted between upload and
// retrieval leaves nothing to match against, so link fixing is bypassed and
// the body returned unmodified.
func (p *Pipeline) fixArticleBody(id int64, body, hcLocale string) (string, error) {
	p.Log.Debugf("fixing links for article %d", id)

	attachments, err := p.Source.ArticleAttachments(id)
	switch {
	case errors.Is(err, helpcenter.ErrNotFound):
		p.Log.Infof("source article %d gone, skipping link fixing", id)
		return body, nil
	case err != nil:
		return "", err
	}

	r := relink.Relocalizer{SourceLocale: p.SourceLocale, Log: p.Log}
	return r.Relocalize(body, hcLocale, attachments)
}

// upsertState tracks the explicit create-or-update progression for one
// translation record.
type upsertState int

const (
	stateProbing upsertState = iota
	stateUpdating
	stateCreating
	stateDone
	stateAbandoned
)

// upsert converges the stored translation for (item, locale) to rec.
// The update path is probed first; a missing translation falls back to
// create. A create that itself reports not-found means the source item was
// deleted in the interim and the upsert is abandoned silently; that is the
// accepted double-not-found race, not an error. Repeated calls with the
// same record converge to the same stored state.
func (p *Pipeline) upsert(t content.ItemType, id int64, locale string, rec any) error {
	state := stateProbing
	for {
		switch state {
		case stateProbing:
			switch err := p.Source.ShowTranslation(t, id, locale); {
			case err == nil:
				state = stateUpdating
			case errors.Is(err, helpcenter.ErrNotFound):
				state = stateCreating
			default:
				return err
			}

		case stateUpdating:
			if err := p.Source.UpdateTranslation(t, id, locale, rec); err != nil {
				return err
			}
			p.Log.Debugf("updated %s %d translation, locale %s", t, id, locale)
			state = stateDone

		case stateCreating:
			switch err := p.Source.CreateTranslation(t, id, rec); {
			case err == nil:
				p.Log.Debugf("created %s %d translation, locale %s", t, id, locale)
				state = stateDone
			case errors.Is(err, helpcenter.ErrNotFound):
				state = stateAbandoned
			default:
				return err
			}

		case stateDone:
			return nil

		case stateAbandoned:
			p.Log.Debugf("source %s %d gone, skipping translation upload", t, id)
			return nil
		}
	}
}
