package transfer

import (
	"github.com/localehub/hcsync/content"
	"github.com/localehub/hcsync/tms"
)

// ListCompletedIDs returns the id of every item of the given type whose
// translation is complete in the given translation-system locale. The
// listing API pages in fixed-size steps; enough pages are requested to
// cover the reported total count. A returned URI that does not parse back
// to an id is fatal.
func (p *Pipeline) ListCompletedIDs(t content.ItemType, tmsLocale string) ([]int64, error) {
	first, err := p.TMS.List(string(t), tmsLocale, tms.ConditionAllTranslated, 0)
	if err != nil {
		return nil, err
	}

	ids, err := parseCompletedIDs(t, first.URIs)
	if err != nil {
		return nil, err
	}

	for offset := tms.PageSize; offset < first.FileCount; offset += tms.PageSize {
		page, err := p.TMS.List(string(t), tmsLocale, tms.ConditionAllTranslated, offset)
		if err != nil {
			return nil, err
		}
		more, err := parseCompletedIDs(t, page.URIs)
		if err != nil {
			return nil, err
		}
		ids = append(ids, more...)
	}

	p.Log.Debugf("%d %s items fully translated in %s", len(ids), t, tmsLocale)
	return ids, nil
}

func parseCompletedIDs(t content.ItemType, uris []string) ([]int64, error) {
	ids := make([]int64, 0, len(uris))
	for _, uri := range uris {
		id, err := content.ParseURI(t, uri)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
