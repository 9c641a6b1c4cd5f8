// Package relink rewrites image and anchor references inside a translated
// HTML fragment so that they point to localized counterparts.
//
// Image filenames are expected to carry the source locale as a suffix token
// before the extension ("logo_en-us.png"). The token convention lives in
// SubstituteLocaleToken only; the traversal never assumes it.
package relink

import (
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/localehub/hcsync/content"
)

// Relocalizer rewrites links for one source locale.
type Relocalizer struct {
	SourceLocale string
	Log          *zap.SugaredLogger
}

// SubstituteLocaleToken replaces the "_<from>" token immediately before the
// file extension with "_<to>". Names without the token are returned
// unchanged, so a second pass over an already-substituted name is a no-op.
func SubstituteLocaleToken(name, from, to string) string {
	ext := path.Ext(name)
	if ext == "" {
		return name
	}
	stem := strings.TrimSuffix(name, ext)
	token := "_" + from
	if !strings.HasSuffix(stem, token) {
		return name
	}
	return strings.TrimSuffix(stem, token) + "_" + to + ext
}

// Relocalize rewrites every img src and a href in the fragment for the
// target locale. Images whose localized counterpart is missing from the
// attachment list are left unmodified with a warning; elements other than
// img and a pass through untouched. The output keeps the input's fragment
// shape: no wrapping element is introduced around bare text or siblings.
func (r *Relocalizer) Relocalize(body, targetLocale string, attachments []content.Attachment) (string, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(body), ctx)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, n := range nodes {
		r.walk(n, targetLocale, attachments)
		if err := html.Render(&out, n); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

func (r *Relocalizer) walk(n *html.Node, targetLocale string, attachments []content.Attachment) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			r.fixImage(n, targetLocale, attachments)
		case atom.A:
			r.fixAnchor(n, targetLocale)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c, targetLocale, attachments)
	}
}

// fixImage points the img src at the attachment carrying the localized
// filename. The help center assigns each uploaded image a fresh id, so the
// URL cannot be derived; it has to be looked up in the attachment list.
func (r *Relocalizer) fixImage(n *html.Node, targetLocale string, attachments []content.Attachment) {
	src := attr(n, "src")
	if src == "" {
		return
	}

	fileName := src
	if u, err := url.Parse(src); err == nil {
		fileName = path.Base(u.Path)
	}
	localized := SubstituteLocaleToken(fileName, r.SourceLocale, targetLocale)

	for _, a := range attachments {
		if a.FileName == localized {
			setAttr(n, "src", a.ContentURL)
			return
		}
	}
	r.Log.Warnf("no %s version of image found for %s", targetLocale, fileName)
}

// fixAnchor replaces the source-locale path segment with the target locale.
// Links without the segment are left alone.
func (r *Relocalizer) fixAnchor(n *html.Node, targetLocale string) {
	href := attr(n, "href")
	if href == "" {
		return
	}
	from := "/" + r.SourceLocale + "/"
	if !strings.Contains(href, from) {
		return
	}
	setAttr(n, "href", strings.ReplaceAll(href, from, "/"+targetLocale+"/"))
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}
