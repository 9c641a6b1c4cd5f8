// Package helpcenter is a client for the help-center REST API of the content
// management platform that owns the original-language articles, sections and
// categories.
//
// Every operation can fail with ErrNotFound (HTTP 404), which callers treat
// as an accepted branch, or with *StatusError for any other non-success
// status, which is always fatal.
package helpcenter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"

	"github.com/localehub/hcsync/content"
)

// ErrNotFound indicates the requested resource does not exist in the help
// center. Callers match it with errors.Is.
var ErrNotFound = errors.New("not found")

// StatusError carries a non-404 error status and the raw response body.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("help-center API error %d: %s", e.Status, e.Body)
}

// Client talks to one help-center instance.
type Client struct {
	http *resty.Client
}

// New builds a client for the help center at baseURL, authenticating with
// the user's email and API token.
func New(baseURL, user, token string) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetBasicAuth(user+"/token", token).
		SetHeader("Content-Type", "application/json")
	return &Client{http: c}
}

// check maps a response to the package error taxonomy.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return errors.Wrapf(ErrNotFound, "%s %s", resp.Request.Method, resp.Request.URL)
	}
	if resp.IsError() {
		return &StatusError{Status: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

// itemsPath returns the plural path segment for an item type.
func itemsPath(t content.ItemType) string {
	return string(t) + "s"
}

// ShowArticle fetches one article by id.
func (c *Client) ShowArticle(id int64) (*content.Article, error) {
	var out struct {
		Article content.Article `json:"article"`
	}
	resp, err := c.http.R().
		SetResult(&out).
		Get(fmt.Sprintf("/api/v2/help_center/articles/%d.json", id))
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out.Article, nil
}

// ShowSection fetches one section by id.
func (c *Client) ShowSection(id int64) (*content.Section, error) {
	var out struct {
		Section content.Section `json:"section"`
	}
	resp, err := c.http.R().
		SetResult(&out).
		Get(fmt.Sprintf("/api/v2/help_center/sections/%d.json", id))
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out.Section, nil
}

// ShowCategory fetches one category by id.
func (c *Client) ShowCategory(id int64) (*content.Category, error) {
	var out struct {
		Category content.Category `json:"category"`
	}
	resp, err := c.http.R().
		SetResult(&out).
		Get(fmt.Sprintf("/api/v2/help_center/categories/%d.json", id))
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out.Category, nil
}

// listPage is the common pagination envelope of the listing endpoints.
type listPage struct {
	Articles   []content.Article  `json:"articles"`
	Sections   []content.Section  `json:"sections"`
	Categories []content.Category `json:"categories"`
	NextPage   string             `json:"next_page"`
}

// listAll follows next_page links until the listing is exhausted, calling
// collect for every page.
func (c *Client) listAll(firstURL string, collect func(*listPage)) error {
	url := firstURL
	for url != "" {
		var page listPage
		resp, err := c.http.R().SetResult(&page).Get(url)
		if err := check(resp, err); err != nil {
			return err
		}
		collect(&page)
		url = page.NextPage
	}
	return nil
}

// ListArticles returns every article in the given source locale.
func (c *Client) ListArticles(locale string) ([]content.Article, error) {
	var out []content.Article
	err := c.listAll(
		fmt.Sprintf("/api/v2/help_center/%s/articles.json", locale),
		func(p *listPage) { out = append(out, p.Articles...) })
	return out, err
}

// ListSections returns every section in the given source locale.
func (c *Client) ListSections(locale string) ([]content.Section, error) {
	var out []content.Section
	err := c.listAll(
		fmt.Sprintf("/api/v2/help_center/%s/sections.json", locale),
		func(p *listPage) { out = append(out, p.Sections...) })
	return out, err
}

// ListCategories returns every category in the given source locale.
func (c *Client) ListCategories(locale string) ([]content.Category, error) {
	var out []content.Category
	err := c.listAll(
		fmt.Sprintf("/api/v2/help_center/%s/categories.json", locale),
		func(p *listPage) { out = append(out, p.Categories...) })
	return out, err
}

// ArticleAttachments returns the attachments of one article. The result is
// fetched per article and never cached.
func (c *Client) ArticleAttachments(id int64) ([]content.Attachment, error) {
	var out struct {
		ArticleAttachments []content.Attachment `json:"article_attachments"`
	}
	resp, err := c.http.R().
		SetResult(&out).
		Get(fmt.Sprintf("/api/v2/help_center/articles/%d/attachments.json", id))
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return out.ArticleAttachments, nil
}

// ShowTranslation probes whether a translation exists for (item, locale).
// A nil error means it exists; ErrNotFound means it does not.
func (c *Client) ShowTranslation(t content.ItemType, id int64, locale string) error {
	resp, err := c.http.R().
		Get(fmt.Sprintf("/api/v2/help_center/%s/%d/translations/%s.json", itemsPath(t), id, locale))
	return check(resp, err)
}

// CreateTranslation creates a new translation record for an item. The help
// center reports ErrNotFound when the source item itself no longer exists.
func (c *Client) CreateTranslation(t content.ItemType, id int64, translation any) error {
	resp, err := c.http.R().
		SetBody(map[string]any{"translation": translation}).
		Post(fmt.Sprintf("/api/v2/help_center/%s/%d/translations.json", itemsPath(t), id))
	return check(resp, err)
}

// UpdateTranslation overwrites an existing translation record.
func (c *Client) UpdateTranslation(t content.ItemType, id int64, locale string, translation any) error {
	resp, err := c.http.R().
		SetBody(map[string]any{"translation": translation}).
		Put(fmt.Sprintf("/api/v2/help_center/%s/%d/translations/%s.json", itemsPath(t), id, locale))
	return check(resp, err)
}
