// Package tms is a client for the translation management system's file API.
// Source documents are uploaded under a deterministic file URI, translated
// there, and downloaded per locale and retrieval kind.
package tms

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
)

// PageSize is the fixed page size of the file listing API.
const PageSize = 500

// ConditionAllTranslated selects files whose every string is translated in
// the requested locale.
const ConditionAllTranslated = "haveAllTranslated"

// RetrievalKind selects which translation lifecycle stage to download.
type RetrievalKind string

const (
	RetrievalPublished RetrievalKind = "published"
	RetrievalPending   RetrievalKind = "pending"
	RetrievalPseudo    RetrievalKind = "pseudo"
)

// ValidRetrievalKind reports whether s names a supported retrieval kind.
func ValidRetrievalKind(s string) bool {
	switch RetrievalKind(s) {
	case RetrievalPublished, RetrievalPending, RetrievalPseudo:
		return true
	}
	return false
}

// ErrNoContent indicates the translation system has no document for the
// requested (uri, locale, kind). Callers treat it as a no-op, not a failure.
var ErrNoContent = errors.New("no translated content")

// APIError carries an error status from the translation system together
// with the raw response body. Always fatal, never retried.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("translation API error %d: %s", e.Status, e.Body)
}

// UploadResult reports what the translation system did with an upload.
type UploadResult struct {
	Overwritten bool `json:"overWritten"`
	StringCount int  `json:"stringCount"`
	WordCount   int  `json:"wordCount"`
}

// ListPage is one page of the file listing plus the overall total.
type ListPage struct {
	FileCount int
	URIs      []string
}

// envelope is the response wrapper common to the JSON endpoints.
type envelope struct {
	Response struct {
		Code string `json:"code"`
		Data struct {
			UploadResult
			FileCount int `json:"fileCount"`
			FileList  []struct {
				FileURI string `json:"fileUri"`
			} `json:"fileList"`
		} `json:"data"`
	} `json:"response"`
}

// Client talks to one translation-system project.
type Client struct {
	http *resty.Client
}

// New builds a client for the file API at baseURL, scoped to one project.
func New(baseURL, apiKey, projectID string) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetQueryParams(map[string]string{
			"apiKey":    apiKey,
			"projectId": projectID,
		})
	return &Client{http: c}
}

// Upload sends a source document to the translation system under uri,
// superseding any prior document at the same URI. Directives declare which
// paths are translatable and how they are formatted.
func (c *Client) Upload(uri string, doc []byte, fileType string, directives map[string]string, authorize bool) (*UploadResult, error) {
	req := c.http.R().
		SetFileReader("file", uri, bytes.NewReader(doc)).
		SetFormData(map[string]string{
			"fileUri":  uri,
			"fileType": fileType,
			"approved": strconv.FormatBool(authorize),
		})
	for name, value := range directives {
		req.SetFormData(map[string]string{"smartling." + name: value})
	}

	var out envelope
	resp, err := req.SetResult(&out).Post("/file/upload")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode(), Body: resp.String()}
	}
	r := out.Response.Data.UploadResult
	return &r, nil
}

// Get downloads the translated document for (uri, locale, kind).
// ErrNoContent is returned when no translation exists at that stage.
func (c *Client) Get(uri, locale string, kind RetrievalKind) ([]byte, error) {
	resp, err := c.http.R().
		SetQueryParams(map[string]string{
			"fileUri":                uri,
			"locale":                 locale,
			"retrievalType":          string(kind),
			"includeOriginalStrings": "true",
		}).
		Get("/file/get")
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound || resp.StatusCode() == http.StatusNoContent:
		return nil, errors.Wrapf(ErrNoContent, "uri %s, locale %s, kind %s", uri, locale, kind)
	case resp.StatusCode() != http.StatusOK:
		return nil, &APIError{Status: resp.StatusCode(), Body: resp.String()}
	case len(bytes.TrimSpace(resp.Body())) == 0:
		return nil, errors.Wrapf(ErrNoContent, "uri %s, locale %s, kind %s", uri, locale, kind)
	}
	return resp.Body(), nil
}

// List returns one fixed-size page of the file listing for a URI mask at the
// given offset, along with the total file count so callers can page through.
func (c *Client) List(uriMask, locale, condition string, offset int) (*ListPage, error) {
	var out envelope
	resp, err := c.http.R().
		SetQueryParams(map[string]string{
			"uriMask":    uriMask,
			"locale":     locale,
			"conditions": condition,
			"fileTypes":  "json",
			"offset":     strconv.Itoa(offset),
		}).
		SetResult(&out).
		Get("/file/list")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode(), Body: resp.String()}
	}

	page := &ListPage{FileCount: out.Response.Data.FileCount}
	for _, f := range out.Response.Data.FileList {
		page.URIs = append(page.URIs, f.FileURI)
	}
	return page, nil
}
