// Package archive implements the external data archive client: a
// MAST-style HTTP search-and-download flow producing target pixel
// files. A single failed lookup means "target not found"; there are no
// retries here.
package archive

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"lightlab/domain/core"
	"lightlab/domain/observation"
	"lightlab/internal/errors"
	"lightlab/ports"
)

const (
	searchPath   = "/api/v0.1/products"
	downloadPath = "/api/v0.1/download"
)

// product is one search hit. The archive returns the data URI of each
// matching target pixel file, best quality first.
type product struct {
	URI string `json:"uri"`
}

// Client fetches target pixel files over HTTP with an optional local
// byte cache. Concurrent fetches of the same query string are
// collapsed into one download.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      ports.CacheStorePort
	group      singleflight.Group
}

// NewClient creates an archive client. cache may be nil to disable
// caching.
func NewClient(baseURL string, timeout time.Duration, cache ports.CacheStorePort) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
	}
}

// FetchTargetPixels looks up the best matching observation for the
// query and downloads its pixel file. A target unknown to the archive
// comes back as core.ErrTargetNotFound; transport and decode failures
// are real errors.
func (c *Client) FetchTargetPixels(ctx context.Context, q ports.ArchiveQuery) (*observation.TargetPixelFile, error) {
	key := cacheKey(q)

	if c.cache != nil {
		if raw, ok, err := c.cache.Get(key); err != nil {
			log.Printf("[ArchiveClient] cache read failed for %q: %v", key, err)
		} else if ok {
			tpf, err := decodeTargetPixelFile(q.Target, raw)
			if err == nil {
				return tpf, nil
			}
			// A corrupt cached blob must not pin the target as broken;
			// evict it and fall through to a fresh download.
			log.Printf("[ArchiveClient] cached payload for %q undecodable, refetching: %v", key, err)
			if err := c.cache.Delete(key); err != nil {
				log.Printf("[ArchiveClient] cache evict failed for %q: %v", key, err)
			}
		}
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// The flight is shared: later callers for the same key join it,
		// so it must not die with whichever caller started it. The
		// client timeout still bounds the download.
		return c.download(context.WithoutCancel(ctx), q, key)
	})
	if err != nil {
		return nil, err
	}
	return decodeTargetPixelFile(q.Target, v.([]byte))
}

func (c *Client) download(ctx context.Context, q ports.ArchiveQuery, key string) ([]byte, error) {
	uri, err := c.search(ctx, q)
	if err != nil {
		return nil, err
	}

	raw, err := c.fetchProduct(ctx, uri)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Put(key, raw); err != nil {
			log.Printf("[ArchiveClient] cache write failed for %q: %v", key, err)
		}
	}
	return raw, nil
}

// search asks the archive for matching products and returns the first
// (best) product URI.
func (c *Client) search(ctx context.Context, q ports.ArchiveQuery) (string, error) {
	params := url.Values{}
	params.Set("target", q.Target)
	params.Set("author", q.Author)
	params.Set("cadence", q.Cadence)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return "", errors.ArchiveError(err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.ArchiveError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", core.NewNotFoundError("target", q.Target)
	case resp.StatusCode != http.StatusOK:
		return "", errors.ArchiveError(fmt.Errorf("search returned %s", resp.Status))
	}

	var products []product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return "", errors.DecodeError("malformed search response", err)
	}
	if len(products) == 0 {
		return "", core.NewNotFoundError("target", q.Target)
	}
	return products[0].URI, nil
}

// fetchProduct downloads one product, transparently inflating gzipped
// payloads.
func (c *Client) fetchProduct(ctx context.Context, uri string) ([]byte, error) {
	params := url.Values{}
	params.Set("uri", uri)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+downloadPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.ArchiveError(err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.ArchiveError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.ArchiveError(fmt.Errorf("download returned %s", resp.Status))
	}

	var body io.Reader = resp.Body
	if strings.HasSuffix(uri, ".gz") || resp.Header.Get("Content-Type") == "application/gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errors.DecodeError("bad gzip payload", err)
		}
		defer gz.Close()
		body = gz
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.ArchiveError(err)
	}
	return raw, nil
}

func cacheKey(q ports.ArchiveQuery) string {
	return fmt.Sprintf("%s|%s|%s", q.Target, q.Author, q.Cadence)
}
