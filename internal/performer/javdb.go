package performer

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"

	"mediasort/internal/logging"
)

const (
	defaultSearchBaseURL = "https://javdb.com"
	searchUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36"
)

// JavDB searches the JavDB actor index. The first actor box's title holds the
// comma separated aliases of the best match.
type JavDB struct {
	baseURL string
	client  *retryablehttp.Client
	logger  *slog.Logger
}

// NewJavDB builds a searcher. An empty baseURL targets javdb.com.
func NewJavDB(baseURL string, timeout time.Duration, retries int, logger *slog.Logger) *JavDB {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultSearchBaseURL
	}
	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = max(retries, 0)
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	if timeout > 0 {
		client.HTTPClient.Timeout = timeout
	}
	return &JavDB{baseURL: baseURL, client: client, logger: logging.NewComponentLogger(logger, "javdb")}
}

// Search implements Searcher. The searched name is always part of a non-empty
// result.
func (j *JavDB) Search(ctx context.Context, name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	aliases, err := j.search(ctx, name)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, j.logger), "performer alias search failed", "alias_search_failed",
			logging.String("performer", name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "directory created from the credited name only"),
			logging.String(logging.FieldErrorHint, "check performers.search_base_url reachability"),
		)
		return nil
	}
	return aliases
}

func (j *JavDB) search(ctx context.Context, name string) ([]string, error) {
	searchURL := j.baseURL + "/search?f=actor&q=" + url.QueryEscape(name)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", searchUserAgent)

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}
	aliases := parseActorTitle(doc)
	for _, alias := range aliases {
		if alias == name {
			return aliases, nil
		}
	}
	return append(aliases, name), nil
}

func parseActorTitle(doc *goquery.Document) []string {
	title, ok := doc.Find(".actor-box a").First().Attr("title")
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(title, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
