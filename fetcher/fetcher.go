// Package fetcher downloads the catalog dataset when the configured input
// is a URL rather than a local file.
package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gocolly/colly"
	"go.uber.org/zap"
)

// DefaultFileName is used when the URL path does not name a file.
const DefaultFileName = "netflix_titles.csv"

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Fetcher downloads datasets into a local directory.
type Fetcher struct {
	dataDir   string
	userAgent string
	logger    *zap.Logger
}

// NewFetcher creates a fetcher saving into dataDir.
func NewFetcher(dataDir string, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{dataDir: dataDir, userAgent: "cine-insights", logger: logger}
}

func (f *Fetcher) collector() *colly.Collector {
	c := colly.NewCollector(colly.UserAgent(f.userAgent))
	// Catalog exports exceed colly's default body limit.
	c.MaxBodySize = 0

	c.OnRequest(func(r *colly.Request) {
		f.logger.Debug("visiting", zap.String("url", r.URL.String()))
	})
	c.OnResponse(func(r *colly.Response) {
		f.logger.Debug("response received",
			zap.Int("status", r.StatusCode),
			zap.Int("bytes", len(r.Body)))
	})
	return c
}

// Fetch downloads the dataset at rawURL. When the URL serves an HTML page,
// the first linked .csv file is downloaded instead. It returns the local
// path of the saved file.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid dataset url %q: %w", rawURL, err)
	}
	if strings.HasSuffix(strings.ToLower(u.Path), ".csv") {
		return f.Download(ctx, rawURL)
	}

	links, err := f.CSVLinks(rawURL)
	if err != nil {
		return "", err
	}
	if len(links) == 0 {
		return f.Download(ctx, rawURL)
	}
	f.logger.Info("dataset link found", zap.String("page", rawURL), zap.String("link", links[0]))
	return f.Download(ctx, links[0])
}

// CSVLinks returns the absolute URLs of the .csv links on an HTML page, in
// document order.
func (f *Fetcher) CSVLinks(pageURL string) ([]string, error) {
	c := f.collector()
	var links []string
	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" {
			return
		}
		if u, err := url.Parse(link); err == nil && strings.HasSuffix(strings.ToLower(u.Path), ".csv") {
			links = append(links, link)
		}
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}
	return links, nil
}

// Download saves the body served at rawURL into the data directory.
func (f *Fetcher) Download(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(f.dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	c := f.collector()
	var (
		dest    string
		saveErr error
	)
	c.OnResponse(func(r *colly.Response) {
		dest = filepath.Join(f.dataDir, fileName(r.Request.URL))
		saveErr = r.Save(dest)
	})

	if err := c.Visit(rawURL); err != nil {
		return "", fmt.Errorf("failed to download %s: %w", rawURL, err)
	}
	if saveErr != nil {
		return "", fmt.Errorf("failed to save %s: %w", dest, saveErr)
	}
	if dest == "" {
		return "", fmt.Errorf("no response from %s", rawURL)
	}

	f.logger.Info("dataset downloaded", zap.String("url", rawURL), zap.String("path", dest))
	return dest, nil
}

func fileName(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return DefaultFileName
	}
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		return DefaultFileName
	}
	return name
}
