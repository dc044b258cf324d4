package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wattle/downloader/internal/config"
	"wattle/downloader/internal/domain"
	"wattle/downloader/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// CourseClient fetches the course page and downloads the files it links to
type CourseClient interface {
	FetchPage(ctx context.Context) (string, error)
	GetItems(ctx context.Context) ([]domain.Item, error)
	Download(ctx context.Context, rawURL, filename string) error
}

type courseClient struct {
	rl            ratelimit.Limiter
	config        config.DownloadConfig
	pageURL       string
	outputDir     string
	httpClient    *resty.Client
	parser        *courseParser
	proxySupplier proxy.ProxySupplier
}

func NewCourseClient(courseCfg config.CourseConfig, cfg config.DownloadConfig, proxySupplier proxy.ProxySupplier) CourseClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(2*time.Second).
		SetRetryMaxWaitTime(10*time.Second).
		SetLogger(log.StandardLogger()).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36").
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5").
		SetHeaders(courseCfg.Headers).
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		})

	if cfg.InsecureSkipVerify {
		log.Warnf("⚠️ TLS certificate verification is disabled; configured headers are sent unprotected")
	}

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &courseClient{
		rl:            rl,
		config:        cfg,
		pageURL:       courseCfg.PageURL,
		outputDir:     cfg.OutputDir,
		httpClient:    client,
		parser:        newCourseParser(courseCfg.PageURL),
		proxySupplier: proxySupplier,
	}
}

func (c *courseClient) FetchPage(ctx context.Context) (string, error) {
	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(c.pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch course page: %w", err)
	}

	if resp.IsError() {
		c.rotateProxy()
		return "", fmt.Errorf("HTTP error: %s", resp.Status())
	}

	return resp.String(), nil
}

// GetItems fetches the course page and returns every activity item on it,
// unfiltered and unnumbered
func (c *courseClient) GetItems(ctx context.Context) ([]domain.Item, error) {
	html, err := c.FetchPage(ctx)
	if err != nil {
		return nil, err
	}

	items, err := c.parser.ParseItems(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse course page: %w", err)
	}

	log.Debugf("Successfully fetched and parsed course page with %d items", len(items))
	return items, nil
}

// Download saves rawURL as filename inside the output directory, making one
// request only. An existing file is never overwritten: the name gets a " (N)"
// suffix instead. A file left behind by an error response is removed.
func (c *courseClient) Download(ctx context.Context, rawURL, filename string) error {
	c.rl.Take()

	path := availablePath(filepath.Join(c.outputDir, filename))

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetRetryCount(0).
		SetOutputFileName(path).
		Get(rawURL)
	if err != nil {
		os.Remove(path)
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("failed to download %s: %w", rawURL, err)
	}

	if resp.IsError() {
		os.Remove(path)
		c.rotateProxy()
		return fmt.Errorf("HTTP error: %s", resp.Status())
	}

	log.Debugf("Saved %s to %s", rawURL, path)
	return nil
}

func (c *courseClient) rotateProxy() {
	if c.proxySupplier == nil {
		return
	}
	if newProxy := c.proxySupplier.Get(); newProxy != "" {
		log.Infof("🔄 Switching to new proxy: %s", newProxy)
		c.httpClient.SetProxy(newProxy)
	}
}

// availablePath returns path, or the first "name (N).ext" variant that does not exist yet
func availablePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
