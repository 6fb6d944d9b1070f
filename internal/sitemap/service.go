package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/techflow/techflow-backend/internal/posts"
	"github.com/techflow/techflow-backend/internal/store"
	"go.uber.org/zap"
)

const (
	cacheTTL      = 24 * time.Hour
	maxDynamicURL = 50
)

// URL is one sitemap entry with ko/en alternates
type URL struct {
	XMLName    xml.Name `xml:"url"`
	Loc        string   `xml:"loc"`
	LastMod    string   `xml:"lastmod"`
	ChangeFreq string   `xml:"changefreq"`
	Priority   string   `xml:"priority"`
	Alternates []Link   `xml:"xhtml:link"`
}

// Link is an xhtml alternate-language link
type Link struct {
	Rel      string `xml:"rel,attr"`
	HrefLang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

type urlSet struct {
	XMLName  xml.Name `xml:"urlset"`
	Xmlns    string   `xml:"xmlns,attr"`
	XmlnsXht string   `xml:"xmlns:xhtml,attr"`
	URLs     []URL    `xml:"url"`
}

type staticPage struct {
	path       string
	priority   string
	changefreq string
}

var staticPages = []staticPage{
	{"", "1.0", "weekly"},
	{"/about", "0.8", "monthly"},
	{"/services", "0.9", "monthly"},
	{"/news", "0.7", "weekly"},
	{"/contact", "0.8", "monthly"},
}

// Service renders the sitemap from the static route table plus the most
// recent published posts. Output is cached for a day.
type Service struct {
	posts   *posts.Service
	cache   *store.Cache
	baseURL string
	logger  *zap.SugaredLogger
}

func NewService(postsService *posts.Service, cache *store.Cache, baseURL string, logger *zap.SugaredLogger) *Service {
	return &Service{
		posts:   postsService,
		cache:   cache,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Render returns the sitemap XML document
func (s *Service) Render(ctx context.Context) ([]byte, error) {
	if s.cache != nil {
		var cached string
		if err := s.cache.Get(ctx, store.KeySitemap, &cached); err == nil {
			return []byte(cached), nil
		}
	}

	doc, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, store.KeySitemap, string(doc), cacheTTL); err != nil && s.logger != nil {
			s.logger.Warnw("Failed to cache sitemap", "error", err)
		}
	}

	return doc, nil
}

// Invalidate drops the cached document so the next render is fresh
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, store.KeySitemap)
}

func (s *Service) build(ctx context.Context) ([]byte, error) {
	today := time.Now().Format("2006-01-02")

	set := urlSet{
		Xmlns:    "http://www.sitemaps.org/schemas/sitemap/0.9",
		XmlnsXht: "http://www.w3.org/1999/xhtml",
	}

	for _, page := range staticPages {
		set.URLs = append(set.URLs, s.entry(page.path, today, page.changefreq, page.priority))
	}

	recent, err := s.posts.RecentPublished(ctx, maxDynamicURL)
	if err != nil {
		return nil, fmt.Errorf("load posts for sitemap: %w", err)
	}
	for _, post := range recent {
		path := "/news/" + post.ID
		entry := s.entry(path, post.UpdatedAt.Format("2006-01-02"), "monthly", "0.6")
		set.URLs = append(set.URLs, entry)
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}

	return append([]byte(xml.Header), body...), nil
}

func (s *Service) entry(path, lastmod, changefreq, priority string) URL {
	loc := s.baseURL + path
	return URL{
		Loc:        loc,
		LastMod:    lastmod,
		ChangeFreq: changefreq,
		Priority:   priority,
		Alternates: []Link{
			{Rel: "alternate", HrefLang: "ko", Href: loc + "?lang=ko"},
			{Rel: "alternate", HrefLang: "en", Href: loc + "?lang=en"},
		},
	}
}
