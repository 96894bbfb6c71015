package common

import (
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/idna"

	"github.com/central-university-dev/go-linkchecker/internal/domain/errors"
	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
)

type tagSource struct {
	selector string
	attr     string
}

type LinkExtractor struct {
	analyzer *LinkAnalyzer
	urlRegex *regexp.Regexp
	tags     []tagSource
}

func NewLinkExtractor(analyzer *LinkAnalyzer) *LinkExtractor {
	return &LinkExtractor{
		analyzer: analyzer,
		urlRegex: regexp.MustCompile(
			`https?://(www\.)?[-a-zA-Z0-9@:%._\+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_\+.~#?&//=]*)`,
		),
		tags: []tagSource{
			{selector: "a[href]", attr: "href"},
			{selector: "img[src]", attr: "src"},
			{selector: "iframe[src]", attr: "src"},
		},
	}
}

// Extract собирает уникальные ссылки из публикаций в порядке обнаружения.
// Повторная ссылка сохраняет источник первой публикации.
func (e *LinkExtractor) Extract(posts []models.Post) []*models.Link {
	links := make([]*models.Link, 0)
	seen := make(map[string]struct{})

	for _, post := range posts {
		for _, raw := range e.candidates(post.Content) {
			normalized, err := NormalizeURL(raw)
			if err != nil {
				continue
			}

			if _, exists := seen[normalized]; exists {
				continue
			}

			seen[normalized] = struct{}{}

			links = append(links, models.NewPendingLink(
				normalized,
				e.analyzer.AnalyzeLink(normalized),
				post.Title,
				post.URL,
			))
		}
	}

	return links
}

func (e *LinkExtractor) candidates(content string) []string {
	urls := e.urlRegex.FindAllString(content, -1)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return urls
	}

	for _, tag := range e.tags {
		doc.Find(tag.selector).Each(func(_ int, s *goquery.Selection) {
			value, exists := s.Attr(tag.attr)
			if !exists {
				return
			}

			if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
				urls = append(urls, value)
			}
		})
	}

	return urls
}

// NormalizeURL приводит URL к абсолютной канонической форме:
// схема и хост в нижнем регистре, порт по умолчанию отброшен, пустой путь заменён на "/".
func NormalizeURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", &errors.ErrInvalidURL{URL: raw}
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", &errors.ErrInvalidURL{URL: raw}
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", &errors.ErrInvalidURL{URL: raw}
	}

	if !isASCII(host) {
		host, err = idna.Lookup.ToASCII(host)
		if err != nil {
			return "", &errors.ErrInvalidURL{URL: raw}
		}
	}

	port := parsed.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}

	if port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	parsed.Scheme = scheme
	parsed.Host = host

	if parsed.Opaque == "" {
		parsed = parsed.ResolveReference(&url.URL{})
	}

	if parsed.Path == "" && parsed.Opaque == "" {
		parsed.Path = "/"
	}

	return parsed.String(), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}

	return true
}
