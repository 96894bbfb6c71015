package common

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
)

type extensionRule struct {
	re        *regexp.Regexp
	mediaType models.MediaType
}

type LinkAnalyzer struct {
	extensionRules []extensionRule
	youtubeHosts   []string
	vimeoHosts     []string
	imageHosts     []string
}

func NewLinkAnalyzer() *LinkAnalyzer {
	return &LinkAnalyzer{
		extensionRules: []extensionRule{
			{regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|svg|bmp|ico|tiff|avif)$`), models.Image},
			{regexp.MustCompile(`(?i)\.(mp4|avi|mov|webm|mkv|flv|wmv|mpg|mpeg|m4v|3gp)$`), models.Video},
			{regexp.MustCompile(`(?i)\.(mp3|wav|flac|aac|ogg|m4a|wma|opus)$`), models.Audio},
			{regexp.MustCompile(`(?i)\.(pdf|doc|docx|xls|xlsx|ppt|pptx|txt|rtf|odt|ods|odp)$`), models.Document},
		},
		youtubeHosts: []string{"youtube.com", "youtu.be"},
		vimeoHosts:   []string{"vimeo.com"},
		imageHosts:   []string{"googleusercontent.com", "bp.blogspot.com"},
	}
}

// AnalyzeLink определяет тип медиа по URL без обращения к сети.
// Хосты видеоплатформ проверяются раньше расширений: превью YouTube
// вида /vi/ID/0.jpg остаются ссылками на видео.
func (a *LinkAnalyzer) AnalyzeLink(rawURL string) models.MediaType {
	scheme, host, path := splitURL(rawURL)

	if hostContains(host, a.youtubeHosts) {
		return models.YouTube
	}

	if hostContains(host, a.vimeoHosts) {
		return models.Vimeo
	}

	for _, rule := range a.extensionRules {
		if rule.re.MatchString(path) {
			return rule.mediaType
		}
	}

	if hostWithin(host, a.imageHosts) {
		return models.Image
	}

	if scheme == "http" || scheme == "https" {
		return models.Webpage
	}

	return models.Unknown
}

func splitURL(rawURL string) (scheme, host, path string) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err == nil && parsed.Scheme != "" {
		return strings.ToLower(parsed.Scheme), strings.ToLower(parsed.Hostname()), parsed.Path
	}

	raw := strings.TrimSpace(rawURL)
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}

	if i := strings.Index(raw, "://"); i >= 0 {
		scheme = strings.ToLower(raw[:i])
		rest := raw[i+3:]

		if j := strings.Index(rest, "/"); j >= 0 {
			return scheme, strings.ToLower(rest[:j]), rest[j:]
		}

		return scheme, strings.ToLower(rest), ""
	}

	return "", "", raw
}

func hostContains(host string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(host, marker) {
			return true
		}
	}

	return false
}

func hostWithin(host string, domains []string) bool {
	for _, domain := range domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}

	return false
}
