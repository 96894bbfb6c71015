package feed

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-resty/resty/v2"

	"github.com/central-university-dev/go-linkchecker/internal/common/httputil"
	"github.com/central-university-dev/go-linkchecker/internal/config"
	domainerrors "github.com/central-university-dev/go-linkchecker/internal/domain/errors"
	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
)

type BloggerClient struct {
	client   *resty.Client
	maxPosts int
	logger   *slog.Logger
}

func NewBloggerClient(cfg *config.Config, logger *slog.Logger) *BloggerClient {
	client := httputil.CreateResilientHTTPClient(cfg, logger, "blogger", httputil.ClientOptions{
		Timeout:    cfg.FeedRequestTimeout,
		RetryCount: cfg.RetryCount,
	})

	return &BloggerClient{
		client:   client,
		maxPosts: cfg.MaxPosts,
		logger:   logger,
	}
}

// FetchPosts загружает до maxPosts последних публикаций блога.
func (c *BloggerClient) FetchPosts(ctx context.Context, blogURL string) ([]models.Post, error) {
	blogURL = strings.TrimSpace(blogURL)
	if blogURL == "" {
		return nil, &domainerrors.ErrMissingRequiredField{FieldName: "blogURL"}
	}

	parsed, err := url.Parse(blogURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &domainerrors.ErrInvalidURL{URL: blogURL}
	}

	feedURL := strings.TrimSuffix(blogURL, "/") + "/feeds/posts/default"

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"alt":         "json",
			"max-results": strconv.Itoa(c.maxPosts),
		}).
		Get(feedURL)
	if err != nil {
		return nil, &domainerrors.ErrFeedUnavailable{URL: feedURL, Cause: err}
	}

	if !resp.IsSuccess() {
		return nil, &domainerrors.ErrFeedUnavailable{
			URL:   feedURL,
			Cause: &domainerrors.HTTPError{StatusCode: resp.StatusCode()},
		}
	}

	posts, err := decodeFeed(resp.Body())
	if err != nil {
		return nil, errors.Wrap(err, "разбор фида Blogger")
	}

	c.logger.Info("Публикации блога загружены",
		"blog", blogURL,
		"posts", len(posts),
	)

	return posts, nil
}
