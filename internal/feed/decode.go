package feed

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	domainerrors "github.com/central-university-dev/go-linkchecker/internal/domain/errors"
	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
)

// decodeFeed разбирает JSON-фид Blogger (alt=json) потоково, не строя
// полное дерево документа. Нужны только feed.entry[].
func decodeFeed(data []byte) ([]models.Post, error) {
	var (
		posts []models.Post
		found bool
	)

	d := jx.DecodeBytes(data)

	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "feed" || d.Next() != jx.Object {
			return d.Skip()
		}

		return d.Obj(func(d *jx.Decoder, key string) error {
			if key != "entry" || d.Next() != jx.Array {
				return d.Skip()
			}

			found = true

			return d.Arr(func(d *jx.Decoder) error {
				post, err := decodeEntry(d)
				if err != nil {
					return errors.Wrapf(err, "entry %d", len(posts))
				}

				posts = append(posts, post)

				return nil
			})
		})
	})
	if err != nil {
		return nil, &domainerrors.ErrInvalidFeed{Reason: err.Error()}
	}

	if !found {
		return nil, &domainerrors.ErrInvalidFeed{Reason: "отсутствует feed.entry"}
	}

	if posts == nil {
		posts = []models.Post{}
	}

	return posts, nil
}

func decodeEntry(d *jx.Decoder) (models.Post, error) {
	var (
		post    models.Post
		summary string
		content *string
	)

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			id, err := decodeText(d)
			post.ID = postID(id)

			return err
		case "title":
			title, err := decodeText(d)
			post.Title = title

			return err
		case "content":
			text, err := decodeText(d)
			content = &text

			return err
		case "summary":
			text, err := decodeText(d)
			summary = text

			return err
		case "published":
			published, err := decodeText(d)
			post.Date = publishedDate(published)

			return err
		case "link":
			href, err := decodeAlternateLink(d)
			post.URL = href

			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return models.Post{}, err
	}

	if content != nil {
		post.Content = *content
	} else {
		post.Content = summary
	}

	return post, nil
}

// decodeText читает поле вида {"$t": "..."}.
func decodeText(d *jx.Decoder) (string, error) {
	if d.Next() != jx.Object {
		return "", d.Skip()
	}

	var text string

	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "$t" || d.Next() != jx.String {
			return d.Skip()
		}

		s, err := d.Str()
		text = s

		return err
	})

	return text, err
}

func decodeAlternateLink(d *jx.Decoder) (string, error) {
	if d.Next() != jx.Array {
		return "", d.Skip()
	}

	var alternate string

	err := d.Arr(func(d *jx.Decoder) error {
		var rel, href string

		if err := d.Obj(func(d *jx.Decoder, key string) error {
			if d.Next() != jx.String {
				return d.Skip()
			}

			var err error

			switch key {
			case "rel":
				rel, err = d.Str()
			case "href":
				href, err = d.Str()
			default:
				err = d.Skip()
			}

			return err
		}); err != nil {
			return err
		}

		if rel == "alternate" && alternate == "" {
			alternate = href
		}

		return nil
	})

	return alternate, err
}

func postID(id string) string {
	if _, after, ok := strings.Cut(id, ".post-"); ok {
		return after
	}

	return id
}

func publishedDate(published string) string {
	if len(published) < 10 {
		return published
	}

	return published[:10]
}
