package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
	"github.com/central-university-dev/go-linkchecker/internal/session"
	"github.com/central-university-dev/go-linkchecker/internal/store"
)

func TestReporter_Page(t *testing.T) {
	var buf bytes.Buffer

	r := &reporter{out: &buf}

	code := 404
	elapsed := int64(120)

	link := models.NewPendingLink("https://example.com/missing", models.Webpage, "Пост", "https://blog.example.com/p/1")
	link.Status = models.StatusError
	link.StatusCode = &code
	link.ResponseTime = &elapsed
	link.Method = "server-HEAD"
	link.Error = "HTTP 404"

	r.page(store.Paginate([]*models.Link{link}, 1, store.DefaultPageSize))

	out := buf.String()
	assert.Contains(t, out, "URL")
	assert.Contains(t, out, "https://example.com/missing")
	assert.Contains(t, out, "404")
	assert.Contains(t, out, "120ms")
	assert.Contains(t, out, "server-HEAD")
	assert.Contains(t, out, "Страница 1 из 1")
}

func TestReporter_PageEmpty(t *testing.T) {
	var buf bytes.Buffer

	r := &reporter{out: &buf}
	r.page(store.Paginate(nil, 1, store.DefaultPageSize))

	assert.Empty(t, buf.String())
}

func TestReporter_Breakdown(t *testing.T) {
	var buf bytes.Buffer

	r := &reporter{out: &buf}
	r.breakdown(map[models.MediaType]int{models.Image: 3, models.YouTube: 1})

	out := buf.String()
	assert.Contains(t, out, string(models.Image))
	assert.Contains(t, out, string(models.YouTube))
	assert.NotContains(t, out, string(models.Audio))
}

func TestReporter_Broken(t *testing.T) {
	var buf bytes.Buffer

	r := &reporter{out: &buf}
	r.broken([]string{"https://a.example/x", "https://b.example/y"})

	assert.Contains(t, buf.String(), "https://a.example/x\nhttps://b.example/y\n")

	buf.Reset()
	r.broken(nil)

	assert.Equal(t, "Неработающих ссылок нет\n", buf.String())
}

func TestReporter_OnEvent(t *testing.T) {
	var buf bytes.Buffer

	r := &reporter{out: &buf}
	r.OnEvent(session.Event{Kind: session.EventProgress, Checked: 5, Total: 10})
	r.OnEvent(session.Event{
		Kind:     session.EventAdvisory,
		Advisory: models.Advisory{Level: models.LevelWarning, Text: "Нет ссылок"},
	})

	out := buf.String()
	assert.Contains(t, out, "5/10 (50%)")
	assert.Contains(t, out, "[!] Нет ссылок")
}
