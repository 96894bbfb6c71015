package session_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-linkchecker/internal/common"
	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
	"github.com/central-university-dev/go-linkchecker/internal/scheduler"
	"github.com/central-university-dev/go-linkchecker/internal/session"
	"github.com/central-university-dev/go-linkchecker/internal/store"
)

const blogURL = "https://blog.example"

type mockFeed struct {
	mock.Mock
}

func (m *mockFeed) FetchPosts(ctx context.Context, blogURL string) ([]models.Post, error) {
	args := m.Called(ctx, blogURL)

	posts, _ := args.Get(0).([]models.Post)

	return posts, args.Error(1)
}

// fakeChecker отвечает по заранее заданной карте статусов; неизвестные URL успешны.
type fakeChecker struct {
	online  atomic.Bool
	calls   atomic.Int32
	mu      sync.Mutex
	broken  map[string]bool
	block   chan struct{}
	entered chan struct{}
}

func newFakeChecker() *fakeChecker {
	c := &fakeChecker{broken: map[string]bool{}}
	c.online.Store(true)

	return c
}

func (c *fakeChecker) Health(context.Context) bool {
	return c.online.Load()
}

func (c *fakeChecker) setBroken(url string, broken bool) {
	c.mu.Lock()
	c.broken[url] = broken
	c.mu.Unlock()
}

func (c *fakeChecker) CheckOne(_ context.Context, link *models.Link) *models.Link {
	c.calls.Add(1)

	if c.entered != nil {
		select {
		case c.entered <- struct{}{}:
		default:
		}
	}

	if c.block != nil {
		<-c.block
	}

	c.mu.Lock()
	broken := c.broken[link.URL]
	c.mu.Unlock()

	result := link.Clone()
	code := 200
	result.Status = models.StatusSuccess
	result.Method = "server-HEAD"

	if broken {
		code = 404
		result.Status = models.StatusError
		result.Error = "Not Found"
	}

	result.StatusCode = &code

	return result
}

type eventLog struct {
	mu     sync.Mutex
	events []session.Event
}

func (l *eventLog) OnEvent(e session.Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) kinds(kind session.EventKind) []session.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []session.Event

	for _, e := range l.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}

	return out
}

type fixture struct {
	feed    *mockFeed
	checker *fakeChecker
	results *store.ResultStore
	session *session.Session
	events  *eventLog
}

func newFixture(t *testing.T, pageSize int) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		feed:    new(mockFeed),
		checker: newFakeChecker(),
		results: store.NewResultStore(),
		events:  &eventLog{},
	}

	runner := scheduler.NewBatchScheduler(f.checker, f.results, 5, 0, logger)
	extractor := common.NewLinkExtractor(common.NewLinkAnalyzer())

	f.session = session.NewSession(f.feed, extractor, f.checker, runner, f.results, pageSize, logger)
	f.session.Subscribe(f.events)

	return f
}

func postsWithLinks(urls ...string) []models.Post {
	var b strings.Builder
	for _, u := range urls {
		fmt.Fprintf(&b, `<a href="%s">link</a> `, u)
	}

	return []models.Post{{ID: "1", Title: "Post", URL: blogURL + "/p1.html", Content: b.String(), Date: "2024-01-01"}}
}

func (f *fixture) analyze(t *testing.T, urls ...string) {
	t.Helper()

	f.feed.On("FetchPosts", mock.Anything, blogURL).Return(postsWithLinks(urls...), nil).Once()

	adv := f.session.Analyze(context.Background(), blogURL)
	require.Equal(t, models.LevelInfo, adv.Level, adv.Text)
	require.Equal(t, models.ModeAnalyzed, f.session.Mode())
}

func TestSession_Analyze_Offline(t *testing.T) {
	f := newFixture(t, 50)
	f.checker.online.Store(false)

	adv := f.session.Analyze(context.Background(), blogURL)

	assert.Equal(t, models.LevelError, adv.Level)
	assert.Equal(t, models.ModeIdle, f.session.Mode())
	f.feed.AssertNotCalled(t, "FetchPosts", mock.Anything, mock.Anything)
}

func TestSession_Analyze_InputErrors(t *testing.T) {
	f := newFixture(t, 50)

	adv := f.session.Analyze(context.Background(), "   ")
	assert.Equal(t, models.LevelError, adv.Level)

	f.feed.On("FetchPosts", mock.Anything, "https://empty.example").Return([]models.Post{}, nil).Once()
	adv = f.session.Analyze(context.Background(), "https://empty.example")
	assert.Equal(t, models.LevelWarning, adv.Level)

	f.feed.On("FetchPosts", mock.Anything, "https://nolinks.example").
		Return([]models.Post{{ID: "1", Title: "Plain", Content: "no links here"}}, nil).Once()
	adv = f.session.Analyze(context.Background(), "https://nolinks.example")
	assert.Equal(t, models.LevelWarning, adv.Level)

	f.feed.On("FetchPosts", mock.Anything, "https://down.example").Return(nil, assert.AnError).Once()
	adv = f.session.Analyze(context.Background(), "https://down.example")
	assert.Equal(t, models.LevelError, adv.Level)
	assert.Contains(t, adv.Text, assert.AnError.Error())

	assert.Equal(t, models.ModeIdle, f.session.Mode())
	assert.Empty(t, f.results.All())
	assert.Equal(t, int32(0), f.checker.calls.Load())
	f.feed.AssertExpectations(t)
}

func TestSession_Analyze_Success(t *testing.T) {
	f := newFixture(t, 50)

	f.analyze(t,
		"https://example.com/page",
		"https://cdn.example.com/a.png",
		"https://www.youtube.com/watch?v=abc",
	)

	assert.Equal(t, 3, f.session.Counts().Pending)

	breakdown := f.session.Breakdown()
	assert.Equal(t, 1, breakdown[models.Webpage])
	assert.Equal(t, 1, breakdown[models.Image])
	assert.Equal(t, 1, breakdown[models.YouTube])

	adv := f.session.Analyze(context.Background(), blogURL)
	assert.Equal(t, models.LevelWarning, adv.Level, "повторный анализ без сброса ничего не делает")

	advisories := f.events.kinds(session.EventAdvisory)
	require.NotEmpty(t, advisories)
	assert.Equal(t, models.LevelInfo, advisories[0].Advisory.Level)
}

func TestSession_StartChecking(t *testing.T) {
	f := newFixture(t, 50)

	urls := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		urls = append(urls, fmt.Sprintf("https://site%d.com/", i))
	}

	f.analyze(t, urls...)
	f.checker.setBroken(urls[2], true)

	adv := f.session.StartChecking(context.Background())

	assert.Equal(t, models.LevelWarning, adv.Level)
	assert.Contains(t, adv.Text, "1")
	assert.Equal(t, models.ModeAnalyzed, f.session.Mode())
	assert.Equal(t, models.Counts{Total: 7, Success: 6, Error: 1}, f.session.Counts())
	assert.InDelta(t, 1.0, f.session.Progress(), 0.0001)
	assert.Equal(t, int32(7), f.checker.calls.Load())

	progress := f.events.kinds(session.EventProgress)
	require.Len(t, progress, 2)
	assert.Equal(t, 5, progress[0].Checked)
	assert.Equal(t, 7, progress[1].Checked)
	assert.Equal(t, 7, progress[1].Total)

	batches := f.events.kinds(session.EventBatch)
	require.Len(t, batches, 2)
	assert.Equal(t, 1, batches[1].Counts.Error)

	assert.Equal(t, []string{urls[2]}, f.session.BrokenURLs())
}

func TestSession_StartChecking_AllWorking(t *testing.T) {
	f := newFixture(t, 50)
	f.analyze(t, "https://a.com/", "https://b.com/")

	adv := f.session.StartChecking(context.Background())

	assert.Equal(t, models.LevelSuccess, adv.Level)
	assert.Empty(t, f.session.BrokenURLs())
}

func TestSession_StartChecking_TypeSelection(t *testing.T) {
	f := newFixture(t, 50)
	f.analyze(t, "https://example.com/page", "https://cdn.example.com/a.png")

	f.session.ToggleType(models.Video)

	adv := f.session.StartChecking(context.Background())
	assert.Equal(t, models.LevelWarning, adv.Level)
	assert.Equal(t, int32(0), f.checker.calls.Load())

	f.session.ToggleType(models.Video)
	f.session.ToggleType(models.Image)

	f.session.StartChecking(context.Background())
	assert.Equal(t, int32(1), f.checker.calls.Load())

	page, _ := f.results.Get("https://example.com/page")
	assert.Equal(t, models.StatusPending, page.Status, "невыбранный тип не проверяется")
}

func TestSession_StartChecking_RequiresAnalysis(t *testing.T) {
	f := newFixture(t, 50)

	adv := f.session.StartChecking(context.Background())

	assert.Equal(t, models.LevelWarning, adv.Level)
	assert.Equal(t, int32(0), f.checker.calls.Load())
}

func TestSession_OverlappingOperationsAreNoOps(t *testing.T) {
	f := newFixture(t, 50)
	f.analyze(t, "https://a.com/", "https://b.com/")

	f.checker.block = make(chan struct{})
	f.checker.entered = make(chan struct{}, 1)

	done := make(chan models.Advisory)

	go func() {
		done <- f.session.StartChecking(context.Background())
	}()

	select {
	case <-f.checker.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("проверка не началась")
	}

	assert.True(t, f.session.InProgress())
	assert.Equal(t, models.ModeChecking, f.session.Mode())

	second := f.session.StartChecking(context.Background())
	assert.Equal(t, models.LevelWarning, second.Level)

	cleared := f.session.Clear()
	assert.Equal(t, models.LevelWarning, cleared.Level)
	assert.Len(t, f.results.All(), 2, "очистка во время проверки игнорируется")

	close(f.checker.block)

	first := <-done
	assert.Equal(t, models.LevelSuccess, first.Level)
	assert.Equal(t, int32(2), f.checker.calls.Load())
	assert.False(t, f.session.InProgress())
}

func TestSession_Recheck(t *testing.T) {
	f := newFixture(t, 50)
	f.analyze(t, "https://a.com/", "https://b.com/")
	f.checker.setBroken("https://b.com/", true)
	f.session.StartChecking(context.Background())

	require.Equal(t, 1, f.session.Counts().Error)

	f.checker.setBroken("https://b.com/", false)

	adv := f.session.Recheck(context.Background(), "https://b.com/")
	assert.Equal(t, models.LevelSuccess, adv.Level)
	assert.Equal(t, models.Counts{Total: 2, Success: 2}, f.session.Counts())

	before := f.session.Counts()
	f.session.Recheck(context.Background(), "https://a.com/")
	assert.Equal(t, before, f.session.Counts(), "повторный успех не меняет счётчики")

	adv = f.session.Recheck(context.Background(), "https://missing.com/")
	assert.Equal(t, models.LevelWarning, adv.Level)
}

func TestSession_RefreshBroken(t *testing.T) {
	f := newFixture(t, 50)
	f.analyze(t, "https://a.com/", "https://b.com/", "https://c.com/")
	f.checker.setBroken("https://a.com/", true)
	f.checker.setBroken("https://b.com/", true)
	f.session.StartChecking(context.Background())

	require.Equal(t, 2, f.session.Counts().Error)

	f.checker.setBroken("https://a.com/", false)
	before := f.checker.calls.Load()

	adv := f.session.RefreshBroken(context.Background())

	assert.Equal(t, models.LevelSuccess, adv.Level)
	assert.Contains(t, adv.Text, "1")
	assert.Equal(t, before+2, f.checker.calls.Load(), "перепроверяются только нерабочие ссылки")
	assert.Equal(t, []string{"https://b.com/"}, f.session.BrokenURLs())

	adv = f.session.RefreshBroken(context.Background())
	assert.Equal(t, models.LevelWarning, adv.Level)

	f.checker.setBroken("https://b.com/", false)
	f.session.RefreshBroken(context.Background())

	adv = f.session.RefreshBroken(context.Background())
	assert.Equal(t, models.LevelInfo, adv.Level)
}

func TestSession_ClearAndRestart(t *testing.T) {
	f := newFixture(t, 50)
	f.analyze(t, "https://a.com/")
	f.session.ToggleType(models.Image)
	f.session.SetDisplayFilter(store.StatusFilter(models.StatusError))

	adv := f.session.Clear()

	assert.Equal(t, models.LevelInfo, adv.Level)
	assert.Empty(t, f.results.All())
	assert.Equal(t, models.ModeIdle, f.session.Mode())
	assert.Equal(t, "all", f.session.DisplayFilter().String())
	assert.Equal(t, models.Counts{}, f.session.Counts())

	assert.False(t, f.session.SelectedTypes().IsAll())
	f.session.RestartAnalysis()
	assert.True(t, f.session.SelectedTypes().IsAll())
	assert.Equal(t, models.ModeIdle, f.session.Mode())
}

func TestSession_Pagination(t *testing.T) {
	f := newFixture(t, 5)

	urls := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		urls = append(urls, fmt.Sprintf("https://site%d.com/", i))
	}

	f.analyze(t, urls...)

	p := f.session.CurrentPage()
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 3, p.TotalPages)

	f.session.NextPage()
	p = f.session.NextPage()
	assert.Equal(t, 3, p.Number)
	require.Len(t, p.Items, 2)

	p = f.session.NextPage()
	assert.Equal(t, 3, p.Number, "за последней страницей ничего нет")

	f.session.ToggleType(models.Webpage)
	assert.Equal(t, 3, f.session.CurrentPage().Number, "смена выбора типов не сбрасывает страницу")

	f.session.SetDisplayFilter(store.StatusFilter(models.StatusPending))
	assert.Equal(t, 1, f.session.CurrentPage().Number, "смена фильтра сбрасывает страницу")

	p = f.session.PrevPage()
	assert.Equal(t, 1, p.Number)

	f.session.SetDisplayFilter(store.StatusFilter(models.StatusError))
	p = f.session.CurrentPage()
	assert.Empty(t, p.Items)
	assert.Equal(t, 0, p.TotalPages)
}
