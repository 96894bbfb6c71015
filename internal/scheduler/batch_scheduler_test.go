package scheduler_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
	"github.com/central-university-dev/go-linkchecker/internal/scheduler"
	"github.com/central-university-dev/go-linkchecker/internal/scheduler/mocks"
	"github.com/central-university-dev/go-linkchecker/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pendingLinks(n int) []*models.Link {
	links := make([]*models.Link, 0, n)
	for i := 0; i < n; i++ {
		links = append(links, models.NewPendingLink(fmt.Sprintf("https://site%d.com/", i), models.Webpage, "Post", ""))
	}

	return links
}

// waveChecker фиксирует, какие проверки выполнялись одновременно.
type waveChecker struct {
	mu       sync.Mutex
	inFlight int
	maxSeen  int
	started  int
	waves    []int
	fail     map[string]bool
	panics   map[string]bool
}

func (c *waveChecker) CheckOne(_ context.Context, link *models.Link) *models.Link {
	c.mu.Lock()
	if c.inFlight == 0 {
		c.waves = append(c.waves, 0)
	}

	c.inFlight++
	c.started++
	c.waves[len(c.waves)-1]++

	if c.inFlight > c.maxSeen {
		c.maxSeen = c.inFlight
	}
	c.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()

	if c.panics[link.URL] {
		panic("unexpected")
	}

	result := link.Clone()
	result.Status = models.StatusSuccess
	result.Method = "server-HEAD"

	if c.fail[link.URL] {
		result.Status = models.StatusError
		result.Error = "404"
	}

	return result
}

type recordingObserver struct {
	progress []int
	batches  []int
	last     models.Counts
	total    int
}

func (o *recordingObserver) OnProgress(checked, total int) {
	o.progress = append(o.progress, checked)
	o.total = total
}

func (o *recordingObserver) OnBatchComplete(batchNum int, counts models.Counts) {
	o.batches = append(o.batches, batchNum)
	o.last = counts
}

func TestBatchScheduler_Waves(t *testing.T) {
	links := pendingLinks(12)
	results := store.NewResultStore()
	results.Replace(links)

	checker := &waveChecker{}
	observer := &recordingObserver{}

	s := scheduler.NewBatchScheduler(checker, results, 5, time.Millisecond, testLogger())
	require.NoError(t, s.RunBatches(context.Background(), links, observer))

	assert.Equal(t, []int{5, 5, 2}, checker.waves)
	assert.LessOrEqual(t, checker.maxSeen, 5)
	assert.Equal(t, 12, checker.started)

	assert.Equal(t, []int{5, 10, 12}, observer.progress)
	assert.Equal(t, []int{1, 2, 3}, observer.batches)
	assert.Equal(t, 12, observer.total)
	assert.Equal(t, models.Counts{Total: 12, Success: 12}, observer.last)

	assert.Equal(t, 12, results.Counts(store.AllTypesSelection()).Success)
}

func TestBatchScheduler_PartialFailureAndPanic(t *testing.T) {
	links := pendingLinks(7)
	results := store.NewResultStore()
	results.Replace(links)

	checker := &waveChecker{
		fail:   map[string]bool{links[1].URL: true},
		panics: map[string]bool{links[3].URL: true},
	}
	observer := &recordingObserver{}

	s := scheduler.NewBatchScheduler(checker, results, 3, 0, testLogger())
	require.NoError(t, s.RunBatches(context.Background(), links, observer))

	assert.Equal(t, []int{3, 6, 7}, observer.progress)
	assert.Equal(t, models.Counts{Total: 7, Success: 5, Error: 2}, observer.last)

	failed, ok := results.Get(links[3].URL)
	require.True(t, ok)
	assert.Equal(t, models.StatusError, failed.Status)
	assert.Equal(t, "Check failed", failed.Error)
	assert.Equal(t, models.MethodFailed, failed.Method)
	assert.Nil(t, failed.StatusCode)

	broken, _ := results.Get(links[1].URL)
	assert.Equal(t, models.StatusError, broken.Status)

	for _, l := range results.All() {
		assert.NotEqual(t, models.StatusPending, l.Status)
	}
}

func TestBatchScheduler_EmptyAndZeroBatchSize(t *testing.T) {
	checker := new(mocks.LinkChecker)
	observer := new(mocks.ProgressObserver)
	results := store.NewResultStore()

	s := scheduler.NewBatchScheduler(checker, results, 0, time.Millisecond, testLogger())
	require.NoError(t, s.RunBatches(context.Background(), pendingLinks(3), observer))

	s = scheduler.NewBatchScheduler(checker, results, 5, time.Millisecond, testLogger())
	require.NoError(t, s.RunBatches(context.Background(), nil, observer))

	checker.AssertNotCalled(t, "CheckOne", mock.Anything, mock.Anything)
	observer.AssertNotCalled(t, "OnProgress", mock.Anything, mock.Anything)
	observer.AssertNotCalled(t, "OnBatchComplete", mock.Anything, mock.Anything)
}

func TestBatchScheduler_ResultsAppliedByURL(t *testing.T) {
	links := pendingLinks(2)
	results := store.NewResultStore()
	results.Replace(links)

	checker := new(mocks.LinkChecker)
	checker.On("CheckOne", mock.Anything, mock.MatchedBy(func(l *models.Link) bool {
		return l.URL == links[0].URL
	})).Return(func() *models.Link {
		r := links[0].Clone()
		r.Status = models.StatusError
		return r
	}())
	checker.On("CheckOne", mock.Anything, mock.MatchedBy(func(l *models.Link) bool {
		return l.URL == links[1].URL
	})).Return(nil)

	observer := new(mocks.ProgressObserver)
	observer.On("OnProgress", 2, 2).Once()
	observer.On("OnBatchComplete", 1, models.Counts{Total: 2, Error: 2}).Once()

	s := scheduler.NewBatchScheduler(checker, results, 5, 0, testLogger())
	require.NoError(t, s.RunBatches(context.Background(), links, observer))

	checker.AssertExpectations(t)
	observer.AssertExpectations(t)

	nilResult, _ := results.Get(links[1].URL)
	assert.Equal(t, "Check failed", nilResult.Error)
}

func TestBatchScheduler_CancelBetweenBatches(t *testing.T) {
	links := pendingLinks(10)
	results := store.NewResultStore()
	results.Replace(links)

	ctx, cancel := context.WithCancel(context.Background())
	checker := &waveChecker{}

	observer := &cancelObserver{cancel: cancel}

	s := scheduler.NewBatchScheduler(checker, results, 5, time.Hour, testLogger())
	err := s.RunBatches(ctx, links, observer)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, checker.started, "следующая пачка не запускается после отмены")
	assert.Equal(t, 5, results.Counts(store.AllTypesSelection()).Success)
}

type cancelObserver struct {
	cancel context.CancelFunc
}

func (o *cancelObserver) OnProgress(int, int) {}

func (o *cancelObserver) OnBatchComplete(int, models.Counts) {
	o.cancel()
}
