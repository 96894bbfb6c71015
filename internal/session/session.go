package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	domainerrors "github.com/central-university-dev/go-linkchecker/internal/domain/errors"
	"github.com/central-university-dev/go-linkchecker/internal/domain/models"
	"github.com/central-university-dev/go-linkchecker/internal/scheduler"
	"github.com/central-university-dev/go-linkchecker/internal/store"
)

type FeedFetcher interface {
	FetchPosts(ctx context.Context, blogURL string) ([]models.Post, error)
}

type LinkExtractor interface {
	Extract(posts []models.Post) []*models.Link
}

type Checker interface {
	Health(ctx context.Context) bool
	CheckOne(ctx context.Context, link *models.Link) *models.Link
}

type BatchRunner interface {
	RunBatches(ctx context.Context, links []*models.Link, observer scheduler.ProgressObserver) error
}

// Session владеет состоянием одной проверки блога. Верхнеуровневые операции
// не пересекаются: пока одна выполняется, вызов другой ничего не меняет.
type Session struct {
	feed      FeedFetcher
	extractor LinkExtractor
	checker   Checker
	runner    BatchRunner
	results   *store.ResultStore
	logger    *slog.Logger
	pageSize  int

	inProgress atomic.Bool

	mu        sync.RWMutex
	mode      models.Mode
	selection store.TypeSelection
	filter    store.DisplayFilter
	page      int
	checked   int
	total     int
	observer  Observer
}

// NewSession собирает сессию. runner должен записывать результаты в тот же results.
func NewSession(
	feed FeedFetcher,
	extractor LinkExtractor,
	checker Checker,
	runner BatchRunner,
	results *store.ResultStore,
	pageSize int,
	logger *slog.Logger,
) *Session {
	if pageSize <= 0 {
		pageSize = store.DefaultPageSize
	}

	return &Session{
		feed:      feed,
		extractor: extractor,
		checker:   checker,
		runner:    runner,
		results:   results,
		logger:    logger,
		pageSize:  pageSize,
		mode:      models.ModeIdle,
		selection: store.AllTypesSelection(),
		filter:    store.AllFilter(),
		page:      1,
	}
}

func (s *Session) Subscribe(observer Observer) {
	s.mu.Lock()
	s.observer = observer
	s.mu.Unlock()
}

func (s *Session) Mode() models.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.mode
}

func (s *Session) InProgress() bool {
	return s.inProgress.Load()
}

// Analyze загружает публикации блога, извлекает ссылки и переводит сессию в режим analyzed.
func (s *Session) Analyze(ctx context.Context, blogURL string) models.Advisory {
	if !s.inProgress.CompareAndSwap(false, true) {
		return s.busy()
	}
	defer s.inProgress.Store(false)

	if mode := s.Mode(); mode != models.ModeIdle {
		err := &domainerrors.ErrInvalidState{Current: string(mode), Expected: string(models.ModeIdle)}
		return s.advise(models.LevelWarning, err.Error())
	}

	if !s.checker.Health(ctx) {
		return s.advise(models.LevelError, "Сервис проверки ссылок недоступен. Запустите его командой checker")
	}

	blogURL = strings.TrimSpace(blogURL)
	if blogURL == "" {
		return s.advise(models.LevelError, "Укажите корректный адрес блога")
	}

	posts, err := s.feed.FetchPosts(ctx, blogURL)
	if err != nil {
		s.logger.Error("Ошибка загрузки публикаций", "blog", blogURL, "error", err)
		return s.advise(models.LevelError, "Ошибка: "+err.Error())
	}

	if len(posts) == 0 {
		return s.advise(models.LevelWarning, "В указанном блоге не найдено публикаций")
	}

	links := s.extractor.Extract(posts)
	if len(links) == 0 {
		return s.advise(models.LevelWarning, "В публикациях не найдено ссылок")
	}

	s.results.Replace(links)

	s.mu.Lock()
	s.mode = models.ModeAnalyzed
	s.page = 1
	s.checked = 0
	s.total = 0
	s.mu.Unlock()

	s.logger.Info("Анализ блога завершён",
		"blog", blogURL,
		"posts", len(posts),
		"links", len(links),
	)

	return s.advise(models.LevelInfo, fmt.Sprintf("Найдено %d ссылок для проверки", len(links)))
}

// Breakdown число найденных ссылок по типам.
func (s *Session) Breakdown() map[models.MediaType]int {
	return s.results.Breakdown()
}

func (s *Session) ToggleType(t models.MediaType) store.TypeSelection {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection = s.selection.Toggle(t)

	return s.selection
}

func (s *Session) SetSelection(selection store.TypeSelection) {
	s.mu.Lock()
	s.selection = selection
	s.mu.Unlock()
}

func (s *Session) SelectedTypes() store.TypeSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selection
}

// StartChecking проверяет все ссылки выбранных типов.
func (s *Session) StartChecking(ctx context.Context) models.Advisory {
	if !s.inProgress.CompareAndSwap(false, true) {
		return s.busy()
	}
	defer s.inProgress.Store(false)

	if mode := s.Mode(); mode != models.ModeAnalyzed {
		err := &domainerrors.ErrInvalidState{Current: string(mode), Expected: string(models.ModeAnalyzed)}
		return s.advise(models.LevelWarning, err.Error())
	}

	selection := s.SelectedTypes()

	eligible := s.results.Filter(func(l *models.Link) bool {
		return selection.Includes(l.Type)
	})
	if len(eligible) == 0 {
		return s.advise(models.LevelWarning, "Нет ссылок для проверки с выбранными типами")
	}

	links := s.results.ResetPending(urlsOf(eligible))

	s.mu.Lock()
	s.mode = models.ModeChecking
	s.checked = 0
	s.total = len(links)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.mode = models.ModeAnalyzed
		s.mu.Unlock()
	}()

	s.advise(models.LevelInfo, fmt.Sprintf("Начинается проверка %d ссылок...", len(links)))

	if err := s.runner.RunBatches(ctx, links, progressRelay{session: s}); err != nil {
		s.logger.Warn("Проверка прервана", "error", err)
		return s.advise(models.LevelError, "Ошибка при проверке: "+err.Error())
	}

	broken := s.results.Counts(store.AllTypesSelection()).Error
	if broken > 0 {
		return s.advise(models.LevelWarning, fmt.Sprintf("Проверка завершена! Найдено %d нерабочих ссылок.", broken))
	}

	return s.advise(models.LevelSuccess, "Проверка завершена! Все ссылки работают.")
}

// Recheck повторно проверяет одну ссылку.
func (s *Session) Recheck(ctx context.Context, url string) models.Advisory {
	if !s.inProgress.CompareAndSwap(false, true) {
		return s.busy()
	}
	defer s.inProgress.Store(false)

	if _, ok := s.results.Get(url); !ok {
		return s.advise(models.LevelWarning, (&domainerrors.ErrLinkNotFound{URL: url}).Error())
	}

	reset := s.results.ResetPending([]string{url})
	if len(reset) == 0 {
		return s.advise(models.LevelWarning, (&domainerrors.ErrLinkNotFound{URL: url}).Error())
	}

	result := s.checker.CheckOne(ctx, reset[0])
	if result == nil {
		result = reset[0]
		result.Status = models.StatusError
		result.Method = models.MethodFailed
		result.Error = "Check failed"
	}

	s.results.Apply(result)

	if result.Status == models.StatusSuccess {
		return s.advise(models.LevelSuccess, "Ссылка успешно перепроверена")
	}

	return s.advise(models.LevelWarning, "Ссылка по-прежнему не работает")
}

// RefreshBroken повторно проверяет все ссылки со статусом error.
func (s *Session) RefreshBroken(ctx context.Context) models.Advisory {
	if !s.inProgress.CompareAndSwap(false, true) {
		return s.busy()
	}
	defer s.inProgress.Store(false)

	urls := s.BrokenURLs()
	if len(urls) == 0 {
		return s.advise(models.LevelInfo, "Нет нерабочих ссылок для повторной проверки")
	}

	links := s.results.ResetPending(urls)

	s.mu.Lock()
	s.checked = 0
	s.total = len(links)
	s.mu.Unlock()

	s.advise(models.LevelInfo, fmt.Sprintf("Повторная проверка %d нерабочих ссылок...", len(links)))

	if err := s.runner.RunBatches(ctx, links, progressRelay{session: s}); err != nil {
		s.logger.Warn("Повторная проверка прервана", "error", err)
		return s.advise(models.LevelError, "Ошибка при проверке: "+err.Error())
	}

	stillBroken := 0

	for _, u := range urls {
		if link, ok := s.results.Get(u); ok && link.Status == models.StatusError {
			stillBroken++
		}
	}

	fixed := len(urls) - stillBroken
	if fixed > 0 {
		return s.advise(models.LevelSuccess,
			fmt.Sprintf("Исправлено %d ссылок, %d всё ещё не работают", fixed, stillBroken))
	}

	return s.advise(models.LevelWarning, "Ни одна ссылка не была исправлена")
}

// BrokenURLs адреса всех ссылок со статусом error в порядке хранения.
func (s *Session) BrokenURLs() []string {
	return urlsOf(s.results.Filter(func(l *models.Link) bool {
		return l.Status == models.StatusError
	}))
}

// Clear удаляет все результаты. Во время проверки ничего не делает.
func (s *Session) Clear() models.Advisory {
	if !s.inProgress.CompareAndSwap(false, true) {
		return s.busy()
	}
	defer s.inProgress.Store(false)

	s.results.Clear()

	s.mu.Lock()
	s.mode = models.ModeIdle
	s.filter = store.AllFilter()
	s.page = 1
	s.checked = 0
	s.total = 0
	s.mu.Unlock()

	return s.advise(models.LevelInfo, "Результаты очищены")
}

// RestartAnalysis возвращает сессию к вводу адреса блога и сбрасывает выбор типов.
func (s *Session) RestartAnalysis() models.Advisory {
	if !s.inProgress.CompareAndSwap(false, true) {
		return s.busy()
	}
	defer s.inProgress.Store(false)

	s.mu.Lock()
	s.mode = models.ModeIdle
	s.selection = store.AllTypesSelection()
	s.mu.Unlock()

	return s.advise(models.LevelInfo, "Можно начать новый анализ")
}

func (s *Session) SetDisplayFilter(filter store.DisplayFilter) {
	s.mu.Lock()
	s.filter = filter
	s.page = 1
	s.mu.Unlock()
}

func (s *Session) DisplayFilter() store.DisplayFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filter
}

func (s *Session) NextPage() store.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.currentPageLocked()
	if p.HasNext() {
		s.page = p.Number + 1
		p = s.currentPageLocked()
	}

	return p
}

func (s *Session) PrevPage() store.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.currentPageLocked()
	if p.HasPrev() {
		s.page = p.Number - 1
		p = s.currentPageLocked()
	}

	return p
}

// CurrentPage страница видимых записей с учётом выбора типов и фильтра.
func (s *Session) CurrentPage() store.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.currentPageLocked()
}

func (s *Session) currentPageLocked() store.Page {
	visible := store.Visible(s.results.All(), s.selection, s.filter)
	return store.Paginate(visible, s.page, s.pageSize)
}

func (s *Session) Counts() models.Counts {
	return s.results.Counts(store.AllTypesSelection())
}

// Progress доля проверенных ссылок в текущем прогоне.
func (s *Session) Progress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.Progress(s.checked, s.total)
}

func (s *Session) busy() models.Advisory {
	return s.advise(models.LevelWarning, (&domainerrors.ErrCheckInProgress{}).Error())
}

func (s *Session) advise(level models.AdvisoryLevel, text string) models.Advisory {
	advisory := models.Advisory{Level: level, Text: text}
	s.emit(Event{Kind: EventAdvisory, Advisory: advisory})

	return advisory
}

func (s *Session) emit(event Event) {
	s.mu.RLock()
	observer := s.observer
	s.mu.RUnlock()

	if observer != nil {
		observer.OnEvent(event)
	}
}

func urlsOf(links []*models.Link) []string {
	urls := make([]string, len(links))
	for i, l := range links {
		urls[i] = l.URL
	}

	return urls
}
