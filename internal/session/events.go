package session

import "github.com/central-university-dev/go-linkchecker/internal/domain/models"

type EventKind string

const (
	EventProgress EventKind = "progress"
	EventBatch    EventKind = "batch"
	EventAdvisory EventKind = "advisory"
)

// Event уведомление о ходе работы сессии. Заполнены только поля,
// относящиеся к Kind.
type Event struct {
	Kind     EventKind
	Checked  int
	Total    int
	Batch    int
	Counts   models.Counts
	Advisory models.Advisory
}

type Observer interface {
	OnEvent(event Event)
}

type ObserverFunc func(event Event)

func (f ObserverFunc) OnEvent(event Event) {
	f(event)
}

// progressRelay переводит обратные вызовы планировщика в события сессии.
type progressRelay struct {
	session *Session
}

func (r progressRelay) OnProgress(checked, total int) {
	r.session.mu.Lock()
	r.session.checked = checked
	r.session.total = total
	r.session.mu.Unlock()

	r.session.emit(Event{Kind: EventProgress, Checked: checked, Total: total})
}

func (r progressRelay) OnBatchComplete(batchNum int, counts models.Counts) {
	r.session.emit(Event{Kind: EventBatch, Batch: batchNum, Counts: counts})
}
