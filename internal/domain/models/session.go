package models

type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeAnalyzed Mode = "analyzed"
	ModeChecking Mode = "checking"
)

type AdvisoryLevel string

const (
	LevelInfo    AdvisoryLevel = "info"
	LevelSuccess AdvisoryLevel = "success"
	LevelWarning AdvisoryLevel = "warning"
	LevelError   AdvisoryLevel = "error"
)

// Advisory однострочное сообщение пользователю по итогам операции сессии.
type Advisory struct {
	Level AdvisoryLevel
	Text  string
}

type Counts struct {
	Total   int
	Success int
	Error   int
	Pending int
}

func CountLinks(links []*Link) Counts {
	c := Counts{Total: len(links)}

	for _, link := range links {
		switch link.Status {
		case StatusSuccess:
			c.Success++
		case StatusError:
			c.Error++
		case StatusPending:
			c.Pending++
		}
	}

	return c
}

func Progress(current, total int) float64 {
	if total <= 0 {
		return 0
	}

	return float64(current) / float64(total)
}
