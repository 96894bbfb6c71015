package models

type MediaType string

const (
	AllTypes MediaType = "all"

	Image    MediaType = "image"
	Video    MediaType = "video"
	Audio    MediaType = "audio"
	Webpage  MediaType = "webpage"
	Document MediaType = "document"
	YouTube  MediaType = "youtube"
	Vimeo    MediaType = "vimeo"
	Unknown  MediaType = "unknown"
)

// MediaTypes перечисляет все категории классификатора в порядке отображения.
var MediaTypes = []MediaType{Image, Video, Audio, Webpage, Document, YouTube, Vimeo, Unknown}

func ParseMediaType(s string) (MediaType, bool) {
	t := MediaType(s)
	if t == AllTypes {
		return t, true
	}

	for _, known := range MediaTypes {
		if known == t {
			return t, true
		}
	}

	return "", false
}

type LinkStatus string

const (
	StatusPending LinkStatus = "pending"
	StatusSuccess LinkStatus = "success"
	StatusError   LinkStatus = "error"
)

func ParseLinkStatus(s string) (LinkStatus, bool) {
	switch LinkStatus(s) {
	case StatusPending, StatusSuccess, StatusError:
		return LinkStatus(s), true
	default:
		return "", false
	}
}

// Метки способа проверки ссылки.
const (
	MethodPrefix  = "server-"
	MethodOffline = "server-offline"
	MethodError   = "server-error"
	MethodFailed  = "check-failed"
)

type Link struct {
	URL          string
	Type         MediaType
	Status       LinkStatus
	StatusCode   *int
	ResponseTime *int64
	Method       string
	Error        string
	Note         string
	Source       string
	SourceURL    string
}

func NewPendingLink(url string, linkType MediaType, source, sourceURL string) *Link {
	return &Link{
		URL:       url,
		Type:      linkType,
		Status:    StatusPending,
		Source:    source,
		SourceURL: sourceURL,
	}
}

func (l *Link) Clone() *Link {
	if l == nil {
		return nil
	}

	c := *l

	if l.StatusCode != nil {
		code := *l.StatusCode
		c.StatusCode = &code
	}

	if l.ResponseTime != nil {
		rt := *l.ResponseTime
		c.ResponseTime = &rt
	}

	return &c
}

// ResetPending возвращает ссылку в очередь на повторную проверку.
func (l *Link) ResetPending() {
	l.Status = StatusPending
	l.StatusCode = nil
	l.ResponseTime = nil
	l.Error = ""
}
