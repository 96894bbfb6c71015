package models

// Post публикация блога, из которой извлекаются ссылки.
type Post struct {
	ID      string
	Title   string
	URL     string
	Content string
	Date    string
}
