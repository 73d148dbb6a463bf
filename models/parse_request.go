package models

// ParseRequest carries one already fetched document into the parser.
type ParseRequest struct {
	URL  string
	HTML string
}
