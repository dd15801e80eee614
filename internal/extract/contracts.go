package extract

import "context"

// Result is the output of text extraction for one stored file.
type Result struct {
	RawText   string
	PageCount int
}

// TextExtractor turns a stored file into raw text plus a page count. Pure over
// file bytes and the declared content type; no network or database access.
type TextExtractor interface {
	Extract(ctx context.Context, path, contentType string) (Result, error)
}
