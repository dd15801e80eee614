package constants

// Supported upload content types. Anything else is rejected at upload time;
// the extractor checks again before dispatching.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// AllowedContentTypes maps the supported MIME types to on-disk extensions.
var AllowedContentTypes = map[string]string{
	ContentTypePDF:  ".pdf",
	ContentTypeDOCX: ".docx",
}

// IsSupportedContentType reports whether ct can be processed by the pipeline.
func IsSupportedContentType(ct string) bool {
	_, ok := AllowedContentTypes[ct]
	return ok
}
