package tracing

// Span attribute keys.
const (
	AttrDocPath     = "doc.path"
	AttrDocLines    = "doc.lines"
	AttrDocLanguage = "doc.language"
	AttrRuleTable   = "highlight.rules"
	AttrThemeName   = "highlight.theme"

	// Incremental edit attributes
	AttrEditFirstLine = "edit.first_line"
	AttrEditInserted  = "edit.inserted"
	AttrEditRemoved   = "edit.removed"
	AttrRescanned     = "edit.rescanned"
	AttrConverged     = "edit.converged"

	// Scan cache attributes
	AttrCacheHits   = "cache.hits"
	AttrCacheMisses = "cache.misses"
	AttrCacheItems  = "cache.items"

	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanDocumentOpen    = "document.open"
	SpanDocumentReplace = "document.replace"
	SpanHighlightAll    = "highlight.all"
	SpanThemeChange     = "highlight.theme_change"
)

// Event names for span events.
const (
	EventBlockCommentOpened = "block_comment.opened"
	EventStateConverged     = "state.converged"
)
