package badge

// Truncation limits shared by layout estimation and drawing. The two must
// agree or the estimated width diverges from what ends up on screen.
const (
	TitleMaxLen      = 20
	FullTitleMaxLen  = 24
	AuthorMaxLen     = 15
	FullAuthorMaxLen = 20
	SummaryMaxLen    = 155
)

// Truncate shortens s to at most max runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
