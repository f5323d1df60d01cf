package notion

import (
	"strings"
	"time"
	"unicode/utf16"
)

const (
	// MaxBlockChars stays under the API's 2000 character rich_text limit.
	// The API counts UTF-16 code units, so a rune outside the BMP counts
	// twice.
	MaxBlockChars = 1990

	// MaxChildrenPerRequest is the API limit for one append call.
	MaxChildrenPerRequest = 100
)

// AppendOptions controls the metadata written after the saved text.
type AppendOptions struct {
	SourceURL        string
	SavedAt          time.Time
	IncludeSourceURL bool
	IncludeDateTime  bool
}

type richText struct {
	Type string `json:"type"`
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
}

type paragraph struct {
	RichText []richText `json:"rich_text"`
}

type block struct {
	Object    string    `json:"object"`
	Type      string    `json:"type"`
	Paragraph paragraph `json:"paragraph"`
}

func textItem(content string) richText {
	var rt richText
	rt.Type = "text"
	rt.Text.Content = content
	return rt
}

func paragraphBlock(content string) block {
	p := paragraph{RichText: []richText{}}
	if content != "" {
		p.RichText = append(p.RichText, textItem(content))
	}
	return block{Object: "block", Type: "paragraph", Paragraph: p}
}

// TextLen is the length of s in UTF-16 code units.
func TextLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Len(r)
	}
	return n
}

func utf16Len(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1 // invalid runes are sent as U+FFFD
}

// SplitText cuts text into chunks of at most max UTF-16 code units without
// splitting a rune. Concatenating the chunks gives back text.
func SplitText(text string, max int) []string {
	if text == "" {
		return nil
	}
	var chunks []string
	start, units := 0, 0
	for i, r := range text {
		w := utf16Len(r)
		if units+w > max && i > start {
			chunks = append(chunks, text[start:i])
			start, units = i, 0
		}
		units += w
	}
	return append(chunks, text[start:])
}

// metadataLine renders the optional date and source line, or "".
func metadataLine(opts AppendOptions) string {
	var parts []string
	if opts.IncludeDateTime && !opts.SavedAt.IsZero() {
		parts = append(parts, "🕒 "+opts.SavedAt.Format("2006-01-02 15:04"))
	}
	if opts.IncludeSourceURL && opts.SourceURL != "" {
		parts = append(parts, "🔗 "+opts.SourceURL)
	}
	return strings.Join(parts, " · ")
}

// buildChildren turns the saved text into paragraph blocks, followed by the
// metadata paragraph when enabled and an empty separator paragraph.
func buildChildren(text string, opts AppendOptions) []block {
	chunks := SplitText(text, MaxBlockChars)
	children := make([]block, 0, len(chunks)+2)
	for _, chunk := range chunks {
		children = append(children, paragraphBlock(chunk))
	}
	if meta := metadataLine(opts); meta != "" {
		children = append(children, paragraphBlock(meta))
	}
	children = append(children, paragraphBlock(""))
	return children
}

func batches(children []block, size int) [][]block {
	var out [][]block
	for start := 0; start < len(children); start += size {
		out = append(out, children[start:min(start+size, len(children))])
	}
	return out
}
