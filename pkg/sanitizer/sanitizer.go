// Package sanitizer neutralizes untrusted mail bodies before they are rendered.
//
// HTML input is re-serialized from tokens: only allowed tags and attributes
// survive, dangerous containers are dropped together with their content, and
// every other tag is unwrapped so that its text remains. The output is a fixed
// point: sanitizing it again yields the same bytes.
package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	xhtml "golang.org/x/net/html"
)

// SafeURL replaces href/src values that would execute script.
const SafeURL = "#"

var allowedTags = map[string]bool{
	"p": true, "br": true, "div": true, "span": true, "a": true,
	"strong": true, "b": true, "i": true, "em": true, "u": true,
	"ul": true, "ol": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "thead": true, "tbody": true, "tr": true, "td": true, "th": true,
	"img": true, "blockquote": true, "pre": true, "code": true, "hr": true,
}

var allowedAttrs = map[string]bool{
	"href": true, "src": true, "alt": true, "title": true, "class": true,
	"style": true, "width": true, "height": true, "target": true, "rel": true,
}

// Dropped with everything they contain.
var dangerousTags = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true, "embed": true,
	"form": true, "input": true, "button": true, "meta": true, "link": true, "base": true,
}

// The tokenizer reads the content of these as raw text even after a
// self-closing start tag, so that content must be skipped too.
var rawTextTags = map[string]bool{"script": true, "style": true, "iframe": true}

// Never have content, so they must not open a skip region.
var voidTags = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true, "meta": true,
	"link": true, "base": true, "embed": true,
}

// SanitizeHTML strips active content from an HTML fragment. It never fails:
// input the tokenizer cannot make sense of is treated as text and escaped.
func SanitizeHTML(input string) string {
	if input == "" {
		return ""
	}

	var out strings.Builder
	out.Grow(len(input))

	z := xhtml.NewTokenizer(strings.NewReader(input))

	// Name and nesting depth of the dangerous element being skipped.
	skipTag := ""
	skipDepth := 0

	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			// io.EOF or a read error; either way emit what we have.
			break
		}

		if skipTag != "" {
			name, _ := z.TagName()
			switch tt {
			case xhtml.StartTagToken:
				if string(name) == skipTag {
					skipDepth++
				}
			case xhtml.EndTagToken:
				if string(name) == skipTag {
					skipDepth--
					if skipDepth == 0 {
						skipTag = ""
					}
				}
			}
			continue
		}

		switch tt {
		case xhtml.TextToken:
			out.WriteString(html.EscapeString(string(z.Text())))

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if dangerousTags[tag] {
				if !voidTags[tag] && (tt == xhtml.StartTagToken || rawTextTags[tag]) {
					skipTag = tag
					skipDepth = 1
				}
				continue
			}
			if !allowedTags[tag] {
				continue
			}
			writeStartTag(&out, z, tag, hasAttr)

		case xhtml.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if allowedTags[tag] && !voidTags[tag] {
				out.WriteString("</" + tag + ">")
			}

		default:
			// Comments and doctypes are dropped.
		}
	}

	return out.String()
}

func writeStartTag(out *strings.Builder, z *xhtml.Tokenizer, tag string, hasAttr bool) {
	out.WriteString("<" + tag)

	seen := make(map[string]bool)
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		name := strings.ToLower(string(key))
		if seen[name] {
			continue
		}
		seen[name] = true

		if strings.HasPrefix(name, "on") || !allowedAttrs[name] {
			continue
		}
		// Anchors get a fixed target/rel below.
		if tag == "a" && (name == "target" || name == "rel") {
			continue
		}

		value := string(val)
		if (name == "href" || name == "src") && isScriptURL(value) {
			value = SafeURL
		}
		out.WriteString(" " + name + `="` + html.EscapeString(value) + `"`)
	}

	if tag == "a" {
		out.WriteString(` target="_blank" rel="noopener noreferrer"`)
	}
	out.WriteString(">")
}

// isScriptURL reports whether a URL uses the javascript: scheme. Browsers
// ignore leading whitespace and embedded tabs/newlines in URLs, so those are
// removed before comparing.
func isScriptURL(value string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, value)
	return strings.HasPrefix(strings.ToLower(cleaned), "javascript:")
}

var plainTextReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"\r\n", "<br />",
	"\n", "<br />",
)

// SanitizePlainText escapes the five HTML-reserved characters and turns line
// breaks into <br /> so plain text can be rendered as markup.
func SanitizePlainText(text string) string {
	if text == "" {
		return ""
	}
	return plainTextReplacer.Replace(text)
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	scriptPattern     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	stylePattern      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// HTMLToPlainText flattens markup into a single line of text.
func HTMLToPlainText(markup string) string {
	if markup == "" {
		return ""
	}
	text := stylePattern.ReplaceAllString(markup, "")
	text = scriptPattern.ReplaceAllString(text, "")
	text = tagPattern.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = html.UnescapeString(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Truncate shortens text to at most max runes, appending "..." when cut.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "..."
}
