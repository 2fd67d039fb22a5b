package upstream

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxSummaryLen bounds the page summary carried into error messages
const maxSummaryLen = 120

// looksLikeHTML reports whether a response body is an HTML page rather than JSON
func looksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	trimmed := bytes.TrimSpace(body)
	return bytes.HasPrefix(trimmed, []byte("<"))
}

// summarizeHTML extracts a short description of an HTML page.
// 게이트웨이/점검 페이지가 JSON 대신 내려올 때 에러 메시지에 사용
func summarizeHTML(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	text := strings.TrimSpace(doc.Find("title").First().Text())
	if text == "" {
		text = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if text == "" {
		text = strings.TrimSpace(doc.Find("body").Text())
	}

	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > maxSummaryLen {
		text = string(r[:maxSummaryLen]) + "..."
	}
	return text
}
