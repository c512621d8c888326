package websearch

import (
	"strings"

	"golang.org/x/net/html"
)

// parseResults walks the result page DOM pairing result titles
// (a.result__a) with their snippets (.result__snippet) in document order.
func parseResults(htmlContent string) ([]Result, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	var results []Result
	var current *Result

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				if current != nil && current.Title != "" {
					results = append(results, *current)
				}
				current = &Result{Title: nodeText(n)}
			case hasClass(n, "result__snippet"):
				if current != nil && current.Body == "" {
					current.Body = nodeText(n)
				}
				return // Snippet text already collected, skip children
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if current != nil && current.Title != "" {
		results = append(results, *current)
	}
	return results, nil
}

// hasClass reports whether the node's class attribute contains the given class
func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// nodeText collects the text content of a node's subtree
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(strings.Join(strings.Fields(sb.String()), " "))
}
