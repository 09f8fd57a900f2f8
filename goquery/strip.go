package goquery

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// BoilerplateSelector matches page chrome removed by StripBoilerplate.
const BoilerplateSelector = "script, style, nav, footer, header, aside, " +
	".sidebar, .advertisement, .ads, .navigation, .menu, .cookie-banner"

// StripBoilerplate removes every element matching BoilerplateSelector from
// the tree below root, in place. Callers pass a copy.
func StripBoilerplate(root *html.Node) {
	if root == nil {
		return
	}
	goquery.NewDocumentFromNode(root).Find(BoilerplateSelector).Remove()
}
