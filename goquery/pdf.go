package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/excerpt"
	"golang.org/x/net/html"
)

// PDF markers.
const (
	PDFContentType    = "application/pdf"
	PDFViewerClass    = "pdf-viewer"
	TextLayerSelector = ".textLayer"
)

// IsPDF reports whether doc is a PDF rendered by a viewer. It checks the
// content type, the viewer's body class, and the location's extension.
func IsPDF(doc excerpt.Document, root *html.Node) bool {
	if strings.EqualFold(mediaType(doc.ContentType()), PDFContentType) {
		return true
	}
	if root != nil && goquery.NewDocumentFromNode(root).Find("body").HasClass(PDFViewerClass) {
		return true
	}
	loc := strings.ToLower(doc.Location())
	return strings.HasSuffix(loc, ".pdf") || strings.Contains(loc, ".pdf?")
}

// TextLayers returns the PDF viewer's text layer elements below root.
func TextLayers(root *html.Node) []*html.Node {
	if root == nil {
		return nil
	}
	return goquery.NewDocumentFromNode(root).Find(TextLayerSelector).Nodes
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(mt)
}
