package page

// Element ids the blog page template carries.
const (
	IDTitle       = "title"
	IDTimestamp   = "timestamp"
	IDSitemap     = "sitemap"
	IDMain        = "main"
	IDContactForm = "contact-form"
	IDContentInfo = "content-info"
)

// ElementIDs lists every id ResolveElements looks up.
var ElementIDs = []string{
	IDTitle,
	IDTimestamp,
	IDSitemap,
	IDMain,
	IDContactForm,
	IDContentInfo,
}

// Elements holds the page's named handles. It is resolved once and passed to
// whatever needs it.
type Elements struct {
	Title       *Node
	Timestamp   *Node
	Sitemap     *Node
	Main        *Node
	ContactForm *Node
	ContentInfo *Node
}

// ResolveElements looks up all handles in doc.
func ResolveElements(doc *Document) (*Elements, error) {
	nodes := make(map[string]*Node, len(ElementIDs))
	for _, id := range ElementIDs {
		n := doc.GetElementByID(id)
		if n == nil {
			return nil, &ElementNotFoundError{ID: id}
		}
		nodes[id] = n
	}

	return &Elements{
		Title:       nodes[IDTitle],
		Timestamp:   nodes[IDTimestamp],
		Sitemap:     nodes[IDSitemap],
		Main:        nodes[IDMain],
		ContactForm: nodes[IDContactForm],
		ContentInfo: nodes[IDContentInfo],
	}, nil
}
