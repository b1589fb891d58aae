package protocol

// Post is the JSON document the blog serves and the page fetches. Clients
// take its shape on trust; nothing is validated.
type Post struct {
	Title       string `json:"title"`
	Timestamp   string `json:"timestamp,omitempty"`
	Main        string `json:"main"`
	ContentInfo string `json:"content_info,omitempty"`
}
