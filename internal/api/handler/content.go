package handler

import (
	"net/http"

	"github.com/kiranshivaraju/podscribe/internal/api/response"
	"github.com/kiranshivaraju/podscribe/internal/catalog"
)

// ContentLister defines the interface the content handler depends on.
type ContentLister interface {
	ListAvailableContent() catalog.Snapshot
}

// NewContentHandler returns an http.HandlerFunc for GET /api/v1/content.
func NewContentHandler(lister ContentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, lister.ListAvailableContent())
	}
}
