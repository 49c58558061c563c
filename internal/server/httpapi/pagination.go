package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ccaio-oliveira/test-alugamais/internal/server/models"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/services"
)

// pageJSON is the paginated list envelope: data plus navigation links and
// counters.
type pageJSON struct {
	Data  []todoJSON `json:"data"`
	Links linksJSON  `json:"links"`
	Meta  metaJSON   `json:"meta"`
}

type linksJSON struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

type metaJSON struct {
	CurrentPage int    `json:"current_page"`
	From        *int   `json:"from"`
	LastPage    int    `json:"last_page"`
	Path        string `json:"path"`
	PerPage     int    `json:"per_page"`
	To          *int   `json:"to"`
	Total       int64  `json:"total"`
}

// pageParams reads page/per_page from the query string; unparseable values
// fall back to defaults via clamping.
func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	return services.ClampPage(page, perPage)
}

func pageURL(path string, page int) string {
	return fmt.Sprintf("%s?page=%d", path, page)
}

// buildPage assembles the envelope for one page of todos.
func buildPage(path string, items []*models.Todo, total int64, page, perPage int) pageJSON {
	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}

	data := make([]todoJSON, 0, len(items))
	for _, t := range items {
		data = append(data, toTodoJSON(t))
	}

	var from, to *int
	if len(items) > 0 {
		f := (page-1)*perPage + 1
		t := f + len(items) - 1
		from, to = &f, &t
	}

	links := linksJSON{
		First: pageURL(path, 1),
		Last:  pageURL(path, lastPage),
	}
	if page > 1 {
		prev := pageURL(path, page-1)
		links.Prev = &prev
	}
	if page < lastPage {
		next := pageURL(path, page+1)
		links.Next = &next
	}

	return pageJSON{
		Data:  data,
		Links: links,
		Meta: metaJSON{
			CurrentPage: page,
			From:        from,
			LastPage:    lastPage,
			Path:        path,
			PerPage:     perPage,
			To:          to,
			Total:       total,
		},
	}
}
