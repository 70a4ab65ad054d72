package party

// Shared test harness for the party module: a canned-response fetcher plus
// fixture builders that mirror the markup the party sites actually serve.

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/fetcher"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fastPolicy keeps retry-path tests from sleeping.
func fastPolicy() fetcher.Policy {
	return fetcher.Policy{MaxAttempts: 2}
}

type stubResult struct {
	status int
	body   string
	err    error
}

// stubFetcher serves canned responses keyed by URL. Multiple results queued
// for the same URL are consumed in order; the last one repeats. URLs with no
// entry answer 404.
type stubFetcher struct {
	mu      sync.Mutex
	results map[string][]stubResult
	calls   []string
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{results: make(map[string][]stubResult)}
}

func (s *stubFetcher) page(url, html string) {
	s.enqueue(url, stubResult{status: http.StatusOK, body: html})
}

func (s *stubFetcher) status(url string, code int) {
	s.enqueue(url, stubResult{status: code, body: "error page"})
}

func (s *stubFetcher) fail(url string, err error) {
	s.enqueue(url, stubResult{err: err})
}

func (s *stubFetcher) enqueue(url string, r stubResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[url] = append(s.results[url], r)
}

func (s *stubFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url := req.URLString()

	s.mu.Lock()
	s.calls = append(s.calls, url)
	queue := s.results[url]
	var r stubResult
	switch len(queue) {
	case 0:
		r = stubResult{status: http.StatusNotFound, body: "not found"}
	case 1:
		r = queue[0]
	default:
		r = queue[0]
		s.results[url] = queue[1:]
	}
	s.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	return &types.Response{
		StatusCode:  r.status,
		Headers:     make(http.Header),
		Body:        []byte(r.body),
		Request:     req,
		ContentType: "text/html",
		FinalURL:    url,
	}, nil
}

func (s *stubFetcher) Close() error { return nil }
func (s *stubFetcher) Type() string { return "stub" }

func (s *stubFetcher) callCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == url {
			n++
		}
	}
	return n
}

// --- fixtures ---

// creatorPage renders a landing page. A negative totalPosts omits the
// pagination summary.
func creatorPage(name string, totalPosts int) string {
	summary := ""
	if totalPosts >= 0 {
		summary = fmt.Sprintf("<small>Showing 1 - 50 of %d</small>", totalPosts)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html><body>
<div class="user-header">
  <img class="fancy-image__image" src="//img.kemono.su/banners/patreon/123">
  <img class="fancy-image__image" src="//img.kemono.su/icons/patreon/123">
  <h1><span itemprop="name">%s</span></h1>
</div>
<main><section><div>%s</div></section></main>
</body></html>`, name, summary)
}

// listingPage renders one listing page whose entries link to the given post
// hrefs. An empty slice still renders the container.
func listingPage(hrefs ...string) string {
	var entries strings.Builder
	for _, href := range hrefs {
		fmt.Fprintf(&entries, `<article class="post-card"><a href="%s"><header>post</header></a></article>`, href)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html><body><main>
<div class="card-list__items">%s</div>
</main></body></html>`, entries.String())
}

// postFixture configures the postPage renderer.
type postFixture struct {
	title       string
	published   string
	description []string // child paragraphs of the content container
	files       []fileRef
	attachments []fileRef
	comments    []commentRef
}

type fileRef struct {
	href     string
	download string
}

type commentRef struct {
	author    string
	body      string
	timestamp string
	// dropFooter renders the comment without its footer section.
	dropFooter bool
}

func postPage(f postFixture) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><body><main>\n")

	fmt.Fprintf(&b, `<h1 class="post__title"><span>%s</span><span>(patreon)</span></h1>`+"\n", f.title)

	if f.published != "" {
		fmt.Fprintf(&b, `<div class="post__published"><div class="timestamp"></div>
%s
</div>`+"\n", f.published)
	}

	if len(f.description) > 0 {
		b.WriteString(`<div class="post__content">`)
		for _, p := range f.description {
			fmt.Fprintf(&b, "<p>%s</p>", p)
		}
		b.WriteString("</div>\n")
	}

	if len(f.files) > 0 {
		b.WriteString(`<div class="post__files">`)
		for _, fr := range f.files {
			fmt.Fprintf(&b, `<div class="post__thumbnail"><a href="%s" download="%s">file</a></div>`, fr.href, fr.download)
		}
		b.WriteString("</div>\n")
	}

	if len(f.attachments) > 0 {
		b.WriteString(`<ul class="post__attachments">`)
		for _, fr := range f.attachments {
			fmt.Fprintf(&b, `<li><a href="%s" download="%s">attachment</a></li>`, fr.href, fr.download)
		}
		b.WriteString("</ul>\n")
	}

	for _, c := range f.comments {
		b.WriteString(`<article class="comment">`)
		fmt.Fprintf(&b, `<header class="comment__header"><a href="#">%s</a></header>`, c.author)
		fmt.Fprintf(&b, `<section class="comment__body"><p>%s</p></section>`, c.body)
		if !c.dropFooter {
			fmt.Fprintf(&b, `<footer class="comment__footer"><time>%s</time></footer>`, c.timestamp)
		}
		b.WriteString("</article>\n")
	}

	b.WriteString("</main></body></html>")
	return b.String()
}
