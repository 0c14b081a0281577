package webscraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html>
<head>
<title>Lisbon Guide</title>
<meta name="author" content="Ana">
<meta name="description" content="What to do in Lisbon">
<meta property="og:site_name" content="Travel Notes">
<script>var tracking = true;</script>
</head>
<body>
<nav><a href="/home">Home</a></nav>
<main>
<h1>Alfama</h1>


<p>Ride <a href="/tram-28">tram 28</a> early.</p>
</main>
<footer>Copyright</footer>
</body>
</html>`

func TestRun(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	out, err := New(WithUserAgent("trip-planner-test")).Run(context.Background(), NewInput(srv.URL+"/lisbon"))
	require.NoError(t, err)
	assert.Equal(t, "trip-planner-test", ua)
	assert.Contains(t, out.Content, "# Alfama")
	assert.Contains(t, out.Content, "tram 28")
	assert.NotContains(t, out.Content, "Home")
	assert.NotContains(t, out.Content, "Copyright")
	assert.NotContains(t, out.Content, "tracking")
	assert.NotContains(t, out.Content, "\n\n\n")

	require.NotNil(t, out.Metadata)
	assert.Equal(t, "Lisbon Guide", out.Metadata.Title)
	assert.Equal(t, "Ana", out.Metadata.Author)
	assert.Equal(t, "What to do in Lisbon", out.Metadata.Description)
	assert.Equal(t, "Travel Notes", out.Metadata.SiteName)
}

func TestRunRejectsBadURL(t *testing.T) {
	tool := New()
	_, err := tool.Run(context.Background(), NewInput("not a url"))
	assert.Error(t, err)
	_, err = tool.Run(context.Background(), NewInput("ftp://example.com/file"))
	assert.Error(t, err)
}

func TestRunNon200(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	_, err := New().Run(context.Background(), NewInput(srv.URL))
	assert.Error(t, err)
}
