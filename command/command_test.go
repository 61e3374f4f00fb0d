package command

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClassifier() *Classifier {
	return NewClassifier(DefaultHandlers()...)
}

func TestClassify_Plain_Text_Passes_Through(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier()

	res := c.Classify("good morning everyone")

	req.Equal(Plain{Text: "good morning everyone"}, res)
}

func TestClassify_Movie_Valid_URL(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier()

	res := c.Classify("@movie http://x.com/v.mp4")

	req.Equal(MovieShare{URL: "http://x.com/v.mp4"}, res)
}

func TestClassify_Movie_URL_Shapes(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier()

	// Scheme, port, and path are all optional
	for _, url := range []string{
		"example.com",
		"https://example.com:8080",
		"media.campus.edu/vod/intro.mp4",
	} {
		res := c.Classify("@movie " + url)
		req.Equal(MovieShare{URL: url}, res, url)
	}
}

func TestClassify_Movie_Invalid_URL(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier()

	res := c.Classify("@movie not a url!!")

	req.IsType(Invalid{}, res)
	req.Contains(res.(Invalid).Reason, "usage: @movie")
}

func TestClassify_Movie_Missing_Argument(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier()

	res := c.Classify("@movie")

	req.IsType(Invalid{}, res)
}

func TestClassify_Unknown_Token_Lists_Known_Commands(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier()

	res := c.Classify("@teleport home")

	req.IsType(Unknown{}, res)
	unknown := res.(Unknown)
	req.Equal("@teleport", unknown.Token)
	req.Contains(unknown.Known, "@movie")
	req.Contains(unknown.Known, "@assistant")
}

func TestClassify_Token_Is_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier()

	res := c.Classify("@Movie http://x.com/v.mp4")

	req.Equal(MovieShare{URL: "http://x.com/v.mp4"}, res)
}

func TestClassify_Chinese_Aliases(t *testing.T) {
	req := require.New(t)
	c := newTestClassifier()

	req.Equal(MovieShare{URL: "http://x.com/v.mp4"}, c.Classify("@电影 http://x.com/v.mp4"))
	req.IsType(AssistantQA{}, c.Classify("@川小农 你好"))
}
