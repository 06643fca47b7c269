package reddit

import (
	"math"
	"strings"
)

// DeletedAuthor is substituted when a listing item carries no author.
const DeletedAuthor = "[deleted]"

// Post is one listing item in the shape narration needs.
type Post struct {
	ID          string
	Title       string
	Author      string
	Score       int
	Upvotes     int
	Downvotes   int
	NumComments int
	Subreddit   string
	URL         string
	Thumbnail   string
}

// Summary is the display record published to the UI.
type Summary struct {
	Title     string
	Thumbnail string
}

// Summary returns the display record for the post.
func (p Post) Summary() Summary {
	return Summary{Title: p.Title, Thumbnail: p.Thumbnail}
}

// Summaries converts posts to display records, preserving order.
func Summaries(posts []Post) []Summary {
	if len(posts) == 0 {
		return nil
	}
	out := make([]Summary, len(posts))
	for i, p := range posts {
		out[i] = p.Summary()
	}
	return out
}

// Listing mirrors the subset of the listing envelope we read. Items are
// decoded loosely so a missing or oddly typed field never fails the batch.
type Listing struct {
	Data struct {
		Children []struct {
			Data map[string]any `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Posts converts the listing into posts in response order.
func (l Listing) Posts() []Post {
	posts := make([]Post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		posts = append(posts, postFromFields(child.Data))
	}
	return posts
}

func postFromFields(data map[string]any) Post {
	author, ok := data["author"].(string)
	if !ok {
		author = DeletedAuthor
	}
	return Post{
		ID:          stringField(data, "id"),
		Title:       stringField(data, "title"),
		Author:      author,
		Score:       intField(data, "score"),
		Upvotes:     intField(data, "ups"),
		Downvotes:   intField(data, "downs"),
		NumComments: intField(data, "num_comments"),
		Subreddit:   stringField(data, "subreddit"),
		URL:         stringField(data, "url"),
		Thumbnail:   strings.TrimSpace(stringField(data, "thumbnail")),
	}
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// intField accepts integral JSON numbers only; anything else reads as zero.
func intField(data map[string]any, key string) int {
	f, ok := data[key].(float64)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
