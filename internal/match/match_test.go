package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHost(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain", "https://youtube.com/watch", "youtube.com"},
		{"www stripped", "https://www.youtube.com/watch", "youtube.com"},
		{"subdomain kept", "https://old.reddit.com/r/golang", "old.reddit.com"},
		{"upper cased", "https://WWW.Example.COM/", "example.com"},
		{"with port", "http://localhost:8080/x", "localhost:8080"},
		{"malformed", "ht!tp://%%", ""},
		{"relative", "/just/a/path", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Host(tt.url))
		})
	}
}

func TestHostMatches_Reflexive(t *testing.T) {
	patterns := []string{"youtube.com", "reddit.com", "news.ycombinator.com"}
	for _, p := range patterns {
		assert.True(t, HostMatches(p, p), "match(%q, %q) should be reflexive", p, p)
		assert.True(t, HostMatches("sub."+p, p), "subdomain of %q should match", p)
	}
}

func TestHostMatches_WWWInsensitive(t *testing.T) {
	assert.True(t, HostMatches("youtube.com", "www.youtube.com"))
	assert.True(t, HostMatches(Host("https://www.youtube.com/"), "youtube.com"))
}

func TestHostMatches_NoFalsePositives(t *testing.T) {
	// "notyoutube.com" is not a subdomain of "youtube.com".
	assert.False(t, HostMatches("notyoutube.com", "youtube.com"))
	assert.False(t, HostMatches("youtube.com.evil.net", "youtube.com"))
	assert.False(t, HostMatches("", "youtube.com"))
	assert.False(t, HostMatches("youtube.com", ""))
}

func TestURLMatches(t *testing.T) {
	blocklist := []string{"youtube.com", "reddit.com"}

	assert.True(t, URLMatches("https://www.youtube.com/watch?v=x", blocklist))
	assert.True(t, URLMatches("https://old.reddit.com/", blocklist))
	assert.False(t, URLMatches("https://example.com/", blocklist))
	assert.False(t, URLMatches("not a url", blocklist))
	assert.False(t, URLMatches("https://youtube.com/", nil))
}

func TestURLMatches_PatternWhitespace(t *testing.T) {
	assert.True(t, URLMatches("https://youtube.com/", []string{" youtube.com "}))
	assert.True(t, URLMatches("https://youtube.com/", []string{"YouTube.com"}))
}
