package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowListed(t *testing.T) {
	assert.True(t, AllowListed("PostmanRuntime/7.36.0", DefaultAllowAgents))
	assert.True(t, AllowListed("curl/8.4.0", DefaultAllowAgents))
	assert.True(t, AllowListed("python-requests/2.31", DefaultAllowAgents))
	assert.False(t, AllowListed("Mozilla/5.0 (X11; Linux x86_64)", DefaultAllowAgents))
	assert.False(t, AllowListed("", DefaultAllowAgents))
}

func TestIsBot(t *testing.T) {
	tests := []struct {
		ua   string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"Googlebot/2.1", true},
		{"Mozilla/5.0 HeadlessChrome/120.0", true},
		{"Scrapy/2.11 (+https://scrapy.org)", true},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0)", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsBot(tt.ua), tt.ua)
	}
}

func TestIsShielded(t *testing.T) {
	tests := []struct {
		method, path, query string
		want                bool
	}{
		{"GET", "/users", "", false},
		{"GET", "/users/42", "fields=name", false},
		{"GET", "/users/../../etc/passwd", "", true},
		{"GET", "/users", "q=%3Cscript%3Ealert(1)%3C/script%3E", true},
		{"GET", "/users", "id=1%20UNION%20SELECT%20password", true},
		{"TRACE", "/users", "", true},
		{"TRACK", "/users", "", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsShielded(tt.method, tt.path, tt.query), tt.method+" "+tt.path+"?"+tt.query)
	}
}
