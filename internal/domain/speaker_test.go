package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBrowserName(t *testing.T) {
	tests := []struct {
		in   string
		want BrowserName
	}{
		{"IE", BrowserInternetExplorer},
		{"msie", BrowserInternetExplorer},
		{"Internet Explorer", BrowserInternetExplorer},
		{"InternetExplorer", BrowserInternetExplorer},
		{"  Chrome ", BrowserChrome},
		{"firefox", BrowserFirefox},
		{"test", BrowserUnknown},
		{"", BrowserUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBrowserName(tt.in))
		})
	}
}

func TestNewWebBrowser(t *testing.T) {
	b := NewWebBrowser("IE", 6)
	assert.True(t, b.IsInternetExplorer())
	assert.Equal(t, 6, b.MajorVersion)

	assert.False(t, NewWebBrowser("test", 1).IsInternetExplorer())
}

func TestEmailDomain(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"tom@aol.com", "aol.com"},
		{"weird@name@hotmail.com", "hotmail.com"},
		{"no-at-sign", "no-at-sign"},
		{"trailing@", ""},
	}
	for _, tt := range tests {
		s := &Speaker{Email: tt.email}
		assert.Equal(t, tt.want, s.EmailDomain(), tt.email)
	}
}

func TestFullName(t *testing.T) {
	s := &Speaker{FirstName: " Ada ", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", s.FullName())
}

func TestApprovedSessions(t *testing.T) {
	s := &Speaker{Sessions: []Session{
		{Title: "a", Approved: true},
		{Title: "b"},
		{Title: "c", Approved: true},
	}}
	got := s.ApprovedSessions()
	if assert.Len(t, got, 2) {
		assert.Equal(t, "a", got[0].Title)
		assert.Equal(t, "c", got[1].Title)
	}
}

func TestSpeaker_NormalizedEmail(t *testing.T) {
	s := &Speaker{Email: "  Tom@AOL.com\n"}
	assert.Equal(t, "tom@aol.com", s.NormalizedEmail())
}
