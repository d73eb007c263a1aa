package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageTitle(t *testing.T) {
	cases := []struct {
		body     string
		expected string
	}{
		{body: `{"response": {}}`, expected: ""},
		{body: "", expected: ""},
		{body: "<html><body>no title</body></html>", expected: ""},
		{body: "  <html><title> Hello </title></html>", expected: "Hello"},
		{body: "<!DOCTYPE html><html><head><title>Just a\n\n   moment...</title></head></html>", expected: "Just a moment..."},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, PageTitle([]byte(test.body)), test.body)
	}
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "a b c", CleanText("\t a \u0000 b\n\nc  "))
}
