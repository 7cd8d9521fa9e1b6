package htmlclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{
			name: "drops comments and indentation",
			in:   "<html>\n  <!-- nav -->\n  <body>\n    <p>Hi   there</p>\n  </body>\n</html>\n",
			want: "<html><body><p>Hi there</p></body></html>",
		},
		{
			name: "keeps inline spacing",
			in:   "<p><b>a</b> <i>b</i></p>",
			want: "<p><b>a</b> <i>b</i></p>",
		},
		{
			name: "preserves pre and script bodies",
			in:   "<pre>  a\n  b</pre>\n<script>\n  var x = 1;  // keep\n</script>",
			want: "<pre>  a\n  b</pre><script>\n  var x = 1;  // keep\n</script>",
		},
		{
			name: "keeps conditional comments",
			in:   "<!--[if lt IE 9]><script src=\"x.js\"></script><![endif]-->",
			want: "<!--[if lt IE 9]><script src=\"x.js\"></script><![endif]-->",
		},
		{
			name: "leaves entities and attributes alone",
			in:   "<a href=\"/a?b=1&amp;c=2\" class='x'>&copy; 2024</a>",
			want: "<a href=\"/a?b=1&amp;c=2\" class='x'>&copy; 2024</a>",
		},
		{
			name: "doctype survives",
			in:   "<!DOCTYPE html>\n<html></html>",
			want: "<!DOCTYPE html><html></html>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Clean(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
