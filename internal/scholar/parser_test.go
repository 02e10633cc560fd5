package scholar

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseApproxNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
	}{
		{in: "1,234", want: 1234},
		{in: "1234", want: 1234},
		{in: "12 300", want: 12300},
		{in: "12 300", want: 12300},
		{in: "1.234", want: 1234},
		{in: "1.2k", want: 1200},
		{in: "1.2K", want: 1200},
		{in: "2k", want: 2000},
		{in: "3.4M", want: 3400000},
		{in: "1.1b", want: 1100000000},
		{in: "  7  ", want: 7},
		{in: "0", want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseApproxNumber(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseApproxNumberRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "many", "....", "-1.2k"} {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			t.Parallel()

			_, err := ParseApproxNumber(in)
			assert.Error(t, err)
		})
	}
}

func TestParseResultCountFromStatsNode(t *testing.T) {
	t.Parallel()

	html := []byte(`<html><body>
<div id="gs_ab_md"><div class="gs_ab_mdw">About 15,700 results (<b>0.07</b> sec)</div></div>
<div class="gs_r">...</div>
</body></html>`)

	got, err := ParseResultCount(html)
	require.NoError(t, err)
	assert.Equal(t, 15700, got)
}

func TestParseResultCountPageVariants(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		html string
		want int
	}{
		{
			name: "of about variant",
			html: `<div id="gs_ab_md"><div class="gs_ab_mdw">Page 2 of about 1,030 results</div></div>`,
			want: 1030,
		},
		{
			name: "bare results line",
			html: "<body>\n  912 results\n</body>",
			want: 912,
		},
		{
			name: "shorthand count",
			html: `<div id="gs_ab_md"><div class="gs_ab_mdw">About 1.2k results</div></div>`,
			want: 1200,
		},
		{
			name: "no matching articles",
			html: `<body>Your search did not match any articles.</body>`,
			want: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseResultCount([]byte(tc.html))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseResultCountBlockedPage(t *testing.T) {
	t.Parallel()

	cases := []string{
		`<html><body>Our systems have detected unusual traffic from your computer network.</body></html>`,
		`<html><body><div class="g-recaptcha" data-sitekey="x"></div></body></html>`,
	}

	for i, html := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			t.Parallel()

			_, err := ParseResultCount([]byte(html))
			assert.ErrorIs(t, err, ErrBlocked)
		})
	}
}

func TestParseResultCountMissingCount(t *testing.T) {
	t.Parallel()

	_, err := ParseResultCount([]byte(`<html><body><p>nothing useful here</p></body></html>`))
	assert.ErrorIs(t, err, ErrNoCount)
}
