package share

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/privacy"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		want      Options
		wantError int
	}{
		{
			name:  "empty uses defaults",
			query: "",
			want:  Defaults(),
		},
		{
			name:  "all parameters",
			query: "privacy=full&photo=false&experience=0&attachments=true&version=abc",
			want: Options{
				Privacy:         privacy.LevelFull,
				ShowPhoto:       false,
				ShowExperience:  false,
				ShowAttachments: true,
				VersionID:       "abc",
			},
		},
		{
			name:  "leading question mark",
			query: "?privacy=Personal",
			want: Options{
				Privacy:        privacy.LevelPersonal,
				ShowPhoto:      true,
				ShowExperience: true,
			},
		},
		{
			name:  "empty value counts as absent",
			query: "photo=&privacy=",
			want:  Defaults(),
		},
		{
			name:      "invalid values fall back",
			query:     "privacy=secret&photo=maybe&experience=false",
			wantError: 2,
			want: Options{
				Privacy:        privacy.LevelNone,
				ShowPhoto:      true,
				ShowExperience: false,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseQuery(tc.query)
			assert.Equal(t, tc.want, got)
			if tc.wantError == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Len(t, multierr.Errors(err), tc.wantError)
		})
	}
}

func TestParseMalformedQuery(t *testing.T) {
	got, err := ParseQuery("privacy=%zz")
	require.Error(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestEncodeOmitsDefaults(t *testing.T) {
	assert.Empty(t, Defaults().Encode())
	assert.Empty(t, Defaults().String())

	opts := Defaults()
	opts.Privacy = privacy.LevelFull
	opts.ShowAttachments = true
	values := opts.Encode()

	assert.Equal(t, url.Values{
		ParamPrivacy:     []string{"full"},
		ParamAttachments: []string{"true"},
	}, values)
}

func TestEncodeParseRoundTrip(t *testing.T) {
	levels := []privacy.Level{privacy.LevelNone, privacy.LevelPersonal, privacy.LevelFull}
	flags := []bool{false, true}

	for _, level := range levels {
		for _, photo := range flags {
			for _, experience := range flags {
				for _, attachments := range flags {
					opts := Options{
						Privacy:         level,
						ShowPhoto:       photo,
						ShowExperience:  experience,
						ShowAttachments: attachments,
						VersionID:       "v-1",
					}
					got, err := ParseQuery(opts.String())
					require.NoError(t, err)
					assert.Equal(t, opts, got)
				}
			}
		}
	}
}
