package writer

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/fontscrape/internal/types"
)

func TestBytes(t *testing.T) {
	tests := []struct {
		name string
		rows []types.StyleRow
		want string
	}{
		{
			name: "header only",
			want: "font size, font weight\n",
		},
		{
			name: "two headings",
			rows: []types.StyleRow{
				{FontSize: "16px", FontWeight: "700"},
				{FontSize: "32px", FontWeight: "400"},
			},
			want: "font size, font weight\n\"16px\", \"700\"\n\"32px\", \"400\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(afero.NewMemMapFs())
			b.Append(tt.rows...)
			assert.Equal(t, tt.want, string(b.Bytes()))
			assert.Equal(t, len(tt.rows), b.Len())
		})
	}
}

func TestAppendKeepsOrder(t *testing.T) {
	b := New(afero.NewMemMapFs())
	b.Append(types.StyleRow{FontSize: "1px", FontWeight: "100"})
	b.Append(types.StyleRow{FontSize: "2px", FontWeight: "200"}, types.StyleRow{FontSize: "3px", FontWeight: "300"})

	want := "font size, font weight\n" +
		"\"1px\", \"100\"\n" +
		"\"2px\", \"200\"\n" +
		"\"3px\", \"300\"\n"
	assert.Equal(t, want, string(b.Bytes()))
}

func TestWriteFileOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()

	first := New(fs)
	first.Append(
		types.StyleRow{FontSize: "16px", FontWeight: "700"},
		types.StyleRow{FontSize: "32px", FontWeight: "400"},
	)
	require.NoError(t, first.WriteFile("out/talk-test.csv"))

	second := New(fs)
	second.Append(types.StyleRow{FontSize: "20px", FontWeight: "500"})
	require.NoError(t, second.WriteFile("out/talk-test.csv"))

	data, err := afero.ReadFile(fs, "out/talk-test.csv")
	require.NoError(t, err)
	assert.Equal(t, "font size, font weight\n\"20px\", \"500\"\n", string(data))
}

func TestWriteFileError(t *testing.T) {
	b := New(afero.NewReadOnlyFs(afero.NewMemMapFs()))
	assert.Error(t, b.WriteFile("talk-test.csv"))
}
