package binding

import (
	"testing"

	"github.com/keepmind9/radarcord/pkg/radarcord"
	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "***"},
		{"short", "***"},
		{"1234567890", "***"},
		{"MTIzNDU2Nzg5MDEy.abcdef", "MTIz***cdef"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, maskSecret(tt.input))
	}
}

func TestTruncateTail(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		max    int
		expect string
	}{
		{name: "fits", input: "hello", max: 5, expect: "hello"},
		{name: "cut with ellipsis", input: "hello world", max: 8, expect: "hello..."},
		{name: "tiny limit", input: "hello", max: 2, expect: "he"},
		{name: "multibyte runes", input: "héllo wörld", max: 6, expect: "hél..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, truncateTail(tt.input, tt.max))
		})
	}
}

func TestRenderPlainText(t *testing.T) {
	msg := radarcord.Message{
		Content: "Stats update",
		Embeds: []radarcord.Embed{{
			Title:       "Title",
			Description: "Desc",
			Fields: []radarcord.EmbedField{
				{Name: "Status Code", Value: "200"},
				{Name: "Body", Value: "{}"},
			},
		}},
	}

	assert.Equal(t, "Stats update\n\nTitle\nDesc\nStatus Code: 200\nBody: {}", renderPlainText(msg))
	assert.Equal(t, "", renderPlainText(radarcord.Message{}))
	assert.Equal(t, "T", renderPlainText(radarcord.Message{Embeds: []radarcord.Embed{{Title: "T"}}}))
}
