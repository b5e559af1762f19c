package syntax

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLookup(name string) string {
	return map[string]string{
		"?":    "1",
		"$":    "4242",
		"!":    "777",
		"HOME": "/home/jsh",
		"A_1":  "x",
	}[name]
}

func ExampleWord_Expand() {
	tokens, _ := Tokenize(`"$HOME/bin" '$HOME' \$HOME ${HOME}s $?`)
	for _, tok := range tokens[:len(tokens)-1] {
		fmt.Println(tok.Word.Expand(testLookup))
	}

	// Output: /home/jsh/bin
	// $HOME
	// $HOME
	// /home/jshs
	// 1
}

func TestWordExpand(t *testing.T) {
	cases := map[string]struct {
		line string
		want string
	}{
		"status":            {"$?", "1"},
		"pid":               {"$$", "4242"},
		"last-background":   {"$!", "777"},
		"name":              {"$HOME", "/home/jsh"},
		"braced":            {"${HOME}", "/home/jsh"},
		"unset":             {"$NOPE", ""},
		"name-with-digits":  {"$A_1-y", "x-y"},
		"adjacent":          {"$?$$", "14242"},
		"lone-dollar":       {"$", "$"},
		"dollar-space":      {`"$ x"`, "$ x"},
		"unclosed-brace":    {"${HOME", "${HOME"},
		"bad-brace-name":    {"${1x}", "${1x}"},
		"digit-not-name":    {"$1", "$1"},
		"single-quoted":     {"'$HOME'", "$HOME"},
		"escaped-dollar":    {`\$HOME`, "$HOME"},
		"escaped-in-double": {`"\$HOME"`, "$HOME"},
		"double-quoted":     {`"<$HOME>"`, "</home/jsh>"},
		"mixed":             {`a"$?"'$?'$?`, "a1$?1"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			tokens, err := Tokenize(tc.line)
			require.NoError(t, err)
			require.Len(t, tokens, 2)
			assert.Equal(t, tc.want, tokens[0].Word.Expand(testLookup))
		})
	}
}

func TestIsName(t *testing.T) {
	assert.True(t, IsName("PATH"))
	assert.True(t, IsName("_x1"))
	assert.False(t, IsName(""))
	assert.False(t, IsName("1x"))
	assert.False(t, IsName("A-B"))
}
