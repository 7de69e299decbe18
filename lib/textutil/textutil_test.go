package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		input  string
		expect string
	}{
		{
			input:  "Beyond Smart Mill & Brew Coffee Maker",
			expect: "beyond_smart_mill_brew_coffee_maker",
		},
		{
			input:  "RC Cyclone Revolution Stunt Car - 2 Pack",
			expect: "rc_cyclone_revolution_stunt_car_2_pack",
		},
		{
			input:  "Café Press Espresso Machine",
			expect: "cafe_press_espresso_machine",
		},
		{
			input:  "Dyson DC17 Animal &amp; Total Clean",
			expect: "dyson_dc17_animal_total_clean",
		},
		{
			input:  "Sansa Shaker 1 GB MP3 Player, 2 of",
			expect: "sansa_shaker_1_gb_mp3_player",
		},
		{
			input:  "Speakers - Set of 2",
			expect: "speakers_set",
		},
		{
			input:  "  Leading &  trailing  ",
			expect: "leading_trailing",
		},
	}

	for _, test := range cases {
		require.Equal(t, test.expect, Tokenize(test.input), "input: %q", test.input)
	}
}

func TestTokenizeIdempotent(t *testing.T) {
	inputs := []string{
		"beyond_smart_mill_brew_coffee_maker",
		"rc_cyclone_revolution_stunt_car_2_pack",
		"speakers_set",
	}
	for _, in := range inputs {
		require.Equal(t, in, Tokenize(in))
	}
}

func TestTokenizeLengthCap(t *testing.T) {
	long := strings.Repeat("word ", 20)
	tok := Tokenize(long)
	require.LessOrEqual(t, len(tok), MaxTokenLength)
	// a truncated token ends on a whole word
	require.False(t, strings.HasSuffix(tok, "_"))
	require.True(t, strings.HasSuffix(tok, "word"))
}

func TestMatchName(t *testing.T) {
	require.True(t, MatchName("Last Wooter to Woot", []string{"blame", "lastwooter"}))
	require.True(t, MatchName("Blame him", []string{"blame", "lastwooter"}))
	require.False(t, MatchName("Order Pace", []string{"blame", "lastwooter"}))
}
