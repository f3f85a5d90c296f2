package presets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const profile = `fs: 44100
XO:
  sets:
    2-way:
      lo: xo.lo.pcm
    3-way:
      lo: xo3.lo.pcm
DRC:
  sets:
    none:
    sofa:
PEQ: {flat:0, bump1:3, bump2:-2}
`

func TestSetsStopsAtNextProperty(t *testing.T) {
	text := "XO:\n  sets:\n    2-way:\n    3-way:\nDRC:\n  sets:\n    none:\n"
	require.Equal(t, []string{"2-way", "3-way"}, Sets(text, "XO"))
	require.Equal(t, []string{"none"}, Sets(text, "DRC"))
}

func TestSetsKeepsGrandchildrenDeeperThanSets(t *testing.T) {
	// Lines deeper than the sets: line are all collected.
	require.Equal(t, []string{"2-way", "lo", "3-way", "lo"}, Sets(profile, "XO"))
	require.Equal(t, []string{"none", "sofa"}, Sets(profile, "DRC"))
}

func TestSetsMissingHeader(t *testing.T) {
	require.Empty(t, Sets(profile, "EQ"))
	require.NotNil(t, Sets("", "XO"))
}

func TestSetsHeaderToleratesSpaces(t *testing.T) {
	text := "  XO :\n    sets:\n      a:\n  DRC:\n"
	require.Equal(t, []string{"a"}, Sets(text, "XO"))
}

func TestSetsKeepsDuplicates(t *testing.T) {
	text := "XO:\n  sets:\n    a:\n    a:\n"
	require.Equal(t, []string{"a", "a"}, Sets(text, "XO"))
}

func TestSetsBlankLineEndsBlock(t *testing.T) {
	text := "XO:\n  sets:\n    a:\n\n    b:\n"
	require.Equal(t, []string{"a"}, Sets(text, "XO"))
}

func TestFlatInlineOptions(t *testing.T) {
	require.Equal(t, []string{"flat", "bump1", "bump2"}, Flat("PEQ: {flat:0, bump1:3, bump2:-2}", "PEQ"))
	require.Equal(t, []string{"flat", "bump1", "bump2"}, Flat(profile, "PEQ"))
}

func TestFlatMissingProperty(t *testing.T) {
	require.Empty(t, Flat(profile, "LOUD"))
}

func TestFlatContinuationLines(t *testing.T) {
	text := "PEQ:   {flat:0,\n    bump1:3,\n    bump2:-2}\nXO:\n"
	require.Equal(t, []string{"flat", "bump1", "bump2"}, Flat(text, "PEQ"))
}

func TestFlatIgnoresNestedBlocks(t *testing.T) {
	require.Empty(t, Flat("XO:\n  sets:\n    2-way:\n    3-way:\nDRC:\n", "XO"))
	require.Empty(t, Flat("PEQ:\n  flat: 0\n  bump: 3\n", "PEQ"))
}

func TestFlatUnclosedBraceReadsToEnd(t *testing.T) {
	require.Equal(t, []string{"flat", "bump1"}, Flat("PEQ: {flat:0,\n  bump1:3\n", "PEQ"))
}

func TestIndent(t *testing.T) {
	require.Equal(t, 0, Indent("XO:"))
	require.Equal(t, 4, Indent("    a:"))
	require.Equal(t, 3, Indent("   "))
	require.Equal(t, 0, Indent(""))
}
