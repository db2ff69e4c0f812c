package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUpsertsSingleSchemaPerKey(t *testing.T) {
	st := New()
	st.Add("git", false, OptionEntry{ShortOpt: 'b', LongOpt: "branch", ResultMode: NoCommon})
	st.Add("git", false, OptionEntry{ShortOpt: 'a', LongOpt: "all"})

	all := st.All()
	require.Len(t, all, 1)
	assert.Equal(t, "git", all[0].Cmd)
	assert.Len(t, all[0].Options, 2)
}

func TestShortOptStrCoherence(t *testing.T) {
	st := New()
	st.Add("git", false, OptionEntry{ShortOpt: 'b', LongOpt: "branch", ResultMode: NoCommon})
	st.Add("git", false, OptionEntry{ShortOpt: 'a', LongOpt: "all"})

	snaps := st.FindMatching("git", "")
	require.Len(t, snaps, 1)
	assert.Equal(t, "b:a", snaps[0].ShortOptStr)
}

func TestRemoveSplicesShortOptStr(t *testing.T) {
	st := New()
	st.Add("git", false, OptionEntry{ShortOpt: 'b', LongOpt: "branch", ResultMode: NoCommon})
	st.Add("git", false, OptionEntry{ShortOpt: 'a', LongOpt: "all"})

	st.Remove("git", false, 'b', "")

	snaps := st.FindMatching("git", "")
	require.Len(t, snaps, 1)
	assert.Equal(t, "a", snaps[0].ShortOptStr)
	require.Len(t, snaps[0].Options, 1)
	assert.Equal(t, byte('a'), snaps[0].Options[0].ShortOpt)
}

func TestRemoveEmptiesSchemaIsDeleted(t *testing.T) {
	st := New()
	st.Add("git", false, OptionEntry{ShortOpt: 'b'})
	st.Remove("git", false, 'b', "")
	assert.Empty(t, st.All())
}

func TestRemoveWithNoIdentifierClearsSchema(t *testing.T) {
	st := New()
	st.Add("git", false, OptionEntry{ShortOpt: 'b'})
	st.Add("git", false, OptionEntry{ShortOpt: 'a'})
	st.Remove("git", false, 0, "")
	assert.Empty(t, st.All())
}

func TestFindMatchingGlob(t *testing.T) {
	st := New()
	st.Add("git*", false, OptionEntry{ShortOpt: 'v'})
	assert.Len(t, st.FindMatching("git-lfs", ""), 1)
	assert.Empty(t, st.FindMatching("hub", ""))
}

func TestFindMatchingByPath(t *testing.T) {
	st := New()
	st.Add("/usr/bin/foo", true, OptionEntry{ShortOpt: 'x'})
	assert.Len(t, st.FindMatching("foo", "/usr/bin/foo"), 1)
	assert.Empty(t, st.FindMatching("foo", ""))
}

func TestValidateOptionAuthoritativeRejection(t *testing.T) {
	st := New()
	st.Add("foo", false, OptionEntry{ShortOpt: 'y'})
	st.SetAuthoritative("foo", false, true)

	schemas := st.FindMatching("foo", "")
	ok, err := ValidateOption(schemas, "-x", false)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "Unknown option: ")
}

func TestValidateOptionNonAuthoritativeCantSay(t *testing.T) {
	st := New()
	st.Add("foo", false, OptionEntry{ShortOpt: 'y'})

	schemas := st.FindMatching("foo", "")
	ok, err := ValidateOption(schemas, "-x", false)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateOptionStrictAuthoritativeKnob(t *testing.T) {
	st := New()
	st.Add("foo", false, OptionEntry{ShortOpt: 'y'})

	schemas := st.FindMatching("foo", "")
	ok, err := ValidateOption(schemas, "-x", true)
	require.Error(t, err)
	assert.False(t, ok)
}

func TestValidateOptionTriviallyValidCases(t *testing.T) {
	st := New()
	st.Add("foo", false, OptionEntry{ShortOpt: 'y'})
	st.SetAuthoritative("foo", false, true)
	schemas := st.FindMatching("foo", "")

	for _, opt := range []string{"-", "x", "--"} {
		ok, err := ValidateOption(schemas, opt, false)
		require.NoError(t, err)
		assert.True(t, ok, "opt %q should be trivially valid", opt)
	}

	ok, err := ValidateOption(schemas, "", false)
	require.Error(t, err)
	assert.False(t, ok)
}

func TestValidateOptionRejectsEveryByteOfShortBundle(t *testing.T) {
	st := New()
	st.Add("foo", false, OptionEntry{ShortOpt: 'a'})
	st.SetAuthoritative("foo", false, true)
	schemas := st.FindMatching("foo", "")

	ok, err := ValidateOption(schemas, "-ab", false)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "Unknown option: b")
}

func TestValidateOptionAcceptsFullyDeclaredShortBundle(t *testing.T) {
	st := New()
	st.Add("foo", false, OptionEntry{ShortOpt: 'a'})
	st.Add("foo", false, OptionEntry{ShortOpt: 'b'})
	st.SetAuthoritative("foo", false, true)
	schemas := st.FindMatching("foo", "")

	ok, err := ValidateOption(schemas, "-ab", false)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateOptionGNUUnambiguousAbbreviation(t *testing.T) {
	st := New()
	st.Add("foo", false, OptionEntry{LongOpt: "verbose"})
	st.SetAuthoritative("foo", false, true)
	schemas := st.FindMatching("foo", "")

	ok, err := ValidateOption(schemas, "--verb", false)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateOptionGNUAmbiguousAbbreviation(t *testing.T) {
	st := New()
	st.Add("foo", false, OptionEntry{LongOpt: "verbose"})
	st.Add("foo", false, OptionEntry{LongOpt: "version"})
	st.SetAuthoritative("foo", false, true)
	schemas := st.FindMatching("foo", "")

	ok, err := ValidateOption(schemas, "--ver", false)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "Multiple matches for option: --ver")
}

func TestValidateOptionGNUExactMatchBeatsAmbiguity(t *testing.T) {
	st := New()
	st.Add("foo", false, OptionEntry{LongOpt: "ver"})
	st.Add("foo", false, OptionEntry{LongOpt: "version"})
	st.SetAuthoritative("foo", false, true)
	schemas := st.FindMatching("foo", "")

	ok, err := ValidateOption(schemas, "--ver", false)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateOptionGNUWithAttachedValue(t *testing.T) {
	st := New()
	st.Add("foo", false, OptionEntry{LongOpt: "branch", ArgSpec: "master develop"})
	st.SetAuthoritative("foo", false, true)
	schemas := st.FindMatching("foo", "")

	ok, err := ValidateOption(schemas, "--branch=master", false)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOrderPreservedAcrossMutations(t *testing.T) {
	st := New()
	st.Add("a", false, OptionEntry{ShortOpt: 'a'})
	st.Add("b", false, OptionEntry{ShortOpt: 'b'})
	st.Remove("a", false, 'a', "")
	st.Add("a", false, OptionEntry{ShortOpt: 'a'}) // recreated: new order stamp

	snaps := st.ByOrder()
	require.Len(t, snaps, 2)
	assert.Equal(t, "b", snaps[0].Cmd)
	assert.Equal(t, "a", snaps[1].Cmd)
}
