package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"dashed", "Contact: 123-456-7890", "123-456-7890"},
		{"dotted", "Phone 987.654.3210 (home)", "987.654.3210"},
		{"first wins", "Call 111-222-3333 or 444-555-6666", "111-222-3333"},
		{"country code", "Mobile: +1 (555) 123-4567", "1 (555) 123-4567"},
		{"non-breaking spaces", "Phone 987\u00a0654\u00a03210", "987\u00a0654\u00a03210"},
		{"no match", "no digits here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContactNumber(tt.text)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestEmail(t *testing.T) {
	got := Email("email me at a.b@test.org please")
	require.NotNil(t, got)
	assert.Equal(t, "a.b@test.org", *got)

	got = Email("first@one.io then second@two.io")
	require.NotNil(t, got)
	assert.Equal(t, "first@one.io", *got)

	assert.Nil(t, Email("nobody at example dot com"))
}

func TestSkills(t *testing.T) {
	t.Run("case variants collapse", func(t *testing.T) {
		got := Skills("Python\npython\nPYTHON")
		assert.Equal(t, []string{"python"}, got)
	})

	t.Run("symbols and multi-word terms", func(t *testing.T) {
		got := Skills("Skilled in C++, JavaScript and machine   learning.")
		assert.Equal(t, []string{"c++", "javascript", "machine learning"}, got)
	})

	t.Run("no partial words", func(t *testing.T) {
		got := Skills("Pythonic JavaScripting GitHub")
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("only vocabulary terms", func(t *testing.T) {
		vocab := map[string]bool{}
		for _, v := range SkillVocabulary() {
			vocab[v] = true
		}
		text := "SQL, HTML, CSS, Rust, Teamwork and Leadership with Docker"
		for _, s := range Skills(text) {
			found := false
			for v := range vocab {
				if s == lower(v) {
					found = true
				}
			}
			assert.True(t, found, "unexpected skill %q", s)
		}
		assert.NotContains(t, Skills(text), "rust")
	})
}

func TestEducation_EveryKeywordMatches(t *testing.T) {
	for _, kw := range EducationKeywords() {
		got := Education("  " + kw + " 2019  \n")
		require.Len(t, got, 1, kw)
		assert.Equal(t, kw+" 2019", got[0])
	}
}

func TestEducation(t *testing.T) {
	text := "Jane Doe\n" +
		"  Bachelor's Degree in CS, XYZ University  \n" +
		"Worked at Acme Corp\n" +
		"HSC 2015 - 89%\n" +
		"Bachelor's Degree in CS, XYZ University\n"

	got := Education(text)
	assert.Equal(t, []string{
		"Bachelor's Degree in CS, XYZ University",
		"HSC 2015 - 89%",
		"Bachelor's Degree in CS, XYZ University",
	}, got)
	assert.NotContains(t, got, "Worked at Acme Corp")
	assert.NotContains(t, got, "Jane Doe")
}

func TestEducationEmpty(t *testing.T) {
	got := Education("")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestWorkExperienceAlwaysEmpty(t *testing.T) {
	got := WorkExperience("Software Engineer at Acme, 2019 - 2023")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
