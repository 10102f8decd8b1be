// internal/fingerprint/comparator_test.go
package fingerprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brydge/brydge-backend/internal/apperrors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid token", "AQAAO0mUaEkSNMgPPR4x", false},
		{"minimum length", strings.Repeat("A", 16), false},
		{"base64url padding", "AQAAO0mUaEkSNMg=", false},
		{"empty", "", true},
		{"too short", "AQAAO0mU", true},
		{"invalid character", "AQAAO0mUaEkSNMg!PPR4", true},
		{"whitespace", "AQAAO0mUaEkS NMgPPR4", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.KindInvalidFingerprint, apperrors.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompareIdenticalTokens(t *testing.T) {
	token := "AQAAO0mUaEkSNMgPPR4xHcdx6NHx4wm8C_mRI3WSJMoPPzc"

	score, err := Compare(token, token)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestCompareIsSymmetric(t *testing.T) {
	a := "AQAAO0mUaEkSNMgPPR4xHcdx6NHx4wm8C_mRI3WSJMoPPzc"
	b := "AQAAO0mUaEkSNMgPPR4xHcdx6NHxEEEEEEEEEEEEEEEEEEE"

	ab, err := Compare(a, b)
	require.NoError(t, err)
	ba, err := Compare(b, a)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
}

func TestCompareBounds(t *testing.T) {
	a := "AQAAO0mUaEkSNMgPPR4xHcdx6NHx4wm8"
	b := "zzzzzzzzzzzzzzzz0000000000000000"

	score, err := Compare(a, b)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestCompareDisjointTokensScoreZero(t *testing.T) {
	a := strings.Repeat("A", 32)
	b := strings.Repeat("z", 32)

	score, err := Compare(a, b)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestCompareSimilarTokensScoreHigherThanDissimilar(t *testing.T) {
	base := "AQAAO0mUaEkSNMgPPR4xHcdx6NHx4wm8C_mRI3WSJMoP"
	near := "AQAAO0mUaEkSNMgPPR4xHcdx6NHx4wm8C_mRI3WSJMoQ"
	far := "zzzz9999____----====11112222333344445555"

	nearScore, err := Compare(base, near)
	require.NoError(t, err)
	farScore, err := Compare(base, far)
	require.NoError(t, err)

	assert.Greater(t, nearScore, farScore)
}

func TestCompareRejectsInvalidInput(t *testing.T) {
	valid := strings.Repeat("A", 32)

	_, err := Compare("", valid)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidFingerprint))

	_, err = Compare(valid, "bad token!")
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidFingerprint))
}

func TestCompareIDSets(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want float64
	}{
		{"identical", []string{"x", "y"}, []string{"x", "y"}, 1.0},
		{"subset", []string{"x", "y", "z", "w"}, []string{"x", "y"}, 1.0},
		{"half overlap", []string{"x", "y"}, []string{"x", "q"}, 0.5},
		{"disjoint", []string{"x"}, []string{"q"}, 0.0},
		{"empty left", nil, []string{"x"}, 0.0},
		{"empty right", []string{"x"}, nil, 0.0},
		{"both empty", nil, nil, 0.0},
		{"duplicates ignored", []string{"x", "y"}, []string{"x", "x", "x"}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareIDSets(tt.a, tt.b))
		})
	}
}
