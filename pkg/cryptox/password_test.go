package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "gatehouse-test-pepper")
	SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func TestHashPasswordProducesPHCFormat(t *testing.T) {
	for _, password := range []string{
		"MyPassword1",
		"P@ssw0rd!#$%^&()",
		strings.Repeat("A1", 50),
		"",
	} {
		hash, err := HashPassword(password)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

		parts := strings.Split(hash, "$")
		require.Len(t, parts, 6)
		require.NotEmpty(t, parts[4], "salt")
		require.NotEmpty(t, parts[5], "hash")
	}
}

func TestHashPasswordSaltsAreUnique(t *testing.T) {
	h1, err := HashPassword("samepassword")
	require.NoError(t, err)
	h2, err := HashPassword("samepassword")
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("CorrectHorse1")
	require.NoError(t, err)

	t.Run("accepts the original plaintext", func(t *testing.T) {
		require.NoError(t, VerifyPassword("CorrectHorse1", hash))
	})

	t.Run("rejects any other string", func(t *testing.T) {
		for _, wrong := range []string{"correcthorse1", "CorrectHorse1 ", "CorrectHorse2", ""} {
			require.ErrorIs(t, VerifyPassword(wrong, hash), ErrPasswordMismatch)
		}
	})

	t.Run("rejects malformed stored hashes", func(t *testing.T) {
		for _, bad := range []string{
			"",
			"plaintext",
			"$argon2i$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
			"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
		} {
			err := VerifyPassword("whatever", bad)
			require.Error(t, err)
			require.NotErrorIs(t, err, ErrPasswordMismatch)
		}
	})
}
