package security

import (
	"testing"

	"github.com/geocoder89/expensehub/internal/domain/user"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret1" {
		t.Fatalf("plaintext stored as hash")
	}

	if err := CheckPassword(hash, "secret1"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	if err := CheckPassword(hash, "secret2"); err == nil {
		t.Fatalf("wrong password accepted")
	}
}

func TestFederatedSentinelNeverVerifies(t *testing.T) {
	for _, pw := range []string{"", user.FederatedPasswordHash, "google", "secret1"} {
		if err := CheckPassword(user.FederatedPasswordHash, pw); err == nil {
			t.Fatalf("sentinel verified against %q", pw)
		}
	}
}

func TestBurnCompareAlwaysFails(t *testing.T) {
	if err := BurnCompare("expensehub-timing-equalizer"); err == nil {
		t.Fatalf("BurnCompare must never succeed")
	}
}
