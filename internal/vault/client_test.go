package vault

import (
	"context"
	"strings"
	"testing"

	"plan-review/internal/testutil"
)

func TestCommentSealerRoundTrip(t *testing.T) {
	tc := testutil.SetupVault(t)
	ctx := context.Background()

	client, err := NewClient(ctx, &Config{Address: tc.VaultAddr, Token: tc.VaultToken})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := client.Health(ctx); err != nil {
		t.Fatalf("Health returned error: %v", err)
	}

	sealer, err := NewCommentSealer(ctx, client, "review-comments")
	if err != nil {
		t.Fatalf("NewCommentSealer returned error: %v", err)
	}
	// Second call must find the existing key
	if _, err := NewCommentSealer(ctx, client, "review-comments"); err != nil {
		t.Fatalf("EnsureKey is not idempotent: %v", err)
	}

	sealed, err := sealer.Seal(ctx, "Condition 3 needs a reason")
	if err != nil {
		t.Fatalf("Seal returned error: %v", err)
	}
	if !strings.HasPrefix(sealed, "vault:v1:") || strings.Contains(sealed, "Condition") {
		t.Fatalf("unexpected ciphertext: %q", sealed)
	}

	plain, err := sealer.Unseal(ctx, sealed)
	if err != nil {
		t.Fatalf("Unseal returned error: %v", err)
	}
	if plain != "Condition 3 needs a reason" {
		t.Errorf("Unseal = %q", plain)
	}

	if _, err := sealer.Unseal(ctx, "plain text"); err == nil {
		t.Errorf("expected error for non-transit input")
	}
}
