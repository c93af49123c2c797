package auth

import (
	"slices"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"plan-review/internal/config"
	"plan-review/internal/testutil"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewService(&config.JWTConfig{Secret: "test-secret", Issuer: "planning-idp"})

	token, err := svc.GenerateToken("officer-17", []string{RoleAssessor}, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims.ActorRef() != "officer-17" {
		t.Errorf("Expected actor officer-17, got %s", claims.ActorRef())
	}
	if !slices.Equal(claims.AllRoles(), []string{RoleAssessor}) {
		t.Errorf("Unexpected roles: %v", claims.AllRoles())
	}
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewService(&config.JWTConfig{Secret: "test-secret", Issuer: "planning-idp"})

	expired, err := svc.GenerateToken("officer", nil, -time.Minute)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	otherIssuer, err := NewService(&config.JWTConfig{Secret: "test-secret", Issuer: "elsewhere"}).
		GenerateToken("officer", nil, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	wrongSecret, err := NewService(&config.JWTConfig{Secret: "other-secret", Issuer: "planning-idp"}).
		GenerateToken("officer", nil, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	noSubject, err := svc.GenerateToken("", nil, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "officer",
		"iss": "planning-idp",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("Failed to build unsigned token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong issuer", otherIssuer},
		{"wrong secret", wrongSecret},
		{"no subject", noSubject},
		{"unsigned", none},
		{"garbage", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ValidateToken(tt.token); err == nil {
				t.Error("Expected token to be rejected")
			}
		})
	}
}

func TestValidateTokenFromTestHelper(t *testing.T) {
	svc := NewService(&config.JWTConfig{Secret: testutil.JWTSecret})

	token, err := testutil.NewAuthHelper().GenerateToken("manager", []string{RoleReviewer, RoleAssessor})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if !slices.Contains(claims.AllRoles(), RoleReviewer) {
		t.Errorf("Expected reviewer role, got %v", claims.AllRoles())
	}
}

func TestAllRolesMergesSingleRole(t *testing.T) {
	c := &Claims{Role: RoleReviewer, Roles: []string{RoleAssessor, RoleReviewer}}
	if got := c.AllRoles(); len(got) != 2 {
		t.Errorf("Expected deduplicated roles, got %v", got)
	}

	c = &Claims{Role: RoleReviewer}
	if got := c.AllRoles(); !slices.Equal(got, []string{RoleReviewer}) {
		t.Errorf("Expected single role, got %v", got)
	}
}
