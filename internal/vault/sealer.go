package vault

import (
	"context"
	"fmt"
	"strings"
)

// CommentSealer encrypts review comments with one transit key
type CommentSealer struct {
	client  *Client
	keyName string
}

// NewCommentSealer creates the transit key if needed and returns a sealer for it
func NewCommentSealer(ctx context.Context, client *Client, keyName string) (*CommentSealer, error) {
	if err := client.EnsureKey(ctx, keyName); err != nil {
		return nil, err
	}
	return &CommentSealer{client: client, keyName: keyName}, nil
}

// Seal encrypts a comment
func (s *CommentSealer) Seal(ctx context.Context, plaintext string) (string, error) {
	return s.client.Encrypt(ctx, s.keyName, []byte(plaintext))
}

// Unseal decrypts a comment produced by Seal
func (s *CommentSealer) Unseal(ctx context.Context, ciphertext string) (string, error) {
	if !strings.HasPrefix(ciphertext, "vault:") {
		return "", fmt.Errorf("not a transit ciphertext")
	}
	plaintext, err := s.client.Decrypt(ctx, s.keyName, ciphertext)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
