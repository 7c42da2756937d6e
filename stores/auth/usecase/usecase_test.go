package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	bCtx "github.com/czConstant/constant-pawn-protocol/base/ctx"
	"github.com/czConstant/constant-pawn-protocol/domain"
)

func TestSignAndParseToken(t *testing.T) {
	req := require.New(t)
	ctx := bCtx.Background()
	au := New("test-secret")

	token, err := au.SignToken(ctx, "Alice.Near")
	req.NoError(err)
	req.NotEmpty(token)

	address, err := au.ParseToken(ctx, token)
	req.NoError(err)
	req.Equal("alice.near", address)
}

func TestSignTokenEmptyAddress(t *testing.T) {
	req := require.New(t)
	au := New("test-secret")

	_, err := au.SignToken(bCtx.Background(), "")
	req.Equal(domain.ErrInvalidAddress, err)
}

func TestParseTokenWrongSecret(t *testing.T) {
	req := require.New(t)
	ctx := bCtx.Background()

	token, err := New("secret-a").SignToken(ctx, "alice.near")
	req.NoError(err)

	_, err = New("secret-b").ParseToken(ctx, token)
	req.Error(err)
}

func TestParseTokenGarbage(t *testing.T) {
	req := require.New(t)

	_, err := New("test-secret").ParseToken(bCtx.Background(), "not-a-token")
	req.Error(err)
}
