package domain

import (
	"github.com/golang-jwt/jwt"

	"github.com/czConstant/constant-pawn-protocol/base/ctx"
)

type JwtCustomClaims struct {
	Address string `json:"data"`
	jwt.StandardClaims
}

type AuthUsecase interface {
	SignToken(ctx ctx.Ctx, address Address) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (address string, err error)
}
