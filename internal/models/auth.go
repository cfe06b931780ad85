package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the teacher identity on access tokens. Tokens are
// issued by the identity provider; this service only verifies them.
type JWTClaims struct {
	TeacherID string `json:"teacher_id"`
	Name      string `json:"name"`
	jwt.RegisteredClaims
}

// Pagination describes list response paging metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
