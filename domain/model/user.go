package model

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// User is the account aggregate. TotalPoints and the streak fields are
// caches recomputed from source tables; callers needing a fresh value
// must recompute rather than trust them.
type User struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	UserName         string     `json:"user_name"`
	Password         string     `json:"-"`
	TotalPoints      int64      `json:"total_points"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type UserClaims struct {
	jwt.StandardClaims
	UserName string `json:"user_name"`
}

type ReqLogin struct {
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ReqRegister struct {
	Name     string `json:"name" binding:"required"`
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}
