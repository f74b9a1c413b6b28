package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserPatch_Apply(t *testing.T) {
	email := "new@example.org"
	role := ""

	base := User{ID: 7, Username: "alice", Email: "old@example.org", Role: "admin"}
	got := UserPatch{Email: &email, Role: &role}.Apply(base)

	assert.Equal(t, User{ID: 7, Username: "alice", Email: "new@example.org", Role: ""}, got)
	assert.Equal(t, "old@example.org", base.Email, "original must not change")
}

func TestUserPatch_EmptyPatchIsIdentity(t *testing.T) {
	u := User{ID: 1, Username: "bob"}
	assert.Equal(t, u, UserPatch{}.Apply(u))
}
