package auth_test

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campuspub/publication-portal/internal/auth"
)

var _ = Describe("RememberTokens", func() {
	It("round-trips the identity claims", func() {
		tokens := auth.NewRememberTokens("test-secret", time.Hour)
		signed, err := tokens.Generate("acc-1", "astrid")
		Expect(err).NotTo(HaveOccurred())

		claims, err := tokens.Validate(signed)
		Expect(err).NotTo(HaveOccurred())
		Expect(claims.UserID).To(Equal("acc-1"))
		Expect(claims.Username).To(Equal("astrid"))
	})

	It("rejects a token signed with a different secret", func() {
		signed, err := auth.NewRememberTokens("secret-a", time.Hour).Generate("acc-1", "astrid")
		Expect(err).NotTo(HaveOccurred())

		_, err = auth.NewRememberTokens("secret-b", time.Hour).Validate(signed)
		Expect(errors.Is(err, auth.ErrInvalidToken)).To(BeTrue())
	})

	It("rejects an expired token", func() {
		tokens := auth.NewRememberTokens("test-secret", time.Hour)

		stale := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.RememberClaims{
			UserID:   "acc-1",
			Username: "astrid",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				Subject:   "acc-1",
			},
		})
		signed, err := stale.SignedString([]byte("test-secret"))
		Expect(err).NotTo(HaveOccurred())

		_, err = tokens.Validate(signed)
		Expect(errors.Is(err, auth.ErrTokenExpired)).To(BeTrue())
	})

	It("is disabled without a secret", func() {
		Expect(auth.NewRememberTokens("", time.Hour).Enabled()).To(BeFalse())
		Expect(auth.NewRememberTokens("s", time.Hour).Enabled()).To(BeTrue())
	})
})
