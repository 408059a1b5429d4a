package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func TestIssueTokenRoundTrip(t *testing.T) {
	user := models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Jamie",
		Email: "jamie@example.com",
		Role:  models.RoleAdmin,
	}

	signed, err := issueToken(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("issueToken returned error: %v", err)
	}

	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("expected valid token, got err=%v valid=%v", err, token.Valid)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected MapClaims")
	}
	if claims["userId"] != user.ID.Hex() {
		t.Fatalf("expected userId %s, got %v", user.ID.Hex(), claims["userId"])
	}
	if claims["email"] != user.Email {
		t.Fatalf("expected email %s, got %v", user.Email, claims["email"])
	}
	if claims["role"] != models.RoleAdmin {
		t.Fatalf("expected role admin, got %v", claims["role"])
	}
}

func TestIssueTokenExpiry(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Email: "x@example.com", Role: models.RoleCustomer}

	signed, err := issueToken(user, "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("issueToken returned error: %v", err)
	}

	_, err = jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err == nil {
		t.Fatal("expected expired token to fail parsing")
	}
}

func TestIssueTokenWrongSecretFails(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Email: "x@example.com", Role: models.RoleCustomer}

	signed, err := issueToken(user, "secret-a", time.Hour)
	if err != nil {
		t.Fatalf("issueToken returned error: %v", err)
	}

	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret-b"), nil
	})
	if err == nil && token.Valid {
		t.Fatal("expected signature mismatch to invalidate token")
	}
}

func TestLowerCamel(t *testing.T) {
	if got := lowerCamel("Email"); got != "email" {
		t.Fatalf("expected email, got %s", got)
	}
	if got := lowerCamel(""); got != "" {
		t.Fatalf("expected empty, got %s", got)
	}
}
