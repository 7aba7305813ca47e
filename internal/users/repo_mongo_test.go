package users

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestMongoInsertError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		taken bool
	}{
		{name: "duplicate email", err: mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}}, taken: true},
		{name: "wrapped duplicate", err: fmt.Errorf("insert: %w", mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}), taken: true},
		{name: "other write error", err: mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 121}}}},
		{name: "network", err: errors.New("connection reset")},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := insertError(tt.err)
			if taken := errors.Is(got, ErrEmailTaken); taken != tt.taken {
				t.Fatalf("insertError(%v) = %v, taken %v, want %v", tt.err, got, taken, tt.taken)
			}
			if !tt.taken && got != tt.err {
				t.Fatalf("insertError(%v) = %v, want error unchanged", tt.err, got)
			}
		})
	}
	if err := insertError(nil); err != nil {
		t.Fatalf("insertError(nil) = %v", err)
	}
}

func TestMongoFindError(t *testing.T) {
	if err := findError(mongo.ErrNoDocuments); !errors.Is(err, ErrNotFound) {
		t.Fatalf("findError(ErrNoDocuments) = %v, want ErrNotFound", err)
	}
	boom := errors.New("timeout")
	if err := findError(boom); !errors.Is(err, boom) {
		t.Fatalf("findError(boom) = %v, want boom", err)
	}
}

func TestUserBSONFieldNames(t *testing.T) {
	raw, err := bson.Marshal(User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("bson.Marshal: %v", err)
	}
	doc := bson.Raw(raw)
	for key, want := range map[string]string{"name": "Ada", "email": "ada@example.com", "password": "hash"} {
		val, err := doc.LookupErr(key)
		if err != nil {
			t.Fatalf("field %q missing: %v", key, err)
		}
		if got := val.StringValue(); got != want {
			t.Fatalf("field %q = %q, want %q", key, got, want)
		}
	}
}
