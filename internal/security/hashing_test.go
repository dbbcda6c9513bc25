package security

import "testing"

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(4) // minimum cost to keep the test fast

	hash, err := h.Hash([]byte("correct horse battery staple"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" {
		t.Fatal("empty hash")
	}
	if !h.Compare("correct horse battery staple", hash) {
		t.Error("Compare should match the original password")
	}
	if h.Compare("wrong password", hash) {
		t.Error("Compare should reject a wrong password")
	}
	if h.Compare("correct horse battery staple", "not-a-bcrypt-hash") {
		t.Error("Compare should reject an invalid hash")
	}
}

func TestNewHasher_CostClamping(t *testing.T) {
	if h := NewHasher(0); h.Cost != 10 {
		t.Errorf("cost 0 should fall back to bcrypt default, got %d", h.Cost)
	}
	if h := NewHasher(2); h.Cost != 4 {
		t.Errorf("cost below min should clamp to 4, got %d", h.Cost)
	}
	if h := NewHasher(99); h.Cost != 31 {
		t.Errorf("cost above max should clamp to 31, got %d", h.Cost)
	}
}
