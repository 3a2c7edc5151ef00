package helpers

import "testing"

func TestValidatePassword(t *testing.T) {
	cases := map[string]bool{
		"rahasia1":   true,
		"pendek1":    false,
		"tanpaangka": false,
		"12345678":   false,
	}
	for pw, ok := range cases {
		if err := ValidatePassword(pw); (err == nil) != ok {
			t.Fatalf("ValidatePassword(%q) err=%v, want ok=%v", pw, err, ok)
		}
	}
}

func TestSlugUserName(t *testing.T) {
	cases := map[string]string{
		"Budi Santoso":     "budi_santoso",
		"siti@example.com": "siti",
		"Al":               "alx",
		"  Ana-Putri!!  ":  "ana_putri",
	}
	for in, want := range cases {
		if got := SlugUserName(in); got != want {
			t.Fatalf("SlugUserName(%q) = %q, want %q", in, got, want)
		}
		if err := ValidateUserName(SlugUserName(in)); err != nil {
			t.Fatalf("slug %q should be a valid username: %v", SlugUserName(in), err)
		}
	}
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("rahasia1")
	if err != nil {
		t.Fatal(err)
	}
	if CheckPasswordHash(h, "rahasia1") != nil {
		t.Fatal("hash should match")
	}
	if CheckPasswordHash(h, "rahasia2") == nil {
		t.Fatal("wrong password matched")
	}
}
