package validation

import (
    "errors"
    "strings"
    "testing"

    "github.com/adsloty/adsloty/internal/model"
)

func validCreative() model.AdCreative {
    return model.AdCreative{
        Copy:     "Ship faster with Acme CI. Try it free for 30 days.",
        ClickURL: "https://acme.example.com/signup",
    }
}

func TestValidateCreativeAccepts(t *testing.T) {
    got, err := ValidateCreative(validCreative())
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if got.Copy == "" || got.ClickURL == "" {
        t.Fatalf("sanitized creative lost fields: %+v", got)
    }
}

func TestValidateCreativeCopyLimit(t *testing.T) {
    c := validCreative()
    c.Copy = strings.Repeat("a", 281)
    if _, err := ValidateCreative(c); !errors.Is(err, ErrValidation) {
        t.Fatalf("281-char copy accepted, err=%v", err)
    }
    c.Copy = strings.Repeat("a", 280)
    if _, err := ValidateCreative(c); err != nil {
        t.Fatalf("280-char copy rejected: %v", err)
    }
}

func TestValidateCreativeRequiredFields(t *testing.T) {
    c := validCreative()
    c.Copy = "   "
    if _, err := ValidateCreative(c); !errors.Is(err, ErrValidation) {
        t.Fatal("blank copy accepted")
    }
    c = validCreative()
    c.ClickURL = ""
    if _, err := ValidateCreative(c); !errors.Is(err, ErrValidation) {
        t.Fatal("missing click URL accepted")
    }
}

func TestValidateCreativeSanitizesHTML(t *testing.T) {
    c := validCreative()
    c.Copy = `Best <script>alert("x")</script> deal`
    got, err := ValidateCreative(c)
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if strings.Contains(got.Copy, "<script>") {
        t.Fatalf("copy not sanitized: %q", got.Copy)
    }
}

func TestValidateURL(t *testing.T) {
    if _, err := ValidateURL("javascript:alert(1)"); !errors.Is(err, ErrValidation) {
        t.Error("javascript: URL accepted")
    }
    if _, err := ValidateURL("ftp://example.com"); !errors.Is(err, ErrValidation) {
        t.Error("non-http scheme accepted")
    }
    if _, err := ValidateURL("https://example.com/" + strings.Repeat("x", MaxURLLength)); !errors.Is(err, ErrValidation) {
        t.Error("overlong URL accepted")
    }
    if u, err := ValidateURL("  https://example.com/landing  "); err != nil || u != "https://example.com/landing" {
        t.Errorf("valid URL rejected or not trimmed: %q, %v", u, err)
    }
}

func TestValidateCreativeOptionalImage(t *testing.T) {
    c := validCreative()
    empty := "  "
    c.ImageURL = &empty
    got, err := ValidateCreative(c)
    if err != nil {
        t.Fatalf("blank image URL should be dropped, got %v", err)
    }
    if got.ImageURL != nil {
        t.Fatal("blank image URL retained")
    }

    bad := "data:image/png;base64,AAAA"
    c.ImageURL = &bad
    if _, err := ValidateCreative(c); !errors.Is(err, ErrValidation) {
        t.Fatal("data: image URL accepted")
    }
}

func TestValidatePassword(t *testing.T) {
    cases := []struct {
        pw string
        ok bool
    }{
        {"Abcdef12", true},
        {"short1A", false},            // too short
        {"alllowercase1", false},      // no uppercase
        {"ALLUPPERCASE1", false},      // no lowercase
        {"NoDigitsHere", false},       // no digit
        {strings.Repeat("Aa1", 42), true}, // 126 chars, inside the limit
        {strings.Repeat("Aa1", 50), false}, // over max length
    }
    for _, tc := range cases {
        err := ValidatePassword(tc.pw)
        if tc.ok && err != nil {
            t.Errorf("password %q rejected: %v", tc.pw, err)
        }
        if !tc.ok && !errors.Is(err, ErrValidation) {
            t.Errorf("password %q accepted", tc.pw)
        }
    }
}
