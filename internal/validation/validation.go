// Package validation checks and sanitizes user-supplied marketplace
// input before it reaches the database: ad creatives, URLs and
// passwords.  Handlers translate the returned errors into 400/422
// responses; nothing here touches I/O.
package validation

import (
    "errors"
    "fmt"
    "strings"
    "unicode"

    "github.com/adsloty/adsloty/internal/model"
)

// Limits applied to ad creatives and URLs.
const (
    MaxCopyLength     = 280
    MaxHeadlineLength = 100
    MaxCTATextLength  = 50
    MaxImageAltLength = 160
    MaxURLLength      = 2048

    MinPasswordLength = 8
    MaxPasswordLength = 128
)

// ErrValidation wraps every validation failure so handlers can map the
// whole class to a single HTTP status with errors.Is.
var ErrValidation = errors.New("validation failed")

func fail(format string, args ...any) error {
    return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// SanitizeText escapes HTML-significant characters and trims whitespace.
// Creatives are rendered inside third-party newsletters, so anything
// that could break out of a text node is neutralized at the boundary.
func SanitizeText(in string) string {
    r := strings.NewReplacer(
        "<", "&lt;",
        ">", "&gt;",
        `"`, "&quot;",
        "'", "&#x27;",
    )
    return strings.TrimSpace(r.Replace(in))
}

// ValidateURL checks that a click or image URL is plain http(s) within
// the length limit.  Script-scheme URLs are rejected outright.
func ValidateURL(raw string) (string, error) {
    u := strings.TrimSpace(raw)
    if u == "" {
        return "", fail("URL cannot be empty")
    }
    if len(u) > MaxURLLength {
        return "", fail("URL exceeds maximum length of %d characters", MaxURLLength)
    }
    lower := strings.ToLower(u)
    if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "vbscript:") {
        return "", fail("invalid URL protocol")
    }
    if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
        return "", fail("URL must start with http:// or https://")
    }
    return u, nil
}

// ValidateCreative sanitizes and checks a sponsor-submitted ad creative.
// The returned creative carries the sanitized values; the input is not
// modified.  Copy is required and limited to MaxCopyLength characters,
// the click URL must be a valid http(s) URL, and the optional fields are
// dropped when empty after sanitization.
func ValidateCreative(in model.AdCreative) (model.AdCreative, error) {
    out := model.AdCreative{}

    copyText := SanitizeText(in.Copy)
    if copyText == "" {
        return out, fail("ad copy cannot be empty")
    }
    if n := len([]rune(copyText)); n > MaxCopyLength {
        return out, fail("ad copy exceeds maximum length of %d characters", MaxCopyLength)
    }
    out.Copy = copyText

    headline := SanitizeText(in.Headline)
    if len([]rune(headline)) > MaxHeadlineLength {
        return out, fail("headline exceeds maximum length of %d characters", MaxHeadlineLength)
    }
    out.Headline = headline

    if in.CTAText != nil {
        cta := SanitizeText(*in.CTAText)
        if cta != "" {
            if len([]rune(cta)) > MaxCTATextLength {
                return out, fail("CTA text exceeds maximum length of %d characters", MaxCTATextLength)
            }
            out.CTAText = &cta
        }
    }

    clickURL, err := ValidateURL(in.ClickURL)
    if err != nil {
        return out, err
    }
    out.ClickURL = clickURL

    if in.ImageURL != nil && strings.TrimSpace(*in.ImageURL) != "" {
        img, err := ValidateURL(*in.ImageURL)
        if err != nil {
            return out, err
        }
        out.ImageURL = &img
        if in.ImageAlt != nil {
            alt := SanitizeText(*in.ImageAlt)
            if len([]rune(alt)) > MaxImageAltLength {
                return out, fail("image alt text exceeds maximum length of %d characters", MaxImageAltLength)
            }
            if alt != "" {
                out.ImageAlt = &alt
            }
        }
    }

    return out, nil
}

// ValidatePassword enforces the signup password policy: between
// MinPasswordLength and MaxPasswordLength characters with at least one
// uppercase letter, one lowercase letter and one digit.
func ValidatePassword(password string) error {
    if len(password) < MinPasswordLength {
        return fail("password must be at least %d characters long", MinPasswordLength)
    }
    if len(password) > MaxPasswordLength {
        return fail("password must not exceed %d characters", MaxPasswordLength)
    }
    var hasUpper, hasLower, hasDigit bool
    for _, r := range password {
        switch {
        case unicode.IsUpper(r):
            hasUpper = true
        case unicode.IsLower(r):
            hasLower = true
        case unicode.IsDigit(r):
            hasDigit = true
        }
    }
    if !hasUpper {
        return fail("password must contain at least one uppercase letter")
    }
    if !hasLower {
        return fail("password must contain at least one lowercase letter")
    }
    if !hasDigit {
        return fail("password must contain at least one digit")
    }
    return nil
}
