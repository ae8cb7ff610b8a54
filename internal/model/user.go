package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
// A user signs up as either a newsletter writer or an advertising
// sponsor; the platform operator uses the ADMIN role.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – name of the role (WRITER, SPONSOR or ADMIN).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
//  LastLoginAt  – when the user last logged in (nullable).
type User struct {
    ID           uint64     // users.id
    Email        string     // users.email
    PasswordHash string     // users.password_hash
    Role         string     // users.role
    IsActive     bool       // users.is_active
    CreatedAt    time.Time  // users.created_at
    UpdatedAt    time.Time  // users.updated_at
    LastLoginAt  *time.Time // users.last_login_at (nullable)
}

// Roles recognised by the platform.  The writer side owns newsletters
// and reviews submitted ads; the sponsor side books slots and supplies
// creatives.  ADMIN is reserved for platform operations endpoints.
const (
    RoleWriter  = "WRITER"
    RoleSponsor = "SPONSOR"
    RoleAdmin   = "ADMIN"
)

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA‑256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
