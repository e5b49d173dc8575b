package models

import "time"

// KeyStatus describes the lifecycle stage of a license key.
type KeyStatus string

const (
	KeyStatusUnused  KeyStatus = "unused"
	KeyStatusUsed    KeyStatus = "used"
	KeyStatusRevoked KeyStatus = "revoked"
)

// User is a Telegram account known to the bot. Rows are upserted on every
// interaction and never deleted.
type User struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	IsBanned  bool      `db:"is_banned"`
	JoinedAt  time.Time `db:"joined_at"`
	LastSeen  time.Time `db:"last_seen"`
}

// LicenseKey is a single-use access key issued to a purchaser. The key value
// is the identity; only status and redemption metadata ever change.
type LicenseKey struct {
	Key           string     `db:"key"`
	PurchaserID   int64      `db:"purchaser_id"`
	PurchaserName string     `db:"purchaser_name"`
	Status        KeyStatus  `db:"status"`
	UsedBy        *int64     `db:"used_by"`
	UsedAt        *time.Time `db:"used_at"`
	RevokedAt     *time.Time `db:"revoked_at"`
	CreatedAt     time.Time  `db:"created_at"`
}

// BanRecord exists while the user is banned; unban deletes it.
type BanRecord struct {
	UserID   int64     `db:"user_id"`
	BannedAt time.Time `db:"banned_at"`
}

// Settings is the single mutable configuration row. Nil pointers mean the
// owner has not configured the value yet.
type Settings struct {
	ID          string  `db:"id"`
	BackupLink  *string `db:"backup_link"`
	PricingText *string `db:"pricing_text"`
}

// Stats aggregates user counts for the admin panel.
type Stats struct {
	Total  int `db:"total"`
	Banned int `db:"banned"`
}

// Active reports users that are not banned.
func (s Stats) Active() int {
	return s.Total - s.Banned
}
