package domain

import "time"

// Socials holds one handle per supported platform. Empty string means unset.
type Socials struct {
	X        string `gorm:"column:social_x" json:"x"`
	Facebook string `gorm:"column:social_facebook" json:"facebook"`
	Linkedin string `gorm:"column:social_linkedin" json:"linkedin"`
	Github   string `gorm:"column:social_github" json:"github"`
	Youtube  string `gorm:"column:social_youtube" json:"youtube"`
}

type Wallets struct {
	Sui      string `gorm:"column:wallet_sui" json:"sui"`
	Solana   string `gorm:"column:wallet_solana" json:"solana"`
	Ethereum string `gorm:"column:wallet_ethereum" json:"ethereum"`
}

// Profile is the public page content owned by exactly one user.
// UserID is never reassigned after creation.
type Profile struct {
	ID        string    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Bio       string    `json:"bio"`
	Country   string    `json:"country"`
	Socials   Socials   `gorm:"embedded" json:"socials"`
	Wallets   Wallets   `gorm:"embedded" json:"wallets"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Profile) TableName() string { return "profile" }

var socialPlatforms = map[string]struct{}{
	"x":        {},
	"facebook": {},
	"linkedin": {},
	"github":   {},
	"youtube":  {},
}

// ValidSocialPlatform reports whether p names one of the fixed social fields.
func ValidSocialPlatform(p string) bool {
	_, ok := socialPlatforms[p]
	return ok
}
