package trackerstore

import "time"

// User is the durable record of a registered peer. Identified by Name; never
// deleted by this system.
type User struct {
	Name      string `gorm:"primaryKey;size:25"`
	Password  string `gorm:"size:60;not null"` // bcrypt hash
	IP        string `gorm:"size:45"`          // last known IP, IPv4 or IPv6
	Port      int    `gorm:"not null"`         // last known port
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserFile is a single catalog entry registered by a peer. The tuple
// (OwnerName, Name, Type, Path) is unique; FileID is the catalog-wide
// identifier handed out to requesters via getFileHostInfo.
type UserFile struct {
	FileID    uint64 `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"size:100;not null;uniqueIndex:idx_owner_file"`
	Type      string `gorm:"size:25;not null;uniqueIndex:idx_owner_file"`
	Path      string `gorm:"size:300;not null;uniqueIndex:idx_owner_file"`
	Size      int64  `gorm:"not null"`
	OwnerName string `gorm:"size:25;not null;uniqueIndex:idx_owner_file;index"`
	CreatedAt time.Time
}

// AllModels returns every model the Persistence Gateway migrates on startup.
func AllModels() []any {
	return []any{
		&User{},
		&UserFile{},
	}
}
