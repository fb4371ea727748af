package trackerstore

import "context"

// FetchUser returns the User row for name.
func (s *GORMStore) FetchUser(ctx context.Context, name string) (*User, error) {
	return getByField[User](s.db, ctx, "name", name, ErrUserNotFound)
}

// InsertUser creates a new User row.
func (s *GORMStore) InsertUser(ctx context.Context, name, passwordHash, ip string, port int) error {
	user := &User{
		Name:     name,
		Password: passwordHash,
		IP:       ip,
		Port:     port,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

// UpdateUserIP updates the stored IP for an existing user.
func (s *GORMStore) UpdateUserIP(ctx context.Context, name, ip string) error {
	result := s.db.WithContext(ctx).Model(&User{}).Where("name = ?", name).Update("ip", ip)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateUserPort updates the stored port for an existing user.
func (s *GORMStore) UpdateUserPort(ctx context.Context, name string, port int) error {
	result := s.db.WithContext(ctx).Model(&User{}).Where("name = ?", name).Update("port", port)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
