package trackerstore

import (
	"context"
	"strings"
)

// CountFiles returns how many UserFile rows owner currently has registered.
func (s *GORMStore) CountFiles(ctx context.Context, owner string) (int, error) {
	count, err := countByField[UserFile](s.db, ctx, "owner_name", owner)
	return int(count), err
}

// FileExists reports whether (owner, name, fileType, path) is already registered.
func (s *GORMStore) FileExists(ctx context.Context, owner, name, fileType, path string) (bool, error) {
	return existsByFields[UserFile](s.db, ctx, map[string]any{
		"owner_name": owner,
		"name":       name,
		"type":       fileType,
		"path":       path,
	})
}

// InsertFile creates a new UserFile row.
func (s *GORMStore) InsertFile(ctx context.Context, file *UserFile) error {
	if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrFileExists
		}
		return err
	}
	return nil
}

// DeleteFile removes the UserFile row matching (owner, name, fileType, path).
func (s *GORMStore) DeleteFile(ctx context.Context, owner, name, fileType, path string) error {
	return deleteByFields[UserFile](s.db, ctx, map[string]any{
		"owner_name": owner,
		"name":       name,
		"type":       fileType,
		"path":       path,
	}, ErrFileNotFound)
}

// FilesOf returns every UserFile row owned by owner.
func (s *GORMStore) FilesOf(ctx context.Context, owner string) ([]*UserFile, error) {
	return listByField[UserFile](s.db, ctx, "owner_name", owner)
}

// SearchFiles returns every UserFile row not owned by ownerExcluded whose
// name concatenated with its type contains querySubstring, case-insensitively.
func (s *GORMStore) SearchFiles(ctx context.Context, ownerExcluded, querySubstring string) ([]*UserFile, error) {
	var results []*UserFile
	needle := "%" + strings.ToLower(querySubstring) + "%"
	err := s.db.WithContext(ctx).
		Where("owner_name != ?", ownerExcluded).
		Where("LOWER(name || type) LIKE ?", needle).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// HostsOf returns every UserFile row with the given fileID, excluding rows
// owned by requesterExcluded, joined with the owning User's last known address.
func (s *GORMStore) HostsOf(ctx context.Context, fileID uint64, requesterExcluded string) ([]FileHost, error) {
	var hosts []FileHost
	err := s.db.WithContext(ctx).
		Table("user_files").
		Select("user_files.owner_name AS owner_name, users.ip AS ip, users.port AS port, user_files.path AS path").
		Joins("JOIN users ON users.name = user_files.owner_name").
		Where("user_files.file_id = ?", fileID).
		Where("user_files.owner_name != ?", requesterExcluded).
		Scan(&hosts).Error
	if err != nil {
		return nil, err
	}
	return hosts, nil
}

// FileIDInUse reports whether fileID is already assigned to a row.
func (s *GORMStore) FileIDInUse(ctx context.Context, fileID uint64) (bool, error) {
	return existsByFields[UserFile](s.db, ctx, map[string]any{"file_id": fileID})
}

// TotalFiles returns the total number of UserFile rows across all owners.
func (s *GORMStore) TotalFiles(ctx context.Context) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&UserFile{}).Count(&count).Error
	return int(count), err
}
