package storage

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"places-go/internal/models"
)

// UserProfileUpdate 是用户资料的部分更新：nil 字段不修改。
// 更新语句只从这组固定字段构建，杜绝任意拼接。
type UserProfileUpdate struct {
	FirstName      *string
	LastName       *string
	Bio            *string
	ProfilePicture *string
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uint, update UserProfileUpdate) (int64, error)
	SearchUsers(ctx context.Context, currentUserID uint, query string, limit, offset int) ([]models.UserBasicInfo, int64, error)
	SearchUsersWithRelationship(ctx context.Context, currentUserID uint, query string, limit, offset int) ([]models.UserSearchResult, error)
	GetActiveUserIDs(ctx context.Context) ([]uint, error)
}

// gormUserRepository implements UserRepository using GORM.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based UserRepository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create creates a new user record in the database.
func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by their ID.
func (r *gormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email.
func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies the provided fields only and returns the number
// of affected rows (zero means the user does not exist).
func (r *gormUserRepository) UpdateProfile(ctx context.Context, id uint, update UserProfileUpdate) (int64, error) {
	values := map[string]interface{}{}
	if update.FirstName != nil {
		values["first_name"] = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		values["last_name"] = strings.TrimSpace(*update.LastName)
	}
	if update.Bio != nil {
		values["bio"] = strings.TrimSpace(*update.Bio)
	}
	if update.ProfilePicture != nil {
		values["profile_picture"] = *update.ProfilePicture
	}
	if len(values) == 0 {
		// 没有提供任何字段时只确认用户存在。
		var count int64
		err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
		return count, err
	}

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(values)
	return res.RowsAffected, res.Error
}

// SearchUsers 按名字做大小写不敏感的子串过滤（排除自己），分页返回。
func (r *gormUserRepository) SearchUsers(ctx context.Context, currentUserID uint, query string, limit, offset int) ([]models.UserBasicInfo, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.User{}).Where("id != ?", currentUserID)

	if q := strings.TrimSpace(query); q != "" {
		term := "%" + strings.ToLower(q) + "%"
		base = base.Where(
			"LOWER(first_name || ' ' || last_name) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			term, term, term,
		)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.UserBasicInfo
	err := base.
		Select("id", "first_name", "last_name", "profile_picture").
		Order("first_name ASC").
		Limit(limit).Offset(offset).
		Scan(&users).Error
	return users, total, err
}

// SearchUsersWithRelationship returns all users except the searcher,
// each annotated with the relationship between the two: friend,
// request_sent, request_received or none. Friendship rows are stored in
// canonical order, but the join still matches the user on either side.
func (r *gormUserRepository) SearchUsersWithRelationship(ctx context.Context, currentUserID uint, query string, limit, offset int) ([]models.UserSearchResult, error) {
	sql := `
		SELECT u.id, u.first_name, u.last_name, u.profile_picture,
		  CASE
		    WHEN f.user1_id IS NOT NULL THEN 'friend'
		    WHEN fr.sender_id = @uid AND fr.status = 'pending' THEN 'request_sent'
		    WHEN fr.receiver_id = @uid AND fr.status = 'pending' THEN 'request_received'
		    ELSE 'none'
		  END AS relationship_status
		FROM users u
		LEFT JOIN friendships f
		  ON (f.user1_id = u.id AND f.user2_id = @uid)
		  OR (f.user2_id = u.id AND f.user1_id = @uid)
		LEFT JOIN friend_requests fr
		  ON (fr.sender_id = @uid AND fr.receiver_id = u.id)
		  OR (fr.sender_id = u.id AND fr.receiver_id = @uid)
		WHERE u.id != @uid AND u.deleted_at IS NULL`

	args := map[string]interface{}{"uid": currentUserID}
	if q := strings.TrimSpace(query); q != "" {
		sql += ` AND (LOWER(u.first_name || ' ' || u.last_name) LIKE @term
			OR LOWER(u.first_name) LIKE @term OR LOWER(u.last_name) LIKE @term)`
		args["term"] = "%" + strings.ToLower(q) + "%"
	}
	sql += ` ORDER BY u.first_name ASC LIMIT @limit OFFSET @offset`
	args["limit"] = limit
	args["offset"] = offset

	var results []models.UserSearchResult
	err := r.db.WithContext(ctx).Raw(sql, args).Scan(&results).Error
	return results, err
}

// GetActiveUserIDs 返回所有未软删除用户的 ID，供通知扇出使用。
func (r *gormUserRepository) GetActiveUserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.User{}).Pluck("id", &ids).Error
	return ids, err
}
