package models

// Category 是地点的分类，图标与图片以二进制保存，
// 通过专用端点按原始字节提供，列表端点只返回引用 URL。
type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Icon        []byte `gorm:"type:bytea" json:"-"`
	Image       []byte `gorm:"type:bytea" json:"-"`
}

// CategoryRef is the list representation of a category: the binary
// icon/image columns are replaced by their serving URLs.
type CategoryRef struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IconURL     string `json:"icon,omitempty"`
	ImageURL    string `json:"image,omitempty"`
}
