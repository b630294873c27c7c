package models

// Place 代表一个被分类的地点。
type Place struct {
	BaseModel
	CategoryID   uint    `gorm:"not null;index" json:"category_id"`
	Name         string  `gorm:"type:varchar(150);not null" json:"name"`
	Description  string  `gorm:"type:text" json:"description,omitempty"`
	Country      string  `gorm:"type:varchar(100)" json:"country,omitempty"`
	Province     string  `gorm:"type:varchar(100)" json:"province,omitempty"`
	Municipality string  `gorm:"type:varchar(100)" json:"municipality,omitempty"`
	Neighborhood string  `gorm:"type:varchar(100)" json:"neighborhood,omitempty"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	MapLink      string  `gorm:"type:varchar(255)" json:"map_link,omitempty"`
	ImagePicture string  `gorm:"type:varchar(255)" json:"image_picture,omitempty"`
	Rate         float64 `json:"rate"`
}
