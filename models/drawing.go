package models

import "gorm.io/datatypes"

// Drawing is a saved snapshot of the geometry store.
type Drawing struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Name      string           `gorm:"type:varchar(255);index" json:"name"`
	Features  []DrawingFeature `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt int64            `gorm:"autoCreateTime" json:"created_at"`
}

// DrawingFeature holds one feature of a Drawing; Geom is WKB of the closed form.
type DrawingFeature struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	DrawingID uint           `gorm:"index" json:"drawing_id"`
	FeatureID string         `gorm:"type:varchar(64)" json:"feature_id"`
	Kind      string         `gorm:"type:varchar(16)" json:"kind"`
	Seq       int            `json:"seq"`
	Geom      []byte         `json:"-"`
	Meta      datatypes.JSON `json:"meta"`
}

// ExportRecord logs every artifact handed to a client.
type ExportRecord struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Format       string `gorm:"type:varchar(16);index" json:"format"`
	FileName     string `gorm:"type:varchar(255)" json:"file_name"`
	FeatureCount int    `json:"feature_count"`
	Scale        int64  `json:"scale"`
	Size         int    `json:"size"`
	CreatedAt    int64  `gorm:"autoCreateTime" json:"created_at"`
}

func (ExportRecord) TableName() string {
	return "export_records"
}

// AllModels lists the tables created at start-up.
func AllModels() []interface{} {
	return []interface{}{
		&Drawing{},
		&DrawingFeature{},
		&ExportRecord{},
	}
}
