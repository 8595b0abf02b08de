package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb/geojson"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/GrainArc/SiteMeasure/Transformer"
	"github.com/GrainArc/SiteMeasure/methods"
	"github.com/GrainArc/SiteMeasure/models"
)

// DrawingService persists store snapshots and the export log.
type DrawingService struct {
	db *gorm.DB
}

func NewDrawingService(db *gorm.DB) *DrawingService {
	return &DrawingService{db: db}
}

// DrawingListItem omits the geometry.
type DrawingListItem struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	FeatureCount int    `json:"feature_count"`
	CreatedAt    int64  `json:"created_at"`
}

// Save stores features under name. Geometry is written in its closed
// interchange form, the derived measurements go into Meta.
func (s *DrawingService) Save(name string, features []models.Feature) (*models.Drawing, error) {
	if name == "" {
		return nil, errors.New("drawing name is required")
	}
	drawing := &models.Drawing{Name: name}
	for i, f := range features {
		gf := Transformer.ToGeoJSON(f)
		geom, err := methods.GeometryToWKB(gf.Geometry)
		if err != nil {
			return nil, err
		}
		meta, err := json.Marshal(gf.Properties)
		if err != nil {
			return nil, err
		}
		drawing.Features = append(drawing.Features, models.DrawingFeature{
			FeatureID: f.ID,
			Kind:      string(f.Kind),
			Seq:       i,
			Geom:      geom,
			Meta:      datatypes.JSON(meta),
		})
	}
	if err := s.db.Create(drawing).Error; err != nil {
		return nil, fmt.Errorf("save drawing: %w", err)
	}
	return drawing, nil
}

func (s *DrawingService) List() ([]DrawingListItem, error) {
	var items []DrawingListItem
	err := s.db.Model(&models.Drawing{}).
		Select("drawings.id, drawings.name, drawings.created_at, count(drawing_features.id) as feature_count").
		Joins("left join drawing_features on drawing_features.drawing_id = drawings.id").
		Group("drawings.id, drawings.name, drawings.created_at").
		Order("drawings.id desc").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	return items, nil
}

// Load returns the features of a drawing in their saved order.
func (s *DrawingService) Load(id uint) ([]models.Feature, error) {
	var drawing models.Drawing
	err := s.db.Preload("Features", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq asc")
	}).First(&drawing, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: drawing %d", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load drawing: %w", err)
	}

	out := make([]models.Feature, 0, len(drawing.Features))
	for _, df := range drawing.Features {
		geom, err := methods.WKBToGeometry(df.Geom)
		if err != nil {
			return nil, fmt.Errorf("drawing %d feature %s: %w", id, df.FeatureID, err)
		}
		gf := geojson.NewFeature(geom)
		gf.Properties["id"] = df.FeatureID
		parts, err := Transformer.FromGeoJSON(gf)
		if err != nil {
			return nil, err
		}
		out = append(out, parts...)
	}
	return out, nil
}

func (s *DrawingService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Drawing{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: drawing %d", models.ErrNotFound, id)
		}
		return tx.Where("drawing_id = ?", id).Delete(&models.DrawingFeature{}).Error
	})
}

// RecordExport appends to the export log. A nil service records nothing.
func (s *DrawingService) RecordExport(rec models.ExportRecord) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Create(&rec).Error
}

func (s *DrawingService) Exports(limit int) ([]models.ExportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []models.ExportRecord
	err := s.db.Order("id desc").Limit(limit).Find(&out).Error
	return out, err
}
