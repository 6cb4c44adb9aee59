package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Frame is one analyzed keyframe. Rows are append-only; the pipeline never
// updates a frame after insertion.
type Frame struct {
	Id         int    `json:"id" gorm:"primaryKey"`
	DeviceId   string `json:"device_id" gorm:"type:varchar(64);index:idx_device_ts,priority:1;index:idx_device_cat_ts,priority:1"`
	Timestamp  int64  `json:"timestamp" gorm:"index:idx_device_ts,priority:2;index:idx_device_cat_ts,priority:3"`
	ObjectName string `json:"object_name" gorm:"type:varchar(255)"`
	// Similarity is the structural similarity score against the previous
	// keyframe; 0 for the first keyframe of a segment.
	Similarity    float64   `json:"similarity"`
	Thumbnail     string    `json:"thumbnail" gorm:"type:mediumtext"`
	Description   string    `json:"description" gorm:"type:text"`
	EventCategory string    `json:"event_category" gorm:"type:varchar(32);index:idx_device_cat_ts,priority:2"`
	TriggerAlarm  float64   `json:"trigger_alarm"`
	CreateTime    time.Time `json:"create_time" gorm:"type:datetime;autoCreateTime"`
}

func AddFrame(f *Frame) error {
	return DB.Create(f).Error
}

// GetFramesInRange returns the device's frames of one category with
// minTime < timestamp <= maxTime, ascending. The half-open lower bound
// keeps a frame that closed the previous window out of the next one.
func GetFramesInRange(deviceId, category string, minTime, maxTime int64) ([]Frame, error) {
	var frames []Frame
	err := DB.Where("device_id = ? AND event_category = ? AND timestamp > ? AND timestamp <= ?",
		deviceId, category, minTime, maxTime).
		Order("timestamp asc").
		Find(&frames).Error
	if err != nil {
		return nil, err
	}
	return frames, nil
}

// GetThumbnail looks up the stored thumbnail of the frame at an exact
// (device, timestamp). Returns "" when no such frame exists.
func GetThumbnail(deviceId string, timestamp int64) (string, error) {
	var f Frame
	err := DB.Select("thumbnail").
		Where("device_id = ? AND timestamp = ?", deviceId, timestamp).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return f.Thumbnail, nil
}

func ListFrames(deviceId string, start, limit int) ([]Frame, int64, error) {
	base := DB.Model(&Frame{})
	if deviceId != "" {
		base = base.Where("device_id = ?", deviceId)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var frames []Frame
	if err := base.Order("timestamp desc").Offset(start).Limit(limit).Find(&frames).Error; err != nil {
		return nil, 0, err
	}
	return frames, total, nil
}
