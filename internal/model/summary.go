package model

import "time"

// Summary is one closed and summarized event window. Immutable once
// persisted.
type Summary struct {
	Id       int    `json:"id" gorm:"primaryKey"`
	DeviceId string `json:"device_id" gorm:"type:varchar(64);index"`
	// Timestamp is when the summary was created, epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
	// MinTimestamp/MaxTimestamp are the actual bounds of the summarized
	// frame range, which may differ from the window bounds that triggered
	// the close.
	MinTimestamp  int64     `json:"min_timestamp"`
	MaxTimestamp  int64     `json:"max_timestamp"`
	EventCategory string    `json:"event_category" gorm:"type:varchar(32);index"`
	Title         string    `json:"title" gorm:"type:varchar(255)"`
	EventSummary  string    `json:"event_summary" gorm:"type:text"`
	Thumbnail     string    `json:"thumbnail" gorm:"type:mediumtext"`
	CreateTime    time.Time `json:"create_time" gorm:"type:datetime;autoCreateTime"`
}

func AddSummary(s *Summary) error {
	return DB.Create(s).Error
}

func ListSummaries(deviceId string, start, limit int) ([]Summary, int64, error) {
	base := DB.Model(&Summary{})
	if deviceId != "" {
		base = base.Where("device_id = ?", deviceId)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var summaries []Summary
	if err := base.Order("timestamp desc").Offset(start).Limit(limit).Find(&summaries).Error; err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}
