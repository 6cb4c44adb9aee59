package dao

import "senseact/internal/model"

type ListFramesRequest struct {
	DeviceId string `json:"device_id" form:"device_id"`
	Start    int    `json:"start" form:"start" binding:"min=0"`
	Limit    int    `json:"limit" form:"limit" binding:"min=0,max=100"`
}

type ListFramesResponse struct {
	Items []model.Frame `json:"items"`
	Total int64         `json:"total"`
}

type ListSummariesRequest struct {
	DeviceId string `json:"device_id" form:"device_id"`
	Start    int    `json:"start" form:"start" binding:"min=0"`
	Limit    int    `json:"limit" form:"limit" binding:"min=0,max=100"`
}

type ListSummariesResponse struct {
	Items []model.Summary `json:"items"`
	Total int64           `json:"total"`
}
