package dto

import (
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
)

// SpecListParams defines query parameters for listing spec records.
// Filter values of "all" are treated as no restriction, matching the
// dashboard's select-box defaults.
type SpecListParams struct {
	Site    string `form:"site" binding:"required"`
	CarType string `form:"carType"`
	LineID  string `form:"lineId"`
	Type    string `form:"type"`
	Search  string `form:"search"`
}

// ToFilter converts the query parameters to a domain filter.
func (p SpecListParams) ToFilter() domain.SpecFilter {
	return domain.SpecFilter{
		CarType: normalizeAll(p.CarType),
		LineID:  normalizeAll(p.LineID),
		Type:    normalizeAll(p.Type),
		Search:  p.Search,
	}
}

func normalizeAll(v string) string {
	if v == "all" {
		return ""
	}
	return v
}

// SpecKeyRequest carries the 5-field composite key of one spec record.
type SpecKeyRequest struct {
	CarType string `json:"CAR_TYPE" binding:"required"`
	LineID  string `json:"LINE_ID" binding:"required"`
	AlcCode string `json:"ALC_CODE" binding:"required"`
	Type    string `json:"TYPE" binding:"required"`
	ItemCd  string `json:"ITEM_CD" binding:"required"`
}

// ToDomain converts the key request to a domain key.
func (k SpecKeyRequest) ToDomain() domain.SpecKey {
	return domain.SpecKey{
		CarType: k.CarType,
		LineID:  k.LineID,
		AlcCode: k.AlcCode,
		Type:    k.Type,
		ItemCd:  k.ItemCd,
	}
}

// CreateSpecRequest defines the data needed to create a new spec record.
// Field names mirror the table columns the dashboard grid edits.
type CreateSpecRequest struct {
	CarType   string `json:"CAR_TYPE" binding:"required"`
	LineID    string `json:"LINE_ID" binding:"required"`
	AlcCode   string `json:"ALC_CODE" binding:"required"`
	Type      string `json:"TYPE" binding:"required"`
	ItemCd    string `json:"ITEM_CD" binding:"required"`
	BodyType  string `json:"BODY_TYPE" binding:"required"`
	EtcText01 string `json:"ETC_TEXT01"`
	EtcText02 string `json:"ETC_TEXT02"`
	EtcText03 string `json:"ETC_TEXT03"`
	EtcText04 string `json:"ETC_TEXT04"`
	EtcText05 string `json:"ETC_TEXT05"`
	EtcText06 string `json:"ETC_TEXT06"`
	EtcText07 string `json:"ETC_TEXT07"`
	Remark    string `json:"REMARK"`
	IsUse     string `json:"IS_USE"`
	Gubun     string `json:"GUBUN"`
	Plant     string `json:"PLANT"`
}

// ToDomain converts the request to a domain record.
func (r CreateSpecRequest) ToDomain() domain.SpecRecord {
	return domain.SpecRecord{
		SpecKey: domain.SpecKey{
			CarType: r.CarType,
			LineID:  r.LineID,
			AlcCode: r.AlcCode,
			Type:    r.Type,
			ItemCd:  r.ItemCd,
		},
		BodyType:  r.BodyType,
		EtcText01: r.EtcText01,
		EtcText02: r.EtcText02,
		EtcText03: r.EtcText03,
		EtcText04: r.EtcText04,
		EtcText05: r.EtcText05,
		EtcText06: r.EtcText06,
		EtcText07: r.EtcText07,
		Remark:    r.Remark,
		IsUse:     r.IsUse,
		Gubun:     r.Gubun,
		Plant:     r.Plant,
	}
}

// UpdateSpecRequest identifies a record by its original key and carries the
// changed fields. Only allow-listed column names in UpdateData are applied.
type UpdateSpecRequest struct {
	OriginalKey SpecKeyRequest    `json:"originalKey" binding:"required"`
	UpdateData  map[string]string `json:"updateData" binding:"required"`
}

// DeleteSpecRequest carries the keys for a bulk delete.
type DeleteSpecRequest struct {
	Keys []SpecKeyRequest `json:"keys" binding:"required,min=1,dive"`
}

// CheckDuplicateRequest checks either the 4-field combination or a single
// item code. CurrentData, when present, excludes the record being edited.
type CheckDuplicateRequest struct {
	CarType     string          `json:"CAR_TYPE"`
	Type        string          `json:"TYPE"`
	LineID      string          `json:"LINE_ID"`
	AlcCode     string          `json:"ALC_CODE"`
	ItemCd      string          `json:"ITEM_CD"`
	CurrentData *SpecKeyRequest `json:"currentData"`
}

// CheckDuplicateResponse reports the duplicate check result.
type CheckDuplicateResponse struct {
	IsDuplicate bool `json:"isDuplicate"`
}
