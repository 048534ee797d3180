package domain

// SpecKey is the 5-field composite key identifying a unique spec record.
type SpecKey struct {
	CarType string `json:"CAR_TYPE"`
	LineID  string `json:"LINE_ID"`
	AlcCode string `json:"ALC_CODE"`
	Type    string `json:"TYPE"`
	ItemCd  string `json:"ITEM_CD"`
}

// Complete reports whether all five key fields are present.
func (k SpecKey) Complete() bool {
	return k.CarType != "" && k.LineID != "" && k.AlcCode != "" && k.Type != "" && k.ItemCd != ""
}

// SpecRecord is one row of the ALC spec master table (TB_MD_ALC_SPEC).
type SpecRecord struct {
	SpecKey
	BodyType  string `json:"BODY_TYPE"`
	EtcText01 string `json:"ETC_TEXT01"`
	EtcText02 string `json:"ETC_TEXT02"`
	EtcText03 string `json:"ETC_TEXT03"`
	EtcText04 string `json:"ETC_TEXT04"`
	EtcText05 string `json:"ETC_TEXT05"`
	EtcText06 string `json:"ETC_TEXT06"`
	EtcText07 string `json:"ETC_TEXT07"`
	Remark    string `json:"REMARK"`
	InUser    string `json:"INUSER"`
	InDate    string `json:"INDATE"`
	UptUser   string `json:"UPTUSER"`
	UptDate   string `json:"UPTDATE"`
	IsUse     string `json:"IS_USE"`
	Gubun     string `json:"GUBUN"`
	Plant     string `json:"PLANT"`
}

// CarType is one entry of the car code master (TB_MD_CARCODE) shaped for
// select-box consumption.
type CarType struct {
	Code  string `json:"CODE"`
	Label string `json:"LABEL"`
}

// SpecFilter narrows a spec listing. Empty fields (and the literal "all")
// mean "no restriction"; Search matches CAR_TYPE, ALC_CODE, ITEM_CD or
// BODY_TYPE as a substring.
type SpecFilter struct {
	CarType string
	LineID  string
	Type    string
	Search  string
}

// SpecDeleteFailure records one key that could not be deleted during a bulk
// delete and why.
type SpecDeleteFailure struct {
	Key    SpecKey `json:"key"`
	Reason string  `json:"reason"`
}

// SpecDeleteOutcome summarises a bulk delete: every key is attempted, the
// outcome counts both sides.
type SpecDeleteOutcome struct {
	Deleted  int                 `json:"deleted"`
	Failed   int                 `json:"failed"`
	Failures []SpecDeleteFailure `json:"failures,omitempty"`
}

// UploadRowError is one rejected spreadsheet row with all of its problems,
// reported against the 1-based worksheet row number.
type UploadRowError struct {
	Row      int      `json:"row"`
	Problems []string `json:"problems"`
}

// UploadOutcome summarises a bulk spec upload (or its dry-run validation).
type UploadOutcome struct {
	TotalRows int              `json:"totalRows"`
	Inserted  int              `json:"inserted"`
	Skipped   int              `json:"skipped"`
	RowErrors []UploadRowError `json:"rowErrors,omitempty"`
}

// Valid reports whether the outcome carries no row-level problems.
func (o UploadOutcome) Valid() bool {
	return len(o.RowErrors) == 0
}
